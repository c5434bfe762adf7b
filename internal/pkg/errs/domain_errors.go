package errs

import "errors"

// Sentinel errors shared by the booking usecases and their adapters.
// Concrete errors are attached with Mark so callers can branch with Is.
var (
	// Validation errors (never retried)
	ErrValidation = errors.New("validation failed")

	// Reservation errors
	ErrConflict            = errors.New("reservation conflict")
	ErrReservationNotFound = errors.New("reservation not found")
	ErrAlreadyCancelled    = errors.New("reservation already cancelled")
	ErrNoSlotFound         = errors.New("no available slot found")

	// Infrastructure errors
	ErrTransient               = errors.New("transient store failure")
	ErrDatabaseOperationFailed = errors.New("database operation failed")

	// Session errors
	ErrSessionNotFound   = errors.New("session not found")
	ErrIllegalTransition = errors.New("illegal state transition")

	// Extraction errors
	ErrExtraction = errors.New("intent extraction failed")
)
