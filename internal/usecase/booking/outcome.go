package booking

import (
	"roomchat/internal/domain/reservation"
	"roomchat/internal/domain/session"
	"roomchat/internal/usecase/availability"
)

type ErrorCode string

const (
	CodeValidation  ErrorCode = "validation"
	CodeUnavailable ErrorCode = "unavailable"
	CodeExtraction  ErrorCode = "extraction"
	CodeInternal    ErrorCode = "internal"
)

// Outcome is one of MissingFields, Conflict, Confirmed or Failure.
type Outcome interface {
	outcome()
}

// MissingFields asks the user for the listed fields, in prompting order.
type MissingFields struct {
	Fields []reservation.Field
}

// Conflict reports that Requested is taken and offers free alternatives.
type Conflict struct {
	Requested    availability.Slot
	Alternatives []availability.Slot
}

type Confirmed struct {
	Reservation *reservation.Reservation
}

// Failure reports a turn that could not progress. Fields names the draft fields
// that were rejected and cleared, if any.
type Failure struct {
	Code    ErrorCode
	Message string
	Fields  []reservation.Field
}

func (MissingFields) outcome() {}
func (Conflict) outcome()      {}
func (Confirmed) outcome()     {}
func (Failure) outcome()       {}

// Result is the outcome of one evaluation together with the session as it was left.
type Result struct {
	Outcome Outcome
	Session *session.Session
}
