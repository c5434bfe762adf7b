package reservation

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrReservationCancelled = errors.New("reservation is already cancelled")
	ErrInvalidStatus        = errors.New("invalid reservation status")
)

const (
	MaxRequesterLength = 100
	MaxPurposeLength   = 500
)

// Candidate is a fully specified booking request that has not been committed yet.
type Candidate struct {
	RoomID    int
	Requester string
	Purpose   string
	Slot      TimeSlot
}

// Filter narrows ListActive queries. Nil fields do not filter.
type Filter struct {
	RoomID *int
	From   *time.Time
	To     *time.Time
}

// Matches reports whether r falls inside the filter; From/To select overlapping reservations.
func (f Filter) Matches(r *Reservation) bool {
	if f.RoomID != nil && r.roomID != *f.RoomID {
		return false
	}
	if f.From != nil && !r.timeSlot.End().After(*f.From) {
		return false
	}
	if f.To != nil && !r.timeSlot.Start().Before(*f.To) {
		return false
	}
	return true
}

type Reservation struct {
	id          uuid.UUID
	roomID      int
	requester   string
	purpose     string
	timeSlot    TimeSlot
	status      Status
	createdAt   time.Time
	cancelledAt *time.Time
}

// NewReservation validates c against the policy and returns an ACTIVE reservation.
func NewReservation(policy *Policy, c Candidate, now time.Time) (*Reservation, error) {
	if err := policy.ValidateCandidate(c, now); err != nil {
		return nil, err
	}

	return &Reservation{
		id:        uuid.New(),
		roomID:    c.RoomID,
		requester: strings.TrimSpace(c.Requester),
		purpose:   strings.TrimSpace(c.Purpose),
		timeSlot:  c.Slot,
		status:    StatusActive,
		createdAt: now,
	}, nil
}

func ReconstructReservation(
	id uuid.UUID,
	roomID int,
	requester, purpose string,
	timeSlot TimeSlot,
	status Status,
	createdAt time.Time,
	cancelledAt *time.Time,
) (*Reservation, error) {
	if !status.IsValid() {
		return nil, ErrInvalidStatus
	}
	return &Reservation{
		id:          id,
		roomID:      roomID,
		requester:   requester,
		purpose:     purpose,
		timeSlot:    timeSlot,
		status:      status,
		createdAt:   createdAt,
		cancelledAt: cancelledAt,
	}, nil
}

// Cancel marks the reservation CANCELLED. History is never deleted.
func (r *Reservation) Cancel(now time.Time) error {
	if r.status == StatusCancelled {
		return ErrReservationCancelled
	}
	r.status = StatusCancelled
	r.cancelledAt = &now
	return nil
}

func (r *Reservation) IsActive() bool {
	return r.status == StatusActive
}

// ConflictsWith reports whether both reservations are active, in the same room, and overlap.
func (r *Reservation) ConflictsWith(roomID int, slot TimeSlot) bool {
	return r.IsActive() && r.roomID == roomID && r.timeSlot.Overlaps(slot)
}

// Clone returns an independent copy so callers cannot mutate stored state.
func (r *Reservation) Clone() *Reservation {
	cp := *r
	if r.cancelledAt != nil {
		t := *r.cancelledAt
		cp.cancelledAt = &t
	}
	return &cp
}

func (r *Reservation) ID() uuid.UUID           { return r.id }
func (r *Reservation) RoomID() int             { return r.roomID }
func (r *Reservation) Requester() string       { return r.requester }
func (r *Reservation) Purpose() string         { return r.purpose }
func (r *Reservation) TimeSlot() TimeSlot      { return r.timeSlot }
func (r *Reservation) Start() time.Time        { return r.timeSlot.Start() }
func (r *Reservation) End() time.Time          { return r.timeSlot.End() }
func (r *Reservation) Status() Status          { return r.status }
func (r *Reservation) CreatedAt() time.Time    { return r.createdAt }
func (r *Reservation) CancelledAt() *time.Time { return r.cancelledAt }
