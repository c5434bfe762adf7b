package shared

import (
	"context"

	"roomchat/internal/domain/draft"
	"roomchat/internal/domain/reservation"
	"roomchat/internal/domain/session"

	"github.com/google/uuid"
)

//go:generate mockgen -source=ports.go -destination=../../../tests/mock/shared/ports.go -package=sharedmock

// ReservationReader is the read side of the reservation store.
type ReservationReader interface {
	// ListActive returns ACTIVE reservations matching f, ordered by start then room.
	ListActive(ctx context.Context, f reservation.Filter) ([]*reservation.Reservation, error)
	FindByID(ctx context.Context, id uuid.UUID) (*reservation.Reservation, error)
}

// ReservationStore is the only component allowed to create or cancel reservations.
type ReservationStore interface {
	ReservationReader
	// TryCommit re-validates c and inserts it atomically per room.
	// Overlap yields errs.ErrConflict and leaves the store untouched.
	TryCommit(ctx context.Context, c reservation.Candidate) (*reservation.Reservation, error)
	Cancel(ctx context.Context, id uuid.UUID) (*reservation.Reservation, error)
}

// Unlock releases a turn lock. It is safe to call more than once.
type Unlock func()

// SessionStore owns conversation state. Every returned session is a snapshot.
type SessionStore interface {
	GetOrCreate(ctx context.Context, id string) (*session.Session, error)
	// Get returns errs.ErrSessionNotFound for unknown or expired ids.
	Get(ctx context.Context, id string) (*session.Session, error)
	AppendMessage(ctx context.Context, id string, msg session.Message) (*session.Session, error)
	MergeDraft(ctx context.Context, id string, update draft.Draft) (*session.Session, error)
	ClearFields(ctx context.Context, id string, fields ...reservation.Field) (*session.Session, error)
	SetState(ctx context.Context, id string, next session.State) (*session.Session, error)
	ClearDraft(ctx context.Context, id string) (*session.Session, error)
	Delete(ctx context.Context, id string) error
	// Lock serializes conversation turns for one session id.
	Lock(ctx context.Context, id string) (Unlock, error)
}
