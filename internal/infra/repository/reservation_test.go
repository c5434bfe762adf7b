//go:build unit

package repository

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"roomchat/internal/domain/reservation"
	"roomchat/internal/infra"
	"roomchat/internal/infra/sqlc"
	"roomchat/internal/pkg/clock"
	"roomchat/internal/pkg/errs"
	"roomchat/internal/pkg/pgconv"
	"roomchat/tests/common/builder"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockReservationQueries struct {
	mock.Mock
}

func (m *MockReservationQueries) LockRoom(ctx context.Context, db sqlc.DBTX, key int64) error {
	args := m.Called(ctx, db, key)
	return args.Error(0)
}

func (m *MockReservationQueries) CountOverlappingReservations(ctx context.Context, db sqlc.DBTX, arg sqlc.CountOverlappingReservationsParams) (int64, error) {
	args := m.Called(ctx, db, arg)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockReservationQueries) CreateReservation(ctx context.Context, db sqlc.DBTX, arg sqlc.CreateReservationParams) error {
	args := m.Called(ctx, db, arg)
	return args.Error(0)
}

func (m *MockReservationQueries) GetReservationByID(ctx context.Context, db sqlc.DBTX, id uuid.UUID) (sqlc.Reservation, error) {
	args := m.Called(ctx, db, id)
	return args.Get(0).(sqlc.Reservation), args.Error(1)
}

func (m *MockReservationQueries) GetReservationByIDForUpdate(ctx context.Context, db sqlc.DBTX, id uuid.UUID) (sqlc.Reservation, error) {
	args := m.Called(ctx, db, id)
	return args.Get(0).(sqlc.Reservation), args.Error(1)
}

func (m *MockReservationQueries) CancelReservation(ctx context.Context, db sqlc.DBTX, arg sqlc.CancelReservationParams) error {
	args := m.Called(ctx, db, arg)
	return args.Error(0)
}

func (m *MockReservationQueries) ListActiveReservations(ctx context.Context, db sqlc.DBTX, arg sqlc.ListActiveReservationsParams) ([]sqlc.Reservation, error) {
	args := m.Called(ctx, db, arg)
	return args.Get(0).([]sqlc.Reservation), args.Error(1)
}

// directRunner runs the callback without a transaction.
type directRunner struct{}

func (directRunner) Within(ctx context.Context, fn func(ctx context.Context, tx sqlc.DBTX) error) error {
	return fn(ctx, nil)
}

func (directRunner) WithDB(ctx context.Context, fn func(ctx context.Context, db sqlc.DBTX) error) error {
	return fn(ctx, nil)
}

func newTestRepository(q *MockReservationQueries) *ReservationRepository {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewReservationRepository(q, directRunner{}, builder.NewPolicy(), clock.NewMockClock(builder.FridayNoon), logger)
}

func TestTryCommit(t *testing.T) {
	candidate := builder.NewReservationBuilder().BuildCandidate()

	tests := []struct {
		name       string
		setup      func(q *MockReservationQueries)
		wantMarker error
		wantKind   infra.RepositoryErrorKind
	}{
		{
			name: "success",
			setup: func(q *MockReservationQueries) {
				q.On("LockRoom", mock.Anything, mock.Anything, int64(1)).Return(nil)
				q.On("CountOverlappingReservations", mock.Anything, mock.Anything, mock.Anything).Return(int64(0), nil)
				q.On("CreateReservation", mock.Anything, mock.Anything, mock.MatchedBy(func(p sqlc.CreateReservationParams) bool {
					return p.RoomID == 1 && p.Status == "active" && p.StartsAt.Time.Equal(candidate.Slot.Start())
				})).Return(nil)
			},
		},
		{
			name: "overlap found under lock",
			setup: func(q *MockReservationQueries) {
				q.On("LockRoom", mock.Anything, mock.Anything, int64(1)).Return(nil)
				q.On("CountOverlappingReservations", mock.Anything, mock.Anything, mock.Anything).Return(int64(1), nil)
			},
			wantMarker: errs.ErrConflict,
			wantKind:   infra.KindConflict,
		},
		{
			name: "exclusion constraint",
			setup: func(q *MockReservationQueries) {
				q.On("LockRoom", mock.Anything, mock.Anything, int64(1)).Return(nil)
				q.On("CountOverlappingReservations", mock.Anything, mock.Anything, mock.Anything).Return(int64(0), nil)
				q.On("CreateReservation", mock.Anything, mock.Anything, mock.Anything).
					Return(&pgconn.PgError{Code: "23P01"})
			},
			wantMarker: errs.ErrConflict,
			wantKind:   infra.KindConflict,
		},
		{
			name: "deadlock is transient",
			setup: func(q *MockReservationQueries) {
				q.On("LockRoom", mock.Anything, mock.Anything, int64(1)).Return(&pgconn.PgError{Code: "40P01"})
			},
			wantMarker: errs.ErrTransient,
			wantKind:   infra.KindTransient,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := new(MockReservationQueries)
			tt.setup(q)
			repo := newTestRepository(q)

			res, err := repo.TryCommit(context.Background(), candidate)

			if tt.wantMarker != nil {
				assert.Nil(t, res)
				assert.True(t, errs.Is(err, tt.wantMarker))
				assert.True(t, infra.IsKind(err, tt.wantKind))
			} else {
				require.NoError(t, err)
				assert.Equal(t, reservation.StatusActive, res.Status())
			}
			q.AssertExpectations(t)
		})
	}
}

func TestTryCommit_InvalidCandidateSkipsDatabase(t *testing.T) {
	q := new(MockReservationQueries)
	repo := newTestRepository(q)

	_, err := repo.TryCommit(context.Background(), builder.NewReservationBuilder().
		WithStart(builder.At(builder.Saturday, 10, 0)).BuildCandidate())

	assert.True(t, errs.Is(err, errs.ErrValidation))
	q.AssertNotCalled(t, "LockRoom", mock.Anything, mock.Anything, mock.Anything)
}

func activeRow(id uuid.UUID) sqlc.Reservation {
	start := builder.At(builder.Monday, 10, 0)
	return sqlc.Reservation{
		ID:        id,
		RoomID:    1,
		Requester: "Kim",
		Purpose:   "sync",
		StartsAt:  pgconv.TimeToPgtype(start),
		EndsAt:    pgconv.TimeToPgtype(start.Add(time.Hour)),
		Status:    "active",
		CreatedAt: pgconv.TimeToPgtype(builder.FridayNoon),
	}
}

func TestCancel(t *testing.T) {
	id := uuid.New()

	t.Run("success", func(t *testing.T) {
		q := new(MockReservationQueries)
		q.On("GetReservationByIDForUpdate", mock.Anything, mock.Anything, id).Return(activeRow(id), nil)
		q.On("CancelReservation", mock.Anything, mock.Anything, mock.MatchedBy(func(p sqlc.CancelReservationParams) bool {
			return p.ID == id && p.CancelledAt.Valid
		})).Return(nil)

		res, err := newTestRepository(q).Cancel(context.Background(), id)

		require.NoError(t, err)
		assert.Equal(t, reservation.StatusCancelled, res.Status())
		q.AssertExpectations(t)
	})

	t.Run("already cancelled", func(t *testing.T) {
		row := activeRow(id)
		row.Status = "cancelled"
		row.CancelledAt = pgconv.TimeToPgtype(builder.FridayNoon)
		q := new(MockReservationQueries)
		q.On("GetReservationByIDForUpdate", mock.Anything, mock.Anything, id).Return(row, nil)

		_, err := newTestRepository(q).Cancel(context.Background(), id)

		assert.True(t, errs.Is(err, errs.ErrAlreadyCancelled))
		q.AssertNotCalled(t, "CancelReservation", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("not found", func(t *testing.T) {
		q := new(MockReservationQueries)
		q.On("GetReservationByIDForUpdate", mock.Anything, mock.Anything, id).Return(sqlc.Reservation{}, pgx.ErrNoRows)

		_, err := newTestRepository(q).Cancel(context.Background(), id)

		assert.True(t, errs.Is(err, errs.ErrReservationNotFound))
		assert.True(t, infra.IsKind(err, infra.KindNotFound))
	})
}

func TestListActive(t *testing.T) {
	room := 1
	q := new(MockReservationQueries)
	q.On("ListActiveReservations", mock.Anything, mock.Anything, mock.MatchedBy(func(p sqlc.ListActiveReservationsParams) bool {
		return p.RoomID.Valid && p.RoomID.Int32 == 1 && !p.From.Valid && !p.To.Valid
	})).Return([]sqlc.Reservation{activeRow(uuid.New())}, nil)

	got, err := newTestRepository(q).ListActive(context.Background(), reservation.Filter{RoomID: &room})

	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, builder.At(builder.Monday, 10, 0), got[0].Start())
	q.AssertExpectations(t)
}
