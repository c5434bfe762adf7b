//go:build integration

package repository_test

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"roomchat/internal/domain/reservation"
	"roomchat/internal/infra"
	"roomchat/internal/infra/repository"
	"roomchat/internal/infra/sqlc"
	"roomchat/internal/infra/uow"
	"roomchat/internal/pkg/clock"
	"roomchat/internal/pkg/errs"
	"roomchat/internal/pkg/pgconv"
	"roomchat/tests/common/builder"
	"roomchat/tests/common/dbtest"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type ReservationRepositorySuite struct {
	suite.Suite
	pool *pgxpool.Pool
	repo *repository.ReservationRepository
}

func TestReservationRepositorySuite(t *testing.T) {
	suite.Run(t, new(ReservationRepositorySuite))
}

func (s *ReservationRepositorySuite) SetupSuite() {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.pool = dbtest.NewPostgres(s.T())
	s.repo = repository.NewReservationRepository(
		sqlc.New(),
		uow.NewPostgresUoW(s.pool, logger),
		builder.NewPolicy(),
		clock.NewMockClock(builder.FridayNoon),
		logger,
	)
}

func (s *ReservationRepositorySuite) SetupTest() {
	s.Require().NoError(dbtest.ResetDB(s.pool))
}

func (s *ReservationRepositorySuite) TestCommitAndRead() {
	ctx := context.Background()
	c := builder.NewReservationBuilder().BuildCandidate()

	res, err := s.repo.TryCommit(ctx, c)
	s.Require().NoError(err)

	found, err := s.repo.FindByID(ctx, res.ID())
	s.Require().NoError(err)
	s.Equal(c.RoomID, found.RoomID())
	s.True(c.Slot.Start().Equal(found.Start()))
	s.True(c.Slot.End().Equal(found.End()))

	_, err = s.repo.TryCommit(ctx, c)
	s.True(errs.Is(err, errs.ErrConflict))

	adjacent := builder.NewReservationBuilder().WithStart(builder.At(builder.Monday, 11, 0)).BuildCandidate()
	_, err = s.repo.TryCommit(ctx, adjacent)
	s.NoError(err)

	day := builder.Monday
	active, err := s.repo.ListActive(ctx, reservation.Filter{From: &day})
	s.Require().NoError(err)
	s.Len(active, 2)
}

func (s *ReservationRepositorySuite) TestCancelFreesSlot() {
	ctx := context.Background()
	c := builder.NewReservationBuilder().BuildCandidate()

	res, err := s.repo.TryCommit(ctx, c)
	s.Require().NoError(err)

	cancelled, err := s.repo.Cancel(ctx, res.ID())
	s.Require().NoError(err)
	s.Equal(reservation.StatusCancelled, cancelled.Status())

	_, err = s.repo.Cancel(ctx, res.ID())
	s.True(errs.Is(err, errs.ErrAlreadyCancelled))

	_, err = s.repo.Cancel(ctx, uuid.New())
	s.True(errs.Is(err, errs.ErrReservationNotFound))

	_, err = s.repo.TryCommit(ctx, c)
	s.NoError(err)
}

func (s *ReservationRepositorySuite) TestConcurrentCommitsForSameSlot() {
	ctx := context.Background()
	c := builder.NewReservationBuilder().
		WithRoom(6).
		WithStart(builder.At(builder.Tuesday, 14, 0)).
		BuildCandidate()

	const workers = 16
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		conflicts int
	)
	start := make(chan struct{})
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, err := s.repo.TryCommit(ctx, c)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case errs.Is(err, errs.ErrConflict):
				conflicts++
			default:
				s.T().Errorf("unexpected error: %v", err)
			}
		}()
	}
	close(start)
	wg.Wait()

	s.Equal(1, successes)
	s.Equal(workers-1, conflicts)

	var count int
	err := s.pool.QueryRow(ctx, "SELECT count(*) FROM reservations WHERE room_id = 6 AND status = 'active'").Scan(&count)
	s.Require().NoError(err)
	s.Equal(1, count)
}

// Inserts that bypass the advisory lock are still rejected by the exclusion constraint.
func TestExclusionConstraintRejectsOverlap(t *testing.T) {
	pool := dbtest.NewPostgres(t)
	ctx := context.Background()
	q := sqlc.New()

	insert := func(start time.Time) error {
		return q.CreateReservation(ctx, pool, sqlc.CreateReservationParams{
			ID:        uuid.New(),
			RoomID:    2,
			Requester: "Lee",
			Purpose:   "review",
			StartsAt:  pgconv.TimeToPgtype(start),
			EndsAt:    pgconv.TimeToPgtype(start.Add(2 * time.Hour)),
			Status:    string(reservation.StatusActive),
			CreatedAt: pgconv.TimeToPgtype(builder.FridayNoon),
		})
	}

	require.NoError(t, insert(builder.At(builder.Monday, 10, 0)))
	err := insert(builder.At(builder.Monday, 11, 0))
	require.Error(t, err)
	assert.Equal(t, infra.KindConflict, infra.Classify(err))
	assert.NoError(t, insert(builder.At(builder.Monday, 12, 0)))
}
