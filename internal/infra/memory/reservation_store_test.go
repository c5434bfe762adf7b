//go:build unit

package memory_test

import (
	"context"
	"io"
	"log/slog"
	"math/rand"
	"sync"
	"testing"
	"time"

	"roomchat/internal/domain/reservation"
	"roomchat/internal/infra/memory"
	"roomchat/internal/pkg/clock"
	"roomchat/internal/pkg/errs"
	"roomchat/tests/common/builder"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newReservationStore() *memory.ReservationStore {
	return memory.NewReservationStore(builder.NewPolicy(), clock.NewMockClock(builder.FridayNoon), discardLogger())
}

func TestReservationStore_TryCommit(t *testing.T) {
	ctx := context.Background()

	t.Run("commits an active reservation", func(t *testing.T) {
		store := newReservationStore()

		res, err := store.TryCommit(ctx, builder.NewReservationBuilder().BuildCandidate())

		require.NoError(t, err)
		assert.Equal(t, 1, res.RoomID())
		assert.Equal(t, builder.At(builder.Monday, 10, 0), res.Start())
		assert.Equal(t, builder.At(builder.Monday, 11, 0), res.End())
		assert.Equal(t, reservation.StatusActive, res.Status())
	})

	t.Run("repeated candidate conflicts without mutation", func(t *testing.T) {
		store := newReservationStore()
		c := builder.NewReservationBuilder().BuildCandidate()
		_, err := store.TryCommit(ctx, c)
		require.NoError(t, err)

		_, err = store.TryCommit(ctx, c)

		assert.True(t, errs.Is(err, errs.ErrConflict))
		active, err := store.ListActive(ctx, reservation.Filter{})
		require.NoError(t, err)
		assert.Len(t, active, 1)
	})

	t.Run("adjacent slots do not conflict", func(t *testing.T) {
		store := newReservationStore()
		_, err := store.TryCommit(ctx, builder.NewReservationBuilder().BuildCandidate())
		require.NoError(t, err)

		_, err = store.TryCommit(ctx, builder.NewReservationBuilder().
			WithStart(builder.At(builder.Monday, 11, 0)).BuildCandidate())

		assert.NoError(t, err)
	})

	t.Run("policy violations are validation errors", func(t *testing.T) {
		store := newReservationStore()

		_, err := store.TryCommit(ctx, builder.NewReservationBuilder().
			WithRoom(5).WithStart(builder.At(builder.Monday, 19, 0)).BuildCandidate())

		assert.True(t, errs.Is(err, errs.ErrValidation))
		var verr *reservation.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, reservation.FieldStartTime, verr.Field)
	})

	t.Run("cancelled reservations free the slot", func(t *testing.T) {
		store := newReservationStore()
		c := builder.NewReservationBuilder().BuildCandidate()
		first, err := store.TryCommit(ctx, c)
		require.NoError(t, err)
		_, err = store.Cancel(ctx, first.ID())
		require.NoError(t, err)

		_, err = store.TryCommit(ctx, c)

		assert.NoError(t, err)
	})
}

func TestReservationStore_Cancel(t *testing.T) {
	ctx := context.Background()
	store := newReservationStore()
	res, err := store.TryCommit(ctx, builder.NewReservationBuilder().BuildCandidate())
	require.NoError(t, err)

	cancelled, err := store.Cancel(ctx, res.ID())
	require.NoError(t, err)
	assert.Equal(t, reservation.StatusCancelled, cancelled.Status())
	require.NotNil(t, cancelled.CancelledAt())
	assert.Equal(t, builder.FridayNoon, *cancelled.CancelledAt())

	_, err = store.Cancel(ctx, res.ID())
	assert.True(t, errs.Is(err, errs.ErrAlreadyCancelled))

	_, err = store.Cancel(ctx, uuid.New())
	assert.True(t, errs.Is(err, errs.ErrReservationNotFound))

	found, err := store.FindByID(ctx, res.ID())
	require.NoError(t, err)
	assert.Equal(t, reservation.StatusCancelled, found.Status())
}

func TestReservationStore_ListActive(t *testing.T) {
	ctx := context.Background()
	store := newReservationStore()
	for _, b := range []*builder.ReservationBuilder{
		builder.NewReservationBuilder().WithRoom(2).WithStart(builder.At(builder.Monday, 13, 0)),
		builder.NewReservationBuilder().WithRoom(3).WithStart(builder.At(builder.Monday, 10, 0)),
		builder.NewReservationBuilder().WithRoom(1).WithStart(builder.At(builder.Monday, 10, 0)),
		builder.NewReservationBuilder().WithRoom(1).WithStart(builder.At(builder.Tuesday, 9, 0)),
	} {
		_, err := store.TryCommit(ctx, b.BuildCandidate())
		require.NoError(t, err)
	}

	all, err := store.ListActive(ctx, reservation.Filter{})
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, []int{1, 3, 2, 1}, roomIDs(all))

	room1 := 1
	from := builder.At(builder.Monday, 10, 30)
	to := builder.At(builder.Monday, 18, 0)
	filtered, err := store.ListActive(ctx, reservation.Filter{RoomID: &room1, From: &from, To: &to})
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, builder.At(builder.Monday, 10, 0), filtered[0].Start())
}

func TestReservationStore_ConcurrentCommitsForSameSlot(t *testing.T) {
	ctx := context.Background()
	store := newReservationStore()
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
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, err := store.TryCommit(ctx, c)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case errs.Is(err, errs.ErrConflict):
				conflicts++
			}
		}()
	}
	close(start)
	wg.Wait()

	assert.Equal(t, 1, successes)
	assert.Equal(t, workers-1, conflicts)

	room := 6
	active, err := store.ListActive(ctx, reservation.Filter{RoomID: &room})
	require.NoError(t, err)
	assert.Len(t, active, 1)
}

func TestReservationStore_NeverStoresOverlaps(t *testing.T) {
	ctx := context.Background()
	store := newReservationStore()
	rng := rand.New(rand.NewSource(7))

	var wg sync.WaitGroup
	for i := 0; i < 200; i++ {
		roomID := 1 + rng.Intn(3)
		day := builder.Monday.AddDate(0, 0, rng.Intn(2))
		hour := 9 + rng.Intn(8)
		dur := time.Duration(1+rng.Intn(2)) * time.Hour
		c := builder.NewReservationBuilder().
			WithRoom(roomID).
			WithStart(builder.At(day, hour, 0)).
			WithDuration(dur).
			BuildCandidate()

		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = store.TryCommit(ctx, c)
		}()
	}
	wg.Wait()

	active, err := store.ListActive(ctx, reservation.Filter{})
	require.NoError(t, err)
	require.NotEmpty(t, active)
	for i := range active {
		for j := i + 1; j < len(active); j++ {
			a, b := active[i], active[j]
			if a.RoomID() == b.RoomID() {
				assert.False(t, a.TimeSlot().Overlaps(b.TimeSlot()), "%s overlaps %s", a.TimeSlot(), b.TimeSlot())
			}
		}
	}
}

func roomIDs(rs []*reservation.Reservation) []int {
	ids := make([]int, 0, len(rs))
	for _, r := range rs {
		ids = append(ids, r.RoomID())
	}
	return ids
}
