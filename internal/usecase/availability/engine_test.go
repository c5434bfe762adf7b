//go:build unit

package availability_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"roomchat/internal/domain/reservation"
	"roomchat/internal/infra/memory"
	"roomchat/internal/pkg/clock"
	"roomchat/internal/pkg/errs"
	"roomchat/internal/pkg/ptr"
	"roomchat/internal/usecase/availability"
	"roomchat/tests/common/builder"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	engine availability.Engine
	store  *memory.ReservationStore
}

func newFixture(t *testing.T, lookahead int, booked ...*builder.ReservationBuilder) fixture {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	policy := builder.NewPolicy()
	clk := clock.NewMockClock(builder.FridayNoon)
	store := memory.NewReservationStore(policy, clk, logger)
	for _, b := range booked {
		_, err := store.TryCommit(context.Background(), b.BuildCandidate())
		require.NoError(t, err)
	}
	return fixture{
		engine: availability.NewEngine(policy, store, clk, lookahead, logger),
		store:  store,
	}
}

func slot(roomID int, day time.Time, hour int, dur time.Duration) availability.Slot {
	start := builder.At(day, hour, 0)
	return availability.Slot{RoomID: roomID, Start: start, End: start.Add(dur)}
}

func TestEngine_CheckAvailability(t *testing.T) {
	ctx := context.Background()
	ten := reservation.TimeOfDay(10 * 60)

	t.Run("weekends are never available", func(t *testing.T) {
		f := newFixture(t, 14)

		got, err := f.engine.CheckAvailability(ctx, availability.Query{Date: builder.Saturday})

		require.NoError(t, err)
		assert.False(t, got.Available)
		assert.Empty(t, got.FreeSlots)
	})

	t.Run("slots stay inside business hours and skip bookings", func(t *testing.T) {
		f := newFixture(t, 14, builder.NewReservationBuilder())

		got, err := f.engine.CheckAvailability(ctx, availability.Query{
			Date:   builder.Monday,
			RoomID: ptr.To(1),
		})

		require.NoError(t, err)
		assert.True(t, got.Available)
		require.Len(t, got.FreeSlots, 8)
		for _, s := range got.FreeSlots {
			assert.False(t, s.Start.Before(builder.At(builder.Monday, 9, 0)))
			assert.False(t, s.End.After(builder.At(builder.Monday, 18, 0)))
			assert.NotEqual(t, builder.At(builder.Monday, 10, 0), s.Start)
		}
	})

	t.Run("fixed start lists the other rooms", func(t *testing.T) {
		f := newFixture(t, 14, builder.NewReservationBuilder())

		got, err := f.engine.CheckAvailability(ctx, availability.Query{
			Date:  builder.Monday,
			Start: &ten,
		})

		require.NoError(t, err)
		want := []availability.Slot{
			slot(2, builder.Monday, 10, time.Hour),
			slot(3, builder.Monday, 10, time.Hour),
			slot(4, builder.Monday, 10, time.Hour),
			slot(5, builder.Monday, 10, time.Hour),
			slot(6, builder.Monday, 10, time.Hour),
		}
		if diff := cmp.Diff(want, got.FreeSlots); diff != "" {
			t.Errorf("free slots mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("longer durations must end by closing time", func(t *testing.T) {
		f := newFixture(t, 14)

		got, err := f.engine.CheckAvailability(ctx, availability.Query{
			Date:     builder.Monday,
			RoomID:   ptr.To(2),
			Duration: 3 * time.Hour,
		})

		require.NoError(t, err)
		require.NotEmpty(t, got.FreeSlots)
		last := got.FreeSlots[len(got.FreeSlots)-1]
		assert.Equal(t, builder.At(builder.Monday, 15, 0), last.Start)
	})

	t.Run("slots already started are excluded", func(t *testing.T) {
		f := newFixture(t, 14)

		got, err := f.engine.CheckAvailability(ctx, availability.Query{
			Date:   builder.FridayNoon,
			RoomID: ptr.To(1),
		})

		require.NoError(t, err)
		require.NotEmpty(t, got.FreeSlots)
		assert.Equal(t, builder.FridayNoon, got.FreeSlots[0].Start)
	})

	t.Run("unknown room is a validation error", func(t *testing.T) {
		f := newFixture(t, 14)

		_, err := f.engine.CheckAvailability(ctx, availability.Query{
			Date:   builder.Monday,
			RoomID: ptr.To(99),
		})

		assert.True(t, errs.Is(err, errs.ErrValidation))
	})
}

func TestEngine_FindNextAvailable(t *testing.T) {
	ctx := context.Background()

	cases := []struct {
		name      string
		lookahead int
		booked    []*builder.ReservationBuilder
		query     availability.NextQuery
		want      availability.Slot
		wantErr   error
	}{
		{
			name:  "morning from saturday lands on the following monday",
			query: availability.NextQuery{From: builder.Saturday, Range: availability.RangeMorning},
			want:  slot(1, builder.Monday.AddDate(0, 0, 7), 9, time.Hour),
		},
		{
			name:  "morning already over on friday",
			query: availability.NextQuery{From: builder.FridayNoon, Range: availability.RangeMorning},
			want:  slot(1, builder.Monday, 9, time.Hour),
		},
		{
			name:  "afternoon starts at noon",
			query: availability.NextQuery{From: builder.Monday, Range: availability.RangeAfternoon},
			want:  slot(1, builder.Monday, 12, time.Hour),
		},
		{
			name: "preferred room wins over earlier slots elsewhere",
			booked: []*builder.ReservationBuilder{
				builder.NewReservationBuilder().WithRoom(4).WithStart(builder.At(builder.Monday, 9, 0)),
			},
			query: availability.NextQuery{From: builder.Monday, PreferredRoomID: ptr.To(4)},
			want:  slot(4, builder.Monday, 10, time.Hour),
		},
		{
			name: "lowest room id before earliest time",
			booked: []*builder.ReservationBuilder{
				builder.NewReservationBuilder().WithRoom(1).WithStart(builder.At(builder.Monday, 9, 0)),
			},
			query: availability.NextQuery{From: builder.Monday},
			want:  slot(1, builder.Monday, 10, time.Hour),
		},
		{
			name:      "lookahead exhausted",
			lookahead: 1,
			query:     availability.NextQuery{From: builder.Saturday.AddDate(0, 0, 1)},
			wantErr:   errs.ErrNoSlotFound,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			lookahead := tc.lookahead
			if lookahead == 0 {
				lookahead = 14
			}
			f := newFixture(t, lookahead, tc.booked...)

			got, err := f.engine.FindNextAvailable(ctx, tc.query)

			if tc.wantErr != nil {
				assert.True(t, errs.Is(err, tc.wantErr))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
			assert.NotEqual(t, time.Saturday, got.Start.Weekday())
			assert.NotEqual(t, time.Sunday, got.Start.Weekday())
		})
	}
}

func TestEngine_IsFree(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 14, builder.NewReservationBuilder())

	taken := reservation.MustTimeSlot(builder.At(builder.Monday, 10, 30), builder.At(builder.Monday, 11, 30))
	free, err := f.engine.IsFree(ctx, 1, taken)
	require.NoError(t, err)
	assert.False(t, free)

	adjacent := reservation.MustTimeSlot(builder.At(builder.Monday, 11, 0), builder.At(builder.Monday, 12, 0))
	free, err = f.engine.IsFree(ctx, 1, adjacent)
	require.NoError(t, err)
	assert.True(t, free)

	free, err = f.engine.IsFree(ctx, 2, taken)
	require.NoError(t, err)
	assert.True(t, free)
}

func TestEngine_Suggest(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 14,
		builder.NewReservationBuilder(),
		builder.NewReservationBuilder().WithRoom(2),
	)

	got, err := f.engine.Suggest(ctx, builder.NewReservationBuilder().BuildCandidate(), 3)

	require.NoError(t, err)
	want := []availability.Slot{
		slot(1, builder.Monday, 11, time.Hour),
		slot(3, builder.Monday, 10, time.Hour),
		slot(4, builder.Monday, 10, time.Hour),
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("suggestions mismatch (-want +got):\n%s", diff)
	}
}

func TestParseTimeRange(t *testing.T) {
	for in, want := range map[string]availability.TimeRange{
		"":          availability.RangeAll,
		"Morning":   availability.RangeMorning,
		"afternoon": availability.RangeAfternoon,
		"all":       availability.RangeAll,
	} {
		got, err := availability.ParseTimeRange(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := availability.ParseTimeRange("evening")
	assert.ErrorIs(t, err, availability.ErrUnknownTimeRange)
}
