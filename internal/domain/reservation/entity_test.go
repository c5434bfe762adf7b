//go:build unit

package reservation_test

import (
	"testing"
	"time"

	"roomchat/internal/domain/reservation"
	"roomchat/internal/pkg/errs"
	"roomchat/tests/common/builder"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testCase struct {
	name    string
	mutate  func(*builder.ReservationBuilder)
	field   reservation.Field
	wantErr bool
}

func TestReservation(t *testing.T) {
	policy := builder.NewPolicy()
	now := builder.FridayNoon

	t.Run("basic success case", func(t *testing.T) {
		actual, err := builder.NewReservationBuilder().BuildDomain(policy, now)
		require.NoError(t, err)
		require.NotNil(t, actual)

		assert.NotEqual(t, uuid.Nil, actual.ID())
		assert.Equal(t, 1, actual.RoomID())
		assert.Equal(t, builder.At(builder.Monday, 10, 0), actual.Start())
		assert.Equal(t, builder.At(builder.Monday, 11, 0), actual.End())
		assert.Equal(t, reservation.StatusActive, actual.Status())
		assert.Equal(t, now, actual.CreatedAt())
		assert.Nil(t, actual.CancelledAt())
	})

	t.Run("invariants", func(t *testing.T) {
		runCases(t, policy, now, []testCase{
			{
				name:   "last slot of the day",
				mutate: func(b *builder.ReservationBuilder) { b.WithStart(builder.At(builder.Monday, 17, 0)) },
			},
			{
				name:    "starts after closing",
				mutate:  func(b *builder.ReservationBuilder) { b.WithStart(builder.At(builder.Monday, 19, 0)) },
				field:   reservation.FieldStartTime,
				wantErr: true,
			},
			{
				name:    "starts before opening",
				mutate:  func(b *builder.ReservationBuilder) { b.WithStart(builder.At(builder.Monday, 8, 0)) },
				field:   reservation.FieldStartTime,
				wantErr: true,
			},
			{
				name: "runs past closing",
				mutate: func(b *builder.ReservationBuilder) {
					b.WithStart(builder.At(builder.Monday, 17, 0)).WithDuration(2 * time.Hour)
				},
				field:   reservation.FieldDuration,
				wantErr: true,
			},
			{
				name:    "weekend",
				mutate:  func(b *builder.ReservationBuilder) { b.WithStart(builder.At(builder.Saturday, 10, 0)) },
				field:   reservation.FieldDate,
				wantErr: true,
			},
			{
				name:    "too long",
				mutate:  func(b *builder.ReservationBuilder) { b.WithDuration(5 * time.Hour) },
				field:   reservation.FieldDuration,
				wantErr: true,
			},
			{
				name:    "too short",
				mutate:  func(b *builder.ReservationBuilder) { b.WithDuration(30 * time.Minute) },
				field:   reservation.FieldDuration,
				wantErr: true,
			},
			{
				name:    "unknown room",
				mutate:  func(b *builder.ReservationBuilder) { b.WithRoom(42) },
				field:   reservation.FieldRoom,
				wantErr: true,
			},
			{
				name:    "blank requester",
				mutate:  func(b *builder.ReservationBuilder) { b.WithRequester("   ") },
				field:   reservation.FieldRequester,
				wantErr: true,
			},
			{
				name:    "blank purpose",
				mutate:  func(b *builder.ReservationBuilder) { b.WithPurpose("") },
				field:   reservation.FieldPurpose,
				wantErr: true,
			},
			{
				name:    "in the past",
				mutate:  func(b *builder.ReservationBuilder) { b.WithStart(builder.At(builder.FridayNoon, 10, 0)) },
				field:   reservation.FieldStartTime,
				wantErr: true,
			},
		})
	})

	t.Run("cancel keeps history", func(t *testing.T) {
		r, err := builder.NewReservationBuilder().BuildDomain(policy, now)
		require.NoError(t, err)

		cancelAt := now.Add(time.Hour)
		require.NoError(t, r.Cancel(cancelAt))
		assert.Equal(t, reservation.StatusCancelled, r.Status())
		require.NotNil(t, r.CancelledAt())
		assert.Equal(t, cancelAt, *r.CancelledAt())
		assert.False(t, r.IsActive())

		assert.ErrorIs(t, r.Cancel(cancelAt), reservation.ErrReservationCancelled)
	})

	t.Run("cancelled reservations never conflict", func(t *testing.T) {
		r, err := builder.NewReservationBuilder().BuildDomain(policy, now)
		require.NoError(t, err)
		assert.True(t, r.ConflictsWith(1, r.TimeSlot()))
		assert.False(t, r.ConflictsWith(2, r.TimeSlot()))

		require.NoError(t, r.Cancel(now))
		assert.False(t, r.ConflictsWith(1, r.TimeSlot()))
	})

	t.Run("clone is independent", func(t *testing.T) {
		r, err := builder.NewReservationBuilder().BuildDomain(policy, now)
		require.NoError(t, err)

		cp := r.Clone()
		require.NoError(t, cp.Cancel(now))
		assert.True(t, r.IsActive())
	})
}

func TestFilter_Matches(t *testing.T) {
	r, err := builder.NewReservationBuilder().BuildDomain(builder.NewPolicy(), builder.FridayNoon)
	require.NoError(t, err)

	room1, room2 := 1, 2
	tenThirty := builder.At(builder.Monday, 10, 30)
	eleven := builder.At(builder.Monday, 11, 0)
	ten := builder.At(builder.Monday, 10, 0)

	assert.True(t, reservation.Filter{}.Matches(r))
	assert.True(t, reservation.Filter{RoomID: &room1}.Matches(r))
	assert.False(t, reservation.Filter{RoomID: &room2}.Matches(r))
	assert.True(t, reservation.Filter{From: &tenThirty}.Matches(r))
	assert.False(t, reservation.Filter{From: &eleven}.Matches(r), "end is exclusive")
	assert.False(t, reservation.Filter{To: &ten}.Matches(r), "to is exclusive")
}

func runCases(t *testing.T, policy *reservation.Policy, now time.Time, cases []testCase) {
	t.Helper()
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			actual, err := builder.NewReservationBuilder().With(c.mutate).BuildDomain(policy, now)

			if !c.wantErr {
				require.NoError(t, err)
				require.NotNil(t, actual)
				return
			}
			require.Nil(t, actual)
			require.Error(t, err)
			require.True(t, errs.Is(err, errs.ErrValidation))

			var verr *reservation.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, c.field, verr.Field)
		})
	}
}
