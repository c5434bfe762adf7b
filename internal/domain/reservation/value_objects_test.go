//go:build unit

package reservation_test

import (
	"testing"
	"time"

	"roomchat/internal/domain/reservation"
	"roomchat/tests/common/builder"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimeSlot_Overlaps(t *testing.T) {
	at := func(h, m int) time.Time { return builder.At(builder.Monday, h, m) }
	slot := func(sh, sm, eh, em int) reservation.TimeSlot {
		return reservation.MustTimeSlot(at(sh, sm), at(eh, em))
	}

	testCases := []struct {
		name string
		a, b reservation.TimeSlot
		want bool
	}{
		{name: "identical", a: slot(10, 0, 11, 0), b: slot(10, 0, 11, 0), want: true},
		{name: "back to back is free", a: slot(10, 0, 11, 0), b: slot(11, 0, 12, 0), want: false},
		{name: "back to back reversed", a: slot(11, 0, 12, 0), b: slot(10, 0, 11, 0), want: false},
		{name: "partial overlap", a: slot(10, 0, 11, 0), b: slot(10, 30, 11, 30), want: true},
		{name: "contained", a: slot(9, 0, 13, 0), b: slot(10, 0, 11, 0), want: true},
		{name: "disjoint", a: slot(9, 0, 10, 0), b: slot(14, 0, 15, 0), want: false},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.a.Overlaps(tc.b))
			assert.Equal(t, tc.want, tc.b.Overlaps(tc.a), "overlap must be symmetric")
		})
	}
}

func TestNewTimeSlot(t *testing.T) {
	start := builder.At(builder.Monday, 10, 0)

	_, err := reservation.NewTimeSlot(start, start)
	assert.ErrorIs(t, err, reservation.ErrInvalidTimeSlot)

	_, err = reservation.NewTimeSlot(start, start.Add(-time.Minute))
	assert.ErrorIs(t, err, reservation.ErrInvalidTimeSlot)

	ts, err := reservation.NewTimeSlot(start, start.Add(90*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, 90*time.Minute, ts.Duration())
}

func TestTimeOfDay(t *testing.T) {
	tod, err := reservation.ParseTimeOfDay("09:30")
	require.NoError(t, err)
	assert.Equal(t, 9, tod.Hour())
	assert.Equal(t, 30, tod.Minute())
	assert.Equal(t, "09:30", tod.String())
	assert.Equal(t, "11:00", tod.Add(90*time.Minute).String())
	assert.Equal(t, builder.At(builder.Monday, 9, 30), tod.On(builder.Monday, builder.Seoul))

	for _, bad := range []string{"", "25:00", "9am", "12:60"} {
		_, err := reservation.ParseTimeOfDay(bad)
		assert.ErrorIs(t, err, reservation.ErrInvalidTimeOfDay, bad)
	}
}

func TestParseWeekdays(t *testing.T) {
	days, err := reservation.ParseWeekdays([]string{"Mon", "tuesday", " FRI "})
	require.NoError(t, err)
	assert.Equal(t, []time.Weekday{time.Monday, time.Tuesday, time.Friday}, days)

	_, err = reservation.ParseWeekdays([]string{"Funday"})
	assert.ErrorIs(t, err, reservation.ErrUnknownWeekday)
}

func TestPolicy_ValidateDate(t *testing.T) {
	policy := builder.NewPolicy()
	now := builder.FridayNoon

	assert.NoError(t, policy.ValidateDate(builder.Monday, now))
	assert.Error(t, policy.ValidateDate(builder.Saturday, now))
	assert.Error(t, policy.ValidateDate(builder.Monday.AddDate(0, 0, -7), now), "past date")
	assert.Error(t, policy.ValidateDate(builder.Monday.AddDate(0, 0, 35), now), "beyond advance window")
}
