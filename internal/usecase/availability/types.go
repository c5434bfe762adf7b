package availability

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"roomchat/internal/domain/reservation"
)

var ErrUnknownTimeRange = errors.New("time range must be morning, afternoon or all")

// TimeRange narrows FindNextAvailable to part of the business day.
type TimeRange string

const (
	RangeMorning   TimeRange = "morning"
	RangeAfternoon TimeRange = "afternoon"
	RangeAll       TimeRange = "all"
)

// Noon splits the business day into morning and afternoon.
const Noon = reservation.TimeOfDay(12 * 60)

func ParseTimeRange(s string) (TimeRange, error) {
	switch TimeRange(strings.ToLower(strings.TrimSpace(s))) {
	case "", RangeAll:
		return RangeAll, nil
	case RangeMorning:
		return RangeMorning, nil
	case RangeAfternoon:
		return RangeAfternoon, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownTimeRange, s)
	}
}

// bounds clips the range to the business hours [open, close).
func (r TimeRange) bounds(open, close reservation.TimeOfDay) (reservation.TimeOfDay, reservation.TimeOfDay) {
	switch r {
	case RangeMorning:
		return open, min(close, Noon)
	case RangeAfternoon:
		return max(open, Noon), close
	default:
		return open, close
	}
}

// Slot is a bookable interval in one room.
type Slot struct {
	RoomID int
	Start  time.Time
	End    time.Time
}

func (s Slot) TimeSlot() reservation.TimeSlot {
	return reservation.MustTimeSlot(s.Start, s.End)
}

func (s Slot) String() string {
	return fmt.Sprintf("room %d %s-%s", s.RoomID, s.Start.Format("2006-01-02 15:04"), s.End.Format("15:04"))
}

// Query asks for free slots on one date. Nil Start and RoomID do not filter;
// a zero Duration means one granularity step.
type Query struct {
	Date     time.Time
	Start    *reservation.TimeOfDay
	RoomID   *int
	Duration time.Duration
}

type Availability struct {
	Available bool
	FreeSlots []Slot
}

// NextQuery searches forward from From for the first free slot.
type NextQuery struct {
	From            time.Time
	Range           TimeRange
	PreferredRoomID *int
	Duration        time.Duration
}
