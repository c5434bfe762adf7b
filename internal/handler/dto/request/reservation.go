package request

import (
	"fmt"
	"time"

	"roomchat/internal/domain/reservation"
	"roomchat/internal/usecase/availability"
)

type AvailabilityQuery struct {
	Date     string `form:"date" binding:"required"`
	Time     string `form:"time"`
	Room     *int   `form:"room"`
	Duration string `form:"duration"`
}

func (q AvailabilityQuery) ToQuery(loc *time.Location) (availability.Query, error) {
	date, err := time.ParseInLocation(time.DateOnly, q.Date, loc)
	if err != nil {
		return availability.Query{}, fmt.Errorf("date must look like YYYY-MM-DD: %w", err)
	}
	out := availability.Query{Date: date, RoomID: q.Room}
	if q.Time != "" {
		start, err := reservation.ParseTimeOfDay(q.Time)
		if err != nil {
			return availability.Query{}, err
		}
		out.Start = &start
	}
	if out.Duration, err = parseDuration(q.Duration); err != nil {
		return availability.Query{}, err
	}
	return out, nil
}

// NextAvailableQuery searches from From, or from now when From is empty.
type NextAvailableQuery struct {
	From     string `form:"from"`
	Range    string `form:"range"`
	Room     *int   `form:"room"`
	Duration string `form:"duration"`
}

func (q NextAvailableQuery) ToQuery(now time.Time) (availability.NextQuery, error) {
	out := availability.NextQuery{From: now, PreferredRoomID: q.Room}
	if q.From != "" {
		from, err := time.Parse(time.RFC3339, q.From)
		if err != nil {
			return availability.NextQuery{}, fmt.Errorf("from must be RFC3339: %w", err)
		}
		out.From = from
	}
	var err error
	if out.Range, err = availability.ParseTimeRange(q.Range); err != nil {
		return availability.NextQuery{}, err
	}
	if out.Duration, err = parseDuration(q.Duration); err != nil {
		return availability.NextQuery{}, err
	}
	return out, nil
}

type ListReservationsQuery struct {
	Room *int   `form:"room"`
	From string `form:"from"`
	To   string `form:"to"`
}

func (q ListReservationsQuery) ToFilter() (reservation.Filter, error) {
	f := reservation.Filter{RoomID: q.Room}
	if q.From != "" {
		from, err := time.Parse(time.RFC3339, q.From)
		if err != nil {
			return reservation.Filter{}, fmt.Errorf("from must be RFC3339: %w", err)
		}
		f.From = &from
	}
	if q.To != "" {
		to, err := time.Parse(time.RFC3339, q.To)
		if err != nil {
			return reservation.Filter{}, fmt.Errorf("to must be RFC3339: %w", err)
		}
		f.To = &to
	}
	return f, nil
}

func parseDuration(s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("duration must look like 1h or 90m")
	}
	return d, nil
}
