package reservation

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"roomchat/internal/domain/room"
	"roomchat/internal/pkg/errs"
)

var (
	ErrInvalidBusinessHours = errors.New("opening time must be before closing time")
	ErrInvalidDurationRange = errors.New("duration bounds must satisfy 0 < min <= max")
	ErrInvalidGranularity   = errors.New("granularity must be positive")
	ErrNoBusinessDays       = errors.New("at least one business weekday is required")
	ErrUnknownWeekday       = errors.New("unknown weekday")
)

// ValidationError reports a business-rule violation for a single field.
type ValidationError struct {
	Field  Field
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return errs.ErrValidation
}

func invalid(field Field, format string, args ...any) error {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

type PolicyParams struct {
	Location    *time.Location
	Open        TimeOfDay
	Close       TimeOfDay
	Weekdays    []time.Weekday
	MinDuration time.Duration
	MaxDuration time.Duration
	Granularity time.Duration
	AdvanceDays int
	Rooms       *room.Registry
}

// Policy holds every static booking rule: business hours, weekdays, duration bounds, the
// advance-booking window and the room catalog.
type Policy struct {
	loc         *time.Location
	open        TimeOfDay
	close       TimeOfDay
	weekdays    map[time.Weekday]bool
	minDuration time.Duration
	maxDuration time.Duration
	granularity time.Duration
	advanceDays int
	rooms       *room.Registry
}

func NewPolicy(p PolicyParams) (*Policy, error) {
	if p.Location == nil {
		p.Location = time.UTC
	}
	if p.Rooms == nil {
		return nil, room.ErrEmptyRoomCatalog
	}
	if p.Open >= p.Close {
		return nil, ErrInvalidBusinessHours
	}
	if p.MinDuration <= 0 || p.MinDuration > p.MaxDuration {
		return nil, ErrInvalidDurationRange
	}
	if p.Granularity <= 0 {
		return nil, ErrInvalidGranularity
	}
	if len(p.Weekdays) == 0 {
		return nil, ErrNoBusinessDays
	}

	weekdays := make(map[time.Weekday]bool, len(p.Weekdays))
	for _, d := range p.Weekdays {
		weekdays[d] = true
	}

	return &Policy{
		loc:         p.Location,
		open:        p.Open,
		close:       p.Close,
		weekdays:    weekdays,
		minDuration: p.MinDuration,
		maxDuration: p.MaxDuration,
		granularity: p.Granularity,
		advanceDays: p.AdvanceDays,
		rooms:       p.Rooms,
	}, nil
}

func ParseWeekdays(names []string) ([]time.Weekday, error) {
	out := make([]time.Weekday, 0, len(names))
	for _, n := range names {
		n = strings.ToLower(strings.TrimSpace(n))
		if n == "" {
			continue
		}
		found := false
		for d := time.Sunday; d <= time.Saturday; d++ {
			full := strings.ToLower(d.String())
			if n == full || n == full[:3] {
				out = append(out, d)
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("%w: %q", ErrUnknownWeekday, n)
		}
	}
	return out, nil
}

func (p *Policy) Location() *time.Location   { return p.loc }
func (p *Policy) Open() TimeOfDay            { return p.open }
func (p *Policy) Close() TimeOfDay           { return p.close }
func (p *Policy) MinDuration() time.Duration { return p.minDuration }
func (p *Policy) MaxDuration() time.Duration { return p.maxDuration }
func (p *Policy) Granularity() time.Duration { return p.granularity }
func (p *Policy) Rooms() *room.Registry      { return p.rooms }

func (p *Policy) IsBusinessDay(day time.Time) bool {
	return p.weekdays[day.In(p.loc).Weekday()]
}

// BusinessWindow returns [open, close) on the calendar date of day.
func (p *Policy) BusinessWindow(day time.Time) (time.Time, time.Time) {
	return p.open.On(day, p.loc), p.close.On(day, p.loc)
}

func (p *Policy) ValidateDate(day, now time.Time) error {
	day = DateOf(day, p.loc)
	if !p.IsBusinessDay(day) {
		return invalid(FieldDate, "%s is not a business day", day.Weekday())
	}
	today := DateOf(now, p.loc)
	if day.Before(today) {
		return invalid(FieldDate, "%s is in the past", day.Format(time.DateOnly))
	}
	if p.advanceDays > 0 && day.After(today.AddDate(0, 0, p.advanceDays)) {
		return invalid(FieldDate, "bookings open at most %d days in advance", p.advanceDays)
	}
	return nil
}

func (p *Policy) ValidateStart(start TimeOfDay) error {
	if start < p.open || start >= p.close {
		return invalid(FieldStartTime, "%s is outside business hours %s-%s", start, p.open, p.close)
	}
	return nil
}

func (p *Policy) ValidateDuration(d time.Duration) error {
	if d < p.minDuration || d > p.maxDuration {
		return invalid(FieldDuration, "duration must be between %s and %s", p.minDuration, p.maxDuration)
	}
	return nil
}

func (p *Policy) ValidateRoom(id int) error {
	if !p.rooms.Contains(id) {
		return invalid(FieldRoom, "room %d does not exist", id)
	}
	return nil
}

// ValidateSlot checks a concrete interval: business day, inside business hours on a single day,
// duration bounds and not starting in the past.
func (p *Policy) ValidateSlot(slot TimeSlot, now time.Time) error {
	start := slot.Start().In(p.loc)
	if err := p.ValidateDate(start, now); err != nil {
		return err
	}
	if err := p.ValidateStart(TimeOfDayOf(start)); err != nil {
		return err
	}
	if err := p.ValidateDuration(slot.Duration()); err != nil {
		return err
	}
	_, closeAt := p.BusinessWindow(start)
	if slot.End().After(closeAt) {
		return invalid(FieldDuration, "booking must end by %s", p.close)
	}
	if start.Before(now) {
		return invalid(FieldStartTime, "%s has already passed", start.Format("2006-01-02 15:04"))
	}
	return nil
}

func (p *Policy) ValidateRequester(name string) error {
	return validateText(FieldRequester, name, MaxRequesterLength)
}

func (p *Policy) ValidatePurpose(purpose string) error {
	return validateText(FieldPurpose, purpose, MaxPurposeLength)
}

func (p *Policy) ValidateCandidate(c Candidate, now time.Time) error {
	if err := p.ValidateRoom(c.RoomID); err != nil {
		return err
	}
	if err := p.ValidateRequester(c.Requester); err != nil {
		return err
	}
	if err := p.ValidatePurpose(c.Purpose); err != nil {
		return err
	}
	return p.ValidateSlot(c.Slot, now)
}

func validateText(field Field, value string, maxLen int) error {
	value = strings.TrimSpace(value)
	if value == "" {
		return invalid(field, "must not be empty")
	}
	if len(value) > maxLen {
		return invalid(field, "must be at most %d characters", maxLen)
	}
	return nil
}
