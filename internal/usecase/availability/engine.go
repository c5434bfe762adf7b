package availability

import (
	"context"
	"log/slog"
	"slices"
	"time"

	"roomchat/internal/domain/reservation"
	"roomchat/internal/pkg/clock"
	"roomchat/internal/pkg/errs"
	"roomchat/internal/usecase/shared"
)

//go:generate mockgen -source=engine.go -destination=../../../tests/mock/availability/engine.go -package=availabilitymock

// DefaultLookaheadDays bounds FindNextAvailable when no limit is configured.
const DefaultLookaheadDays = 14

type Engine interface {
	CheckAvailability(ctx context.Context, q Query) (Availability, error)
	FindNextAvailable(ctx context.Context, q NextQuery) (Slot, error)
	IsFree(ctx context.Context, roomID int, slot reservation.TimeSlot) (bool, error)
	Suggest(ctx context.Context, c reservation.Candidate, limit int) ([]Slot, error)
}

type engineImpl struct {
	policy        *reservation.Policy
	reservations  shared.ReservationReader
	clock         clock.Clock
	lookaheadDays int
	logger        *slog.Logger
}

func NewEngine(
	policy *reservation.Policy,
	reservations shared.ReservationReader,
	clock clock.Clock,
	lookaheadDays int,
	logger *slog.Logger,
) Engine {
	if lookaheadDays <= 0 {
		lookaheadDays = DefaultLookaheadDays
	}
	return &engineImpl{
		policy:        policy,
		reservations:  reservations,
		clock:         clock,
		lookaheadDays: lookaheadDays,
		logger:        logger,
	}
}

func (e *engineImpl) CheckAvailability(ctx context.Context, q Query) (Availability, error) {
	dur, err := e.duration(q.Duration)
	if err != nil {
		return Availability{}, err
	}
	if q.RoomID != nil {
		if err := e.policy.ValidateRoom(*q.RoomID); err != nil {
			return Availability{}, err
		}
	}

	day := reservation.DateOf(q.Date, e.policy.Location())
	result := Availability{FreeSlots: []Slot{}}
	if !e.policy.IsBusinessDay(day) {
		return result, nil
	}

	rooms := e.policy.Rooms().IDs()
	if q.RoomID != nil {
		rooms = []int{*q.RoomID}
	}

	busy, err := e.busyOn(ctx, day, q.RoomID)
	if err != nil {
		return Availability{}, err
	}

	from, to := e.policy.Open(), e.policy.Close()
	if q.Start != nil {
		if err := e.policy.ValidateStart(*q.Start); err != nil {
			return Availability{}, err
		}
		from = *q.Start
	}

	now := e.clock.Now()
	for _, roomID := range rooms {
		for _, s := range e.slotsOn(day, roomID, from, to, dur) {
			if q.Start != nil && reservation.TimeOfDayOf(s.Start) != *q.Start {
				continue
			}
			if s.Start.Before(now) || isBusy(busy[roomID], s) {
				continue
			}
			result.FreeSlots = append(result.FreeSlots, s)
		}
	}
	result.Available = len(result.FreeSlots) > 0
	return result, nil
}

func (e *engineImpl) FindNextAvailable(ctx context.Context, q NextQuery) (Slot, error) {
	dur, err := e.duration(q.Duration)
	if err != nil {
		return Slot{}, err
	}
	if q.PreferredRoomID != nil {
		if err := e.policy.ValidateRoom(*q.PreferredRoomID); err != nil {
			return Slot{}, err
		}
	}
	rng := q.Range
	if rng == "" {
		rng = RangeAll
	}

	return e.nextIn(ctx, q.From, rng, e.roomOrder(q.PreferredRoomID), dur)
}

func (e *engineImpl) IsFree(ctx context.Context, roomID int, slot reservation.TimeSlot) (bool, error) {
	start, end := slot.Start(), slot.End()
	active, err := e.reservations.ListActive(ctx, reservation.Filter{
		RoomID: &roomID,
		From:   &start,
		To:     &end,
	})
	if err != nil {
		return false, errs.Wrap(err, "list active reservations")
	}
	for _, r := range active {
		if r.ConflictsWith(roomID, slot) {
			return false, nil
		}
	}
	return true, nil
}

// Suggest proposes alternatives for a taken candidate: the next free slot in the
// requested room first, then the same start time in other rooms by ascending id.
func (e *engineImpl) Suggest(ctx context.Context, c reservation.Candidate, limit int) ([]Slot, error) {
	if limit <= 0 {
		return nil, nil
	}
	dur := c.Slot.Duration()
	suggestions := make([]Slot, 0, limit)
	seen := make(map[Slot]bool)
	add := func(s Slot) bool {
		if !seen[s] {
			seen[s] = true
			suggestions = append(suggestions, s)
		}
		return len(suggestions) >= limit
	}

	next, err := e.nextIn(ctx, c.Slot.Start(), RangeAll, []int{c.RoomID}, dur)
	switch {
	case err == nil:
		if add(next) {
			return suggestions, nil
		}
	case errs.Is(err, errs.ErrNoSlotFound):
	default:
		return nil, err
	}

	if e.policy.ValidateSlot(c.Slot, e.clock.Now()) == nil {
		for _, roomID := range e.policy.Rooms().IDs() {
			if roomID == c.RoomID {
				continue
			}
			free, err := e.IsFree(ctx, roomID, c.Slot)
			if err != nil {
				return nil, err
			}
			if free && add(Slot{RoomID: roomID, Start: c.Slot.Start(), End: c.Slot.End()}) {
				break
			}
		}
	}

	e.logger.Debug("suggested alternatives",
		"room_id", c.RoomID,
		"slot", c.Slot.String(),
		"count", len(suggestions))
	return suggestions, nil
}

// nextIn scans business days forward from from, trying rooms in the given order and
// returning the earliest free slot of the first room that has one.
func (e *engineImpl) nextIn(ctx context.Context, from time.Time, rng TimeRange, rooms []int, dur time.Duration) (Slot, error) {
	loc := e.policy.Location()
	notBefore := from
	if now := e.clock.Now(); now.After(notBefore) {
		notBefore = now
	}
	lo, hi := rng.bounds(e.policy.Open(), e.policy.Close())
	first := reservation.DateOf(notBefore, loc)

	for i := 0; i < e.lookaheadDays; i++ {
		if err := ctx.Err(); err != nil {
			return Slot{}, err
		}
		day := first.AddDate(0, 0, i)
		if !e.policy.IsBusinessDay(day) {
			continue
		}

		var roomFilter *int
		if len(rooms) == 1 {
			roomFilter = &rooms[0]
		}
		busy, err := e.busyOn(ctx, day, roomFilter)
		if err != nil {
			return Slot{}, err
		}

		for _, roomID := range rooms {
			for _, s := range e.slotsOn(day, roomID, lo, hi, dur) {
				if s.Start.Before(notBefore) || isBusy(busy[roomID], s) {
					continue
				}
				return s, nil
			}
		}
	}

	return Slot{}, errs.Mark(
		errs.Newf("no %s slot of %s within %d days from %s", rng, dur, e.lookaheadDays, first.Format(time.DateOnly)),
		errs.ErrNoSlotFound,
	)
}

// slotsOn enumerates grid slots of length dur that start at or after open and fit in [from, to).
func (e *engineImpl) slotsOn(day time.Time, roomID int, from, to reservation.TimeOfDay, dur time.Duration) []Slot {
	loc := e.policy.Location()
	step := e.policy.Granularity()
	openAt, _ := e.policy.BusinessWindow(day)
	lo, hi := from.On(day, loc), to.On(day, loc)

	var out []Slot
	for start := openAt; !start.Add(dur).After(hi); start = start.Add(step) {
		if start.Before(lo) {
			continue
		}
		out = append(out, Slot{RoomID: roomID, Start: start, End: start.Add(dur)})
	}
	return out
}

// busyOn loads the active reservations overlapping the business window of day, by room.
func (e *engineImpl) busyOn(ctx context.Context, day time.Time, roomID *int) (map[int][]reservation.TimeSlot, error) {
	openAt, closeAt := e.policy.BusinessWindow(day)
	active, err := e.reservations.ListActive(ctx, reservation.Filter{
		RoomID: roomID,
		From:   &openAt,
		To:     &closeAt,
	})
	if err != nil {
		return nil, errs.Wrap(err, "list active reservations")
	}

	busy := make(map[int][]reservation.TimeSlot)
	for _, r := range active {
		busy[r.RoomID()] = append(busy[r.RoomID()], r.TimeSlot())
	}
	return busy, nil
}

func (e *engineImpl) roomOrder(preferred *int) []int {
	ids := e.policy.Rooms().IDs()
	if preferred == nil {
		return ids
	}
	order := make([]int, 0, len(ids))
	order = append(order, *preferred)
	for _, id := range ids {
		if id != *preferred {
			order = append(order, id)
		}
	}
	return order
}

func (e *engineImpl) duration(d time.Duration) (time.Duration, error) {
	if d == 0 {
		d = e.policy.Granularity()
	}
	if err := e.policy.ValidateDuration(d); err != nil {
		return 0, err
	}
	return d, nil
}

func isBusy(taken []reservation.TimeSlot, s Slot) bool {
	return slices.ContainsFunc(taken, func(ts reservation.TimeSlot) bool {
		return ts.Overlaps(s.TimeSlot())
	})
}
