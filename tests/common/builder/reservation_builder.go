//go:build unit || integration

package builder

import (
	"time"

	"roomchat/internal/domain/reservation"
	"roomchat/internal/domain/room"
)

// Monday, 2024-06-10, used as the anchor week by most booking tests.
var (
	Seoul       = mustLocation("Asia/Seoul")
	Monday      = time.Date(2024, time.June, 10, 0, 0, 0, 0, Seoul)
	Tuesday     = Monday.AddDate(0, 0, 1)
	Saturday    = Monday.AddDate(0, 0, 5)
	FridayNoon  = time.Date(2024, time.June, 7, 12, 0, 0, 0, Seoul)
	DefaultRoom = 1
)

func mustLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.FixedZone(name, 9*60*60)
	}
	return loc
}

func At(day time.Time, hour, minute int) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, Seoul)
}

func NewRegistry() *room.Registry {
	reg, err := room.ParseRegistry([]string{
		"1:Room 1:4", "2:Room 2:4", "3:Room 3:6",
		"4:Room 4:6", "5:Room 5:8", "6:Room 6:10",
	})
	if err != nil {
		panic(err)
	}
	return reg
}

type PolicyBuilder struct {
	Params reservation.PolicyParams
}

func NewPolicyBuilder() *PolicyBuilder {
	return &PolicyBuilder{
		Params: reservation.PolicyParams{
			Location:    Seoul,
			Open:        9 * 60,
			Close:       18 * 60,
			Weekdays:    []time.Weekday{time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday},
			MinDuration: time.Hour,
			MaxDuration: 4 * time.Hour,
			Granularity: time.Hour,
			AdvanceDays: 30,
			Rooms:       NewRegistry(),
		},
	}
}

func (b *PolicyBuilder) With(mutate func(*reservation.PolicyParams)) *PolicyBuilder {
	mutate(&b.Params)
	return b
}

func (b *PolicyBuilder) Build() *reservation.Policy {
	p, err := reservation.NewPolicy(b.Params)
	if err != nil {
		panic(err)
	}
	return p
}

func NewPolicy() *reservation.Policy {
	return NewPolicyBuilder().Build()
}

type ReservationBuilder struct {
	RoomID    int
	Requester string
	Purpose   string
	Start     time.Time
	Duration  time.Duration
}

func NewReservationBuilder() *ReservationBuilder {
	return &ReservationBuilder{
		RoomID:    DefaultRoom,
		Requester: "Kim",
		Purpose:   "sync",
		Start:     At(Monday, 10, 0),
		Duration:  time.Hour,
	}
}

func (r *ReservationBuilder) With(mutate func(*ReservationBuilder)) *ReservationBuilder {
	mutate(r)
	return r
}

func (r *ReservationBuilder) WithRoom(roomID int) *ReservationBuilder {
	r.RoomID = roomID
	return r
}

func (r *ReservationBuilder) WithStart(start time.Time) *ReservationBuilder {
	r.Start = start
	return r
}

func (r *ReservationBuilder) WithDuration(d time.Duration) *ReservationBuilder {
	r.Duration = d
	return r
}

func (r *ReservationBuilder) WithRequester(name string) *ReservationBuilder {
	r.Requester = name
	return r
}

func (r *ReservationBuilder) WithPurpose(purpose string) *ReservationBuilder {
	r.Purpose = purpose
	return r
}

func (r *ReservationBuilder) BuildCandidate() reservation.Candidate {
	return reservation.Candidate{
		RoomID:    r.RoomID,
		Requester: r.Requester,
		Purpose:   r.Purpose,
		Slot:      reservation.MustTimeSlot(r.Start, r.Start.Add(r.Duration)),
	}
}

func (r *ReservationBuilder) BuildDomain(policy *reservation.Policy, now time.Time) (*reservation.Reservation, error) {
	return reservation.NewReservation(policy, r.BuildCandidate(), now)
}
