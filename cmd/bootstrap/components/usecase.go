package components

import (
	"log/slog"
	"time"

	"roomchat/internal/domain/reservation"
	"roomchat/internal/domain/room"
	"roomchat/internal/pkg/clock"
	"roomchat/internal/pkg/config"
	"roomchat/internal/pkg/errs"
	"roomchat/internal/usecase/availability"
	"roomchat/internal/usecase/booking"
	"roomchat/internal/usecase/conversation"
	"roomchat/internal/usecase/shared"

	"go.uber.org/fx"
)

var UseCaseModule = fx.Module("usecase",
	usecaseBaseOption,
	fx.Provide(
		NewAvailabilityEngine,
		NewStateMachine,
		conversation.NewOrchestrator,
	),
)

var usecaseBaseOption = fx.Provide(
	clock.NewRealClock,
	NewPolicy,
)

// NewPolicy builds the booking rules and the room catalog from BOOKING_* and ROOMS.
func NewPolicy(cfg config.Config) (*reservation.Policy, error) {
	b := cfg.Booking

	loc, err := time.LoadLocation(b.TimeZone)
	if err != nil {
		return nil, errs.Wrapf(err, "invalid BOOKING_TIMEZONE %q", b.TimeZone)
	}
	open, err := reservation.ParseTimeOfDay(b.Open)
	if err != nil {
		return nil, errs.Wrap(err, "invalid BOOKING_OPEN")
	}
	closeAt, err := reservation.ParseTimeOfDay(b.Close)
	if err != nil {
		return nil, errs.Wrap(err, "invalid BOOKING_CLOSE")
	}
	weekdays, err := reservation.ParseWeekdays(b.Weekdays)
	if err != nil {
		return nil, errs.Wrap(err, "invalid BOOKING_WEEKDAYS")
	}
	rooms, err := room.ParseRegistry(b.Rooms)
	if err != nil {
		return nil, errs.Wrap(err, "invalid ROOMS")
	}

	return reservation.NewPolicy(reservation.PolicyParams{
		Location:    loc,
		Open:        open,
		Close:       closeAt,
		Weekdays:    weekdays,
		MinDuration: b.MinDuration,
		MaxDuration: b.MaxDuration,
		Granularity: b.Granularity,
		AdvanceDays: b.AdvanceDays,
		Rooms:       rooms,
	})
}

func NewAvailabilityEngine(
	cfg config.Config,
	policy *reservation.Policy,
	reservations shared.ReservationReader,
	clock clock.Clock,
	logger *slog.Logger,
) availability.Engine {
	return availability.NewEngine(policy, reservations, clock, cfg.Booking.MaxLookaheadDays, logger)
}

func NewStateMachine(
	cfg config.Config,
	policy *reservation.Policy,
	engine availability.Engine,
	reservations shared.ReservationStore,
	sessions shared.SessionStore,
	clock clock.Clock,
	logger *slog.Logger,
) booking.StateMachine {
	return booking.NewStateMachine(booking.Params{
		Policy:       policy,
		Availability: engine,
		Reservations: reservations,
		Sessions:     sessions,
		Clock:        clock,
		Retry: shared.RetryPolicy{
			MaxAttempts: cfg.Retry.MaxAttempts,
			Backoff:     cfg.Retry.Backoff,
		},
		Suggestions: cfg.Booking.Suggestions,
		Logger:      logger,
	})
}
