package booking

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"roomchat/internal/domain/draft"
	"roomchat/internal/domain/reservation"
	"roomchat/internal/domain/session"
	"roomchat/internal/pkg/clock"
	"roomchat/internal/pkg/errs"
	"roomchat/internal/usecase/availability"
	"roomchat/internal/usecase/shared"
)

// DefaultSuggestions is used when no suggestion limit is configured.
const DefaultSuggestions = 3

type StateMachine interface {
	// Evaluate drives the session as far as its draft allows. The caller holds the
	// session's turn lock. Returned errors are infrastructure failures only.
	Evaluate(ctx context.Context, sess *session.Session) (Result, error)
	// Commit books c for a session in CONFIRMING.
	Commit(ctx context.Context, sessionID string, c reservation.Candidate) (Result, error)
}

type Params struct {
	Policy       *reservation.Policy
	Availability availability.Engine
	Reservations shared.ReservationStore
	Sessions     shared.SessionStore
	Clock        clock.Clock
	Retry        shared.RetryPolicy
	Suggestions  int
	Logger       *slog.Logger
}

type stateMachineImpl struct {
	policy       *reservation.Policy
	availability availability.Engine
	reservations shared.ReservationStore
	sessions     shared.SessionStore
	clock        clock.Clock
	retry        shared.RetryPolicy
	suggestions  int
	logger       *slog.Logger
}

func NewStateMachine(p Params) StateMachine {
	if p.Suggestions <= 0 {
		p.Suggestions = DefaultSuggestions
	}
	return &stateMachineImpl{
		policy:       p.Policy,
		availability: p.Availability,
		reservations: p.Reservations,
		sessions:     p.Sessions,
		clock:        p.Clock,
		retry:        p.Retry,
		suggestions:  p.Suggestions,
		logger:       p.Logger,
	}
}

func (m *stateMachineImpl) Evaluate(ctx context.Context, sess *session.Session) (Result, error) {
	now := m.clock.Now()

	if problems := m.validateFields(sess.Draft, now); len(problems) > 0 {
		return m.rejectFields(ctx, sess.ID, problems)
	}

	if missing := sess.Draft.Missing(); len(missing) > 0 {
		return Result{Outcome: MissingFields{Fields: missing}, Session: sess}, nil
	}

	c, err := sess.Draft.Candidate(m.policy.Location())
	if err != nil {
		return Result{}, errs.Wrap(err, "build candidate")
	}
	if err := m.policy.ValidateCandidate(c, now); err != nil {
		var verr *reservation.ValidationError
		if errs.As(err, &verr) {
			return m.rejectFields(ctx, sess.ID, []*reservation.ValidationError{verr})
		}
		return Result{}, err
	}

	if sess.State != session.StateConfirming {
		if sess, err = m.sessions.SetState(ctx, sess.ID, session.StateConfirming); err != nil {
			return Result{}, errs.Wrap(err, "enter confirming")
		}
	}
	m.logger.Info("draft complete, confirming",
		"session_id", sess.ID,
		"room_id", c.RoomID,
		"slot", c.Slot.String())

	free, err := m.availability.IsFree(ctx, c.RoomID, c.Slot)
	if err != nil {
		return m.abort(ctx, sess.ID, err)
	}
	if !free {
		return m.conflict(ctx, sess.ID, c)
	}

	return m.Commit(ctx, sess.ID, c)
}

func (m *stateMachineImpl) Commit(ctx context.Context, sessionID string, c reservation.Candidate) (Result, error) {
	sess, err := m.sessions.Get(ctx, sessionID)
	if err != nil {
		return Result{}, err
	}
	if sess.State != session.StateConfirming {
		m.logger.Error("commit outside confirming",
			"session_id", sessionID,
			"state", sess.State.String())
		return Result{}, errs.Mark(
			errs.Newf("commit from %s", sess.State),
			errs.ErrIllegalTransition,
		)
	}

	res, err := shared.Retry(ctx, m.logger, m.retry, "reservation.commit",
		func(ctx context.Context) (*reservation.Reservation, error) {
			return m.reservations.TryCommit(ctx, c)
		})
	switch {
	case err == nil:
		return m.complete(ctx, sessionID, res)
	case errs.Is(err, errs.ErrConflict):
		return m.conflict(ctx, sessionID, c)
	case errs.Is(err, errs.ErrValidation):
		var verr *reservation.ValidationError
		if errs.As(err, &verr) {
			if _, err := m.sessions.SetState(ctx, sessionID, session.StateCollectingInfo); err != nil {
				return Result{}, err
			}
			return m.rejectFields(ctx, sessionID, []*reservation.ValidationError{verr})
		}
		return m.abort(ctx, sessionID, err)
	case errs.Is(err, errs.ErrTransient):
		sess, stateErr := m.sessions.SetState(ctx, sessionID, session.StateCollectingInfo)
		if stateErr != nil {
			return Result{}, stateErr
		}
		return Result{
			Outcome: Failure{
				Code:    CodeUnavailable,
				Message: "the reservation service is temporarily unavailable, please try again",
			},
			Session: sess,
		}, nil
	default:
		return m.abort(ctx, sessionID, err)
	}
}

func (m *stateMachineImpl) complete(ctx context.Context, sessionID string, res *reservation.Reservation) (Result, error) {
	for _, next := range []session.State{session.StateConfirmed, session.StateCompleted} {
		if _, err := m.sessions.SetState(ctx, sessionID, next); err != nil {
			m.logger.Error("failed to record confirmation",
				"session_id", sessionID,
				"reservation_id", res.ID().String(),
				"error", err.Error())
			return Result{}, err
		}
	}
	sess, err := m.sessions.ClearDraft(ctx, sessionID)
	if err != nil {
		return Result{}, err
	}

	m.logger.Info("reservation confirmed",
		"session_id", sessionID,
		"reservation_id", res.ID().String(),
		"room_id", res.RoomID())
	return Result{Outcome: Confirmed{Reservation: res}, Session: sess}, nil
}

// conflict returns to COLLECTING_INFO, forgets the taken time and room, and suggests alternatives.
func (m *stateMachineImpl) conflict(ctx context.Context, sessionID string, c reservation.Candidate) (Result, error) {
	if _, err := m.sessions.SetState(ctx, sessionID, session.StateCollectingInfo); err != nil {
		return Result{}, err
	}
	sess, err := m.sessions.ClearFields(ctx, sessionID, reservation.FieldStartTime, reservation.FieldRoom)
	if err != nil {
		return Result{}, err
	}

	alternatives, err := m.availability.Suggest(ctx, c, m.suggestions)
	if err != nil {
		m.logger.Warn("failed to suggest alternatives", "session_id", sessionID, "error", err.Error())
		alternatives = nil
	}

	m.logger.Info("requested slot unavailable",
		"session_id", sessionID,
		"room_id", c.RoomID,
		"slot", c.Slot.String(),
		"alternatives", len(alternatives))
	return Result{
		Outcome: Conflict{
			Requested:    availability.Slot{RoomID: c.RoomID, Start: c.Slot.Start(), End: c.Slot.End()},
			Alternatives: alternatives,
		},
		Session: sess,
	}, nil
}

// abort leaves CONFIRMING with the draft intact before surfacing err.
func (m *stateMachineImpl) abort(ctx context.Context, sessionID string, err error) (Result, error) {
	if _, stateErr := m.sessions.SetState(ctx, sessionID, session.StateCollectingInfo); stateErr != nil {
		m.logger.Error("failed to leave confirming", "session_id", sessionID, "error", stateErr.Error())
	}
	return Result{}, err
}

func (m *stateMachineImpl) rejectFields(ctx context.Context, sessionID string, problems []*reservation.ValidationError) (Result, error) {
	fields := make([]reservation.Field, 0, len(problems))
	reasons := make([]string, 0, len(problems))
	for _, p := range problems {
		fields = append(fields, p.Field)
		reasons = append(reasons, p.Error())
	}

	sess, err := m.sessions.ClearFields(ctx, sessionID, fields...)
	if err != nil {
		return Result{}, err
	}

	m.logger.Info("rejected draft fields", "session_id", sessionID, "fields", reasons)
	return Result{
		Outcome: Failure{
			Code:    CodeValidation,
			Message: strings.Join(reasons, "; "),
			Fields:  fields,
		},
		Session: sess,
	}, nil
}

// validateFields checks every known field on its own so one bad value never discards the rest.
func (m *stateMachineImpl) validateFields(d draft.Draft, now time.Time) []*reservation.ValidationError {
	var checks []error
	if d.Date.Known {
		checks = append(checks, m.policy.ValidateDate(d.Date.Value, now))
	}
	if d.StartTime.Known {
		checks = append(checks, m.policy.ValidateStart(d.StartTime.Value))
	}
	if d.Duration.Known {
		checks = append(checks, m.policy.ValidateDuration(d.Duration.Value))
	}
	if d.RoomID.Known {
		checks = append(checks, m.policy.ValidateRoom(d.RoomID.Value))
	}
	if d.Requester.Known {
		checks = append(checks, m.policy.ValidateRequester(d.Requester.Value))
	}
	if d.Purpose.Known {
		checks = append(checks, m.policy.ValidatePurpose(d.Purpose.Value))
	}

	var problems []*reservation.ValidationError
	for _, err := range checks {
		var verr *reservation.ValidationError
		if errs.As(err, &verr) {
			problems = append(problems, verr)
		}
	}
	return problems
}
