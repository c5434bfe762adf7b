package conversation

import (
	"context"
	"log/slog"
	"strings"

	"roomchat/internal/domain/draft"
	"roomchat/internal/domain/reservation"
	"roomchat/internal/domain/session"
	"roomchat/internal/pkg/clock"
	"roomchat/internal/pkg/errs"
	"roomchat/internal/usecase/booking"
	"roomchat/internal/usecase/shared"
)

//go:generate mockgen -source=orchestrator.go -destination=../../../tests/mock/conversation/orchestrator.go -package=conversationmock

// historyWindow is how many recent messages are passed to the extractor.
const historyWindow = 10

// Reply is the result of one conversation turn.
type Reply struct {
	SessionID string
	State     session.State
	Draft     draft.Draft
	Message   string
	Response  booking.Outcome
}

type Orchestrator interface {
	HandleMessage(ctx context.Context, sessionID, text string) (Reply, error)
	Session(ctx context.Context, sessionID string) (*session.Session, error)
	// Reset drops the session. Resetting an unknown or already reset session is a no-op.
	Reset(ctx context.Context, sessionID string) error
}

type orchestratorImpl struct {
	sessions  shared.SessionStore
	machine   booking.StateMachine
	extractor Extractor
	policy    *reservation.Policy
	clock     clock.Clock
	logger    *slog.Logger
}

func NewOrchestrator(
	sessions shared.SessionStore,
	machine booking.StateMachine,
	extractor Extractor,
	policy *reservation.Policy,
	clock clock.Clock,
	logger *slog.Logger,
) Orchestrator {
	return &orchestratorImpl{
		sessions:  sessions,
		machine:   machine,
		extractor: extractor,
		policy:    policy,
		clock:     clock,
		logger:    logger,
	}
}

func (o *orchestratorImpl) HandleMessage(ctx context.Context, sessionID, text string) (Reply, error) {
	unlock, err := o.sessions.Lock(ctx, sessionID)
	if err != nil {
		return Reply{}, errs.Wrapf(err, "lock session %s", sessionID)
	}
	defer unlock()

	sess, err := o.sessions.GetOrCreate(ctx, sessionID)
	if err != nil {
		return Reply{}, err
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return o.respond(ctx, sess, "", booking.Failure{
			Code:    booking.CodeValidation,
			Message: "message must not be empty",
		})
	}

	if sess, err = o.sessions.AppendMessage(ctx, sessionID, session.Message{
		Role: session.RoleUser,
		Text: text,
		At:   o.clock.Now(),
	}); err != nil {
		return Reply{}, err
	}

	extracted, err := o.extractor.Extract(ctx, o.request(sess, text))
	if err != nil {
		o.logger.Warn("extraction failed", "session_id", sessionID, "error", err.Error())
		return o.respond(ctx, sess, "", booking.Failure{
			Code:    booking.CodeExtraction,
			Message: "sorry, I could not understand that, could you rephrase?",
		})
	}

	if sess, err = o.sessions.MergeDraft(ctx, sessionID, extracted.Update); err != nil {
		return Reply{}, err
	}

	result, err := o.machine.Evaluate(ctx, sess)
	if err != nil {
		o.logger.Error("evaluation failed",
			"session_id", sessionID,
			"error", err.Error(),
			"stack", errs.ExtractStackLines(err, 10))
		if latest, getErr := o.sessions.Get(ctx, sessionID); getErr == nil {
			sess = latest
		}
		return o.respond(ctx, sess, "", booking.Failure{
			Code:    booking.CodeInternal,
			Message: "something went wrong on our side, please try again",
		})
	}

	return o.respond(ctx, result.Session, extracted.Reply, result.Outcome)
}

func (o *orchestratorImpl) Session(ctx context.Context, sessionID string) (*session.Session, error) {
	return o.sessions.Get(ctx, sessionID)
}

func (o *orchestratorImpl) Reset(ctx context.Context, sessionID string) error {
	unlock, err := o.sessions.Lock(ctx, sessionID)
	if err != nil {
		return errs.Wrapf(err, "lock session %s", sessionID)
	}
	defer unlock()

	if err := o.sessions.Delete(ctx, sessionID); err != nil {
		return err
	}
	o.logger.Info("session reset", "session_id", sessionID)
	return nil
}

// respond records the assistant message and builds the reply. The extractor's wording is
// only used while fields are still being collected; every other outcome is rendered here.
func (o *orchestratorImpl) respond(ctx context.Context, sess *session.Session, hint string, outcome booking.Outcome) (Reply, error) {
	message := Render(outcome, o.policy.Location())
	if _, ok := outcome.(booking.MissingFields); ok && strings.TrimSpace(hint) != "" {
		message = hint
	}

	updated, err := o.sessions.AppendMessage(ctx, sess.ID, session.Message{
		Role: session.RoleAssistant,
		Text: message,
		At:   o.clock.Now(),
	})
	if err != nil {
		return Reply{}, err
	}

	return Reply{
		SessionID: updated.ID,
		State:     updated.State,
		Draft:     updated.Draft,
		Message:   message,
		Response:  outcome,
	}, nil
}

func (o *orchestratorImpl) request(sess *session.Session, text string) Request {
	history := sess.Messages
	if len(history) > historyWindow {
		history = history[len(history)-historyWindow:]
	}
	return Request{
		Utterance: text,
		Known:     sess.Draft.Summary(),
		Missing:   sess.Draft.Missing(),
		Today:     reservation.DateOf(o.clock.Now(), o.policy.Location()),
		Location:  o.policy.Location(),
		Rooms:     o.policy.Rooms().All(),
		History:   history,
	}
}
