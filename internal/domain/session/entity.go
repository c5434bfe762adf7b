package session

import (
	"fmt"
	"time"

	"roomchat/internal/domain/draft"
	"roomchat/internal/pkg/errs"
)

// MaxMessages bounds the retained conversation log; older messages are dropped first.
const MaxMessages = 200

type Message struct {
	Role Role      `json:"role"`
	Text string    `json:"text"`
	At   time.Time `json:"at"`
}

// Session is the per-conversation state. Only the session store mutates it; everything
// else works on clones.
type Session struct {
	ID        string      `json:"id"`
	Messages  []Message   `json:"messages"`
	Draft     draft.Draft `json:"draft"`
	State     State       `json:"state"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

func New(id string, now time.Time) *Session {
	return &Session{
		ID:        id,
		State:     StateCollectingInfo,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (s *Session) Append(msg Message) {
	s.Messages = append(s.Messages, msg)
	if over := len(s.Messages) - MaxMessages; over > 0 {
		s.Messages = append([]Message(nil), s.Messages[over:]...)
	}
	s.Touch(msg.At)
}

// Transition moves the session to next, rejecting anything outside the state graph.
func (s *Session) Transition(next State, now time.Time) error {
	if !s.State.CanTransitionTo(next) {
		return errs.Mark(
			errs.Newf("session %s: %s -> %s", s.ID, s.State, next),
			errs.ErrIllegalTransition,
		)
	}
	s.State = next
	s.Touch(now)
	return nil
}

// ResetDraft empties the draft and returns to COLLECTING_INFO. It is always legal.
func (s *Session) ResetDraft(now time.Time) {
	s.Draft = draft.Draft{}
	s.State = StateCollectingInfo
	s.Touch(now)
}

func (s *Session) IdleFor(now time.Time) time.Duration {
	return now.Sub(s.UpdatedAt)
}

func (s *Session) Clone() *Session {
	cp := *s
	cp.Messages = append([]Message(nil), s.Messages...)
	return &cp
}

func (s *Session) String() string {
	return fmt.Sprintf("session(%s, %s, %d messages)", s.ID, s.State, len(s.Messages))
}

// Touch records activity; UpdatedAt never moves backwards.
func (s *Session) Touch(now time.Time) {
	if now.After(s.UpdatedAt) {
		s.UpdatedAt = now
	}
}
