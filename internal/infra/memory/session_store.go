package memory

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"roomchat/internal/domain/draft"
	"roomchat/internal/domain/reservation"
	"roomchat/internal/domain/session"
	"roomchat/internal/pkg/clock"
	"roomchat/internal/pkg/errs"
	"roomchat/internal/usecase/shared"
)

type turnLock struct {
	ch   chan struct{}
	refs int
}

// SessionStore keeps sessions in process memory. Data operations share one mutex;
// conversation turns are serialized per id by a separate semaphore so a long turn
// never blocks reads of other sessions.
type SessionStore struct {
	clock   clock.Clock
	idleTTL time.Duration
	logger  *slog.Logger

	mu       sync.Mutex
	sessions map[string]*session.Session

	turnsMu sync.Mutex
	turns   map[string]*turnLock
}

var _ shared.SessionStore = (*SessionStore)(nil)

func NewSessionStore(clock clock.Clock, idleTTL time.Duration, logger *slog.Logger) *SessionStore {
	return &SessionStore{
		clock:    clock,
		idleTTL:  idleTTL,
		logger:   logger,
		sessions: make(map[string]*session.Session),
		turns:    make(map[string]*turnLock),
	}
}

func (s *SessionStore) GetOrCreate(ctx context.Context, id string) (*session.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	if sess, ok := s.live(id, now); ok {
		return sess.Clone(), nil
	}
	sess := session.New(id, now)
	s.sessions[id] = sess
	s.logger.Debug("session created", "session_id", id)
	return sess.Clone(), nil
}

func (s *SessionStore) Get(ctx context.Context, id string) (*session.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.live(id, s.clock.Now())
	if !ok {
		return nil, notFound(id)
	}
	return sess.Clone(), nil
}

func (s *SessionStore) AppendMessage(ctx context.Context, id string, msg session.Message) (*session.Session, error) {
	return s.update(ctx, id, func(sess *session.Session, now time.Time) error {
		if msg.At.IsZero() {
			msg.At = now
		}
		sess.Append(msg)
		return nil
	})
}

func (s *SessionStore) MergeDraft(ctx context.Context, id string, update draft.Draft) (*session.Session, error) {
	return s.update(ctx, id, func(sess *session.Session, now time.Time) error {
		sess.Draft.Merge(update)
		sess.Touch(now)
		return nil
	})
}

func (s *SessionStore) ClearFields(ctx context.Context, id string, fields ...reservation.Field) (*session.Session, error) {
	return s.update(ctx, id, func(sess *session.Session, now time.Time) error {
		sess.Draft.Clear(fields...)
		sess.Touch(now)
		return nil
	})
}

func (s *SessionStore) SetState(ctx context.Context, id string, next session.State) (*session.Session, error) {
	return s.update(ctx, id, func(sess *session.Session, now time.Time) error {
		return sess.Transition(next, now)
	})
}

func (s *SessionStore) ClearDraft(ctx context.Context, id string) (*session.Session, error) {
	return s.update(ctx, id, func(sess *session.Session, now time.Time) error {
		sess.ResetDraft(now)
		return nil
	})
}

// Delete drops the session. Deleting an unknown id is not an error.
func (s *SessionStore) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}

// Lock blocks until no other turn holds id, or ctx is done.
func (s *SessionStore) Lock(ctx context.Context, id string) (shared.Unlock, error) {
	s.turnsMu.Lock()
	tl, ok := s.turns[id]
	if !ok {
		tl = &turnLock{ch: make(chan struct{}, 1)}
		s.turns[id] = tl
	}
	tl.refs++
	s.turnsMu.Unlock()

	select {
	case tl.ch <- struct{}{}:
	case <-ctx.Done():
		s.release(id, tl)
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-tl.ch
			s.release(id, tl)
		})
	}, nil
}

// Sweep discards sessions idle for longer than the TTL and reports how many were removed.
func (s *SessionStore) Sweep(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, sess := range s.sessions {
		if s.expired(sess, now) {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

// RunJanitor sweeps every interval until ctx is cancelled.
func (s *SessionStore) RunJanitor(ctx context.Context, interval time.Duration) {
	if interval <= 0 || s.idleTTL <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.Sweep(s.clock.Now()); n > 0 {
				s.logger.Info("expired idle sessions", "count", n)
			}
		}
	}
}

func (s *SessionStore) update(ctx context.Context, id string, fn func(*session.Session, time.Time) error) (*session.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	sess, ok := s.live(id, now)
	if !ok {
		return nil, notFound(id)
	}

	cp := sess.Clone()
	if err := fn(cp, now); err != nil {
		return nil, err
	}
	s.sessions[id] = cp
	return cp.Clone(), nil
}

// live returns the stored session, dropping it first if it has expired. Callers hold s.mu.
func (s *SessionStore) live(id string, now time.Time) (*session.Session, bool) {
	sess, ok := s.sessions[id]
	if !ok {
		return nil, false
	}
	if s.expired(sess, now) {
		delete(s.sessions, id)
		return nil, false
	}
	return sess, true
}

func (s *SessionStore) expired(sess *session.Session, now time.Time) bool {
	return s.idleTTL > 0 && sess.IdleFor(now) > s.idleTTL
}

func (s *SessionStore) release(id string, tl *turnLock) {
	s.turnsMu.Lock()
	defer s.turnsMu.Unlock()
	tl.refs--
	if tl.refs == 0 {
		delete(s.turns, id)
	}
}

func notFound(id string) error {
	return errs.Mark(errs.Newf("session %s", id), errs.ErrSessionNotFound)
}
