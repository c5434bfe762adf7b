package redisstore

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"roomchat/internal/domain/draft"
	"roomchat/internal/domain/reservation"
	"roomchat/internal/domain/session"
	"roomchat/internal/pkg/clock"
	"roomchat/internal/pkg/errs"
	"roomchat/internal/usecase/shared"

	"github.com/go-redis/redis/v8"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

const (
	sessionPrefix = "roomchat:session:"
	lockPrefix    = "roomchat:session-lock:"

	maxWatchRetries = 5
	lockPollEvery   = 25 * time.Millisecond
)

// unlockScript deletes the lock only if it still holds our token.
var unlockScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// SessionStore keeps each session as a JSON snapshot under one key. The key's TTL is the
// idle timeout and is refreshed on every write, so abandoned sessions expire on their own.
type SessionStore struct {
	client  *redis.Client
	clock   clock.Clock
	idleTTL time.Duration
	lockTTL time.Duration
	logger  *slog.Logger
}

var _ shared.SessionStore = (*SessionStore)(nil)

func NewSessionStore(client *redis.Client, clock clock.Clock, idleTTL, lockTTL time.Duration, logger *slog.Logger) *SessionStore {
	return &SessionStore{
		client:  client,
		clock:   clock,
		idleTTL: idleTTL,
		lockTTL: lockTTL,
		logger:  logger,
	}
}

func (s *SessionStore) GetOrCreate(ctx context.Context, id string) (*session.Session, error) {
	fresh := session.New(id, s.clock.Now())
	b, err := json.Marshal(fresh)
	if err != nil {
		return nil, errs.Wrap(err, "encode session")
	}

	created, err := s.client.SetNX(ctx, sessionPrefix+id, b, s.idleTTL).Result()
	if err != nil {
		return nil, s.transient(err, "create session")
	}
	if created {
		s.logger.Debug("session created", "session_id", id)
		return fresh, nil
	}
	return s.Get(ctx, id)
}

func (s *SessionStore) Get(ctx context.Context, id string) (*session.Session, error) {
	data, err := s.client.Get(ctx, sessionPrefix+id).Bytes()
	if err == redis.Nil {
		return nil, notFound(id)
	}
	if err != nil {
		return nil, s.transient(err, "get session")
	}
	return decode(data)
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

func (s *SessionStore) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, sessionPrefix+id).Err(); err != nil {
		return s.transient(err, "delete session")
	}
	return nil
}

// Lock takes SET NX PX on a per-session key, polling until it is free or ctx is done.
// The lock expires after lockTTL so a crashed holder cannot wedge the session.
func (s *SessionStore) Lock(ctx context.Context, id string) (shared.Unlock, error) {
	token, err := gonanoid.New()
	if err != nil {
		return nil, errs.Wrap(err, "generate lock token")
	}
	key := lockPrefix + id

	ticker := time.NewTicker(lockPollEvery)
	defer ticker.Stop()
	for {
		ok, err := s.client.SetNX(ctx, key, token, s.lockTTL).Result()
		if err != nil {
			return nil, s.transient(err, "acquire session lock")
		}
		if ok {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			// the turn's ctx may already be cancelled
			releaseCtx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			if err := unlockScript.Run(releaseCtx, s.client, []string{key}, token).Err(); err != nil && err != redis.Nil {
				s.logger.Warn("failed to release session lock", "session_id", id, "error", err.Error())
			}
		})
	}, nil
}

// update applies fn under WATCH/MULTI so concurrent writers never lose each other's changes.
func (s *SessionStore) update(ctx context.Context, id string, fn func(*session.Session, time.Time) error) (*session.Session, error) {
	key := sessionPrefix + id
	var result *session.Session

	txf := func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		if err == redis.Nil {
			return notFound(id)
		}
		if err != nil {
			return err
		}

		sess, err := decode(data)
		if err != nil {
			return err
		}
		if err := fn(sess, s.clock.Now()); err != nil {
			return err
		}

		b, err := json.Marshal(sess)
		if err != nil {
			return errs.Wrap(err, "encode session")
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, b, s.idleTTL)
			return nil
		})
		if err != nil {
			return err
		}
		result = sess
		return nil
	}

	for attempt := 0; attempt < maxWatchRetries; attempt++ {
		err := s.client.Watch(ctx, txf, key)
		if err == nil {
			return result, nil
		}
		if err == redis.TxFailedErr {
			continue
		}
		if errs.Is(err, errs.ErrSessionNotFound) || errs.Is(err, errs.ErrIllegalTransition) {
			return nil, err
		}
		return nil, s.transient(err, "update session")
	}
	return nil, s.transient(redis.TxFailedErr, "update session: too much contention")
}

func (s *SessionStore) transient(err error, msg string) error {
	s.logger.Warn("redis session store error", "op", msg, "error", err.Error())
	return errs.Mark(errs.Wrap(err, msg), errs.ErrTransient)
}

func decode(data []byte) (*session.Session, error) {
	var sess session.Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, errs.Wrap(err, "decode session")
	}
	return &sess, nil
}

func notFound(id string) error {
	return errs.Mark(errs.Newf("session %s", id), errs.ErrSessionNotFound)
}
