//go:build unit

package session_test

import (
	"testing"
	"time"

	"roomchat/internal/domain/draft"
	"roomchat/internal/domain/session"
	"roomchat/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestState_CanTransitionTo(t *testing.T) {
	legal := [][2]session.State{
		{session.StateCollectingInfo, session.StateConfirming},
		{session.StateConfirming, session.StateCollectingInfo},
		{session.StateConfirming, session.StateConfirmed},
		{session.StateConfirmed, session.StateCompleted},
		{session.StateCompleted, session.StateCollectingInfo},
	}
	all := []session.State{
		session.StateCollectingInfo, session.StateConfirming,
		session.StateConfirmed, session.StateCompleted,
	}

	isLegal := func(from, to session.State) bool {
		for _, pair := range legal {
			if pair[0] == from && pair[1] == to {
				return true
			}
		}
		return false
	}

	for _, from := range all {
		for _, to := range all {
			assert.Equal(t, isLegal(from, to), from.CanTransitionTo(to), "%s -> %s", from, to)
		}
	}
}

func TestSession_Transition(t *testing.T) {
	now := time.Date(2024, 6, 7, 12, 0, 0, 0, time.UTC)
	s := session.New("abc", now)
	require.Equal(t, session.StateCollectingInfo, s.State)

	err := s.Transition(session.StateConfirmed, now)
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.ErrIllegalTransition))
	assert.Equal(t, session.StateCollectingInfo, s.State)

	later := now.Add(time.Minute)
	require.NoError(t, s.Transition(session.StateConfirming, later))
	assert.Equal(t, later, s.UpdatedAt)
}

func TestSession_ResetDraft(t *testing.T) {
	now := time.Date(2024, 6, 7, 12, 0, 0, 0, time.UTC)
	s := session.New("abc", now)
	s.Draft.Merge(draft.Draft{Requester: draft.Known("Kim", 1)})
	require.NoError(t, s.Transition(session.StateConfirming, now))

	s.ResetDraft(now)
	assert.True(t, s.Draft.IsEmpty())
	assert.Equal(t, session.StateCollectingInfo, s.State)
}

func TestSession_AppendBoundsLog(t *testing.T) {
	now := time.Date(2024, 6, 7, 12, 0, 0, 0, time.UTC)
	s := session.New("abc", now)
	for i := 0; i < session.MaxMessages+5; i++ {
		s.Append(session.Message{Role: session.RoleUser, Text: "hi", At: now.Add(time.Duration(i) * time.Second)})
	}
	assert.Len(t, s.Messages, session.MaxMessages)
	assert.Equal(t, now.Add(time.Duration(session.MaxMessages+4)*time.Second), s.UpdatedAt)
}

func TestSession_CloneIsIndependent(t *testing.T) {
	now := time.Date(2024, 6, 7, 12, 0, 0, 0, time.UTC)
	s := session.New("abc", now)
	s.Append(session.Message{Role: session.RoleUser, Text: "hi", At: now})

	cp := s.Clone()
	cp.Append(session.Message{Role: session.RoleAssistant, Text: "hello", At: now})
	cp.Draft.Merge(draft.Draft{RoomID: draft.Known(1, 1)})

	assert.Len(t, s.Messages, 1)
	assert.False(t, s.Draft.RoomID.Known)
}
