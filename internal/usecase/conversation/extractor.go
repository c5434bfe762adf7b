package conversation

import (
	"context"
	"time"

	"roomchat/internal/domain/draft"
	"roomchat/internal/domain/reservation"
	"roomchat/internal/domain/room"
	"roomchat/internal/domain/session"
)

//go:generate mockgen -source=extractor.go -destination=../../../tests/mock/conversation/extractor.go -package=conversationmock

// Request is everything an extractor may use to interpret one utterance.
type Request struct {
	Utterance string
	// Known holds the current draft rendered as strings, keyed by field name.
	Known    map[string]string
	Missing  []reservation.Field
	Today    time.Time
	Location *time.Location
	Rooms    []room.Room
	History  []session.Message
}

// Result is a partial draft: only fields the extractor is confident were mentioned are Known.
type Result struct {
	Update draft.Draft
	Reply  string
}

// Extractor turns free text into structured booking fields. Implementations never
// guess values that were not mentioned.
type Extractor interface {
	Extract(ctx context.Context, req Request) (Result, error)
}
