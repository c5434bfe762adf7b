package extractor

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"roomchat/internal/usecase/conversation"
)

const systemPrompt = `You extract meeting room booking details from a conversation.
Fill a field only when the user's latest message states it or clearly resolves it
against the known values. Never guess: leave "value" empty and "confidence" 0 for
anything not mentioned. Resolve relative dates ("tomorrow", "next Monday") against
today's date. Use these formats:
- date: YYYY-MM-DD
- start_time: HH:MM, 24-hour
- duration_minutes: whole minutes, e.g. "60"
- room: the numeric room id
- requester: the name of the person booking
- purpose: a short description of the meeting
confidence is between 0 and 1. reply is one short sentence to the user that asks
for the missing fields.`

// Prompt returns the system instructions and the user turn for req.
func Prompt(req conversation.Request) (string, string) {
	loc := req.Location
	if loc == nil {
		loc = time.UTC
	}

	var b strings.Builder
	today := req.Today.In(loc)
	fmt.Fprintf(&b, "Today is %s (%s), time zone %s.\n", today.Format(time.DateOnly), today.Weekday(), loc)

	b.WriteString("Rooms:\n")
	for _, r := range req.Rooms {
		fmt.Fprintf(&b, "- %d: %s, seats %d\n", r.ID(), r.Name(), r.Capacity())
	}

	if len(req.Known) > 0 {
		keys := make([]string, 0, len(req.Known))
		for k := range req.Known {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		b.WriteString("Already known:\n")
		for _, k := range keys {
			fmt.Fprintf(&b, "- %s: %s\n", k, req.Known[k])
		}
	}
	if len(req.Missing) > 0 {
		names := make([]string, len(req.Missing))
		for i, f := range req.Missing {
			names[i] = f.String()
		}
		fmt.Fprintf(&b, "Still missing: %s\n", strings.Join(names, ", "))
	}

	if len(req.History) > 0 {
		b.WriteString("Conversation so far:\n")
		for _, m := range req.History {
			fmt.Fprintf(&b, "%s: %s\n", m.Role, m.Text)
		}
	}
	fmt.Fprintf(&b, "Latest user message: %s\n", req.Utterance)

	return systemPrompt, b.String()
}
