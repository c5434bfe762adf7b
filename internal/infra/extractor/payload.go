package extractor

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"roomchat/internal/domain/draft"
	"roomchat/internal/domain/reservation"
	"roomchat/internal/pkg/errs"
	"roomchat/internal/usecase/conversation"
)

// fieldValue is one extracted field. An empty value means the user did not mention it.
type fieldValue struct {
	Value      string  `json:"value"`
	Confidence float64 `json:"confidence"`
}

func (f fieldValue) mentioned() bool {
	return strings.TrimSpace(f.Value) != "" && f.Confidence > 0
}

func (f fieldValue) confidence() float64 {
	return min(max(f.Confidence, 0), 1)
}

type payload struct {
	Date            fieldValue `json:"date"`
	StartTime       fieldValue `json:"start_time"`
	DurationMinutes fieldValue `json:"duration_minutes"`
	Room            fieldValue `json:"room"`
	Requester       fieldValue `json:"requester"`
	Purpose         fieldValue `json:"purpose"`
	Reply           string     `json:"reply"`
}

const fieldSchema = `{
	"type":"object",
	"additionalProperties":false,
	"properties":{
		"value":{"type":"string"},
		"confidence":{"type":"number"}
	},
	"required":["value","confidence"]
}`

// Schema is the JSON schema both providers are asked to answer in.
var Schema = json.RawMessage(`{
	"type":"object",
	"additionalProperties":false,
	"properties":{
		"date":` + fieldSchema + `,
		"start_time":` + fieldSchema + `,
		"duration_minutes":` + fieldSchema + `,
		"room":` + fieldSchema + `,
		"requester":` + fieldSchema + `,
		"purpose":` + fieldSchema + `,
		"reply":{"type":"string"}
	},
	"required":["date","start_time","duration_minutes","room","requester","purpose","reply"]
}`)

// Decode turns a model answer into a partial draft. Values that do not parse are dropped
// rather than guessed; a body that is not the expected JSON is an extraction failure.
func Decode(raw string, loc *time.Location) (conversation.Result, error) {
	if loc == nil {
		loc = time.UTC
	}
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(raw, "```json")
	raw = strings.TrimPrefix(raw, "```")
	raw = strings.TrimSuffix(raw, "```")

	var p payload
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return conversation.Result{}, errs.Mark(errs.Wrap(err, "decode extraction payload"), errs.ErrExtraction)
	}

	var d draft.Draft
	if p.Date.mentioned() {
		if t, err := time.ParseInLocation(time.DateOnly, strings.TrimSpace(p.Date.Value), loc); err == nil {
			d.Date = draft.Known(t, p.Date.confidence())
		}
	}
	if p.StartTime.mentioned() {
		if t, err := reservation.ParseTimeOfDay(strings.TrimSpace(p.StartTime.Value)); err == nil {
			d.StartTime = draft.Known(t, p.StartTime.confidence())
		}
	}
	if p.DurationMinutes.mentioned() {
		if m, err := strconv.Atoi(strings.TrimSpace(p.DurationMinutes.Value)); err == nil && m > 0 {
			d.Duration = draft.Known(time.Duration(m)*time.Minute, p.DurationMinutes.confidence())
		}
	}
	if p.Room.mentioned() {
		if id, err := strconv.Atoi(strings.TrimSpace(p.Room.Value)); err == nil {
			d.RoomID = draft.Known(id, p.Room.confidence())
		}
	}
	if p.Requester.mentioned() {
		d.Requester = draft.Known(strings.TrimSpace(p.Requester.Value), p.Requester.confidence())
	}
	if p.Purpose.mentioned() {
		d.Purpose = draft.Known(strings.TrimSpace(p.Purpose.Value), p.Purpose.confidence())
	}

	return conversation.Result{Update: d, Reply: strings.TrimSpace(p.Reply)}, nil
}
