package draft

import (
	"errors"
	"strconv"
	"time"

	"roomchat/internal/domain/reservation"
)

var ErrIncompleteDraft = errors.New("draft is missing required fields")

// Value is one draft field together with the confidence of the extraction that produced it.
type Value[T any] struct {
	Value      T       `json:"value"`
	Confidence float64 `json:"confidence"`
	Known      bool    `json:"known"`
}

func Known[T any](v T, confidence float64) Value[T] {
	return Value[T]{Value: v, Confidence: confidence, Known: true}
}

// merge applies the overwrite rule: an incoming value wins only when the current value is
// unset or the incoming confidence is not lower.
func merge[T any](cur *Value[T], next Value[T]) bool {
	if !next.Known {
		return false
	}
	if cur.Known && next.Confidence < cur.Confidence {
		return false
	}
	*cur = next
	return true
}

// Draft is the in-progress booking request of one conversation. The same type doubles as a
// partial update: fields that are not Known are treated as not mentioned.
type Draft struct {
	Date      Value[time.Time]             `json:"date"`
	StartTime Value[reservation.TimeOfDay] `json:"start_time"`
	Duration  Value[time.Duration]         `json:"duration"`
	RoomID    Value[int]                   `json:"room_id"`
	Requester Value[string]                `json:"requester"`
	Purpose   Value[string]                `json:"purpose"`
}

// Merge folds update into d and returns the fields that changed.
func (d *Draft) Merge(update Draft) []reservation.Field {
	var changed []reservation.Field
	if merge(&d.Date, update.Date) {
		changed = append(changed, reservation.FieldDate)
	}
	if merge(&d.StartTime, update.StartTime) {
		changed = append(changed, reservation.FieldStartTime)
	}
	if merge(&d.Duration, update.Duration) {
		changed = append(changed, reservation.FieldDuration)
	}
	if merge(&d.RoomID, update.RoomID) {
		changed = append(changed, reservation.FieldRoom)
	}
	if merge(&d.Requester, update.Requester) {
		changed = append(changed, reservation.FieldRequester)
	}
	if merge(&d.Purpose, update.Purpose) {
		changed = append(changed, reservation.FieldPurpose)
	}
	return changed
}

// Clear resets the given fields to unset regardless of their confidence.
func (d *Draft) Clear(fields ...reservation.Field) {
	for _, f := range fields {
		switch f {
		case reservation.FieldDate:
			d.Date = Value[time.Time]{}
		case reservation.FieldStartTime:
			d.StartTime = Value[reservation.TimeOfDay]{}
		case reservation.FieldDuration:
			d.Duration = Value[time.Duration]{}
		case reservation.FieldRoom:
			d.RoomID = Value[int]{}
		case reservation.FieldRequester:
			d.Requester = Value[string]{}
		case reservation.FieldPurpose:
			d.Purpose = Value[string]{}
		}
	}
}

func (d Draft) Has(f reservation.Field) bool {
	switch f {
	case reservation.FieldDate:
		return d.Date.Known
	case reservation.FieldStartTime:
		return d.StartTime.Known
	case reservation.FieldDuration:
		return d.Duration.Known
	case reservation.FieldRoom:
		return d.RoomID.Known
	case reservation.FieldRequester:
		return d.Requester.Known
	case reservation.FieldPurpose:
		return d.Purpose.Known
	default:
		return false
	}
}

// Missing lists the required fields that are still unset, in prompting order.
func (d Draft) Missing() []reservation.Field {
	var missing []reservation.Field
	for _, f := range reservation.RequiredFields {
		if !d.Has(f) {
			missing = append(missing, f)
		}
	}
	return missing
}

func (d Draft) IsComplete() bool {
	return len(d.Missing()) == 0
}

func (d Draft) IsEmpty() bool {
	for _, f := range reservation.RequiredFields {
		if d.Has(f) {
			return false
		}
	}
	return true
}

// Slot anchors date, start time and duration in loc. ok is false until all three are known.
func (d Draft) Slot(loc *time.Location) (reservation.TimeSlot, bool) {
	if !d.Date.Known || !d.StartTime.Known || !d.Duration.Known || d.Duration.Value <= 0 {
		return reservation.TimeSlot{}, false
	}
	start := d.StartTime.Value.On(d.Date.Value, loc)
	return reservation.MustTimeSlot(start, start.Add(d.Duration.Value)), true
}

func (d Draft) Candidate(loc *time.Location) (reservation.Candidate, error) {
	if !d.IsComplete() {
		return reservation.Candidate{}, ErrIncompleteDraft
	}
	slot, ok := d.Slot(loc)
	if !ok {
		return reservation.Candidate{}, ErrIncompleteDraft
	}
	return reservation.Candidate{
		RoomID:    d.RoomID.Value,
		Requester: d.Requester.Value,
		Purpose:   d.Purpose.Value,
		Slot:      slot,
	}, nil
}

// Summary renders the known fields as plain strings for the extractor prompt.
func (d Draft) Summary() map[string]string {
	out := make(map[string]string, len(reservation.RequiredFields))
	if d.Date.Known {
		out[reservation.FieldDate.String()] = d.Date.Value.Format(time.DateOnly)
	}
	if d.StartTime.Known {
		out[reservation.FieldStartTime.String()] = d.StartTime.Value.String()
	}
	if d.Duration.Known {
		out[reservation.FieldDuration.String()] = d.Duration.Value.String()
	}
	if d.RoomID.Known {
		out[reservation.FieldRoom.String()] = strconv.Itoa(d.RoomID.Value)
	}
	if d.Requester.Known {
		out[reservation.FieldRequester.String()] = d.Requester.Value
	}
	if d.Purpose.Known {
		out[reservation.FieldPurpose.String()] = d.Purpose.Value
	}
	return out
}
