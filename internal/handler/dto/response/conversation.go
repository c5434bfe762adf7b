package response

import (
	"time"

	"roomchat/internal/domain/draft"
	"roomchat/internal/domain/reservation"
	"roomchat/internal/domain/session"
	"roomchat/internal/pkg/ptr"
	"roomchat/internal/usecase/booking"
	"roomchat/internal/usecase/conversation"
)

const (
	OutcomeMissingFields = "missing_fields"
	OutcomeConflict      = "conflict"
	OutcomeConfirmed     = "confirmed"
	OutcomeError         = "error"
)

type NewSessionResponse struct {
	SessionID string `json:"session_id"`
}

// DraftResponse shows only the fields collected so far.
type DraftResponse struct {
	Date            *string `json:"date,omitempty"`
	StartTime       *string `json:"start_time,omitempty"`
	DurationMinutes *int    `json:"duration_minutes,omitempty"`
	RoomID          *int    `json:"room_id,omitempty"`
	Requester       *string `json:"requester,omitempty"`
	Purpose         *string `json:"purpose,omitempty"`
}

type OutcomeResponse struct {
	Type         string               `json:"type"`
	Fields       []string             `json:"fields,omitempty"`
	Requested    *SlotResponse        `json:"requested,omitempty"`
	Alternatives []SlotResponse       `json:"alternatives,omitempty"`
	Reservation  *ReservationResponse `json:"reservation,omitempty"`
	Code         string               `json:"code,omitempty"`
	Message      string               `json:"message,omitempty"`
}

type ReplyResponse struct {
	SessionID string          `json:"session_id"`
	State     string          `json:"state"`
	Message   string          `json:"message"`
	Draft     DraftResponse   `json:"draft"`
	Response  OutcomeResponse `json:"response"`
}

type MessageResponse struct {
	Role string    `json:"role"`
	Text string    `json:"text"`
	At   time.Time `json:"at"`
}

type SessionResponse struct {
	ID        string            `json:"id"`
	State     string            `json:"state"`
	Draft     DraftResponse     `json:"draft"`
	Messages  []MessageResponse `json:"messages"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

func FromReply(r conversation.Reply) ReplyResponse {
	return ReplyResponse{
		SessionID: r.SessionID,
		State:     r.State.String(),
		Message:   r.Message,
		Draft:     FromDraft(r.Draft),
		Response:  FromOutcome(r.Response),
	}
}

func FromSession(s *session.Session) SessionResponse {
	messages := make([]MessageResponse, len(s.Messages))
	for i, m := range s.Messages {
		messages[i] = MessageResponse{Role: string(m.Role), Text: m.Text, At: m.At}
	}
	return SessionResponse{
		ID:        s.ID,
		State:     s.State.String(),
		Draft:     FromDraft(s.Draft),
		Messages:  messages,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
}

func FromDraft(d draft.Draft) DraftResponse {
	var out DraftResponse
	if d.Date.Known {
		out.Date = ptr.To(d.Date.Value.Format(time.DateOnly))
	}
	if d.StartTime.Known {
		out.StartTime = ptr.To(d.StartTime.Value.String())
	}
	if d.Duration.Known {
		out.DurationMinutes = ptr.To(int(d.Duration.Value / time.Minute))
	}
	if d.RoomID.Known {
		out.RoomID = ptr.To(d.RoomID.Value)
	}
	if d.Requester.Known {
		out.Requester = ptr.To(d.Requester.Value)
	}
	if d.Purpose.Known {
		out.Purpose = ptr.To(d.Purpose.Value)
	}
	return out
}

func FromOutcome(o booking.Outcome) OutcomeResponse {
	switch o := o.(type) {
	case booking.MissingFields:
		return OutcomeResponse{Type: OutcomeMissingFields, Fields: fieldNames(o.Fields)}
	case booking.Conflict:
		requested := FromSlot(o.Requested)
		return OutcomeResponse{
			Type:         OutcomeConflict,
			Requested:    &requested,
			Alternatives: FromSlots(o.Alternatives),
		}
	case booking.Confirmed:
		return OutcomeResponse{Type: OutcomeConfirmed, Reservation: FromReservation(o.Reservation)}
	case booking.Failure:
		return OutcomeResponse{
			Type:    OutcomeError,
			Code:    string(o.Code),
			Message: o.Message,
			Fields:  fieldNames(o.Fields),
		}
	default:
		return OutcomeResponse{Type: OutcomeError, Code: string(booking.CodeInternal)}
	}
}

func fieldNames(fields []reservation.Field) []string {
	if len(fields) == 0 {
		return nil
	}
	out := make([]string, len(fields))
	for i, f := range fields {
		out[i] = f.String()
	}
	return out
}
