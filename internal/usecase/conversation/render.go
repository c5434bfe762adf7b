package conversation

import (
	"fmt"
	"strings"
	"time"

	"roomchat/internal/domain/reservation"
	"roomchat/internal/usecase/availability"
	"roomchat/internal/usecase/booking"
)

var prompts = map[reservation.Field]string{
	reservation.FieldDate:      "which day",
	reservation.FieldStartTime: "what time it starts",
	reservation.FieldDuration:  "how long you need the room",
	reservation.FieldRoom:      "which room",
	reservation.FieldRequester: "your name",
	reservation.FieldPurpose:   "the purpose of the meeting",
}

// Render turns an outcome into the assistant's reply text.
func Render(outcome booking.Outcome, loc *time.Location) string {
	switch o := outcome.(type) {
	case booking.MissingFields:
		asks := make([]string, 0, len(o.Fields))
		for _, f := range o.Fields {
			asks = append(asks, prompts[f])
		}
		return "Please tell me " + strings.Join(asks, ", ") + "."
	case booking.Conflict:
		msg := fmt.Sprintf("Sorry, %s is already booked.", describe(o.Requested, loc))
		if len(o.Alternatives) == 0 {
			return msg + " No nearby alternatives are free, please pick another time."
		}
		alts := make([]string, 0, len(o.Alternatives))
		for _, a := range o.Alternatives {
			alts = append(alts, describe(a, loc))
		}
		return msg + " Available instead: " + strings.Join(alts, "; ") + "."
	case booking.Confirmed:
		r := o.Reservation
		return fmt.Sprintf("Booked %s for %s (%s). Reservation id: %s.",
			describe(availability.Slot{RoomID: r.RoomID(), Start: r.Start(), End: r.End()}, loc),
			r.Requester(), r.Purpose(), r.ID())
	case booking.Failure:
		return o.Message
	default:
		return ""
	}
}

func describe(s availability.Slot, loc *time.Location) string {
	return fmt.Sprintf("room %d on %s %s-%s",
		s.RoomID,
		s.Start.In(loc).Format("Mon 2006-01-02"),
		s.Start.In(loc).Format("15:04"),
		s.End.In(loc).Format("15:04"))
}
