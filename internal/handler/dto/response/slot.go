package response

import (
	"time"

	"roomchat/internal/pkg/errs"
	"roomchat/internal/usecase/availability"

	"github.com/jinzhu/copier"
)

type SlotResponse struct {
	RoomID int       `json:"room_id"`
	Start  time.Time `json:"start"`
	End    time.Time `json:"end"`
}

type AvailabilityResponse struct {
	Available bool           `json:"available"`
	FreeSlots []SlotResponse `json:"free_slots"`
}

func FromSlot(s availability.Slot) SlotResponse {
	var out SlotResponse
	mustCopy(&out, &s)
	return out
}

func FromSlots(slots []availability.Slot) []SlotResponse {
	out := make([]SlotResponse, 0, len(slots))
	if len(slots) == 0 {
		return out
	}
	mustCopy(&out, &slots)
	return out
}

// mustCopy panics when the field mapping is broken; the recovery middleware turns
// that into a 500 rather than an empty slot list.
func mustCopy(to, from any) {
	if err := copier.Copy(to, from); err != nil {
		panic(errs.Wrapf(err, "map %T to %T", from, to))
	}
}

func FromAvailability(a availability.Availability) AvailabilityResponse {
	return AvailabilityResponse{
		Available: a.Available,
		FreeSlots: FromSlots(a.FreeSlots),
	}
}
