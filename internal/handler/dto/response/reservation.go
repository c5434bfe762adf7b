package response

import (
	"time"

	"roomchat/internal/domain/reservation"
	"roomchat/internal/domain/room"

	"github.com/google/uuid"
)

type ReservationResponse struct {
	ID          uuid.UUID  `json:"id"`
	RoomID      int        `json:"room_id"`
	Requester   string     `json:"requester"`
	Purpose     string     `json:"purpose"`
	Start       time.Time  `json:"start"`
	End         time.Time  `json:"end"`
	Status      string     `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	CancelledAt *time.Time `json:"cancelled_at,omitempty"`
}

func FromReservation(r *reservation.Reservation) *ReservationResponse {
	return &ReservationResponse{
		ID:          r.ID(),
		RoomID:      r.RoomID(),
		Requester:   r.Requester(),
		Purpose:     r.Purpose(),
		Start:       r.Start(),
		End:         r.End(),
		Status:      r.Status().String(),
		CreatedAt:   r.CreatedAt(),
		CancelledAt: r.CancelledAt(),
	}
}

func FromReservations(rs []*reservation.Reservation) []*ReservationResponse {
	out := make([]*ReservationResponse, len(rs))
	for i, r := range rs {
		out[i] = FromReservation(r)
	}
	return out
}

type RoomResponse struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Capacity int    `json:"capacity"`
}

func FromRooms(rooms []room.Room) []RoomResponse {
	out := make([]RoomResponse, len(rooms))
	for i, r := range rooms {
		out[i] = RoomResponse{ID: r.ID(), Name: r.Name(), Capacity: r.Capacity()}
	}
	return out
}
