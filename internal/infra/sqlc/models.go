package sqlc

import (
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type Reservation struct {
	ID          uuid.UUID          `json:"id"`
	RoomID      int32              `json:"room_id"`
	Requester   string             `json:"requester"`
	Purpose     string             `json:"purpose"`
	StartsAt    pgtype.Timestamptz `json:"starts_at"`
	EndsAt      pgtype.Timestamptz `json:"ends_at"`
	Status      string             `json:"status"`
	CreatedAt   pgtype.Timestamptz `json:"created_at"`
	CancelledAt pgtype.Timestamptz `json:"cancelled_at"`
}
