package converter

import (
	"roomchat/internal/domain/reservation"
	"roomchat/internal/infra/sqlc"
	"roomchat/internal/pkg/pgconv"
)

func ReservationToInfra(res *reservation.Reservation) sqlc.CreateReservationParams {
	return sqlc.CreateReservationParams{
		ID:        res.ID(),
		RoomID:    int32(res.RoomID()), // #nosec G115 -- room ids are small
		Requester: res.Requester(),
		Purpose:   res.Purpose(),
		StartsAt:  pgconv.TimeToPgtype(res.Start()),
		EndsAt:    pgconv.TimeToPgtype(res.End()),
		Status:    res.Status().String(),
		CreatedAt: pgconv.TimeToPgtype(res.CreatedAt()),
	}
}

func ReservationFromInfra(row sqlc.Reservation) (*reservation.Reservation, error) {
	slot, err := reservation.NewTimeSlot(row.StartsAt.Time, row.EndsAt.Time)
	if err != nil {
		return nil, err
	}
	return reservation.ReconstructReservation(
		row.ID,
		int(row.RoomID),
		row.Requester,
		row.Purpose,
		slot,
		reservation.Status(row.Status),
		row.CreatedAt.Time,
		pgconv.TimePtrFromPgtype(row.CancelledAt),
	)
}
