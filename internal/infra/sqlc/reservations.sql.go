package sqlc

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const lockRoom = `-- name: LockRoom :exec
SELECT pg_advisory_xact_lock($1::bigint)
`

func (q *Queries) LockRoom(ctx context.Context, db DBTX, key int64) error {
	_, err := db.Exec(ctx, lockRoom, key)
	return err
}

const countOverlappingReservations = `-- name: CountOverlappingReservations :one
SELECT count(*) FROM reservations
WHERE room_id = $1
  AND status = 'active'
  AND slot && tstzrange($2::timestamptz, $3::timestamptz, '[)')
`

type CountOverlappingReservationsParams struct {
	RoomID   int32              `json:"room_id"`
	StartsAt pgtype.Timestamptz `json:"starts_at"`
	EndsAt   pgtype.Timestamptz `json:"ends_at"`
}

func (q *Queries) CountOverlappingReservations(ctx context.Context, db DBTX, arg CountOverlappingReservationsParams) (int64, error) {
	row := db.QueryRow(ctx, countOverlappingReservations, arg.RoomID, arg.StartsAt, arg.EndsAt)
	var count int64
	err := row.Scan(&count)
	return count, err
}

const createReservation = `-- name: CreateReservation :exec
INSERT INTO reservations (id, room_id, requester, purpose, starts_at, ends_at, status, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
`

type CreateReservationParams struct {
	ID        uuid.UUID          `json:"id"`
	RoomID    int32              `json:"room_id"`
	Requester string             `json:"requester"`
	Purpose   string             `json:"purpose"`
	StartsAt  pgtype.Timestamptz `json:"starts_at"`
	EndsAt    pgtype.Timestamptz `json:"ends_at"`
	Status    string             `json:"status"`
	CreatedAt pgtype.Timestamptz `json:"created_at"`
}

func (q *Queries) CreateReservation(ctx context.Context, db DBTX, arg CreateReservationParams) error {
	_, err := db.Exec(ctx, createReservation,
		arg.ID,
		arg.RoomID,
		arg.Requester,
		arg.Purpose,
		arg.StartsAt,
		arg.EndsAt,
		arg.Status,
		arg.CreatedAt,
	)
	return err
}

const getReservationByID = `-- name: GetReservationByID :one
SELECT id, room_id, requester, purpose, starts_at, ends_at, status, created_at, cancelled_at
FROM reservations
WHERE id = $1
`

func (q *Queries) GetReservationByID(ctx context.Context, db DBTX, id uuid.UUID) (Reservation, error) {
	row := db.QueryRow(ctx, getReservationByID, id)
	return scanReservation(row)
}

const getReservationByIDForUpdate = `-- name: GetReservationByIDForUpdate :one
SELECT id, room_id, requester, purpose, starts_at, ends_at, status, created_at, cancelled_at
FROM reservations
WHERE id = $1
FOR UPDATE
`

func (q *Queries) GetReservationByIDForUpdate(ctx context.Context, db DBTX, id uuid.UUID) (Reservation, error) {
	row := db.QueryRow(ctx, getReservationByIDForUpdate, id)
	return scanReservation(row)
}

const cancelReservation = `-- name: CancelReservation :exec
UPDATE reservations
SET status = 'cancelled', cancelled_at = $2
WHERE id = $1 AND status = 'active'
`

type CancelReservationParams struct {
	ID          uuid.UUID          `json:"id"`
	CancelledAt pgtype.Timestamptz `json:"cancelled_at"`
}

func (q *Queries) CancelReservation(ctx context.Context, db DBTX, arg CancelReservationParams) error {
	_, err := db.Exec(ctx, cancelReservation, arg.ID, arg.CancelledAt)
	return err
}

const listActiveReservations = `-- name: ListActiveReservations :many
SELECT id, room_id, requester, purpose, starts_at, ends_at, status, created_at, cancelled_at
FROM reservations
WHERE status = 'active'
  AND ($1::int IS NULL OR room_id = $1::int)
  AND ($2::timestamptz IS NULL OR ends_at > $2::timestamptz)
  AND ($3::timestamptz IS NULL OR starts_at < $3::timestamptz)
ORDER BY starts_at, room_id
`

type ListActiveReservationsParams struct {
	RoomID pgtype.Int4        `json:"room_id"`
	From   pgtype.Timestamptz `json:"from"`
	To     pgtype.Timestamptz `json:"to"`
}

func (q *Queries) ListActiveReservations(ctx context.Context, db DBTX, arg ListActiveReservationsParams) ([]Reservation, error) {
	rows, err := db.Query(ctx, listActiveReservations, arg.RoomID, arg.From, arg.To)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Reservation
	for rows.Next() {
		i, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanReservation(row scanner) (Reservation, error) {
	var i Reservation
	err := row.Scan(
		&i.ID,
		&i.RoomID,
		&i.Requester,
		&i.Purpose,
		&i.StartsAt,
		&i.EndsAt,
		&i.Status,
		&i.CreatedAt,
		&i.CancelledAt,
	)
	return i, err
}
