package repository

import (
	"context"
	"log/slog"

	"roomchat/internal/domain/reservation"
	"roomchat/internal/infra"
	"roomchat/internal/infra/repository/converter"
	"roomchat/internal/infra/sqlc"
	"roomchat/internal/pkg/clock"
	"roomchat/internal/pkg/errs"
	"roomchat/internal/pkg/pgconv"
	"roomchat/internal/usecase/shared"

	"github.com/google/uuid"
)

type ReservationQueries interface {
	LockRoom(ctx context.Context, db sqlc.DBTX, key int64) error
	CountOverlappingReservations(ctx context.Context, db sqlc.DBTX, arg sqlc.CountOverlappingReservationsParams) (int64, error)
	CreateReservation(ctx context.Context, db sqlc.DBTX, arg sqlc.CreateReservationParams) error
	GetReservationByID(ctx context.Context, db sqlc.DBTX, id uuid.UUID) (sqlc.Reservation, error)
	GetReservationByIDForUpdate(ctx context.Context, db sqlc.DBTX, id uuid.UUID) (sqlc.Reservation, error)
	CancelReservation(ctx context.Context, db sqlc.DBTX, arg sqlc.CancelReservationParams) error
	ListActiveReservations(ctx context.Context, db sqlc.DBTX, arg sqlc.ListActiveReservationsParams) ([]sqlc.Reservation, error)
}

// TxRunner is implemented by uow.PostgresUoW.
type TxRunner interface {
	Within(ctx context.Context, fn func(ctx context.Context, tx sqlc.DBTX) error) error
	WithDB(ctx context.Context, fn func(ctx context.Context, db sqlc.DBTX) error) error
}

// ReservationRepository is the PostgreSQL ReservationStore. Commits for one room are
// serialized by a transaction-scoped advisory lock keyed on the room id; the
// reservations_no_overlap exclusion constraint backs it up.
type ReservationRepository struct {
	queries ReservationQueries
	runner  TxRunner
	policy  *reservation.Policy
	clock   clock.Clock
	logger  *slog.Logger
}

var _ shared.ReservationStore = (*ReservationRepository)(nil)

func NewReservationRepository(
	queries ReservationQueries,
	runner TxRunner,
	policy *reservation.Policy,
	clock clock.Clock,
	logger *slog.Logger,
) *ReservationRepository {
	return &ReservationRepository{
		queries: queries,
		runner:  runner,
		policy:  policy,
		clock:   clock,
		logger:  logger,
	}
}

func (r *ReservationRepository) TryCommit(ctx context.Context, c reservation.Candidate) (*reservation.Reservation, error) {
	res, err := reservation.NewReservation(r.policy, c, r.clock.Now())
	if err != nil {
		return nil, err
	}

	err = r.runner.Within(ctx, func(ctx context.Context, tx sqlc.DBTX) error {
		if err := r.queries.LockRoom(ctx, tx, int64(c.RoomID)); err != nil {
			return r.wrap("failed to lock room", err)
		}

		overlapping, err := r.queries.CountOverlappingReservations(ctx, tx, sqlc.CountOverlappingReservationsParams{
			RoomID:   int32(c.RoomID), // #nosec G115 -- room ids are small
			StartsAt: pgconv.TimeToPgtype(c.Slot.Start()),
			EndsAt:   pgconv.TimeToPgtype(c.Slot.End()),
		})
		if err != nil {
			return r.wrap("failed to check overlapping reservations", err)
		}
		if overlapping > 0 {
			return infra.WrapRepoErr(r.logger, infra.KindConflict, "room already booked for "+c.Slot.String(), nil)
		}

		if err := r.queries.CreateReservation(ctx, tx, converter.ReservationToInfra(res)); err != nil {
			return r.wrap("failed to create reservation", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return res, nil
}

func (r *ReservationRepository) Cancel(ctx context.Context, id uuid.UUID) (*reservation.Reservation, error) {
	var cancelled *reservation.Reservation

	err := r.runner.Within(ctx, func(ctx context.Context, tx sqlc.DBTX) error {
		row, err := r.queries.GetReservationByIDForUpdate(ctx, tx, id)
		if err != nil {
			return r.wrap("failed to load reservation "+id.String(), err)
		}

		res, err := converter.ReservationFromInfra(row)
		if err != nil {
			return infra.WrapRepoErr(r.logger, infra.KindDBFailure, "corrupt reservation row", err)
		}
		if err := res.Cancel(r.clock.Now()); err != nil {
			return errs.Mark(errs.Wrapf(err, "cancel %s", id), errs.ErrAlreadyCancelled)
		}

		if err := r.queries.CancelReservation(ctx, tx, sqlc.CancelReservationParams{
			ID:          id,
			CancelledAt: pgconv.TimePtrToPgtype(res.CancelledAt()),
		}); err != nil {
			return r.wrap("failed to cancel reservation", err)
		}

		cancelled = res
		return nil
	})
	if err != nil {
		return nil, err
	}

	return cancelled, nil
}

func (r *ReservationRepository) FindByID(ctx context.Context, id uuid.UUID) (*reservation.Reservation, error) {
	var found *reservation.Reservation

	err := r.runner.WithDB(ctx, func(ctx context.Context, db sqlc.DBTX) error {
		row, err := r.queries.GetReservationByID(ctx, db, id)
		if err != nil {
			return r.wrap("failed to find reservation "+id.String(), err)
		}
		found, err = converter.ReservationFromInfra(row)
		if err != nil {
			return infra.WrapRepoErr(r.logger, infra.KindDBFailure, "corrupt reservation row", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return found, nil
}

func (r *ReservationRepository) ListActive(ctx context.Context, f reservation.Filter) ([]*reservation.Reservation, error) {
	var result []*reservation.Reservation

	err := r.runner.WithDB(ctx, func(ctx context.Context, db sqlc.DBTX) error {
		rows, err := r.queries.ListActiveReservations(ctx, db, sqlc.ListActiveReservationsParams{
			RoomID: pgconv.Int4PtrToPgtype(f.RoomID),
			From:   pgconv.TimePtrToPgtype(f.From),
			To:     pgconv.TimePtrToPgtype(f.To),
		})
		if err != nil {
			return r.wrap("failed to list active reservations", err)
		}

		result = make([]*reservation.Reservation, 0, len(rows))
		for _, row := range rows {
			res, err := converter.ReservationFromInfra(row)
			if err != nil {
				return infra.WrapRepoErr(r.logger, infra.KindDBFailure, "corrupt reservation row", err)
			}
			result = append(result, res)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (r *ReservationRepository) wrap(msg string, err error) error {
	return infra.WrapRepoErr(r.logger, infra.Classify(err), msg, err)
}
