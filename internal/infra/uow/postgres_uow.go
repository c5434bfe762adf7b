package uow

import (
	"context"
	"errors"
	"log/slog"

	"roomchat/internal/infra"
	"roomchat/internal/infra/sqlc"
	"roomchat/internal/pkg/errs"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrTransactionBegin  = errs.New("failed to begin transaction")
	ErrTransactionCommit = errs.New("failed to commit transaction")
)

// PostgresUoW runs reservation work on a pgx pool. It makes a single attempt;
// begin and commit failures are classified like query failures so an unreachable
// database surfaces as errs.ErrTransient and is retried by the booking usecase.
type PostgresUoW struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

func NewPostgresUoW(pool *pgxpool.Pool, logger *slog.Logger) *PostgresUoW {
	return &PostgresUoW{
		pool:   pool,
		logger: logger,
	}
}

// ReadCommitted is enough: writers serialize per room on an advisory lock.
func (u *PostgresUoW) Within(ctx context.Context, fn func(ctx context.Context, tx sqlc.DBTX) error) error {
	return u.runInTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted}, fn)
}

func (u *PostgresUoW) WithDB(ctx context.Context, fn func(ctx context.Context, db sqlc.DBTX) error) error {
	return fn(ctx, u.pool)
}

func (u *PostgresUoW) runInTx(ctx context.Context, options pgx.TxOptions, fn func(ctx context.Context, tx sqlc.DBTX) error) error {
	tx, err := u.pool.BeginTx(ctx, options)
	if err != nil {
		return infra.WrapRepoErr(u.logger, infra.Classify(err), "failed to begin transaction",
			errs.Mark(err, ErrTransactionBegin))
	}

	defer func() {
		if rollbackErr := tx.Rollback(ctx); rollbackErr != nil {
			// Only log rollback errors for uncommitted transactions
			if !errors.Is(rollbackErr, pgx.ErrTxClosed) {
				u.logger.Warn("failed to rollback transaction", "error", rollbackErr.Error())
			}
		}
	}()

	if err := fn(ctx, tx); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return infra.WrapRepoErr(u.logger, infra.Classify(err), "failed to commit transaction",
			errs.Mark(err, ErrTransactionCommit))
	}
	return nil
}
