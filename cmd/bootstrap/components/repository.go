package components

import (
	"context"
	"log/slog"
	"time"

	"roomchat/internal/infra/memory"
	"roomchat/internal/infra/redisstore"
	"roomchat/internal/infra/repository"
	"roomchat/internal/infra/sqlc"
	"roomchat/internal/infra/uow"
	"roomchat/internal/pkg/clock"
	"roomchat/internal/pkg/config"
	"roomchat/internal/usecase/shared"

	"github.com/go-redis/redis/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/fx"
)

var MemoryRepositoryModule = fx.Module("repository/memory",
	fx.Provide(
		fx.Annotate(
			memory.NewReservationStore,
			fx.As(new(shared.ReservationStore)),
			fx.As(new(shared.ReservationReader)),
		),
	),
)

var PostgresRepositoryModule = fx.Module("repository/postgres",
	fx.Provide(
		fx.Annotate(
			NewSQLQueries,
			fx.As(new(repository.ReservationQueries)),
		),
		fx.Annotate(
			uow.NewPostgresUoW,
			fx.As(new(repository.TxRunner)),
		),
		fx.Annotate(
			repository.NewReservationRepository,
			fx.As(new(shared.ReservationStore)),
			fx.As(new(shared.ReservationReader)),
		),
	),
)

var MemorySessionModule = fx.Module("session/memory",
	fx.Provide(
		NewMemorySessionStore,
		func(s *memory.SessionStore) shared.SessionStore { return s },
	),
	fx.Invoke(startJanitor),
)

var RedisSessionModule = fx.Module("session/redis",
	fx.Provide(
		fx.Annotate(
			NewRedisSessionStore,
			fx.As(new(shared.SessionStore)),
		),
	),
)

func NewSQLQueries(_ *pgxpool.Pool) *sqlc.Queries {
	return sqlc.New()
}

func NewMemorySessionStore(cfg config.Config, clock clock.Clock, logger *slog.Logger) *memory.SessionStore {
	return memory.NewSessionStore(clock, cfg.Session.IdleTTL, logger)
}

func NewRedisSessionStore(client *redis.Client, cfg config.Config, clock clock.Clock, logger *slog.Logger) *redisstore.SessionStore {
	return redisstore.NewSessionStore(client, clock, cfg.Session.IdleTTL, cfg.Session.LockTTL, logger)
}

// startJanitor runs the idle-session sweep for the lifetime of the app.
func startJanitor(lc fx.Lifecycle, store *memory.SessionStore, cfg config.Config, logger *slog.Logger) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			go func() {
				defer close(done)
				store.RunJanitor(ctx, cfg.Session.SweepInterval)
			}()
			logger.Info("session janitor started", "interval", cfg.Session.SweepInterval, "idle_ttl", cfg.Session.IdleTTL)
			return nil
		},
		OnStop: func(stopCtx context.Context) error {
			cancel()
			select {
			case <-done:
			case <-stopCtx.Done():
			case <-time.After(time.Second):
			}
			return nil
		},
	})
}

