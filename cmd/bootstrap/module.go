package bootstrap

import (
	"roomchat/cmd/bootstrap/components"
	"roomchat/internal/pkg/config"

	"go.uber.org/fx"
)

// Module assembles the application for cfg. Storage backends are chosen here so
// that an unused database or redis is never dialed.
func Module(cfg config.Config) fx.Option {
	return fx.Options(
		ConfigModule(cfg),
		LoggerModule,
		ReservationStoreModule(cfg),
		SessionStoreModule(cfg),
		components.UseCaseModule,
		components.ExtractorModule,
		components.HandlerModule,
	)
}

func ReservationStoreModule(cfg config.Config) fx.Option {
	if cfg.Store.ReservationBackend == config.BackendPostgres {
		return fx.Options(DBModule, components.PostgresRepositoryModule)
	}
	return components.MemoryRepositoryModule
}

func SessionStoreModule(cfg config.Config) fx.Option {
	if cfg.Store.SessionBackend == config.BackendRedis {
		return fx.Options(RedisModule, components.RedisSessionModule)
	}
	return components.MemorySessionModule
}
