package components

import (
	"roomchat/internal/handler"
	"roomchat/internal/handler/api"
	"roomchat/internal/handler/middleware"
	"roomchat/internal/pkg/config"

	"go.uber.org/fx"
)

var HandlerModule = fx.Module("handler",
	fx.Provide(
		api.NewConversationHandler,
		api.NewAvailabilityHandler,
		api.NewReservationHandler,
		handler.NewHandlers,
		func(cfg config.Config) *middleware.RateLimiter {
			return middleware.NewRateLimiter(cfg.RateLimit)
		},
	),
	fx.Invoke(handler.NewRouter),
)
