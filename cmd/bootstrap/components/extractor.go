package components

import (
	"context"
	"log/slog"
	"net/http"

	"roomchat/internal/infra/extractor/gemini"
	"roomchat/internal/infra/extractor/openai"
	"roomchat/internal/pkg/config"
	"roomchat/internal/pkg/errs"
	"roomchat/internal/usecase/conversation"

	"go.uber.org/fx"
)

var ExtractorModule = fx.Module("extractor",
	fx.Provide(
		NewExtractor,
	),
)

func NewExtractor(lc fx.Lifecycle, cfg config.Config, logger *slog.Logger) (conversation.Extractor, error) {
	ec := cfg.Extractor

	switch ec.Provider {
	case config.ProviderOpenAI:
		return openai.NewClient(ec.APIKey, ec.Model, logger,
			openai.WithBaseURL(ec.BaseURL),
			openai.WithHTTPClient(&http.Client{Timeout: ec.Timeout}),
		)
	case config.ProviderGemini:
		client, err := gemini.NewClient(context.Background(), ec.APIKey, ec.Model, logger)
		if err != nil {
			return nil, err
		}
		lc.Append(fx.Hook{
			OnStop: func(_ context.Context) error {
				return client.Close()
			},
		})
		return client, nil
	default:
		return nil, errs.Newf("unknown EXTRACTOR_PROVIDER %q", ec.Provider)
	}
}
