package video

import (
	"context"
	"fmt"

	"video-generation-service/internal/config"
	"video-generation-service/internal/domain/ports/adapter"
)

// NewFromConfig builds the provider adapter selected by configuration.
func NewFromConfig(ctx context.Context, cfg *config.ProviderConfig) (adapter.VideoProviderAdapter, error) {
	switch cfg.Name {
	case "veo":
		return NewVeoAdapter(ctx, cfg.GeminiKey, cfg.GeminiURL, cfg.Model, cfg.DownloadTimeout)
	case "sora":
		return NewSoraAdapter(cfg.OpenAIKey, cfg.OpenAIBaseURL, cfg.Model, cfg.DownloadTimeout)
	default:
		return nil, fmt.Errorf("unknown provider %q", cfg.Name)
	}
}
