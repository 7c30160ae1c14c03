package agent

import (
	"log/slog"

	"github.com/quillforge/critique/internal/config"
)

// NewFromConfig selects the gateway implementation at construction time:
// the demo gateway when demo mode is on, otherwise the HTTP client built
// from the configured provider and limits.
func NewFromConfig(cfg *config.Config, logger *slog.Logger) CompletionClient {
	if cfg.AI.DemoMode {
		logger.Info("no completion credentials configured, using demo gateway")
		return NewDemoClient()
	}
	return NewClient(cfg.AI.APIKey,
		WithAPIConfig(cfg.AI.BaseURL, cfg.AI.Model),
		WithRetry(cfg.Limits.MaxRetries),
		WithAttemptTimeout(cfg.Limits.AttemptTimeout()),
		WithRateLimit(cfg.Limits.RateLimit.RequestsPerMinute, cfg.Limits.RateLimit.BurstSize),
		WithLogger(logger),
	)
}
