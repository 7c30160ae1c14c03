package config

import "time"

type Limits struct {
	MaxRetries         int `yaml:"max_retries" validate:"min=0,max=10"`
	AttemptTimeoutSecs int `yaml:"attempt_timeout_secs" validate:"required,min=5,max=1800"`
	TokenBudget        int `yaml:"token_budget" validate:"required,min=1000,max=200000"`
	MaxOutputTokens    int `yaml:"max_output_tokens" validate:"required,min=256,max=64000"`
	// MaxConcurrentChapters caps parallel chapter analyses in batch runs.
	MaxConcurrentChapters int             `yaml:"max_concurrent_chapters" validate:"required,min=1,max=32"`
	RateLimit             RateLimitConfig `yaml:"rate_limit" validate:"required"`
}

type RateLimitConfig struct {
	RequestsPerMinute int `yaml:"requests_per_minute" validate:"required,min=1,max=1000"`
	BurstSize         int `yaml:"burst_size" validate:"required,min=1,max=100"`
}

// AttemptTimeout returns the per-attempt deadline as a duration.
func (l Limits) AttemptTimeout() time.Duration {
	return time.Duration(l.AttemptTimeoutSecs) * time.Second
}

func DefaultLimits() Limits {
	return Limits{
		MaxRetries:            3,
		AttemptTimeoutSecs:    120,
		TokenBudget:           24000,
		MaxOutputTokens:       8192,
		MaxConcurrentChapters: 4,
		RateLimit: RateLimitConfig{
			RequestsPerMinute: 30,
			BurstSize:         5,
		},
	}
}
