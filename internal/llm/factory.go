package llm

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/moodlet/moodlet-backend/internal/service"
)

// Config holds configuration for the AI client.
type Config struct {
	Provider   string
	APIKey     string
	Model      string
	ImageModel string
	ImageSize  string
	BaseURL    string
	MaxRetries int
	RetryDelay time.Duration
	MaxDelay   time.Duration
	CacheTTL   time.Duration
	Timeout    time.Duration
	RateLimit  int
	MaxTokens  int
}

// NewProvider creates a raw model backend based on the provided configuration.
func NewProvider(cfg Config) (Provider, error) {
	switch strings.ToLower(cfg.Provider) {
	case "", "openai":
		return newOpenAIProvider(cfg)
	case "anthropic":
		return newAnthropicProvider(cfg)
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.Provider)
	}
}

// NewClient creates an Advisor over the configured provider.
func NewClient(cfg Config, logger *slog.Logger) (*Advisor, error) {
	provider, err := NewProvider(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM provider: %w", err)
	}
	return NewAdvisor(provider, cfg, logger), nil
}

func retryOptions(cfg Config) service.RetryOptions {
	opts := service.RetryOptions{
		MaxAttempts:  cfg.MaxRetries,
		InitialDelay: cfg.RetryDelay,
		MaxDelay:     cfg.MaxDelay,
		Multiplier:   2.0,
	}

	if opts.MaxAttempts == 0 {
		opts.MaxAttempts = 3
	}
	if opts.InitialDelay == 0 {
		opts.InitialDelay = time.Second
	}
	if opts.MaxDelay == 0 {
		opts.MaxDelay = 30 * time.Second
	}

	return opts
}
