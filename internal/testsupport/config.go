package testsupport

import (
	"path/filepath"
	"testing"

	"murajaah/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.DataDir = filepath.Join(base, "data")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.API.Bind = "127.0.0.1:0"
	cfg.API.Token = "test-token"
	cfg.Delivery.NtfyBaseURL = ""

	for _, opt := range opts {
		opt(&cfg)
	}

	return &cfg
}

// WithScorer enables the HTTP scorer against the provided endpoint.
func WithScorer(endpoint string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Scorer.Enabled = true
		cfg.Scorer.Endpoint = endpoint
	}
}

// WithDelivery points ntfy delivery at the provided base URL.
func WithDelivery(baseURL string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Delivery.NtfyBaseURL = baseURL
	}
}
