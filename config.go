package capsolver

import (
	"log/slog"
	"time"

	stealth "github.com/anatolykoptev/go-stealth"
	"github.com/anatolykoptev/go-stealth/ratelimit"
)

// ClientConfig holds all configuration for the Capsolver client.
type ClientConfig struct {
	// APIKey is the account key. It is used first when APIKeys is also set.
	APIKey string `yaml:"api_key"`

	// APIKeys are rotated across tasks; each task keeps the key that created it.
	APIKeys []string `yaml:"api_keys"`

	// BaseURL overrides the API endpoint. Default: https://api.capsolver.com
	BaseURL string `yaml:"base_url"`

	// AppID is the client identifier sent with createTask.
	AppID string `yaml:"app_id"`

	// Verbose enables per-poll status logs and unknown task type diagnostics.
	Verbose int `yaml:"verbose"`

	// PollInterval is the delay before each getTaskResult call.
	PollInterval time.Duration `yaml:"poll_interval"`

	// MaxPollRetries is the number of failed polls tolerated after the first one.
	MaxPollRetries int `yaml:"max_poll_retries"`

	// StrictPolling makes remote poll errors fatal and backs off on transport errors
	// instead of counting both the same way.
	StrictPolling bool `yaml:"strict_polling"`

	// PollBackoff is the transport error backoff used with StrictPolling.
	PollBackoff stealth.BackoffConfig `yaml:"-"`

	// HTTPTimeout bounds a single request.
	HTTPTimeout time.Duration `yaml:"http_timeout"`

	// Proxy routes API traffic through a go-stealth browser client.
	Proxy string `yaml:"proxy"`

	// Profile selects the TLS/browser profile of the go-stealth client.
	// Setting it without Proxy still enables the browser client.
	Profile *stealth.BrowserProfile `yaml:"-"`

	// RateLimit configures per-key per-endpoint rate limiting. Unlimited by default.
	RateLimit ratelimit.Config `yaml:"-"`

	// KeyCooldown is the soft-deactivation duration for temporarily blocked keys.
	KeyCooldown time.Duration `yaml:"key_cooldown"`

	// MetricsHook is called on each API request for external metrics collection.
	// endpoint is the API path, success and rateLimited indicate the outcome.
	MetricsHook func(endpoint string, success, rateLimited bool) `yaml:"-"`

	// Logger receives structured logs. Default: slog.Default()
	Logger *slog.Logger `yaml:"-"`

	// Doer overrides the transport entirely.
	Doer Doer `yaml:"-"`
}

const (
	defaultBaseURL        = "https://api.capsolver.com"
	defaultAppID          = "AF0F28E5-8245-49FD-A3FD-43D576C0E9B3"
	defaultPollInterval   = 1700 * time.Millisecond
	defaultMaxPollRetries = 10
)

// defaults fills in zero-value config fields with sensible defaults.
func (cfg *ClientConfig) defaults() {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.AppID == "" {
		cfg.AppID = defaultAppID
	}
	if cfg.PollInterval == 0 {
		cfg.PollInterval = defaultPollInterval
	}
	if cfg.MaxPollRetries == 0 {
		cfg.MaxPollRetries = defaultMaxPollRetries
	}
	if cfg.PollBackoff.InitialWait == 0 {
		cfg.PollBackoff = stealth.BackoffConfig{
			InitialWait: cfg.PollInterval,
			MaxWait:     30 * time.Second,
			Multiplier:  2.0,
			JitterPct:   0.3,
		}
	}
	if cfg.HTTPTimeout == 0 {
		cfg.HTTPTimeout = 30 * time.Second
	}
	if cfg.RateLimit.RequestsPerWindow == 0 {
		// No proactive limit; keys are still blocked reactively on ERROR_RATE_LIMIT and 429.
		cfg.RateLimit = ratelimit.DefaultConfig
		cfg.RateLimit.RequestsPerWindow = 1 << 30
	}
	if cfg.KeyCooldown == 0 {
		cfg.KeyCooldown = 10 * time.Minute
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
}

// keys returns the configured API keys without blanks or duplicates.
func (cfg *ClientConfig) keys() []string {
	seen := map[string]bool{}
	var out []string
	for _, k := range append([]string{cfg.APIKey}, cfg.APIKeys...) {
		if k == "" || seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, k)
	}
	return out
}
