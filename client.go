package capsolver

import (
	"log/slog"
	"strings"

	stealth "github.com/anatolykoptev/go-stealth"
	"github.com/anatolykoptev/go-stealth/pool"
)

// Client talks to the Capsolver API. It is safe for concurrent use; calls share
// nothing but the key pool.
type Client struct {
	cfg     ClientConfig
	doer    Doer
	headers map[string]string
	keys    []*Key
	pool    *pool.Pool[*Key]
	log     *slog.Logger
}

// NewClient creates a fully-wired Capsolver client.
func NewClient(cfg ClientConfig) (*Client, error) {
	cfg.defaults()
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	values := cfg.keys()
	if len(values) == 0 {
		return nil, ErrNoAPIKey
	}

	doer := cfg.Doer
	if doer == nil {
		if cfg.Proxy != "" || cfg.Profile != nil {
			sd, err := newStealthDoer(cfg.Proxy, cfg.Profile)
			if err != nil {
				return nil, err
			}
			doer = sd
			cfg.Logger.Debug("using browser client", slog.String("proxy", stealth.MaskProxy(cfg.Proxy)))
		} else {
			doer = newHTTPDoer(cfg.HTTPTimeout)
		}
	}

	userAgent := ""
	if cfg.Profile != nil {
		userAgent = cfg.Profile.UserAgent
	}

	keys, p := newKeyPool(values, cfg)
	return &Client{
		cfg:     cfg,
		doer:    doer,
		headers: apiHeaders(userAgent),
		keys:    keys,
		pool:    p,
		log:     cfg.Logger,
	}, nil
}

// recordAPICall calls the metrics hook if configured.
func (c *Client) recordAPICall(endpoint string, success, rateLimited bool) {
	if c.cfg.MetricsHook != nil {
		c.cfg.MetricsHook(endpoint, success, rateLimited)
	}
}

// trace logs only in verbose mode.
func (c *Client) trace(log *slog.Logger, msg string, args ...any) {
	if c.cfg.Verbose != 0 {
		log.Info(msg, args...)
	}
}
