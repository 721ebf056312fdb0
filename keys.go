package capsolver

import (
	"log/slog"
	"sync"
	"time"

	"github.com/anatolykoptev/go-stealth/pool"
	"github.com/anatolykoptev/go-stealth/ratelimit"
)

// Key is one API key in the client's pool.
type Key struct {
	value string

	active       bool
	reactivateAt time.Time

	mu          sync.Mutex
	rateLimiter *ratelimit.Limiter

	pool.HealthTracker
}

func newKey(value string, rl ratelimit.Config) *Key {
	return &Key{
		value:         value,
		active:        true,
		rateLimiter:   ratelimit.NewLimiter(rl),
		HealthTracker: pool.DefaultHealthTracker(),
	}
}

// ID implements pool.Identity.
func (k *Key) ID() string { return maskKey(k.value) }

// IsActive implements pool.Identity.
func (k *Key) IsActive() bool {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.active
}

// SetActive implements pool.Identity.
func (k *Key) SetActive(v bool) {
	k.mu.Lock()
	k.active = v
	k.mu.Unlock()
}

// ReactivateAt implements pool.Identity.
func (k *Key) ReactivateAt() time.Time {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.reactivateAt
}

// SetReactivateAt implements pool.Identity.
func (k *Key) SetReactivateAt(t time.Time) {
	k.mu.Lock()
	k.reactivateAt = t
	k.mu.Unlock()
}

// AllowRequest checks if this key can call the given endpoint now.
func (k *Key) AllowRequest(endpoint string) bool {
	k.mu.Lock()
	rl := k.rateLimiter
	k.mu.Unlock()
	if rl == nil {
		return true
	}
	return rl.Allow(endpoint)
}

// MarkEndpointRateLimited blocks an endpoint for this key until the given time.
func (k *Key) MarkEndpointRateLimited(endpoint string, until time.Time) {
	k.mu.Lock()
	rl := k.rateLimiter
	k.mu.Unlock()
	if rl == nil {
		return
	}
	rl.MarkRateLimited(endpoint, until)
}

// KeyStatus is a point-in-time view of a pooled key.
type KeyStatus struct {
	Key         string // masked
	Active      bool
	Total       int
	Failed      int
	Consecutive int
}

// maskKey keeps the first and last four characters of a key.
func maskKey(k string) string {
	if len(k) <= 8 {
		return "****"
	}
	return k[:4] + "****" + k[len(k)-4:]
}

// newKeyPool wraps the configured keys in a go-stealth pool.
func newKeyPool(values []string, cfg ClientConfig) ([]*Key, *pool.Pool[*Key]) {
	keys := make([]*Key, 0, len(values))
	for _, v := range values {
		keys = append(keys, newKey(v, cfg.RateLimit))
	}
	log := cfg.Logger
	p := pool.New(keys, pool.Config{
		AlertHook: func(topic string, payload any) {
			log.Warn("key pool alert", slog.String("topic", topic), slog.Any("payload", payload))
		},
		ProxyBackoff: pool.BackoffConfig{
			InitialWait: 30 * time.Second,
			MaxWait:     30 * time.Minute,
			Multiplier:  2.0,
			JitterPct:   0.3,
		},
	})
	return keys, p
}

// nextKey returns the next key allowed to call endpoint.
func (c *Client) nextKey(endpoint string) (*Key, error) {
	k, err := c.pool.Next(func(k *Key) bool {
		return k.AllowRequest(endpoint)
	})
	if err != nil || k == nil {
		return nil, ErrNoUsableKey
	}
	return k, nil
}

// canSpare reports whether another active key can take over from k.
// The last active key is never taken out of rotation.
func (c *Client) canSpare(k *Key) bool {
	for _, other := range c.keys {
		if other != k && other.IsActive() {
			return true
		}
	}
	return false
}

// penalize applies the pool reaction for a remote error code.
func (c *Client) penalize(k *Key, endpoint, code string) {
	class := classifyCode(code)
	if class == errNone {
		if shouldDeactivate := k.RecordFailure(); shouldDeactivate && c.canSpare(k) {
			total, failed, consec := k.Stats()
			c.log.Warn("API key unhealthy, cooling down",
				slog.String("key", k.ID()),
				slog.Int("total", total),
				slog.Int("failed", failed),
				slog.Int("consec", consec))
			c.pool.SoftDeactivate(k, c.cfg.KeyCooldown)
		}
		return
	}
	if class == errTaskFatal {
		return
	}
	if !c.canSpare(k) {
		c.log.Debug("sole API key kept in rotation", slog.String("key", k.ID()), slog.String("code", code))
		return
	}

	switch class {
	case errKeyDenied:
		c.log.Warn("API key rejected, deactivating", slog.String("key", k.ID()), slog.String("code", code))
		c.pool.DeactivateItem(k)
	case errKeyBlocked:
		c.log.Warn("API key blocked, cooling down", slog.String("key", k.ID()), slog.String("code", code),
			slog.Duration("cooldown", c.cfg.KeyCooldown))
		c.pool.SoftDeactivate(k, c.cfg.KeyCooldown)
	case errRateLimited:
		k.MarkEndpointRateLimited(endpoint, time.Now().Add(time.Minute))
	}
}

// Keys returns a snapshot of every configured key.
func (c *Client) Keys() []KeyStatus {
	out := make([]KeyStatus, 0, len(c.keys))
	for _, k := range c.keys {
		total, failed, consec := k.Stats()
		out = append(out, KeyStatus{
			Key:         k.ID(),
			Active:      k.IsActive(),
			Total:       total,
			Failed:      failed,
			Consecutive: consec,
		})
	}
	return out
}
