package captcha

import (
	"context"
	"fmt"
	"log/slog"

	capsolver "github.com/anatolykoptev/go-capsolver"
)

// Kind selects the challenge family a Capsolver solver handles.
type Kind int

const (
	FunCaptcha Kind = iota
	ReCaptchaV2
	Turnstile
)

func (k Kind) String() string {
	switch k {
	case FunCaptcha:
		return "funcaptcha"
	case ReCaptchaV2:
		return "recaptchav2"
	case Turnstile:
		return "turnstile"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

const balanceWarnLevel = 5.0 // warn when balance drops below $5

// Capsolver implements Solver on top of a capsolver.Client.
type Capsolver struct {
	client *capsolver.Client
	kind   Kind
}

// NewCapsolver creates a token solver for one challenge kind.
func NewCapsolver(client *capsolver.Client, kind Kind) *Capsolver {
	return &Capsolver{client: client, kind: kind}
}

// task builds the proxyless task for the solver's kind.
func (c *Capsolver) task(siteKey, pageURL string) (capsolver.Task, error) {
	switch c.kind {
	case FunCaptcha:
		return capsolver.FunCaptcha{WebsiteURL: pageURL, WebsitePublicKey: siteKey}, nil
	case ReCaptchaV2:
		return capsolver.ReCaptchaV2{WebsiteURL: pageURL, WebsiteKey: siteKey}, nil
	case Turnstile:
		return capsolver.AntiTurnstile{WebsiteURL: pageURL, WebsiteKey: siteKey}, nil
	}
	return nil, fmt.Errorf("capsolver: unsupported kind %s", c.kind)
}

// Solve submits the challenge and polls for the token.
func (c *Capsolver) Solve(ctx context.Context, siteKey, pageURL string) (string, error) {
	// Check balance before solve
	bal, balErr := c.client.Balance(ctx)
	if balErr == nil && bal < balanceWarnLevel {
		slog.Warn("Capsolver balance low", slog.Float64("balance", bal))
	}

	task, err := c.task(siteKey, pageURL)
	if err != nil {
		return "", err
	}
	sol, err := c.client.Solve(ctx, task)
	if err != nil {
		return "", fmt.Errorf("capsolver %s: %w", c.kind, err)
	}
	token := sol.Token()
	if token == "" {
		return "", fmt.Errorf("capsolver %s: ready but empty token", c.kind)
	}
	slog.Info("CAPTCHA solved", slog.String("kind", c.kind.String()))
	return token, nil
}

// Balance returns the Capsolver account balance in USD.
func (c *Capsolver) Balance(ctx context.Context) (float64, error) {
	return c.client.Balance(ctx)
}

var _ Solver = (*Capsolver)(nil)
