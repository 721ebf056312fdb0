package captcha

import "context"

// Solver abstracts token-producing CAPTCHA services.
type Solver interface {
	// Solve submits a challenge and returns the solution token.
	// siteKey is the widget's public key, pageURL is the page showing the challenge.
	Solve(ctx context.Context, siteKey, pageURL string) (token string, err error)

	// Balance returns the account balance in USD.
	Balance(ctx context.Context) (float64, error)
}
