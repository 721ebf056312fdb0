package capsolver

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	stealth "github.com/anatolykoptev/go-stealth"
)

// Doer sends one JSON POST and returns the raw response.
type Doer interface {
	Do(ctx context.Context, url string, headers map[string]string, body []byte) (respBody []byte, status int, err error)
}

// httpDoer is the default transport built on net/http.
type httpDoer struct {
	client *http.Client
}

func newHTTPDoer(timeout time.Duration) *httpDoer {
	return &httpDoer{client: &http.Client{Timeout: timeout}}
}

func (d *httpDoer) Do(ctx context.Context, url string, headers map[string]string, body []byte) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(body))
	if err != nil {
		return nil, 0, err
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, err
	}
	return data, resp.StatusCode, nil
}

// stealthDoer routes calls through a go-stealth browser client (proxy, TLS profile).
type stealthDoer struct {
	client *stealth.BrowserClient
}

func newStealthDoer(proxy string, profile *stealth.BrowserProfile) (*stealthDoer, error) {
	opts := []stealth.ClientOption{
		stealth.WithHeaderOrder(apiHeaderOrder),
	}
	if proxy != "" {
		opts = append(opts, stealth.WithProxy(proxy))
	}
	if profile != nil {
		opts = append(opts, stealth.WithProfile(profile.TLSProfile))
	}
	bc, err := stealth.NewClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("stealth client: %w", err)
	}
	return &stealthDoer{client: bc}, nil
}

type doResult struct {
	body   []byte
	status int
	err    error
}

// Do runs the request in a goroutine; the browser client takes no context,
// so cancellation abandons the call rather than aborting it.
func (d *stealthDoer) Do(ctx context.Context, url string, headers map[string]string, body []byte) ([]byte, int, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	done := make(chan doResult, 1)
	go func() {
		b, _, status, err := d.client.DoWithHeaderOrder("POST", url, headers, bytes.NewReader(body), apiHeaderOrder)
		done <- doResult{body: b, status: status, err: err}
	}()
	select {
	case r := <-done:
		return r.body, r.status, r.err
	case <-ctx.Done():
		return nil, 0, ctx.Err()
	}
}
