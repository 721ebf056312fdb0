package captcha

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	capsolver "github.com/anatolykoptev/go-capsolver"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeAPI serves createTask, getTaskResult and getBalance with canned replies.
func fakeAPI(t *testing.T, solution map[string]any, seenType *atomic.Value) *capsolver.Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req map[string]any
		_ = json.NewDecoder(r.Body).Decode(&req)
		reply := map[string]any{"errorId": 0}
		switch strings.TrimPrefix(r.URL.Path, "/") {
		case "createTask":
			if task, ok := req["task"].(map[string]any); ok && seenType != nil {
				seenType.Store(task["type"])
			}
			reply["taskId"] = "task-1"
		case "getTaskResult":
			reply["status"] = "ready"
			reply["solution"] = solution
		case "getBalance":
			reply["balance"] = 1.25
		}
		_ = json.NewEncoder(w).Encode(reply)
	}))
	t.Cleanup(srv.Close)

	client, err := capsolver.NewClient(capsolver.ClientConfig{
		APIKey:       "CAP-TESTKEY-0001",
		BaseURL:      srv.URL,
		PollInterval: time.Millisecond,
		Logger:       slog.New(slog.DiscardHandler),
	})
	require.NoError(t, err)
	return client
}

func TestCapsolver_Solve(t *testing.T) {
	tests := []struct {
		kind     Kind
		solution map[string]any
		wantType string
		want     string
	}{
		{FunCaptcha, map[string]any{"token": "fc-token"}, "FunCaptchaTaskProxyLess", "fc-token"},
		{ReCaptchaV2, map[string]any{"gRecaptchaResponse": "03AGdBq"}, "ReCaptchaV2TaskProxyLess", "03AGdBq"},
		{Turnstile, map[string]any{"token": "0.turnstile"}, "AntiTurnstileTaskProxyLess", "0.turnstile"},
	}
	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			var seen atomic.Value
			s := NewCapsolver(fakeAPI(t, tt.solution, &seen), tt.kind)

			token, err := s.Solve(context.Background(), "site-key", "https://example.com")
			require.NoError(t, err)
			assert.Equal(t, tt.want, token)
			assert.Equal(t, tt.wantType, seen.Load())
		})
	}
}

func TestCapsolver_EmptyToken(t *testing.T) {
	s := NewCapsolver(fakeAPI(t, map[string]any{"userAgent": "ua"}, nil), Turnstile)

	_, err := s.Solve(context.Background(), "site-key", "https://example.com")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty token")
}

func TestCapsolver_UnsupportedKind(t *testing.T) {
	s := NewCapsolver(fakeAPI(t, nil, nil), Kind(9))

	_, err := s.Solve(context.Background(), "site-key", "https://example.com")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "kind(9)")
}

func TestCapsolver_Balance(t *testing.T) {
	var s Solver = NewCapsolver(fakeAPI(t, nil, nil), ReCaptchaV2)

	bal, err := s.Balance(context.Background())
	require.NoError(t, err)
	assert.InDelta(t, 1.25, bal, 1e-9)
}
