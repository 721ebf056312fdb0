package capsolver

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// replyFunc answers the n-th (0-based) call of an operation.
type replyFunc func(n int, req map[string]any) (status int, body any)

// mockAPI is an in-process Capsolver API that counts calls per operation.
type mockAPI struct {
	mu       sync.Mutex
	calls    map[string]int
	requests map[string][]map[string]any
	times    map[string][]time.Time
	replies  map[string]replyFunc
	srv      *httptest.Server
}

func newMockAPI(t *testing.T) *mockAPI {
	t.Helper()
	m := &mockAPI{
		calls:    map[string]int{},
		requests: map[string][]map[string]any{},
		times:    map[string][]time.Time{},
		replies:  map[string]replyFunc{},
	}
	m.srv = httptest.NewServer(http.HandlerFunc(m.serve))
	t.Cleanup(m.srv.Close)
	return m
}

func (m *mockAPI) on(op string, fn replyFunc) *mockAPI {
	m.mu.Lock()
	m.replies[op] = fn
	m.mu.Unlock()
	return m
}

func (m *mockAPI) serve(w http.ResponseWriter, r *http.Request) {
	op := r.URL.Path[1:]
	var req map[string]any
	_ = json.NewDecoder(r.Body).Decode(&req)

	m.mu.Lock()
	n := m.calls[op]
	m.calls[op]++
	m.requests[op] = append(m.requests[op], req)
	m.times[op] = append(m.times[op], time.Now())
	fn := m.replies[op]
	m.mu.Unlock()

	if fn == nil {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	status, body := fn(n, req)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	switch b := body.(type) {
	case string:
		_, _ = w.Write([]byte(b))
	default:
		_ = json.NewEncoder(w).Encode(b)
	}
}

func (m *mockAPI) count(op string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[op]
}

func (m *mockAPI) total() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.calls {
		n += c
	}
	return n
}

func (m *mockAPI) request(op string, i int) map[string]any {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.requests[op][i]
}

// ok replies with errorId 0 plus the given fields.
func ok(fields map[string]any) (int, any) {
	body := map[string]any{"errorId": 0}
	for k, v := range fields {
		body[k] = v
	}
	return http.StatusOK, body
}

// newTestClient builds a client against the mock with a short poll interval.
func newTestClient(t *testing.T, m *mockAPI, mutate ...func(*ClientConfig)) *Client {
	t.Helper()
	cfg := ClientConfig{
		APIKey:       "CAP-TESTKEY-0001",
		BaseURL:      m.srv.URL,
		PollInterval: time.Millisecond,
		Logger:       slog.New(slog.DiscardHandler),
	}
	for _, fn := range mutate {
		fn(&cfg)
	}
	c, err := NewClient(cfg)
	require.NoError(t, err)
	return c
}
