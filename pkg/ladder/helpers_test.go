package ladder

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/PentesterFlow/ladderadmin/internal/logger"
	"github.com/PentesterFlow/ladderadmin/internal/metrics"
	"github.com/PentesterFlow/ladderadmin/internal/prompt"
)

// request is what the fake backend saw.
type request struct {
	Method   string
	Path     string
	RawQuery string
	Body     string
}

// backend answers by path with canned JSON and records every request.
type backend struct {
	mu       sync.Mutex
	replies  map[string]string
	status   map[string]int
	requests []request
	server   *httptest.Server
}

func newBackend(t *testing.T, replies map[string]string) *backend {
	t.Helper()
	b := &backend{replies: replies, status: make(map[string]int)}
	b.server = httptest.NewServer(http.HandlerFunc(b.serve))
	t.Cleanup(b.server.Close)
	return b
}

func (b *backend) serve(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)

	b.mu.Lock()
	b.requests = append(b.requests, request{
		Method:   r.Method,
		Path:     r.URL.Path,
		RawQuery: r.URL.RawQuery,
		Body:     string(body),
	})
	reply, ok := b.replies[r.URL.Path]
	status := b.status[r.URL.Path]
	b.mu.Unlock()

	if status != 0 {
		w.WriteHeader(status)
		return
	}
	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(reply))
}

func (b *backend) setReply(path, reply string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.replies[path] = reply
}

func (b *backend) setStatus(path string, status int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.status[path] = status
}

func (b *backend) seen() []request {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]request(nil), b.requests...)
}

func (b *backend) last() request {
	reqs := b.seen()
	if len(reqs) == 0 {
		return request{}
	}
	return reqs[len(reqs)-1]
}

func newTestAdmin(t *testing.T, b *backend, p prompt.Prompter, opts ...Option) (*Admin, *bytes.Buffer) {
	t.Helper()
	out := &bytes.Buffer{}
	base := []Option{
		WithBaseURL(b.server.URL),
		WithRateLimit(0, 1),
		WithLookupDelay(30 * time.Millisecond),
		WithPrompter(p),
		WithOutput(out),
		WithLogger(logger.Nop()),
		WithMetrics(metrics.New()),
	}
	a, err := New(append(base, opts...)...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { a.Close() })
	return a, out
}

func mustSet(t *testing.T, a *Admin, formID string, values map[string]string) {
	t.Helper()
	f, err := a.Form(formID)
	if err != nil {
		t.Fatalf("Form(%q) error = %v", formID, err)
	}
	for k, v := range values {
		if err := f.SetValue(k, v); err != nil {
			t.Fatalf("SetValue(%q) error = %v", k, err)
		}
	}
}
