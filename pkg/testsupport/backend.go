package testsupport

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
)

// Backend is a recording stand-in for the third-party form backend. It
// answers every POST with Status and Body and keeps the parsed multipart
// values of each request.
type Backend struct {
	*httptest.Server

	mu       sync.Mutex
	status   int
	body     string
	requests []url.Values
	accepts  []string
}

// NewBackend starts a backend answering with status and body. The server is
// closed when the test ends.
func NewBackend(t *testing.T, status int, body string) *Backend {
	t.Helper()

	b := &Backend{status: status, body: body}
	b.Server = httptest.NewServer(http.HandlerFunc(b.serve))
	t.Cleanup(b.Close)
	return b
}

// Respond changes the answer for subsequent requests.
func (b *Backend) Respond(status int, body string) {
	b.mu.Lock()
	b.status, b.body = status, body
	b.mu.Unlock()
}

// Requests returns the values posted so far.
func (b *Backend) Requests() []url.Values {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]url.Values(nil), b.requests...)
}

// Accepts returns the Accept header of every request.
func (b *Backend) Accepts() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.accepts...)
}

func (b *Backend) serve(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	values := url.Values{}
	if err := r.ParseMultipartForm(1 << 20); err == nil && r.MultipartForm != nil {
		values = url.Values(r.MultipartForm.Value)
	}

	b.mu.Lock()
	b.requests = append(b.requests, values)
	b.accepts = append(b.accepts, r.Header.Get("Accept"))
	status, body := b.status, b.body
	b.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}
