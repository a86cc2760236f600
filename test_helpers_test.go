package supertest

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// recordedRequest is what the application under test saw.
type recordedRequest struct {
	Method string
	Path   string
	Header http.Header
	Body   string
}

// recordingHandler captures every request and then delegates to respond.
type recordingHandler struct {
	mu       sync.Mutex
	requests []recordedRequest
	respond  http.HandlerFunc
}

func (h *recordingHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	h.mu.Lock()
	h.requests = append(h.requests, recordedRequest{
		Method: r.Method,
		Path:   r.URL.RequestURI(),
		Header: r.Header.Clone(),
		Body:   string(body),
	})
	h.mu.Unlock()
	if h.respond != nil {
		h.respond(w, r)
	}
}

func (h *recordingHandler) all() []recordedRequest {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]recordedRequest(nil), h.requests...)
}

func (h *recordingHandler) last(t *testing.T) recordedRequest {
	t.Helper()
	all := h.all()
	require.NotEmpty(t, all, "application received no request")
	return all[len(all)-1]
}

// trackingApp remembers the address of every server it started.
type trackingApp struct {
	App
	mu    sync.Mutex
	addrs []string
}

func (a *trackingApp) Listen(ctx context.Context) (Server, error) {
	s, err := a.App.Listen(ctx)
	if err == nil {
		a.mu.Lock()
		a.addrs = append(a.addrs, s.Addr().String())
		a.mu.Unlock()
	}
	return s, err
}

func (a *trackingApp) lastAddr(t *testing.T) string {
	t.Helper()
	a.mu.Lock()
	defer a.mu.Unlock()
	require.NotEmpty(t, a.addrs, "application was never started")
	return a.addrs[len(a.addrs)-1]
}

// failingCloseServer wraps a real server and reports closeErr after closing it.
type failingCloseServer struct {
	Server
	closeErr error
}

func (s failingCloseServer) Close() error {
	_ = s.Server.Close()
	return s.closeErr
}

// assertNotListening fails when addr still accepts connections.
func assertNotListening(t *testing.T, addr string) {
	t.Helper()
	conn, err := net.DialTimeout("tcp", addr, 200*time.Millisecond)
	if err == nil {
		_ = conn.Close()
	}
	require.Error(t, err, "server at %s should be closed", addr)
}

func newTestClient(t *testing.T, h http.Handler, options ...ClientOption) *Client {
	t.Helper()
	client, err := NewClient(HandlerApp(h), options...)
	require.NoError(t, err, "Should create client without error")
	return client
}

// mockRoundTripper is a helper for mocking http.RoundTripper
type mockRoundTripper struct {
	RoundTripFunc func(req *http.Request) (*http.Response, error)
}

func (m *mockRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	if m.RoundTripFunc != nil {
		return m.RoundTripFunc(req)
	}
	return nil, fmt.Errorf("RoundTripFunc not set")
}

// fakeT records failures reported through require.TestingT.
type fakeT struct {
	messages []string
	failed   bool
}

func (f *fakeT) Errorf(format string, args ...any) {
	f.messages = append(f.messages, fmt.Sprintf(format, args...))
}

func (f *fakeT) FailNow() {
	f.failed = true
}
