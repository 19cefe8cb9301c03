package wsclient

import (
	"context"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/websocket"

	"ugc-marketplace-backend/internal/domain"
)

// dropServer sends one envelope per connection and hangs up.
func dropServer(t *testing.T, accepted *atomic.Int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(websocket.Server{Handler: func(conn *websocket.Conn) {
		n := accepted.Add(1)
		websocket.JSON.Send(conn, domain.Envelope{Type: domain.EventNotification, Data: float64(n)})
		conn.Close()
	}})
	t.Cleanup(srv.Close)
	return srv
}

type recorder struct {
	mu   sync.Mutex
	envs []domain.Envelope
}

func (r *recorder) handle(env domain.Envelope) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.envs = append(r.envs, env)
}

func (r *recorder) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.envs)
}

func TestNew_BuildsWebsocketURL(t *testing.T) {
	c, err := New("https://api.example.com/", "abc", nil)
	require.NoError(t, err)
	assert.Equal(t, "wss://api.example.com/ws/notifications?token=abc", c.endpoint)
	assert.Equal(t, "https://api.example.com", c.origin)
	assert.Equal(t, 3*time.Second, c.delay)

	_, err = New("ftp://x", "abc", nil)
	assert.Error(t, err)
}

func TestClient_ReconnectsAfterServerClose(t *testing.T) {
	var accepted atomic.Int32
	srv := dropServer(t, &accepted)

	rec := &recorder{}
	c, err := New(srv.URL, "tok", rec.handle)
	require.NoError(t, err)
	c.delay = 20 * time.Millisecond

	done := make(chan error, 1)
	go func() { done <- c.Run(context.Background()) }()

	require.Eventually(t, func() bool { return accepted.Load() >= 3 }, 2*time.Second, 5*time.Millisecond)
	require.Eventually(t, func() bool { return rec.len() >= 2 }, 2*time.Second, 5*time.Millisecond)
	rec.mu.Lock()
	assert.Equal(t, domain.EventNotification, rec.envs[0].Type)
	rec.mu.Unlock()

	require.NoError(t, c.Close())
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after Close")
	}
}

func TestClient_NoReconnectAfterClose(t *testing.T) {
	var accepted atomic.Int32
	hold := make(chan struct{})
	srv := httptest.NewServer(websocket.Server{Handler: func(conn *websocket.Conn) {
		accepted.Add(1)
		<-hold
	}})
	defer srv.Close()
	defer close(hold)

	c, err := New(srv.URL, "tok", nil)
	require.NoError(t, err)
	c.delay = 10 * time.Millisecond

	done := make(chan error, 1)
	go func() { done <- c.Run(context.Background()) }()
	require.Eventually(t, func() bool { return c.Connections() == 1 }, 2*time.Second, 5*time.Millisecond)

	require.NoError(t, c.Close())
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after Close")
	}

	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, int32(1), accepted.Load())
	assert.Equal(t, 1, c.Connections())
}

func TestClient_ContextCancel(t *testing.T) {
	c, err := New("http://127.0.0.1:1", "tok", nil)
	require.NoError(t, err)
	c.delay = time.Hour

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Run(ctx) }()
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
