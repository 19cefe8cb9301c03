package notify

import (
	"net/http"
	"os"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/websocket"

	"ugc-marketplace-backend/internal/domain"
)

func userFromQuery(r *http.Request) (int32, bool) {
	id, err := strconv.Atoi(r.URL.Query().Get("user"))
	if err != nil {
		return 0, false
	}
	return int32(id), true
}

func dial(t *testing.T, srv *httptest.Server, userID int) *websocket.Conn {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/?user=" + strconv.Itoa(userID)
	conn, err := websocket.Dial(wsURL, "", srv.URL)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func waitConnections(t *testing.T, h *Hub, userID int32, n int) {
	t.Helper()
	require.Eventually(t, func() bool { return h.Connections(userID) == n }, 2*time.Second, 10*time.Millisecond)
}

func TestHub_PublishOnlyToAddressedUser(t *testing.T) {
	hub := NewHub()
	srv := httptest.NewServer(hub.Handler(userFromQuery))
	defer srv.Close()

	alice := dial(t, srv, 1)
	aliceTab := dial(t, srv, 1)
	bob := dial(t, srv, 2)
	waitConnections(t, hub, 1, 2)
	waitConnections(t, hub, 2, 1)

	n := hub.Publish(1, domain.Envelope{Type: domain.EventNotification, Data: map[string]string{"title": "oi"}})
	assert.Equal(t, 2, n)

	for _, conn := range []*websocket.Conn{alice, aliceTab} {
		var env domain.Envelope
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
		require.NoError(t, websocket.JSON.Receive(conn, &env))
		assert.Equal(t, domain.EventNotification, env.Type)
		assert.Equal(t, map[string]any{"title": "oi"}, env.Data)
	}

	var env domain.Envelope
	require.NoError(t, bob.SetReadDeadline(time.Now().Add(200*time.Millisecond)))
	assert.Error(t, websocket.JSON.Receive(bob, &env), "bob must not receive alice's envelope")
}

func TestHub_PublishWithoutSubscribers(t *testing.T) {
	hub := NewHub()
	assert.Equal(t, 0, hub.Publish(42, domain.Envelope{Type: domain.EventDMSyncProgress}))
}

func TestHub_DisconnectUnregisters(t *testing.T) {
	hub := NewHub()
	srv := httptest.NewServer(hub.Handler(userFromQuery))
	defer srv.Close()

	conn := dial(t, srv, 7)
	waitConnections(t, hub, 7, 1)
	conn.Close()
	waitConnections(t, hub, 7, 0)
}

func TestHub_RejectsUnresolvedUser(t *testing.T) {
	hub := NewHub()
	srv := httptest.NewServer(hub.Handler(userFromQuery))
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/?user=abc"
	conn, err := websocket.Dial(wsURL, "", srv.URL)
	require.NoError(t, err)
	defer conn.Close()

	var frame []byte
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	assert.Error(t, websocket.Message.Receive(conn, &frame))
}

// stalledConn never drains: a write blocks until the write deadline passes, like a peer that stopped reading.
type stalledConn struct {
	mu       sync.Mutex
	deadline time.Time
	closed   bool
}

func (c *stalledConn) SetWriteDeadline(t time.Time) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.deadline = t
	return nil
}

func (c *stalledConn) Write(p []byte) (int, error) {
	c.mu.Lock()
	deadline := c.deadline
	c.mu.Unlock()
	if deadline.IsZero() {
		select {}
	}
	time.Sleep(time.Until(deadline))
	return 0, os.ErrDeadlineExceeded
}

func (c *stalledConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func TestHub_StalledSubscriberIsDropped(t *testing.T) {
	hub := NewHub()
	hub.writeTimeout = 50 * time.Millisecond
	stalled := &stalledConn{}
	hub.add(3, newSubscriber(stalled))

	done := make(chan int, 1)
	go func() { done <- hub.Publish(3, domain.Envelope{Type: domain.EventNotification}) }()

	select {
	case n := <-done:
		assert.Equal(t, 0, n)
	case <-time.After(2 * time.Second):
		t.Fatal("publish blocked on a stalled subscriber")
	}
	assert.Equal(t, 0, hub.Connections(3))
	stalled.mu.Lock()
	assert.True(t, stalled.closed)
	stalled.mu.Unlock()
}
