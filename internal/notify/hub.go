// Package notify fans event envelopes out to websocket subscribers.
package notify

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"sync"
	"time"

	"golang.org/x/net/websocket"

	"ugc-marketplace-backend/internal/domain"
	"ugc-marketplace-backend/internal/logger"
)

// defaultWriteTimeout bounds a single envelope write so a stalled peer cannot block Publish.
const defaultWriteTimeout = 10 * time.Second

// wsConn is the part of *websocket.Conn a subscriber writes through.
type wsConn interface {
	io.WriteCloser
	SetWriteDeadline(t time.Time) error
}

type subscriber struct {
	mu      sync.Mutex
	encoder *json.Encoder
	conn    wsConn
}

func newSubscriber(c wsConn) *subscriber {
	return &subscriber{encoder: json.NewEncoder(c), conn: c}
}

func (s *subscriber) write(env domain.Envelope, timeout time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.conn.SetWriteDeadline(time.Now().Add(timeout)); err != nil {
		return err
	}
	return s.encoder.Encode(env)
}

// Hub tracks live connections per user. The zero value is not usable; call NewHub.
type Hub struct {
	mu           sync.RWMutex
	subs         map[int32]map[*subscriber]struct{}
	writeTimeout time.Duration
}

func NewHub() *Hub {
	return &Hub{subs: make(map[int32]map[*subscriber]struct{}), writeTimeout: defaultWriteTimeout}
}

func (h *Hub) add(userID int32, s *subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.subs[userID]
	if !ok {
		set = make(map[*subscriber]struct{})
		h.subs[userID] = set
	}
	set[s] = struct{}{}
}

func (h *Hub) remove(userID int32, s *subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.subs[userID]
	if !ok {
		return
	}
	delete(set, s)
	if len(set) == 0 {
		delete(h.subs, userID)
	}
}

// Publish writes env to every connection of userID. Subscribers whose write fails are dropped.
func (h *Hub) Publish(userID int32, env domain.Envelope) int {
	h.mu.RLock()
	targets := make([]*subscriber, 0, len(h.subs[userID]))
	for s := range h.subs[userID] {
		targets = append(targets, s)
	}
	h.mu.RUnlock()

	delivered := 0
	for _, s := range targets {
		if err := s.write(env, h.writeTimeout); err != nil {
			logger.Warn("Dropping websocket subscriber", "userID", userID, "type", env.Type, "error", err)
			h.remove(userID, s)
			s.conn.Close()
			continue
		}
		delivered++
	}
	return delivered
}

// Connections reports how many live connections userID has.
func (h *Hub) Connections(userID int32) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[userID])
}

// Serve registers conn for userID and blocks until the peer goes away.
// Inbound frames are read and discarded; they only keep the connection alive.
func (h *Hub) Serve(conn *websocket.Conn, userID int32) {
	s := newSubscriber(conn)
	h.add(userID, s)
	logger.Debug("Websocket subscriber connected", "userID", userID, "connections", h.Connections(userID))
	defer func() {
		h.remove(userID, s)
		conn.Close()
		logger.Debug("Websocket subscriber disconnected", "userID", userID)
	}()

	var frame []byte
	for {
		if err := websocket.Message.Receive(conn, &frame); err != nil {
			if !errors.Is(err, io.EOF) {
				logger.Debug("Websocket read ended", "userID", userID, "error", err)
			}
			return
		}
	}
}

// Handler upgrades the request and serves it for the user resolved by userOf.
// userOf runs after authentication middleware, so a false result is a programming error and closes the socket.
func (h *Hub) Handler(userOf func(r *http.Request) (int32, bool)) http.Handler {
	return websocket.Server{
		Handler: func(conn *websocket.Conn) {
			userID, ok := userOf(conn.Request())
			if !ok {
				conn.Close()
				return
			}
			h.Serve(conn, userID)
		},
	}
}
