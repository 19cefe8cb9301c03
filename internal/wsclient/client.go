// Package wsclient subscribes to the notification websocket and keeps the subscription alive.
package wsclient

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/net/websocket"

	"ugc-marketplace-backend/internal/domain"
	"ugc-marketplace-backend/internal/logger"
)

// ReconnectDelay is the fixed wait between a dropped connection and the next dial.
const ReconnectDelay = 3 * time.Second

var ErrClosed = errors.New("websocket client closed")

type Client struct {
	endpoint string
	origin   string
	handle   func(domain.Envelope)
	delay    time.Duration

	mu     sync.Mutex
	conn   *websocket.Conn
	closed bool
	dials  int
}

// New builds a client for serverURL (http or https). The access token travels as the token query parameter.
func New(serverURL, token string, handle func(domain.Envelope)) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(serverURL, "/") + "/ws/notifications")
	if err != nil {
		return nil, fmt.Errorf("invalid server url: %w", err)
	}
	origin := u.Scheme + "://" + u.Host
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	default:
		return nil, fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	q := u.Query()
	q.Set("token", token)
	u.RawQuery = q.Encode()

	return &Client{endpoint: u.String(), origin: origin, handle: handle, delay: ReconnectDelay}, nil
}

// Run dials, delivers envelopes to the handler and redials after ReconnectDelay whenever the
// connection ends. It returns nil after Close and ctx.Err() when ctx is cancelled.
func (c *Client) Run(ctx context.Context) error {
	for {
		if c.isClosed() {
			return nil
		}
		err := c.session(ctx)
		if c.isClosed() {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		logger.Warn("Notification stream interrupted, reconnecting", "delay", c.delay, "error", err)

		timer := time.NewTimer(c.delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

func (c *Client) session(ctx context.Context) error {
	cfg, err := websocket.NewConfig(c.endpoint, c.origin)
	if err != nil {
		return err
	}
	conn, err := cfg.DialContext(ctx)
	if err != nil {
		return err
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		conn.Close()
		return ErrClosed
	}
	c.conn = conn
	c.dials++
	c.mu.Unlock()

	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer func() {
		stop()
		c.mu.Lock()
		if c.conn == conn {
			c.conn = nil
		}
		c.mu.Unlock()
		conn.Close()
	}()

	logger.Info("Notification stream connected")
	for {
		var env domain.Envelope
		if err := websocket.JSON.Receive(conn, &env); err != nil {
			return err
		}
		if c.handle != nil {
			c.handle(env)
		}
	}
}

// Close stops the client for good; no reconnect follows.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

func (c *Client) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// Connections reports how many times the client has connected.
func (c *Client) Connections() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dials
}
