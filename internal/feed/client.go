package feed

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

const controlWriteWait = 10 * time.Second

// wsConn is the subset of *websocket.Conn the client uses. Tests
// substitute an in-memory implementation.
type wsConn interface {
	ReadMessage() (int, []byte, error)
	WriteMessage(messageType int, data []byte) error
	WriteControl(messageType int, data []byte, deadline time.Time) error
	SetReadDeadline(t time.Time) error
	SetPongHandler(h func(string) error)
	Close() error
}

type dialFunc func(ctx context.Context, url string) (wsConn, error)

// Client owns a single WebSocket connection to a market-data venue and
// fans inbound updates out to logical subscribers keyed by
// (channel, symbol). It reconnects after a drop at a fixed interval up
// to a bounded attempt budget, and replays every registered
// subscription after each successful (re)connect.
type Client struct {
	opts   Options
	logger zerolog.Logger
	dial   dialFunc

	mu        sync.Mutex
	state     ConnectionState
	conn      wsConn
	connEpoch int
	destroyed bool
	attempts  int
	retry     *time.Timer

	// registry state, guarded by mu
	keys map[Key][]*callbackEntry
	live map[Key]struct{}

	writeMu sync.Mutex
}

// New creates a client for the given venue URL. The client does not
// connect until Connect is called.
func New(opts Options, logger zerolog.Logger) *Client {
	c := &Client{
		opts:   opts,
		logger: logger.With().Str("component", "feed").Logger(),
		state:  StateDisconnected,
		keys:   make(map[Key][]*callbackEntry),
		live:   make(map[Key]struct{}),
	}
	c.dial = func(ctx context.Context, url string) (wsConn, error) {
		dialer := websocket.Dialer{HandshakeTimeout: opts.DialTimeout}
		conn, _, err := dialer.DialContext(ctx, url, nil)
		if err != nil {
			return nil, err
		}
		return conn, nil
	}
	return c
}

// Connect establishes the connection. It is idempotent while a
// connection attempt is in flight or established, and fails immediately
// on a torn-down client. A failed initial dial is returned to the
// caller and NOT retried: the retry loop only engages after an
// established connection drops. An explicit Connect call resets the
// reconnect attempt budget.
func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	if c.destroyed {
		c.mu.Unlock()
		return ErrClientDestroyed
	}
	if c.state != StateDisconnected {
		c.mu.Unlock()
		return nil
	}
	c.state = StateConnecting
	c.attempts = 0
	if c.retry != nil {
		c.retry.Stop()
		c.retry = nil
	}
	c.mu.Unlock()

	c.logger.Info().Str("url", c.opts.URL).Msg("connecting")
	conn, err := c.dial(ctx, c.opts.URL)
	if err != nil {
		c.mu.Lock()
		if c.state == StateConnecting {
			c.state = StateDisconnected
		}
		c.mu.Unlock()
		return fmt.Errorf("failed to connect %s: %w", c.opts.URL, err)
	}

	if !c.installConn(conn) {
		return ErrClientDestroyed
	}
	return nil
}

// installConn adopts a freshly dialed connection, replays all
// registered subscriptions and starts the per-connection goroutines.
// Returns false if the client was torn down while dialing.
func (c *Client) installConn(conn wsConn) bool {
	c.mu.Lock()
	if c.destroyed {
		c.mu.Unlock()
		_ = conn.Close()
		return false
	}
	c.conn = conn
	c.connEpoch++
	epoch := c.connEpoch
	c.state = StateConnected
	c.attempts = 0
	replay := make([]Key, 0, len(c.keys))
	for key := range c.keys {
		replay = append(replay, key)
	}
	c.mu.Unlock()

	if c.opts.ReadTimeout > 0 {
		_ = conn.SetReadDeadline(time.Now().Add(c.opts.ReadTimeout))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(c.opts.ReadTimeout))
		})
	}

	c.logger.Info().Str("url", c.opts.URL).Msg("connected")
	c.replayAll(replay)

	go c.readLoop(conn, epoch)
	if c.opts.PingInterval > 0 {
		go c.pingLoop(conn, epoch)
	}
	return true
}

// Send transmits a raw frame if connected. While disconnected the frame
// is dropped with a warning; it is never queued for later delivery.
func (c *Client) Send(data []byte) {
	c.sendFrame(data)
}

// sendFrame reports whether the frame was actually written.
func (c *Client) sendFrame(data []byte) bool {
	c.mu.Lock()
	conn := c.conn
	connected := c.state == StateConnected
	c.mu.Unlock()

	if !connected || conn == nil {
		c.logger.Warn().Int("len", len(data)).Msg("not connected, dropping outbound frame")
		return false
	}

	c.writeMu.Lock()
	err := conn.WriteMessage(websocket.TextMessage, data)
	c.writeMu.Unlock()
	if err != nil {
		c.logger.Warn().Err(err).Msg("frame write failed")
		return false
	}
	return true
}

// State returns the current connection state.
func (c *Client) State() ConnectionState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// GetStats returns a snapshot of connection and subscription state.
func (c *Client) GetStats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	callbacks := 0
	for _, entries := range c.keys {
		callbacks += len(entries)
	}
	return Stats{
		State:     c.state,
		Keys:      len(c.keys),
		Callbacks: callbacks,
		Live:      len(c.live),
	}
}

// Teardown permanently destroys the client: it cancels any pending
// reconnect, closes the connection and clears all subscription state.
// Idempotent. Connect fails with ErrClientDestroyed afterwards.
func (c *Client) Teardown() {
	c.mu.Lock()
	if c.destroyed {
		c.mu.Unlock()
		return
	}
	c.destroyed = true
	c.state = StateDisconnected
	if c.retry != nil {
		c.retry.Stop()
		c.retry = nil
	}
	conn := c.conn
	c.conn = nil
	c.connEpoch++
	c.keys = make(map[Key][]*callbackEntry)
	c.live = make(map[Key]struct{})
	c.mu.Unlock()

	if conn != nil {
		_ = conn.Close()
	}
	c.logger.Info().Msg("client torn down")
}

func (c *Client) readLoop(conn wsConn, epoch int) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			c.handleDrop(conn, epoch, err)
			return
		}
		if c.opts.ReadTimeout > 0 {
			_ = conn.SetReadDeadline(time.Now().Add(c.opts.ReadTimeout))
		}
		c.route(data)
	}
}

func (c *Client) pingLoop(conn wsConn, epoch int) {
	ticker := time.NewTicker(c.opts.PingInterval)
	defer ticker.Stop()

	for range ticker.C {
		c.mu.Lock()
		stale := c.destroyed || epoch != c.connEpoch
		c.mu.Unlock()
		if stale {
			return
		}
		c.writeMu.Lock()
		err := conn.WriteControl(websocket.PingMessage, []byte{}, time.Now().Add(controlWriteWait))
		c.writeMu.Unlock()
		if err != nil {
			c.logger.Debug().Err(err).Msg("ping write failed")
			return
		}
	}
}

// handleDrop reacts to a read failure on an established connection.
func (c *Client) handleDrop(conn wsConn, epoch int, err error) {
	c.mu.Lock()
	if c.destroyed || epoch != c.connEpoch {
		c.mu.Unlock()
		return
	}
	c.conn = nil
	c.state = StateDisconnected
	c.live = make(map[Key]struct{})
	c.mu.Unlock()

	_ = conn.Close()
	c.logger.Warn().Err(err).Msg("connection lost")
	c.scheduleReconnect()
}

// scheduleReconnect arms the fixed-interval retry timer, unless the
// client is destroyed or the attempt budget is spent.
func (c *Client) scheduleReconnect() {
	c.mu.Lock()
	if c.destroyed || c.state != StateDisconnected {
		c.mu.Unlock()
		return
	}
	if c.attempts >= c.opts.MaxReconnectAttempts {
		c.mu.Unlock()
		c.logger.Error().
			Int("attempts", c.opts.MaxReconnectAttempts).
			Msg("reconnect budget exhausted, staying disconnected")
		return
	}
	c.attempts++
	attempt := c.attempts
	c.retry = time.AfterFunc(c.opts.ReconnectInterval, c.attemptReconnect)
	c.mu.Unlock()

	c.logger.Info().
		Int("attempt", attempt).
		Int("max", c.opts.MaxReconnectAttempts).
		Dur("interval", c.opts.ReconnectInterval).
		Msg("reconnect scheduled")
}

func (c *Client) attemptReconnect() {
	c.mu.Lock()
	if c.destroyed || c.state != StateDisconnected {
		c.mu.Unlock()
		return
	}
	c.state = StateConnecting
	c.retry = nil
	c.mu.Unlock()

	dialTimeout := c.opts.DialTimeout
	if dialTimeout <= 0 {
		dialTimeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), dialTimeout)
	conn, err := c.dial(ctx, c.opts.URL)
	cancel()
	if err != nil {
		c.logger.Warn().Err(err).Msg("reconnect attempt failed")
		c.mu.Lock()
		if c.state == StateConnecting {
			c.state = StateDisconnected
		}
		c.mu.Unlock()
		c.scheduleReconnect()
		return
	}

	c.logger.Info().Msg("reconnected")
	_ = c.installConn(conn)
}
