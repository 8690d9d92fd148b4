package feed

import (
	"encoding/json"
	"errors"
	"time"
)

// ErrClientDestroyed is returned for operations on a torn-down client.
var ErrClientDestroyed = errors.New("client destroyed")

// ConnectionState is the transport connection state of a client.
type ConnectionState string

const (
	StateDisconnected ConnectionState = "disconnected"
	StateConnecting   ConnectionState = "connecting"
	StateConnected    ConnectionState = "connected"
)

// Key identifies one logical subscription: a channel, optionally scoped
// to a single symbol. Keys are compared structurally; the canonical
// string form exists only for the wire format.
type Key struct {
	Channel string
	Symbol  string
}

// Name renders the canonical wire form: "channel" or "channel:symbol".
func (k Key) Name() string {
	if k.Symbol == "" {
		return k.Channel
	}
	return k.Channel + ":" + k.Symbol
}

// Envelope is one routed update delivered to a callback. Data is the
// raw per-item payload; numeric string parsing is left to the consumer.
type Envelope struct {
	Channel string
	Symbol  string
	Action  string
	Data    json.RawMessage
}

// Callback consumes envelopes for one subscription.
type Callback func(Envelope)

// Options configures a Client.
type Options struct {
	URL                  string
	ReconnectInterval    time.Duration
	MaxReconnectAttempts int
	DialTimeout          time.Duration
	PingInterval         time.Duration
	ReadTimeout          time.Duration
}

// Stats is a snapshot of client state for status logging.
type Stats struct {
	State     ConnectionState
	Keys      int
	Callbacks int
	Live      int
}
