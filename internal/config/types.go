package config

import "time"

// Config represents the main configuration structure
type Config struct {
	URL                  string          `json:"url"`
	ReconnectInterval    int             `json:"reconnectInterval"`    // ms - delay between reconnection attempts
	MaxReconnectAttempts int             `json:"maxReconnectAttempts"` // retry budget after a connection drop
	DialTimeout          int             `json:"dialTimeout"`          // ms - WebSocket handshake timeout
	PingInterval         int             `json:"pingInterval"`         // ms - keepalive ping interval, 0 disables
	ReadTimeout          int             `json:"readTimeout"`          // ms - read deadline, refreshed on traffic and pongs
	LogLevel             string          `json:"logLevel"`
	StatsLogInterval     int             `json:"statsLogInterval"` // ms - interval for logging client statistics
	HistorySize          int             `json:"historySize"`      // trades kept per symbol
	HistorySymbols       int             `json:"historySymbols"`   // symbols tracked before LRU eviction
	Channels             []ChannelConfig `json:"channels"`
}

// ChannelConfig describes one channel to subscribe at startup. An empty
// symbol list subscribes the bare channel.
type ChannelConfig struct {
	Name         string   `json:"name"`
	Symbols      []string `json:"symbols"`
	RecordTrades bool     `json:"recordTrades"`
}

// Default values
const (
	DefaultReconnectInterval    = 3000 // ms
	DefaultMaxReconnectAttempts = 10
	DefaultDialTimeout          = 10000 // ms
	DefaultPingInterval         = 25000 // ms
	DefaultReadTimeout          = 60000 // ms
	DefaultLogLevel             = "info"
	DefaultStatsLogInterval     = 60000 // ms
	DefaultHistorySize          = 500
	DefaultHistorySymbols       = 256
)

// GetReconnectIntervalDuration returns the reconnect interval as time.Duration
func (c *Config) GetReconnectIntervalDuration() time.Duration {
	return time.Duration(c.ReconnectInterval) * time.Millisecond
}

// GetDialTimeoutDuration returns the dial timeout as time.Duration
func (c *Config) GetDialTimeoutDuration() time.Duration {
	return time.Duration(c.DialTimeout) * time.Millisecond
}

// GetPingIntervalDuration returns the ping interval as time.Duration
func (c *Config) GetPingIntervalDuration() time.Duration {
	return time.Duration(c.PingInterval) * time.Millisecond
}

// GetReadTimeoutDuration returns the read timeout as time.Duration
func (c *Config) GetReadTimeoutDuration() time.Duration {
	return time.Duration(c.ReadTimeout) * time.Millisecond
}

// GetStatsLogIntervalDuration returns the stats log interval as time.Duration
func (c *Config) GetStatsLogIntervalDuration() time.Duration {
	return time.Duration(c.StatsLogInterval) * time.Millisecond
}
