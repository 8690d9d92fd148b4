package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
)

// Load reads and parses the configuration file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	applyDefaults(cfg)

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// applyDefaults sets default values for unset fields
func applyDefaults(cfg *Config) {
	if cfg.ReconnectInterval == 0 {
		cfg.ReconnectInterval = DefaultReconnectInterval
	}
	if cfg.MaxReconnectAttempts == 0 {
		cfg.MaxReconnectAttempts = DefaultMaxReconnectAttempts
	}
	if cfg.DialTimeout == 0 {
		cfg.DialTimeout = DefaultDialTimeout
	}
	// PingInterval 0 is valid and disables keepalive pings
	if cfg.ReadTimeout == 0 {
		cfg.ReadTimeout = DefaultReadTimeout
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = DefaultLogLevel
	}
	if cfg.StatsLogInterval == 0 {
		cfg.StatsLogInterval = DefaultStatsLogInterval
	}
	if cfg.HistorySize == 0 {
		cfg.HistorySize = DefaultHistorySize
	}
	if cfg.HistorySymbols == 0 {
		cfg.HistorySymbols = DefaultHistorySymbols
	}
}

// validate checks the configuration for errors
func validate(cfg *Config) error {
	if cfg.URL == "" {
		return errors.New("url is required")
	}
	if !strings.HasPrefix(cfg.URL, "ws://") && !strings.HasPrefix(cfg.URL, "wss://") {
		return fmt.Errorf("url must use ws:// or wss:// scheme, got '%s'", cfg.URL)
	}

	if cfg.ReconnectInterval < 0 {
		return errors.New("reconnectInterval must be non-negative")
	}
	if cfg.MaxReconnectAttempts < 0 {
		return errors.New("maxReconnectAttempts must be non-negative")
	}
	if cfg.DialTimeout < 0 {
		return errors.New("dialTimeout must be non-negative")
	}
	if cfg.PingInterval < 0 {
		return errors.New("pingInterval must be non-negative")
	}
	if cfg.ReadTimeout < 0 {
		return errors.New("readTimeout must be non-negative")
	}
	if cfg.HistorySize < 0 {
		return errors.New("historySize must be non-negative")
	}
	if cfg.HistorySymbols < 0 {
		return errors.New("historySymbols must be non-negative")
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[cfg.LogLevel] {
		return fmt.Errorf("logLevel must be one of: debug, info, warn, error")
	}

	seen := make(map[string]bool)
	for i, ch := range cfg.Channels {
		if ch.Name == "" {
			return fmt.Errorf("channels[%d]: name is required", i)
		}
		for _, sym := range ch.Symbols {
			if sym == "" {
				return fmt.Errorf("channel '%s': empty symbol", ch.Name)
			}
			key := ch.Name + ":" + sym
			if seen[key] {
				return fmt.Errorf("duplicate channel subscription '%s'", key)
			}
			seen[key] = true
		}
		if len(ch.Symbols) == 0 {
			if seen[ch.Name] {
				return fmt.Errorf("duplicate channel subscription '%s'", ch.Name)
			}
			seen[ch.Name] = true
		}
	}

	return nil
}
