package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad_AppliesDefaults(t *testing.T) {
	path := writeConfig(t, `{"url":"wss://stream.venue.test/realtime"}`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ReconnectInterval != DefaultReconnectInterval {
		t.Errorf("ReconnectInterval = %d, want %d", cfg.ReconnectInterval, DefaultReconnectInterval)
	}
	if cfg.MaxReconnectAttempts != DefaultMaxReconnectAttempts {
		t.Errorf("MaxReconnectAttempts = %d, want %d", cfg.MaxReconnectAttempts, DefaultMaxReconnectAttempts)
	}
	if cfg.LogLevel != DefaultLogLevel {
		t.Errorf("LogLevel = %s, want %s", cfg.LogLevel, DefaultLogLevel)
	}
	if cfg.HistorySize != DefaultHistorySize {
		t.Errorf("HistorySize = %d, want %d", cfg.HistorySize, DefaultHistorySize)
	}
}

func TestLoad_ExplicitValuesKept(t *testing.T) {
	path := writeConfig(t, `{
		"url": "ws://localhost:8080/stream",
		"reconnectInterval": 1000,
		"maxReconnectAttempts": 3,
		"logLevel": "debug",
		"channels": [
			{"name": "v2/ticker", "symbols": ["BTCUSDT", "ETHUSDT"]},
			{"name": "v2/trade", "symbols": ["BTCUSDT"], "recordTrades": true},
			{"name": "v2/announcements"}
		]
	}`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ReconnectInterval != 1000 || cfg.MaxReconnectAttempts != 3 {
		t.Errorf("reconnect settings = %d/%d", cfg.ReconnectInterval, cfg.MaxReconnectAttempts)
	}
	if len(cfg.Channels) != 3 {
		t.Fatalf("channels = %d, want 3", len(cfg.Channels))
	}
	if !cfg.Channels[1].RecordTrades {
		t.Error("recordTrades not preserved")
	}
	if got := cfg.GetReconnectIntervalDuration().Milliseconds(); got != 1000 {
		t.Errorf("interval duration = %dms", got)
	}
}

func TestLoad_Invalid(t *testing.T) {
	cases := []struct {
		name    string
		content string
		wantErr string
	}{
		{"missing url", `{}`, "url is required"},
		{"bad scheme", `{"url":"https://venue.test"}`, "ws:// or wss://"},
		{"bad log level", `{"url":"wss://v.test","logLevel":"verbose"}`, "logLevel"},
		{"negative interval", `{"url":"wss://v.test","reconnectInterval":-1}`, "reconnectInterval"},
		{"channel without name", `{"url":"wss://v.test","channels":[{"symbols":["BTCUSDT"]}]}`, "name is required"},
		{"duplicate subscription", `{"url":"wss://v.test","channels":[{"name":"t","symbols":["A","A"]}]}`, "duplicate"},
		{"not json", `{{{`, "failed to parse"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := writeConfig(t, tc.content)
			_, err := Load(path)
			if err == nil {
				t.Fatal("Load succeeded, want error")
			}
			if !strings.Contains(err.Error(), tc.wantErr) {
				t.Errorf("error = %q, want substring %q", err, tc.wantErr)
			}
		})
	}
}

func TestLoad_FileMissing(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Fatal("Load succeeded on missing file")
	}
}
