package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"feedmux/internal/config"
	"feedmux/internal/feed"
	"feedmux/internal/history"
)

func main() {
	// Parse flags
	configPath := flag.String("config", "config.json", "path to config file")
	flag.Parse()

	// Load config
	cfg, err := config.Load(*configPath)
	if err != nil {
		// Basic logger for startup errors
		log := zerolog.New(os.Stderr).With().Timestamp().Logger()
		log.Fatal().Err(err).Msg("failed to load config")
	}

	// Setup logger
	logger := setupLogger(cfg.LogLevel)
	logger.Info().
		Str("config", *configPath).
		Str("url", cfg.URL).
		Int("channels", len(cfg.Channels)).
		Msg("starting feedmux")

	// Trade history, bounded per symbol and across symbols
	book, err := history.New(cfg.HistorySymbols, cfg.HistorySize)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create trade history")
	}

	client := feed.New(feed.Options{
		URL:                  cfg.URL,
		ReconnectInterval:    cfg.GetReconnectIntervalDuration(),
		MaxReconnectAttempts: cfg.MaxReconnectAttempts,
		DialTimeout:          cfg.GetDialTimeoutDuration(),
		PingInterval:         cfg.GetPingIntervalDuration(),
		ReadTimeout:          cfg.GetReadTimeoutDuration(),
	}, logger)

	// Register configured subscriptions before connecting; the client
	// replays them all once the connection is up.
	for _, ch := range cfg.Channels {
		symbols := ch.Symbols
		if len(symbols) == 0 {
			symbols = []string{""}
		}
		for _, symbol := range symbols {
			if _, err := client.Subscribe(ch.Name, symbol, makeCallback(logger, book, ch.RecordTrades)); err != nil {
				logger.Fatal().Err(err).Str("channel", ch.Name).Msg("failed to subscribe")
			}
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.GetDialTimeoutDuration())
	err = client.Connect(ctx)
	cancel()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect")
	}

	// Periodic client statistics
	statsDone := make(chan struct{})
	go logStats(logger, client, book, cfg.GetStatsLogIntervalDuration(), statsDone)

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logger.Info().Str("signal", sig.String()).Msg("received shutdown signal")
	close(statsDone)
	client.Teardown()
}

// makeCallback builds the envelope handler for one subscription.
func makeCallback(logger zerolog.Logger, book *history.Book, recordTrades bool) feed.Callback {
	return func(env feed.Envelope) {
		logger.Debug().
			Str("channel", env.Channel).
			Str("symbol", env.Symbol).
			Str("action", env.Action).
			Msg("update")

		if !recordTrades || env.Symbol == "" {
			return
		}
		var t history.Trade
		if err := json.Unmarshal(env.Data, &t); err != nil {
			logger.Warn().Err(err).Str("symbol", env.Symbol).Msg("unparseable trade item")
			return
		}
		book.Record(env.Symbol, t)
	}
}

func logStats(logger zerolog.Logger, client *feed.Client, book *history.Book, interval time.Duration, done <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			stats := client.GetStats()
			logger.Info().
				Str("state", string(stats.State)).
				Int("keys", stats.Keys).
				Int("callbacks", stats.Callbacks).
				Int("live", stats.Live).
				Int("historySymbols", book.Len()).
				Msg("client status")
		}
	}
}

// setupLogger configures the zerolog logger
func setupLogger(level string) zerolog.Logger {
	var logLevel zerolog.Level
	switch level {
	case "debug":
		logLevel = zerolog.DebugLevel
	case "info":
		logLevel = zerolog.InfoLevel
	case "warn":
		logLevel = zerolog.WarnLevel
	case "error":
		logLevel = zerolog.ErrorLevel
	default:
		logLevel = zerolog.InfoLevel
	}

	zerolog.SetGlobalLevel(logLevel)

	output := zerolog.ConsoleWriter{
		Out:        os.Stdout,
		TimeFormat: time.RFC3339,
	}

	return zerolog.New(output).With().Timestamp().Logger()
}
