package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"laptop-request-catalog/internal"
	"laptop-request-catalog/internal/auth"
	"laptop-request-catalog/internal/config"
	"laptop-request-catalog/internal/datastore"
	"laptop-request-catalog/pkg/importer"

	"github.com/rs/zerolog"
)

func main() {
	// Load and validate configuration
	cfg, err := config.LoadAndValidate()
	if err != nil {
		bootstrap := zerolog.New(os.Stderr).With().Timestamp().Logger()
		bootstrap.Fatal().Err(err).Msg("Configuration error")
	}

	logger := newLogger(cfg)

	key, err := auth.InspectKey(cfg.DataServiceKey, time.Now())
	if err != nil {
		logger.Fatal().Err(err).Msg("Data service key rejected")
	}
	if key.Opaque {
		logger.Info().Msg("Data service key is opaque")
	} else {
		ev := logger.Info().Str("role", key.Role).Str("issuer", key.Issuer)
		if key.ExpiresAt != nil {
			ev = ev.Time("expires_at", *key.ExpiresAt)
		}
		ev.Msg("Data service key inspected")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := datastore.New(ctx, datastore.Options{
		URL:          cfg.DataServiceURL,
		Key:          cfg.DataServiceKey,
		LaptopTable:  cfg.LaptopTable,
		RequestTable: cfg.RequestTable,
		Timeout:      cfg.RequestTimeout,
	}, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create data client")
	}
	defer store.Close()

	var importDB importer.DB
	if pg, ok := store.(*datastore.PostgresClient); ok {
		importDB = pg.Pool()
	}

	srv, err := internal.NewServer(internal.Options{
		Config:   cfg,
		Client:   store,
		ImportDB: importDB,
		Logger:   logger,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create server")
	}
	go srv.Run(ctx)

	httpServer := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           srv.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info().
			Str("addr", cfg.ListenAddr).
			Str("env", cfg.AppEnv).
			Bool("metrics", cfg.EnableMetrics).
			Msg("Starting laptop request catalog")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("HTTP server stopped")
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Graceful shutdown failed")
	}
	srv.Close()
}

func newLogger(cfg *config.Config) zerolog.Logger {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.LogLevel))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	var logger zerolog.Logger
	if cfg.LogFormat == "json" || cfg.IsProduction() {
		logger = zerolog.New(os.Stdout)
	} else {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})
	}
	return logger.Level(level).With().Timestamp().Logger()
}
