// Package main is the entry point for the Inzalo Yelanga calendar API server.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/zapponejosh/inzalo-api/internal/api"
	"github.com/zapponejosh/inzalo-api/internal/cache"
	"github.com/zapponejosh/inzalo-api/internal/config"
	"github.com/zapponejosh/inzalo-api/internal/database"
	"github.com/zapponejosh/inzalo-api/internal/logger"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server exited", slog.Any("error", err))
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	log, closer := logger.Setup(cfg)
	defer closer.Close()
	slog.SetDefault(log)

	log.Info("starting inzalo yelanga API",
		slog.String("env", cfg.Env),
		slog.Int("port", cfg.Port),
		slog.String("timezone", cfg.Timezone),
		slog.String("log_level", cfg.LogLevel),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Database
	db, err := database.Open(database.DefaultConfig(cfg.DatabasePath), log)
	if err != nil {
		return err
	}
	defer db.Close()

	applied, err := db.Migrate(ctx)
	if err != nil {
		return err
	}
	seeded, err := db.SeedWisdom(ctx)
	if err != nil {
		return err
	}
	log.Info("database ready", slog.Int("migrations_applied", applied), slog.Int("wisdom_seeded", seeded))

	// Cache
	var c cache.Cache
	if cfg.RedisURL != "" {
		startupCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		rdb, err := cache.NewRedis(startupCtx, cfg.RedisURL, log)
		cancel()
		if err != nil {
			return err
		}
		c = rdb
	} else {
		mem := cache.NewMemory(cfg.CacheMaxEntries)
		mem.StartSweeper(ctx, time.Minute, log)
		c = mem
		log.Info("REDIS_URL not set, using in-memory cache", slog.Int("max_entries", cfg.CacheMaxEntries))
	}
	defer c.Close()

	// HTTP
	limiter := api.NewRateLimiter(ctx, cfg.RateLimitRPS, cfg.RateLimitBurst, cfg.TrustProxy)
	handlers := api.NewHandlers(db, c, cfg, log)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           api.NewRouter(handlers, db, cfg, log, limiter),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info("listening", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received")
	case err := <-serverErr:
		return fmt.Errorf("http server: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	log.Info("shutting down server", slog.Duration("timeout", cfg.ShutdownTimeout))
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	log.Info("server stopped cleanly")
	return nil
}
