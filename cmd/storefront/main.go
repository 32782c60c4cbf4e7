package main

import (
	"context"
	"fmt"
	"math"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/gosuda/storefront/internal/auth"
	"github.com/gosuda/storefront/internal/config"
	"github.com/gosuda/storefront/internal/notify"
	"github.com/gosuda/storefront/internal/server"
	"github.com/gosuda/storefront/internal/store/postgres"
	redisstore "github.com/gosuda/storefront/internal/store/redis"
	"github.com/gosuda/storefront/internal/tracking"
)

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("startup failed")
	}
}

func run() error {
	// Initialize structured logging from environment.
	level, parseErr := zerolog.ParseLevel(os.Getenv("STOREFRONT_LOG_LEVEL"))
	if parseErr != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if os.Getenv("STOREFRONT_LOG_FORMAT") == "text" {
		log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	} else {
		log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
	}

	// Graceful shutdown on SIGINT / SIGTERM.
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	if cfg.Database.MaxConns > math.MaxInt32 {
		return fmt.Errorf("database max_conns %d out of int32 range", cfg.Database.MaxConns)
	}

	store, err := postgres.New(ctx, cfg.Database.DSN(), int32(cfg.Database.MaxConns)) //nolint:gosec // bounds checked above
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.EnsureSchema(ctx); err != nil {
		return err
	}

	sessions, err := redisstore.New(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Session.TTL)
	if err != nil {
		return err
	}
	defer sessions.Close()

	authSvc := auth.NewService(store.Users(), cfg.JWT.Secret, cfg.JWT.AccessTTL, cfg.JWT.RefreshTTL)

	if err := seed(ctx, store.Users(), store.Products(), authSvc, cfg.Seed); err != nil {
		return err
	}

	tracker := tracking.New(tracking.Config{
		CollectorURL:      cfg.Tracking.CollectorURL,
		ContainerID:       cfg.Tracking.ContainerID,
		APISecret:         cfg.Tracking.APISecret,
		ProvisioningToken: cfg.Tracking.ProvisioningToken,
		Timeout:           cfg.Tracking.Timeout,
	}, server.TrackerOptions()...)

	notifier := notify.NewSlack(cfg.Slack.BotToken, cfg.Slack.Channel)
	if !notifier.Enabled() {
		log.Info().Msg("slack bot token not set, order notifications are logged only")
	}

	srv := server.New(ctx, cfg, store, sessions, authSvc, tracker, notifier)

	log.Warn().Msg("/gtm/debug endpoints are not authenticated; do not expose them publicly")

	go func() {
		log.Info().
			Str("addr", cfg.Server.Addr).
			Str("container_id", cfg.Tracking.ContainerID).
			Msg("starting server")
		if startErr := srv.Start(ctx); startErr != nil {
			log.Error().Err(startErr).Msg("server error")
			cancel()
		}
	}()

	// Block until shutdown signal.
	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if shutdownErr := srv.Shutdown(shutdownCtx); shutdownErr != nil {
		return shutdownErr
	}

	log.Info().Msg("stopped")
	return nil
}
