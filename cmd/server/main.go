package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	router "github.com/semitha-uni-west/google-beet/internal/adapters/http"
	"github.com/semitha-uni-west/google-beet/internal/adapters/presence"
	"github.com/semitha-uni-west/google-beet/internal/adapters/store"
	"github.com/semitha-uni-west/google-beet/internal/app"
	"github.com/semitha-uni-west/google-beet/internal/app/orch"
	"github.com/semitha-uni-west/google-beet/internal/config"
	"github.com/semitha-uni-west/google-beet/internal/core"
	"github.com/semitha-uni-west/google-beet/internal/domain"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Initialize zerolog global logger early so config.Load can use it.
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil && cfg.LogLevel != "" {
		zerolog.SetGlobalLevel(lvl)
	}

	meetingStore, closeStore, err := openStore(ctx, cfg.Store)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open meeting store")
	}
	defer closeStore()

	bus, err := openBus(ctx, cfg.Presence)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open presence bus")
	}
	defer bus.Close()

	meetings := app.NewMeetingService(meetingStore, domain.NewCodeGenerator(cfg.Meeting.CodeLength, cfg.Meeting.Reserved))
	o := orch.New(app.NewRegistry(), app.NewRoomManager(), app.SimplePolicy{}, bus, meetings)
	defer o.Close()

	r := router.SetupRouter(ctx, cfg, meetings, o)
	addr := fmt.Sprintf(":%d", cfg.Port)

	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("google-beet server started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("server error")
			cancel()
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Msg("Server exited gracefully")
}

func openStore(ctx context.Context, cfg config.StoreConfig) (core.MeetingStore, func(), error) {
	if cfg.Driver != "postgres" {
		log.Info().Str("module", "main").Msg("using in-memory meeting store")
		return store.NewMemoryStore(), func() {}, nil
	}
	pool, err := store.Connect(ctx, cfg.DSN, cfg.MaxConns)
	if err != nil {
		return nil, nil, err
	}
	if cfg.Migrate {
		if err := store.RunMigration(ctx, pool); err != nil {
			pool.Close()
			return nil, nil, err
		}
	}
	log.Info().Str("module", "main").Msg("using postgres meeting store")
	return store.NewPostgresStore(pool), pool.Close, nil
}

func openBus(ctx context.Context, cfg config.PresenceConfig) (core.PresenceBus, error) {
	if cfg.Driver != "redis" {
		return presence.NewLocalBus(), nil
	}
	client, err := presence.DialRedis(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		return nil, err
	}
	log.Info().Str("module", "main").Str("addr", cfg.RedisAddr).Msg("using redis presence bus")
	return presence.NewRedisBus(client), nil
}
