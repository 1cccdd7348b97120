package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	router "github.com/dkeye/StudyHub/internal/adapters/http"
	"github.com/dkeye/StudyHub/internal/app"
	"github.com/dkeye/StudyHub/internal/app/broadcast"
	"github.com/dkeye/StudyHub/internal/app/orch"
	"github.com/dkeye/StudyHub/internal/app/rooms"
	"github.com/dkeye/StudyHub/internal/auth"
	"github.com/dkeye/StudyHub/internal/config"
	"github.com/dkeye/StudyHub/internal/jobs"
	"github.com/dkeye/StudyHub/internal/notify"
	"github.com/dkeye/StudyHub/internal/storage"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Logger first so config.Load can use it.
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	setupLogger(cfg)

	if err := run(ctx, cfg); err != nil {
		log.Fatal().Err(err).Msg("server stopped with error")
	}
	log.Info().Msg("Server exited gracefully")
}

func setupLogger(cfg *config.Config) {
	if cfg.Mode != "debug" {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	}
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
}

func run(ctx context.Context, cfg *config.Config) error {
	db, err := storage.Open(cfg.Database)
	if err != nil {
		return err
	}
	defer func() {
		if err := storage.Close(db); err != nil {
			log.Error().Err(err).Msg("database close")
		}
	}()
	stores := storage.NewStores(db)

	authSvc := auth.NewService(stores.Users, auth.NewTokenManager(cfg.JWT), auth.NewPasswordHasher(auth.DefaultBcryptCost))
	mailer := notify.LogMailer{}
	policy, err := app.NewPolicy(cfg.Hub.Backpressure)
	if err != nil {
		return err
	}

	hub := &orch.Orchestrator{
		Registry:         app.NewRegistry(),
		Rooms:            app.NewRoomManager(),
		Policy:           policy,
		Identity:         authSvc,
		Membership:       stores.Rooms,
		Messages:         stores.Messages,
		Sessions:         stores.Sessions,
		PersistTimeout:   cfg.Hub.PersistTimeout,
		MaxMessageLength: cfg.Hub.MaxMessageLength,
	}
	backend, err := broadcast.New(ctx, cfg.Broadcast, hub)
	if err != nil {
		return err
	}
	defer func() {
		if err := backend.Close(); err != nil {
			log.Error().Err(err).Msg("broadcaster close")
		}
	}()
	hub.Broadcaster = backend

	roomSvc := rooms.NewService(stores, mailer, hub, cfg.Invitations)
	roomSvc.ConfigureReminders(cfg.Reminders)
	cleaner := jobs.NewInvitationCleaner(roomSvc, cfg.Invitations.CleanupInterval)
	reminder := jobs.NewReminder(roomSvc, cfg.Reminders.Interval)

	r := router.SetupRouter(ctx, cfg, &router.Handlers{
		Auth:      authSvc,
		Rooms:     roomSvc,
		Orch:      hub,
		Mailer:    mailer,
		ClientURL: cfg.Invitations.ClientURL,
	})
	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return backend.Run(gctx)
	})
	g.Go(func() error {
		return cleaner.Run(gctx)
	})
	g.Go(func() error {
		return reminder.Run(gctx)
	})
	g.Go(func() error {
		log.Info().Str("addr", addr).Str("broadcast", cfg.Broadcast.Backend).Msg("StudyHub server started")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("Shutting down")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Server forced to shutdown")
		}
		return nil
	})
	return g.Wait()
}
