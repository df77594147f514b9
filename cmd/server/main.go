package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/PauloRoberto1224/gestaocontratopy/internal/config"
	"github.com/PauloRoberto1224/gestaocontratopy/internal/infra"
	"github.com/PauloRoberto1224/gestaocontratopy/internal/repository"
	"github.com/PauloRoberto1224/gestaocontratopy/internal/router"
	"github.com/PauloRoberto1224/gestaocontratopy/internal/worker"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	setupLogger(cfg)

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}

	rdb, err := infra.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Attachments are optional: without object storage the upload endpoints
	// answer 503 and everything else keeps working.
	var store *infra.ObjectStore
	if cfg.MinioAccessKey != "" {
		store, err = infra.NewObjectStore(cfg)
		if err == nil {
			err = store.EnsureBucket(ctx)
		}
		if err != nil {
			log.Warn().Err(err).Msg("object storage unavailable, attachments disabled")
			store = nil
		}
	}

	// Background work: reminder scan → redis queue → email worker (SMTP behind
	// a circuit breaker) → DLQ after repeated failures.
	mailCB := infra.NewCircuitBreaker(infra.DefaultCBConfig())
	mailer := infra.NewMailer(cfg)
	dispatcher := worker.NewDispatcher(rdb)

	pool := worker.NewPool(rdb)
	pool.Register(worker.QueueReminderEmail, worker.JobReminderEmail, worker.NewEmailWorker(mailer, mailCB))
	pool.Start(ctx, cfg.WorkerPoolSize)

	if mailer.Configured() {
		worker.StartReminderCron(ctx, worker.ReminderCronConfig{
			Reminders:     repository.NewReminderRepository(db),
			Dispatcher:    dispatcher,
			RDB:           rdb,
			CB:            mailCB,
			Interval:      cfg.ReminderScanInterval,
			LookaheadDays: cfg.ReminderLookaheadDays,
		})
	} else {
		log.Info().Msg("SMTP not configured, reminder emails disabled")
	}

	r := router.New(cfg, router.Deps{DB: db, Redis: rdb, Store: store, MailCB: mailCB})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM
	go func() {
		log.Info().Msgf("contract API listening on :%d", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server…")
	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("forced shutdown")
	}
	log.Info().Msg("server exited")
}

// setupLogger: dev gets a pretty console, prod gets JSON.
func setupLogger(cfg *config.Config) {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.Env == "production" {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
		return
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
}
