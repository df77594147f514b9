package worker

import (
	"context"
	"time"

	"github.com/PauloRoberto1224/gestaocontratopy/internal/clock"
	"github.com/PauloRoberto1224/gestaocontratopy/internal/infra"
	"github.com/PauloRoberto1224/gestaocontratopy/internal/repository"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	reminderBatchSize = 200
	notifiedKeyPrefix = "reminder:notified:"
	// The dedupe key outlives the day it covers so a late tick cannot resend.
	notifiedKeyTTL = 36 * time.Hour
)

// ReminderCronConfig holds all dependencies for the reminder scan goroutine.
type ReminderCronConfig struct {
	Reminders     repository.ReminderRepository
	Dispatcher    *Dispatcher
	RDB           *redis.Client
	CB            *infra.CircuitBreaker
	Clock         clock.Clock
	Interval      time.Duration
	LookaheadDays int
}

// StartReminderCron scans once immediately and then on every Interval tick.
// It respects the context for graceful shutdown.
func StartReminderCron(ctx context.Context, cfg ReminderCronConfig) {
	if cfg.Clock == nil {
		cfg.Clock = clock.System()
	}
	go func() {
		ticker := time.NewTicker(cfg.Interval)
		defer ticker.Stop()

		log.Info().Dur("interval", cfg.Interval).Int("lookahead_days", cfg.LookaheadDays).Msg("reminder_cron: started")
		scanReminders(ctx, cfg)

		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("reminder_cron: shutting down")
				return
			case <-ticker.C:
				scanReminders(ctx, cfg)
			}
		}
	}()
}

// scanReminders enqueues one email per open reminder due within the
// lookahead window, at most once per reminder and day. Returns how many jobs
// were enqueued.
func scanReminders(ctx context.Context, cfg ReminderCronConfig) int {
	// If the SMTP breaker is open the jobs would only pile up in the DLQ.
	if cfg.CB != nil && cfg.CB.State() == infra.CBOpen {
		log.Debug().Msg("reminder_cron: circuit breaker is open, skipping tick")
		return 0
	}

	now := cfg.Clock.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	until := today.AddDate(0, 0, cfg.LookaheadDays)

	reminders, err := cfg.Reminders.PendingDueBetween(ctx, today, until, reminderBatchSize)
	if err != nil {
		log.Error().Err(err).Msg("reminder_cron: failed to query pending reminders")
		return 0
	}

	day := today.Format("2006-01-02")
	enqueued := 0
	for i := range reminders {
		r := &reminders[i]
		if r.AssignedTo == nil || r.AssignedTo.Email == nil || *r.AssignedTo.Email == "" {
			continue
		}

		key := notifiedKeyPrefix + r.ID.String() + ":" + day
		first, err := cfg.RDB.SetNX(ctx, key, 1, notifiedKeyTTL).Result()
		if err != nil {
			log.Error().Err(err).Str("reminder_id", r.ID.String()).Msg("reminder_cron: dedupe check failed")
			continue
		}
		if !first {
			continue
		}

		payload := ReminderEmailPayload{
			ReminderID: r.ID.String(),
			Title:      r.Title,
			DueDate:    r.DueDate.Format("2006-01-02"),
			ToEmail:    *r.AssignedTo.Email,
			ToName:     r.AssignedTo.Name,
		}
		if r.Description != nil {
			payload.Description = *r.Description
		}
		if r.Contract != nil {
			payload.ContractNumber = r.Contract.ContractNumber
			payload.Company = r.Contract.Company
		}

		if err := cfg.Dispatcher.EnqueueReminderEmail(ctx, payload); err != nil {
			// Release the key so the next tick retries.
			cfg.RDB.Del(ctx, key)
			log.Error().Err(err).Str("reminder_id", r.ID.String()).Msg("reminder_cron: failed to enqueue")
			continue
		}
		enqueued++
	}

	if enqueued > 0 {
		log.Info().Int("count", enqueued).Msg("reminder_cron: reminder emails enqueued")
	}
	return enqueued
}
