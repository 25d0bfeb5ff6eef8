package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"
)

const reminderInterval = time.Minute

// StartReminderScheduler запускает ежеминутную рассылку напоминаний.
// Вызывающий обязан остановить планировщик через Shutdown.
func StartReminderScheduler(notifications NotificationService, logger *slog.Logger) (gocron.Scheduler, error) {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	_, err = sched.NewJob(
		gocron.DurationJob(reminderInterval),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), reminderInterval)
			defer cancel()
			if err := notifications.SendUpcomingReminders(ctx); err != nil {
				logger.Error("reminder sweep failed", slog.Any("error", err))
			}
		}),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		_ = sched.Shutdown()
		return nil, fmt.Errorf("failed to register reminder job: %w", err)
	}

	sched.Start()
	logger.Info("reminder scheduler started", slog.Duration("interval", reminderInterval))
	return sched, nil
}
