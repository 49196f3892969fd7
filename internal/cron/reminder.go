// Package cron runs the in-process reminder trigger.
package cron

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/akovacs/plantkeeper/internal/service"
)

// ReminderJob fires the reminder batch on a schedule while the server is
// running. It is one of three triggers sharing the once-per-day claim, so
// overlap with cmd/reminder or a manual run is harmless.
type ReminderJob struct {
	reminders *service.ReminderService
	schedule  string
	cron      *cron.Cron
	logger    *slog.Logger
}

// NewReminderJob builds a job for the given cron expression, typically
// "0 18 * * *" to fire right at the reminder cutoff.
func NewReminderJob(reminders *service.ReminderService, schedule string, logger *slog.Logger) *ReminderJob {
	return &ReminderJob{
		reminders: reminders,
		schedule:  schedule,
		cron:      cron.New(),
		logger:    logger,
	}
}

// Start registers the schedule and launches the cron loop.
func (j *ReminderJob) Start() error {
	if _, err := j.cron.AddFunc(j.schedule, j.run); err != nil {
		return fmt.Errorf("cron: registering reminder schedule %q: %w", j.schedule, err)
	}

	j.cron.Start()
	j.logger.Info("reminder job started", slog.String("schedule", j.schedule))
	return nil
}

// Stop halts the scheduler and waits for a running batch to finish.
func (j *ReminderJob) Stop() {
	ctx := j.cron.Stop()
	<-ctx.Done()
	j.logger.Info("reminder job stopped")
}

// run executes one batch attempt. Scheduled runs never propagate errors;
// a failure is logged and the next trigger gets another chance because the
// claim was released.
func (j *ReminderJob) run() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	result, err := j.reminders.Run(ctx, time.Now())
	if err != nil {
		j.logger.Error("scheduled reminder run failed", slog.String("error", err.Error()))
		return
	}

	j.logger.Info("scheduled reminder run finished",
		slog.String("outcome", string(result.Outcome)),
		slog.Int("plants", result.Plants),
		slog.Int("recipients", result.Recipients),
	)
}
