// Command reminder runs one reminder batch attempt and exits. Intended
// for external schedulers (systemd timer, crontab) in deployments where
// the server's in-process job is disabled.
//
// It shares the once-per-day claim with the other triggers, so running it
// alongside the server cannot produce a duplicate send. Exit code 0 for
// any clean outcome (sent or skipped), 1 for a failure.
package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/akovacs/plantkeeper/internal/config"
	"github.com/akovacs/plantkeeper/internal/mail"
	sqliteRepo "github.com/akovacs/plantkeeper/internal/repository/sqlite"
	"github.com/akovacs/plantkeeper/internal/service"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	db, err := sqliteRepo.New(cfg.Database.Path)
	if err != nil {
		logger.Error("failed to open database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer db.Close()

	sender := mail.NewSMTPSender(cfg.SMTP)
	reminders := service.NewReminderService(db, db.Users(), db, sender, logger)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	result, err := reminders.Run(ctx, time.Now())
	if err != nil {
		logger.Error("reminder run failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("reminder run finished",
		slog.String("outcome", string(result.Outcome)),
		slog.Int("plants", result.Plants),
		slog.Int("recipients", result.Recipients),
	)
}
