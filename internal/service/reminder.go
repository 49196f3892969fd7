package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/akovacs/plantkeeper/internal/mail"
	"github.com/akovacs/plantkeeper/internal/model"
	"github.com/akovacs/plantkeeper/internal/repository"
	"github.com/akovacs/plantkeeper/internal/schedule"
)

// Subject and header of the reminder message. One aggregated message goes
// to every recipient; the body lists each plant as "- name (owner: user)".
const (
	reminderSubject = "Plant watering reminder"
	reminderHeader  = "The following plants still need watering today:"
)

// Outcome describes how a reminder run ended. Every path is explicit so
// callers (and the logs) can tell a skipped run from a failed one.
type Outcome string

const (
	OutcomeSent         Outcome = "sent"
	OutcomeBeforeCutoff Outcome = "skipped_before_cutoff"
	OutcomeAlreadyRan   Outcome = "skipped_already_ran"
	OutcomeNothingDue   Outcome = "skipped_nothing_due"
	OutcomeNoRecipients Outcome = "skipped_no_recipients"
)

// RunResult is the report of one reminder invocation.
type RunResult struct {
	Outcome    Outcome `json:"outcome"`
	Plants     int     `json:"plants"`     // size of the due-and-unwatered set
	Recipients int     `json:"recipients"` // addresses the message went to
}

// ReminderService is the reminder gate and dispatcher.
//
// The gate itself holds no mutable state: every invocation recomputes the
// due-and-unwatered set from a fresh read of the registry, so calling it
// twice with no intervening writes yields the same set. The only mutation
// is the once-per-day claim in reminder_runs, which is what makes the
// three triggers (dashboard, in-process cron, cmd/reminder) collectively
// send at most once per day.
type ReminderService struct {
	plants repository.PlantRepository
	users  repository.UserRepository
	runs   repository.ReminderRunRepository
	sender mail.Sender
	logger *slog.Logger
}

func NewReminderService(
	plants repository.PlantRepository,
	users repository.UserRepository,
	runs repository.ReminderRunRepository,
	sender mail.Sender,
	logger *slog.Logger,
) *ReminderService {
	return &ReminderService{
		plants: plants,
		users:  users,
		runs:   runs,
		sender: sender,
		logger: logger,
	}
}

// DueUnwatered computes the set of plants that are due and have not been
// watered today. Pure evaluation over a single read of the registry — no
// side effects, safe to call from the dashboard on every render.
func (s *ReminderService) DueUnwatered(ctx context.Context, now time.Time) ([]model.Plant, error) {
	plants, err := s.plants.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("reminder: reading plant registry: %w", err)
	}

	var due []model.Plant
	for _, p := range plants {
		if !schedule.IsDue(p.LastWatered, p.IntervalDays, now) {
			continue
		}
		// Due but already watered today: the reminder would be
		// redundant, the owner just beat the batch to it.
		if schedule.WateredOn(p.LastWatered, now) {
			continue
		}
		due = append(due, p)
	}

	return due, nil
}

// Run executes one reminder batch attempt.
//
// ORDER OF CHECKS:
//  1. Cutoff gate — before 18:00 nothing is even evaluated.
//  2. Due set and recipients — both empty cases end the run without
//     claiming the date, so a quiet evening does not burn the day's claim.
//  3. Once-per-day claim — taken immediately before the transmission.
//     Losing the claim means another trigger already sent today.
//  4. Send — on failure the claim is released so a later manual trigger
//     the same day can retry with the same content. Transmission is not a
//     state transition on plant data, so the retry is safe.
//
// A transmission error is returned to the caller; it is never retried
// here and never queued.
func (s *ReminderService) Run(ctx context.Context, now time.Time) (RunResult, error) {
	if !schedule.AfterCutoff(now) {
		return RunResult{Outcome: OutcomeBeforeCutoff}, nil
	}

	due, err := s.DueUnwatered(ctx, now)
	if err != nil {
		return RunResult{}, err
	}
	if len(due) == 0 {
		s.logger.Info("reminder skipped: nothing due or everything already watered")
		return RunResult{Outcome: OutcomeNothingDue}, nil
	}

	recipients, err := s.users.ListEmails(ctx)
	if err != nil {
		return RunResult{}, fmt.Errorf("reminder: reading recipient list: %w", err)
	}
	if len(recipients) == 0 {
		s.logger.Warn("reminder skipped: no user has an email address",
			slog.Int("duePlants", len(due)),
		)
		return RunResult{Plants: len(due), Outcome: OutcomeNoRecipients}, nil
	}

	today := now.Format(model.DateFormat)
	won, err := s.runs.Claim(ctx, today)
	if err != nil {
		return RunResult{}, fmt.Errorf("reminder: claiming run for %s: %w", today, err)
	}
	if !won {
		s.logger.Info("reminder skipped: batch already sent today",
			slog.String("date", today),
		)
		return RunResult{Plants: len(due), Outcome: OutcomeAlreadyRan}, nil
	}

	body := composeBody(due)
	if err := s.sender.Send(ctx, recipients, reminderSubject, body); err != nil {
		// Give the day back so a later trigger may retry.
		if relErr := s.runs.Release(ctx, today); relErr != nil {
			s.logger.Error("failed to release reminder claim after send failure",
				slog.String("date", today),
				slog.String("error", relErr.Error()),
			)
		}
		return RunResult{}, fmt.Errorf("reminder: dispatching batch: %w", err)
	}

	s.logger.Info("reminder batch sent",
		slog.String("date", today),
		slog.Int("plants", len(due)),
		slog.Int("recipients", len(recipients)),
	)

	return RunResult{
		Outcome:    OutcomeSent,
		Plants:     len(due),
		Recipients: len(recipients),
	}, nil
}

// composeBody renders the aggregated reminder text: a header line followed
// by one line per plant.
func composeBody(due []model.Plant) string {
	var b strings.Builder
	b.WriteString(reminderHeader)
	for _, p := range due {
		b.WriteString(fmt.Sprintf("\n- %s (owner: %s)", p.Name, p.Owner))
	}
	return b.String()
}
