package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/akovacs/plantkeeper/internal/mail"
	"github.com/akovacs/plantkeeper/internal/model"
	"github.com/akovacs/plantkeeper/internal/service"
)

// ReminderHandler exposes the reminder engine: a read-only preview of the
// due set and a manual trigger for the daily batch.
type ReminderHandler struct {
	svc    *service.ReminderService
	logger *slog.Logger
}

func NewReminderHandler(svc *service.ReminderService, logger *slog.Logger) *ReminderHandler {
	return &ReminderHandler{svc: svc, logger: logger}
}

// HandleDue returns the plants that are due and not yet watered today.
// Pure evaluation — calling it never sends anything or consumes the
// once-per-day claim.
//
// HTTP: GET /api/reminders/due
func (h *ReminderHandler) HandleDue(w http.ResponseWriter, r *http.Request) {
	due, err := h.svc.DueUnwatered(r.Context(), time.Now())
	if err != nil {
		writeError(w, err)
		return
	}
	if due == nil {
		due = []model.Plant{}
	}

	writeJSON(w, http.StatusOK, due)
}

// HandleRun triggers a reminder batch attempt. The service applies the
// same cutoff gate and once-per-day claim as the scheduled triggers, so
// mashing the button cannot cause duplicate sends.
//
// Unlike the silent scheduled run, a manual trigger surfaces failures:
// missing credentials map to 503, a rejected transmission to 502.
//
// HTTP: POST /api/reminders/run
func (h *ReminderHandler) HandleRun(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.Run(r.Context(), time.Now())
	if err != nil {
		if errors.Is(err, mail.ErrNoCredentials) {
			writeJSON(w, http.StatusServiceUnavailable, ErrorResponse{
				Error:   "mail_not_configured",
				Message: "SMTP credentials are not configured",
			})
			return
		}
		h.logger.Error("manual reminder run failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadGateway, ErrorResponse{
			Error:   "transmission_failed",
			Message: "the reminder could not be sent",
		})
		return
	}

	writeJSON(w, http.StatusOK, result)
}
