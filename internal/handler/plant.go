package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/akovacs/plantkeeper/internal/auth"
	"github.com/akovacs/plantkeeper/internal/model"
	"github.com/akovacs/plantkeeper/internal/service"
)

// PlantHandler exposes the plant registry and watering log over HTTP.
// All routes sit behind RequireAuth; the identity in the request context
// is the actor for every ownership check.
type PlantHandler struct {
	svc    *service.PlantService
	logger *slog.Logger
}

func NewPlantHandler(svc *service.PlantService, logger *slog.Logger) *PlantHandler {
	return &PlantHandler{svc: svc, logger: logger}
}

type createPlantRequest struct {
	Name         string `json:"name"`
	IntervalDays int    `json:"intervalDays"`
}

// HandleList returns the caller's plants with their computed due state.
//
// HTTP: GET /api/plants
func (h *PlantHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.IdentityFromContext(r.Context())

	statuses, err := h.svc.List(r.Context(), id.Username, time.Now())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, statuses)
}

// HandleCreate registers a new plant owned by the caller.
//
// HTTP: POST /api/plants
// BODY: {"name": "Basil", "intervalDays": 3}
func (h *PlantHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.IdentityFromContext(r.Context())

	var req createPlantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "bad_request", Message: "invalid JSON body"})
		return
	}

	plant, err := h.svc.Create(r.Context(), id.Username, req.Name, req.IntervalDays)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, plant)
}

// HandleDelete removes a plant (policy-checked in the service).
//
// HTTP: DELETE /api/plants/{id}
func (h *PlantHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.IdentityFromContext(r.Context())

	if err := h.svc.Delete(r.Context(), id.Username, chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HandleWater records a watering action for a plant, timestamped with the
// server clock at request time.
//
// HTTP: POST /api/plants/{id}/water
func (h *PlantHandler) HandleWater(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.IdentityFromContext(r.Context())

	if err := h.svc.Water(r.Context(), id.Username, chi.URLParam(r, "id"), time.Now()); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HandleHistory returns a plant's watering events, newest first.
//
// HTTP: GET /api/plants/{id}/history
func (h *PlantHandler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.IdentityFromContext(r.Context())

	events, err := h.svc.History(r.Context(), id.Username, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	if events == nil {
		events = []model.WateringEvent{}
	}

	writeJSON(w, http.StatusOK, events)
}
