package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/akovacs/plantkeeper/internal/apperror"
	"github.com/akovacs/plantkeeper/internal/model"
	"github.com/akovacs/plantkeeper/internal/repository"
	"github.com/akovacs/plantkeeper/internal/schedule"
)

// Validation bounds for plant creation. The interval ceiling matches the
// original registration form; a plant you water once a year at most is
// still a schedule, anything beyond is a typo.
const (
	MaxPlantNameLength = 100
	MinIntervalDays    = 1
	MaxIntervalDays    = 365
)

// PlantService handles plant registry and watering-log logic.
//
// sharedGarden is the deletion-policy flag: in a shared growing space any
// user may water or delete any plant; otherwise those operations are
// owner-only. Reads of your own list are unaffected either way.
type PlantService struct {
	plants       repository.PlantRepository
	log          repository.WateringLogRepository
	sharedGarden bool
	logger       *slog.Logger
}

func NewPlantService(
	plants repository.PlantRepository,
	log repository.WateringLogRepository,
	sharedGarden bool,
	logger *slog.Logger,
) *PlantService {
	return &PlantService{
		plants:       plants,
		log:          log,
		sharedGarden: sharedGarden,
		logger:       logger,
	}
}

// Create validates and registers a new plant for owner. interval_days < 1
// is rejected here — the due-date evaluator assumes it never sees one.
func (s *PlantService) Create(ctx context.Context, owner, name string, intervalDays int) (*model.Plant, error) {
	name = strings.TrimSpace(name)

	if name == "" {
		return nil, apperror.ValidationFailed("name", "plant name is required")
	}
	if len(name) > MaxPlantNameLength {
		return nil, apperror.ValidationFailed("name",
			fmt.Sprintf("plant name must be %d characters or less", MaxPlantNameLength))
	}
	if intervalDays < MinIntervalDays || intervalDays > MaxIntervalDays {
		return nil, apperror.ValidationFailed("intervalDays",
			fmt.Sprintf("watering interval must be between %d and %d days", MinIntervalDays, MaxIntervalDays))
	}

	plant := &model.Plant{
		Owner:        owner,
		Name:         name,
		IntervalDays: intervalDays,
		// LastWatered stays empty: a new plant has never been watered
		// and is due immediately.
	}
	if err := s.plants.Create(ctx, plant); err != nil {
		s.logger.Error("failed to create plant",
			slog.String("name", name),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating plant: %w", err)
	}

	s.logger.Info("plant created",
		slog.String("id", plant.ID),
		slog.String("name", plant.Name),
		slog.String("owner", plant.Owner),
	)

	return plant, nil
}

// List returns the owner's plants annotated with their due state as of
// now. The due flag is computed server-side so every client shows the
// same answer the reminder batch would.
func (s *PlantService) List(ctx context.Context, owner string, now time.Time) ([]model.PlantStatus, error) {
	plants, err := s.plants.ListByOwner(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("listing plants: %w", err)
	}

	statuses := make([]model.PlantStatus, 0, len(plants))
	for _, p := range plants {
		status := model.PlantStatus{
			Plant: p,
			Due:   schedule.IsDue(p.LastWatered, p.IntervalDays, now),
		}
		if next, ok := schedule.NextDue(p.LastWatered, p.IntervalDays, now.Location()); ok {
			status.NextDue = next.Format(model.DateFormat)
		}
		statuses = append(statuses, status)
	}

	return statuses, nil
}

// Water records that actor watered the plant at the given time: the
// last-watered date and the log entry are written atomically by the
// repository. Policy: owner-only unless the garden is shared.
func (s *PlantService) Water(ctx context.Context, actor, plantID string, now time.Time) error {
	if err := s.authorize(ctx, actor, plantID); err != nil {
		return err
	}

	if err := s.plants.Water(ctx, plantID, actor, now); err != nil {
		return err
	}

	s.logger.Info("plant watered",
		slog.String("plantID", plantID),
		slog.String("by", actor),
	)
	return nil
}

// Delete removes a plant and (via cascade) its watering history.
// Policy: owner-only unless the garden is shared.
func (s *PlantService) Delete(ctx context.Context, actor, plantID string) error {
	if err := s.authorize(ctx, actor, plantID); err != nil {
		return err
	}

	if err := s.plants.Delete(ctx, plantID); err != nil {
		return err
	}

	s.logger.Info("plant deleted",
		slog.String("plantID", plantID),
		slog.String("by", actor),
	)
	return nil
}

// History returns the plant's watering events, newest first.
// Same visibility policy as the mutating operations.
func (s *PlantService) History(ctx context.Context, actor, plantID string) ([]model.WateringEvent, error) {
	if err := s.authorize(ctx, actor, plantID); err != nil {
		return nil, err
	}
	return s.log.ListByPlant(ctx, plantID)
}

// authorize checks the ownership policy for an operation on a plant.
// It also yields NotFound for nonexistent plants, which keeps the error
// the same whether a plant is missing or merely hidden.
func (s *PlantService) authorize(ctx context.Context, actor, plantID string) error {
	plantID = strings.TrimSpace(plantID)
	if plantID == "" {
		return apperror.ValidationFailed("id", "plant ID is required")
	}

	plant, err := s.plants.GetByID(ctx, plantID)
	if err != nil {
		return err
	}
	if !s.sharedGarden && plant.Owner != actor {
		return apperror.Forbidden("this plant belongs to another user")
	}
	return nil
}
