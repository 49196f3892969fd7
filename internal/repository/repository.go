package repository

import (
	"context"
	"time"

	"github.com/akovacs/plantkeeper/internal/model"
)

// PlantRepository is the storage interface for plants and their watering
// state. Water is the one multi-table operation: it updates last_watered
// and appends a watering-log event inside a single transaction, so the
// current state and the audit log cannot diverge.
type PlantRepository interface {
	Create(ctx context.Context, plant *model.Plant) error
	GetByID(ctx context.Context, id string) (*model.Plant, error)
	ListByOwner(ctx context.Context, owner string) ([]model.Plant, error)
	ListAll(ctx context.Context) ([]model.Plant, error)
	Delete(ctx context.Context, id string) error
	DeleteByOwner(ctx context.Context, owner string) error
	Water(ctx context.Context, plantID, wateredBy string, at time.Time) error
}

// WateringLogRepository reads the append-only watering history.
// There is deliberately no write method here — events are only ever
// appended through PlantRepository.Water.
type WateringLogRepository interface {
	ListByPlant(ctx context.Context, plantID string) ([]model.WateringEvent, error)
}

// UserRepository is the storage interface for user accounts.
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	// ListEmails returns the addresses of every user with a non-empty
	// email — the reminder broadcast recipient set.
	ListEmails(ctx context.Context) ([]string, error)
	Delete(ctx context.Context, id string) error
}

// ReminderRunRepository persists the once-per-day reminder marker.
//
// Claim records that a reminder batch ran on the given calendar date
// ("YYYY-MM-DD"). It returns true if this caller won the claim, false if
// the date was already claimed. Release drops the claim so a failed
// transmission can be retried later the same day.
type ReminderRunRepository interface {
	Claim(ctx context.Context, date string) (bool, error)
	Release(ctx context.Context, date string) error
}
