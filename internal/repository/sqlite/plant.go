package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/xid"

	"github.com/akovacs/plantkeeper/internal/apperror"
	"github.com/akovacs/plantkeeper/internal/model"
	"github.com/akovacs/plantkeeper/internal/repository"
)

// Compile-time checks that *DB satisfies the repository interfaces.
var (
	_ repository.PlantRepository       = (*DB)(nil)
	_ repository.WateringLogRepository = (*DB)(nil)
)

// Create inserts a new plant. The generated xid and timestamps are written
// back into the caller's struct.
func (db *DB) Create(ctx context.Context, plant *model.Plant) error {
	plant.ID = xid.New().String()

	now := time.Now()
	plant.CreatedAt = now
	plant.UpdatedAt = now

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO plants (id, owner, name, interval_days, last_watered, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		plant.ID,
		plant.Owner,
		plant.Name,
		plant.IntervalDays,
		plant.LastWatered,
		plant.CreatedAt,
		plant.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating plant: %w", err)
	}

	return nil
}

// GetByID retrieves a single plant. sql.ErrNoRows is translated to the
// domain NotFound error so handlers can map it to 404.
func (db *DB) GetByID(ctx context.Context, id string) (*model.Plant, error) {
	var p model.Plant

	err := db.conn.QueryRowContext(ctx,
		`SELECT id, owner, name, interval_days, last_watered, created_at, updated_at
		 FROM plants
		 WHERE id = ?`,
		id,
	).Scan(
		&p.ID, &p.Owner, &p.Name, &p.IntervalDays, &p.LastWatered,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("plant", id)
		}
		return nil, fmt.Errorf("sqlite: getting plant %s: %w", id, err)
	}

	return &p, nil
}

// ListByOwner returns one user's plants, oldest first — the dashboard
// ordering from the original app.
func (db *DB) ListByOwner(ctx context.Context, owner string) ([]model.Plant, error) {
	return db.listPlants(ctx,
		`SELECT id, owner, name, interval_days, last_watered, created_at, updated_at
		 FROM plants
		 WHERE owner = ?
		 ORDER BY created_at ASC`,
		owner,
	)
}

// ListAll returns every plant in the growing space. The reminder batch
// evaluates all plants regardless of owner, so this is its single
// consistent read of the registry.
func (db *DB) ListAll(ctx context.Context) ([]model.Plant, error) {
	return db.listPlants(ctx,
		`SELECT id, owner, name, interval_days, last_watered, created_at, updated_at
		 FROM plants
		 ORDER BY created_at ASC`,
	)
}

func (db *DB) listPlants(ctx context.Context, query string, args ...any) ([]model.Plant, error) {
	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing plants: %w", err)
	}
	defer rows.Close()

	var plants []model.Plant
	for rows.Next() {
		var p model.Plant
		if err := rows.Scan(
			&p.ID, &p.Owner, &p.Name, &p.IntervalDays, &p.LastWatered,
			&p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("sqlite: scanning plant row: %w", err)
		}
		plants = append(plants, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating plants: %w", err)
	}

	return plants, nil
}

// Delete removes a plant. The ON DELETE CASCADE on watering_events takes
// its history with it.
func (db *DB) Delete(ctx context.Context, id string) error {
	result, err := db.conn.ExecContext(ctx, `DELETE FROM plants WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting plant %s: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("plant", id)
	}

	return nil
}

// DeleteByOwner removes every plant owned by a user. Used by account
// deletion; zero plants is not an error.
func (db *DB) DeleteByOwner(ctx context.Context, owner string) error {
	if _, err := db.conn.ExecContext(ctx, `DELETE FROM plants WHERE owner = ?`, owner); err != nil {
		return fmt.Errorf("sqlite: deleting plants for %s: %w", owner, err)
	}
	return nil
}

// Water marks a plant watered: it sets last_watered to the calendar date
// of `at` AND appends a watering-log event, in one transaction.
//
// WHY A TRANSACTION?
// These are logically one state change. Done as two independent writes, a
// crash in between leaves the log missing an event while the plant looks
// watered (or the reverse). The transaction restores the invariant that
// the log and the current state never diverge.
func (db *DB) Water(ctx context.Context, plantID, wateredBy string, at time.Time) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning watering tx: %w", err)
	}
	// Rollback is a no-op after a successful Commit.
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`UPDATE plants SET last_watered = ?, updated_at = ? WHERE id = ?`,
		at.Format(model.DateFormat),
		at,
		plantID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating last_watered for %s: %w", plantID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("plant", plantID)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO watering_events (id, plant_id, watered_by, watered_at)
		 VALUES (?, ?, ?, ?)`,
		xid.New().String(),
		plantID,
		wateredBy,
		at.Format(model.TimestampFormat),
	)
	if err != nil {
		return fmt.Errorf("sqlite: appending watering event for %s: %w", plantID, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: committing watering tx: %w", err)
	}

	return nil
}

// ListByPlant returns a plant's watering history, most recent first.
func (db *DB) ListByPlant(ctx context.Context, plantID string) ([]model.WateringEvent, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, plant_id, watered_by, watered_at
		 FROM watering_events
		 WHERE plant_id = ?
		 ORDER BY watered_at DESC`,
		plantID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing watering events: %w", err)
	}
	defer rows.Close()

	var events []model.WateringEvent
	for rows.Next() {
		var (
			e  model.WateringEvent
			at string
		)
		if err := rows.Scan(&e.ID, &e.PlantID, &e.WateredBy, &at); err != nil {
			return nil, fmt.Errorf("sqlite: scanning watering event: %w", err)
		}
		// Stored as "YYYY-MM-DD HH:MM:SS" text; parse in local time to
		// match how the scheduler interprets dates.
		e.WateredAt, err = time.ParseInLocation(model.TimestampFormat, at, time.Local)
		if err != nil {
			return nil, fmt.Errorf("sqlite: parsing watered_at %q: %w", at, err)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating watering events: %w", err)
	}

	return events, nil
}
