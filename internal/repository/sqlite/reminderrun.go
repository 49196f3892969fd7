package sqlite

import (
	"context"
	"fmt"

	"github.com/akovacs/plantkeeper/internal/repository"
)

var _ repository.ReminderRunRepository = (*DB)(nil)

// Claim attempts to record that the reminder batch ran on the given
// calendar date ("YYYY-MM-DD"). INSERT OR IGNORE against the PRIMARY KEY
// means the claim is atomic: when two triggers race, exactly one insert
// takes effect and that caller gets true.
func (db *DB) Claim(ctx context.Context, date string) (bool, error) {
	result, err := db.conn.ExecContext(ctx,
		`INSERT OR IGNORE INTO reminder_runs (run_date) VALUES (?)`,
		date,
	)
	if err != nil {
		return false, fmt.Errorf("sqlite: claiming reminder run %s: %w", date, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("sqlite: checking rows affected: %w", err)
	}

	return rowsAffected > 0, nil
}

// Release drops the claim for a date. Called when the transmission failed
// after a successful Claim, so a later trigger the same day may retry.
// Releasing a date that was never claimed is harmless.
func (db *DB) Release(ctx context.Context, date string) error {
	if _, err := db.conn.ExecContext(ctx,
		`DELETE FROM reminder_runs WHERE run_date = ?`, date,
	); err != nil {
		return fmt.Errorf("sqlite: releasing reminder run %s: %w", date, err)
	}
	return nil
}
