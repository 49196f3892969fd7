package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/rs/xid"

	"github.com/akovacs/plantkeeper/internal/apperror"
	"github.com/akovacs/plantkeeper/internal/model"
	"github.com/akovacs/plantkeeper/internal/repository"
)

var _ repository.UserRepository = (*UserStore)(nil)

// UserStore carries the user-account methods. It shares the *DB
// connection; a separate method set is required because the user and
// plant repositories both declare Create/GetByID/Delete with different
// signatures, which one receiver type cannot provide.
type UserStore struct {
	*DB
}

// Users returns the user-repository view of the store.
func (db *DB) Users() *UserStore {
	return &UserStore{DB: db}
}

// Create inserts a new user. A UNIQUE violation on username is translated
// to the domain Conflict error so registration can report "taken".
func (db *UserStore) Create(ctx context.Context, user *model.User) error {
	user.ID = xid.New().String()
	user.CreatedAt = time.Now()

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO users (id, username, password_hash, email, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		user.ID,
		user.Username,
		user.PasswordHash,
		user.Email,
		user.CreatedAt,
	)
	if err != nil {
		// modernc.org/sqlite reports constraint failures in the error
		// text; there is no exported sentinel to errors.Is against.
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return apperror.Conflict("username", user.Username)
		}
		return fmt.Errorf("sqlite: creating user: %w", err)
	}

	return nil
}

// GetByID retrieves a user by internal ID.
func (db *UserStore) GetByID(ctx context.Context, id string) (*model.User, error) {
	return db.getUser(ctx, `WHERE id = ?`, id)
}

// GetByUsername retrieves a user by username. Used by login and by the
// ownership checks on plant operations.
func (db *UserStore) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	return db.getUser(ctx, `WHERE username = ?`, username)
}

func (db *UserStore) getUser(ctx context.Context, where string, arg any) (*model.User, error) {
	var u model.User

	err := db.conn.QueryRowContext(ctx,
		`SELECT id, username, password_hash, email, created_at FROM users `+where,
		arg,
	).Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Email, &u.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("user", fmt.Sprintf("%v", arg))
		}
		return nil, fmt.Errorf("sqlite: getting user: %w", err)
	}

	return &u, nil
}

// ListEmails returns every non-empty user email — the broadcast recipient
// set for reminders. All registered users with an address receive the
// batch, whether or not they own a due plant.
func (db *UserStore) ListEmails(ctx context.Context) ([]string, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT email FROM users WHERE email != '' ORDER BY email`,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing user emails: %w", err)
	}
	defer rows.Close()

	var emails []string
	for rows.Next() {
		var email string
		if err := rows.Scan(&email); err != nil {
			return nil, fmt.Errorf("sqlite: scanning email: %w", err)
		}
		emails = append(emails, email)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating emails: %w", err)
	}

	return emails, nil
}

// Delete removes a user account. Deleting the user's plants is the
// service layer's job (account deletion removes both); plain user rows do
// not cascade.
func (db *UserStore) Delete(ctx context.Context, id string) error {
	result, err := db.conn.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting user %s: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("user", id)
	}

	return nil
}
