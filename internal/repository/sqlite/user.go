package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/sakif/mentorchat/internal/apperror"
	"github.com/sakif/mentorchat/internal/model"
	"github.com/sakif/mentorchat/internal/repository"
)

// compile-time check that *DB implements repository.UserRepository
var _ repository.UserRepository = (*DB)(nil)

const (
	getUserQuery = `SELECT uid, username, is_mentor, url_picture FROM users WHERE uid = ?`

	// Full overwrite: every column is replaced, including setting optional
	// fields back to NULL when the new record does not carry them.
	setUserQuery = `
		INSERT INTO users (uid, username, is_mentor, url_picture)
		VALUES (:uid, :username, :is_mentor, :url_picture)
		ON CONFLICT(uid) DO UPDATE SET
			username    = excluded.username,
			is_mentor   = excluded.is_mentor,
			url_picture = excluded.url_picture
	`

	updateUsernameQuery = `UPDATE users SET username = ? WHERE uid = ?`
	updateIsMentorQuery = `UPDATE users SET is_mentor = ? WHERE uid = ?`
	deleteUserQuery     = `DELETE FROM users WHERE uid = ?`
)

// GetUser retrieves users/{uid}.
// Returns apperror.ErrNotFound if no document exists.
func (db *DB) GetUser(ctx context.Context, uid string) (*model.User, error) {
	var u model.User
	if err := db.conn.GetContext(ctx, &u, getUserQuery, uid); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("user", uid)
		}
		return nil, fmt.Errorf("sqlite: getting user %s: %w", uid, err)
	}
	return &u, nil
}

// SetUser writes the whole user document, creating it if needed.
func (db *DB) SetUser(ctx context.Context, user *model.User) error {
	if user.UID == "" {
		return apperror.ValidationFailed("uid", "user uid is required")
	}
	if _, err := db.conn.NamedExecContext(ctx, setUserQuery, user); err != nil {
		return fmt.Errorf("sqlite: setting user %s: %w", user.UID, err)
	}
	return nil
}

// UpdateUsername changes only the username field of an existing document.
func (db *DB) UpdateUsername(ctx context.Context, uid, username string) error {
	res, err := db.conn.ExecContext(ctx, updateUsernameQuery, username, uid)
	if err != nil {
		return fmt.Errorf("sqlite: updating username of user %s: %w", uid, err)
	}
	return notFoundIfUntouched(res, uid)
}

// UpdateIsMentor changes only the mentor flag of an existing document.
func (db *DB) UpdateIsMentor(ctx context.Context, uid string, isMentor bool) error {
	res, err := db.conn.ExecContext(ctx, updateIsMentorQuery, isMentor, uid)
	if err != nil {
		return fmt.Errorf("sqlite: updating mentor flag of user %s: %w", uid, err)
	}
	return notFoundIfUntouched(res, uid)
}

// DeleteUser removes users/{uid}. A missing document is not an error.
func (db *DB) DeleteUser(ctx context.Context, uid string) error {
	if _, err := db.conn.ExecContext(ctx, deleteUserQuery, uid); err != nil {
		return fmt.Errorf("sqlite: deleting user %s: %w", uid, err)
	}
	return nil
}

func notFoundIfUntouched(res sql.Result, uid string) error {
	n, err := rowsAffected(res)
	if err != nil {
		return err
	}
	if n == 0 {
		return apperror.NotFound("user", uid)
	}
	return nil
}
