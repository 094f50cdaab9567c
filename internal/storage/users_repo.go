// internal/storage/users_repo.go
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"

	"github.com/Annany2002/nebula-admin/internal/domain"
)

var (
	ErrUserNotFound   = errors.New("user not found")
	ErrUsernameExists = errors.New("username already exists")
)

// CreateAdminUser inserts a new account and returns its id.
func CreateAdminUser(ctx context.Context, db *sql.DB, username, passwordHash string, isAdmin bool) (int64, error) {
	sqlStatement := `INSERT INTO admin_users (username, password_hash, is_admin) VALUES (?, ?, ?)`
	result, err := db.ExecContext(ctx, sqlStatement, username, passwordHash, isAdmin)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
			return 0, ErrUsernameExists
		}
		customLog.Warnf("Storage: Failed to insert admin user %s: %v", username, err)
		return 0, fmt.Errorf("database error during user creation: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		customLog.Warnf("Storage: Failed to get last insert ID for user %s: %v", username, err)
		return 0, fmt.Errorf("failed to retrieve user ID after creation: %w", err)
	}
	return id, nil
}

// FindAdminUserByUsername loads an account by username.
func FindAdminUserByUsername(ctx context.Context, db *sql.DB, username string) (*domain.AdminUser, error) {
	sqlStatement := `SELECT id, username, password_hash, is_admin, created_at FROM admin_users WHERE username = ? LIMIT 1`
	var user domain.AdminUser
	err := db.QueryRowContext(ctx, sqlStatement, username).
		Scan(&user.ID, &user.Username, &user.PasswordHash, &user.IsAdmin, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		customLog.Warnf("Storage: Failed to find user %s: %v", username, err)
		return nil, fmt.Errorf("database error finding user: %w", err)
	}
	return &user, nil
}

// EnsureAdminUser creates the account unless the username is taken. It
// reports whether a new row was written.
func EnsureAdminUser(ctx context.Context, db *sql.DB, username, passwordHash string) (bool, error) {
	_, err := FindAdminUserByUsername(ctx, db, username)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, ErrUserNotFound) {
		return false, err
	}
	if _, err := CreateAdminUser(ctx, db, username, passwordHash, true); err != nil {
		if errors.Is(err, ErrUsernameExists) {
			return false, nil
		}
		return false, err
	}
	customLog.Printf("Storage: Seeded admin user %s", username)
	return true, nil
}
