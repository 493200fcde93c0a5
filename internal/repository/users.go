package repository

import (
	"database/sql"
	"errors"
	"fmt"

	"reuse-market/internal/marketerrors"
	model "reuse-market/internal/models"
)

// CreateUser inserts a new user row.
func (r *SQLiteRepo) CreateUser(user model.User) error {
	query := `
		INSERT INTO users (id, name, email, phone, pfp_url, karma, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.Exec(query, user.UserID, user.Name, user.Email, user.Phone, user.PfpURL, user.Karma, user.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// GetUser returns the user with the given id.
func (r *SQLiteRepo) GetUser(userID string) (model.User, error) {
	query := `
		SELECT id, name, email, phone, pfp_url, karma, created_at
		FROM users
		WHERE id = ?
	`

	var user model.User
	err := r.db.QueryRow(query, userID).Scan(
		&user.UserID,
		&user.Name,
		&user.Email,
		&user.Phone,
		&user.PfpURL,
		&user.Karma,
		&user.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, fmt.Errorf("get user %s: %w", userID, marketerrors.ErrUserNotFound)
	}
	if err != nil {
		return model.User{}, fmt.Errorf("failed to get user %s: %w", userID, err)
	}

	return user, nil
}

// AdjustKarma adds delta to a user's karma score.
func (r *SQLiteRepo) AdjustKarma(userID string, delta float64) error {
	result, err := r.db.Exec(`UPDATE users SET karma = karma + ? WHERE id = ?`, delta, userID)
	if err != nil {
		return fmt.Errorf("failed to adjust karma for user %s: %w", userID, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check karma update for user %s: %w", userID, err)
	}
	if affected == 0 {
		return fmt.Errorf("adjust karma for user %s: %w", userID, marketerrors.ErrUserNotFound)
	}

	return nil
}
