package db

import (
	"context"
	"fmt"
)

// UserRepository handles user database operations.
type UserRepository struct {
	q querier
}

// UpsertLogin records a sign-in, creating the user on first login.
func (r *UserRepository) UpsertLogin(ctx context.Context, user *User) error {
	query := `
		INSERT INTO users (id, display_name, email, created_at, updated_at, last_login_at)
		VALUES ($1, $2, $3, NOW(), NOW(), NOW())
		ON CONFLICT (id) DO UPDATE SET
			display_name = EXCLUDED.display_name,
			email = EXCLUDED.email,
			updated_at = NOW(),
			last_login_at = NOW()
		RETURNING created_at, updated_at, last_login_at
	`
	err := r.q.QueryRow(ctx, query,
		user.ID,
		user.DisplayName,
		user.Email,
	).Scan(&user.CreatedAt, &user.UpdatedAt, &user.LastLoginAt)
	if err != nil {
		return fmt.Errorf("upserting user: %w", err)
	}
	return nil
}
