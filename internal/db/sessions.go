package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// querier is the part of a pgxpool.Pool the session repository needs.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const (
	sessionInsert = `
		INSERT INTO sessions (id, user_id, access_token, refresh_token, token_expiry, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	// Sessions have a fixed lifetime from sign-in and are never extended.
	sessionSelect = `
		SELECT s.id, s.user_id, u.display_name, s.access_token, s.refresh_token,
			s.token_expiry, s.created_at, s.expires_at
		FROM sessions s
		JOIN users u ON u.id = s.user_id
		WHERE s.id = $1 AND s.expires_at > NOW()`

	// Spotify does not always rotate the refresh token; an empty one keeps
	// the stored value.
	sessionUpdateToken = `
		UPDATE sessions
		SET access_token = $2,
			refresh_token = COALESCE(NULLIF($3, ''), refresh_token),
			token_expiry = $4
		WHERE id = $1 AND expires_at > NOW()`
)

// SessionRepository stores web sessions.
type SessionRepository struct {
	q querier
}

// Create inserts a session for an existing user.
func (r *SessionRepository) Create(ctx context.Context, s *Session) error {
	if s.ID == "" || s.UserID == "" {
		return fmt.Errorf("inserting session: id and user id are required")
	}
	if !s.ExpiresAt.After(s.CreatedAt) {
		return fmt.Errorf("inserting session: expiry %s is not after creation", s.ExpiresAt)
	}
	_, err := r.q.Exec(ctx, sessionInsert,
		s.ID, s.UserID, s.AccessToken, s.RefreshToken, s.TokenExpiry, s.CreatedAt, s.ExpiresAt)
	if err != nil {
		return fmt.Errorf("inserting session: %w", err)
	}
	return nil
}

// Get returns an unexpired session together with the user's display name.
func (r *SessionRepository) Get(ctx context.Context, id string) (*Session, error) {
	var s Session
	err := r.q.QueryRow(ctx, sessionSelect, id).Scan(
		&s.ID, &s.UserID, &s.UserName, &s.AccessToken, &s.RefreshToken,
		&s.TokenExpiry, &s.CreatedAt, &s.ExpiresAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying session: %w", err)
	}
	return &s, nil
}

// Delete removes a session. Missing sessions are not an error.
func (r *SessionRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM sessions WHERE id = $1`, id); err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}
	return nil
}

// UpdateToken stores a refreshed OAuth token on a live session.
func (r *SessionRepository) UpdateToken(ctx context.Context, id, accessToken, refreshToken string, expiry time.Time) error {
	tag, err := r.q.Exec(ctx, sessionUpdateToken, id, accessToken, refreshToken, expiry)
	if err != nil {
		return fmt.Errorf("updating session token: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteExpired removes every expired session and returns how many went.
func (r *SessionRepository) DeleteExpired(ctx context.Context) (int64, error) {
	tag, err := r.q.Exec(ctx, `DELETE FROM sessions WHERE expires_at <= NOW()`)
	if err != nil {
		return 0, fmt.Errorf("deleting expired sessions: %w", err)
	}
	return tag.RowsAffected(), nil
}
