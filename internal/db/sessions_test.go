package db

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// fakeRow scans fixed values into the destinations in order.
type fakeRow struct {
	values []any
	err    error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	if len(dest) != len(r.values) {
		return errors.New("column count mismatch")
	}
	for i, d := range dest {
		reflect.ValueOf(d).Elem().Set(reflect.ValueOf(r.values[i]))
	}
	return nil
}

// fakeQuerier records the last statement and answers with canned results.
type fakeQuerier struct {
	sql  string
	args []any
	tag  pgconn.CommandTag
	err  error
	row  fakeRow
}

func (q *fakeQuerier) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	q.sql, q.args = sql, args
	return q.tag, q.err
}

func (q *fakeQuerier) QueryRow(_ context.Context, sql string, args ...any) pgx.Row {
	q.sql, q.args = sql, args
	return q.row
}

func TestSessionRepository_Create(t *testing.T) {
	created := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	valid := Session{
		ID:           "sess",
		UserID:       "user",
		AccessToken:  "access",
		RefreshToken: "refresh",
		TokenExpiry:  created.Add(time.Hour),
		CreatedAt:    created,
		ExpiresAt:    created.Add(5 * time.Minute),
	}

	tests := []struct {
		name    string
		mutate  func(s *Session)
		wantErr bool
	}{
		{"valid", func(*Session) {}, false},
		{"missing id", func(s *Session) { s.ID = "" }, true},
		{"missing user", func(s *Session) { s.UserID = "" }, true},
		{"expires at creation", func(s *Session) { s.ExpiresAt = s.CreatedAt }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := &fakeQuerier{}
			s := valid
			tt.mutate(&s)

			err := (&SessionRepository{q: q}).Create(context.Background(), &s)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Create() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				if q.sql != "" {
					t.Error("invalid session reached the database")
				}
				return
			}
			want := []any{"sess", "user", "access", "refresh", valid.TokenExpiry, valid.CreatedAt, valid.ExpiresAt}
			if !reflect.DeepEqual(q.args, want) {
				t.Errorf("args = %v, want %v", q.args, want)
			}
		})
	}
}

func TestSessionRepository_Get(t *testing.T) {
	created := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	q := &fakeQuerier{row: fakeRow{values: []any{
		"sess", "user", "Ada", "access", "refresh",
		created.Add(time.Hour), created, created.Add(5 * time.Minute),
	}}}

	got, err := (&SessionRepository{q: q}).Get(context.Background(), "sess")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.UserName != "Ada" || got.RefreshToken != "refresh" || !got.ExpiresAt.Equal(created.Add(5*time.Minute)) {
		t.Errorf("Get() = %+v", got)
	}
	if !strings.Contains(q.sql, "JOIN users") || !strings.Contains(q.sql, "expires_at > NOW()") {
		t.Errorf("query does not join users and skip expired sessions:\n%s", q.sql)
	}
	if !reflect.DeepEqual(q.args, []any{"sess"}) {
		t.Errorf("args = %v", q.args)
	}
}

func TestSessionRepository_GetErrors(t *testing.T) {
	repo := &SessionRepository{q: &fakeQuerier{row: fakeRow{err: pgx.ErrNoRows}}}
	if _, err := repo.Get(context.Background(), "gone"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get(expired) error = %v, want ErrNotFound", err)
	}

	boom := errors.New("connection reset")
	repo = &SessionRepository{q: &fakeQuerier{row: fakeRow{err: boom}}}
	_, err := repo.Get(context.Background(), "sess")
	if !errors.Is(err, boom) || errors.Is(err, ErrNotFound) {
		t.Errorf("Get(broken) error = %v, want wrapped %v", err, boom)
	}
}

func TestSessionRepository_UpdateToken(t *testing.T) {
	expiry := time.Date(2024, 1, 1, 13, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		tag     string
		wantErr error
	}{
		{"updated", "UPDATE 1", nil},
		{"expired or missing", "UPDATE 0", ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := &fakeQuerier{tag: pgconn.NewCommandTag(tt.tag)}

			err := (&SessionRepository{q: q}).UpdateToken(context.Background(), "sess", "new-access", "", expiry)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("UpdateToken() error = %v, want %v", err, tt.wantErr)
			}
			if !strings.Contains(q.sql, "COALESCE(NULLIF($3, ''), refresh_token)") {
				t.Error("an empty refresh token would overwrite the stored one")
			}
			if !reflect.DeepEqual(q.args, []any{"sess", "new-access", "", expiry}) {
				t.Errorf("args = %v", q.args)
			}
		})
	}
}

func TestSessionRepository_DeleteExpired(t *testing.T) {
	q := &fakeQuerier{tag: pgconn.NewCommandTag("DELETE 3")}

	n, err := (&SessionRepository{q: q}).DeleteExpired(context.Background())
	if err != nil {
		t.Fatalf("DeleteExpired() error = %v", err)
	}
	if n != 3 {
		t.Errorf("DeleteExpired() = %d, want 3", n)
	}

	q.err = errors.New("boom")
	if _, err := (&SessionRepository{q: q}).DeleteExpired(context.Background()); err == nil {
		t.Error("DeleteExpired() should report database errors")
	}
}

func TestSessionRepository_Delete(t *testing.T) {
	q := &fakeQuerier{tag: pgconn.NewCommandTag("DELETE 0")}

	if err := (&SessionRepository{q: q}).Delete(context.Background(), "missing"); err != nil {
		t.Errorf("Delete(missing) error = %v", err)
	}
	if !reflect.DeepEqual(q.args, []any{"missing"}) {
		t.Errorf("args = %v", q.args)
	}
}

func TestUserRepository_UpsertLogin(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	q := &fakeQuerier{row: fakeRow{values: []any{now, now, &now}}}

	user := &User{ID: "user", DisplayName: "Ada"}
	if err := (&UserRepository{q: q}).UpsertLogin(context.Background(), user); err != nil {
		t.Fatalf("UpsertLogin() error = %v", err)
	}
	if !user.CreatedAt.Equal(now) || user.LastLoginAt == nil || !user.LastLoginAt.Equal(now) {
		t.Errorf("timestamps not scanned back: %+v", user)
	}
	if !reflect.DeepEqual(q.args, []any{"user", "Ada", ""}) {
		t.Errorf("args = %v", q.args)
	}
}
