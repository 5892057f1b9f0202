package quizstore

import (
	"context"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/justestif/valora/internal/questionnaire"
)

func sampleState(t *testing.T) questionnaire.State {
	t.Helper()
	st := questionnaire.NewState(rand.New(rand.NewPCG(7, 11)))
	require.NoError(t, st.Rate(4))
	require.NoError(t, st.Rate(2))
	return st
}

func newRedisStore(t *testing.T, ttl time.Duration) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisStore(client, ttl), mr
}

// storeContract runs the behaviour every Store must share.
func storeContract(t *testing.T, store Store) {
	ctx := context.Background()
	key := NewKey()

	_, err := store.Load(ctx, key)
	assert.ErrorIs(t, err, ErrNotFound)

	st := sampleState(t)
	require.NoError(t, store.Save(ctx, key, st))

	got, err := store.Load(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, st.Order, got.Order)
	assert.Equal(t, 2, got.Cursor)
	assert.Equal(t, st.Responses.Ratings, got.Responses.Ratings)

	// The loaded copy is independent of what is stored.
	require.NoError(t, got.Rate(5))
	again, err := store.Load(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, 2, again.Cursor)

	require.NoError(t, store.Delete(ctx, key))
	_, err = store.Load(ctx, key)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, store.Delete(ctx, key), "deleting twice is fine")

	bad := sampleState(t)
	bad.Order = bad.Order[:3]
	assert.ErrorIs(t, store.Save(ctx, key, bad), questionnaire.ErrInvariant)
}

func TestMemoryStore(t *testing.T) {
	storeContract(t, NewMemoryStore(time.Minute))
}

func TestRedisStore(t *testing.T) {
	store, _ := newRedisStore(t, time.Minute)
	storeContract(t, store)
}

func TestMemoryStore_Expiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	store := NewMemoryStore(5 * time.Minute)
	store.now = func() time.Time { return now }

	require.NoError(t, store.Save(ctx, "k", sampleState(t)))

	now = now.Add(4 * time.Minute)
	_, err := store.Load(ctx, "k")
	require.NoError(t, err)

	// Saving again restarts the clock.
	require.NoError(t, store.Save(ctx, "k", sampleState(t)))
	now = now.Add(4 * time.Minute)
	_, err = store.Load(ctx, "k")
	require.NoError(t, err)

	now = now.Add(time.Minute)
	_, err = store.Load(ctx, "k")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_SaveSweepsAbandonedEntries(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	store := NewMemoryStore(5 * time.Minute)
	store.now = func() time.Time { return now }

	st := sampleState(t)
	for range 1000 {
		require.NoError(t, store.Save(ctx, NewKey(), st))
	}
	assert.Len(t, store.entries, 1000)

	now = now.Add(24 * time.Hour)
	require.NoError(t, store.Save(ctx, "fresh", st))

	assert.Len(t, store.entries, 1)
	_, err := store.Load(ctx, "fresh")
	assert.NoError(t, err)
}

func TestMemoryStore_DeleteExpired(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	store := NewMemoryStore(5 * time.Minute)
	store.now = func() time.Time { return now }

	require.NoError(t, store.Save(ctx, "old", sampleState(t)))
	now = now.Add(3 * time.Minute)
	require.NoError(t, store.Save(ctx, "new", sampleState(t)))

	now = now.Add(3 * time.Minute)
	assert.Equal(t, 1, store.DeleteExpired())
	assert.Len(t, store.entries, 1)
	_, err := store.Load(ctx, "new")
	assert.NoError(t, err)

	assert.Zero(t, store.DeleteExpired())
}

func TestMemoryStore_PurgeExpiredStopsWithContext(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	store.now = func() time.Time { return time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC) }
	require.NoError(t, store.Save(context.Background(), "k", sampleState(t)))

	// Every entry is already expired from here on.
	store.now = func() time.Time { return time.Date(2024, 1, 2, 12, 0, 0, 0, time.UTC) }

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		store.PurgeExpired(ctx, time.Millisecond)
		close(done)
	}()

	assert.Eventually(t, func() bool {
		store.mu.Lock()
		defer store.mu.Unlock()
		return len(store.entries) == 0
	}, time.Second, time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("PurgeExpired did not return after cancel")
	}
}

func TestMemoryStore_NoTTL(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(0)
	store.now = func() time.Time { return time.Date(2999, 1, 1, 0, 0, 0, 0, time.UTC) }

	require.NoError(t, store.Save(ctx, "k", sampleState(t)))
	_, err := store.Load(ctx, "k")
	assert.NoError(t, err)
}

func TestRedisStore_TTL(t *testing.T) {
	ctx := context.Background()
	store, mr := newRedisStore(t, 5*time.Minute)

	require.NoError(t, store.Save(ctx, "abc", sampleState(t)))
	assert.True(t, mr.Exists("valora:quiz:abc"))
	assert.Equal(t, 5*time.Minute, mr.TTL("valora:quiz:abc"))

	mr.FastForward(6 * time.Minute)
	_, err := store.Load(ctx, "abc")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRedisStore_Prefix(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	store := NewRedisStore(client, 0, WithPrefix("test:"))
	require.NoError(t, store.Save(context.Background(), "abc", sampleState(t)))
	assert.True(t, mr.Exists("test:abc"))
	assert.Zero(t, mr.TTL("test:abc"))
}

func TestRedisStore_CorruptEntriesAreDropped(t *testing.T) {
	ctx := context.Background()
	store, mr := newRedisStore(t, time.Minute)

	tests := []struct {
		name  string
		value string
	}{
		{"not json", "{nope"},
		{"short order", `{"order":[{"label":"Interested","polarity":1}],"cursor":0,"stage":0,"responses":{"ratings":{}}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, mr.Set("valora:quiz:bad", tt.value))

			_, err := store.Load(ctx, "bad")
			assert.ErrorIs(t, err, ErrNotFound)
			assert.False(t, mr.Exists("valora:quiz:bad"))
		})
	}
}

func TestDial(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := Dial(context.Background(), "redis://"+mr.Addr()+"/0")
	require.NoError(t, err)
	client.Close()

	_, err = Dial(context.Background(), "http://nope")
	assert.Error(t, err)
}

func TestNewKey(t *testing.T) {
	a, b := NewKey(), NewKey()
	assert.Len(t, a, 36)
	assert.NotEqual(t, a, b)
}
