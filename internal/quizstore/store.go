// Package quizstore parks questionnaire state between web requests.
//
// Each browser session owns one questionnaire. Entries expire together with
// the session so an abandoned questionnaire does not outlive it.
package quizstore

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/justestif/valora/internal/questionnaire"
)

// ErrNotFound is returned when no state is stored for a key.
var ErrNotFound = errors.New("questionnaire state not found")

// Store keeps one questionnaire.State per key.
type Store interface {
	Load(ctx context.Context, key string) (questionnaire.State, error)
	Save(ctx context.Context, key string, state questionnaire.State) error
	Delete(ctx context.Context, key string) error
}

// NewKey returns a fresh random key for a questionnaire.
func NewKey() string {
	return uuid.NewString()
}

type memoryEntry struct {
	state   questionnaire.State
	expires time.Time
}

// MemoryStore keeps state in process memory. It is safe for concurrent use.
// Expired entries are swept at most once per ttl on Save, and by
// PurgeExpired when it runs.
type MemoryStore struct {
	mu        sync.Mutex
	entries   map[string]memoryEntry
	ttl       time.Duration
	now       func() time.Time
	nextSweep time.Time
}

// NewMemoryStore creates a store whose entries expire ttl after their last
// save. A zero ttl keeps entries until they are deleted.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Load returns the state for key.
func (s *MemoryStore) Load(_ context.Context, key string) (questionnaire.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		return questionnaire.State{}, ErrNotFound
	}
	if !e.expires.IsZero() && !s.now().Before(e.expires) {
		delete(s.entries, key)
		return questionnaire.State{}, ErrNotFound
	}
	return cloneState(e.state), nil
}

// Save stores state under key and restarts its expiry.
func (s *MemoryStore) Save(_ context.Context, key string, state questionnaire.State) error {
	if err := state.Validate(); err != nil {
		return fmt.Errorf("saving questionnaire: %w", err)
	}

	now := s.now()
	e := memoryEntry{state: cloneState(state)}
	if s.ttl > 0 {
		e.expires = now.Add(s.ttl)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ttl > 0 && !now.Before(s.nextSweep) {
		s.deleteExpiredLocked(now)
		s.nextSweep = now.Add(s.ttl)
	}
	s.entries[key] = e
	return nil
}

// DeleteExpired drops every expired entry and returns how many were removed.
func (s *MemoryStore) DeleteExpired() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deleteExpiredLocked(s.now())
}

func (s *MemoryStore) deleteExpiredLocked(now time.Time) int {
	n := 0
	for key, e := range s.entries {
		if !e.expires.IsZero() && !now.Before(e.expires) {
			delete(s.entries, key)
			n++
		}
	}
	return n
}

// PurgeExpired deletes expired entries every interval until ctx is done.
func (s *MemoryStore) PurgeExpired(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.DeleteExpired(); n > 0 {
				log.Printf("quizstore: purged %d abandoned questionnaires", n)
			}
		}
	}
}

// Delete removes the state for key. Missing keys are not an error.
func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	delete(s.entries, key)
	s.mu.Unlock()
	return nil
}

// cloneState copies the slices and maps a State shares with its caller.
func cloneState(st questionnaire.State) questionnaire.State {
	out := st
	out.Order = append([]questionnaire.Item(nil), st.Order...)
	out.Responses.Ratings = make(map[string]int, len(st.Responses.Ratings))
	for k, v := range st.Responses.Ratings {
		out.Responses.Ratings[k] = v
	}
	if st.Responses.Valence != nil {
		v := *st.Responses.Valence
		out.Responses.Valence = &v
	}
	if st.Responses.Arousal != nil {
		v := *st.Responses.Arousal
		out.Responses.Arousal = &v
	}
	return out
}
