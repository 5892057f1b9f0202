package catalog

import (
	"context"
	"sync"

	"github.com/justestif/valora/internal/questionnaire"
)

// Store returns the songs available for a mood.
type Store interface {
	SongsByMood(ctx context.Context, mood questionnaire.Mood) ([]Song, error)
}

// MemoryStore is an in-memory catalog indexed by mood. It is safe for
// concurrent use and can be swapped wholesale by Replace.
type MemoryStore struct {
	mu     sync.RWMutex
	byMood map[questionnaire.Mood][]Song
	total  int
}

// NewMemoryStore creates a store holding songs.
func NewMemoryStore(songs []Song) *MemoryStore {
	s := &MemoryStore{}
	s.Replace(songs)
	return s
}

// Replace swaps the store contents. Unlabelled songs are dropped.
func (s *MemoryStore) Replace(songs []Song) {
	byMood := make(map[questionnaire.Mood][]Song, len(questionnaire.Moods))
	total := 0
	for _, song := range songs {
		if !song.Labelled() {
			continue
		}
		byMood[song.Mood] = append(byMood[song.Mood], song)
		total++
	}

	s.mu.Lock()
	s.byMood = byMood
	s.total = total
	s.mu.Unlock()
}

// SongsByMood returns a copy of the songs labelled with mood.
func (s *MemoryStore) SongsByMood(_ context.Context, mood questionnaire.Mood) ([]Song, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	songs := s.byMood[mood]
	out := make([]Song, len(songs))
	copy(out, songs)
	return out, nil
}

// Len returns the number of labelled songs.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.total
}

// Counts returns the number of songs per mood.
func (s *MemoryStore) Counts() map[questionnaire.Mood]int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[questionnaire.Mood]int, len(s.byMood))
	for m, songs := range s.byMood {
		counts[m] = len(songs)
	}
	return counts
}
