// Package recommend turns a mood into a list of songs and saves them to a
// playlist.
package recommend

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand/v2"

	"github.com/justestif/valora/internal/catalog"
	"github.com/justestif/valora/internal/questionnaire"
	"github.com/justestif/valora/internal/spotify"
)

// Selection sizes.
const (
	MaxRecommendations = 20
	MaxFromLibrary     = 8
	savedTracksLimit   = 50
)

// Sentinel errors.
var (
	// ErrLoginRequired is returned when an operation needs a signed-in user.
	ErrLoginRequired = errors.New("user not logged in")

	// ErrMoodRequired is returned when no mood was provided.
	ErrMoodRequired = errors.New("mood not provided")

	// ErrNoTracks is returned when a playlist is requested without tracks.
	ErrNoTracks = errors.New("no track IDs provided")
)

// Recommendation is one song as sent to the browser.
type Recommendation struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Artist     string `json:"artist"`
	URL        string `json:"url,omitempty"`
	AlbumArt   string `json:"album_art,omitempty"`
	PreviewURL string `json:"preview_url,omitempty"`
	SuperGenre string `json:"super_genre"`
}

// Result is the outcome of Recommend.
type Result struct {
	Recommendations []Recommendation `json:"recommendations"`
	Message         string           `json:"message"`
}

// Library gives access to the signed-in user's saved tracks.
type Library interface {
	SavedTrackIDs(ctx context.Context, limit int) ([]string, error)
}

// TrackResolver looks up display details for track IDs.
type TrackResolver interface {
	GetTracks(ctx context.Context, ids []string) ([]spotify.Track, error)
}

// Shuffler randomizes sample order. *rand.Rand from math/rand/v2 satisfies it.
type Shuffler interface {
	Shuffle(n int, swap func(i, j int))
}

type globalShuffler struct{}

func (globalShuffler) Shuffle(n int, swap func(i, j int)) { rand.Shuffle(n, swap) }

// Service picks songs for a mood.
type Service struct {
	songs  catalog.Store
	tracks TrackResolver
	liked  map[string]struct{}
	rand   Shuffler
}

// Option configures a Service.
type Option func(*Service)

// WithLikedIDs seeds the taste profile with a static set of liked track IDs.
func WithLikedIDs(ids map[string]struct{}) Option {
	return func(s *Service) { s.liked = ids }
}

// WithShuffler replaces the random source used for sampling.
func WithShuffler(r Shuffler) Option {
	return func(s *Service) { s.rand = r }
}

// NewService creates a recommendation service. tracks should be authenticated
// as the application, not as a user.
func NewService(songs catalog.Store, tracks TrackResolver, opts ...Option) *Service {
	s := &Service{
		songs:  songs,
		tracks: tracks,
		liked:  map[string]struct{}{},
		rand:   globalShuffler{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Recommend picks up to MaxRecommendations songs for mood, preferring up to
// MaxFromLibrary songs the user already likes, and resolves their details.
// The output follows selection order; songs whose details cannot be fetched
// are left out.
func (s *Service) Recommend(ctx context.Context, mood questionnaire.Mood, lib Library) (Result, error) {
	if lib == nil {
		return Result{}, ErrLoginRequired
	}
	if mood == "" {
		return Result{}, ErrMoodRequired
	}

	songs, err := s.songs.SongsByMood(ctx, mood)
	if err != nil {
		return Result{}, fmt.Errorf("loading songs for %s: %w", mood, err)
	}
	if len(songs) == 0 {
		return Result{
			Recommendations: []Recommendation{},
			Message:         fmt.Sprintf(`No songs found for mood "%s".`, mood),
		}, nil
	}

	liked := s.likedIDs(ctx, lib)
	picked, fromLibrary := s.pick(songs, liked)
	fresh := len(picked) - fromLibrary

	var message string
	if fromLibrary > 0 {
		message = fmt.Sprintf("Here are %d songs for you (%d from your taste, %d new):", len(picked), fromLibrary, fresh)
	} else {
		message = fmt.Sprintf("Here are %d songs from our library for you:", len(picked))
	}
	log.Printf("recommend: %s: %s", mood, message)

	recs, err := s.resolve(ctx, picked)
	if err != nil {
		return Result{}, err
	}
	return Result{Recommendations: recs, Message: message}, nil
}

// likedIDs merges the static liked set with the user's live saved tracks.
func (s *Service) likedIDs(ctx context.Context, lib Library) map[string]struct{} {
	liked := make(map[string]struct{}, len(s.liked)+savedTracksLimit)
	for id := range s.liked {
		liked[id] = struct{}{}
	}

	saved, err := lib.SavedTrackIDs(ctx, savedTracksLimit)
	if err != nil {
		log.Printf("recommend: could not get live liked songs: %v", err)
		return liked
	}
	for _, id := range saved {
		liked[id] = struct{}{}
	}
	return liked
}

// pick samples liked matches first, then fills up with other songs.
// Returns the picks and how many came from the liked set.
func (s *Service) pick(songs []catalog.Song, liked map[string]struct{}) ([]catalog.Song, int) {
	var matches, others []catalog.Song
	for _, song := range songs {
		if _, ok := liked[song.ID]; ok {
			matches = append(matches, song)
		} else {
			others = append(others, song)
		}
	}

	matches = s.sample(matches, MaxFromLibrary)
	others = s.sample(others, MaxRecommendations-len(matches))

	picked := make([]catalog.Song, 0, len(matches)+len(others))
	picked = append(picked, matches...)
	picked = append(picked, others...)
	return picked, len(matches)
}

// sample returns n songs in random order, or all of them if there are fewer.
func (s *Service) sample(songs []catalog.Song, n int) []catalog.Song {
	s.rand.Shuffle(len(songs), func(i, j int) { songs[i], songs[j] = songs[j], songs[i] })
	return songs[:min(n, len(songs))]
}

// resolve fetches track details and joins them with catalog data.
func (s *Service) resolve(ctx context.Context, picked []catalog.Song) ([]Recommendation, error) {
	ids := make([]string, len(picked))
	byID := make(map[string]catalog.Song, len(picked))
	for i, song := range picked {
		ids[i] = song.ID
		byID[song.ID] = song
	}

	tracks, err := s.tracks.GetTracks(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("fetching track details: %w", err)
	}

	details := make(map[string]spotify.Track, len(tracks))
	for _, t := range tracks {
		details[t.ID] = t
	}

	recs := make([]Recommendation, 0, len(tracks))
	for _, id := range ids {
		t, ok := details[id]
		if !ok {
			continue
		}
		artist := t.MainArtist
		if artist == "" {
			artist = "N/A"
		}
		recs = append(recs, Recommendation{
			ID:         t.ID,
			Name:       t.Name,
			Artist:     artist,
			URL:        t.URL,
			AlbumArt:   t.AlbumArt,
			PreviewURL: t.PreviewURL,
			SuperGenre: byID[id].SuperGenre,
		})
	}

	log.Printf("recommend: fetched details for %d of %d songs", len(recs), len(ids))
	return recs, nil
}
