// Package catalog holds the song library that recommendations are drawn from.
//
// Songs carry an app mood (one of the four questionnaire moods) and a
// super-genre. The import pipeline fills in whichever of the two is missing:
// moods come from valence and energy, or from the majority label of a k-means
// cluster over the remaining audio features; super-genres come from the genre
// column or from Last.fm tags.
package catalog

import (
	"strings"

	"github.com/justestif/valora/internal/questionnaire"
)

// Song is one catalog entry.
type Song struct {
	ID         string
	Name       string
	Artists    string // Comma-separated artist names
	Genre      string // Raw genre as found in the source data
	SuperGenre string
	Mood       questionnaire.Mood
	Features
}

// Features are Spotify-style audio features in [0,1]. Nil means unknown.
type Features struct {
	Valence          *float32
	Energy           *float32
	Danceability     *float32
	Acousticness     *float32
	Instrumentalness *float32
	Speechiness      *float32
	Liveness         *float32
}

// Labelled reports whether the song can be recommended.
func (s Song) Labelled() bool {
	return s.Mood != ""
}

// PrimaryArtist returns the first artist name.
func (s Song) PrimaryArtist() string {
	if i := strings.IndexAny(s.Artists, ",;"); i >= 0 {
		return strings.TrimSpace(s.Artists[:i])
	}
	return strings.TrimSpace(s.Artists)
}

func ptr[T any](v T) *T { return &v }
