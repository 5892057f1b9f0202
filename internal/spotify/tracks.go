package spotify

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/zmb3/spotify/v2"
)

// Spotify request limits.
const (
	maxSavedTracksPerPage = 50
	maxTracksPerLookup    = 50
)

// SavedTrackIDs returns the IDs of the user's most recently liked songs, at
// most limit of them (capped at one page of 50).
func (c *Client) SavedTrackIDs(ctx context.Context, limit int) ([]string, error) {
	if limit <= 0 || limit > maxSavedTracksPerPage {
		limit = maxSavedTracksPerPage
	}

	page, err := c.api.CurrentUsersTracks(ctx, spotify.Limit(limit))
	if err != nil {
		return nil, fmt.Errorf("fetching liked songs: %w", err)
	}

	ids := make([]string, 0, len(page.Tracks))
	for _, saved := range page.Tracks {
		ids = append(ids, saved.ID.String())
	}
	return ids, nil
}

// GetTracks resolves track details in batches of 50. A failed batch is logged
// and skipped, as are IDs Spotify does not know. Output follows input order.
func (c *Client) GetTracks(ctx context.Context, ids []string) ([]Track, error) {
	tracks := make([]Track, 0, len(ids))

	for _, batch := range chunks(toIDs(ids), maxTracksPerLookup) {
		if err := ctx.Err(); err != nil {
			return tracks, err
		}

		full, err := c.api.GetTracks(ctx, batch)
		if err != nil {
			log.Printf("spotify: fetching %d tracks: %v", len(batch), err)
			continue
		}

		for _, ft := range full {
			if ft == nil {
				continue
			}
			tracks = append(tracks, convertTrack(ft))
		}
	}

	return tracks, nil
}

// convertTrack converts a Spotify FullTrack to Track.
func convertTrack(ft *spotify.FullTrack) Track {
	artists := make([]string, len(ft.Artists))
	for i, a := range ft.Artists {
		artists[i] = a.Name
	}
	var main string
	if len(artists) > 0 {
		main = artists[0]
	}

	// Spotify lists album images largest first.
	var art string
	if len(ft.Album.Images) > 0 {
		art = ft.Album.Images[0].URL
	}

	return Track{
		ID:         ft.ID.String(),
		Name:       ft.Name,
		Artist:     strings.Join(artists, ", "),
		MainArtist: main,
		URL:        ft.ExternalURLs["spotify"],
		AlbumArt:   art,
		PreviewURL: ft.PreviewURL,
	}
}
