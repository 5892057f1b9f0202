package spotify

import (
	"context"
	"fmt"

	"github.com/zmb3/spotify/v2"
)

const maxTracksPerRequest = 100

// FindPlaylist looks for a playlist owned or followed by the current user with
// exactly the given name, scanning only the first limit playlists (max 50).
func (c *Client) FindPlaylist(ctx context.Context, name string, limit int) (string, bool, error) {
	if limit <= 0 || limit > 50 {
		limit = 50
	}

	page, err := c.api.CurrentUsersPlaylists(ctx, spotify.Limit(limit))
	if err != nil {
		return "", false, fmt.Errorf("listing playlists: %w", err)
	}

	for _, p := range page.Playlists {
		if p.Name == name {
			return p.ID.String(), true, nil
		}
	}
	return "", false, nil
}

// CreatePlaylist creates a new playlist for the current user.
// Returns the playlist ID.
func (c *Client) CreatePlaylist(ctx context.Context, name, description string, public bool) (string, error) {
	userID, err := c.UserID(ctx)
	if err != nil {
		return "", err
	}

	playlist, err := c.api.CreatePlaylistForUser(ctx, userID, name, description, public, false)
	if err != nil {
		return "", fmt.Errorf("creating playlist: %w", err)
	}

	return playlist.ID.String(), nil
}

// ClearPlaylist removes every track from a playlist.
func (c *Client) ClearPlaylist(ctx context.Context, playlistID string) error {
	if err := c.api.ReplacePlaylistTracks(ctx, spotify.ID(playlistID)); err != nil {
		return fmt.Errorf("clearing playlist: %w", err)
	}
	return nil
}

// AddTracksToPlaylist adds tracks to a playlist, handling batching for large sets.
// Spotify allows max 100 tracks per request.
func (c *Client) AddTracksToPlaylist(ctx context.Context, playlistID string, trackIDs []string) error {
	for i, batch := range chunks(toIDs(trackIDs), maxTracksPerRequest) {
		if _, err := c.api.AddTracksToPlaylist(ctx, spotify.ID(playlistID), batch...); err != nil {
			start := i * maxTracksPerRequest
			return fmt.Errorf("adding tracks (batch %d-%d): %w", start+1, start+len(batch), err)
		}
	}
	return nil
}
