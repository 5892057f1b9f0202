package recommend

import (
	"context"
	"fmt"
	"log"

	"github.com/justestif/valora/internal/questionnaire"
)

const (
	playlistSuffix      = ": Valora Music Recommendation"
	playlistDescription = "Songs recommended by Valora Music."
	playlistSearchLimit = 50
)

// PlaylistEditor is the subset of the Spotify client used to save playlists.
type PlaylistEditor interface {
	FindPlaylist(ctx context.Context, name string, limit int) (string, bool, error)
	CreatePlaylist(ctx context.Context, name, description string, public bool) (string, error)
	ClearPlaylist(ctx context.Context, playlistID string) error
	AddTracksToPlaylist(ctx context.Context, playlistID string, trackIDs []string) error
}

// PlaylistName returns the name of the playlist kept for mood.
func PlaylistName(mood questionnaire.Mood) string {
	return string(mood) + playlistSuffix
}

// SavePlaylist replaces the contents of the user's playlist for mood with
// trackIDs, creating a private playlist the first time. Returns a message for
// the user.
func SavePlaylist(ctx context.Context, editor PlaylistEditor, trackIDs []string, mood questionnaire.Mood) (string, error) {
	if editor == nil {
		return "", ErrLoginRequired
	}
	if len(trackIDs) == 0 {
		return "", ErrNoTracks
	}
	if mood == "" {
		return "", ErrMoodRequired
	}

	name := PlaylistName(mood)

	id, found, err := editor.FindPlaylist(ctx, name, playlistSearchLimit)
	if err != nil {
		return "", fmt.Errorf("could not find/create playlist: %w", err)
	}
	if found {
		log.Printf("recommend: found existing playlist %s", id)
	} else {
		log.Printf("recommend: creating playlist %q", name)
		id, err = editor.CreatePlaylist(ctx, name, playlistDescription, false)
		if err != nil {
			return "", fmt.Errorf("could not find/create playlist: %w", err)
		}
	}

	if err := editor.ClearPlaylist(ctx, id); err != nil {
		return "", fmt.Errorf("could not add songs: %w", err)
	}
	if err := editor.AddTracksToPlaylist(ctx, id, trackIDs); err != nil {
		return "", fmt.Errorf("could not add songs: %w", err)
	}

	return fmt.Sprintf(`Added %d songs to "%s"!`, len(trackIDs), name), nil
}
