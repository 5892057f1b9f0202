package spotify

import (
	"context"
	"fmt"

	"github.com/zmb3/spotify/v2"

	"github.com/justestif/valora/internal/catalog"
)

// FetchAudioFeatures fills in audio features for catalog songs that have
// none, updating songs in place. Batches requests to max 100 tracks per
// request per Spotify API limits. Songs Spotify has no features for are left
// unchanged. Returns the number of songs updated.
func (c *Client) FetchAudioFeatures(ctx context.Context, songs []catalog.Song) (int, error) {
	indexByID := make(map[string]int)
	var ids []spotify.ID
	for i, s := range songs {
		if s.Valence != nil && s.Energy != nil {
			continue
		}
		indexByID[s.ID] = i
		ids = append(ids, spotify.ID(s.ID))
	}
	if len(ids) == 0 {
		return 0, nil
	}

	total := len(ids)
	updated := 0

	for i, batch := range chunks(ids, maxTracksPerRequest) {
		start := i * maxTracksPerRequest
		fmt.Printf("Fetching audio features %d-%d of %d...\n", start+1, start+len(batch), total)

		features, err := c.api.GetAudioFeatures(ctx, batch...)
		if err != nil {
			return updated, fmt.Errorf("fetching audio features (batch %d-%d): %w", start+1, start+len(batch), err)
		}

		for _, f := range features {
			if f == nil {
				continue
			}
			idx, ok := indexByID[f.ID.String()]
			if !ok {
				continue
			}
			applyAudioFeatures(&songs[idx], f)
			updated++
		}
	}

	fmt.Printf("Fetched audio features for %d of %d songs.\n", updated, total)
	return updated, nil
}

// applyAudioFeatures copies audio feature values to a song.
func applyAudioFeatures(s *catalog.Song, f *spotify.AudioFeatures) {
	s.Valence = &f.Valence
	s.Energy = &f.Energy
	s.Danceability = &f.Danceability
	s.Acousticness = &f.Acousticness
	s.Instrumentalness = &f.Instrumentalness
	s.Speechiness = &f.Speechiness
	s.Liveness = &f.Liveness
}
