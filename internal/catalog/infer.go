package catalog

import (
	"fmt"
	"log"

	"github.com/muesli/clusters"
	"github.com/muesli/kmeans"

	"github.com/justestif/valora/internal/questionnaire"
)

// InferConfig holds k-means parameters for label inference.
type InferConfig struct {
	NumClusters int // Number of clusters to create (default: 8)
}

// DefaultInferConfig returns the recommended default configuration.
func DefaultInferConfig() InferConfig {
	return InferConfig{NumClusters: 8}
}

// InferStats reports how many labels Infer filled in.
type InferStats struct {
	Moods  int
	Genres int
}

// songObservation wraps a song index to implement clusters.Observation.
type songObservation struct {
	index  int
	coords clusters.Coordinates
}

func (o songObservation) Coordinates() clusters.Coordinates {
	return o.coords
}

func (o songObservation) Distance(point clusters.Coordinates) float64 {
	return o.coords.Distance(point)
}

// Infer clusters songs on danceability, acousticness, instrumentalness,
// speechiness and liveness, then gives every song missing a mood or
// super-genre the majority label of its cluster. Clusters without any
// labelled member leave their songs as they are. Songs missing one of the
// clustering features are skipped.
func Infer(songs []Song, cfg InferConfig) (InferStats, error) {
	if cfg.NumClusters <= 0 {
		cfg.NumClusters = DefaultInferConfig().NumClusters
	}

	var obs clusters.Observations
	needed := false
	for i := range songs {
		coords, ok := inferenceFeatures(&songs[i])
		if !ok {
			continue
		}
		obs = append(obs, songObservation{index: i, coords: coords})
		if !songs[i].Labelled() || songs[i].SuperGenre == "" {
			needed = true
		}
	}

	if !needed || len(obs) < cfg.NumClusters {
		return InferStats{}, nil
	}

	km := kmeans.New()
	result, err := km.Partition(obs, cfg.NumClusters)
	if err != nil {
		return InferStats{}, fmt.Errorf("clustering songs: %w", err)
	}

	var stats InferStats
	for _, cluster := range result {
		moods := make(map[string]int)
		genres := make(map[string]int)
		for _, o := range cluster.Observations {
			s := songs[o.(songObservation).index]
			if s.Labelled() {
				moods[string(s.Mood)]++
			}
			if s.SuperGenre != "" {
				genres[s.SuperGenre]++
			}
		}

		mood := majority(moods)
		genre := majority(genres)
		for _, o := range cluster.Observations {
			s := &songs[o.(songObservation).index]
			if !s.Labelled() && mood != "" {
				s.Mood = questionnaire.Mood(mood)
				stats.Moods++
			}
			if s.SuperGenre == "" && genre != "" {
				s.SuperGenre = genre
				stats.Genres++
			}
		}
	}

	log.Printf("catalog: inferred %d moods and %d super-genres from %d clusters", stats.Moods, stats.Genres, len(result))
	return stats, nil
}

// majority returns the most frequent key, breaking ties alphabetically.
func majority(counts map[string]int) string {
	best, bestN := "", 0
	for k, n := range counts {
		if n > bestN || (n == bestN && k < best) {
			best, bestN = k, n
		}
	}
	return best
}

// inferenceFeatures extracts the clustering coordinates of a song.
func inferenceFeatures(s *Song) (clusters.Coordinates, bool) {
	fs := []*float32{s.Danceability, s.Acousticness, s.Instrumentalness, s.Speechiness, s.Liveness}
	coords := make(clusters.Coordinates, len(fs))
	for i, f := range fs {
		if f == nil {
			return nil, false
		}
		coords[i] = float64(*f)
	}
	return coords, true
}
