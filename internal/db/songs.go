package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/justestif/valora/internal/catalog"
	"github.com/justestif/valora/internal/questionnaire"
)

// songBatchSize bounds how many rows a single upsert statement carries.
const songBatchSize = 1000

// SongRepository stores the song catalog. It implements catalog.Store.
type SongRepository struct {
	pool *pgxpool.Pool
}

var _ catalog.Store = (*SongRepository)(nil)

const songSelect = `
	SELECT id, name, artists, genre, super_genre, app_mood,
		valence, energy, danceability, acousticness, instrumentalness, speechiness, liveness
	FROM songs
`

// SongsByMood returns every song labelled with mood.
func (r *SongRepository) SongsByMood(ctx context.Context, mood questionnaire.Mood) ([]catalog.Song, error) {
	rows, err := r.pool.Query(ctx, songSelect+` WHERE app_mood = $1 ORDER BY id`, string(mood))
	if err != nil {
		return nil, fmt.Errorf("querying songs by mood: %w", err)
	}
	return collectSongs(rows)
}

// All returns the whole catalog, labelled or not.
func (r *SongRepository) All(ctx context.Context) ([]catalog.Song, error) {
	rows, err := r.pool.Query(ctx, songSelect+` ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("querying songs: %w", err)
	}
	return collectSongs(rows)
}

// Counts returns the number of songs per mood. Unlabelled songs are not
// counted.
func (r *SongRepository) Counts(ctx context.Context) (map[questionnaire.Mood]int, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT app_mood, COUNT(*)
		FROM songs
		WHERE app_mood <> ''
		GROUP BY app_mood
	`)
	if err != nil {
		return nil, fmt.Errorf("counting songs: %w", err)
	}
	defer rows.Close()

	counts := make(map[questionnaire.Mood]int)
	for rows.Next() {
		var mood string
		var n int
		if err := rows.Scan(&mood, &n); err != nil {
			return nil, fmt.Errorf("scanning song count: %w", err)
		}
		counts[questionnaire.Mood(mood)] = n
	}
	return counts, rows.Err()
}

// UpsertBatch inserts or updates songs, songBatchSize rows per statement.
func (r *SongRepository) UpsertBatch(ctx context.Context, songs []catalog.Song) error {
	query := `
		INSERT INTO songs (id, name, artists, genre, super_genre, app_mood,
			valence, energy, danceability, acousticness, instrumentalness, speechiness, liveness, updated_at)
		SELECT *, NOW() FROM unnest(
			$1::text[], $2::text[], $3::text[], $4::text[], $5::text[], $6::text[],
			$7::real[], $8::real[], $9::real[], $10::real[], $11::real[], $12::real[], $13::real[]
		)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			artists = EXCLUDED.artists,
			genre = EXCLUDED.genre,
			super_genre = EXCLUDED.super_genre,
			app_mood = EXCLUDED.app_mood,
			valence = EXCLUDED.valence,
			energy = EXCLUDED.energy,
			danceability = EXCLUDED.danceability,
			acousticness = EXCLUDED.acousticness,
			instrumentalness = EXCLUDED.instrumentalness,
			speechiness = EXCLUDED.speechiness,
			liveness = EXCLUDED.liveness,
			updated_at = NOW()
	`

	for start := 0; start < len(songs); start += songBatchSize {
		end := min(start+songBatchSize, len(songs))
		if _, err := r.pool.Exec(ctx, query, newSongColumns(songs[start:end]).args()...); err != nil {
			return fmt.Errorf("batch upserting songs: %w", err)
		}
	}
	return nil
}

// songColumns is a batch of songs laid out column by column for unnest.
type songColumns struct {
	ids, names, artists, genres, superGenres, moods []string
	features                                        [7][]*float32
}

func newSongColumns(songs []catalog.Song) songColumns {
	n := len(songs)
	c := songColumns{
		ids:         make([]string, n),
		names:       make([]string, n),
		artists:     make([]string, n),
		genres:      make([]string, n),
		superGenres: make([]string, n),
		moods:       make([]string, n),
	}
	for i := range c.features {
		c.features[i] = make([]*float32, n)
	}

	for i, s := range songs {
		c.ids[i] = s.ID
		c.names[i] = s.Name
		c.artists[i] = s.Artists
		c.genres[i] = s.Genre
		c.superGenres[i] = s.SuperGenre
		c.moods[i] = string(s.Mood)
		for j, f := range featureFields(&s.Features) {
			c.features[j][i] = *f
		}
	}
	return c
}

func (c songColumns) args() []any {
	args := []any{c.ids, c.names, c.artists, c.genres, c.superGenres, c.moods}
	for _, f := range c.features {
		args = append(args, f)
	}
	return args
}

// featureFields lists the feature pointers in column order.
func featureFields(f *catalog.Features) [7]**float32 {
	return [7]**float32{
		&f.Valence,
		&f.Energy,
		&f.Danceability,
		&f.Acousticness,
		&f.Instrumentalness,
		&f.Speechiness,
		&f.Liveness,
	}
}

func collectSongs(rows pgx.Rows) ([]catalog.Song, error) {
	defer rows.Close()

	var songs []catalog.Song
	for rows.Next() {
		var s catalog.Song
		var mood string
		dest := []any{&s.ID, &s.Name, &s.Artists, &s.Genre, &s.SuperGenre, &mood}
		for _, f := range featureFields(&s.Features) {
			dest = append(dest, f)
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scanning song: %w", err)
		}
		s.Mood = questionnaire.Mood(mood)
		songs = append(songs, s)
	}
	return songs, rows.Err()
}
