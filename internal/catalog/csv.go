package catalog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/justestif/valora/internal/questionnaire"
)

// ErrMissingColumn is returned when a CSV header lacks the track_id column.
var ErrMissingColumn = errors.New("missing track_id column")

// Columns is the header written by WriteCSV.
var Columns = []string{
	"track_id", "track_name", "artists", "track_genre", "super_genre", "app_mood",
	"valence", "energy", "danceability", "acousticness",
	"instrumentalness", "speechiness", "liveness",
}

// columnAliases maps alternative header names onto Columns.
var columnAliases = map[string]string{
	"id":     "track_id",
	"name":   "track_name",
	"artist": "artists",
	"mood":   "app_mood",
}

// ReadCSV parses songs from a header-driven CSV. Unknown columns are ignored
// and every column except track_id is optional. Rows without an ID are
// skipped, and duplicate IDs keep their first occurrence. Unparseable numbers
// and unknown mood labels are treated as missing.
func ReadCSV(r io.Reader) ([]Song, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrMissingColumn
		}
		return nil, fmt.Errorf("reading header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		if canonical, ok := columnAliases[name]; ok {
			name = canonical
		}
		if _, dup := index[name]; !dup {
			index[name] = i
		}
	}
	if _, ok := index["track_id"]; !ok {
		return nil, ErrMissingColumn
	}

	var songs []Song
	seen := make(map[string]bool)
	for line := 2; ; line++ {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading line %d: %w", line, err)
		}

		field := func(name string) string {
			i, ok := index[name]
			if !ok || i >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[i])
		}
		number := func(name string) *float32 {
			v, err := strconv.ParseFloat(field(name), 32)
			if err != nil {
				return nil
			}
			return ptr(float32(v))
		}

		id := field("track_id")
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true

		mood, _ := questionnaire.ParseMood(field("app_mood"))
		songs = append(songs, Song{
			ID:         id,
			Name:       field("track_name"),
			Artists:    field("artists"),
			Genre:      field("track_genre"),
			SuperGenre: field("super_genre"),
			Mood:       mood,
			Features: Features{
				Valence:          number("valence"),
				Energy:           number("energy"),
				Danceability:     number("danceability"),
				Acousticness:     number("acousticness"),
				Instrumentalness: number("instrumentalness"),
				Speechiness:      number("speechiness"),
				Liveness:         number("liveness"),
			},
		})
	}

	return songs, nil
}

// WriteCSV writes songs with the Columns header. Unknown features are left blank.
func WriteCSV(w io.Writer, songs []Song) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Columns); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	format := func(v *float32) string {
		if v == nil {
			return ""
		}
		return strconv.FormatFloat(float64(*v), 'f', -1, 32)
	}

	for _, s := range songs {
		record := []string{
			s.ID, s.Name, s.Artists, s.Genre, s.SuperGenre, string(s.Mood),
			format(s.Valence), format(s.Energy), format(s.Danceability), format(s.Acousticness),
			format(s.Instrumentalness), format(s.Speechiness), format(s.Liveness),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("writing song %s: %w", s.ID, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// LoadCSV reads songs from a file.
func LoadCSV(path string) ([]Song, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening catalog: %w", err)
	}
	defer f.Close()

	songs, err := ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return songs, nil
}

// SaveCSV writes songs to path through a temporary file so that a watcher
// never sees a half-written catalog.
func SaveCSV(path string, songs []Song) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".catalog-*.csv")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := WriteCSV(tmp, songs); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replacing catalog: %w", err)
	}
	return nil
}
