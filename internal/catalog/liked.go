package catalog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

const trackURIPrefix = "spotify:track:"

// ErrMissingTrackURI is returned when a liked-songs export has no Track URI column.
var ErrMissingTrackURI = errors.New("missing Track URI column")

// ReadLikedIDs extracts track IDs from a Spotify liked-songs export
// (the "Track URI" column, "spotify:track:<id>"). Bare IDs are accepted too.
func ReadLikedIDs(r io.Reader) (map[string]struct{}, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrMissingTrackURI
		}
		return nil, fmt.Errorf("reading header: %w", err)
	}

	col := -1
	for i, name := range header {
		if strings.EqualFold(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")), "Track URI") {
			col = i
			break
		}
	}
	if col < 0 {
		return nil, ErrMissingTrackURI
	}

	ids := make(map[string]struct{})
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading liked songs: %w", err)
		}
		if col >= len(record) {
			continue
		}
		if id := strings.TrimPrefix(strings.TrimSpace(record[col]), trackURIPrefix); id != "" {
			ids[id] = struct{}{}
		}
	}
	return ids, nil
}

// LoadLikedIDs reads a liked-songs export from disk. A missing file yields an
// empty set, since the export is optional.
func LoadLikedIDs(path string) (map[string]struct{}, error) {
	if path == "" {
		return map[string]struct{}{}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return map[string]struct{}{}, nil
		}
		return nil, fmt.Errorf("opening liked songs: %w", err)
	}
	defer f.Close()

	return ReadLikedIDs(f)
}
