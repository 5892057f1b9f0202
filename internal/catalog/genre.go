package catalog

import "strings"

// Super-genres.
const (
	GenreRock       = "Rock/Alternative"
	GenreElectronic = "Electronic/Dance"
	GenrePop        = "Pop/R&B/Soul"
	GenreHipHop     = "Hip-Hop"
	GenreJazz       = "Jazz/Blues/Reggae"
	GenreClassical  = "Classical/Acoustic"
	GenreMetal      = "Metal"
	GenreOther      = "Other"
)

// genreKeywords is checked in order; the first super-genre with a keyword
// contained in the genre wins.
var genreKeywords = []struct {
	superGenre string
	keywords   []string
}{
	{GenreRock, []string{"rock", "punk", "alternative", "grunge", "indie"}},
	{GenreElectronic, []string{"electronic", "house", "techno", "trance", "edm", "dance", "dubstep"}},
	{GenrePop, []string{"pop", "r-n-b", "soul", "funk"}},
	{GenreHipHop, []string{"hip-hop", "rap"}},
	{GenreJazz, []string{"jazz", "blues", "reggae"}},
	{GenreClassical, []string{"classical", "acoustic", "ambient", "piano"}},
	{GenreMetal, []string{"metal"}},
}

// SuperGenre maps a raw genre string to its super-genre. An empty genre has no
// super-genre; anything unrecognised is GenreOther.
func SuperGenre(genre string) string {
	g := strings.ToLower(strings.TrimSpace(genre))
	if g == "" {
		return ""
	}
	for _, entry := range genreKeywords {
		for _, kw := range entry.keywords {
			if strings.Contains(g, kw) {
				return entry.superGenre
			}
		}
	}
	return GenreOther
}

// SuperGenreFromTags returns the super-genre of the first tag that maps to
// something other than GenreOther, falling back to GenreOther when tags exist
// but none match, and "" when there are no tags.
func SuperGenreFromTags(tags []string) string {
	fallback := ""
	for _, tag := range tags {
		switch sg := SuperGenre(tag); sg {
		case "":
		case GenreOther:
			fallback = GenreOther
		default:
			return sg
		}
	}
	return fallback
}

// LabelGenres fills SuperGenre from Genre for songs that lack one.
// Returns the number of songs updated.
func LabelGenres(songs []Song) int {
	n := 0
	for i := range songs {
		s := &songs[i]
		if s.SuperGenre != "" {
			continue
		}
		if sg := SuperGenre(s.Genre); sg != "" {
			s.SuperGenre = sg
			n++
		}
	}
	return n
}
