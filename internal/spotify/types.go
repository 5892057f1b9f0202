package spotify

// Track holds the display details of a track.
type Track struct {
	ID         string
	Name       string
	Artist     string // Comma-separated artist names
	MainArtist string // First credited artist
	URL        string // Open-in-Spotify link
	AlbumArt   string // Largest album image, may be empty
	PreviewURL string // 30 second preview, may be empty
}

// User is a Spotify account.
type User struct {
	ID          string
	DisplayName string
}
