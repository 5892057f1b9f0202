package spotify

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/zmb3/spotify/v2"
)

// newTestClient points a Client at a local server standing in for the Web API.
func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return New(spotify.New(server.Client(), spotify.WithBaseURL(server.URL+"/")))
}

func TestConvertTrack(t *testing.T) {
	tests := []struct {
		name string
		full spotify.FullTrack
		want Track
	}{
		{
			name: "full details",
			full: spotify.FullTrack{
				SimpleTrack: spotify.SimpleTrack{
					ID:           "track123",
					Name:         "Test Song",
					Artists:      []spotify.SimpleArtist{{Name: "Artist One"}},
					ExternalURLs: map[string]string{"spotify": "https://open.spotify.com/track/track123"},
					PreviewURL:   "https://p.scdn.co/preview",
				},
				Album: spotify.SimpleAlbum{
					Images: []spotify.Image{{URL: "https://i.scdn.co/large"}, {URL: "https://i.scdn.co/small"}},
				},
			},
			want: Track{
				ID:         "track123",
				Name:       "Test Song",
				Artist:     "Artist One",
				MainArtist: "Artist One",
				URL:        "https://open.spotify.com/track/track123",
				AlbumArt:   "https://i.scdn.co/large",
				PreviewURL: "https://p.scdn.co/preview",
			},
		},
		{
			name: "multiple artists",
			full: spotify.FullTrack{
				SimpleTrack: spotify.SimpleTrack{
					ID:   "track456",
					Name: "Collab Track",
					Artists: []spotify.SimpleArtist{
						{Name: "Artist A"},
						{Name: "Artist B"},
						{Name: "Artist C"},
					},
				},
			},
			want: Track{ID: "track456", Name: "Collab Track", Artist: "Artist A, Artist B, Artist C", MainArtist: "Artist A"},
		},
		{
			name: "no artists no album art",
			full: spotify.FullTrack{
				SimpleTrack: spotify.SimpleTrack{ID: "track000", Name: "Unknown Track"},
			},
			want: Track{ID: "track000", Name: "Unknown Track"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := convertTrack(&tt.full)
			if got != tt.want {
				t.Errorf("convertTrack() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestChunks(t *testing.T) {
	tests := []struct {
		name  string
		total int
		size  int
		want  []int
	}{
		{"empty", 0, 100, nil},
		{"less than size", 50, 100, []int{50}},
		{"exactly size", 100, 100, []int{100}},
		{"more than size", 250, 100, []int{100, 100, 50}},
		{"lookup batches", 120, 50, []int{50, 50, 20}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ids := make([]int, tt.total)
			for i := range ids {
				ids[i] = i
			}

			var sizes []int
			next := 0
			for _, c := range chunks(ids, tt.size) {
				if c[0] != next {
					t.Errorf("chunk starts at %d, want %d", c[0], next)
				}
				next += len(c)
				sizes = append(sizes, len(c))
			}

			if fmt.Sprint(sizes) != fmt.Sprint(tt.want) {
				t.Errorf("chunk sizes = %v, want %v", sizes, tt.want)
			}
		})
	}
}

func TestGetTracks_BatchesAndSkipsFailures(t *testing.T) {
	var (
		mu      sync.Mutex
		batches [][]string
	)

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/tracks" {
			t.Errorf("unexpected path %s", r.URL.Path)
			http.NotFound(w, r)
			return
		}
		ids := strings.Split(r.URL.Query().Get("ids"), ",")

		mu.Lock()
		batches = append(batches, ids)
		n := len(batches)
		mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		if n == 2 {
			w.WriteHeader(http.StatusInternalServerError)
			fmt.Fprint(w, `{"error":{"status":500,"message":"boom"}}`)
			return
		}

		tracks := make([]any, len(ids))
		for i, id := range ids {
			if id == "id001" {
				continue // unknown to Spotify: null entry
			}
			tracks[i] = map[string]any{"id": id, "name": "Song " + id}
		}
		json.NewEncoder(w).Encode(map[string]any{"tracks": tracks})
	})

	ids := make([]string, 120)
	for i := range ids {
		ids[i] = fmt.Sprintf("id%03d", i)
	}

	tracks, err := client.GetTracks(context.Background(), ids)
	if err != nil {
		t.Fatalf("GetTracks() error = %v", err)
	}

	if len(batches) != 3 {
		t.Fatalf("made %d requests, want 3", len(batches))
	}
	for i, want := range []int{50, 50, 20} {
		if len(batches[i]) != want {
			t.Errorf("batch %d has %d ids, want %d", i, len(batches[i]), want)
		}
	}

	// 50 - 1 null from the first batch, nothing from the failed second, 20 from the third.
	if len(tracks) != 69 {
		t.Fatalf("got %d tracks, want 69", len(tracks))
	}
	if tracks[0].ID != "id000" || tracks[1].ID != "id002" || tracks[49].ID != "id100" {
		t.Errorf("tracks out of order: %s, %s, %s", tracks[0].ID, tracks[1].ID, tracks[49].ID)
	}
}

func TestAddTracksToPlaylist_Batches(t *testing.T) {
	var sizes []int

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/playlists/pl1/tracks" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		var body struct {
			URIs []string `json:"uris"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decoding body: %v", err)
		}
		sizes = append(sizes, len(body.URIs))

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		fmt.Fprint(w, `{"snapshot_id":"snap"}`)
	})

	ids := make([]string, 250)
	for i := range ids {
		ids[i] = fmt.Sprintf("t%d", i)
	}

	if err := client.AddTracksToPlaylist(context.Background(), "pl1", ids); err != nil {
		t.Fatalf("AddTracksToPlaylist() error = %v", err)
	}
	if fmt.Sprint(sizes) != "[100 100 50]" {
		t.Errorf("batch sizes = %v, want [100 100 50]", sizes)
	}
}

func TestAddTracksToPlaylist_Empty(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
	})

	if err := client.AddTracksToPlaylist(context.Background(), "pl1", nil); err != nil {
		t.Errorf("AddTracksToPlaylist() error = %v", err)
	}
}

func TestFindPlaylist(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/me/playlists" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("limit"); got != "50" {
			t.Errorf("limit = %q, want 50", got)
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"items":[
			{"id":"a","name":"Calm/Peaceful: Valora Music Recommendation"},
			{"id":"b","name":"Happy/Energetic: Valora Music Recommendation"}
		],"total":2}`)
	})

	id, ok, err := client.FindPlaylist(context.Background(), "Happy/Energetic: Valora Music Recommendation", 50)
	if err != nil {
		t.Fatalf("FindPlaylist() error = %v", err)
	}
	if !ok || id != "b" {
		t.Errorf("FindPlaylist() = %q, %v, want b, true", id, ok)
	}

	_, ok, err = client.FindPlaylist(context.Background(), "Sad/Melancholy: Valora Music Recommendation", 50)
	if err != nil || ok {
		t.Errorf("FindPlaylist() for missing name = %v, %v", ok, err)
	}
}

func TestCurrentUser(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/me" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"id":"user1","display_name":"Ada"}`)
	})

	user, err := client.CurrentUser(context.Background())
	if err != nil {
		t.Fatalf("CurrentUser() error = %v", err)
	}
	if user != (User{ID: "user1", DisplayName: "Ada"}) {
		t.Errorf("CurrentUser() = %+v", user)
	}
}

func TestIsUnauthorized(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"error":{"status":401,"message":"The access token expired"}}`)
	})

	_, err := client.CurrentUser(context.Background())
	if err == nil {
		t.Fatal("CurrentUser() should fail")
	}
	if !IsUnauthorized(err) {
		t.Errorf("IsUnauthorized(%v) = false, want true", err)
	}
	if IsUnauthorized(fmt.Errorf("network down")) {
		t.Error("IsUnauthorized(plain error) = true")
	}
}
