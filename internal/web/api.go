package web

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"unicode"
	"unicode/utf8"

	"github.com/justestif/valora/internal/questionnaire"
	"github.com/justestif/valora/internal/recommend"
	"github.com/justestif/valora/internal/spotify"
)

// maxJSONBody bounds request bodies on the JSON endpoints.
const maxJSONBody = 64 << 10

// errorResponse is the body of every failed JSON request.
type errorResponse struct {
	Error         string `json:"error"`
	LoginRequired bool   `json:"login_required,omitempty"`
}

type recommendationsRequest struct {
	Mood string `json:"mood"`
}

type playlistRequest struct {
	TrackIDs []string `json:"track_ids"`
	Mood     string   `json:"mood"`
}

type playlistResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Recommendations renders the results page (GET /recommendations?mood=).
// The songs themselves are fetched by the page from /get_recommendations.
func (h *Handlers) Recommendations(w http.ResponseWriter, r *http.Request) {
	session, ok := h.pageSession(w, r)
	if !ok {
		return
	}

	mood := r.URL.Query().Get("mood")
	if mood == "" {
		http.Redirect(w, r, "/questionnaire", http.StatusFound)
		return
	}

	data := RecommendationsPageData{
		PageData: h.pageData(r, session, "Your songs"),
		Mood:     mood,
	}
	data.BodyClass = moodClass(questionnaire.Mood(mood))
	h.render(w, http.StatusOK, "recommendations", data)
}

// GetRecommendations returns songs for a mood (POST /get_recommendations).
func (h *Handlers) GetRecommendations(w http.ResponseWriter, r *http.Request) {
	session := h.sessions.GetFromRequest(r)
	if session == nil {
		writeLoginRequired(w)
		return
	}

	var req recommendationsRequest
	if err := decodeJSON(w, r, &req); err != nil || req.Mood == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Mood not provided"})
		return
	}

	ctx := r.Context()
	client := h.userClient(ctx, session)
	res, err := h.recommender.Recommend(ctx, questionnaire.Mood(req.Mood), client)
	h.saveToken(ctx, session, client)
	if err != nil {
		log.Printf("web: recommendations for %q: %v", req.Mood, err)
		if h.loginLost(w, r, session, err) {
			return
		}
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "An internal server error occurred."})
		return
	}

	writeJSON(w, http.StatusOK, res)
}

// AddAllToPlaylist saves songs to the user's playlist for a mood
// (POST /add_all_to_playlist).
func (h *Handlers) AddAllToPlaylist(w http.ResponseWriter, r *http.Request) {
	session := h.sessions.GetFromRequest(r)
	if session == nil {
		writeLoginRequired(w)
		return
	}

	var req playlistRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Invalid request body"})
		return
	}
	if len(req.TrackIDs) == 0 {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Track IDs not provided"})
		return
	}
	if req.Mood == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Mood not provided"})
		return
	}

	ctx := r.Context()
	client := h.userClient(ctx, session)
	msg, err := recommend.SavePlaylist(ctx, client, req.TrackIDs, questionnaire.Mood(req.Mood))
	h.saveToken(ctx, session, client)
	if err != nil {
		log.Printf("web: saving playlist: %v", err)
		if h.loginLost(w, r, session, err) {
			return
		}
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: sentence(err.Error())})
		return
	}

	writeJSON(w, http.StatusOK, playlistResponse{Success: true, Message: msg})
}

// loginLost ends the session when Spotify no longer accepts its token and
// reports whether it did.
func (h *Handlers) loginLost(w http.ResponseWriter, r *http.Request, session *Session, err error) bool {
	if !errors.Is(err, recommend.ErrLoginRequired) && !spotify.IsUnauthorized(err) {
		return false
	}
	h.sessions.Delete(r.Context(), session.ID)
	h.sessions.ClearCookie(w)
	writeLoginRequired(w)
	return true
}

func writeLoginRequired(w http.ResponseWriter) {
	writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "User not logged in", LoginRequired: true})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	return json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody)).Decode(v)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("web: encoding response: %v", err)
	}
}

// sentence upper-cases the first letter of an error message.
func sentence(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
