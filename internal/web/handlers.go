package web

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/hex"
	"log"
	"net/http"
	"time"

	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2"

	"github.com/justestif/valora/internal/db"
	"github.com/justestif/valora/internal/questionnaire"
	"github.com/justestif/valora/internal/quizstore"
	"github.com/justestif/valora/internal/recommend"
	"github.com/justestif/valora/internal/snow"
	"github.com/justestif/valora/internal/spotify"
)

const (
	appTitle       = "Valora Music"
	oauthStateName = "oauth_state"
	oauthStateTTL  = 5 * time.Minute
)

// OAuth is the part of the Spotify authenticator the handlers use.
// *spotifyauth.Authenticator satisfies it.
type OAuth interface {
	AuthURL(state string, opts ...oauth2.AuthCodeOption) string
	Token(ctx context.Context, state string, r *http.Request, opts ...oauth2.AuthCodeOption) (*oauth2.Token, error)
}

// UserClient is a Spotify client acting for the signed-in user.
// *spotify.Client satisfies it.
type UserClient interface {
	recommend.Library
	recommend.PlaylistEditor
	CurrentUser(ctx context.Context) (spotify.User, error)
	Token() (*oauth2.Token, error)
}

// ClientFactory builds a UserClient from a user's token.
type ClientFactory func(ctx context.Context, token *oauth2.Token) UserClient

// SpotifyClients returns a ClientFactory backed by the Spotify Web API.
func SpotifyClients(auth *spotifyauth.Authenticator) ClientFactory {
	return func(ctx context.Context, token *oauth2.Token) UserClient {
		return spotify.NewUserClient(ctx, auth, token)
	}
}

// Recommender picks songs for a mood. *recommend.Service satisfies it.
type Recommender interface {
	Recommend(ctx context.Context, mood questionnaire.Mood, lib recommend.Library) (recommend.Result, error)
}

// UserRecorder records sign-ins. *db.UserRepository satisfies it.
type UserRecorder interface {
	UpsertLogin(ctx context.Context, user *db.User) error
}

// Handlers contains HTTP handlers for the web application.
type Handlers struct {
	auth        OAuth
	sessions    SessionManager
	quizzes     quizstore.Store
	recommender Recommender
	clients     ClientFactory
	users       UserRecorder
	templates   *Templates
	quizTTL     time.Duration
	rand        questionnaire.Rand
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(cfg ServerConfig, templates *Templates) *Handlers {
	return &Handlers{
		auth:        cfg.Auth,
		sessions:    cfg.Sessions,
		quizzes:     cfg.Quizzes,
		recommender: cfg.Recommender,
		clients:     cfg.Clients,
		users:       cfg.Users,
		templates:   templates,
		quizTTL:     cfg.SessionTTL,
		rand:        cfg.Rand,
	}
}

// Home handles the landing page (GET /). Signed-in users go straight to the
// remarks page.
func (h *Handlers) Home(w http.ResponseWriter, r *http.Request) {
	if h.sessions.GetFromRequest(r) != nil {
		http.Redirect(w, r, "/remarks", http.StatusFound)
		return
	}

	data := HomePageData{
		PageData: PageData{
			Title:       appTitle,
			CurrentPath: r.URL.Path,
			Snow:        snow.Landing,
		},
	}
	h.render(w, http.StatusOK, "home", data)
}

// Login initiates the Spotify OAuth flow (GET /auth/login).
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	state, err := generateOAuthState()
	if err != nil {
		http.Error(w, "Failed to generate state", http.StatusInternalServerError)
		return
	}

	setCookie(w, oauthStateName, state, oauthStateTTL)

	url := h.auth.AuthURL(state, spotifyauth.ShowDialog)
	http.Redirect(w, r, url, http.StatusTemporaryRedirect)
}

// Callback handles the OAuth callback from Spotify (GET /callback).
func (h *Handlers) Callback(w http.ResponseWriter, r *http.Request) {
	stateCookie, err := r.Cookie(oauthStateName)
	if err != nil {
		http.Error(w, "Missing state cookie", http.StatusBadRequest)
		return
	}

	state := r.URL.Query().Get("state")
	if state != stateCookie.Value {
		http.Error(w, "State mismatch", http.StatusBadRequest)
		return
	}
	clearCookie(w, oauthStateName)

	if errMsg := r.URL.Query().Get("error"); errMsg != "" {
		log.Printf("web: spotify auth error: %s", errMsg)
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}

	ctx := r.Context()
	token, err := h.auth.Token(ctx, state, r)
	if err != nil {
		log.Printf("web: exchanging code for token: %v", err)
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}

	user, err := h.clients(ctx, token).CurrentUser(ctx)
	if err != nil {
		log.Printf("web: %v", err)
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}

	if h.users != nil {
		if err := h.users.UpsertLogin(ctx, &db.User{ID: user.ID, DisplayName: user.DisplayName}); err != nil {
			log.Printf("web: %v", err)
			http.Error(w, "Failed to create session", http.StatusInternalServerError)
			return
		}
	}

	session, err := h.sessions.Create(ctx, token, user.ID, user.DisplayName)
	if err != nil {
		log.Printf("web: creating session: %v", err)
		http.Error(w, "Failed to create session", http.StatusInternalServerError)
		return
	}

	// A questionnaire left over from an earlier sign-in starts over.
	h.resetQuiz(w, r)
	h.sessions.SetCookie(w, session)
	http.Redirect(w, r, "/remarks", http.StatusFound)
}

// Logout clears the session and redirects to home (POST /auth/logout).
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	if session := h.sessions.GetFromRequest(r); session != nil {
		h.sessions.Delete(r.Context(), session.ID)
	}

	h.resetQuiz(w, r)
	h.sessions.ClearCookie(w)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// Remarks shows the introduction to the questionnaire (GET /remarks).
func (h *Handlers) Remarks(w http.ResponseWriter, r *http.Request) {
	session, ok := h.pageSession(w, r)
	if !ok {
		return
	}
	h.render(w, http.StatusOK, "remarks", h.pageData(r, session, "Before you start"))
}

// pageSession returns the signed-in session, or redirects to the landing page.
func (h *Handlers) pageSession(w http.ResponseWriter, r *http.Request) (*Session, bool) {
	session := h.sessions.GetFromRequest(r)
	if session == nil {
		http.Redirect(w, r, "/", http.StatusFound)
		return nil, false
	}
	return session, true
}

// userClient returns a Spotify client for the session. Call saveToken once
// done so a refreshed token is kept.
func (h *Handlers) userClient(ctx context.Context, session *Session) UserClient {
	return h.clients(ctx, session.Token)
}

func (h *Handlers) saveToken(ctx context.Context, session *Session, client UserClient) {
	token, err := client.Token()
	if err != nil || token == nil || session.Token == nil {
		return
	}
	if token.AccessToken != session.Token.AccessToken {
		h.sessions.UpdateToken(ctx, session.ID, token)
	}
}

func (h *Handlers) pageData(r *http.Request, session *Session, title string) PageData {
	data := PageData{
		Title:       title + " - " + appTitle,
		CurrentPath: r.URL.Path,
		Snow:        snow.Inner,
	}
	if session != nil {
		data.User = &UserData{ID: session.UserID, Name: session.UserName}
	}
	return data
}

// render executes a page into a buffer first so a template error never
// leaves a half-written page.
func (h *Handlers) render(w http.ResponseWriter, status int, page string, data any) {
	var buf bytes.Buffer
	if err := h.templates.Render(&buf, page, data); err != nil {
		log.Printf("web: rendering %s: %v", page, err)
		http.Error(w, "Failed to render template", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// generateOAuthState creates a random state string for OAuth.
func generateOAuthState() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
