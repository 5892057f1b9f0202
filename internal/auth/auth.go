package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/zmb3/spotify/v2"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2"
)

const callbackTimeout = 2 * time.Minute

var (
	// ErrMissingCredentials is returned when the client ID or secret is empty.
	ErrMissingCredentials = errors.New("missing Spotify client ID or secret")

	// ErrAuthTimeout is returned when the OAuth callback is not received in time.
	ErrAuthTimeout = errors.New("authentication timed out waiting for callback")

	// ErrStateMismatch is returned when the OAuth state parameter doesn't match.
	ErrStateMismatch = errors.New("OAuth state mismatch")
)

// Scopes are the permissions Valora asks for: reading liked songs and writing
// playlists.
var Scopes = []string{
	spotifyauth.ScopeUserLibraryRead,
	spotifyauth.ScopePlaylistModifyPublic,
	spotifyauth.ScopePlaylistModifyPrivate,
}

// Credentials identify the Spotify application.
type Credentials struct {
	ClientID     string
	ClientSecret string
	// RedirectURL must match the Spotify app configuration. Spotify requires
	// an explicit loopback IP rather than "localhost" for local development.
	RedirectURL string
}

// NewSpotifyAuth builds the OAuth authenticator shared by the web server and
// the terminal client.
func NewSpotifyAuth(creds Credentials) (*spotifyauth.Authenticator, error) {
	if creds.ClientID == "" || creds.ClientSecret == "" {
		return nil, ErrMissingCredentials
	}
	return spotifyauth.New(
		spotifyauth.WithClientID(creds.ClientID),
		spotifyauth.WithClientSecret(creds.ClientSecret),
		spotifyauth.WithRedirectURL(creds.RedirectURL),
		spotifyauth.WithScopes(Scopes...),
	), nil
}

// Authenticator runs the OAuth flow for the terminal client and caches the
// resulting token on disk.
type Authenticator struct {
	auth     *spotifyauth.Authenticator
	cache    *TokenCache
	redirect *url.URL
	out      io.Writer
}

// Option configures an Authenticator.
type Option func(*Authenticator)

// WithOutput sets where login instructions are printed. Defaults to stdout.
func WithOutput(w io.Writer) Option {
	return func(a *Authenticator) { a.out = w }
}

// New creates an Authenticator. The callback server listens on the host and
// path of creds.RedirectURL.
func New(creds Credentials, cache *TokenCache, opts ...Option) (*Authenticator, error) {
	sa, err := NewSpotifyAuth(creds)
	if err != nil {
		return nil, err
	}

	redirect, err := url.Parse(creds.RedirectURL)
	if err != nil || redirect.Host == "" {
		return nil, fmt.Errorf("invalid redirect URL %q", creds.RedirectURL)
	}

	a := &Authenticator{
		auth:     sa,
		cache:    cache,
		redirect: redirect,
		out:      os.Stdout,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// Authenticate returns an authenticated Spotify client.
// It first checks for a cached token and uses it if valid/refreshable.
// Otherwise, it runs the full OAuth flow.
func (a *Authenticator) Authenticate(ctx context.Context) (*spotify.Client, error) {
	token, err := a.cache.Load()
	if err != nil {
		return nil, fmt.Errorf("loading cached token: %w", err)
	}

	if token != nil {
		// oauth2 refreshes the token on demand.
		client := spotify.New(a.auth.Client(ctx, token), spotify.WithRetry(true))

		if _, err := client.CurrentUser(ctx); err == nil {
			newToken, tokenErr := client.Token()
			if tokenErr == nil && newToken.AccessToken != token.AccessToken {
				_ = a.cache.Save(newToken)
			}
			return client, nil
		}

		fmt.Fprintln(a.out, "Cached token invalid, starting new authentication...")
	}

	return a.runOAuthFlow(ctx)
}

// runOAuthFlow performs the full OAuth authorization code flow.
func (a *Authenticator) runOAuthFlow(ctx context.Context) (*spotify.Client, error) {
	state, err := generateState()
	if err != nil {
		return nil, fmt.Errorf("generating state: %w", err)
	}

	tokenCh := make(chan *oauth2.Token, 1)
	errCh := make(chan error, 1)

	path := a.redirect.Path
	if path == "" {
		path = "/"
	}
	mux := http.NewServeMux()
	mux.HandleFunc(path, func(w http.ResponseWriter, r *http.Request) {
		a.handleCallback(w, r, state, tokenCh, errCh)
	})

	server := &http.Server{
		Addr:              a.redirect.Host,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("callback server error: %w", err)
		}
	}()

	fmt.Fprintln(a.out, "\nTo authenticate, open this URL in your browser:")
	fmt.Fprintln(a.out, a.auth.AuthURL(state))
	fmt.Fprintln(a.out, "\nWaiting for authentication...")

	var token *oauth2.Token
	select {
	case token = <-tokenCh:
	case err := <-errCh:
		_ = server.Shutdown(context.WithoutCancel(ctx))
		return nil, err
	case <-time.After(callbackTimeout):
		_ = server.Shutdown(context.WithoutCancel(ctx))
		return nil, ErrAuthTimeout
	case <-ctx.Done():
		_ = server.Shutdown(context.WithoutCancel(ctx))
		return nil, ctx.Err()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = server.Shutdown(shutdownCtx)

	if err := a.cache.Save(token); err != nil {
		// Auth succeeded; the next run just asks again.
		fmt.Fprintf(a.out, "Warning: failed to cache token: %v\n", err)
	}

	return spotify.New(a.auth.Client(ctx, token), spotify.WithRetry(true)), nil
}

// handleCallback processes the OAuth callback from Spotify.
func (a *Authenticator) handleCallback(w http.ResponseWriter, r *http.Request, expectedState string, tokenCh chan<- *oauth2.Token, errCh chan<- error) {
	if r.URL.Query().Get("state") != expectedState {
		http.Error(w, "State mismatch", http.StatusBadRequest)
		errCh <- ErrStateMismatch
		return
	}

	if errMsg := r.URL.Query().Get("error"); errMsg != "" {
		http.Error(w, "Authentication failed: "+errMsg, http.StatusBadRequest)
		errCh <- fmt.Errorf("spotify auth error: %s", errMsg)
		return
	}

	token, err := a.auth.Token(r.Context(), expectedState, r)
	if err != nil {
		http.Error(w, "Failed to get token", http.StatusInternalServerError)
		errCh <- fmt.Errorf("exchanging code for token: %w", err)
		return
	}

	w.Header().Set("Content-Type", "text/html")
	fmt.Fprint(w, `<!DOCTYPE html>
<html>
<head><title>Valora</title></head>
<body>
<h1>You're signed in to Valora.</h1>
<p>You can close this window and return to the terminal.</p>
</body>
</html>`)

	tokenCh <- token
}

// generateState creates a random state string for OAuth.
func generateState() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
