// Package spotify provides a wrapper around the Spotify Web API.
package spotify

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/zmb3/spotify/v2"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// Client wraps the Spotify API client with convenience methods.
type Client struct {
	api *spotify.Client
}

// New creates a new Spotify client wrapper.
// The underlying client should already be authenticated.
func New(api *spotify.Client) *Client {
	return &Client{api: api}
}

// NewUserClient creates a client acting for the user who owns token. The
// token is refreshed on demand; read it back with Token to persist it.
func NewUserClient(ctx context.Context, auth *spotifyauth.Authenticator, token *oauth2.Token) *Client {
	return New(spotify.New(auth.Client(ctx, token), spotify.WithRetry(true)))
}

// NewAppClient creates a client authenticated as the application itself
// (client credentials flow). It can read the catalog but not user data.
func NewAppClient(ctx context.Context, clientID, clientSecret string) (*Client, error) {
	cfg := &clientcredentials.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenURL:     spotifyauth.TokenURL,
	}

	// Fail fast on bad credentials.
	if _, err := cfg.Token(ctx); err != nil {
		return nil, fmt.Errorf("getting app token: %w", err)
	}

	// The token source renews itself, so it must outlive ctx.
	httpClient := cfg.Client(context.WithoutCancel(ctx))
	return New(spotify.New(httpClient, spotify.WithRetry(true))), nil
}

// UserID returns the current user's Spotify ID.
func (c *Client) UserID(ctx context.Context) (string, error) {
	user, err := c.api.CurrentUser(ctx)
	if err != nil {
		return "", fmt.Errorf("getting current user: %w", err)
	}
	return user.ID, nil
}

// CurrentUser returns the signed-in user's profile.
func (c *Client) CurrentUser(ctx context.Context) (User, error) {
	user, err := c.api.CurrentUser(ctx)
	if err != nil {
		return User{}, fmt.Errorf("getting current user: %w", err)
	}
	return User{ID: user.ID, DisplayName: user.DisplayName}, nil
}

// Token returns the current OAuth token, which may have been refreshed since
// the client was created.
func (c *Client) Token() (*oauth2.Token, error) {
	return c.api.Token()
}

// IsUnauthorized reports whether err is Spotify rejecting the user's token.
func IsUnauthorized(err error) bool {
	var apiErr spotify.Error
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized
}

// chunks splits ids into consecutive batches of at most size elements.
func chunks[T any](ids []T, size int) [][]T {
	var out [][]T
	for i := 0; i < len(ids); i += size {
		end := min(i+size, len(ids))
		out = append(out, ids[i:end])
	}
	return out
}

func toIDs(ids []string) []spotify.ID {
	out := make([]spotify.ID, len(ids))
	for i, id := range ids {
		out[i] = spotify.ID(id)
	}
	return out
}
