// Package oauth implements the Google authorization-code exchange used by
// the /users/google endpoints.
package oauth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"aquatrack/internal/config"
)

const userinfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

// Profile is the subset of the Google userinfo response the API consumes.
type Profile struct {
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

// GoogleClient exchanges authorization codes for Google profiles.
type GoogleClient struct {
	conf        *oauth2.Config
	userinfoURL string
}

// NewGoogleClient creates a client from the application configuration.
func NewGoogleClient(cfg *config.Config) *GoogleClient {
	return &GoogleClient{
		conf: &oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  cfg.GoogleRedirectURL,
			Scopes: []string{
				"https://www.googleapis.com/auth/userinfo.email",
				"https://www.googleapis.com/auth/userinfo.profile",
			},
			Endpoint: google.Endpoint,
		},
		userinfoURL: userinfoURL,
	}
}

// AuthURL returns the Google consent page URL for the given CSRF state.
func (g *GoogleClient) AuthURL(state string) string {
	return g.conf.AuthCodeURL(state, oauth2.AccessTypeOffline)
}

// FetchProfile performs the two chained outbound calls of the OAuth flow:
// code-for-token exchange, then profile fetch. Any non-success response from
// either call is fatal; there are no retries.
func (g *GoogleClient) FetchProfile(ctx context.Context, code string) (*Profile, error) {
	token, err := g.conf.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("google code exchange: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.userinfoURL, nil)
	if err != nil {
		return nil, fmt.Errorf("google userinfo request: %w", err)
	}

	resp, err := g.conf.Client(ctx, token).Do(req)
	if err != nil {
		return nil, fmt.Errorf("google userinfo fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("google userinfo fetch: unexpected status %d", resp.StatusCode)
	}

	var profile Profile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return nil, fmt.Errorf("google userinfo decode: %w", err)
	}
	if profile.Email == "" {
		return nil, fmt.Errorf("google userinfo: response carries no email")
	}

	return &profile, nil
}
