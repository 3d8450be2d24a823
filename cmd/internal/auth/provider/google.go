package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const defaultUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

// userInfoBodyLimit caps the identity response we are willing to parse.
const userInfoBodyLimit = 1 << 20

// GoogleConfig holds the Google OAuth application credentials.
type GoogleConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

// Google implements Provider against Google's OAuth 2.0 endpoints.
type Google struct {
	oauth       *oauth2.Config
	userInfoURL string
}

// GoogleOption configures Google.
type GoogleOption func(*Google) error

// WithUserInfoURL overrides the identity endpoint. Used by tests.
func WithUserInfoURL(url string) GoogleOption {
	return func(g *Google) error {
		url = strings.TrimSpace(url)
		if url == "" {
			return ErrInvalidInput
		}
		g.userInfoURL = url
		return nil
	}
}

// WithEndpoint overrides the OAuth token/auth endpoints. Used by tests.
func WithEndpoint(ep oauth2.Endpoint) GoogleOption {
	return func(g *Google) error {
		g.oauth.Endpoint = ep
		return nil
	}
}

// NewGoogle constructs a Google provider.
func NewGoogle(cfg GoogleConfig, opts ...GoogleOption) (*Google, error) {
	if strings.TrimSpace(cfg.ClientID) == "" ||
		strings.TrimSpace(cfg.ClientSecret) == "" ||
		strings.TrimSpace(cfg.RedirectURL) == "" {
		return nil, fmt.Errorf("%w: client id, client secret, and redirect url are required", ErrConfig)
	}

	g := &Google{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes: []string{
				"https://www.googleapis.com/auth/userinfo.email",
				"https://www.googleapis.com/auth/userinfo.profile",
			},
			Endpoint: google.Endpoint,
		},
		userInfoURL: defaultUserInfoURL,
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(g); err != nil {
			return nil, err
		}
	}
	return g, nil
}

// AuthCodeURL builds the consent-page URL for state.
func (g *Google) AuthCodeURL(state string) string {
	return g.oauth.AuthCodeURL(state)
}

// Identify exchanges code and fetches the verified identity behind it.
func (g *Google) Identify(ctx context.Context, code string) (Identity, error) {
	if g == nil || g.oauth == nil {
		return Identity{}, ErrInvalidInput
	}
	if err := ctx.Err(); err != nil {
		return Identity{}, err
	}
	code = strings.TrimSpace(code)
	if code == "" {
		return Identity{}, ErrInvalidInput
	}

	tok, err := g.oauth.Exchange(ctx, code)
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %v", ErrExchangeFailed, err)
	}

	resp, err := g.oauth.Client(ctx, tok).Get(g.userInfoURL)
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %v", ErrExchangeFailed, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return Identity{}, fmt.Errorf("%w: userinfo status %d", ErrExchangeFailed, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, userInfoBodyLimit))
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %v", ErrExchangeFailed, err)
	}

	var raw struct {
		Email         string `json:"email"`
		VerifiedEmail bool   `json:"verified_email"`
		Name          string `json:"name"`
		Picture       string `json:"picture"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return Identity{}, fmt.Errorf("%w: %v", ErrExchangeFailed, err)
	}
	if strings.TrimSpace(raw.Email) == "" {
		return Identity{}, fmt.Errorf("%w: identity without email", ErrExchangeFailed)
	}

	return Identity{
		Email:         raw.Email,
		EmailVerified: raw.VerifiedEmail,
		Name:          raw.Name,
		Picture:       raw.Picture,
	}, nil
}
