// Package oauth implements the federated identity providers offered on the
// sign-in page. A provider turns an authorisation code into a
// models.FederatedAssertion; everything cryptographic is left to the
// provider and golang.org/x/oauth2.
package oauth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/insightdesk/internal/server/config"
	"github.com/dmitrijs2005/insightdesk/internal/server/models"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"
	"golang.org/x/oauth2/google"
)

// CallbackPath is the route prefix providers redirect back to.
const CallbackPath = "/api/auth/callback/"

// Provider is one federated sign-in option.
type Provider interface {
	ID() string
	DisplayName() string
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (*models.FederatedAssertion, error)
}

type fetchUserFunc func(ctx context.Context, client *http.Client, p *oauth2Provider) (*models.FederatedAssertion, error)

type oauth2Provider struct {
	id          string
	displayName string
	cfg         *oauth2.Config
	userInfoURL string
	emailsURL   string
	httpClient  *http.Client
	fetchUser   fetchUserFunc
}

// Option adjusts a provider; used to point it at test servers.
type Option func(*oauth2Provider)

// WithEndpoint overrides the authorisation and token URLs.
func WithEndpoint(e oauth2.Endpoint) Option {
	return func(p *oauth2Provider) { p.cfg.Endpoint = e }
}

// WithUserInfoURL overrides the profile endpoint (and, for GitHub, derives
// the emails endpoint from it).
func WithUserInfoURL(u string) Option {
	return func(p *oauth2Provider) {
		p.userInfoURL = u
		if p.emailsURL != "" {
			p.emailsURL = strings.TrimSuffix(u, "/") + "/emails"
		}
	}
}

// WithHTTPClient sets the client used for token exchange and profile calls.
func WithHTTPClient(c *http.Client) Option {
	return func(p *oauth2Provider) { p.httpClient = c }
}

// NewGoogle returns the Google provider.
func NewGoogle(clientID, clientSecret, redirectURL string, opts ...Option) Provider {
	p := &oauth2Provider{
		id:          "google",
		displayName: "Google",
		cfg: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			Endpoint:     google.Endpoint,
			RedirectURL:  redirectURL,
			Scopes:       []string{"openid", "email", "profile"},
		},
		userInfoURL: "https://www.googleapis.com/oauth2/v2/userinfo",
		fetchUser:   fetchGoogleUser,
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// NewGitHub returns the GitHub provider.
func NewGitHub(clientID, clientSecret, redirectURL string, opts ...Option) Provider {
	p := &oauth2Provider{
		id:          "github",
		displayName: "GitHub",
		cfg: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			Endpoint:     github.Endpoint,
			RedirectURL:  redirectURL,
			Scopes:       []string{"read:user", "user:email"},
		},
		userInfoURL: "https://api.github.com/user",
		emailsURL:   "https://api.github.com/user/emails",
		fetchUser:   fetchGitHubUser,
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// FromConfig returns the providers whose client credentials are configured,
// Google first.
func FromConfig(cfg *config.Config, opts ...Option) []Provider {
	base := strings.TrimSuffix(cfg.BaseURL, "/")
	var out []Provider
	if cfg.GoogleClientID != "" && cfg.GoogleClientSecret != "" {
		out = append(out, NewGoogle(cfg.GoogleClientID, cfg.GoogleClientSecret, base+CallbackPath+"google", opts...))
	}
	if cfg.GitHubClientID != "" && cfg.GitHubClientSecret != "" {
		out = append(out, NewGitHub(cfg.GitHubClientID, cfg.GitHubClientSecret, base+CallbackPath+"github", opts...))
	}
	return out
}

func (p *oauth2Provider) ID() string          { return p.id }
func (p *oauth2Provider) DisplayName() string { return p.displayName }

func (p *oauth2Provider) AuthCodeURL(state string) string {
	return p.cfg.AuthCodeURL(state)
}

func (p *oauth2Provider) Exchange(ctx context.Context, code string) (*models.FederatedAssertion, error) {
	if code == "" {
		return nil, fmt.Errorf("%s: missing authorization code", p.id)
	}
	if p.httpClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, p.httpClient)
	}

	token, err := p.cfg.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%s: token exchange failed: %w", p.id, err)
	}

	client := p.cfg.Client(ctx, token)
	assertion, err := p.fetchUser(ctx, client, p)
	if err != nil {
		return nil, fmt.Errorf("%s: fetch user info: %w", p.id, err)
	}
	assertion.Provider = p.id
	return assertion, nil
}

func getJSON(ctx context.Context, client *http.Client, url string, dst any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s returned status %d", url, resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(dst)
}

func fetchGoogleUser(ctx context.Context, client *http.Client, p *oauth2Provider) (*models.FederatedAssertion, error) {
	var data struct {
		ID            string `json:"id"`
		Email         string `json:"email"`
		VerifiedEmail *bool  `json:"verified_email"`
		Name          string `json:"name"`
	}
	if err := getJSON(ctx, client, p.userInfoURL, &data); err != nil {
		return nil, err
	}
	if data.VerifiedEmail != nil && !*data.VerifiedEmail {
		return nil, fmt.Errorf("email %q is not verified", data.Email)
	}
	return &models.FederatedAssertion{Subject: data.ID, Email: data.Email, Name: data.Name}, nil
}

func fetchGitHubUser(ctx context.Context, client *http.Client, p *oauth2Provider) (*models.FederatedAssertion, error) {
	var data struct {
		ID    int64  `json:"id"`
		Login string `json:"login"`
		Email string `json:"email"`
		Name  string `json:"name"`
	}
	if err := getJSON(ctx, client, p.userInfoURL, &data); err != nil {
		return nil, err
	}

	email := data.Email
	if email == "" {
		var emails []struct {
			Email    string `json:"email"`
			Primary  bool   `json:"primary"`
			Verified bool   `json:"verified"`
		}
		if err := getJSON(ctx, client, p.emailsURL, &emails); err == nil {
			for _, e := range emails {
				if !e.Verified {
					continue
				}
				if e.Primary {
					email = e.Email
					break
				}
				if email == "" {
					email = e.Email
				}
			}
		}
	}

	name := data.Name
	if name == "" {
		name = data.Login
	}

	return &models.FederatedAssertion{Subject: fmt.Sprintf("%d", data.ID), Email: email, Name: name}, nil
}
