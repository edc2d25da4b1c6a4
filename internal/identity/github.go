package identity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/endpoints"
)

const githubUserURL = "https://api.github.com/user"

// GitHubConfig carries the OAuth application credentials.
type GitHubConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

// githubProvider implements Provider against the GitHub OAuth endpoints.
type githubProvider struct {
	oauth *oauth2.Config
}

// NewGitHubProvider creates a GitHub-backed identity provider.
func NewGitHubProvider(config GitHubConfig) (Provider, error) {
	if config.ClientID == "" || config.ClientSecret == "" {
		return nil, fmt.Errorf("github oauth client id and secret are required")
	}
	return &githubProvider{
		oauth: &oauth2.Config{
			ClientID:     config.ClientID,
			ClientSecret: config.ClientSecret,
			RedirectURL:  config.RedirectURL,
			Scopes:       []string{"read:user", "user:email"},
			Endpoint:     endpoints.GitHub,
		},
	}, nil
}

// AuthCodeURL builds the GitHub authorization URL.
func (p *githubProvider) AuthCodeURL(state string) string {
	return p.oauth.AuthCodeURL(state)
}

type githubUserResponse struct {
	ID    int64  `json:"id"`
	Login string `json:"login"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Exchange trades the authorization code for an access token, then fetches
// the authenticated user's profile. The access token never leaves this
// method.
func (p *githubProvider) Exchange(ctx context.Context, code string) (*Identity, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, &http.Client{Timeout: 10 * time.Second})

	token, err := p.oauth.Exchange(ctx, code)
	if err != nil {
		// A RetrieveError means GitHub answered and refused the code;
		// anything else is a transport or protocol failure.
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) {
			return nil, ErrExchangeFailed
		}
		return nil, fmt.Errorf("%w: %v", ErrProviderError, err)
	}
	if !token.Valid() {
		return nil, ErrExchangeFailed
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, githubUserURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := p.oauth.Client(ctx, token).Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProviderError, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: user endpoint returned %d", ErrProviderError, resp.StatusCode)
	}

	var user githubUserResponse
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProviderError, err)
	}

	displayName := user.Name
	if displayName == "" {
		displayName = user.Login
	}
	return &Identity{
		ID:          fmt.Sprintf("%d", user.ID),
		Username:    user.Login,
		DisplayName: displayName,
		Email:       user.Email,
	}, nil
}
