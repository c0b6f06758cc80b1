package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/umyakar/a3-UtkuYakar/internal/domain"
)

// endpoints are the three URLs an OAuth provider talks to.
type endpoints struct {
	auth    string
	token   string
	profile string
}

var githubEndpoints = endpoints{
	auth:    "https://github.com/login/oauth/authorize",
	token:   "https://github.com/login/oauth/access_token",
	profile: "https://api.github.com/user",
}

// GitHubProvider implements port.AuthProvider for GitHub OAuth.
type GitHubProvider struct {
	clientID     string
	clientSecret string
	redirectURL  string
	endpoints    endpoints
	httpClient   *http.Client
}

// NewGitHubProvider creates a new GitHub OAuth provider.
func NewGitHubProvider(clientID, clientSecret, redirectURL string) *GitHubProvider {
	return &GitHubProvider{
		clientID:     clientID,
		clientSecret: clientSecret,
		redirectURL:  redirectURL,
		endpoints:    githubEndpoints,
		httpClient:   &http.Client{Timeout: 10 * time.Second},
	}
}

// ProviderName returns "github".
func (g *GitHubProvider) ProviderName() string {
	return "github"
}

// AuthURL returns the GitHub OAuth consent screen URL.
func (g *GitHubProvider) AuthURL(state string) string {
	params := url.Values{
		"client_id":    {g.clientID},
		"redirect_uri": {g.redirectURL},
		"scope":        {"read:user"},
		"state":        {state},
	}
	return fmt.Sprintf("%s?%s", g.endpoints.auth, params.Encode())
}

// ExchangeCode exchanges an authorization code for tokens.
func (g *GitHubProvider) ExchangeCode(ctx context.Context, code string) (*domain.TokenPair, error) {
	data := url.Values{
		"client_id":     {g.clientID},
		"client_secret": {g.clientSecret},
		"code":          {code},
		"redirect_uri":  {g.redirectURL},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoints.token, strings.NewReader(data.Encode()))
	if err != nil {
		return nil, fmt.Errorf("github: create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("github: token exchange: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("github: token exchange failed (%d)", resp.StatusCode)
	}

	// GitHub reports a bad code with 200 and an "error" field.
	var tokenResp struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
		Error       string `json:"error"`
		ErrorDesc   string `json:"error_description"`
	}
	if err := json.Unmarshal(body, &tokenResp); err != nil {
		return nil, fmt.Errorf("github: decode token response: %w", err)
	}
	if tokenResp.Error != "" {
		return nil, fmt.Errorf("github: %s: %s", tokenResp.Error, tokenResp.ErrorDesc)
	}
	if tokenResp.AccessToken == "" {
		return nil, fmt.Errorf("github: empty access token")
	}

	return &domain.TokenPair{
		AccessToken: tokenResp.AccessToken,
		TokenType:   tokenResp.TokenType,
	}, nil
}

// GetUserProfile fetches the GitHub user profile using an access token.
func (g *GitHubProvider) GetUserProfile(ctx context.Context, accessToken string) (*domain.ExternalProfile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.endpoints.profile, nil)
	if err != nil {
		return nil, fmt.Errorf("github: create profile request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("github: fetch profile: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("github: profile fetch failed (%d)", resp.StatusCode)
	}

	var profile struct {
		ID        int64  `json:"id"`
		Login     string `json:"login"`
		Name      string `json:"name"`
		Email     string `json:"email"`
		AvatarURL string `json:"avatar_url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return nil, fmt.Errorf("github: decode profile: %w", err)
	}
	if profile.ID == 0 {
		return nil, fmt.Errorf("github: profile has no id")
	}

	return &domain.ExternalProfile{
		Provider:   "github",
		ProviderID: strconv.FormatInt(profile.ID, 10),
		Username:   profile.Login,
		Name:       profile.Name,
		Email:      profile.Email,
		AvatarURL:  profile.AvatarURL,
	}, nil
}
