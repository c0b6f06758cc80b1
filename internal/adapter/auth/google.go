package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/umyakar/a3-UtkuYakar/internal/domain"
)

var googleEndpoints = endpoints{
	auth:    "https://accounts.google.com/o/oauth2/v2/auth",
	token:   "https://oauth2.googleapis.com/token",
	profile: "https://www.googleapis.com/oauth2/v2/userinfo",
}

// GoogleProvider implements port.AuthProvider for Google OAuth2.
type GoogleProvider struct {
	clientID     string
	clientSecret string
	redirectURL  string
	endpoints    endpoints
	httpClient   *http.Client
}

// NewGoogleProvider creates a new Google OAuth2 provider.
func NewGoogleProvider(clientID, clientSecret, redirectURL string) *GoogleProvider {
	return &GoogleProvider{
		clientID:     clientID,
		clientSecret: clientSecret,
		redirectURL:  redirectURL,
		endpoints:    googleEndpoints,
		httpClient:   &http.Client{Timeout: 10 * time.Second},
	}
}

// ProviderName returns "google".
func (g *GoogleProvider) ProviderName() string {
	return "google"
}

// AuthURL returns the Google OAuth2 consent screen URL.
func (g *GoogleProvider) AuthURL(state string) string {
	params := url.Values{
		"client_id":     {g.clientID},
		"redirect_uri":  {g.redirectURL},
		"response_type": {"code"},
		"scope":         {"openid email profile"},
		"state":         {state},
	}
	return fmt.Sprintf("%s?%s", g.endpoints.auth, params.Encode())
}

// ExchangeCode exchanges an authorization code for tokens.
func (g *GoogleProvider) ExchangeCode(ctx context.Context, code string) (*domain.TokenPair, error) {
	data := url.Values{
		"client_id":     {g.clientID},
		"client_secret": {g.clientSecret},
		"code":          {code},
		"redirect_uri":  {g.redirectURL},
		"grant_type":    {"authorization_code"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoints.token, strings.NewReader(data.Encode()))
	if err != nil {
		return nil, fmt.Errorf("google: create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("google: token exchange: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("google: token exchange failed (%d)", resp.StatusCode)
	}

	var tokens domain.TokenPair
	if err := json.Unmarshal(body, &tokens); err != nil {
		return nil, fmt.Errorf("google: decode token response: %w", err)
	}
	if tokens.AccessToken == "" {
		return nil, fmt.Errorf("google: empty access token")
	}
	return &tokens, nil
}

// GetUserProfile fetches the Google user profile using an access token.
func (g *GoogleProvider) GetUserProfile(ctx context.Context, accessToken string) (*domain.ExternalProfile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.endpoints.profile, nil)
	if err != nil {
		return nil, fmt.Errorf("google: create profile request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("google: fetch profile: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("google: profile fetch failed (%d)", resp.StatusCode)
	}

	var profile struct {
		ID      string `json:"id"`
		Email   string `json:"email"`
		Name    string `json:"name"`
		Picture string `json:"picture"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return nil, fmt.Errorf("google: decode profile: %w", err)
	}
	if profile.ID == "" {
		return nil, fmt.Errorf("google: profile has no id")
	}

	return &domain.ExternalProfile{
		Provider:   "google",
		ProviderID: profile.ID,
		Username:   emailLocalPart(profile.Email),
		Name:       profile.Name,
		Email:      profile.Email,
		AvatarURL:  profile.Picture,
	}, nil
}

func emailLocalPart(email string) string {
	local, _, ok := strings.Cut(email, "@")
	if !ok {
		return ""
	}
	return local
}
