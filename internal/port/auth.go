package port

import (
	"context"

	"github.com/umyakar/a3-UtkuYakar/internal/domain"
)

// AuthProvider abstracts the OAuth2 identity provider.
// Implementations handle token exchange and user profile retrieval
// for a specific provider (Google, GitHub, etc.).
type AuthProvider interface {
	// ProviderName returns the name of this provider (e.g. "google", "github").
	ProviderName() string

	// AuthURL returns the full OAuth2 authorization URL for redirecting the user.
	AuthURL(state string) string

	// ExchangeCode exchanges an authorization code for an access/refresh token pair.
	ExchangeCode(ctx context.Context, code string) (*domain.TokenPair, error)

	// GetUserProfile fetches the authenticated user's profile from the provider.
	GetUserProfile(ctx context.Context, accessToken string) (*domain.ExternalProfile, error)
}

// AuthProviderRegistry holds the configured AuthProvider implementations keyed by name.
type AuthProviderRegistry map[string]AuthProvider

// KnownProviders are the providers this server has adapters for, configured or not.
var KnownProviders = []string{"github", "google"}

// StateSigner issues and checks the OAuth "state" parameter. Issue returns the
// state for the provider redirect and a nonce to pin in the browser.
type StateSigner interface {
	Issue(provider string) (state, nonce string, err error)
	Verify(state, provider, nonce string) error
}

// PasswordHasher is a one-way password hash.
type PasswordHasher interface {
	Hash(password string) (string, error)
	// Compare returns ErrIncorrectPassword on mismatch.
	Compare(hash, password string) error
}
