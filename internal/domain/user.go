package domain

import "time"

// User is an account. It holds a password credential, an external identity,
// or both. Username is globally unique and case-sensitive.
type User struct {
	ID           string    `json:"id"                 db:"id"`
	Username     string    `json:"username"           db:"username"`
	PasswordHash string    `json:"-"                  db:"password_hash"` // never serialized to JSON
	Provider     string    `json:"provider,omitempty" db:"provider"`
	ProviderID   string    `json:"-"                  db:"provider_id"`
	CreatedAt    time.Time `json:"createdAt"          db:"created_at"`
}

// HasPassword reports whether the account can log in with a password.
func (u *User) HasPassword() bool { return u.PasswordHash != "" }

// HasExternalIdentity reports whether an OAuth identity is linked.
func (u *User) HasExternalIdentity() bool { return u.ProviderID != "" }

// ExternalProfile is what an OAuth provider tells us about the person logging in.
type ExternalProfile struct {
	Provider   string
	ProviderID string
	// Username is the provider's suggestion (GitHub login, Google e-mail local part).
	Username  string
	Name      string
	Email     string
	AvatarURL string
}

// TokenPair holds the OAuth2 tokens returned after code exchange.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	IDToken      string `json:"id_token,omitempty"`
	ExpiresIn    int    `json:"expires_in"`
	TokenType    string `json:"token_type"`
}

// UserContext is the authenticated user context injected into request handlers.
type UserContext struct {
	UserID    string    `json:"id"`
	Username  string    `json:"username"`
	Provider  string    `json:"provider,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// NewUserContext trims a User down to what handlers may see.
func NewUserContext(u *User) *UserContext {
	return &UserContext{
		UserID:    u.ID,
		Username:  u.Username,
		Provider:  u.Provider,
		CreatedAt: u.CreatedAt,
	}
}
