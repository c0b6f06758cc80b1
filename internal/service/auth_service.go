package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/umyakar/a3-UtkuYakar/internal/domain"
	"github.com/umyakar/a3-UtkuYakar/internal/port"
	"github.com/umyakar/a3-UtkuYakar/pkg/config"
)

// maxPasswordBytes is bcrypt's input limit.
const maxPasswordBytes = 72

// Login is the outcome of a successful password or OAuth login.
type Login struct {
	User    *domain.User
	Created bool
	// Token is the raw session token for the cookie. Only its hash is stored.
	Token     string
	ExpiresAt time.Time
}

// AuthService handles the authentication flow.
type AuthService struct {
	providers  port.AuthProviderRegistry
	identity   *IdentityService
	users      port.UserStore
	sessions   port.SessionStore
	state      port.StateSigner
	sessionTTL time.Duration
	now        func() time.Time
}

// NewAuthService creates a new authentication service.
func NewAuthService(
	providers port.AuthProviderRegistry,
	identity *IdentityService,
	users port.UserStore,
	sessions port.SessionStore,
	state port.StateSigner,
	cfg *config.Config,
) *AuthService {
	return &AuthService{
		providers:  providers,
		identity:   identity,
		users:      users,
		sessions:   sessions,
		state:      state,
		sessionTTL: cfg.SessionTTL,
		now:        time.Now,
	}
}

// Providers lists the configured OAuth providers, sorted.
func (s *AuthService) Providers() []string {
	names := make([]string, 0, len(s.providers))
	for name := range s.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (s *AuthService) provider(name string) (port.AuthProvider, error) {
	if p, ok := s.providers[name]; ok {
		return p, nil
	}
	if slices.Contains(port.KnownProviders, name) {
		return nil, fmt.Errorf("%s: %w", name, port.ErrProviderNotConfigured)
	}
	return nil, fmt.Errorf("%s: %w", name, port.ErrUnknownProvider)
}

// GetAuthURL returns the provider redirect and the nonce the browser must
// present on callback.
func (s *AuthService) GetAuthURL(providerName string) (string, string, error) {
	provider, err := s.provider(providerName)
	if err != nil {
		return "", "", err
	}
	state, nonce, err := s.state.Issue(providerName)
	if err != nil {
		return "", "", fmt.Errorf("issue state: %w", err)
	}
	return provider.AuthURL(state), nonce, nil
}

// HandleCallback processes the OAuth2 callback, exchanges the code, resolves
// the account and starts a session.
func (s *AuthService) HandleCallback(ctx context.Context, providerName, code, state, nonce string) (*Login, error) {
	provider, err := s.provider(providerName)
	if err != nil {
		return nil, err
	}
	if err := s.state.Verify(state, providerName, nonce); err != nil {
		return nil, fmt.Errorf("%w: %w", port.ErrUpstreamAuth, err)
	}
	if code == "" {
		return nil, fmt.Errorf("%w: missing code", port.ErrUpstreamAuth)
	}

	tokens, err := provider.ExchangeCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%w: exchange code: %w", port.ErrUpstreamAuth, err)
	}

	profile, err := provider.GetUserProfile(ctx, tokens.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("%w: get profile: %w", port.ErrUpstreamAuth, err)
	}

	res, err := s.identity.ResolveExternal(ctx, profile)
	if err != nil {
		return nil, fmt.Errorf("resolve identity: %w", err)
	}

	login, err := s.startSession(ctx, res)
	if err != nil {
		return nil, err
	}
	slog.InfoContext(ctx, "user authenticated", "user_id", res.User.ID, "provider", providerName, "created", res.Created)
	return login, nil
}

// Login authenticates with a password. An unseen username is registered.
func (s *AuthService) Login(ctx context.Context, username, password string) (*Login, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, port.Invalid("missing credentials")
	}
	if len(password) > maxPasswordBytes {
		return nil, port.Invalid(fmt.Sprintf("password must be at most %d bytes", maxPasswordBytes))
	}

	res, err := s.identity.ResolveLocal(ctx, username, password)
	if err != nil {
		return nil, err
	}

	login, err := s.startSession(ctx, res)
	if err != nil {
		return nil, err
	}
	slog.InfoContext(ctx, "user authenticated", "user_id", res.User.ID, "provider", "local", "created", res.Created)
	return login, nil
}

func (s *AuthService) startSession(ctx context.Context, res *Resolution) (*Login, error) {
	token, err := newSessionToken()
	if err != nil {
		return nil, fmt.Errorf("generate session token: %w", err)
	}
	now := s.now()
	sess := &domain.Session{
		TokenHash: HashToken(token),
		UserID:    res.User.ID,
		ExpiresAt: now.Add(s.sessionTTL),
		CreatedAt: now,
	}
	if err := s.sessions.CreateSession(ctx, sess); err != nil {
		return nil, fmt.Errorf("start session: %w", err)
	}
	return &Login{User: res.User, Created: res.Created, Token: token, ExpiresAt: sess.ExpiresAt}, nil
}

// Authenticate returns the user behind a session token. Unknown, expired and
// orphaned sessions all yield ErrUnauthorized.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*domain.User, error) {
	if token == "" {
		return nil, port.ErrUnauthorized
	}
	hash := HashToken(token)
	sess, err := s.sessions.GetSession(ctx, hash)
	if errors.Is(err, port.ErrNotFound) {
		return nil, port.ErrUnauthorized
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	if sess.Expired(s.now()) {
		if err := s.sessions.DeleteSession(ctx, hash); err != nil {
			slog.WarnContext(ctx, "failed to delete expired session", "error", err)
		}
		return nil, port.ErrUnauthorized
	}

	user, err := s.users.GetUserByID(ctx, sess.UserID)
	if errors.Is(err, port.ErrUserNotFound) {
		return nil, port.ErrUnauthorized
	}
	if err != nil {
		return nil, fmt.Errorf("get session user: %w", err)
	}
	return user, nil
}

// Logout ends the session. An unknown token is not an error.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := s.sessions.DeleteSession(ctx, HashToken(token)); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	return nil
}

// HashToken is the stored form of a session token.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func newSessionToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
