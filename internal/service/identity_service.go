package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/umyakar/a3-UtkuYakar/internal/domain"
	"github.com/umyakar/a3-UtkuYakar/internal/port"
)

// maxUsernameSuffix bounds how far "name-N" is tried before falling back to
// a provider-id-derived username.
const maxUsernameSuffix = 50

// fallbackPrefix is the provider-id username prefix, e.g. gh_583231.
var fallbackPrefix = map[string]string{
	"github": "gh",
	"google": "google",
}

// Resolution is the account a login maps to.
type Resolution struct {
	User    *domain.User
	Created bool
}

// IdentityService maps password and OAuth logins onto user accounts.
type IdentityService struct {
	users  port.UserStore
	hasher port.PasswordHasher
}

func NewIdentityService(users port.UserStore, hasher port.PasswordHasher) *IdentityService {
	return &IdentityService{users: users, hasher: hasher}
}

// ResolveLocal logs in with a password, registering the username if unseen.
func (s *IdentityService) ResolveLocal(ctx context.Context, username, password string) (*Resolution, error) {
	return retryOnConflict(ctx, "local", func() (*Resolution, error) {
		return s.resolveLocal(ctx, username, password)
	})
}

// ResolveExternal logs in with a provider profile. An existing password-only
// account whose username equals the provider's suggestion gets the identity
// linked without a password check.
func (s *IdentityService) ResolveExternal(ctx context.Context, profile *domain.ExternalProfile) (*Resolution, error) {
	if profile == nil || profile.Provider == "" || profile.ProviderID == "" {
		return nil, fmt.Errorf("resolve external: incomplete profile")
	}
	return retryOnConflict(ctx, profile.Provider, func() (*Resolution, error) {
		return s.resolveExternal(ctx, profile)
	})
}

// retryOnConflict re-runs a resolution once when a concurrent login won a
// uniqueness race. A second conflict is returned as is.
func retryOnConflict(ctx context.Context, kind string, resolve func() (*Resolution, error)) (*Resolution, error) {
	res, err := resolve()
	if !errors.Is(err, port.ErrConflict) {
		return res, err
	}
	slog.WarnContext(ctx, "identity conflict, resolving again", "kind", kind, "error", err)
	res, err = resolve()
	if err != nil {
		return nil, fmt.Errorf("resolve %s identity after retry: %w", kind, err)
	}
	return res, nil
}

func (s *IdentityService) resolveLocal(ctx context.Context, username, password string) (*Resolution, error) {
	user, err := s.users.GetUserByUsername(ctx, username)
	if errors.Is(err, port.ErrUserNotFound) {
		hash, err := s.hasher.Hash(password)
		if err != nil {
			return nil, err
		}
		created, err := s.users.CreateUser(ctx, &domain.User{Username: username, PasswordHash: hash})
		if err != nil {
			return nil, fmt.Errorf("register user: %w", err)
		}
		slog.InfoContext(ctx, "user registered", "user_id", created.ID, "username", created.Username)
		return &Resolution{User: created, Created: true}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("look up user: %w", err)
	}

	if !user.HasPassword() {
		return nil, port.ErrPasswordLoginUnavailable
	}
	if err := s.hasher.Compare(user.PasswordHash, password); err != nil {
		return nil, err
	}
	return &Resolution{User: user}, nil
}

func (s *IdentityService) resolveExternal(ctx context.Context, p *domain.ExternalProfile) (*Resolution, error) {
	user, err := s.users.GetUserByProviderID(ctx, p.Provider, p.ProviderID)
	if err == nil {
		return &Resolution{User: user}, nil
	}
	if !errors.Is(err, port.ErrUserNotFound) {
		return nil, fmt.Errorf("look up identity: %w", err)
	}

	preferred := strings.TrimSpace(p.Username)
	if preferred != "" {
		existing, err := s.users.GetUserByUsername(ctx, preferred)
		switch {
		case err == nil && !existing.HasExternalIdentity():
			if err := s.users.LinkProvider(ctx, existing.ID, p.Provider, p.ProviderID); err != nil {
				return nil, fmt.Errorf("link identity: %w", err)
			}
			existing.Provider, existing.ProviderID = p.Provider, p.ProviderID
			slog.InfoContext(ctx, "linked external identity to existing account",
				"user_id", existing.ID, "provider", p.Provider)
			return &Resolution{User: existing}, nil
		case err != nil && !errors.Is(err, port.ErrUserNotFound):
			return nil, fmt.Errorf("look up user: %w", err)
		}
	}

	username, err := s.uniqueUsername(ctx, preferred, fallbackUsername(p))
	if err != nil {
		return nil, err
	}
	created, err := s.users.CreateUser(ctx, &domain.User{
		Username:   username,
		Provider:   p.Provider,
		ProviderID: p.ProviderID,
	})
	if err != nil {
		return nil, fmt.Errorf("register external user: %w", err)
	}
	slog.InfoContext(ctx, "user registered", "user_id", created.ID, "username", created.Username, "provider", p.Provider)
	return &Resolution{User: created, Created: true}, nil
}

// uniqueUsername tries base, base-1 … base-maxUsernameSuffix, then fallback,
// fallback-1 … until one is free.
func (s *IdentityService) uniqueUsername(ctx context.Context, base, fallback string) (string, error) {
	if base != "" {
		for n := 0; n <= maxUsernameSuffix; n++ {
			candidate := withSuffix(base, n)
			free, err := s.usernameFree(ctx, candidate)
			if err != nil || free {
				return candidate, err
			}
		}
	}
	for n := 0; ; n++ {
		if err := ctx.Err(); err != nil {
			return "", fmt.Errorf("pick username: %w", err)
		}
		candidate := withSuffix(fallback, n)
		free, err := s.usernameFree(ctx, candidate)
		if err != nil || free {
			return candidate, err
		}
	}
}

func (s *IdentityService) usernameFree(ctx context.Context, username string) (bool, error) {
	taken, err := s.users.UsernameExists(ctx, username)
	if err != nil {
		return false, fmt.Errorf("check username %q: %w", username, err)
	}
	return !taken, nil
}

func withSuffix(name string, n int) string {
	if n == 0 {
		return name
	}
	return fmt.Sprintf("%s-%d", name, n)
}

func fallbackUsername(p *domain.ExternalProfile) string {
	prefix, ok := fallbackPrefix[p.Provider]
	if !ok {
		prefix = p.Provider
	}
	return prefix + "_" + p.ProviderID
}
