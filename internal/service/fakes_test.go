package service

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/umyakar/a3-UtkuYakar/internal/adapter/store"
	"github.com/umyakar/a3-UtkuYakar/internal/domain"
	"github.com/umyakar/a3-UtkuYakar/internal/port"
)

type plainHasher struct{}

func (plainHasher) Hash(password string) (string, error) { return "plain:" + password, nil }

func (plainHasher) Compare(hash, password string) error {
	if hash != "plain:"+password {
		return port.ErrIncorrectPassword
	}
	return nil
}

// racingStore lets a "concurrent" request create a user just before ours.
type racingStore struct {
	*store.MemoryStore
	// beforeCreate runs once, ahead of the first CreateUser call.
	beforeCreate func()
	// alwaysConflict makes every CreateUser fail.
	alwaysConflict bool
	creates        atomic.Int32
}

func (r *racingStore) CreateUser(ctx context.Context, u *domain.User) (*domain.User, error) {
	if r.creates.Add(1) == 1 && r.beforeCreate != nil {
		r.beforeCreate()
	}
	if r.alwaysConflict {
		return nil, fmt.Errorf("create user: %w", port.ErrConflict)
	}
	return r.MemoryStore.CreateUser(ctx, u)
}

type fakeProvider struct {
	name        string
	profile     *domain.ExternalProfile
	exchangeErr error
	profileErr  error
}

func (f *fakeProvider) ProviderName() string { return f.name }

func (f *fakeProvider) AuthURL(state string) string {
	return "https://provider.example/authorize?state=" + state
}

func (f *fakeProvider) ExchangeCode(_ context.Context, code string) (*domain.TokenPair, error) {
	if f.exchangeErr != nil {
		return nil, f.exchangeErr
	}
	return &domain.TokenPair{AccessToken: "token-for-" + code}, nil
}

func (f *fakeProvider) GetUserProfile(context.Context, string) (*domain.ExternalProfile, error) {
	if f.profileErr != nil {
		return nil, f.profileErr
	}
	return f.profile, nil
}

type fakeState struct {
	verifyErr error
}

func (f *fakeState) Issue(provider string) (string, string, error) {
	return "state-" + provider, "nonce-" + provider, nil
}

func (f *fakeState) Verify(state, provider, nonce string) error {
	if f.verifyErr != nil {
		return f.verifyErr
	}
	if state != "state-"+provider || nonce != "nonce-"+provider {
		return port.ErrInvalidState
	}
	return nil
}
