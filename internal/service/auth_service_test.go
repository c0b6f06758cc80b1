package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/umyakar/a3-UtkuYakar/internal/adapter/store"
	"github.com/umyakar/a3-UtkuYakar/internal/domain"
	"github.com/umyakar/a3-UtkuYakar/internal/port"
	"github.com/umyakar/a3-UtkuYakar/pkg/config"
)

type authFixture struct {
	svc   *AuthService
	store *store.MemoryStore
	gh    *fakeProvider
	state *fakeState
}

func newAuthFixture() *authFixture {
	m := store.NewMemoryStore()
	gh := &fakeProvider{name: "github", profile: github("42", "octocat")}
	st := &fakeState{}
	svc := NewAuthService(
		port.AuthProviderRegistry{"github": gh},
		NewIdentityService(m, plainHasher{}),
		m, m, st,
		&config.Config{SessionTTL: time.Hour},
	)
	return &authFixture{svc: svc, store: m, gh: gh, state: st}
}

func TestLoginStartsSession(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture()

	login, err := f.svc.Login(ctx, "  alice ", "pw")
	require.NoError(t, err)
	assert.True(t, login.Created)
	assert.Equal(t, "alice", login.User.Username)
	assert.Len(t, login.Token, 64)

	// Only the hash is stored.
	_, err = f.store.GetSession(ctx, login.Token)
	assert.ErrorIs(t, err, port.ErrNotFound)
	_, err = f.store.GetSession(ctx, HashToken(login.Token))
	assert.NoError(t, err)

	user, err := f.svc.Authenticate(ctx, login.Token)
	require.NoError(t, err)
	assert.Equal(t, login.User.ID, user.ID)
}

func TestLoginValidation(t *testing.T) {
	f := newAuthFixture()
	tests := []struct {
		name, username, password string
	}{
		{"empty username", "", "pw"},
		{"blank username", "   ", "pw"},
		{"empty password", "alice", ""},
		{"password too long", "alice", string(make([]byte, 73))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Login(context.Background(), tt.username, tt.password)
			assert.ErrorIs(t, err, port.ErrValidation)
		})
	}
}

func TestLoginWrongPassword(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture()
	_, err := f.svc.Login(ctx, "alice", "pw")
	require.NoError(t, err)

	_, err = f.svc.Login(ctx, "alice", "wrong")
	assert.ErrorIs(t, err, port.ErrIncorrectPassword)
}

func TestAuthenticateRejects(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture()

	_, err := f.svc.Authenticate(ctx, "")
	assert.ErrorIs(t, err, port.ErrUnauthorized)

	_, err = f.svc.Authenticate(ctx, "never-issued")
	assert.ErrorIs(t, err, port.ErrUnauthorized)

	login, err := f.svc.Login(ctx, "alice", "pw")
	require.NoError(t, err)
	f.svc.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = f.svc.Authenticate(ctx, login.Token)
	assert.ErrorIs(t, err, port.ErrUnauthorized)

	// Expired sessions are removed on read.
	_, err = f.store.GetSession(ctx, HashToken(login.Token))
	assert.ErrorIs(t, err, port.ErrNotFound)
}

func TestLogout(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture()
	login, err := f.svc.Login(ctx, "alice", "pw")
	require.NoError(t, err)

	require.NoError(t, f.svc.Logout(ctx, login.Token))
	_, err = f.svc.Authenticate(ctx, login.Token)
	assert.ErrorIs(t, err, port.ErrUnauthorized)

	assert.NoError(t, f.svc.Logout(ctx, ""))
	assert.NoError(t, f.svc.Logout(ctx, "unknown"))
}

func TestGetAuthURL(t *testing.T) {
	f := newAuthFixture()

	url, nonce, err := f.svc.GetAuthURL("github")
	require.NoError(t, err)
	assert.Contains(t, url, "state=state-github")
	assert.Equal(t, "nonce-github", nonce)

	_, _, err = f.svc.GetAuthURL("google")
	assert.ErrorIs(t, err, port.ErrProviderNotConfigured)

	_, _, err = f.svc.GetAuthURL("myspace")
	assert.ErrorIs(t, err, port.ErrUnknownProvider)

	assert.Equal(t, []string{"github"}, f.svc.Providers())
}

func TestHandleCallback(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture()

	login, err := f.svc.HandleCallback(ctx, "github", "code", "state-github", "nonce-github")
	require.NoError(t, err)
	assert.True(t, login.Created)
	assert.Equal(t, "octocat", login.User.Username)

	user, err := f.svc.Authenticate(ctx, login.Token)
	require.NoError(t, err)
	assert.Equal(t, "github", user.Provider)
}

func TestHandleCallbackFailures(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name  string
		setup func(f *authFixture)
		code  string
		nonce string
	}{
		{name: "nonce mismatch", code: "code", nonce: "stolen"},
		{name: "missing code", code: "", nonce: "nonce-github"},
		{
			name:  "exchange rejected",
			setup: func(f *authFixture) { f.gh.exchangeErr = errors.New("bad_verification_code") },
			code:  "code", nonce: "nonce-github",
		},
		{
			name:  "profile failed",
			setup: func(f *authFixture) { f.gh.profileErr = errors.New("401") },
			code:  "code", nonce: "nonce-github",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newAuthFixture()
			if tt.setup != nil {
				tt.setup(f)
			}
			_, err := f.svc.HandleCallback(ctx, "github", tt.code, "state-github", tt.nonce)
			assert.ErrorIs(t, err, port.ErrUpstreamAuth)
		})
	}
}

func TestHandleCallbackLinksExistingPasswordAccount(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture()
	local, err := f.svc.Login(ctx, "octocat", "pw")
	require.NoError(t, err)

	oauth, err := f.svc.HandleCallback(ctx, "github", "code", "state-github", "nonce-github")
	require.NoError(t, err)
	assert.False(t, oauth.Created)
	assert.Equal(t, local.User.ID, oauth.User.ID)
}

func TestSweepSessions(t *testing.T) {
	ctx := context.Background()
	m := store.NewMemoryStore()
	now := time.Now()
	require.NoError(t, m.CreateSession(ctx, &domain.Session{TokenHash: "old", ExpiresAt: now.Add(-time.Minute)}))
	require.NoError(t, m.CreateSession(ctx, &domain.Session{TokenHash: "new", ExpiresAt: now.Add(time.Minute)}))

	SweepSessions(ctx, m, now)

	_, err := m.GetSession(ctx, "old")
	assert.ErrorIs(t, err, port.ErrNotFound)
	_, err = m.GetSession(ctx, "new")
	assert.NoError(t, err)
}

func TestStartSessionSweeperStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	m := store.NewMemoryStore()
	require.NoError(t, m.CreateSession(ctx, &domain.Session{TokenHash: "old", ExpiresAt: time.Now().Add(-time.Minute)}))

	done := StartSessionSweeper(ctx, m, 10*time.Millisecond)
	assert.Eventually(t, func() bool {
		_, err := m.GetSession(context.Background(), "old")
		return errors.Is(err, port.ErrNotFound)
	}, time.Second, 10*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop")
	}
}

func TestStartSessionSweeperNonPositiveInterval(t *testing.T) {
	for _, interval := range []time.Duration{0, -time.Minute} {
		ctx, cancel := context.WithCancel(context.Background())
		done := StartSessionSweeper(ctx, store.NewMemoryStore(), interval)
		cancel()
		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatalf("sweeper with interval %v did not stop", interval)
		}
	}
}
