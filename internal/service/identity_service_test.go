package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/umyakar/a3-UtkuYakar/internal/adapter/store"
	"github.com/umyakar/a3-UtkuYakar/internal/domain"
	"github.com/umyakar/a3-UtkuYakar/internal/port"
)

func newIdentity() (*IdentityService, *store.MemoryStore) {
	m := store.NewMemoryStore()
	return NewIdentityService(m, plainHasher{}), m
}

func github(id, login string) *domain.ExternalProfile {
	return &domain.ExternalProfile{Provider: "github", ProviderID: id, Username: login}
}

func TestResolveLocalRegistersThenLogsIn(t *testing.T) {
	ctx := context.Background()
	svc, _ := newIdentity()

	first, err := svc.ResolveLocal(ctx, "alice", "pw")
	require.NoError(t, err)
	assert.True(t, first.Created)

	second, err := svc.ResolveLocal(ctx, "alice", "pw")
	require.NoError(t, err)
	assert.False(t, second.Created)
	assert.Equal(t, first.User.ID, second.User.ID)
}

func TestResolveLocalWrongPassword(t *testing.T) {
	ctx := context.Background()
	svc, m := newIdentity()
	first, err := svc.ResolveLocal(ctx, "alice", "pw")
	require.NoError(t, err)

	_, err = svc.ResolveLocal(ctx, "alice", "nope")
	assert.ErrorIs(t, err, port.ErrIncorrectPassword)

	after, err := m.GetUserByID(ctx, first.User.ID)
	require.NoError(t, err)
	assert.Equal(t, first.User.PasswordHash, after.PasswordHash)
}

func TestResolveLocalOnOAuthOnlyAccount(t *testing.T) {
	ctx := context.Background()
	svc, _ := newIdentity()
	_, err := svc.ResolveExternal(ctx, github("1", "octocat"))
	require.NoError(t, err)

	_, err = svc.ResolveLocal(ctx, "octocat", "pw")
	assert.ErrorIs(t, err, port.ErrPasswordLoginUnavailable)
}

func TestResolveLocalUsernamesAreCaseSensitive(t *testing.T) {
	ctx := context.Background()
	svc, _ := newIdentity()
	a, err := svc.ResolveLocal(ctx, "alice", "pw")
	require.NoError(t, err)
	b, err := svc.ResolveLocal(ctx, "Alice", "other")
	require.NoError(t, err)
	assert.True(t, b.Created)
	assert.NotEqual(t, a.User.ID, b.User.ID)
}

func TestResolveExternalIsStable(t *testing.T) {
	ctx := context.Background()
	svc, _ := newIdentity()

	first, err := svc.ResolveExternal(ctx, github("42", "octocat"))
	require.NoError(t, err)
	assert.True(t, first.Created)
	assert.Equal(t, "octocat", first.User.Username)

	second, err := svc.ResolveExternal(ctx, github("42", "renamed-octocat"))
	require.NoError(t, err)
	assert.False(t, second.Created)
	assert.Equal(t, first.User.ID, second.User.ID)
}

func TestResolveExternalLinksPasswordAccount(t *testing.T) {
	ctx := context.Background()
	svc, m := newIdentity()
	local, err := svc.ResolveLocal(ctx, "alice", "pw")
	require.NoError(t, err)

	res, err := svc.ResolveExternal(ctx, github("42", "alice"))
	require.NoError(t, err)
	assert.False(t, res.Created)
	assert.Equal(t, local.User.ID, res.User.ID)

	linked, err := m.GetUserByID(ctx, local.User.ID)
	require.NoError(t, err)
	assert.Equal(t, "github", linked.Provider)
	assert.Equal(t, "42", linked.ProviderID)
	assert.True(t, linked.HasPassword())

	// Password login keeps working after the link.
	again, err := svc.ResolveLocal(ctx, "alice", "pw")
	require.NoError(t, err)
	assert.Equal(t, local.User.ID, again.User.ID)
}

func TestResolveExternalDoesNotRelinkLinkedAccount(t *testing.T) {
	ctx := context.Background()
	svc, _ := newIdentity()
	first, err := svc.ResolveExternal(ctx, github("1", "alice"))
	require.NoError(t, err)

	second, err := svc.ResolveExternal(ctx, github("2", "alice"))
	require.NoError(t, err)
	assert.True(t, second.Created)
	assert.NotEqual(t, first.User.ID, second.User.ID)
	assert.Equal(t, "alice-1", second.User.Username)
}

func TestResolveExternalSuffixesTakenUsernames(t *testing.T) {
	ctx := context.Background()
	svc, m := newIdentity()
	_, err := m.CreateUser(ctx, &domain.User{Username: "alice", Provider: "google", ProviderID: "g1"})
	require.NoError(t, err)
	_, err = m.CreateUser(ctx, &domain.User{Username: "alice-1", PasswordHash: "plain:x", Provider: "google", ProviderID: "g2"})
	require.NoError(t, err)

	res, err := svc.ResolveExternal(ctx, github("42", "alice"))
	require.NoError(t, err)
	assert.Equal(t, "alice-2", res.User.Username)
}

func TestResolveExternalFallsBackToProviderID(t *testing.T) {
	ctx := context.Background()
	svc, m := newIdentity()
	_, err := m.CreateUser(ctx, &domain.User{Username: "bob", Provider: "google", ProviderID: "g0"})
	require.NoError(t, err)
	for n := 1; n <= maxUsernameSuffix; n++ {
		_, err := m.CreateUser(ctx, &domain.User{Username: withSuffix("bob", n)})
		require.NoError(t, err)
	}
	_, err = m.CreateUser(ctx, &domain.User{Username: "gh_42"})
	require.NoError(t, err)

	res, err := svc.ResolveExternal(ctx, github("42", "bob"))
	require.NoError(t, err)
	assert.Equal(t, "gh_42-1", res.User.Username)
}

func TestResolveExternalWithoutPreferredName(t *testing.T) {
	ctx := context.Background()
	svc, _ := newIdentity()

	res, err := svc.ResolveExternal(ctx, &domain.ExternalProfile{Provider: "google", ProviderID: "1049"})
	require.NoError(t, err)
	assert.Equal(t, "google_1049", res.User.Username)
}

func TestResolveExternalRejectsIncompleteProfile(t *testing.T) {
	svc, _ := newIdentity()
	_, err := svc.ResolveExternal(context.Background(), &domain.ExternalProfile{Provider: "github"})
	assert.Error(t, err)
}

func TestResolveLocalRetriesAfterLosingRace(t *testing.T) {
	ctx := context.Background()
	m := store.NewMemoryStore()
	rs := &racingStore{MemoryStore: m}
	rs.beforeCreate = func() {
		_, err := m.CreateUser(ctx, &domain.User{Username: "alice", PasswordHash: "plain:pw"})
		require.NoError(t, err)
	}
	svc := NewIdentityService(rs, plainHasher{})

	res, err := svc.ResolveLocal(ctx, "alice", "pw")
	require.NoError(t, err)
	assert.False(t, res.Created)

	winner, err := m.GetUserByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, winner.ID, res.User.ID)
}

func TestResolveExternalRetriesAfterLosingRace(t *testing.T) {
	ctx := context.Background()
	m := store.NewMemoryStore()
	rs := &racingStore{MemoryStore: m}
	rs.beforeCreate = func() {
		_, err := m.CreateUser(ctx, &domain.User{Username: "octocat", Provider: "github", ProviderID: "42"})
		require.NoError(t, err)
	}
	svc := NewIdentityService(rs, plainHasher{})

	res, err := svc.ResolveExternal(ctx, github("42", "octocat"))
	require.NoError(t, err)
	assert.False(t, res.Created)
	assert.Equal(t, "octocat", res.User.Username)
}

func TestResolveGivesUpAfterSecondConflict(t *testing.T) {
	ctx := context.Background()
	rs := &racingStore{MemoryStore: store.NewMemoryStore(), alwaysConflict: true}
	svc := NewIdentityService(rs, plainHasher{})

	_, err := svc.ResolveLocal(ctx, "alice", "pw")
	assert.ErrorIs(t, err, port.ErrConflict)
	assert.EqualValues(t, 2, rs.creates.Load())
}

func TestUniqueUsernameHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	svc, _ := newIdentity()

	_, err := svc.uniqueUsername(ctx, "", "gh_1")
	assert.ErrorIs(t, err, context.Canceled)
}
