package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/umyakar/a3-UtkuYakar/internal/domain"
	"github.com/umyakar/a3-UtkuYakar/internal/port"
)

const memoryAuditCap = 10000

type identityKey struct {
	provider   string
	providerID string
}

type storedPlant struct {
	plant domain.Plant
	seq   int64
}

// MemoryStore keeps everything in process. It enforces the same uniqueness
// rules as the PostgreSQL schema and is safe for concurrent use.
type MemoryStore struct {
	mu         sync.RWMutex
	users      map[string]*domain.User
	byUsername map[string]string
	byIdentity map[identityKey]string
	plants     map[string]*storedPlant
	sessions   map[string]domain.Session
	audit      []domain.AuditLog
	seq        int64
	now        func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:      make(map[string]*domain.User),
		byUsername: make(map[string]string),
		byIdentity: make(map[identityKey]string),
		plants:     make(map[string]*storedPlant),
		sessions:   make(map[string]domain.Session),
		now:        func() time.Time { return time.Now().UTC() },
	}
}

func (m *MemoryStore) Close() error               { return nil }
func (m *MemoryStore) Ping(context.Context) error { return nil }

// --- Users ---

func (m *MemoryStore) CreateUser(_ context.Context, u *domain.User) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, taken := m.byUsername[u.Username]; taken {
		return nil, fmt.Errorf("create user %q: %w", u.Username, port.ErrConflict)
	}
	key := identityKey{u.Provider, u.ProviderID}
	if u.ProviderID != "" {
		if _, taken := m.byIdentity[key]; taken {
			return nil, fmt.Errorf("create user: identity taken: %w", port.ErrConflict)
		}
	}

	created := *u
	if created.ID == "" {
		created.ID = uuid.NewString()
	}
	created.CreatedAt = m.now()
	m.users[created.ID] = &created
	m.byUsername[created.Username] = created.ID
	if created.ProviderID != "" {
		m.byIdentity[key] = created.ID
	}
	out := created
	return &out, nil
}

func (m *MemoryStore) GetUserByID(_ context.Context, id string) (*domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.userCopy(id)
}

func (m *MemoryStore) GetUserByUsername(_ context.Context, username string) (*domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.userCopy(m.byUsername[username])
}

func (m *MemoryStore) GetUserByProviderID(_ context.Context, provider, providerID string) (*domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.userCopy(m.byIdentity[identityKey{provider, providerID}])
}

func (m *MemoryStore) userCopy(id string) (*domain.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, port.ErrUserNotFound
	}
	out := *u
	return &out, nil
}

func (m *MemoryStore) UsernameExists(_ context.Context, username string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.byUsername[username]
	return ok, nil
}

func (m *MemoryStore) LinkProvider(_ context.Context, userID, provider, providerID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[userID]
	if !ok {
		return port.ErrUserNotFound
	}
	if u.ProviderID != "" {
		return fmt.Errorf("link provider: user already linked: %w", port.ErrConflict)
	}
	key := identityKey{provider, providerID}
	if _, taken := m.byIdentity[key]; taken {
		return fmt.Errorf("link provider: identity taken: %w", port.ErrConflict)
	}
	u.Provider, u.ProviderID = provider, providerID
	m.byIdentity[key] = u.ID
	return nil
}

// --- Plants ---

func (m *MemoryStore) CreatePlant(_ context.Context, p *domain.Plant) (*domain.Plant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	created := *p
	if created.ID == "" {
		created.ID = uuid.NewString()
	}
	if _, exists := m.plants[created.ID]; exists {
		return nil, fmt.Errorf("create plant: %w", port.ErrConflict)
	}
	now := m.now()
	created.CreatedAt, created.UpdatedAt = now, now
	m.seq++
	m.plants[created.ID] = &storedPlant{plant: created, seq: m.seq}
	return &created, nil
}

func (m *MemoryStore) GetPlant(_ context.Context, ownerID, id string) (*domain.Plant, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	sp, ok := m.plants[id]
	if !ok || sp.plant.OwnerID != ownerID {
		return nil, port.ErrNotFound
	}
	out := sp.plant
	return &out, nil
}

func (m *MemoryStore) ListPlants(_ context.Context, ownerID string) ([]domain.Plant, error) {
	m.mu.RLock()
	owned := make([]*storedPlant, 0)
	for _, sp := range m.plants {
		if sp.plant.OwnerID == ownerID {
			owned = append(owned, sp)
		}
	}
	m.mu.RUnlock()

	sort.Slice(owned, func(i, j int) bool {
		a, b := owned[i], owned[j]
		if !a.plant.CreatedAt.Equal(b.plant.CreatedAt) {
			return a.plant.CreatedAt.After(b.plant.CreatedAt)
		}
		return a.seq > b.seq
	})

	plants := make([]domain.Plant, len(owned))
	for i, sp := range owned {
		plants[i] = sp.plant
	}
	return plants, nil
}

func (m *MemoryStore) UpdatePlant(_ context.Context, p *domain.Plant) (*domain.Plant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sp, ok := m.plants[p.ID]
	if !ok || sp.plant.OwnerID != p.OwnerID {
		return nil, port.ErrNotFound
	}
	updated := *p
	updated.CreatedAt = sp.plant.CreatedAt
	updated.UpdatedAt = m.now()
	sp.plant = updated
	return &updated, nil
}

func (m *MemoryStore) DeletePlant(_ context.Context, ownerID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	sp, ok := m.plants[id]
	if !ok || sp.plant.OwnerID != ownerID {
		return port.ErrNotFound
	}
	delete(m.plants, id)
	return nil
}

// --- Sessions ---

func (m *MemoryStore) CreateSession(_ context.Context, s *domain.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.sessions[s.TokenHash]; exists {
		return fmt.Errorf("create session: %w", port.ErrConflict)
	}
	m.sessions[s.TokenHash] = *s
	return nil
}

func (m *MemoryStore) GetSession(_ context.Context, tokenHash string) (*domain.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[tokenHash]
	if !ok {
		return nil, port.ErrNotFound
	}
	return &s, nil
}

func (m *MemoryStore) DeleteSession(_ context.Context, tokenHash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, tokenHash)
	return nil
}

func (m *MemoryStore) DeleteExpiredSessions(_ context.Context, now time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for hash, s := range m.sessions {
		if s.Expired(now) {
			delete(m.sessions, hash)
			n++
		}
	}
	return n, nil
}

// --- Audit Logs ---

// WriteAudit keeps at most memoryAuditCap entries, dropping the oldest.
func (m *MemoryStore) WriteAudit(_ context.Context, e *domain.AuditLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry := *e
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = m.now()
	}
	m.audit = append(m.audit, entry)
	if over := len(m.audit) - memoryAuditCap; over > 0 {
		m.audit = append(m.audit[:0:0], m.audit[over:]...)
	}
	return nil
}

func (m *MemoryStore) ListAuditLogs(_ context.Context, userID string, limit int) ([]domain.AuditLog, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	logs := []domain.AuditLog{}
	for i := len(m.audit) - 1; i >= 0; i-- {
		if m.audit[i].UserID != userID {
			continue
		}
		logs = append(logs, m.audit[i])
		if limit > 0 && len(logs) == limit {
			break
		}
	}
	return logs, nil
}

var (
	_ port.Store = (*MemoryStore)(nil)
	_ port.Store = (*PostgresStore)(nil)
)
