package port

import (
	"context"
	"time"

	"github.com/umyakar/a3-UtkuYakar/internal/domain"
)

// UserStore persists accounts. Username and (provider, provider id) are unique;
// writes that would break either return ErrConflict.
type UserStore interface {
	CreateUser(ctx context.Context, u *domain.User) (*domain.User, error)
	GetUserByID(ctx context.Context, id string) (*domain.User, error)
	GetUserByUsername(ctx context.Context, username string) (*domain.User, error)
	GetUserByProviderID(ctx context.Context, provider, providerID string) (*domain.User, error)
	UsernameExists(ctx context.Context, username string) (bool, error)
	// LinkProvider attaches an external identity to a user that has none.
	// It returns ErrConflict if the user already has one or the identity is taken.
	LinkProvider(ctx context.Context, userID, provider, providerID string) error
}

// PlantStore persists plants. Every lookup is scoped to an owner; a plant
// owned by someone else is reported as ErrNotFound.
type PlantStore interface {
	CreatePlant(ctx context.Context, p *domain.Plant) (*domain.Plant, error)
	GetPlant(ctx context.Context, ownerID, id string) (*domain.Plant, error)
	// ListPlants returns newest first.
	ListPlants(ctx context.Context, ownerID string) ([]domain.Plant, error)
	UpdatePlant(ctx context.Context, p *domain.Plant) (*domain.Plant, error)
	DeletePlant(ctx context.Context, ownerID, id string) error
}

// SessionStore persists login sessions keyed by token hash.
type SessionStore interface {
	CreateSession(ctx context.Context, s *domain.Session) error
	GetSession(ctx context.Context, tokenHash string) (*domain.Session, error)
	DeleteSession(ctx context.Context, tokenHash string) error
	DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error)
}

// AuditWriter records requests.
type AuditWriter interface {
	WriteAudit(ctx context.Context, entry *domain.AuditLog) error
}

// AuditReader lists a user's recorded requests, newest first.
type AuditReader interface {
	ListAuditLogs(ctx context.Context, userID string, limit int) ([]domain.AuditLog, error)
}

// Store is everything the server needs from a backend.
type Store interface {
	UserStore
	PlantStore
	SessionStore
	AuditWriter
	AuditReader
	Ping(ctx context.Context) error
	Close() error
}
