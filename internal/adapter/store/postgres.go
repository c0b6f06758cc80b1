package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/umyakar/a3-UtkuYakar/internal/domain"
	"github.com/umyakar/a3-UtkuYakar/internal/port"
)

const uniqueViolation = "23505"

// PostgresStore handles all relational database operations.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore opens a connection and returns a store instance.
func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &PostgresStore{db: db}, nil
}

// NewPostgresStoreFromDB wraps an existing handle.
func NewPostgresStoreFromDB(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Close closes the database connection.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

// Ping reports whether the database is reachable.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// --- Users ---

const userColumns = `id, username, password_hash, provider, provider_id, created_at`

// CreateUser inserts a new account, assigning an ID if none is set.
func (s *PostgresStore) CreateUser(ctx context.Context, u *domain.User) (*domain.User, error) {
	created := *u
	if created.ID == "" {
		created.ID = uuid.NewString()
	}

	query := `INSERT INTO users (id, username, password_hash, provider, provider_id)
	          VALUES ($1, $2, $3, $4, $5)
	          RETURNING created_at`
	err := s.db.QueryRowContext(ctx, query,
		created.ID, created.Username, nullString(created.PasswordHash),
		nullString(created.Provider), nullString(created.ProviderID),
	).Scan(&created.CreatedAt)
	if isUniqueViolation(err) {
		return nil, fmt.Errorf("create user %q: %w", created.Username, port.ErrConflict)
	}
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return &created, nil
}

// GetUserByID retrieves a user by ID.
func (s *PostgresStore) GetUserByID(ctx context.Context, id string) (*domain.User, error) {
	return s.getUser(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

func (s *PostgresStore) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	return s.getUser(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1`, username)
}

func (s *PostgresStore) GetUserByProviderID(ctx context.Context, provider, providerID string) (*domain.User, error) {
	return s.getUser(ctx,
		`SELECT `+userColumns+` FROM users WHERE provider = $1 AND provider_id = $2`,
		provider, providerID)
}

func (s *PostgresStore) getUser(ctx context.Context, query string, args ...any) (*domain.User, error) {
	var (
		u                  domain.User
		hash, prov, provID sql.NullString
	)
	err := s.db.QueryRowContext(ctx, query, args...).Scan(
		&u.ID, &u.Username, &hash, &prov, &provID, &u.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, port.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	u.PasswordHash, u.Provider, u.ProviderID = hash.String, prov.String, provID.String
	return &u, nil
}

func (s *PostgresStore) UsernameExists(ctx context.Context, username string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM users WHERE username = $1)`, username,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check username: %w", err)
	}
	return exists, nil
}

// LinkProvider only touches users with no identity yet, so two racing
// links cannot overwrite each other.
func (s *PostgresStore) LinkProvider(ctx context.Context, userID, provider, providerID string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE users SET provider = $1, provider_id = $2 WHERE id = $3 AND provider_id IS NULL`,
		provider, providerID, userID)
	if isUniqueViolation(err) {
		return fmt.Errorf("link provider: %w", port.ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("link provider: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("link provider: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("link provider: user already linked: %w", port.ErrConflict)
	}
	return nil
}

// --- Sessions ---

func (s *PostgresStore) CreateSession(ctx context.Context, sess *domain.Session) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sessions (token_hash, user_id, expires_at, created_at) VALUES ($1, $2, $3, $4)`,
		sess.TokenHash, sess.UserID, sess.ExpiresAt, sess.CreatedAt)
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetSession(ctx context.Context, tokenHash string) (*domain.Session, error) {
	var sess domain.Session
	err := s.db.QueryRowContext(ctx,
		`SELECT token_hash, user_id, expires_at, created_at FROM sessions WHERE token_hash = $1`,
		tokenHash,
	).Scan(&sess.TokenHash, &sess.UserID, &sess.ExpiresAt, &sess.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, port.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	return &sess, nil
}

func (s *PostgresStore) DeleteSession(ctx context.Context, tokenHash string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE token_hash = $1`, tokenHash); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (s *PostgresStore) DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at <= $1`, now)
	if err != nil {
		return 0, fmt.Errorf("delete expired sessions: %w", err)
	}
	return res.RowsAffected()
}

// --- Audit Logs ---

// WriteAudit implements port.AuditWriter.
func (s *PostgresStore) WriteAudit(ctx context.Context, e *domain.AuditLog) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	query := `INSERT INTO audit_logs (id, user_id, method, path, status, duration_ms, ip, user_agent)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := s.db.ExecContext(ctx, query,
		e.ID, e.UserID, e.Method, e.Path, e.Status, e.DurationMS, e.IP, e.UserAgent,
	)
	if err != nil {
		return fmt.Errorf("write audit: %w", err)
	}
	return nil
}

// ListAuditLogs returns a user's most recent requests, newest first.
func (s *PostgresStore) ListAuditLogs(ctx context.Context, userID string, limit int) ([]domain.AuditLog, error) {
	query := `SELECT id, user_id, method, path, status, duration_ms, ip, user_agent, created_at
	          FROM audit_logs WHERE user_id = $1 ORDER BY created_at DESC`
	args := []any{userID}
	if limit > 0 {
		query += " LIMIT $2"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list audit logs: %w", err)
	}
	defer rows.Close()

	logs := []domain.AuditLog{}
	for rows.Next() {
		var l domain.AuditLog
		if err := rows.Scan(
			&l.ID, &l.UserID, &l.Method, &l.Path, &l.Status,
			&l.DurationMS, &l.IP, &l.UserAgent, &l.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan audit log: %w", err)
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}
