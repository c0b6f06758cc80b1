package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/umyakar/a3-UtkuYakar/internal/domain"
	"github.com/umyakar/a3-UtkuYakar/internal/port"
)

// --- Plants ---

const plantColumns = `id, owner_id, name, species, last_watered, interval_days, sunlight, indoors, notes, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPlant(row rowScanner) (*domain.Plant, error) {
	var p domain.Plant
	err := row.Scan(
		&p.ID, &p.OwnerID, &p.Name, &p.Species, &p.LastWatered, &p.IntervalDays,
		&p.Sunlight, &p.Indoors, &p.Notes, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// CreatePlant inserts a plant, assigning an ID if none is set.
func (s *PostgresStore) CreatePlant(ctx context.Context, p *domain.Plant) (*domain.Plant, error) {
	id := p.ID
	if id == "" {
		id = uuid.NewString()
	}
	query := `INSERT INTO plants (id, owner_id, name, species, last_watered, interval_days, sunlight, indoors, notes)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	          RETURNING ` + plantColumns
	created, err := scanPlant(s.db.QueryRowContext(ctx, query,
		id, p.OwnerID, p.Name, p.Species, p.LastWatered, p.IntervalDays, p.Sunlight, p.Indoors, p.Notes,
	))
	if err != nil {
		return nil, fmt.Errorf("create plant: %w", err)
	}
	return created, nil
}

func (s *PostgresStore) GetPlant(ctx context.Context, ownerID, id string) (*domain.Plant, error) {
	p, err := scanPlant(s.db.QueryRowContext(ctx,
		`SELECT `+plantColumns+` FROM plants WHERE id = $1 AND owner_id = $2`, id, ownerID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, port.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get plant: %w", err)
	}
	return p, nil
}

// ListPlants returns the owner's plants, newest first.
func (s *PostgresStore) ListPlants(ctx context.Context, ownerID string) ([]domain.Plant, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+plantColumns+` FROM plants WHERE owner_id = $1 ORDER BY created_at DESC, id DESC`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list plants: %w", err)
	}
	defer rows.Close()

	plants := []domain.Plant{}
	for rows.Next() {
		p, err := scanPlant(rows)
		if err != nil {
			return nil, fmt.Errorf("scan plant: %w", err)
		}
		plants = append(plants, *p)
	}
	return plants, rows.Err()
}

// UpdatePlant replaces every editable field of an owned plant.
func (s *PostgresStore) UpdatePlant(ctx context.Context, p *domain.Plant) (*domain.Plant, error) {
	query := `UPDATE plants
	          SET name = $1, species = $2, last_watered = $3, interval_days = $4,
	              sunlight = $5, indoors = $6, notes = $7, updated_at = NOW()
	          WHERE id = $8 AND owner_id = $9
	          RETURNING ` + plantColumns
	updated, err := scanPlant(s.db.QueryRowContext(ctx, query,
		p.Name, p.Species, p.LastWatered, p.IntervalDays, p.Sunlight, p.Indoors, p.Notes,
		p.ID, p.OwnerID,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, port.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update plant: %w", err)
	}
	return updated, nil
}

func (s *PostgresStore) DeletePlant(ctx context.Context, ownerID, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM plants WHERE id = $1 AND owner_id = $2`, id, ownerID)
	if err != nil {
		return fmt.Errorf("delete plant: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete plant: %w", err)
	}
	if n == 0 {
		return port.ErrNotFound
	}
	return nil
}
