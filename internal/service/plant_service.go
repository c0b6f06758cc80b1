package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/umyakar/a3-UtkuYakar/internal/calendar"
	"github.com/umyakar/a3-UtkuYakar/internal/domain"
	"github.com/umyakar/a3-UtkuYakar/internal/port"
)

// PlantService handles owner-scoped plant CRUD and attaches watering schedules.
type PlantService struct {
	plants port.PlantStore
	clock  calendar.Clock
}

func NewPlantService(plants port.PlantStore, clock calendar.Clock) *PlantService {
	return &PlantService{plants: plants, clock: clock}
}

// List returns the owner's plants, newest first.
func (s *PlantService) List(ctx context.Context, ownerID string) ([]domain.PlantView, error) {
	plants, err := s.plants.ListPlants(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list plants: %w", err)
	}
	today := s.clock.Today()
	views := make([]domain.PlantView, len(plants))
	for i, p := range plants {
		views[i] = domain.NewPlantView(p, today)
	}
	return views, nil
}

func (s *PlantService) Get(ctx context.Context, ownerID, id string) (*domain.PlantView, error) {
	p, err := s.plants.GetPlant(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	view := domain.NewPlantView(*p, s.clock.Today())
	return &view, nil
}

// Create requires name, lastWatered and intervalDays.
func (s *PlantService) Create(ctx context.Context, ownerID string, in domain.PlantInput) (*domain.PlantView, error) {
	p := domain.Plant{OwnerID: ownerID, Sunlight: domain.SunlightMedium, Indoors: true}
	if err := applyPlantInput(&p, in, true); err != nil {
		return nil, err
	}
	created, err := s.plants.CreatePlant(ctx, &p)
	if err != nil {
		return nil, fmt.Errorf("create plant: %w", err)
	}
	view := domain.NewPlantView(*created, s.clock.Today())
	return &view, nil
}

// Update replaces only the fields present in the input.
func (s *PlantService) Update(ctx context.Context, ownerID, id string, in domain.PlantInput) (*domain.PlantView, error) {
	p, err := s.plants.GetPlant(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	if err := applyPlantInput(p, in, false); err != nil {
		return nil, err
	}
	updated, err := s.plants.UpdatePlant(ctx, p)
	if err != nil {
		if errors.Is(err, port.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("update plant: %w", err)
	}
	view := domain.NewPlantView(*updated, s.clock.Today())
	return &view, nil
}

func (s *PlantService) Delete(ctx context.Context, ownerID, id string) error {
	return s.plants.DeletePlant(ctx, ownerID, id)
}

// applyPlantInput validates in and copies it onto p. On create the required
// fields must be present; on update absent fields keep their value.
func applyPlantInput(p *domain.Plant, in domain.PlantInput, creating bool) error {
	if creating && (in.Name == nil || in.LastWatered == nil || in.IntervalDays == nil) {
		return port.Invalid("name, lastWatered and intervalDays are required")
	}

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return port.Invalid("name is required")
		}
		if utf8.RuneCountInString(name) > domain.MaxPlantNameLen {
			return port.Invalid(fmt.Sprintf("name must be at most %d characters", domain.MaxPlantNameLen))
		}
		p.Name = name
	}

	if in.Species != nil {
		species := strings.TrimSpace(*in.Species)
		if utf8.RuneCountInString(species) > domain.MaxPlantSpeciesLen {
			return port.Invalid(fmt.Sprintf("species must be at most %d characters", domain.MaxPlantSpeciesLen))
		}
		p.Species = species
	}

	if in.LastWatered != nil {
		d, err := calendar.Parse(strings.TrimSpace(*in.LastWatered))
		if err != nil {
			return port.Invalid("lastWatered must be YYYY-MM-DD")
		}
		p.LastWatered = d
	}

	if in.IntervalDays != nil {
		n, err := in.IntervalDays.Int64()
		if err != nil || n < 1 || n > maxIntervalDays {
			return port.Invalid(fmt.Sprintf("intervalDays must be an integer between 1 and %d", maxIntervalDays))
		}
		p.IntervalDays = int(n)
	}

	if in.Sunlight != nil {
		sun := domain.Sunlight(strings.ToLower(strings.TrimSpace(*in.Sunlight)))
		if sun == "" {
			sun = domain.SunlightMedium
		}
		if !sun.Valid() {
			return port.Invalid("sunlight must be low, medium or high")
		}
		p.Sunlight = sun
	}

	if in.Indoors != nil {
		p.Indoors = *in.Indoors
	}

	if in.Notes != nil {
		notes := strings.TrimSpace(*in.Notes)
		if utf8.RuneCountInString(notes) > domain.MaxPlantNotesLen {
			return port.Invalid(fmt.Sprintf("notes must be at most %d characters", domain.MaxPlantNotesLen))
		}
		p.Notes = notes
	}
	return nil
}

// maxIntervalDays keeps AddDays and the INTEGER column in range.
const maxIntervalDays = 36500
