package medication

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/hms/hms/internal/platform/httpx"
)

var (
	ErrNotFound  = errors.New("medication not found")
	ErrNameTaken = errors.New("a medication with that name already exists")
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Create(ctx context.Context, m *Medication) error {
	m.Name = strings.TrimSpace(m.Name)
	if m.Name == "" {
		return httpx.Invalidf("name is required")
	}
	if m.Price < 0 {
		return httpx.Invalidf("price must not be negative")
	}
	if m.StockQuantity < 0 {
		return httpx.Invalidf("stock quantity must not be negative")
	}
	if m.DosageOptions == nil {
		m.DosageOptions = []string{}
	}
	if m.FrequencyOptions == nil {
		m.FrequencyOptions = []string{}
	}
	if m.RouteOptions == nil {
		m.RouteOptions = []string{}
	}
	return s.repo.Create(ctx, m)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Medication, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, update *UpdateInput) (*Medication, error) {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if name := strings.TrimSpace(update.Name); name != "" {
		existing.Name = name
	}
	if update.DosageOptions != nil {
		existing.DosageOptions = update.DosageOptions
	}
	if update.FrequencyOptions != nil {
		existing.FrequencyOptions = update.FrequencyOptions
	}
	if update.RouteOptions != nil {
		existing.RouteOptions = update.RouteOptions
	}
	if update.Price != nil {
		if *update.Price < 0 {
			return nil, httpx.Invalidf("price must not be negative")
		}
		existing.Price = *update.Price
	}
	// Absolute stock levels are set here; AdjustStock applies deltas.
	if update.StockQuantity != nil {
		if *update.StockQuantity < 0 {
			return nil, httpx.Invalidf("stock quantity must not be negative")
		}
		existing.StockQuantity = *update.StockQuantity
	}
	if update.Manufacturer != nil {
		existing.Manufacturer = update.Manufacturer
	}
	if update.Description != nil {
		existing.Description = update.Description
	}

	if err := s.repo.Update(ctx, existing); err != nil {
		return nil, err
	}
	existing.deriveStock()
	return existing, nil
}

// AdjustStock applies a signed delta to the stock quantity, floored at zero.
func (s *Service) AdjustStock(ctx context.Context, id uuid.UUID, delta int) (*Medication, error) {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	next := existing.StockQuantity + delta
	if next < 0 {
		next = 0
	}
	existing.StockQuantity = next
	if err := s.repo.Update(ctx, existing); err != nil {
		return nil, err
	}
	existing.deriveStock()
	return existing, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) List(ctx context.Context, search string, limit, offset int) ([]*Medication, int, error) {
	return s.repo.List(ctx, search, limit, offset)
}
