package prescription

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/hms/hms/internal/platform/httpx"
)

var ErrNotFound = errors.New("prescription not found")

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Create(ctx context.Context, p *Prescription) error {
	if p.PatientID == uuid.Nil {
		return httpx.Invalidf("patient_id is required")
	}
	if p.DoctorID == uuid.Nil {
		return httpx.Invalidf("doctor_id is required")
	}
	if err := validateMedications(p.Medications); err != nil {
		return err
	}
	if p.Refills < 0 {
		return httpx.Invalidf("refills must not be negative")
	}
	if p.Date.IsZero() {
		p.Date = time.Now().UTC()
	}
	return s.repo.Create(ctx, p)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Prescription, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, update *UpdateInput) (*Prescription, error) {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if update.Medications != nil {
		if err := validateMedications(update.Medications); err != nil {
			return nil, err
		}
		existing.Medications = update.Medications
	}
	if update.Notes != nil {
		existing.Notes = update.Notes
	}
	if update.Refills != nil {
		if *update.Refills < 0 {
			return nil, httpx.Invalidf("refills must not be negative")
		}
		existing.Refills = *update.Refills
	}

	if err := s.repo.Update(ctx, existing); err != nil {
		return nil, err
	}
	return existing, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) List(ctx context.Context, f Filter, limit, offset int) ([]*Prescription, int, error) {
	return s.repo.List(ctx, f, limit, offset)
}

// validateMedications requires at least one entry, each with a name, dosage,
// frequency and route.
func validateMedications(entries []MedicationEntry) error {
	if len(entries) == 0 {
		return httpx.Invalidf("at least one medication is required")
	}
	for i, m := range entries {
		if m.Name == "" {
			return httpx.Invalidf("medication %d: name is required", i+1)
		}
		if m.Dosage == "" {
			return httpx.Invalidf("medication %d: dosage is required", i+1)
		}
		if m.Frequency == "" {
			return httpx.Invalidf("medication %d: frequency is required", i+1)
		}
		if m.Route == "" {
			return httpx.Invalidf("medication %d: route is required", i+1)
		}
	}
	return nil
}
