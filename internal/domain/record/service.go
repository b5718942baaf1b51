package record

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hms/hms/internal/platform/httpx"
)

var ErrNotFound = errors.New("medical record not found")

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Create(ctx context.Context, rec *Record) error {
	if rec.PatientID == uuid.Nil {
		return httpx.Invalidf("patient_id is required")
	}
	if rec.DoctorID == uuid.Nil {
		return httpx.Invalidf("doctor_id is required")
	}
	if strings.TrimSpace(rec.Diagnosis) == "" {
		return httpx.Invalidf("diagnosis is required")
	}
	if rec.Date.IsZero() {
		rec.Date = time.Now().UTC()
	}
	if rec.Attachments == nil {
		rec.Attachments = []Attachment{}
	}
	for _, att := range rec.Attachments {
		if att.Name == "" || att.URL == "" {
			return httpx.Invalidf("attachments need a name and a url")
		}
	}
	return s.repo.Create(ctx, rec)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Record, error) {
	return s.repo.GetByID(ctx, id)
}

// Update rewrites the clinical fields. Patient, doctor and date are fixed at
// creation.
func (s *Service) Update(ctx context.Context, id uuid.UUID, update *Record) (*Record, error) {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if d := strings.TrimSpace(update.Diagnosis); d != "" {
		existing.Diagnosis = d
	}
	if update.Treatment != nil {
		existing.Treatment = update.Treatment
	}
	if update.Notes != nil {
		existing.Notes = update.Notes
	}
	if update.Department != nil {
		existing.Department = update.Department
	}
	if update.Attachments != nil {
		for _, att := range update.Attachments {
			if att.Name == "" || att.URL == "" {
				return nil, httpx.Invalidf("attachments need a name and a url")
			}
		}
		existing.Attachments = update.Attachments
	}

	if err := s.repo.Update(ctx, existing); err != nil {
		return nil, err
	}
	return existing, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) List(ctx context.Context, f Filter, limit, offset int) ([]*Record, int, error) {
	return s.repo.List(ctx, f, limit, offset)
}
