package prescription

import (
	"context"

	"github.com/google/uuid"
)

type Filter struct {
	PatientID uuid.UUID
	DoctorID  uuid.UUID
}

type Repository interface {
	Create(ctx context.Context, p *Prescription) error
	GetByID(ctx context.Context, id uuid.UUID) (*Prescription, error)
	Update(ctx context.Context, p *Prescription) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, f Filter, limit, offset int) ([]*Prescription, int, error)
}
