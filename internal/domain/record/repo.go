package record

import (
	"context"

	"github.com/google/uuid"
)

type Filter struct {
	PatientID uuid.UUID
	DoctorID  uuid.UUID
}

type Repository interface {
	Create(ctx context.Context, r *Record) error
	GetByID(ctx context.Context, id uuid.UUID) (*Record, error)
	Update(ctx context.Context, r *Record) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, f Filter, limit, offset int) ([]*Record, int, error)
}
