package billing

import (
	"context"

	"github.com/google/uuid"
)

type Filter struct {
	PatientID uuid.UUID
	Status    string
}

type Repository interface {
	Create(ctx context.Context, b *Bill) error
	GetByID(ctx context.Context, id uuid.UUID) (*Bill, error)
	Update(ctx context.Context, b *Bill) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, f Filter, limit, offset int) ([]*Bill, int, error)
}
