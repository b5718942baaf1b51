package medication

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, m *Medication) error
	GetByID(ctx context.Context, id uuid.UUID) (*Medication, error)
	Update(ctx context.Context, m *Medication) error
	Delete(ctx context.Context, id uuid.UUID) error

	// List filters by a case-insensitive name substring when search is
	// non-empty.
	List(ctx context.Context, search string, limit, offset int) ([]*Medication, int, error)
}
