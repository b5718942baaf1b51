package appointment

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Filter narrows List results. Zero values are ignored.
type Filter struct {
	PatientID uuid.UUID
	DoctorID  uuid.UUID
	Status    string
	Date      time.Time
}

type Repository interface {
	Create(ctx context.Context, a *Appointment) error
	GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*Appointment, error)
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, f Filter, limit, offset int) ([]*Appointment, int, error)

	// BookedTimes returns the slot start times already held (any status
	// except cancelled) for a doctor on a date.
	BookedTimes(ctx context.Context, doctorID uuid.UUID, date time.Time) ([]string, error)
}

// DoctorDirectory resolves doctors and their availability. Implemented by an
// adapter over the accounts store so this package does not import it.
type DoctorDirectory interface {
	GetDoctor(ctx context.Context, id uuid.UUID) (*Doctor, error)
	ListDoctors(ctx context.Context) ([]*Doctor, error)
}
