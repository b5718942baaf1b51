package appointment

import (
	"time"

	"github.com/google/uuid"
)

// Appointment statuses. Requested bookings are confirmed by the doctor or an
// admin; cancelled and no-show are terminal.
const (
	StatusRequested = "requested"
	StatusConfirmed = "confirmed"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
	StatusNoShow    = "no-show"
)

var validStatuses = map[string]bool{
	StatusRequested: true,
	StatusConfirmed: true,
	StatusCompleted: true,
	StatusCancelled: true,
	StatusNoShow:    true,
}

var statusTransitions = map[string][]string{
	StatusRequested: {StatusConfirmed, StatusCancelled, StatusNoShow},
	StatusConfirmed: {StatusCompleted, StatusCancelled, StatusNoShow},
}

type Appointment struct {
	ID        uuid.UUID `db:"id" json:"id"`
	PatientID uuid.UUID `db:"patient_id" json:"patient_id"`
	DoctorID  uuid.UUID `db:"doctor_id" json:"doctor_id"`

	// Date is the calendar day; StartTime is the slot start as "HH:MM".
	Date            time.Time `db:"date" json:"date"`
	StartTime       string    `db:"start_time" json:"start_time"`
	DurationMinutes int       `db:"duration_minutes" json:"duration_minutes"`

	Department *string `db:"department" json:"department,omitempty"`
	Type       *string `db:"type" json:"type,omitempty"`
	Reason     *string `db:"reason" json:"reason,omitempty"`
	Status     string  `db:"status" json:"status"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Doctor is the slice of an account the scheduler needs: identity plus the
// recurring availability. The directory adapter in main fills it from the
// accounts table.
type Doctor struct {
	ID           uuid.UUID
	Name         string
	Department   string
	Availability WeeklyAvailability
}
