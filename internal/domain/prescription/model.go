package prescription

import (
	"time"

	"github.com/google/uuid"
)

// MedicationEntry is one prescribed drug. Stored as jsonb so a prescription
// carries its full dosage instructions even if the catalog entry changes
// later.
type MedicationEntry struct {
	Name         string `json:"name"`
	Dosage       string `json:"dosage"`
	Frequency    string `json:"frequency"`
	Route        string `json:"route"`
	Duration     string `json:"duration,omitempty"`
	Instructions string `json:"instructions,omitempty"`
}

// UpdateInput carries a partial prescription update. Pointer fields
// distinguish "set to zero" from "leave unchanged".
type UpdateInput struct {
	Medications []MedicationEntry `json:"medications"`
	Notes       *string           `json:"notes"`
	Refills     *int              `json:"refills"`
}

type Prescription struct {
	ID        uuid.UUID `db:"id" json:"id"`
	PatientID uuid.UUID `db:"patient_id" json:"patient_id"`
	DoctorID  uuid.UUID `db:"doctor_id" json:"doctor_id"`

	Date        time.Time         `db:"date" json:"date"`
	Medications []MedicationEntry `db:"medications" json:"medications"`
	Notes       *string           `db:"notes" json:"notes,omitempty"`
	Refills     int               `db:"refills" json:"refills"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}
