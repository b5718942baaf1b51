package record

import (
	"time"

	"github.com/google/uuid"
)

// Attachment is a reference to an externally stored document (lab report,
// scan). Stored as jsonb alongside the record.
type Attachment struct {
	Name        string `json:"name"`
	ContentType string `json:"content_type"`
	URL         string `json:"url"`
}

type Record struct {
	ID        uuid.UUID `db:"id" json:"id"`
	PatientID uuid.UUID `db:"patient_id" json:"patient_id"`
	DoctorID  uuid.UUID `db:"doctor_id" json:"doctor_id"`

	Date        time.Time    `db:"date" json:"date"`
	Diagnosis   string       `db:"diagnosis" json:"diagnosis"`
	Treatment   *string      `db:"treatment" json:"treatment,omitempty"`
	Notes       *string      `db:"notes" json:"notes,omitempty"`
	Department  *string      `db:"department" json:"department,omitempty"`
	Attachments []Attachment `db:"attachments" json:"attachments"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}
