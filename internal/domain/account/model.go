package account

import (
	"time"

	"github.com/google/uuid"
)

// Account maps to the accounts table. One table holds all three roles; the
// doctor and patient profile columns are null for the roles they do not
// apply to. The password hash is never serialized.
type Account struct {
	ID           uuid.UUID `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Role         string    `db:"role" json:"role"`

	// Doctor profile
	Specialization *string  `db:"specialization" json:"specialization,omitempty"`
	Department     *string  `db:"department" json:"department,omitempty"`
	AvailableDays  []string `db:"available_days" json:"available_days,omitempty"`
	AvailableFrom  *string  `db:"available_from" json:"available_from,omitempty"`
	AvailableTo    *string  `db:"available_to" json:"available_to,omitempty"`

	// Patient profile
	BirthDate      *time.Time `db:"birth_date" json:"birth_date,omitempty"`
	Gender         *string    `db:"gender" json:"gender,omitempty"`
	BloodGroup     *string    `db:"blood_group" json:"blood_group,omitempty"`
	MedicalHistory []string   `db:"medical_history" json:"medical_history,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}
