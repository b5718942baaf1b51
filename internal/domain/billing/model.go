package billing

import (
	"time"

	"github.com/google/uuid"
)

// Bill statuses.
const (
	StatusPending   = "pending"
	StatusPaid      = "paid"
	StatusOverdue   = "overdue"
	StatusCancelled = "cancelled"
)

var validStatuses = map[string]bool{
	StatusPending:   true,
	StatusPaid:      true,
	StatusOverdue:   true,
	StatusCancelled: true,
}

// LineItem is one charge on a bill. LineTotal and the bill Amount are always
// recomputed server-side; client-supplied totals are ignored.
type LineItem struct {
	ID          uuid.UUID `db:"id" json:"id"`
	BillID      uuid.UUID `db:"bill_id" json:"bill_id"`
	Description string    `db:"description" json:"description"`
	Quantity    int       `db:"quantity" json:"quantity"`
	UnitPrice   float64   `db:"unit_price" json:"unit_price"`
	LineTotal   float64   `db:"line_total" json:"line_total"`
}

type Bill struct {
	ID        uuid.UUID `db:"id" json:"id"`
	PatientID uuid.UUID `db:"patient_id" json:"patient_id"`

	Amount        float64    `db:"amount" json:"amount"`
	Status        string     `db:"status" json:"status"`
	DueDate       *time.Time `db:"due_date" json:"due_date,omitempty"`
	PaymentMethod *string    `db:"payment_method" json:"payment_method,omitempty"`
	PaidAt        *time.Time `db:"paid_at" json:"paid_at,omitempty"`

	Items []LineItem `db:"-" json:"items"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}
