package medication

import (
	"time"

	"github.com/google/uuid"
)

// Medication is a catalog entry. The dosage/frequency/route option lists
// feed prescription forms; InStock is derived from the stock quantity and
// never stored.
type Medication struct {
	ID   uuid.UUID `db:"id" json:"id"`
	Name string    `db:"name" json:"name"`

	DosageOptions    []string `db:"dosage_options" json:"dosage_options"`
	FrequencyOptions []string `db:"frequency_options" json:"frequency_options"`
	RouteOptions     []string `db:"route_options" json:"route_options"`

	Price         float64 `db:"price" json:"price"`
	StockQuantity int     `db:"stock_quantity" json:"stock_quantity"`
	Manufacturer  *string `db:"manufacturer" json:"manufacturer,omitempty"`
	Description   *string `db:"description" json:"description,omitempty"`

	InStock bool `db:"-" json:"in_stock"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// UpdateInput carries a partial catalog update. Pointer fields distinguish
// "set to zero" from "leave unchanged".
type UpdateInput struct {
	Name             string   `json:"name"`
	DosageOptions    []string `json:"dosage_options"`
	FrequencyOptions []string `json:"frequency_options"`
	RouteOptions     []string `json:"route_options"`
	Price            *float64 `json:"price"`
	StockQuantity    *int     `json:"stock_quantity"`
	Manufacturer     *string  `json:"manufacturer"`
	Description      *string  `json:"description"`
}

func (m *Medication) deriveStock() {
	m.InStock = m.StockQuantity > 0
}
