package billing

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hms/hms/internal/platform/httpx"
)

var (
	ErrNotFound    = errors.New("bill not found")
	ErrAlreadyPaid = errors.New("bill is already paid")
	ErrNotPayable  = errors.New("bill cannot be paid in its current status")
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create stores a bill. The total is derived from the line items; whatever
// amount the caller sent is discarded.
func (s *Service) Create(ctx context.Context, b *Bill) error {
	if b.PatientID == uuid.Nil {
		return httpx.Invalidf("patient_id is required")
	}
	if err := validateItems(b.Items); err != nil {
		return err
	}
	if b.Status == "" {
		b.Status = StatusPending
	}
	if !validStatuses[b.Status] {
		return httpx.Invalidf("invalid status: %s", b.Status)
	}
	recompute(b)
	return s.repo.Create(ctx, b)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Bill, error) {
	return s.repo.GetByID(ctx, id)
}

// Update replaces the line items and recomputes the total. Paid bills are
// immutable.
func (s *Service) Update(ctx context.Context, id uuid.UUID, update *Bill) (*Bill, error) {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing.Status == StatusPaid {
		return nil, ErrAlreadyPaid
	}

	if update.Items != nil {
		if err := validateItems(update.Items); err != nil {
			return nil, err
		}
		existing.Items = update.Items
	}
	if update.DueDate != nil {
		existing.DueDate = update.DueDate
	}
	if update.Status != "" {
		if !validStatuses[update.Status] {
			return nil, httpx.Invalidf("invalid status: %s", update.Status)
		}
		if update.Status == StatusPaid {
			return nil, httpx.Invalidf("use the pay operation to settle a bill")
		}
		existing.Status = update.Status
	}

	recompute(existing)
	if err := s.repo.Update(ctx, existing); err != nil {
		return nil, err
	}
	return existing, nil
}

// Pay settles a pending or overdue bill.
func (s *Service) Pay(ctx context.Context, id uuid.UUID, method string) (*Bill, error) {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	switch b.Status {
	case StatusPaid:
		return nil, ErrAlreadyPaid
	case StatusPending, StatusOverdue:
	default:
		return nil, ErrNotPayable
	}

	method = strings.TrimSpace(method)
	if method == "" {
		return nil, httpx.Invalidf("payment_method is required")
	}

	now := time.Now().UTC()
	b.Status = StatusPaid
	b.PaymentMethod = &method
	b.PaidAt = &now

	if err := s.repo.Update(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) List(ctx context.Context, f Filter, limit, offset int) ([]*Bill, int, error) {
	if f.Status != "" && !validStatuses[f.Status] {
		return nil, 0, httpx.Invalidf("invalid status filter: %s", f.Status)
	}
	return s.repo.List(ctx, f, limit, offset)
}

func validateItems(items []LineItem) error {
	if len(items) == 0 {
		return httpx.Invalidf("at least one line item is required")
	}
	for i, item := range items {
		if strings.TrimSpace(item.Description) == "" {
			return httpx.Invalidf("line item %d: description is required", i+1)
		}
		if item.Quantity <= 0 {
			return httpx.Invalidf("line item %d: quantity must be positive", i+1)
		}
		if item.UnitPrice < 0 {
			return httpx.Invalidf("line item %d: unit price must not be negative", i+1)
		}
	}
	return nil
}

// recompute derives each line total and the bill amount from quantities and
// unit prices, rounded to cents.
func recompute(b *Bill) {
	var total float64
	for i := range b.Items {
		item := &b.Items[i]
		item.LineTotal = roundCents(float64(item.Quantity) * item.UnitPrice)
		total += item.LineTotal
	}
	b.Amount = roundCents(total)
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
