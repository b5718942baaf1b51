package prescription

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

type mockRepo struct {
	prescriptions map[uuid.UUID]*Prescription
}

func newMockRepo() *mockRepo {
	return &mockRepo{prescriptions: make(map[uuid.UUID]*Prescription)}
}

func (m *mockRepo) Create(_ context.Context, p *Prescription) error {
	p.ID = uuid.New()
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt
	m.prescriptions[p.ID] = p
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*Prescription, error) {
	p, ok := m.prescriptions[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *mockRepo) Update(_ context.Context, p *Prescription) error {
	if _, ok := m.prescriptions[p.ID]; !ok {
		return ErrNotFound
	}
	m.prescriptions[p.ID] = p
	return nil
}

func (m *mockRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := m.prescriptions[id]; !ok {
		return ErrNotFound
	}
	delete(m.prescriptions, id)
	return nil
}

func (m *mockRepo) List(_ context.Context, f Filter, limit, offset int) ([]*Prescription, int, error) {
	var out []*Prescription
	for _, p := range m.prescriptions {
		if f.PatientID != uuid.Nil && p.PatientID != f.PatientID {
			continue
		}
		if f.DoctorID != uuid.Nil && p.DoctorID != f.DoctorID {
			continue
		}
		cp := *p
		out = append(out, &cp)
	}
	return out, len(out), nil
}

func validPrescription() *Prescription {
	return &Prescription{
		PatientID: uuid.New(),
		DoctorID:  uuid.New(),
		Medications: []MedicationEntry{
			{Name: "Amoxicillin", Dosage: "500mg", Frequency: "3x daily", Route: "oral", Duration: "7 days"},
		},
	}
}

func TestCreate(t *testing.T) {
	svc := NewService(newMockRepo())

	p := validPrescription()
	if err := svc.Create(context.Background(), p); err != nil {
		t.Fatalf("create: %v", err)
	}
	if p.Date.IsZero() {
		t.Error("expected date to default to now")
	}
}

func TestCreate_EmptyMedications(t *testing.T) {
	svc := NewService(newMockRepo())

	p := validPrescription()
	p.Medications = nil
	if err := svc.Create(context.Background(), p); err == nil {
		t.Error("expected error for empty medication list")
	}

	p = validPrescription()
	p.Medications = []MedicationEntry{}
	if err := svc.Create(context.Background(), p); err == nil {
		t.Error("expected error for empty medication list")
	}
}

func TestCreate_IncompleteEntry(t *testing.T) {
	tests := []struct {
		name  string
		entry MedicationEntry
	}{
		{"no name", MedicationEntry{Dosage: "500mg", Frequency: "daily", Route: "oral"}},
		{"no dosage", MedicationEntry{Name: "Amoxicillin", Frequency: "daily", Route: "oral"}},
		{"no frequency", MedicationEntry{Name: "Amoxicillin", Dosage: "500mg", Route: "oral"}},
		{"no route", MedicationEntry{Name: "Amoxicillin", Dosage: "500mg", Frequency: "daily"}},
	}
	svc := NewService(newMockRepo())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := validPrescription()
			p.Medications = []MedicationEntry{tt.entry}
			if err := svc.Create(context.Background(), p); err == nil {
				t.Error("expected validation error, got nil")
			}
		})
	}
}

func TestCreate_NegativeRefills(t *testing.T) {
	svc := NewService(newMockRepo())

	p := validPrescription()
	p.Refills = -1
	if err := svc.Create(context.Background(), p); err == nil {
		t.Error("expected error for negative refills")
	}
}

func TestUpdate_ReplacesMedications(t *testing.T) {
	svc := NewService(newMockRepo())
	ctx := context.Background()

	p := validPrescription()
	if err := svc.Create(ctx, p); err != nil {
		t.Fatalf("create: %v", err)
	}

	updated, err := svc.Update(ctx, p.ID, &UpdateInput{
		Medications: []MedicationEntry{
			{Name: "Ibuprofen", Dosage: "200mg", Frequency: "as needed", Route: "oral"},
		},
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if len(updated.Medications) != 1 || updated.Medications[0].Name != "Ibuprofen" {
		t.Errorf("medications not replaced: %v", updated.Medications)
	}
}

func TestUpdate_RefillsSetToZero(t *testing.T) {
	svc := NewService(newMockRepo())
	ctx := context.Background()

	p := validPrescription()
	p.Refills = 3
	if err := svc.Create(ctx, p); err != nil {
		t.Fatalf("create: %v", err)
	}

	zero := 0
	updated, err := svc.Update(ctx, p.ID, &UpdateInput{Refills: &zero})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Refills != 0 {
		t.Errorf("refills = %d, want 0", updated.Refills)
	}

	// Omitted refills leave the stored value alone.
	updated, err = svc.Update(ctx, p.ID, &UpdateInput{})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Refills != 0 {
		t.Errorf("refills = %d, want 0", updated.Refills)
	}

	neg := -1
	if _, err := svc.Update(ctx, p.ID, &UpdateInput{Refills: &neg}); err == nil {
		t.Error("expected error for negative refills")
	}
}

func TestDelete_Missing(t *testing.T) {
	svc := NewService(newMockRepo())
	if err := svc.Delete(context.Background(), uuid.New()); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
