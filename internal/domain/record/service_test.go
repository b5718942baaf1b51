package record

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

type mockRepo struct {
	records map[uuid.UUID]*Record
}

func newMockRepo() *mockRepo {
	return &mockRepo{records: make(map[uuid.UUID]*Record)}
}

func (m *mockRepo) Create(_ context.Context, r *Record) error {
	r.ID = uuid.New()
	r.CreatedAt = time.Now()
	r.UpdatedAt = r.CreatedAt
	m.records[r.ID] = r
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*Record, error) {
	r, ok := m.records[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (m *mockRepo) Update(_ context.Context, r *Record) error {
	if _, ok := m.records[r.ID]; !ok {
		return ErrNotFound
	}
	m.records[r.ID] = r
	return nil
}

func (m *mockRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := m.records[id]; !ok {
		return ErrNotFound
	}
	delete(m.records, id)
	return nil
}

func (m *mockRepo) List(_ context.Context, f Filter, limit, offset int) ([]*Record, int, error) {
	var out []*Record
	for _, r := range m.records {
		if f.PatientID != uuid.Nil && r.PatientID != f.PatientID {
			continue
		}
		if f.DoctorID != uuid.Nil && r.DoctorID != f.DoctorID {
			continue
		}
		cp := *r
		out = append(out, &cp)
	}
	return out, len(out), nil
}

func TestCreate(t *testing.T) {
	svc := NewService(newMockRepo())

	rec := &Record{PatientID: uuid.New(), DoctorID: uuid.New(), Diagnosis: "Hypertension"}
	if err := svc.Create(context.Background(), rec); err != nil {
		t.Fatalf("create: %v", err)
	}
	if rec.Date.IsZero() {
		t.Error("expected date to default to now")
	}
	if rec.Attachments == nil {
		t.Error("expected attachments to default to an empty list")
	}
}

func TestCreate_Validation(t *testing.T) {
	svc := NewService(newMockRepo())
	ctx := context.Background()

	tests := []struct {
		name string
		rec  *Record
	}{
		{"missing patient", &Record{DoctorID: uuid.New(), Diagnosis: "x"}},
		{"missing doctor", &Record{PatientID: uuid.New(), Diagnosis: "x"}},
		{"missing diagnosis", &Record{PatientID: uuid.New(), DoctorID: uuid.New()}},
		{"blank diagnosis", &Record{PatientID: uuid.New(), DoctorID: uuid.New(), Diagnosis: "   "}},
		{"attachment without url", &Record{
			PatientID: uuid.New(), DoctorID: uuid.New(), Diagnosis: "x",
			Attachments: []Attachment{{Name: "scan.pdf"}},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := svc.Create(ctx, tt.rec); err == nil {
				t.Error("expected validation error, got nil")
			}
		})
	}
}

func TestUpdate(t *testing.T) {
	svc := NewService(newMockRepo())
	ctx := context.Background()

	rec := &Record{PatientID: uuid.New(), DoctorID: uuid.New(), Diagnosis: "Hypertension"}
	if err := svc.Create(ctx, rec); err != nil {
		t.Fatalf("create: %v", err)
	}

	treatment := "Lisinopril 10mg"
	updated, err := svc.Update(ctx, rec.ID, &Record{Treatment: &treatment})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Treatment == nil || *updated.Treatment != treatment {
		t.Error("treatment not applied")
	}
	if updated.Diagnosis != "Hypertension" {
		t.Errorf("diagnosis should be unchanged, got %q", updated.Diagnosis)
	}
	if updated.PatientID != rec.PatientID {
		t.Error("patient binding must not change on update")
	}
}

func TestDelete_Missing(t *testing.T) {
	svc := NewService(newMockRepo())
	if err := svc.Delete(context.Background(), uuid.New()); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
