package appointment

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/hms/hms/internal/platform/httpx"
)

var (
	ErrNotFound          = errors.New("appointment not found")
	ErrDoctorNotFound    = errors.New("doctor not found")
	ErrSlotTaken         = errors.New("slot is already booked")
	ErrSlotUnavailable   = errors.New("slot is outside the doctor's availability")
	ErrNoDoctorAvailable = errors.New("no doctor is available for the requested slot")
	ErrInvalidTransition = errors.New("invalid status transition")
)

type Service struct {
	repo    Repository
	doctors DoctorDirectory
}

func NewService(repo Repository, doctors DoctorDirectory) *Service {
	return &Service{repo: repo, doctors: doctors}
}

// Book creates an appointment. When no doctor is named, one is auto-assigned
// at random among the doctors free for the requested slot. The availability
// check is advisory; the unique index behind Create is what actually prevents
// a double booking under concurrency.
func (s *Service) Book(ctx context.Context, a *Appointment) error {
	if a.PatientID == uuid.Nil {
		return httpx.Invalidf("patient_id is required")
	}
	if a.Date.IsZero() {
		return httpx.Invalidf("date is required")
	}
	if _, err := parseClock(a.StartTime); err != nil {
		return httpx.Invalidf("start_time must be HH:MM")
	}
	a.Date = truncateToDay(a.Date)
	if a.Date.Before(truncateToDay(time.Now())) {
		return httpx.Invalidf("date must not be in the past")
	}
	if a.DurationMinutes == 0 {
		a.DurationMinutes = SlotMinutes
	}
	if a.DurationMinutes < SlotMinutes || a.DurationMinutes%SlotMinutes != 0 {
		return httpx.Invalidf("duration_minutes must be a positive multiple of %d", SlotMinutes)
	}

	if a.DoctorID == uuid.Nil {
		doc, err := s.assignDoctor(ctx, a.Date, a.StartTime)
		if err != nil {
			return err
		}
		a.DoctorID = doc.ID
		if a.Department == nil && doc.Department != "" {
			dept := doc.Department
			a.Department = &dept
		}
	} else {
		doc, err := s.doctors.GetDoctor(ctx, a.DoctorID)
		if err != nil {
			return err
		}
		if !containsSlot(doc.Availability.SlotsOn(a.Date), a.StartTime) {
			return ErrSlotUnavailable
		}
		booked, err := s.repo.BookedTimes(ctx, a.DoctorID, a.Date)
		if err != nil {
			return err
		}
		if containsSlot(booked, a.StartTime) {
			return ErrSlotTaken
		}
	}

	// Doctors creating a booking on their own calendar start it confirmed;
	// everything else starts requested.
	if a.Status != StatusConfirmed {
		a.Status = StatusRequested
	}
	return s.repo.Create(ctx, a)
}

// assignDoctor picks a random doctor who works the slot and has it free.
func (s *Service) assignDoctor(ctx context.Context, date time.Time, startTime string) (*Doctor, error) {
	doctors, err := s.doctors.ListDoctors(ctx)
	if err != nil {
		return nil, err
	}

	candidates := make([]*Doctor, 0, len(doctors))
	for _, d := range doctors {
		if containsSlot(d.Availability.SlotsOn(date), startTime) {
			candidates = append(candidates, d)
		}
	}
	rand.Shuffle(len(candidates), func(i, j int) {
		candidates[i], candidates[j] = candidates[j], candidates[i]
	})

	for _, d := range candidates {
		booked, err := s.repo.BookedTimes(ctx, d.ID, date)
		if err != nil {
			return nil, err
		}
		if !containsSlot(booked, startTime) {
			return d, nil
		}
	}
	return nil, ErrNoDoctorAvailable
}

// AvailableSlots returns the free slot start times for a doctor on a date:
// the availability enumeration minus the slots already booked.
func (s *Service) AvailableSlots(ctx context.Context, doctorID uuid.UUID, date time.Time) ([]string, error) {
	doc, err := s.doctors.GetDoctor(ctx, doctorID)
	if err != nil {
		return nil, err
	}
	date = truncateToDay(date)

	all := doc.Availability.SlotsOn(date)
	if len(all) == 0 {
		return []string{}, nil
	}

	booked, err := s.repo.BookedTimes(ctx, doctorID, date)
	if err != nil {
		return nil, err
	}

	taken := make(map[string]bool, len(booked))
	for _, t := range booked {
		taken[t] = true
	}

	free := []string{}
	for _, slot := range all {
		if !taken[slot] {
			free = append(free, slot)
		}
	}
	return free, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return s.repo.GetByID(ctx, id)
}

// UpdateStatus enforces the lifecycle: requested -> confirmed -> completed,
// with cancelled and no-show reachable from any non-terminal state.
func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*Appointment, error) {
	if !validStatuses[status] {
		return nil, httpx.Invalidf("invalid status: %s", status)
	}

	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !transitionAllowed(current.Status, status) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, current.Status, status)
	}
	return s.repo.UpdateStatus(ctx, id, status)
}

func (s *Service) Cancel(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return s.UpdateStatus(ctx, id, StatusCancelled)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) List(ctx context.Context, f Filter, limit, offset int) ([]*Appointment, int, error) {
	if f.Status != "" && !validStatuses[f.Status] {
		return nil, 0, httpx.Invalidf("invalid status filter: %s", f.Status)
	}
	return s.repo.List(ctx, f, limit, offset)
}

func transitionAllowed(from, to string) bool {
	for _, allowed := range statusTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

func containsSlot(slots []string, t string) bool {
	for _, s := range slots {
		if s == t {
			return true
		}
	}
	return false
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
