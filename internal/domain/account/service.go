package account

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/hms/hms/internal/platform/auth"
	"github.com/hms/hms/internal/platform/httpx"
)

var (
	ErrNotFound           = errors.New("account not found")
	ErrEmailTaken         = errors.New("email is already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

var validRoles = map[string]bool{
	auth.RoleAdmin:   true,
	auth.RoleDoctor:  true,
	auth.RolePatient: true,
}

const minPasswordLen = 8

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Register creates an account with a bcrypt-hashed password. The plaintext
// password never touches the model struct.
func (s *Service) Register(ctx context.Context, a *Account, password string) error {
	a.Name = strings.TrimSpace(a.Name)
	a.Email = strings.ToLower(strings.TrimSpace(a.Email))

	if a.Name == "" {
		return httpx.Invalidf("name is required")
	}
	if a.Email == "" || !strings.Contains(a.Email, "@") {
		return httpx.Invalidf("a valid email is required")
	}
	if len(password) < minPasswordLen {
		return httpx.Invalidf("password must be at least %d characters", minPasswordLen)
	}
	if !validRoles[a.Role] {
		return httpx.Invalidf("invalid role: %s", a.Role)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	a.PasswordHash = string(hash)

	return s.repo.Create(ctx, a)
}

// Authenticate verifies an email/password pair. It returns
// ErrInvalidCredentials for both unknown emails and wrong passwords so the
// response does not reveal which accounts exist.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*Account, error) {
	a, err := s.repo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	return a, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Account, error) {
	return s.repo.GetByID(ctx, id)
}

// Update applies profile changes. Role is immutable after creation; email
// changes still hit the unique constraint.
func (s *Service) Update(ctx context.Context, id uuid.UUID, update *Account) (*Account, error) {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if name := strings.TrimSpace(update.Name); name != "" {
		existing.Name = name
	}
	if email := strings.ToLower(strings.TrimSpace(update.Email)); email != "" {
		if !strings.Contains(email, "@") {
			return nil, httpx.Invalidf("a valid email is required")
		}
		existing.Email = email
	}

	if existing.Role == auth.RoleDoctor {
		if update.Specialization != nil {
			existing.Specialization = update.Specialization
		}
		if update.Department != nil {
			existing.Department = update.Department
		}
		if update.AvailableDays != nil {
			for _, d := range update.AvailableDays {
				if !validWeekday(d) {
					return nil, httpx.Invalidf("invalid weekday: %s", d)
				}
			}
			existing.AvailableDays = update.AvailableDays
		}
		if update.AvailableFrom != nil {
			existing.AvailableFrom = update.AvailableFrom
		}
		if update.AvailableTo != nil {
			existing.AvailableTo = update.AvailableTo
		}
	}

	if existing.Role == auth.RolePatient {
		if update.BirthDate != nil {
			existing.BirthDate = update.BirthDate
		}
		if update.Gender != nil {
			existing.Gender = update.Gender
		}
		if update.BloodGroup != nil {
			existing.BloodGroup = update.BloodGroup
		}
		if update.MedicalHistory != nil {
			existing.MedicalHistory = update.MedicalHistory
		}
	}

	if err := s.repo.Update(ctx, existing); err != nil {
		return nil, err
	}
	return existing, nil
}

// ChangePassword rehashes and stores a new password after checking the
// current one.
func (s *Service) ChangePassword(ctx context.Context, id uuid.UUID, current, next string) error {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(current)) != nil {
		return ErrInvalidCredentials
	}
	if len(next) < minPasswordLen {
		return httpx.Invalidf("password must be at least %d characters", minPasswordLen)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(next), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	a.PasswordHash = string(hash)
	return s.repo.Update(ctx, a)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) List(ctx context.Context, role string, limit, offset int) ([]*Account, int, error) {
	if role != "" && !validRoles[role] {
		return nil, 0, httpx.Invalidf("invalid role filter: %s", role)
	}
	return s.repo.List(ctx, role, limit, offset)
}

func validWeekday(d string) bool {
	switch d {
	case "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday":
		return true
	}
	return false
}
