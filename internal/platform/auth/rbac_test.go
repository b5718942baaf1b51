package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

func ctxWithIdentity(id uuid.UUID, role string) context.Context {
	ctx := context.WithValue(context.Background(), UserIDKey, id)
	return context.WithValue(ctx, UserRoleKey, role)
}

func TestRequireRole(t *testing.T) {
	tests := []struct {
		name     string
		role     string
		allowed  []string
		wantCode int
	}{
		{"matching role", RoleDoctor, []string{RoleDoctor}, http.StatusOK},
		{"admin bypasses", RoleAdmin, []string{RoleDoctor}, http.StatusOK},
		{"wrong role", RolePatient, []string{RoleDoctor}, http.StatusForbidden},
		{"no role", "", []string{RoleDoctor}, http.StatusForbidden},
		{"one of several", RolePatient, []string{RoleDoctor, RolePatient}, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			h := RequireRole(tt.allowed...)(func(c echo.Context) error {
				return c.NoContent(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req = req.WithContext(ctxWithIdentity(uuid.New(), tt.role))
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			err := h(c)
			code := rec.Code
			if he, ok := err.(*echo.HTTPError); ok {
				code = he.Code
			}
			if code != tt.wantCode {
				t.Errorf("expected %d, got %d", tt.wantCode, code)
			}
		})
	}
}

func TestCanAccessPatientResource(t *testing.T) {
	patient := uuid.New()
	doctor := uuid.New()
	stranger := uuid.New()

	tests := []struct {
		name    string
		caller  uuid.UUID
		role    string
		wantErr bool
	}{
		{"admin always allowed", stranger, RoleAdmin, false},
		{"owning patient allowed", patient, RolePatient, false},
		{"other patient forbidden", stranger, RolePatient, true},
		{"attending doctor allowed", doctor, RoleDoctor, false},
		{"other doctor forbidden", stranger, RoleDoctor, true},
		{"unknown role forbidden", stranger, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := ctxWithIdentity(tt.caller, tt.role)
			err := CanAccessPatientResource(ctx, patient, doctor)
			if tt.wantErr && err == nil {
				t.Error("expected access to be denied")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("expected access to be granted, got %v", err)
			}
		})
	}
}

func TestCanAccessPatientResource_NoAssignedDoctor(t *testing.T) {
	patient := uuid.New()
	doctor := uuid.New()

	// A doctor is not allowed in when the resource names no doctor.
	ctx := ctxWithIdentity(doctor, RoleDoctor)
	if err := CanAccessPatientResource(ctx, patient, uuid.Nil); err == nil {
		t.Error("expected denial when resource has no assigned doctor")
	}
}

func TestCanAccessProfile(t *testing.T) {
	owner := uuid.New()
	other := uuid.New()

	tests := []struct {
		name      string
		caller    uuid.UUID
		role      string
		ownerRole string
		wantErr   bool
	}{
		{"admin reads anyone", other, RoleAdmin, RolePatient, false},
		{"owner reads self", owner, RolePatient, RolePatient, false},
		{"doctor reads patient profile", other, RoleDoctor, RolePatient, false},
		{"doctor cannot read doctor profile", other, RoleDoctor, RoleDoctor, true},
		{"patient cannot read other patient", other, RolePatient, RolePatient, true},
		{"patient cannot read doctor profile", other, RolePatient, RoleDoctor, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := ctxWithIdentity(tt.caller, tt.role)
			err := CanAccessProfile(ctx, owner, tt.ownerRole)
			if tt.wantErr && err == nil {
				t.Error("expected access to be denied")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("expected access to be granted, got %v", err)
			}
		})
	}
}
