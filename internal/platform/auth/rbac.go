package auth

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// Account roles.
const (
	RoleAdmin   = "admin"
	RoleDoctor  = "doctor"
	RolePatient = "patient"
)

// ErrForbidden is returned by the ownership helpers when a valid identity is
// not allowed to touch the resource. Handlers map it to 403.
var ErrForbidden = echo.NewHTTPError(http.StatusForbidden, "access denied")

// RequireRole returns middleware that checks the caller's role against an
// allow-list. Admins pass every role check.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role := RoleFromContext(c.Request().Context())
			if role == RoleAdmin {
				return next(c)
			}
			for _, required := range roles {
				if role == required {
					return next(c)
				}
			}
			return echo.NewHTTPError(http.StatusForbidden,
				fmt.Sprintf("required role: %s", strings.Join(roles, " or ")))
		}
	}
}

// CanAccessPatientResource decides whether the caller may touch a
// patient-owned clinical resource (appointment, record, prescription, bill).
// Allowed: admins, the owning patient, and the doctor named on the resource.
// Doctors are NOT granted blanket access to other doctors' patients.
func CanAccessPatientResource(ctx context.Context, patientID, doctorID uuid.UUID) error {
	caller := UserIDFromContext(ctx)
	switch RoleFromContext(ctx) {
	case RoleAdmin:
		return nil
	case RolePatient:
		if caller == patientID {
			return nil
		}
	case RoleDoctor:
		if doctorID != uuid.Nil && caller == doctorID {
			return nil
		}
	}
	return ErrForbidden
}

// CanAccessProfile decides whether the caller may read or update an account
// profile. Allowed: admins, the account owner, and - for patient profiles
// only - any doctor, who needs demographics to take a booking.
func CanAccessProfile(ctx context.Context, ownerID uuid.UUID, ownerRole string) error {
	caller := UserIDFromContext(ctx)
	role := RoleFromContext(ctx)

	if role == RoleAdmin || caller == ownerID {
		return nil
	}
	if role == RoleDoctor && ownerRole == RolePatient {
		return nil
	}
	return ErrForbidden
}
