package account

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/hms/hms/internal/platform/auth"
	"github.com/hms/hms/internal/platform/httpx"
)

func setupHandler(t *testing.T) (*echo.Echo, *Handler) {
	t.Helper()
	issuer := auth.NewIssuer([]byte("test-secret-key-for-handler-tests"), time.Hour)
	revoked := auth.NewRevocationStore()
	t.Cleanup(revoked.Close)

	h := NewHandler(NewService(newMockRepo()), issuer, revoked)
	e := echo.New()
	h.RegisterRoutes(e.Group("/api/v1"))
	return e, h
}

func postJSON(e *echo.Echo, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestRegisterEndpoint(t *testing.T) {
	e, _ := setupHandler(t)

	rec := postJSON(e, "/api/v1/auth/register",
		`{"name":"Jane","email":"jane@example.com","password":"supersecret"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var created Account
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if created.Role != auth.RolePatient {
		t.Errorf("expected default role patient, got %q", created.Role)
	}
	if strings.Contains(rec.Body.String(), "password") {
		t.Error("response body leaks password material")
	}
}

func TestRegisterEndpoint_DuplicateEmail(t *testing.T) {
	e, _ := setupHandler(t)

	body := `{"name":"Jane","email":"jane@example.com","password":"supersecret"}`
	if rec := postJSON(e, "/api/v1/auth/register", body); rec.Code != http.StatusCreated {
		t.Fatalf("first register: expected 201, got %d", rec.Code)
	}

	rec := postJSON(e, "/api/v1/auth/register", body)
	if rec.Code != http.StatusConflict {
		t.Errorf("expected 409 for duplicate email, got %d", rec.Code)
	}
}

func TestRegisterEndpoint_AdminRoleRejected(t *testing.T) {
	e, _ := setupHandler(t)

	rec := postJSON(e, "/api/v1/auth/register",
		`{"name":"Evil","email":"evil@example.com","password":"supersecret","role":"admin"}`)
	if rec.Code != http.StatusForbidden {
		t.Errorf("expected 403 for self-registered admin, got %d", rec.Code)
	}
}

func TestLoginEndpoint(t *testing.T) {
	e, _ := setupHandler(t)

	postJSON(e, "/api/v1/auth/register",
		`{"name":"Jane","email":"jane@example.com","password":"supersecret"}`)

	rec := postJSON(e, "/api/v1/auth/login",
		`{"email":"jane@example.com","password":"supersecret"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp loginResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Token == "" {
		t.Error("expected a session token in the body")
	}

	foundCookie := false
	for _, c := range rec.Result().Cookies() {
		if c.Name == auth.CookieName && c.Value != "" {
			foundCookie = true
			if !c.HttpOnly {
				t.Error("session cookie must be HTTP-only")
			}
		}
	}
	if !foundCookie {
		t.Error("expected session cookie to be set")
	}
}

func TestRegisterEndpoint_ShortPassword(t *testing.T) {
	e, _ := setupHandler(t)

	rec := postJSON(e, "/api/v1/auth/register",
		`{"name":"Jane","email":"jane@example.com","password":"short"}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for a short password, got %d", rec.Code)
	}
}

// erroringRepo simulates a database outage on List.
type erroringRepo struct {
	*mockRepo
}

func (r *erroringRepo) List(context.Context, string, int, int) ([]*Account, int, error) {
	return nil, 0, fmt.Errorf("list accounts: %w", errors.New("pq: connection refused to 10.0.0.5:5432"))
}

func asRole(role string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := context.WithValue(c.Request().Context(), auth.UserIDKey, uuid.New())
			ctx = context.WithValue(ctx, auth.UserRoleKey, role)
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}

func TestListEndpoint_RepoFailureStaysOpaque(t *testing.T) {
	issuer := auth.NewIssuer([]byte("test-secret-key-for-handler-tests"), time.Hour)
	revoked := auth.NewRevocationStore()
	t.Cleanup(revoked.Close)

	h := NewHandler(NewService(&erroringRepo{newMockRepo()}), issuer, revoked)
	e := echo.New()
	e.HTTPErrorHandler = httpx.ErrorHandler(zerolog.Nop())
	e.Use(asRole(auth.RoleAdmin))
	h.RegisterRoutes(e.Group("/api/v1"))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/accounts", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 for a repository failure, got %d: %s", rec.Code, rec.Body.String())
	}
	body := rec.Body.String()
	if strings.Contains(body, "connection refused") {
		t.Errorf("response leaks database detail: %s", body)
	}
	if !strings.Contains(body, "internal server error") {
		t.Errorf("expected the generic message, got %s", body)
	}
}

func TestLoginEndpoint_BadCredentials(t *testing.T) {
	e, _ := setupHandler(t)

	postJSON(e, "/api/v1/auth/register",
		`{"name":"Jane","email":"jane@example.com","password":"supersecret"}`)

	rec := postJSON(e, "/api/v1/auth/login",
		`{"email":"jane@example.com","password":"wrongpass"}`)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
}
