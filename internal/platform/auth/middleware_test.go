package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

func gatedEcho(issuer *Issuer, revoked *RevocationStore) *echo.Echo {
	e := echo.New()
	e.Use(Middleware(issuer, revoked, PathSkipper("/healthz")))
	e.GET("/protected", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"user_id": UserIDFromContext(c.Request().Context()).String(),
			"role":    RoleFromContext(c.Request().Context()),
		})
	})
	e.GET("/healthz", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	return e
}

func TestMiddleware_RejectsMissingToken(t *testing.T) {
	issuer := NewIssuer([]byte("test-secret"), time.Hour)
	e := gatedEcho(issuer, nil)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
}

func TestMiddleware_RejectsInvalidToken(t *testing.T) {
	issuer := NewIssuer([]byte("test-secret"), time.Hour)
	e := gatedEcho(issuer, nil)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer bogus")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
}

func TestMiddleware_AcceptsCookieToken(t *testing.T) {
	issuer := NewIssuer([]byte("test-secret"), time.Hour)
	e := gatedEcho(issuer, nil)

	token, _, err := issuer.Issue(uuid.New(), RolePatient)
	if err != nil {
		t.Fatalf("Issue() error: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: token})
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestMiddleware_AcceptsBearerToken(t *testing.T) {
	issuer := NewIssuer([]byte("test-secret"), time.Hour)
	e := gatedEcho(issuer, nil)

	token, _, err := issuer.Issue(uuid.New(), RoleDoctor)
	if err != nil {
		t.Fatalf("Issue() error: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestMiddleware_RejectsRevokedToken(t *testing.T) {
	issuer := NewIssuer([]byte("test-secret"), time.Hour)
	revoked := NewRevocationStore()
	defer revoked.Close()
	e := gatedEcho(issuer, revoked)

	token, claims, err := issuer.Issue(uuid.New(), RolePatient)
	if err != nil {
		t.Fatalf("Issue() error: %v", err)
	}
	revoked.Revoke(claims.ID, claims.ExpiresAt.Time)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 for revoked token, got %d", rec.Code)
	}
}

func TestMiddleware_SkipperBypassesAuth(t *testing.T) {
	issuer := NewIssuer([]byte("test-secret"), time.Hour)
	e := gatedEcho(issuer, nil)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200 for skipped path, got %d", rec.Code)
	}
}
