package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type contextKey string

const (
	UserIDKey   contextKey = "user_id"
	UserRoleKey contextKey = "user_role"
	TokenIDKey  contextKey = "token_id"
)

// Middleware authenticates every request. The session token is read from the
// hms_token cookie first, then from an Authorization: Bearer header. A valid
// token attaches the caller's account id and role to the request context;
// anything else terminates the request with 401.
//
// Routes that must stay public (login, register, health) are excluded via the
// skipper.
func Middleware(issuer *Issuer, revoked *RevocationStore, skipper func(echo.Context) bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if skipper != nil && skipper(c) {
				return next(c)
			}

			tokenStr := tokenFromRequest(c)
			if tokenStr == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing credentials")
			}

			claims, err := issuer.Verify(tokenStr)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired token")
			}

			if revoked != nil && revoked.IsRevoked(claims.ID) {
				return echo.NewHTTPError(http.StatusUnauthorized, "session has been revoked")
			}

			accountID, err := uuid.Parse(claims.Subject)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token subject")
			}

			ctx := c.Request().Context()
			ctx = context.WithValue(ctx, UserIDKey, accountID)
			ctx = context.WithValue(ctx, UserRoleKey, claims.Role)
			ctx = context.WithValue(ctx, TokenIDKey, claims.ID)
			c.SetRequest(c.Request().WithContext(ctx))

			return next(c)
		}
	}
}

// tokenFromRequest extracts the raw session token: cookie first, bearer
// header second.
func tokenFromRequest(c echo.Context) string {
	if cookie, err := c.Cookie(CookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	authHeader := c.Request().Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return parts[1]
}

// PathSkipper returns a skipper that bypasses authentication for the given
// path prefixes.
func PathSkipper(prefixes ...string) func(echo.Context) bool {
	return func(c echo.Context) bool {
		path := c.Request().URL.Path
		for _, p := range prefixes {
			if strings.HasPrefix(path, p) {
				return true
			}
		}
		return false
	}
}

// UserIDFromContext returns the authenticated account id, or uuid.Nil.
func UserIDFromContext(ctx context.Context) uuid.UUID {
	uid, _ := ctx.Value(UserIDKey).(uuid.UUID)
	return uid
}

// RoleFromContext returns the authenticated role, or "".
func RoleFromContext(ctx context.Context) string {
	role, _ := ctx.Value(UserRoleKey).(string)
	return role
}

// TokenIDFromContext returns the session token's jti, or "".
func TokenIDFromContext(ctx context.Context) string {
	jti, _ := ctx.Value(TokenIDKey).(string)
	return jti
}
