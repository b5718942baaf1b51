package account

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/hms/hms/internal/platform/auth"
	"github.com/hms/hms/internal/platform/httpx"
	"github.com/hms/hms/pkg/pagination"
)

type Handler struct {
	svc     *Service
	issuer  *auth.Issuer
	revoked *auth.RevocationStore
}

func NewHandler(svc *Service, issuer *auth.Issuer, revoked *auth.RevocationStore) *Handler {
	return &Handler{svc: svc, issuer: issuer, revoked: revoked}
}

// RegisterRoutes mounts the auth and account endpoints. Register and login
// must be listed in the auth middleware skipper; everything else requires a
// session.
func (h *Handler) RegisterRoutes(api *echo.Group) {
	authGroup := api.Group("/auth")
	authGroup.POST("/register", h.Register)
	authGroup.POST("/login", h.Login)
	authGroup.POST("/logout", h.Logout)
	authGroup.GET("/me", h.Me)

	accounts := api.Group("/accounts")
	accounts.GET("", h.List, auth.RequireRole(auth.RoleAdmin))
	accounts.POST("", h.Create, auth.RequireRole(auth.RoleAdmin))
	accounts.GET("/:id", h.Get)
	accounts.PUT("/:id", h.Update)
	accounts.PUT("/:id/password", h.ChangePassword)
	accounts.DELETE("/:id", h.Delete, auth.RequireRole(auth.RoleAdmin))

	api.GET("/doctors", h.ListDoctors)
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`

	Specialization *string  `json:"specialization"`
	Department     *string  `json:"department"`
	AvailableDays  []string `json:"available_days"`
	AvailableFrom  *string  `json:"available_from"`
	AvailableTo    *string  `json:"available_to"`

	BirthDate      *time.Time `json:"birth_date"`
	Gender         *string    `json:"gender"`
	BloodGroup     *string    `json:"blood_group"`
	MedicalHistory []string   `json:"medical_history"`
}

func (req *registerRequest) toAccount() *Account {
	return &Account{
		Name:           req.Name,
		Email:          req.Email,
		Role:           req.Role,
		Specialization: req.Specialization,
		Department:     req.Department,
		AvailableDays:  req.AvailableDays,
		AvailableFrom:  req.AvailableFrom,
		AvailableTo:    req.AvailableTo,
		BirthDate:      req.BirthDate,
		Gender:         req.Gender,
		BloodGroup:     req.BloodGroup,
		MedicalHistory: req.MedicalHistory,
	}
}

// Register handles self sign-up. Admin accounts cannot be created here; only
// an existing admin can mint one through POST /accounts.
func (h *Handler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Role == "" {
		req.Role = auth.RolePatient
	}
	if req.Role == auth.RoleAdmin {
		return echo.NewHTTPError(http.StatusForbidden, "admin accounts cannot be self-registered")
	}

	a := req.toAccount()
	if err := h.svc.Register(c.Request().Context(), a, req.Password); err != nil {
		return mapServiceError(err)
	}
	return c.JSON(http.StatusCreated, a)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token   string   `json:"token"`
	Account *Account `json:"account"`
}

// Login verifies credentials, sets the session cookie and also returns the
// token in the body for header-based clients.
func (h *Handler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	a, err := h.svc.Authenticate(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			return echo.NewHTTPError(http.StatusUnauthorized, ErrInvalidCredentials.Error())
		}
		return err
	}

	token, _, err := h.issuer.Issue(a.ID, a.Role)
	if err != nil {
		return err
	}
	auth.SetSessionCookie(c, token, h.issuer.TTL())

	return c.JSON(http.StatusOK, loginResponse{Token: token, Account: a})
}

// Logout revokes the current session token and clears the cookie.
func (h *Handler) Logout(c echo.Context) error {
	ctx := c.Request().Context()
	if jti := auth.TokenIDFromContext(ctx); jti != "" {
		h.revoked.Revoke(jti, time.Now().Add(h.issuer.TTL()))
	}
	auth.ClearSessionCookie(c)
	return c.JSON(http.StatusOK, map[string]string{"message": "logged out"})
}

// Me returns the authenticated caller's own account.
func (h *Handler) Me(c echo.Context) error {
	ctx := c.Request().Context()
	a, err := h.svc.Get(ctx, auth.UserIDFromContext(ctx))
	if err != nil {
		return mapServiceError(err)
	}
	return c.JSON(http.StatusOK, a)
}

// Create is the admin path for minting accounts of any role.
func (h *Handler) Create(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	a := req.toAccount()
	if err := h.svc.Register(c.Request().Context(), a, req.Password); err != nil {
		return mapServiceError(err)
	}
	return c.JSON(http.StatusCreated, a)
}

func (h *Handler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid account id")
	}

	ctx := c.Request().Context()
	a, err := h.svc.Get(ctx, id)
	if err != nil {
		return mapServiceError(err)
	}
	if err := auth.CanAccessProfile(ctx, a.ID, a.Role); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, a)
}

// Update lets the owner or an admin change a profile. Doctors can read
// patient profiles but never modify them.
func (h *Handler) Update(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid account id")
	}

	ctx := c.Request().Context()
	if auth.RoleFromContext(ctx) != auth.RoleAdmin && auth.UserIDFromContext(ctx) != id {
		return auth.ErrForbidden
	}

	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	a, err := h.svc.Update(ctx, id, req.toAccount())
	if err != nil {
		return mapServiceError(err)
	}
	return c.JSON(http.StatusOK, a)
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

func (h *Handler) ChangePassword(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid account id")
	}

	ctx := c.Request().Context()
	if auth.UserIDFromContext(ctx) != id {
		return auth.ErrForbidden
	}

	var req changePasswordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	if err := h.svc.ChangePassword(ctx, id, req.CurrentPassword, req.NewPassword); err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			return echo.NewHTTPError(http.StatusUnauthorized, "current password is incorrect")
		}
		return mapServiceError(err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "password updated"})
}

func (h *Handler) Delete(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid account id")
	}
	if err := h.svc.Delete(c.Request().Context(), id); err != nil {
		return mapServiceError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) List(c echo.Context) error {
	p := pagination.FromContext(c)
	accounts, total, err := h.svc.List(c.Request().Context(), c.QueryParam("role"), p.Limit, p.Offset)
	if err != nil {
		return mapServiceError(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(accounts, total, p.Limit, p.Offset))
}

// ListDoctors is open to every authenticated role so patients can pick a
// doctor when booking.
func (h *Handler) ListDoctors(c echo.Context) error {
	p := pagination.FromContext(c)
	doctors, total, err := h.svc.List(c.Request().Context(), auth.RoleDoctor, p.Limit, p.Offset)
	if err != nil {
		return mapServiceError(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(doctors, total, p.Limit, p.Offset))
}

// mapServiceError translates service sentinel errors to HTTP statuses.
// Anything unrecognized is treated as a validation failure except wrapped
// repository errors, which bubble up as 500s.
func mapServiceError(err error) error {
	switch {
	case errors.Is(err, ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, ErrNotFound.Error())
	case errors.Is(err, ErrEmailTaken):
		return echo.NewHTTPError(http.StatusConflict, ErrEmailTaken.Error())
	}
	var ve *httpx.ValidationError
	if errors.As(err, &ve) {
		return echo.NewHTTPError(http.StatusBadRequest, ve.Error())
	}
	return err
}
