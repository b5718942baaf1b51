package billing

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/hms/hms/internal/platform/auth"
	"github.com/hms/hms/internal/platform/httpx"
	"github.com/hms/hms/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts the billing endpoints. Only admins issue, edit or
// void bills; patients can read their own and pay them.
func (h *Handler) RegisterRoutes(api *echo.Group) {
	bills := api.Group("/bills")
	bills.POST("", h.Create, auth.RequireRole(auth.RoleAdmin))
	bills.GET("", h.List)
	bills.GET("/:id", h.Get)
	bills.PUT("/:id", h.Update, auth.RequireRole(auth.RoleAdmin))
	bills.POST("/:id/pay", h.Pay)
	bills.DELETE("/:id", h.Delete, auth.RequireRole(auth.RoleAdmin))
}

func (h *Handler) Create(c echo.Context) error {
	var b Bill
	if err := c.Bind(&b); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := h.svc.Create(c.Request().Context(), &b); err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusCreated, b)
}

func (h *Handler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid bill id")
	}

	ctx := c.Request().Context()
	b, err := h.svc.Get(ctx, id)
	if err != nil {
		return mapError(err)
	}
	if err := auth.CanAccessPatientResource(ctx, b.PatientID, uuid.Nil); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, b)
}

func (h *Handler) Update(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid bill id")
	}

	var update Bill
	if err := c.Bind(&update); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	b, err := h.svc.Update(c.Request().Context(), id, &update)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, b)
}

type payRequest struct {
	PaymentMethod string `json:"payment_method"`
}

// Pay settles a bill. The owning patient or an admin may pay.
func (h *Handler) Pay(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid bill id")
	}

	ctx := c.Request().Context()
	b, err := h.svc.Get(ctx, id)
	if err != nil {
		return mapError(err)
	}
	if err := auth.CanAccessPatientResource(ctx, b.PatientID, uuid.Nil); err != nil {
		return err
	}

	var req payRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	paid, err := h.svc.Pay(ctx, id, req.PaymentMethod)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, paid)
}

func (h *Handler) Delete(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid bill id")
	}
	if err := h.svc.Delete(c.Request().Context(), id); err != nil {
		return mapError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// List scopes results: patients see their own bills, admins can filter by
// patient and status. Doctors have no business with billing.
func (h *Handler) List(c echo.Context) error {
	ctx := c.Request().Context()

	f := Filter{Status: c.QueryParam("status")}
	switch auth.RoleFromContext(ctx) {
	case auth.RolePatient:
		f.PatientID = auth.UserIDFromContext(ctx)
	case auth.RoleAdmin:
		if pid := c.QueryParam("patient_id"); pid != "" {
			id, err := uuid.Parse(pid)
			if err != nil {
				return echo.NewHTTPError(http.StatusBadRequest, "invalid patient_id")
			}
			f.PatientID = id
		}
	default:
		return auth.ErrForbidden
	}

	p := pagination.FromContext(c)
	bills, total, err := h.svc.List(ctx, f, p.Limit, p.Offset)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(bills, total, p.Limit, p.Offset))
}

func mapError(err error) error {
	switch {
	case errors.Is(err, ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, ErrNotFound.Error())
	case errors.Is(err, ErrAlreadyPaid):
		return echo.NewHTTPError(http.StatusConflict, ErrAlreadyPaid.Error())
	case errors.Is(err, ErrNotPayable):
		return echo.NewHTTPError(http.StatusConflict, ErrNotPayable.Error())
	}
	var ve *httpx.ValidationError
	if errors.As(err, &ve) {
		return echo.NewHTTPError(http.StatusBadRequest, ve.Error())
	}
	return err
}
