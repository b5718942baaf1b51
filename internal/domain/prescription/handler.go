package prescription

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

func (h *Handler) RegisterRoutes(api *echo.Group) {
	prescriptions := api.Group("/prescriptions")
	prescriptions.POST("", h.Create, auth.RequireRole(auth.RoleDoctor))
	prescriptions.GET("", h.List)
	prescriptions.GET("/:id", h.Get)
	prescriptions.PUT("/:id", h.Update, auth.RequireRole(auth.RoleDoctor))
	prescriptions.DELETE("/:id", h.Delete, auth.RequireRole(auth.RoleAdmin))
}

// Create issues a prescription authored by the calling doctor.
func (h *Handler) Create(c echo.Context) error {
	var p Prescription
	if err := c.Bind(&p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	ctx := c.Request().Context()
	if auth.RoleFromContext(ctx) == auth.RoleDoctor {
		p.DoctorID = auth.UserIDFromContext(ctx)
	}

	if err := h.svc.Create(ctx, &p); err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusCreated, p)
}

func (h *Handler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid prescription id")
	}

	ctx := c.Request().Context()
	p, err := h.svc.Get(ctx, id)
	if err != nil {
		return mapError(err)
	}
	if err := auth.CanAccessPatientResource(ctx, p.PatientID, p.DoctorID); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) Update(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid prescription id")
	}

	ctx := c.Request().Context()
	existing, err := h.svc.Get(ctx, id)
	if err != nil {
		return mapError(err)
	}
	if err := auth.CanAccessPatientResource(ctx, existing.PatientID, existing.DoctorID); err != nil {
		return err
	}

	var update UpdateInput
	if err := c.Bind(&update); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	p, err := h.svc.Update(ctx, id, &update)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) Delete(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid prescription id")
	}
	if err := h.svc.Delete(c.Request().Context(), id); err != nil {
		return mapError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) List(c echo.Context) error {
	ctx := c.Request().Context()

	f := Filter{}
	switch auth.RoleFromContext(ctx) {
	case auth.RolePatient:
		f.PatientID = auth.UserIDFromContext(ctx)
	case auth.RoleDoctor:
		f.DoctorID = auth.UserIDFromContext(ctx)
	case auth.RoleAdmin:
		if pid := c.QueryParam("patient_id"); pid != "" {
			id, err := uuid.Parse(pid)
			if err != nil {
				return echo.NewHTTPError(http.StatusBadRequest, "invalid patient_id")
			}
			f.PatientID = id
		}
	}

	p := pagination.FromContext(c)
	prescriptions, total, err := h.svc.List(ctx, f, p.Limit, p.Offset)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(prescriptions, total, p.Limit, p.Offset))
}

func mapError(err error) error {
	if errors.Is(err, ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, ErrNotFound.Error())
	}
	var ve *httpx.ValidationError
	if errors.As(err, &ve) {
		return echo.NewHTTPError(http.StatusBadRequest, ve.Error())
	}
	return err
}
