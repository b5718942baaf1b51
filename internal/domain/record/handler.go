package record

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

// RegisterRoutes mounts the medical record endpoints. Writes are restricted
// to doctors; reads follow the patient-resource ownership rules.
func (h *Handler) RegisterRoutes(api *echo.Group) {
	records := api.Group("/records")
	records.POST("", h.Create, auth.RequireRole(auth.RoleDoctor))
	records.GET("", h.List)
	records.GET("/:id", h.Get)
	records.PUT("/:id", h.Update, auth.RequireRole(auth.RoleDoctor))
	records.DELETE("/:id", h.Delete, auth.RequireRole(auth.RoleAdmin))
}

// Create writes a record authored by the calling doctor. Admins must name
// the doctor explicitly.
func (h *Handler) Create(c echo.Context) error {
	var rec Record
	if err := c.Bind(&rec); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	ctx := c.Request().Context()
	if auth.RoleFromContext(ctx) == auth.RoleDoctor {
		rec.DoctorID = auth.UserIDFromContext(ctx)
	}

	if err := h.svc.Create(ctx, &rec); err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusCreated, rec)
}

func (h *Handler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid record id")
	}

	ctx := c.Request().Context()
	rec, err := h.svc.Get(ctx, id)
	if err != nil {
		return mapError(err)
	}
	if err := auth.CanAccessPatientResource(ctx, rec.PatientID, rec.DoctorID); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, rec)
}

// Update lets the authoring doctor amend the record.
func (h *Handler) Update(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid record id")
	}

	ctx := c.Request().Context()
	existing, err := h.svc.Get(ctx, id)
	if err != nil {
		return mapError(err)
	}
	if err := auth.CanAccessPatientResource(ctx, existing.PatientID, existing.DoctorID); err != nil {
		return err
	}

	var update Record
	if err := c.Bind(&update); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	rec, err := h.svc.Update(ctx, id, &update)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, rec)
}

func (h *Handler) Delete(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid record id")
	}
	if err := h.svc.Delete(c.Request().Context(), id); err != nil {
		return mapError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// List scopes results to the caller: patients see their own records, doctors
// the ones they authored, admins everything.
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
	records, total, err := h.svc.List(ctx, f, p.Limit, p.Offset)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(records, total, p.Limit, p.Offset))
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
