package appointment

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
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	appts := api.Group("/appointments")
	appts.POST("", h.Book, auth.RequireRole(auth.RolePatient, auth.RoleDoctor))
	appts.GET("", h.List)
	appts.GET("/:id", h.Get)
	appts.PUT("/:id/status", h.UpdateStatus)
	appts.DELETE("/:id", h.Delete, auth.RequireRole(auth.RoleAdmin))

	api.GET("/doctors/:id/slots", h.Slots)
}

type bookRequest struct {
	PatientID       uuid.UUID `json:"patient_id"`
	DoctorID        uuid.UUID `json:"doctor_id"`
	Date            string    `json:"date"`
	StartTime       string    `json:"start_time"`
	DurationMinutes int       `json:"duration_minutes"`
	Department      *string   `json:"department"`
	Type            *string   `json:"type"`
	Reason          *string   `json:"reason"`
}

// Book creates an appointment. Patients always book for themselves and may
// omit doctor_id to let the scheduler assign one. Doctors book onto their
// own calendar for a named patient, and the booking starts confirmed.
func (h *Handler) Book(c echo.Context) error {
	var req bookRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	ctx := c.Request().Context()
	status := ""
	switch auth.RoleFromContext(ctx) {
	case auth.RolePatient:
		req.PatientID = auth.UserIDFromContext(ctx)
	case auth.RoleDoctor:
		req.DoctorID = auth.UserIDFromContext(ctx)
		status = StatusConfirmed
	}

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "date must be YYYY-MM-DD")
	}

	a := &Appointment{
		PatientID:       req.PatientID,
		DoctorID:        req.DoctorID,
		Date:            date,
		StartTime:       req.StartTime,
		DurationMinutes: req.DurationMinutes,
		Department:      req.Department,
		Type:            req.Type,
		Reason:          req.Reason,
		Status:          status,
	}
	if err := h.svc.Book(ctx, a); err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusCreated, a)
}

// List returns appointments scoped to the caller: patients and doctors only
// ever see their own; admins can filter freely.
func (h *Handler) List(c echo.Context) error {
	ctx := c.Request().Context()

	f := Filter{Status: c.QueryParam("status")}
	if d := c.QueryParam("date"); d != "" {
		date, err := time.Parse("2006-01-02", d)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "date must be YYYY-MM-DD")
		}
		f.Date = date
	}

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
		if did := c.QueryParam("doctor_id"); did != "" {
			id, err := uuid.Parse(did)
			if err != nil {
				return echo.NewHTTPError(http.StatusBadRequest, "invalid doctor_id")
			}
			f.DoctorID = id
		}
	}

	p := pagination.FromContext(c)
	appts, total, err := h.svc.List(ctx, f, p.Limit, p.Offset)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(appts, total, p.Limit, p.Offset))
}

func (h *Handler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid appointment id")
	}

	ctx := c.Request().Context()
	a, err := h.svc.Get(ctx, id)
	if err != nil {
		return mapError(err)
	}
	if err := auth.CanAccessPatientResource(ctx, a.PatientID, a.DoctorID); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, a)
}

type statusRequest struct {
	Status string `json:"status"`
}

// UpdateStatus moves an appointment through its lifecycle. The named doctor
// and admins may set any valid transition; the owning patient may only
// cancel.
func (h *Handler) UpdateStatus(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid appointment id")
	}

	var req statusRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	ctx := c.Request().Context()
	a, err := h.svc.Get(ctx, id)
	if err != nil {
		return mapError(err)
	}
	if err := auth.CanAccessPatientResource(ctx, a.PatientID, a.DoctorID); err != nil {
		return err
	}
	if auth.RoleFromContext(ctx) == auth.RolePatient && req.Status != StatusCancelled {
		return echo.NewHTTPError(http.StatusForbidden, "patients may only cancel appointments")
	}

	updated, err := h.svc.UpdateStatus(ctx, id, req.Status)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, updated)
}

func (h *Handler) Delete(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid appointment id")
	}
	if err := h.svc.Delete(c.Request().Context(), id); err != nil {
		return mapError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Slots returns the free slot start times for a doctor on a date.
func (h *Handler) Slots(c echo.Context) error {
	doctorID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid doctor id")
	}
	date, err := time.Parse("2006-01-02", c.QueryParam("date"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "date query parameter must be YYYY-MM-DD")
	}

	slots, err := h.svc.AvailableSlots(c.Request().Context(), doctorID, date)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"doctor_id": doctorID,
		"date":      date.Format("2006-01-02"),
		"slots":     slots,
	})
}

func mapError(err error) error {
	switch {
	case errors.Is(err, ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, ErrNotFound.Error())
	case errors.Is(err, ErrDoctorNotFound):
		return echo.NewHTTPError(http.StatusNotFound, ErrDoctorNotFound.Error())
	case errors.Is(err, ErrSlotTaken):
		return echo.NewHTTPError(http.StatusConflict, ErrSlotTaken.Error())
	case errors.Is(err, ErrSlotUnavailable):
		return echo.NewHTTPError(http.StatusConflict, ErrSlotUnavailable.Error())
	case errors.Is(err, ErrNoDoctorAvailable):
		return echo.NewHTTPError(http.StatusConflict, ErrNoDoctorAvailable.Error())
	case errors.Is(err, ErrInvalidTransition):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	}
	var ve *httpx.ValidationError
	if errors.As(err, &ve) {
		return echo.NewHTTPError(http.StatusBadRequest, ve.Error())
	}
	return err
}
