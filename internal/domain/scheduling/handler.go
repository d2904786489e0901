package scheduling

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/clinica/clinica/internal/platform/auth"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/doctors/:id/availability", h.Availability)
	api.POST("/appointments", h.Book, auth.RequireRole(auth.RolePatient))
	api.GET("/appointments/my", h.MyAppointments)
	api.GET("/appointments/:id", h.GetAppointment)
	api.PATCH("/appointments/:id/status", h.UpdateStatus)
	api.DELETE("/appointments/:id", h.Cancel, auth.RequireRole(auth.RolePatient))
}

func (h *Handler) Availability(c echo.Context) error {
	doctorID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid doctor id")
	}
	date := c.QueryParam("date")
	if date == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "date query parameter is required")
	}

	slots, err := h.svc.Availability(c.Request().Context(), doctorID, date)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"doctor_id":       doctorID,
		"date":            date,
		"available_slots": slots,
	})
}

func (h *Handler) Book(c echo.Context) error {
	p, _ := auth.PrincipalFromContext(c.Request().Context())

	var in BookInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	a, err := h.svc.Book(c.Request().Context(), p.ID, in)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusCreated, viewOf(a))
}

func (h *Handler) MyAppointments(c echo.Context) error {
	p, ok := auth.PrincipalFromContext(c.Request().Context())
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
	}
	views, err := h.svc.MyAppointments(c.Request().Context(), Actor{ID: p.ID, Role: p.Role})
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, views)
}

func (h *Handler) GetAppointment(c echo.Context) error {
	p, _ := auth.PrincipalFromContext(c.Request().Context())
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid appointment id")
	}
	a, err := h.svc.Get(c.Request().Context(), Actor{ID: p.ID, Role: p.Role}, id)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, viewOf(a))
}

type statusRequest struct {
	Status Status `json:"status"`
}

func (h *Handler) UpdateStatus(c echo.Context) error {
	p, _ := auth.PrincipalFromContext(c.Request().Context())
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid appointment id")
	}
	// The target status comes as a query parameter, with a JSON body as the
	// fallback for clients that prefer one.
	status := Status(c.QueryParam("status"))
	if status == "" {
		var in statusRequest
		if err := c.Bind(&in); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		status = in.Status
	}
	a, err := h.svc.Transition(c.Request().Context(), Actor{ID: p.ID, Role: p.Role}, id, status)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, viewOf(a))
}

func (h *Handler) Cancel(c echo.Context) error {
	p, _ := auth.PrincipalFromContext(c.Request().Context())
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid appointment id")
	}
	a, err := h.svc.Cancel(c.Request().Context(), Actor{ID: p.ID, Role: p.Role}, id)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, viewOf(a))
}

// viewOf converts a bare appointment to the API shape without enrichment.
func viewOf(a *Appointment) *View {
	return &View{
		ID:        a.ID,
		PatientID: a.PatientID,
		DoctorID:  a.DoctorID,
		VisitDate: a.VisitDate.Format(dateLayout),
		TimeSlot:  a.TimeSlot,
		Status:    a.Status,
		Reason:    a.Reason,
		CreatedAt: a.CreatedAt,
	}
}

// mapError translates domain errors to HTTP status codes.
func mapError(err error) error {
	switch {
	case errors.Is(err, ErrInvalidDate), errors.Is(err, ErrPastDate),
		errors.Is(err, ErrSlotNotInTemplate), errors.Is(err, ErrInvalidStatus):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrDoctorNotFound), errors.Is(err, ErrAppointmentNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, ErrSlotTaken), errors.Is(err, ErrInvalidTransition):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, ErrNotPermitted):
		return echo.NewHTTPError(http.StatusForbidden, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}
