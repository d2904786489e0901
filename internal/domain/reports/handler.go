package reports

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/clinica/clinica/internal/platform/auth"
	"github.com/clinica/clinica/internal/platform/blobstore"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/reports/upload", h.Upload, auth.RequireRole(auth.RoleDoctor))
	api.GET("/reports/my", h.My)
	api.GET("/reports/:id", h.Get)
	api.GET("/reports/:id/download", h.Download)
	api.GET("/appointments/:id/reports", h.ByAppointment)
}

func (h *Handler) Upload(c echo.Context) error {
	p, _ := auth.PrincipalFromContext(c.Request().Context())

	appointmentID, err := uuid.Parse(c.FormValue("appointment_id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid appointment_id")
	}
	file, err := c.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "file is required")
	}
	src, err := file.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to open uploaded file")
	}
	defer src.Close()

	contentType := file.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	rep, err := h.svc.Attach(c.Request().Context(), Actor{ID: p.ID, Role: p.Role}, AttachInput{
		AppointmentID: appointmentID,
		ExamType:      c.FormValue("exam_type"),
		ExamDate:      c.FormValue("exam_date"),
		Notes:         c.FormValue("notes"),
		FileName:      file.Filename,
		ContentType:   contentType,
		Content:       src,
	})
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusCreated, rep)
}

func (h *Handler) My(c echo.Context) error {
	p, ok := auth.PrincipalFromContext(c.Request().Context())
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
	}
	views, err := h.svc.My(c.Request().Context(), Actor{ID: p.ID, Role: p.Role})
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, views)
}

func (h *Handler) Get(c echo.Context) error {
	p, _ := auth.PrincipalFromContext(c.Request().Context())
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid report id")
	}
	rep, err := h.svc.Get(c.Request().Context(), Actor{ID: p.ID, Role: p.Role}, id)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, rep)
}

func (h *Handler) Download(c echo.Context) error {
	p, _ := auth.PrincipalFromContext(c.Request().Context())
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid report id")
	}
	rc, rep, err := h.svc.Download(c.Request().Context(), Actor{ID: p.ID, Role: p.Role}, id)
	if err != nil {
		return mapError(err)
	}
	defer rc.Close()

	c.Response().Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, rep.FileName))
	return c.Stream(http.StatusOK, rep.ContentType, rc)
}

func (h *Handler) ByAppointment(c echo.Context) error {
	p, _ := auth.PrincipalFromContext(c.Request().Context())
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid appointment id")
	}
	items, err := h.svc.ByAppointment(c.Request().Context(), Actor{ID: p.ID, Role: p.Role}, id)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, items)
}

func mapError(err error) error {
	switch {
	case errors.Is(err, ErrMissingExamType), errors.Is(err, ErrInvalidExamDate),
		errors.Is(err, blobstore.ErrMissingFileName), errors.Is(err, blobstore.ErrEmptyFile):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, blobstore.ErrFileTooLarge):
		return echo.NewHTTPError(http.StatusRequestEntityTooLarge, err.Error())
	case errors.Is(err, ErrAppointmentNotFound), errors.Is(err, ErrReportNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, ErrAppointmentNotReady):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, ErrNotPermitted):
		return echo.NewHTTPError(http.StatusForbidden, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}
