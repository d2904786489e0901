package reports

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/clinica/clinica/internal/platform/auth"
)

func multipartRequest(t *testing.T, fields map[string]string, fileName string, content []byte) (*http.Request, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	fw, err := w.CreateFormFile("file", fileName)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := fw.Write(content); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	w.Close()

	req := httptest.NewRequest(http.MethodPost, "/", &buf)
	return req, w.FormDataContentType()
}

func TestHandler_Upload(t *testing.T) {
	f := newFixture()
	h := NewHandler(f.svc)
	e := echo.New()

	req, contentType := multipartRequest(t, map[string]string{
		"appointment_id": f.confirmed.String(),
		"exam_type":      "blood panel",
		"exam_date":      "2026-03-10",
	}, "results.pdf", []byte("pdf-bytes"))
	req.Header.Set(echo.HeaderContentType, contentType)
	req = req.WithContext(auth.WithPrincipal(req.Context(), auth.Principal{ID: f.doctor, Role: auth.RoleDoctor}))
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Upload(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var rep Report
	if err := json.Unmarshal(rec.Body.Bytes(), &rep); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rep.FileName != "results.pdf" {
		t.Errorf("unexpected file name %q", rep.FileName)
	}
}

func TestHandler_Upload_PendingConflict(t *testing.T) {
	f := newFixture()
	h := NewHandler(f.svc)
	e := echo.New()

	req, contentType := multipartRequest(t, map[string]string{
		"appointment_id": f.pending.String(),
		"exam_type":      "blood panel",
		"exam_date":      "2026-03-10",
	}, "results.pdf", []byte("pdf-bytes"))
	req.Header.Set(echo.HeaderContentType, contentType)
	req = req.WithContext(auth.WithPrincipal(req.Context(), auth.Principal{ID: f.doctor, Role: auth.RoleDoctor}))
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := h.Upload(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusConflict {
		t.Errorf("expected 409, got %v", err)
	}
}

func TestHandler_Upload_MissingFile(t *testing.T) {
	f := newFixture()
	h := NewHandler(f.svc)
	e := echo.New()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	w.WriteField("appointment_id", f.confirmed.String())
	w.Close()

	req := httptest.NewRequest(http.MethodPost, "/", &buf)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	req = req.WithContext(auth.WithPrincipal(req.Context(), auth.Principal{ID: f.doctor, Role: auth.RoleDoctor}))
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := h.Upload(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %v", err)
	}
}

func TestHandler_Download(t *testing.T) {
	f := newFixture()
	h := NewHandler(f.svc)
	e := echo.New()

	rep, err := f.svc.Attach(context.Background(), Actor{ID: f.doctor, Role: auth.RoleDoctor}, f.attachInput())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(auth.WithPrincipal(req.Context(), auth.Principal{ID: f.patient, Role: auth.RolePatient}))
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(rep.ID.String())

	if err := h.Download(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec.Body.String() != "pdf-bytes" {
		t.Errorf("unexpected body %q", rec.Body.String())
	}
	if cd := rec.Header().Get("Content-Disposition"); cd == "" {
		t.Error("expected a Content-Disposition header")
	}
}

func TestHandler_Download_Forbidden(t *testing.T) {
	f := newFixture()
	h := NewHandler(f.svc)
	e := echo.New()

	rep, err := f.svc.Attach(context.Background(), Actor{ID: f.doctor, Role: auth.RoleDoctor}, f.attachInput())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(auth.WithPrincipal(req.Context(),
		auth.Principal{ID: uuid.New(), Role: auth.RolePatient}))
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(rep.ID.String())

	err = h.Download(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %v", err)
	}
}
