package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/welldanyogia/webrana-contact-relay/internal/logger"
)

func TestRequestLogger_LogsRequestDetails(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	e := echo.New()
	e.Use(RequestLogger(logger))

	e.POST("/api/contact", func(c echo.Context) error {
		return c.String(http.StatusOK, "OK")
	})

	req := httptest.NewRequest(http.MethodPost, "/api/contact?token=abc",
		strings.NewReader(`{"email":"jane@example.com"}`))
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	logOutput := buf.String()
	assert.Contains(t, logOutput, `"method":"POST"`)
	assert.Contains(t, logOutput, `"path":"/api/contact"`)
	assert.Contains(t, logOutput, `"status":200`)
	assert.Contains(t, logOutput, "latency")
	assert.NotContains(t, logOutput, "jane@example.com")
	assert.NotContains(t, logOutput, "token=abc")
}

func TestRequestLogger_LogsFinalStatusForErrors(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	e := echo.New()
	e.Use(RequestLogger(logger))

	e.GET("/error", func(c echo.Context) error {
		return echo.NewHTTPError(http.StatusBadRequest, "bad request")
	})

	req := httptest.NewRequest(http.MethodGet, "/error", nil)
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, buf.String(), `"status":400`)
}

func TestRecover_CatchesPanicsAndReturns500(t *testing.T) {
	e := echo.New()
	e.Use(Recover())

	e.GET("/panic", func(c echo.Context) error {
		panic("test panic")
	})

	req := httptest.NewRequest(http.MethodGet, "/panic", nil)
	rec := httptest.NewRecorder()

	assert.NotPanics(t, func() {
		e.ServeHTTP(rec, req)
	})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestRecover_AllowsNormalRequests(t *testing.T) {
	e := echo.New()
	e.Use(Recover())

	e.GET("/normal", func(c echo.Context) error {
		return c.String(http.StatusOK, "OK")
	})

	req := httptest.NewRequest(http.MethodGet, "/normal", nil)
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
}

func TestBodyLimit_RejectsLargeBodies(t *testing.T) {
	var buf bytes.Buffer
	security := logger.NewSecurityLoggerWithHandler(slog.NewJSONHandler(&buf, nil))

	e := echo.New()
	e.Use(BodyLimit(security))
	e.POST("/api/contact", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodPost, "/api/contact", strings.NewReader(strings.Repeat("x", 65*1024)))
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Contains(t, buf.String(), `"event_type":"oversized_submission"`)
	buf.Reset()

	req = httptest.NewRequest(http.MethodPost, "/api/contact", strings.NewReader(`{"name":"Jane"}`))
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, buf.String())
}
