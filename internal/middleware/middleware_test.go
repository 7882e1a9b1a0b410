package middleware_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rpruizc/scimonitor/internal/middleware"
)

func newLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewJSONHandler(buf, nil))
}

func TestLogging_GeneratesRequestID(t *testing.T) {
	var buf bytes.Buffer

	e := echo.New()
	e.Use(middleware.Logging(middleware.LoggingConfig{Logger: newLogger(&buf)}))
	e.GET("/papers", func(c echo.Context) error {
		assert.NotEmpty(t, middleware.GetRequestID(c))
		return c.NoContent(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/papers", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	id := rec.Header().Get(middleware.RequestIDHeader)
	require.NotEmpty(t, id)
	_, err := uuid.Parse(id)
	require.NoError(t, err)

	assert.Contains(t, buf.String(), "HTTP request")
	assert.Contains(t, buf.String(), id)
}

func TestLogging_PropagatesIncomingRequestID(t *testing.T) {
	var buf bytes.Buffer

	e := echo.New()
	e.Use(middleware.Logging(middleware.LoggingConfig{Logger: newLogger(&buf)}))
	e.GET("/papers", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/papers", nil)
	req.Header.Set(middleware.RequestIDHeader, "req-123")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, "req-123", rec.Header().Get(middleware.RequestIDHeader))
}

func TestLogging_SkipsHealthPaths(t *testing.T) {
	var buf bytes.Buffer

	e := echo.New()
	e.Use(middleware.Logging(middleware.LoggingConfig{
		Logger:       newLogger(&buf),
		SkipPrefixes: []string{"/health"},
	}))
	e.GET("/health/liveness", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/health/liveness", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, buf.String())
}

func TestRecovery_ContainsPanic(t *testing.T) {
	var buf bytes.Buffer

	e := echo.New()
	e.Use(middleware.Recovery(newLogger(&buf)))
	e.GET("/boom", func(echo.Context) error {
		panic("kaput")
	})

	req := httptest.NewRequest(http.MethodGet, "/boom", nil)
	rec := httptest.NewRecorder()

	require.NotPanics(t, func() {
		e.ServeHTTP(rec, req)
	})
	require.Equal(t, http.StatusInternalServerError, rec.Code)

	var body struct {
		Success bool `json:"success"`
		Error   struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.False(t, body.Success)
	assert.Equal(t, "INTERNAL_ERROR", body.Error.Code)

	assert.Contains(t, buf.String(), "panic recovered")
	assert.Contains(t, buf.String(), "kaput")
}
