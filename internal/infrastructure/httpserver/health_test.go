package httpserver_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rpruizc/scimonitor/internal/health"
	"github.com/rpruizc/scimonitor/internal/infrastructure/httpserver"
)

func newHealthServer(t *testing.T, probers ...health.Prober) (*echo.Echo, *health.Reporter) {
	t.Helper()

	reporter := health.NewReporter(probers,
		health.WithProbeTimeout(50*time.Millisecond),
		health.WithDegradedThreshold(20*time.Millisecond),
		health.WithVersion("1.2.3"),
	)

	e := echo.New()
	httpserver.NewHealthEndpoints(reporter).Register(e)
	return e, reporter
}

func doRequest(e *echo.Echo, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func okProbe(name string) health.ProbeFunc {
	return health.ProbeFunc{
		Component: name,
		Fn:        func(context.Context) error { return nil },
	}
}

func failProbe(name string, err error) health.ProbeFunc {
	return health.ProbeFunc{
		Component: name,
		Fn:        func(context.Context) error { return err },
	}
}

func TestHealthEndpoints_Basic(t *testing.T) {
	e, _ := newHealthServer(t, okProbe("database"))

	rec := doRequest(e, "/health")
	require.Equal(t, http.StatusOK, rec.Code)

	var body httpserver.BasicHealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, health.StatusOK, body.Status)
	assert.Equal(t, "1.2.3", body.Version)
	assert.NotEmpty(t, body.Uptime)
}

func TestHealthEndpoints_Liveness(t *testing.T) {
	e, _ := newHealthServer(t)

	rec := doRequest(e, "/health/liveness")
	require.Equal(t, http.StatusOK, rec.Code)

	var body httpserver.BasicHealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, health.StatusOK, body.Status)
}

func TestHealthEndpoints_BasicAndLivenessNeverProbe(t *testing.T) {
	var calls atomic.Int64
	counting := health.ProbeFunc{
		Component: "database",
		Fn: func(context.Context) error {
			calls.Add(1)
			return nil
		},
	}

	e, _ := newHealthServer(t, counting)

	doRequest(e, "/health")
	doRequest(e, "/health/liveness")
	assert.Equal(t, int64(0), calls.Load())

	doRequest(e, "/health/readiness")
	assert.Equal(t, int64(1), calls.Load())
}

func TestHealthEndpoints_ReadinessAllOK(t *testing.T) {
	e, _ := newHealthServer(t, okProbe("database"), okProbe("cache"))

	rec := doRequest(e, "/health/readiness")
	require.Equal(t, http.StatusOK, rec.Code)

	var body httpserver.ReadinessResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, health.StatusOK, body.Status)
	require.Len(t, body.Checks, 2)
	assert.Equal(t, "database", body.Checks[0].Component)
	assert.Equal(t, "cache", body.Checks[1].Component)
}

func TestHealthEndpoints_ReadinessUnavailableIs503(t *testing.T) {
	e, _ := newHealthServer(t,
		okProbe("database"),
		failProbe("cache", errors.New("connection refused")),
	)

	rec := doRequest(e, "/health/readiness")
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var body httpserver.ReadinessResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, health.StatusUnavailable, body.Status)
	require.Len(t, body.Checks, 2)
	assert.Equal(t, health.StatusOK, body.Checks[0].Status)
	assert.Equal(t, health.StatusUnavailable, body.Checks[1].Status)
	assert.Equal(t, "connection refused", body.Checks[1].Detail)
}

func TestHealthEndpoints_ReadinessDegradedStays200(t *testing.T) {
	slow := health.ProbeFunc{
		Component: "database",
		Fn: func(ctx context.Context) error {
			select {
			case <-time.After(30 * time.Millisecond):
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		},
	}

	e, _ := newHealthServer(t, slow)

	rec := doRequest(e, "/health/readiness")
	require.Equal(t, http.StatusOK, rec.Code)

	var body httpserver.ReadinessResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, health.StatusDegraded, body.Status)
}

func TestHealthEndpoints_DetailedAlways200(t *testing.T) {
	e, _ := newHealthServer(t,
		failProbe("database", errors.New("no reachable servers")),
		okProbe("cache"),
	)

	rec := doRequest(e, "/health/detailed")
	require.Equal(t, http.StatusOK, rec.Code)

	var body httpserver.DetailedHealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, health.StatusUnavailable, body.Status)
	assert.Equal(t, "1.2.3", body.Version)
	require.Len(t, body.Checks, 2)
	assert.Equal(t, "no reachable servers", body.Checks[0].Detail)
	require.NotNil(t, body.Checks[1].LatencyMS)
}

func TestHealthEndpoints_TimeoutLatencyIsNull(t *testing.T) {
	stuck := health.ProbeFunc{
		Component: "cache",
		Fn: func(ctx context.Context) error {
			<-ctx.Done()
			return ctx.Err()
		},
	}

	e, _ := newHealthServer(t, stuck)

	rec := doRequest(e, "/health/detailed")
	require.Equal(t, http.StatusOK, rec.Code)

	// latency_ms must serialize as JSON null when the probe timed out.
	var raw struct {
		Checks []map[string]json.RawMessage `json:"checks"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &raw))
	require.Len(t, raw.Checks, 1)
	assert.JSONEq(t, "null", string(raw.Checks[0]["latency_ms"]))
	assert.JSONEq(t, `"timeout"`, string(raw.Checks[0]["detail"]))
}
