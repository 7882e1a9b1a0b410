package httphandler_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rpruizc/scimonitor/internal/domain/errs"
	httphandler "github.com/rpruizc/scimonitor/internal/handler/http"
	"github.com/rpruizc/scimonitor/internal/infrastructure/cache"
)

type mockCacheInspector struct {
	stats        cache.Stats
	statsErr     error
	invalidated  string
	removedCount int64
}

func (m *mockCacheInspector) Stats(context.Context) (cache.Stats, error) {
	return m.stats, m.statsErr
}

func (m *mockCacheInspector) Invalidate(_ context.Context, namespace string) (int64, error) {
	m.invalidated = namespace
	return m.removedCount, nil
}

func newCacheRouter(inspector httphandler.CacheInspector) *echo.Echo {
	e := echo.New()
	httphandler.NewCacheHandler(inspector).RegisterRoutes(e.Group("/api/v1"))
	return e
}

func TestCacheHandler_Stats(t *testing.T) {
	e := newCacheRouter(&mockCacheInspector{
		stats: cache.Stats{Hits: 75, Misses: 25, Entries: 10},
	})

	var body envelope[httphandler.CacheStatsResponse]
	rec := getJSON(t, e, "/api/v1/cache/stats", &body)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(75), body.Data.Hits)
	assert.Equal(t, int64(25), body.Data.Misses)
	assert.Equal(t, int64(10), body.Data.Entries)
	assert.InDelta(t, 0.75, body.Data.HitRate, 0.001)
}

func TestCacheHandler_Stats_ZeroTraffic(t *testing.T) {
	e := newCacheRouter(&mockCacheInspector{})

	var body envelope[httphandler.CacheStatsResponse]
	rec := getJSON(t, e, "/api/v1/cache/stats", &body)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Zero(t, body.Data.HitRate)
}

func TestCacheHandler_Stats_BackendDown(t *testing.T) {
	e := newCacheRouter(&mockCacheInspector{
		statsErr: errors.Join(errs.ErrUnavailable, errors.New("redis: connection refused")),
	})

	var body envelope[json.RawMessage]
	rec := getJSON(t, e, "/api/v1/cache/stats", &body)

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	require.NotNil(t, body.Error)
	assert.Equal(t, "UNAVAILABLE", body.Error.Code)
}

func TestCacheHandler_Invalidate(t *testing.T) {
	inspector := &mockCacheInspector{removedCount: 12}
	e := newCacheRouter(inspector)

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/cache/search", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "search", inspector.invalidated)

	var body envelope[httphandler.CacheInvalidateResponse]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "search", body.Data.Namespace)
	assert.Equal(t, int64(12), body.Data.Removed)
}
