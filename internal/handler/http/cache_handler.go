package httphandler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/rpruizc/scimonitor/internal/infrastructure/cache"
	"github.com/rpruizc/scimonitor/internal/infrastructure/httpserver"
)

// CacheStatsResponse represents cache statistics in API responses.
type CacheStatsResponse struct {
	Hits    int64   `json:"hits"`
	Misses  int64   `json:"misses"`
	Entries int64   `json:"entries"`
	HitRate float64 `json:"hit_rate"`
}

// CacheInvalidateResponse reports how many cached entries were removed.
type CacheInvalidateResponse struct {
	Namespace string `json:"namespace"`
	Removed   int64  `json:"removed"`
}

// CacheInspector defines the cache operations exposed over HTTP.
type CacheInspector interface {
	Stats(ctx context.Context) (cache.Stats, error)
	Invalidate(ctx context.Context, namespace string) (int64, error)
}

// CacheHandler exposes cache statistics and invalidation.
type CacheHandler struct {
	cache CacheInspector
}

// NewCacheHandler creates a new CacheHandler.
func NewCacheHandler(inspector CacheInspector) *CacheHandler {
	return &CacheHandler{
		cache: inspector,
	}
}

// RegisterRoutes registers cache routes on the given group.
func (h *CacheHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/cache/stats", h.Stats)
	g.DELETE("/cache/:namespace", h.Invalidate)
}

// Stats handles GET /api/v1/cache/stats.
func (h *CacheHandler) Stats(c echo.Context) error {
	stats, err := h.cache.Stats(c.Request().Context())
	if err != nil {
		return httpserver.RespondError(c, err)
	}

	resp := CacheStatsResponse{
		Hits:    stats.Hits,
		Misses:  stats.Misses,
		Entries: stats.Entries,
	}
	if total := stats.Hits + stats.Misses; total > 0 {
		resp.HitRate = float64(stats.Hits) / float64(total)
	}
	return httpserver.RespondOK(c, resp)
}

// Invalidate handles DELETE /api/v1/cache/:namespace.
func (h *CacheHandler) Invalidate(c echo.Context) error {
	namespace := c.Param("namespace")
	if namespace == "" {
		return httpserver.RespondErrorWithCode(
			c, http.StatusBadRequest, "NAMESPACE_REQUIRED", "cache namespace is required")
	}

	removed, err := h.cache.Invalidate(c.Request().Context(), namespace)
	if err != nil {
		return httpserver.RespondError(c, err)
	}

	return httpserver.RespondOK(c, CacheInvalidateResponse{
		Namespace: namespace,
		Removed:   removed,
	})
}
