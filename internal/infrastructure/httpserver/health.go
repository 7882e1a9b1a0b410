package httpserver

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/rpruizc/scimonitor/internal/health"
)

// BasicHealthResponse is the body of the basic and liveness endpoints.
type BasicHealthResponse struct {
	Status  health.Status `json:"status"`
	Version string        `json:"version,omitempty"`
	Uptime  string        `json:"uptime,omitempty"`
}

// DetailedHealthResponse is the body of the detailed health endpoint.
type DetailedHealthResponse struct {
	Status  health.Status  `json:"status"`
	Version string         `json:"version,omitempty"`
	Uptime  string         `json:"uptime,omitempty"`
	Checks  []health.Check `json:"checks"`
}

// ReadinessResponse is the body of the readiness endpoint.
type ReadinessResponse struct {
	Status health.Status  `json:"status"`
	Checks []health.Check `json:"checks"`
}

// HealthEndpoints registers the health reporting HTTP surface.
type HealthEndpoints struct {
	reporter *health.Reporter
}

// NewHealthEndpoints creates a new HealthEndpoints instance.
func NewHealthEndpoints(reporter *health.Reporter) *HealthEndpoints {
	return &HealthEndpoints{reporter: reporter}
}

// Register registers all health endpoints on the Echo instance.
// Endpoints registered:
//   - GET /health - static metadata, no dependency calls, 200 always
//   - GET /health/liveness - 200 unconditionally if the process responds
//   - GET /health/readiness - 200 if no required dependency is unavailable, else 503
//   - GET /health/detailed - per-dependency status and latency, 200 always (informational)
func (h *HealthEndpoints) Register(e *echo.Echo) {
	e.GET("/health", h.handleBasic)
	e.GET("/health/liveness", h.handleLiveness)
	e.GET("/health/readiness", h.handleReadiness)
	e.GET("/health/detailed", h.handleDetailed)
}

// handleBasic reports static metadata. It never probes dependencies.
func (h *HealthEndpoints) handleBasic(c echo.Context) error {
	return c.JSON(http.StatusOK, BasicHealthResponse{
		Status:  health.StatusOK,
		Version: h.reporter.Version(),
		Uptime:  h.reporter.Uptime().Round(time.Second).String(),
	})
}

// handleLiveness answers orchestrator liveness probes. A response at all
// means the process is alive; no dependency is consulted.
func (h *HealthEndpoints) handleLiveness(c echo.Context) error {
	return c.JSON(http.StatusOK, BasicHealthResponse{
		Status: health.StatusOK,
	})
}

// handleReadiness gates traffic admission. Any unavailable dependency yields
// 503; degraded dependencies are reported but do not gate.
func (h *HealthEndpoints) handleReadiness(c echo.Context) error {
	report := h.reporter.Run(c.Request().Context())

	code := http.StatusOK
	if report.HasUnavailable() {
		code = http.StatusServiceUnavailable
	}

	return c.JSON(code, ReadinessResponse{
		Status: report.Status,
		Checks: report.Checks,
	})
}

// handleDetailed runs the same probes as readiness but is informational:
// the HTTP status stays 200 regardless of dependency state.
func (h *HealthEndpoints) handleDetailed(c echo.Context) error {
	report := h.reporter.Run(c.Request().Context())

	return c.JSON(http.StatusOK, DetailedHealthResponse{
		Status:  report.Status,
		Version: h.reporter.Version(),
		Uptime:  h.reporter.Uptime().Round(time.Second).String(),
		Checks:  report.Checks,
	})
}
