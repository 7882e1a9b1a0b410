// Package health implements dependency health reporting: bounded concurrent
// probes of downstream services aggregated into a worst-case overall status.
package health

// Status represents the health of a single component or of the whole service.
type Status string

// Component health statuses, ordered by severity.
const (
	// StatusOK indicates the component responded within the expected latency.
	StatusOK Status = "ok"

	// StatusDegraded indicates the component responded, but slower than the
	// configured latency threshold.
	StatusDegraded Status = "degraded"

	// StatusUnavailable indicates the component did not respond or the probe
	// failed outright.
	StatusUnavailable Status = "unavailable"
)

// severity maps statuses onto a total order for worst-case aggregation.
func (s Status) severity() int {
	switch s {
	case StatusUnavailable:
		return 2
	case StatusDegraded:
		return 1
	case StatusOK:
		return 0
	default:
		return 0
	}
}

// IsValid reports whether s is one of the known statuses.
func (s Status) IsValid() bool {
	return s == StatusOK || s == StatusDegraded || s == StatusUnavailable
}

// WorstOf returns the most severe of the given statuses, using the ordering
// unavailable > degraded > ok. With no arguments it returns StatusOK.
func WorstOf(statuses ...Status) Status {
	worst := StatusOK
	for _, s := range statuses {
		if s.severity() > worst.severity() {
			worst = s
		}
	}
	return worst
}

// Check is the outcome of probing a single component.
type Check struct {
	// Component identifies the probed dependency, e.g. "database" or "cache".
	Component string `json:"component"`

	// Status is the component health derived from the probe outcome.
	Status Status `json:"status"`

	// LatencyMS is the measured round trip of the probe in milliseconds.
	// It is null when the probe never completed (e.g. it hit its deadline).
	LatencyMS *float64 `json:"latency_ms"`

	// Detail carries a free-text diagnostic for non-ok outcomes.
	Detail string `json:"detail,omitempty"`
}

// Report is the aggregate outcome of one health check invocation.
// Checks preserves prober registration order.
type Report struct {
	Status Status  `json:"status"`
	Checks []Check `json:"checks"`
}

// HasUnavailable reports whether any check in the report is unavailable.
func (r Report) HasUnavailable() bool {
	for _, c := range r.Checks {
		if c.Status == StatusUnavailable {
			return true
		}
	}
	return false
}
