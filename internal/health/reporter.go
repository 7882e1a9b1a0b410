package health

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Default probe settings, overridable via options.
const (
	DefaultProbeTimeout      = 2 * time.Second
	DefaultDegradedThreshold = 200 * time.Millisecond
)

// Prober is a single bounded reachability check of one dependency.
type Prober interface {
	// Name returns the component identifier reported in checks.
	Name() string

	// Probe checks the dependency. It must respect ctx cancellation and
	// return a non-nil error when the dependency is unreachable.
	Probe(ctx context.Context) error
}

// ProbeFunc adapts a function to the Prober interface.
type ProbeFunc struct {
	Component string
	Fn        func(ctx context.Context) error
}

// Name implements Prober.
func (p ProbeFunc) Name() string { return p.Component }

// Probe implements Prober.
func (p ProbeFunc) Probe(ctx context.Context) error { return p.Fn(ctx) }

// Reporter runs dependency probes and aggregates their results.
//
// Each invocation is stateless: probes run concurrently, each under its own
// deadline, and one probe timing out never cancels its siblings. The reporter
// never lets a probe error or panic escape; every invocation produces a
// well-formed Report.
type Reporter struct {
	probers           []Prober
	probeTimeout      time.Duration
	degradedThreshold time.Duration
	logger            *slog.Logger

	version   string
	startedAt time.Time
}

// ReporterOption configures a Reporter.
type ReporterOption func(*Reporter)

// WithProbeTimeout bounds each individual dependency probe.
func WithProbeTimeout(d time.Duration) ReporterOption {
	return func(r *Reporter) {
		r.probeTimeout = d
	}
}

// WithDegradedThreshold sets the latency above which a responding dependency
// is reported as degraded.
func WithDegradedThreshold(d time.Duration) ReporterOption {
	return func(r *Reporter) {
		r.degradedThreshold = d
	}
}

// WithLogger sets the logger used for probe failures.
func WithLogger(logger *slog.Logger) ReporterOption {
	return func(r *Reporter) {
		r.logger = logger
	}
}

// WithVersion sets the version string reported in health metadata.
func WithVersion(version string) ReporterOption {
	return func(r *Reporter) {
		r.version = version
	}
}

// NewReporter creates a Reporter over the given probers. Prober order is
// preserved in every Report.
func NewReporter(probers []Prober, opts ...ReporterOption) *Reporter {
	r := &Reporter{
		probers:           probers,
		probeTimeout:      DefaultProbeTimeout,
		degradedThreshold: DefaultDegradedThreshold,
		logger:            slog.Default(),
		startedAt:         time.Now(),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Version returns the configured version string.
func (r *Reporter) Version() string { return r.version }

// Uptime returns the time elapsed since the reporter was created.
func (r *Reporter) Uptime() time.Duration { return time.Since(r.startedAt) }

// Run probes all dependencies concurrently and aggregates the outcomes.
// It returns once every probe has completed or hit its own deadline, so the
// total latency is bounded by the slowest single probe, not their sum.
func (r *Reporter) Run(ctx context.Context) Report {
	checks := make([]Check, len(r.probers))

	var wg sync.WaitGroup
	for i, p := range r.probers {
		wg.Add(1)
		go func(i int, p Prober) {
			defer wg.Done()
			checks[i] = r.runProbe(ctx, p)
		}(i, p)
	}
	wg.Wait()

	statuses := make([]Status, len(checks))
	for i, c := range checks {
		statuses[i] = c.Status
	}

	return Report{
		Status: WorstOf(statuses...),
		Checks: checks,
	}
}

// runProbe executes a single probe under its own deadline and classifies the
// outcome. Probe panics are contained and reported as unavailable.
func (r *Reporter) runProbe(ctx context.Context, p Prober) (check Check) {
	check = Check{Component: p.Name()}

	defer func() {
		if rec := recover(); rec != nil {
			r.logger.ErrorContext(ctx, "health probe panicked",
				slog.String("component", p.Name()),
				slog.Any("panic", rec),
			)
			check.Status = StatusUnavailable
			check.LatencyMS = nil
			check.Detail = fmt.Sprintf("probe panic: %v", rec)
		}
	}()

	probeCtx, cancel := context.WithTimeout(ctx, r.probeTimeout)
	defer cancel()

	start := time.Now()
	err := p.Probe(probeCtx)
	elapsed := time.Since(start)

	switch {
	case err == nil && elapsed <= r.degradedThreshold:
		check.Status = StatusOK
		check.LatencyMS = latencyMS(elapsed)

	case err == nil:
		check.Status = StatusDegraded
		check.LatencyMS = latencyMS(elapsed)
		check.Detail = fmt.Sprintf("latency %s exceeds threshold %s",
			elapsed.Round(time.Millisecond), r.degradedThreshold)

	case errors.Is(err, context.DeadlineExceeded) || probeCtx.Err() != nil:
		// The probe never completed; there is no meaningful latency sample.
		r.logger.WarnContext(ctx, "health probe timed out",
			slog.String("component", p.Name()),
			slog.Duration("timeout", r.probeTimeout),
		)
		check.Status = StatusUnavailable
		check.Detail = "timeout"

	default:
		r.logger.WarnContext(ctx, "health probe failed",
			slog.String("component", p.Name()),
			slog.String("error", err.Error()),
		)
		check.Status = StatusUnavailable
		check.LatencyMS = latencyMS(elapsed)
		check.Detail = err.Error()
	}

	return check
}

// latencyMS converts a duration to a millisecond pointer for the wire format.
func latencyMS(d time.Duration) *float64 {
	ms := float64(d.Microseconds()) / 1000.0
	return &ms
}
