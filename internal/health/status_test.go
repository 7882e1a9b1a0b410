package health_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rpruizc/scimonitor/internal/health"
)

func TestWorstOf(t *testing.T) {
	tests := []struct {
		name     string
		statuses []health.Status
		expected health.Status
	}{
		{
			name:     "no statuses",
			statuses: nil,
			expected: health.StatusOK,
		},
		{
			name:     "all ok",
			statuses: []health.Status{health.StatusOK, health.StatusOK},
			expected: health.StatusOK,
		},
		{
			name:     "degraded beats ok",
			statuses: []health.Status{health.StatusOK, health.StatusDegraded},
			expected: health.StatusDegraded,
		},
		{
			name:     "unavailable beats degraded",
			statuses: []health.Status{health.StatusDegraded, health.StatusUnavailable},
			expected: health.StatusUnavailable,
		},
		{
			name:     "unavailable beats everything",
			statuses: []health.Status{health.StatusUnavailable, health.StatusOK, health.StatusDegraded},
			expected: health.StatusUnavailable,
		},
		{
			name:     "order does not matter",
			statuses: []health.Status{health.StatusOK, health.StatusUnavailable, health.StatusOK},
			expected: health.StatusUnavailable,
		},
		{
			name:     "single degraded",
			statuses: []health.Status{health.StatusDegraded},
			expected: health.StatusDegraded,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, health.WorstOf(tt.statuses...))
		})
	}
}

func TestStatus_IsValid(t *testing.T) {
	assert.True(t, health.StatusOK.IsValid())
	assert.True(t, health.StatusDegraded.IsValid())
	assert.True(t, health.StatusUnavailable.IsValid())
	assert.False(t, health.Status("healthy").IsValid())
	assert.False(t, health.Status("").IsValid())
}

func TestReport_HasUnavailable(t *testing.T) {
	report := health.Report{
		Status: health.StatusDegraded,
		Checks: []health.Check{
			{Component: "database", Status: health.StatusOK},
			{Component: "cache", Status: health.StatusDegraded},
		},
	}
	assert.False(t, report.HasUnavailable())

	report.Checks = append(report.Checks, health.Check{
		Component: "broker",
		Status:    health.StatusUnavailable,
	})
	assert.True(t, report.HasUnavailable())
}
