package metrics

import (
	"strconv"
	"strings"
	"time"
)

// RecordHTTPRequest records metrics for an HTTP request
func (m *Metrics) RecordHTTPRequest(method, endpoint string, status int, duration time.Duration) {
	m.safeExecute("RecordHTTPRequest", func() {
		statusStr := strconv.Itoa(status)
		m.HTTPRequestsTotal.WithLabelValues(method, endpoint, statusStr).Inc()
		m.HTTPRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
	})
}

// ShouldSkipEndpoint returns true for endpoints excluded from HTTP metrics
func ShouldSkipEndpoint(path string) bool {
	skipPaths := []string{
		"/metrics",
		"/health",
		"/favicon.ico",
	}
	for _, skip := range skipPaths {
		if strings.HasPrefix(path, skip) {
			return true
		}
	}
	return false
}
