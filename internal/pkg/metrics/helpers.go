package metrics

import (
	"strconv"
	"time"
)

// RecordHTTPRequest records served HTTP request metrics consistently
// method: HTTP method
// path: route template (e.g., "/api/bookings/{id}"), never the raw path
// status: response status code
// duration: time taken to serve the request
func RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	HTTPRequests.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	HTTPDuration.WithLabelValues(method, path).Observe(float64(duration.Milliseconds()))
}

// SetBookingCounts replaces the per-status booking gauge values
func SetBookingCounts(counts map[string]int) {
	BookingsTotal.Reset()
	for status, n := range counts {
		BookingsTotal.WithLabelValues(status).Set(float64(n))
	}
}
