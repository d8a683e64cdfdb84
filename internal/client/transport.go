package client

import (
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/devilmonastery/eventdesk/internal/pkg/metrics"
)

// metricsTransport wraps an http.RoundTripper to collect metrics on API calls
type metricsTransport struct {
	base http.RoundTripper
}

// NewMetricsTransport creates a transport wrapper that records call counts,
// latency and errors for every request it carries.
func NewMetricsTransport(base http.RoundTripper) http.RoundTripper {
	if base == nil {
		base = http.DefaultTransport
	}
	return &metricsTransport{base: base}
}

// RoundTrip implements http.RoundTripper
func (t *metricsTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := t.base.RoundTrip(req)
	duration := time.Since(start)

	route := normalizeRoute(req.URL.Path)
	statusCode := 0
	if resp != nil {
		statusCode = resp.StatusCode
	}

	metrics.APICalls.WithLabelValues(req.Method, route, strconv.Itoa(statusCode)).Inc()
	metrics.APIDuration.WithLabelValues(req.Method, route).Observe(float64(duration.Milliseconds()))

	if err != nil || statusCode >= 400 {
		metrics.APIErrors.WithLabelValues(route, classifyError(statusCode, err)).Inc()
	}

	return resp, err
}

var routeIDPatterns = []*regexp.Regexp{
	// uuids
	regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`),
	// numeric and snowflake ids
	regexp.MustCompile(`^\d+$`),
	// dates used by the calendar endpoints
	regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`),
}

// normalizeRoute replaces id-like path segments with :id to keep metric
// cardinality bounded.
func normalizeRoute(path string) string {
	segments := strings.Split(path, "/")
	for i, seg := range segments {
		for _, re := range routeIDPatterns {
			if re.MatchString(seg) {
				segments[i] = ":id"
				break
			}
		}
	}
	return strings.Join(segments, "/")
}

// classifyError categorizes API errors for metrics
func classifyError(statusCode int, err error) string {
	if err != nil {
		errStr := err.Error()
		switch {
		case strings.Contains(errStr, "timeout") || strings.Contains(errStr, "deadline"):
			return "timeout"
		case strings.Contains(errStr, "connection"):
			return "connection"
		case strings.Contains(errStr, "tls"), strings.Contains(errStr, "TLS"):
			return "tls"
		default:
			return "network"
		}
	}

	switch {
	case statusCode == 400:
		return "bad_request"
	case statusCode == 401:
		return "unauthorized"
	case statusCode == 403:
		return "forbidden"
	case statusCode == 404:
		return "not_found"
	case statusCode == 409:
		return "conflict"
	case statusCode == 429:
		return "rate_limited"
	case statusCode >= 500:
		return "server_error"
	case statusCode >= 400:
		return "client_error"
	default:
		return "unknown"
	}
}
