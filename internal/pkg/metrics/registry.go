package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// API Client Metrics
var (
	// APICalls tracks outgoing API calls
	APICalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eventdesk_api_calls_total",
			Help: "Total API calls by method, route (normalized path), and status code",
		},
		[]string{"method", "route", "status_code"},
	)

	// APIDuration tracks outgoing API call latency
	APIDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:                            "eventdesk_api_call_duration_ms",
			Help:                            "API call duration in milliseconds",
			NativeHistogramBucketFactor:     1.1,
			NativeHistogramMaxBucketNumber:  100,
			NativeHistogramMinResetDuration: 1 * time.Hour,
		},
		[]string{"method", "route"},
	)

	// APIErrors tracks failed API calls
	APIErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eventdesk_api_errors_total",
			Help: "Total API errors by route and error type",
		},
		[]string{"route", "error_type"},
	)

	// TokenRefreshes tracks access token refresh attempts
	TokenRefreshes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eventdesk_token_refreshes_total",
			Help: "Total access token refreshes by outcome",
		},
		[]string{"outcome"},
	)
)

// Cache Metrics
var (
	// CacheHits tracks cache hits
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eventdesk_cache_hits_total",
			Help: "Total cache hits by component and cache name",
		},
		[]string{"component", "cache_name"},
	)

	// CacheMisses tracks cache misses
	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eventdesk_cache_misses_total",
			Help: "Total cache misses by component and cache name",
		},
		[]string{"component", "cache_name"},
	)

	// CacheSize tracks current cache size
	CacheSize = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "eventdesk_cache_entries",
			Help: "Current number of entries in cache",
		},
		[]string{"component", "cache_name"},
	)

	// CacheEvictions tracks cache evictions
	CacheEvictions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eventdesk_cache_evictions_total",
			Help: "Total cache evictions by component and cache name",
		},
		[]string{"component", "cache_name"},
	)
)

// HTTP Handler Metrics (dev server)
var (
	// HTTPRequests tracks HTTP requests
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eventdesk_http_requests_total",
			Help: "Total HTTP requests by method, path, and status",
		},
		[]string{"method", "path", "status"},
	)

	// HTTPDuration tracks HTTP request duration
	HTTPDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:                            "eventdesk_http_request_duration_ms",
			Help:                            "HTTP request duration in milliseconds",
			NativeHistogramBucketFactor:     1.1,
			NativeHistogramMaxBucketNumber:  100,
			NativeHistogramMinResetDuration: 1 * time.Hour,
		},
		[]string{"method", "path"},
	)

	// HTTPActiveRequests tracks active HTTP requests
	HTTPActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "eventdesk_http_active_requests",
			Help: "Number of active HTTP requests",
		},
	)
)

// Business Metrics
var (
	// ActiveSessions tracks live refresh tokens held by the dev server
	ActiveSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "eventdesk_active_sessions",
			Help: "Number of active user sessions",
		},
	)

	// BookingsTotal tracks stored bookings by status
	BookingsTotal = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "eventdesk_bookings_total",
			Help: "Total bookings by status",
		},
		[]string{"status"},
	)

	// UploadsTotal tracks file uploads by outcome
	UploadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eventdesk_uploads_total",
			Help: "Total file uploads by outcome",
		},
		[]string{"outcome"},
	)
)
