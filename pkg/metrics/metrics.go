package metrics

import (
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Registry is the registry served on /api/metrics
	Registry = prometheus.NewRegistry()

	factory = promauto.With(Registry)

	// Buckets from a few milliseconds up to the slowest payment gateway calls
	CustomAPIBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 3, 5, 8, 13, 21, 34, 55}

	// HTTP Metrics
	HTTPRequestDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_server_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: CustomAPIBuckets,
		},
		[]string{"http_request_method", "http_route", "http_response_status_code"},
	)

	HTTPRequestTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_server_request_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"http_request_method", "http_route", "http_response_status_code"},
	)

	ActiveRequests = factory.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "http_server_active_requests",
			Help: "Number of active HTTP requests",
		},
		[]string{"http_request_method"},
	)

	RateLimited = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_server_rate_limited_total",
			Help: "Requests rejected by the per-IP rate limiter",
		},
		[]string{"http_route"},
	)

	// Database Client Metrics
	DBOperationDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "db_client_operation_duration_seconds",
			Help:    "Database client operation duration in seconds",
			Buckets: CustomAPIBuckets,
		},
		[]string{"operation", "status"},
	)

	DBOperationTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "db_client_operation_total",
			Help: "Total number of database client operations",
		},
		[]string{"operation", "status"},
	)

	// Cache Metrics
	CacheHits = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_hits_total",
			Help: "Total number of cache hits",
		},
		[]string{"cache_name"},
	)

	CacheMisses = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_misses_total",
			Help: "Total number of cache misses",
		},
		[]string{"cache_name"},
	)

	CacheSize = factory.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "cache_entries",
			Help: "Number of entries in cache",
		},
		[]string{"cache_name"},
	)

	// Storage Client Metrics (S3)
	StorageRequestDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "storage_client_operation_duration_seconds",
			Help:    "Storage client operation duration in seconds",
			Buckets: CustomAPIBuckets,
		},
		[]string{"operation", "status"},
	)

	StorageRequestTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storage_client_operation_total",
			Help: "Total number of storage client operations",
		},
		[]string{"operation", "status"},
	)

	// Business Metrics
	AuthAttempts = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mentormatch_auth_attempts_total",
			Help: "Sign-in, sign-up and sign-out attempts by outcome",
		},
		[]string{"operation", "status"},
	)

	RouteDecisions = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mentormatch_route_decisions_total",
			Help: "Route guard decisions by route and outcome",
		},
		[]string{"route", "decision"},
	)

	MentorProfileViews = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mentormatch_mentor_profile_views_total",
			Help: "Total number of mentor profile views",
		},
		[]string{"status"},
	)

	ProfileUpdates = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mentormatch_profile_updates_total",
			Help: "Profile and avatar updates by outcome",
		},
		[]string{"operation", "status"},
	)

	MentorRegistrations = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mentormatch_mentor_registrations_total",
			Help: "Total mentor registration attempts",
		},
		[]string{"status"},
	)

	BookingsCreated = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mentormatch_bookings_created_total",
			Help: "Total booking attempts by outcome",
		},
		[]string{"status"},
	)

	BookingTransitions = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mentormatch_booking_transitions_total",
			Help: "Booking status transitions",
		},
		[]string{"from", "to"},
	)

	PaymentOutcomes = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mentormatch_payment_outcomes_total",
			Help: "Payment attempts by outcome",
		},
		[]string{"outcome"},
	)

	PaymentDuration = factory.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "mentormatch_payment_duration_seconds",
			Help:    "Payment gateway round trip in seconds",
			Buckets: CustomAPIBuckets,
		},
	)

	CheckoutDeduplicated = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mentormatch_checkout_deduplicated_total",
			Help: "Confirm calls that joined an in-flight checkout step",
		},
		[]string{"step"},
	)

	ReviewsSubmitted = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mentormatch_reviews_submitted_total",
			Help: "Review submissions by outcome",
		},
		[]string{"status"},
	)

	TriggerCalls = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mentormatch_trigger_calls_total",
			Help: "Outgoing webhook trigger calls by event and outcome",
		},
		[]string{"event", "status"},
	)

	CircuitBreakerState = factory.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "mentormatch_circuit_breaker_state",
			Help: "Circuit breaker state (0 closed, 1 half-open, 2 open)",
		},
		[]string{"breaker"},
	)

	// Infrastructure Metrics
	GoRoutines = factory.NewGauge(
		prometheus.GaugeOpts{
			Name: "process_runtime_go_goroutines",
			Help: "Number of goroutines",
		},
	)

	HeapAlloc = factory.NewGauge(
		prometheus.GaugeOpts{
			Name: "process_runtime_go_mem_heap_alloc_bytes",
			Help: "Heap allocated bytes",
		},
	)
)

// Init registers the process collector under the service's namespace
func Init(serviceName string) {
	Registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{
		Namespace: sanitizeNamespace(serviceName),
	}))
}

func sanitizeNamespace(name string) string {
	out := make([]rune, 0, len(name))
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			out = append(out, r)
		default:
			out = append(out, '_')
		}
	}
	return string(out)
}

// RecordInfrastructureMetrics collects infrastructure metrics periodically
func RecordInfrastructureMetrics() {
	ticker := time.NewTicker(15 * time.Second)
	go func() {
		for range ticker.C {
			var m runtime.MemStats
			runtime.ReadMemStats(&m)

			GoRoutines.Set(float64(runtime.NumGoroutine()))
			HeapAlloc.Set(float64(m.HeapAlloc))
		}
	}()
}

// MeasureDuration measures the duration of an operation
func MeasureDuration(start time.Time) float64 {
	return time.Since(start).Seconds()
}
