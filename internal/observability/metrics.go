package observability

import (
	"sync"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	registerOnce          sync.Once
	httpRequestsTotal     *prometheus.CounterVec
	httpLatencySeconds    *prometheus.HistogramVec
	httpErrorsTotal       *prometheus.CounterVec
	quizSubmissionsTotal  *prometheus.CounterVec
	quizScore             prometheus.Histogram
	slotAllocationsTotal  *prometheus.CounterVec
	uploadsTotal          *prometheus.CounterVec
	notificationsTotal    *prometheus.CounterVec
	realtimeClientsActive *prometheus.GaugeVec
)

// RegisterMetrics initialises the Prometheus collectors used by the API.
func RegisterMetrics() {
	registerOnce.Do(func() {
		httpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "campus_http_requests_total",
			Help: "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		httpLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "campus_http_latency_seconds",
			Help:    "Latency distribution for API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		httpErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "campus_http_errors_total",
			Help: "Total number of error responses returned by the API.",
		}, []string{"method", "route", "status"})

		quizSubmissionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "campus_quiz_submissions_total",
			Help: "Graded quiz submissions by timeliness.",
		}, []string{"status"})

		quizScore = prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "campus_quiz_score_percent",
			Help:    "Distribution of quiz scores.",
			Buckets: prometheus.LinearBuckets(0, 10, 11),
		})

		slotAllocationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "campus_slot_allocations_total",
			Help: "Teacher/student slot allocation attempts by outcome.",
		}, []string{"outcome"})

		uploadsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "campus_uploads_total",
			Help: "File uploads by outcome.",
		}, []string{"outcome"})

		notificationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "campus_notifications_published_total",
			Help: "Notifications published by transport.",
		}, []string{"transport"})

		realtimeClientsActive = prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "campus_realtime_clients",
			Help: "Connected notification stream clients.",
		}, []string{"transport"})

		prometheus.MustRegister(
			httpRequestsTotal,
			httpLatencySeconds,
			httpErrorsTotal,
			quizSubmissionsTotal,
			quizScore,
			slotAllocationsTotal,
			uploadsTotal,
			notificationsTotal,
			realtimeClientsActive,
		)
	})
}

// HTTPRequests exposes the counter for API requests.
func HTTPRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return httpRequestsTotal
}

// HTTPLatency exposes the latency histogram for API requests.
func HTTPLatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return httpLatencySeconds
}

// HTTPErrors exposes the counter for API error responses.
func HTTPErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return httpErrorsTotal
}

// QuizSubmissions counts graded submissions by status label.
func QuizSubmissions() *prometheus.CounterVec {
	RegisterMetrics()
	return quizSubmissionsTotal
}

// QuizScores observes the distribution of graded scores.
func QuizScores() prometheus.Histogram {
	RegisterMetrics()
	return quizScore
}

// SlotAllocations counts allocation attempts by outcome label.
func SlotAllocations() *prometheus.CounterVec {
	RegisterMetrics()
	return slotAllocationsTotal
}

// Uploads counts file uploads by outcome label.
func Uploads() *prometheus.CounterVec {
	RegisterMetrics()
	return uploadsTotal
}

// NotificationsPublished counts notifications by transport label.
func NotificationsPublished() *prometheus.CounterVec {
	RegisterMetrics()
	return notificationsTotal
}

// RealtimeClients tracks connected stream clients by transport label.
func RealtimeClients() *prometheus.GaugeVec {
	RegisterMetrics()
	return realtimeClientsActive
}

// MetricsHandler serves the Prometheus scrape endpoint, including the
// campus collectors, through Fiber.
func MetricsHandler() fiber.Handler {
	RegisterMetrics()
	return adaptor.HTTPHandler(promhttp.InstrumentMetricHandler(
		prometheus.DefaultRegisterer,
		promhttp.HandlerFor(prometheus.DefaultGatherer, promhttp.HandlerOpts{EnableOpenMetrics: true}),
	))
}
