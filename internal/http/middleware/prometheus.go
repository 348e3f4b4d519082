package middleware

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusMiddleware holds the prometheus metrics and registry.
type PrometheusMiddleware struct {
	requestCount    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

// NewPrometheusMiddleware creates a new PrometheusMiddleware.
func NewPrometheusMiddleware(reg prometheus.Registerer) (*PrometheusMiddleware, error) {
	m := &PrometheusMiddleware{
		requestCount: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests processed.",
			},
			[]string{"method", "path", "status"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency in seconds.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
	}

	if err := reg.Register(m.requestCount); err != nil {
		// Return error if already registered, or we can use MustRegister but better handle it.
		// If it's already registered and we want to reuse it, we might need a different approach.
		// But usually per registry it should be unique.
		return nil, err
	}
	if err := reg.Register(m.requestDuration); err != nil {
		return nil, err
	}

	return m, nil
}

// DomainMetrics holds counters for the case access domain, incremented by
// handlers rather than per-request middleware.
type DomainMetrics struct {
	caseViews    prometheus.Counter
	quotaDenials prometheus.Counter
}

// NewDomainMetrics creates and registers the domain counters.
func NewDomainMetrics(reg prometheus.Registerer) (*DomainMetrics, error) {
	m := &DomainMetrics{
		caseViews: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "case_views_total",
			Help: "Total number of case bodies served.",
		}),
		quotaDenials: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "quota_denials_total",
			Help: "Total number of case views denied for lack of allowance.",
		}),
	}
	if err := reg.Register(m.caseViews); err != nil {
		return nil, err
	}
	if err := reg.Register(m.quotaDenials); err != nil {
		return nil, err
	}
	return m, nil
}

// CaseViewed counts one served case body. Safe on a nil receiver so handlers
// can run without metrics in tests.
func (m *DomainMetrics) CaseViewed() {
	if m != nil {
		m.caseViews.Inc()
	}
}

// QuotaDenied counts one allowance rejection.
func (m *DomainMetrics) QuotaDenied() {
	if m != nil {
		m.quotaDenials.Inc()
	}
}

// Handler returns the fiber middleware handler.
func (m *PrometheusMiddleware) Handler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		// Exclude /metrics from being counted
		if c.Path() == "/metrics" {
			return c.Next()
		}

		// Process the request
		start := time.Now()
		err := c.Next()
		elapsed := time.Since(start).Seconds()

		// Get path pattern (e.g., /v1/cases/:id instead of /v1/cases/123)
		path := c.Route().Path
		if path == "" {
			path = c.Path() // Fallback to raw path if route not found (e.g. 404)
		}

		status := c.Response().StatusCode()
		if err != nil {
			if fiberErr, ok := err.(*fiber.Error); ok {
				status = fiberErr.Code
			} else {
				// Default to 500 if error is not a fiber.Error
				// This depends on how ErrorHandler is implemented
				status = fiber.StatusInternalServerError
			}
		}

		m.requestCount.WithLabelValues(
			c.Method(),
			path,
			strconv.Itoa(status),
		).Inc()
		m.requestDuration.WithLabelValues(c.Method(), path).Observe(elapsed)

		return err
	}
}
