package middleware

import (
	"strconv"
	"time"

	"socialgraph/apperrors"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status", "service"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint", "service"},
	)

	friendshipOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "friendship_operations_total",
			Help: "Total number of friendship operations processed",
		},
		[]string{"operation", "status", "service"},
	)

	friendshipOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "friendship_operation_duration_seconds",
			Help:    "Duration of friendship operations in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
		[]string{"operation", "service"},
	)

	friendshipErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "friendship_errors_total",
			Help: "Total number of friendship operation errors by kind",
		},
		[]string{"operation", "kind", "service"},
	)
)

func PrometheusMiddleware(serviceName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}

		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())

		httpRequestsTotal.WithLabelValues(
			c.Request.Method,
			path,
			status,
			serviceName,
		).Inc()

		httpRequestDuration.WithLabelValues(
			c.Request.Method,
			path,
			serviceName,
		).Observe(duration)
	}
}

// RecordFriendOperation учитывает операцию графа. Метка kind - тип ошибки
// apperrors, а не текст, чтобы не раздувать кардинальность.
func RecordFriendOperation(operation, serviceName string, duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
		friendshipErrors.WithLabelValues(operation, string(apperrors.KindOf(err)), serviceName).Inc()
	}
	friendshipOperationsTotal.WithLabelValues(operation, status, serviceName).Inc()
	friendshipOperationDuration.WithLabelValues(operation, serviceName).Observe(duration.Seconds())
}
