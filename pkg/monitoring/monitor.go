package monitoring

import (
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: []float64{0.1, 0.5, 1, 2, 5},
		},
		[]string{"method", "endpoint"},
	)

	AttemptCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "casegrader_attempts_total",
			Help: "Graded attempts by location grade and correctness",
		},
		[]string{"grade", "correct"},
	)

	RejectedAttemptCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "casegrader_attempts_rejected_total",
			Help: "Submissions rejected before grading",
		},
		[]string{"reason"},
	)

	FinalScore = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "casegrader_final_score",
			Help:    "Distribution of composite attempt scores",
			Buckets: prometheus.LinearBuckets(0, 10, 11),
		},
	)
)

var registerOnce sync.Once

func Init() {
	registerOnce.Do(func() {
		prometheus.MustRegister(RequestCounter)
		prometheus.MustRegister(RequestDuration)
		prometheus.MustRegister(AttemptCounter)
		prometheus.MustRegister(RejectedAttemptCounter)
		prometheus.MustRegister(FinalScore)
	})
}

func ObserveAttempt(grade string, correct bool, finalScore float64) {
	AttemptCounter.WithLabelValues(grade, strconv.FormatBool(correct)).Inc()
	FinalScore.Observe(finalScore)
}

func ObserveRejected(reason string) {
	RejectedAttemptCounter.WithLabelValues(reason).Inc()
}

func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		duration := time.Since(start).Seconds()
		status := c.Writer.Status()

		RequestCounter.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			strconv.Itoa(status),
		).Inc()

		RequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
		).Observe(duration)
	}
}

func PrometheusHandler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
