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

	// 业务指标
	LevelsCompleted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "code4u_levels_completed_total",
			Help: "First-time level completions by category",
		},
		[]string{"category"},
	)

	BadgesAwarded = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "code4u_badges_awarded_total",
			Help: "Badges awarded by badge id",
		},
		[]string{"badge"},
	)

	JourneysCompleted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "code4u_journeys_completed_total",
			Help: "Journey completions by journey id",
		},
		[]string{"journey"},
	)

	SyncWrites = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "code4u_progress_sync_writes_total",
			Help: "Progress synchronizations that had to write missing facts",
		},
	)
)

var registerOnce sync.Once

func Init() {
	registerOnce.Do(func() {
		prometheus.MustRegister(RequestCounter)
		prometheus.MustRegister(RequestDuration)
		prometheus.MustRegister(LevelsCompleted)
		prometheus.MustRegister(BadgesAwarded)
		prometheus.MustRegister(JourneysCompleted)
		prometheus.MustRegister(SyncWrites)
	})
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
