package middleware

import (
	"fmt"
	"time"

	"github.com/VictoriaMetrics/metrics"
	"github.com/gin-gonic/gin"
)

// Metrics records request counts and latency per route and status.
func Metrics() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		start := time.Now()
		ctx.Next()

		route := ctx.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.GetOrCreateCounter(fmt.Sprintf(`http_requests_total{route=%q,method=%q,status="%d"}`,
			route, ctx.Request.Method, ctx.Writer.Status())).Inc()
		metrics.GetOrCreateHistogram(fmt.Sprintf(`http_request_duration_seconds{route=%q}`, route)).UpdateDuration(start)
	}
}

// MetricsHandler exposes every registered metric in Prometheus text format.
func MetricsHandler(ctx *gin.Context) {
	ctx.Header("Content-Type", "text/plain; version=0.0.4")
	metrics.WritePrometheus(ctx.Writer, true)
}
