package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"my-site/infrastructure/logger"
)

const RequestIDHeader = "X-Request-ID"

// RequestLogger tags every request with an id (kept from the caller when present)
// and logs it once the handler chain has finished.
func RequestLogger() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		start := time.Now()

		requestID := ctx.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		ctx.Set("request_id", requestID)
		ctx.Header(RequestIDHeader, requestID)

		ctx.Next()

		entry := logger.GetLogger().WithFields(map[string]interface{}{
			"request_id": requestID,
			"method":     ctx.Request.Method,
			"path":       ctx.Request.URL.Path,
			"query":      ctx.Request.URL.RawQuery,
			"status":     ctx.Writer.Status(),
			"latency":    time.Since(start).String(),
			"size":       ctx.Writer.Size(),
			"client_ip":  ctx.ClientIP(),
			"user_agent": ctx.Request.UserAgent(),
		})
		switch status := ctx.Writer.Status(); {
		case status >= 500:
			entry.Error("http request completed")
		case status >= 400:
			entry.Warn("http request completed")
		default:
			entry.Info("http request completed")
		}
	}
}
