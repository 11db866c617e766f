// Package middleware holds the cross-cutting gin middleware of the API.
package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/turtacn/risknet/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/risknet/internal/infrastructure/monitoring/prometheus"
)

// RequestIDHeader carries the request correlation ID in both directions.
const RequestIDHeader = "X-Request-ID"

// RequestLogger logs one line per request and records the HTTP metrics.
// An incoming request ID is propagated; otherwise one is minted.
func RequestLogger(log logging.Logger, metrics *prometheus.AppMetrics) gin.HandlerFunc {
	if log == nil {
		log = logging.NewNopLogger()
	}
	log = log.Named("http")

	return func(c *gin.Context) {
		start := time.Now()

		reqID := c.GetHeader(RequestIDHeader)
		if reqID == "" {
			reqID = uuid.NewString()
		}
		c.Header(RequestIDHeader, reqID)
		c.Set("request_id", reqID)

		c.Next()

		took := time.Since(start)
		status := c.Writer.Status()

		// Route template, not the raw path, keeps metric cardinality bounded.
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		prometheus.RecordHTTPRequest(metrics, c.Request.Method, route, status, took)

		fields := []logging.Field{
			logging.String("request_id", reqID),
			logging.String("method", c.Request.Method),
			logging.String("path", c.Request.URL.Path),
			logging.Int("status", status),
			logging.Duration("took", took),
			logging.String("client_ip", c.ClientIP()),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, logging.String("errors", c.Errors.String()))
		}

		switch {
		case status >= 500:
			log.Error("request failed", fields...)
		case status >= 400:
			log.Warn("request rejected", fields...)
		default:
			log.Info("request served", fields...)
		}
	}
}
