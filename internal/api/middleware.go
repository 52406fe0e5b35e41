package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	apperrors "provider-directory/internal/common/errors"
	"provider-directory/internal/common/logger"
	"provider-directory/internal/common/metrics"
	"provider-directory/internal/common/observability"
	"provider-directory/internal/common/ratelimit"
	"provider-directory/internal/models"
)

const (
	requestIDHeader = "X-Request-ID"
	requestIDKey    = "requestId"
)

const rateLimitedMessage = "You're sending messages too quickly. Please wait a moment and try again."

// RequestID propagates a caller-supplied X-Request-ID or mints one.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(requestIDHeader))
		if id == "" || len(id) > 64 {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Writer.Header().Set(requestIDHeader, id)
		c.Next()
	}
}

func RequestIDFrom(c *gin.Context) string {
	return c.GetString(requestIDKey)
}

// SecurityHeaders adds security headers to prevent common attacks
func SecurityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		h.Set("Content-Security-Policy", "default-src 'none'")
		h.Set("Cache-Control", "no-store")
		c.Next()
	}
}

// RequestSizeLimiter caps request bodies at maxBytes.
func RequestSizeLimiter(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

// RateLimit throttles per client IP. Limiter errors are logged and the
// request is let through.
func RateLimit(limiter ratelimit.Limiter, log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		allowed, err := limiter.Allow(c.Request.Context(), c.ClientIP())
		if err != nil {
			log.WithError(err).Warn("rate limiter unavailable", map[string]interface{}{
				"requestId": RequestIDFrom(c),
			})
		}
		if !allowed {
			metrics.ChatRateLimited.Inc()
			stdErr := apperrors.NewRateLimitedError(c.ClientIP())
			log.Debug(stdErr.Message, map[string]interface{}{
				"requestId": RequestIDFrom(c),
				"code":      stdErr.Code,
			})
			c.Header("Retry-After", "60")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, models.Reply{
				Response:    rateLimitedMessage,
				Suggestions: []string{},
			})
			return
		}
		c.Next()
	}
}

// Telemetry records request metrics and writes one access log line.
func Telemetry(obs *observability.Observability, log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		done := obs.RequestStarted(c.Request.Context(), route)

		c.Next()

		elapsed := time.Since(start)
		status := c.Writer.Status()
		done(status, elapsed)

		fields := map[string]interface{}{
			"requestId":  RequestIDFrom(c),
			"method":     c.Request.Method,
			"route":      route,
			"status":     status,
			"durationMs": elapsed.Milliseconds(),
		}
		switch {
		case status >= http.StatusInternalServerError:
			log.Warn("request served", fields)
		case route == "/health" || route == "/metrics":
			log.Debug("request served", fields)
		default:
			log.Info("request served", fields)
		}
	}
}
