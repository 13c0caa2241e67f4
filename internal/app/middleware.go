package app

import (
	"crypto/subtle"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/garyellow/xoso-linebot-go/internal/ctxutil"
	"github.com/garyellow/xoso-linebot-go/internal/logger"
)

// securityHeadersMiddleware adds security headers to responses.
func securityHeadersMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Header("Permissions-Policy", "geolocation=(), microphone=(), camera=()")
		c.Header("Content-Security-Policy", "default-src 'none'")
		c.Next()
	}
}

// requestIDHeaders are checked in order for an upstream request id.
var requestIDHeaders = []string{"X-Request-Id", "X-Correlation-Id"}

// loggingMiddleware logs HTTP requests with status-based log levels:
// 5xx=Error, 4xx=Warn, everything else Debug.
func loggingMiddleware(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		requestID := ""
		for _, h := range requestIDHeaders {
			if requestID = c.GetHeader(h); requestID != "" {
				break
			}
		}
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Request = c.Request.WithContext(ctxutil.WithRequestID(c.Request.Context(), requestID))
		c.Header("X-Request-Id", requestID)

		c.Next()

		status := c.Writer.Status()
		entry := log.WithRequestID(requestID).
			WithField("http_method", method).
			WithField("http_path", path).
			WithField("http_status", status).
			WithField("duration_ms", time.Since(start).Milliseconds()).
			WithField("client_ip", c.ClientIP())

		switch {
		case status >= http.StatusInternalServerError:
			entry.Error("HTTP request failed")
		case status >= http.StatusBadRequest && status != http.StatusNotFound:
			entry.Warn("HTTP request rejected")
		default:
			entry.Debug("HTTP request completed")
		}
	}
}

const metricsRealm = `Basic realm="xoso-metrics"`

// metricsAuthMiddleware guards /metrics with Basic Auth. Disabled means open.
func metricsAuthMiddleware(enabled bool, username, password string) gin.HandlerFunc {
	if !enabled {
		return func(c *gin.Context) { c.Next() }
	}
	wantUser, wantPass := []byte(username), []byte(password)
	return func(c *gin.Context) {
		user, pass, ok := c.Request.BasicAuth()
		// Both comparisons always run so timing does not reveal which one failed.
		userOK := subtle.ConstantTimeCompare([]byte(user), wantUser)
		passOK := subtle.ConstantTimeCompare([]byte(pass), wantPass)
		if !ok || userOK&passOK != 1 {
			c.Header("WWW-Authenticate", metricsRealm)
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}
		c.Next()
	}
}
