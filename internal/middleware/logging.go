package middleware

import (
	"bytes"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// RequestIDKey is the key used to store request ID in context
const RequestIDKey = "request_id"

// CorrelationIDKey is the key used to store correlation ID in context
const CorrelationIDKey = "correlation_id"

// maxLoggedBody is the largest request or response body copied into debug logs
const maxLoggedBody = 10 * 1024

// responseWriter wraps gin.ResponseWriter to capture response body
type responseWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w *responseWriter) Write(b []byte) (int, error) {
	if w.body.Len() < maxLoggedBody {
		w.body.Write(b)
	}
	return w.ResponseWriter.Write(b)
}

// RequestID middleware adds a unique request ID to each request
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}

		c.Set(RequestIDKey, requestID)
		c.Header("X-Request-ID", requestID)
		c.Next()
	}
}

// CorrelationID middleware adds correlation ID for distributed tracing
func CorrelationID() gin.HandlerFunc {
	return func(c *gin.Context) {
		correlationID := c.GetHeader("X-Correlation-ID")
		if correlationID == "" {
			correlationID = c.GetString(RequestIDKey)
		}
		if correlationID == "" {
			correlationID = uuid.New().String()
		}

		c.Set(CorrelationIDKey, correlationID)
		c.Header("X-Correlation-ID", correlationID)
		c.Next()
	}
}

// StructuredLogger logs one entry per request with its request context. Bodies are
// only logged in debug mode.
func StructuredLogger(logger *logrus.Logger) gin.HandlerFunc {
	logger = ensureLogger(logger)

	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		var requestBody []byte
		if gin.Mode() == gin.DebugMode && c.Request.Body != nil && c.Request.ContentLength > 0 && c.Request.ContentLength < maxLoggedBody {
			requestBody, _ = io.ReadAll(c.Request.Body)
			c.Request.Body = io.NopCloser(bytes.NewBuffer(requestBody))
		}

		responseBodyWriter := &responseWriter{
			ResponseWriter: c.Writer,
			body:           &bytes.Buffer{},
		}
		c.Writer = responseBodyWriter

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()

		fields := logrus.Fields{
			"request_id":     c.GetString(RequestIDKey),
			"correlation_id": c.GetString(CorrelationIDKey),
			"method":         c.Request.Method,
			"path":           path,
			"status_code":    status,
			"latency_ms":     float64(latency.Nanoseconds()) / 1e6,
			"client_ip":      c.ClientIP(),
			"user_agent":     c.Request.UserAgent(),
			"response_size":  c.Writer.Size(),
		}

		if raw != "" {
			fields["query"] = raw
		}
		if len(requestBody) > 0 {
			fields["request_body"] = string(requestBody)
		}
		if gin.Mode() == gin.DebugMode && status >= http.StatusBadRequest {
			fields["response_body"] = responseBodyWriter.body.String()
		}

		entry := logger.WithFields(fields)
		switch {
		case status >= http.StatusInternalServerError:
			entry.Error("Server error")
		case status >= http.StatusBadRequest:
			entry.Warn("Client error")
		default:
			entry.Info("Request completed")
		}
	}
}

// AuditLogger logs every write to the ledger
func AuditLogger(logger *logrus.Logger) gin.HandlerFunc {
	logger = ensureLogger(logger)

	return func(c *gin.Context) {
		if c.Request.Method == http.MethodGet || c.Request.Method == http.MethodHead || c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		fields := logrus.Fields{
			"audit":          true,
			"request_id":     c.GetString(RequestIDKey),
			"method":         c.Request.Method,
			"path":           c.Request.URL.Path,
			"status_code":    c.Writer.Status(),
			"client_ip":      c.ClientIP(),
			"operation_time": time.Since(start).Milliseconds(),
		}

		switch c.Request.Method {
		case http.MethodPost:
			fields["operation"] = "CREATE"
		case http.MethodPut, http.MethodPatch:
			fields["operation"] = "UPDATE"
		case http.MethodDelete:
			fields["operation"] = "DELETE"
		}

		resource, id := resourceFromPath(c.Request.URL.Path)
		if resource != "" {
			fields["resource_type"] = resource
		}
		if id != "" {
			fields["resource_id"] = id
		}

		logger.WithFields(fields).Info("Audit log")
	}
}

// PerformanceMonitor warns about requests slower than slowThreshold
func PerformanceMonitor(logger *logrus.Logger, slowThreshold time.Duration) gin.HandlerFunc {
	logger = ensureLogger(logger)
	if slowThreshold <= 0 {
		slowThreshold = time.Second
	}

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)

		if latency > slowThreshold {
			logger.WithFields(logrus.Fields{
				"performance_alert": true,
				"request_id":        c.GetString(RequestIDKey),
				"method":            c.Request.Method,
				"path":              c.Request.URL.Path,
				"latency_ms":        float64(latency.Nanoseconds()) / 1e6,
				"threshold_ms":      float64(slowThreshold.Nanoseconds()) / 1e6,
				"status_code":       c.Writer.Status(),
			}).Warn("Slow request detected")
		}
	}
}

// resourceFromPath returns the ledger resource a path names and the ID that follows
// it, e.g. /api/v1/sales/abc gives ("sale", "abc")
func resourceFromPath(path string) (string, string) {
	resources := map[string]string{
		"sales":     "sale",
		"expenses":  "expense",
		"products":  "product",
		"customers": "customer",
	}

	parts := strings.Split(strings.Trim(path, "/"), "/")
	for i, part := range parts {
		resource, ok := resources[part]
		if !ok {
			continue
		}
		if i+1 < len(parts) {
			return resource, parts[i+1]
		}
		return resource, ""
	}
	return "", ""
}

func ensureLogger(logger *logrus.Logger) *logrus.Logger {
	if logger == nil {
		return logrus.StandardLogger()
	}
	return logger
}
