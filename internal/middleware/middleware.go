package middleware

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
)

// CORS middleware for handling Cross-Origin Resource Sharing
func CORS() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Content-Length, Accept-Encoding, X-Request-ID, X-Correlation-ID")
		c.Header("Access-Control-Expose-Headers", "Content-Length, X-Request-ID")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// ErrorHandler logs errors attached to the context and, when no handler has written a
// response yet, answers with a standard error body. Internal details are not exposed.
func ErrorHandler(logger *logrus.Logger) gin.HandlerFunc {
	logger = ensureLogger(logger)

	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		err := c.Errors.Last()
		requestID := c.GetString(RequestIDKey)

		for _, e := range c.Errors {
			logger.WithFields(logrus.Fields{
				"request_id":  requestID,
				"method":      c.Request.Method,
				"path":        c.Request.URL.Path,
				"status_code": c.Writer.Status(),
				"error_type":  e.Type,
			}).WithError(e.Err).Error("Request error")
		}

		if c.Writer.Written() {
			return
		}

		response := ErrorResponse{
			RequestID: requestID,
			Timestamp: time.Now().Format(time.RFC3339),
		}

		var validationErrs validator.ValidationErrors
		switch {
		case errors.As(err.Err, &validationErrs):
			response.Error = "Validation failed"
			response.Message = "Request validation failed"
			response.ValidationErrors = FormatValidationErrors(validationErrs)
			c.JSON(http.StatusBadRequest, response)
		case err.Type == gin.ErrorTypeBind:
			response.Error = "Invalid request format"
			response.Message = err.Error()
			c.JSON(http.StatusBadRequest, response)
		case err.Type == gin.ErrorTypePublic:
			response.Error = "Request failed"
			response.Message = err.Error()
			c.JSON(http.StatusBadRequest, response)
		default:
			response.Error = "Internal server error"
			response.Message = "An internal error occurred"
			c.JSON(http.StatusInternalServerError, response)
		}
	}
}
