package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/KarlaDampilag/dailysalesexpenses/internal/middleware"
	"github.com/KarlaDampilag/dailysalesexpenses/internal/models"
	"github.com/KarlaDampilag/dailysalesexpenses/internal/repositories"
	"github.com/KarlaDampilag/dailysalesexpenses/internal/services"
)

// ErrorResponse represents a standard error response
type ErrorResponse struct {
	Error            string                       `json:"error"`
	Message          string                       `json:"message"`
	ValidationErrors []middleware.ValidationError `json:"validation_errors,omitempty"`
}

// errorStatus maps a service error to its HTTP status and public error title.
// Unknown errors are internal.
func errorStatus(err error, fallback string) (int, string) {
	var validationErrs validator.ValidationErrors
	var modelErr *models.ValidationError

	switch {
	case errors.Is(err, services.ErrInvalidRange):
		return http.StatusBadRequest, "Invalid date range"
	case errors.As(err, &validationErrs), errors.As(err, &modelErr), repositories.IsValidation(err):
		return http.StatusBadRequest, "Validation failed"
	case repositories.IsNotFound(err):
		return http.StatusNotFound, "Not found"
	case repositories.IsDuplicate(err):
		return http.StatusConflict, "Already exists"
	case repositories.IsConstraint(err):
		return http.StatusBadRequest, "Constraint violation"
	case repositories.IsUnavailable(err):
		return http.StatusServiceUnavailable, "Service unavailable"
	default:
		return http.StatusInternalServerError, fallback
	}
}

// errorBody builds the response for err; internal and unavailable errors do not expose
// their cause
func errorBody(err error, fallback string) (int, ErrorResponse) {
	status, title := errorStatus(err, fallback)
	switch status {
	case http.StatusInternalServerError:
		return status, ErrorResponse{Error: title, Message: "An internal error occurred"}
	case http.StatusServiceUnavailable:
		return status, ErrorResponse{Error: title, Message: "The ledger database is unavailable, retry later"}
	}

	response := ErrorResponse{Error: title, Message: err.Error()}
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		response.ValidationErrors = middleware.FormatValidationErrors(validationErrs)
	}
	return status, response
}

// writeError answers a gin request with the response for err. Internal errors are
// attached to the context so ErrorHandler logs them.
func writeError(c *gin.Context, err error, fallback string) {
	status, body := errorBody(err, fallback)
	if status >= http.StatusInternalServerError {
		_ = c.Error(err)
	}
	c.JSON(status, body)
}
