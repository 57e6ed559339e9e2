package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"checkout/internal/gateway"
	"checkout/internal/repository"
	"checkout/internal/service"
)

// genericSubmitError is shown when the backend rejected a call without a
// usable message.
const genericSubmitError = "something went wrong, please try again"

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// respondError sends an error response with the appropriate HTTP status
// code. Backend rejections keep the server-supplied message when there
// is one, falling back to a generic message.
func respondError(c *gin.Context, err error) {
	var be *gateway.BackendError
	if errors.As(err, &be) {
		msg := be.Message
		if msg == "" {
			msg = genericSubmitError
		}
		c.JSON(mapBackendStatus(be.StatusCode), ErrorResponse{Error: msg})
		return
	}

	code := mapErrorToHTTPStatus(err)
	c.JSON(code, ErrorResponse{Error: err.Error()})
}

// respondJSON sends a JSON response with the given status code.
func respondJSON(c *gin.Context, code int, data any) {
	c.JSON(code, data)
}

// mapBackendStatus passes client errors from the backend through and
// folds everything else into a bad gateway.
func mapBackendStatus(status int) int {
	if status >= 400 && status < 500 {
		return status
	}
	return http.StatusBadGateway
}

// mapErrorToHTTPStatus maps service/repository errors to HTTP status codes.
func mapErrorToHTTPStatus(err error) int {
	switch {
	// Not found errors
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound

	// Validation errors - Bad Request
	case errors.Is(err, service.ErrInvalidOrderID),
		errors.Is(err, service.ErrInvalidSessionID),
		errors.Is(err, service.ErrInvalidPaymentMethod),
		errors.Is(err, service.ErrInvalidShippingOption),
		errors.Is(err, service.ErrNoMethodSelected),
		errors.Is(err, service.ErrCardInvalid),
		errors.Is(err, service.ErrSlipNotImage),
		errors.Is(err, service.ErrSlipTooLarge),
		errors.Is(err, service.ErrNoPayment):
		return http.StatusBadRequest

	// Conflict errors
	case errors.Is(err, service.ErrSubmissionInFlight),
		errors.Is(err, service.ErrInvalidTransition),
		errors.Is(err, service.ErrStaleSession),
		errors.Is(err, repository.ErrRevisionConflict):
		return http.StatusConflict

	// Forbidden/Business rule errors
	case errors.Is(err, service.ErrSessionOwnership):
		return http.StatusForbidden

	// Upstream unavailable or unusable
	case errors.Is(err, service.ErrOrderUnavailable),
		errors.Is(err, service.ErrQRCodeUnavailable):
		return http.StatusBadGateway

	// Default to internal server error
	default:
		return http.StatusInternalServerError
	}
}
