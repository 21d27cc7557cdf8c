package errors

import (
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
)

// ErrorResponse represents a standardized error response
type ErrorResponse struct {
	Error   string `json:"error"`             // error code (e.g., "validation_error")
	Message string `json:"message"`           // user-friendly message
	Details string `json:"details,omitempty"` // optional details (hidden in production)
}

// standard error codes
const (
	CodeValidationError = "validation_error"
	CodeNotFound        = "not_found"
	CodeServerError     = "server_error"
	CodeUpstreamError   = "upstream_error"
)

// Respond maps a classified error to an HTTP status and writes the standard
// JSON body.
func Respond(c *gin.Context, err error) {
	switch KindOf(err) {
	case KindValidation:
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   CodeValidationError,
			Message: err.Error(),
		})
	case KindExternal:
		c.JSON(http.StatusBadGateway, ErrorResponse{
			Error:   CodeUpstreamError,
			Message: "upstream service unavailable",
			Details: details(err),
		})
	default:
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   CodeServerError,
			Message: "internal server error",
			Details: details(err),
		})
	}
}

// returns a 404 not found error
func NotFound(c *gin.Context, message string) {
	if message == "" {
		message = "resource not found"
	}

	c.JSON(http.StatusNotFound, ErrorResponse{
		Error:   CodeNotFound,
		Message: message,
	})
}

// returns a 400 bad request error
func BadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{
		Error:   CodeValidationError,
		Message: message,
	})
}

// raw error text leaks connection strings and hostnames; only expose it
// outside production
func details(err error) string {
	if os.Getenv("ENVIRONMENT") == "production" {
		return ""
	}

	return err.Error()
}
