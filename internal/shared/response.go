package shared

import (
	"errors"
	"net/http"

	"gullak/internal/apperr"

	"github.com/gin-gonic/gin"
)

// SuccessResponse represents a successful response with data
type SuccessResponse[T any] struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
	Data    T      `json:"data,omitempty"`
}

// ErrorResponse is the JSON body returned for failed requests.
type ErrorResponse struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// RespondWithSuccess writes a success envelope.
func RespondWithSuccess(c *gin.Context, status int, message string, data any) {
	c.JSON(status, SuccessResponse[any]{
		Status:  status,
		Message: message,
		Data:    data,
	})
}

// RespondWithError writes a generic error envelope.
func RespondWithError(c *gin.Context, status int, message string) {
	c.JSON(status, ErrorResponse{
		Status:  status,
		Code:    "INTERNAL_ERROR",
		Message: message,
	})
}

// RespondWithAppError maps an application error onto its HTTP surface.
// Kinds that are never meant to reach a caller come out as 500 with a
// generic message so internals do not leak.
func RespondWithAppError(c *gin.Context, err error) {
	var appErr *apperr.Error
	if !errors.As(err, &appErr) {
		RespondWithError(c, http.StatusInternalServerError, "internal server error")
		return
	}
	status := appErr.StatusCode()
	message := appErr.Message
	if status == http.StatusInternalServerError {
		message = "internal server error"
	}
	c.JSON(status, ErrorResponse{
		Status:  status,
		Code:    string(appErr.Kind),
		Message: message,
	})
}
