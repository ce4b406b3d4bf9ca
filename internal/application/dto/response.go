// Package dto provides data transfer objects for the application layer.
package dto

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/jwtauth/pkg/constants"
	"github.com/turtacn/jwtauth/pkg/errors"
)

// APIResponse is the JSON envelope of every API response.
type APIResponse struct {
	Success   bool        `json:"success"`
	Data      interface{} `json:"data,omitempty"`
	Error     *ErrorDTO   `json:"error,omitempty"`
	RequestID string      `json:"request_id,omitempty"`
	Timestamp int64       `json:"timestamp"`
}

// ErrorDTO carries the stable error code clients switch on.
type ErrorDTO struct {
	Code        string            `json:"code"`
	Message     string            `json:"message"`
	Description string            `json:"description,omitempty"`
	Details     map[string]string `json:"details,omitempty"`
}

// SuccessResponse creates a success envelope.
func SuccessResponse(data interface{}, requestID string) *APIResponse {
	return &APIResponse{
		Success:   true,
		Data:      data,
		RequestID: requestID,
		Timestamp: time.Now().Unix(),
	}
}

// ErrorResponse creates an error envelope and picks its HTTP status. Errors without an
// AppError in their chain are reported as internal errors and their text is not exposed.
func ErrorResponse(err error, requestID string) (int, *APIResponse) {
	appErr, ok := errors.AsAppError(err)
	if !ok {
		appErr = errors.ErrInternalServer
	}

	status := appErr.HTTPStatus
	if status == 0 {
		status = http.StatusInternalServerError
	}

	return status, &APIResponse{
		Success: false,
		Error: &ErrorDTO{
			Code:        appErr.Code,
			Message:     appErr.Message,
			Description: appErr.Description,
			Details:     appErr.Details,
		},
		RequestID: requestID,
		Timestamp: time.Now().Unix(),
	}
}

// SendSuccess writes a success envelope.
func SendSuccess(c *gin.Context, status int, data interface{}) {
	c.JSON(status, SuccessResponse(data, c.GetString(constants.GinKeyRequestID)))
}

// SendError records err on the context and writes its envelope.
func SendError(c *gin.Context, err error) {
	_ = c.Error(err)
	status, body := ErrorResponse(err, c.GetString(constants.GinKeyRequestID))
	c.JSON(status, body)
}
