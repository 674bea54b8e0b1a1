package errors

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ErrorResponse is the structured error payload.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Kind    Kind      `json:"kind"`
	Message string    `json:"message"`
	Error   string    `json:"error,omitempty"`
}

// SuccessResponse wraps successful payloads that have no envelope of their own.
type SuccessResponse struct {
	Code    int         `json:"code"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

var errorStatusMap = map[ErrorCode]int{
	ErrInternal: http.StatusInternalServerError,
	ErrDatabase: http.StatusInternalServerError,
	ErrTimeout:  http.StatusGatewayTimeout,

	ErrUnauthorized: http.StatusUnauthorized,
	ErrForbidden:    http.StatusForbidden,
	ErrInvalidToken: http.StatusUnauthorized,

	ErrBadRequest:       http.StatusBadRequest,
	ErrValidation:       http.StatusBadRequest,
	ErrPrecondition:     http.StatusBadRequest,
	ErrResourceNotFound: http.StatusNotFound,

	ErrPostNotFound:        http.StatusNotFound,
	ErrUpstreamUnavailable: http.StatusBadGateway,
	ErrCredential:          http.StatusInternalServerError,
}

// StatusOf returns the HTTP status for a code.
func StatusOf(code ErrorCode) int {
	if status, ok := errorStatusMap[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// HandleError writes the error payload and records err on the context so
// the error monitor sees it.
func HandleError(c *gin.Context, err error) {
	_ = c.Error(err)

	if appErr, ok := As(err); ok {
		resp := ErrorResponse{
			Code:    appErr.Code,
			Kind:    appErr.Code.Kind(),
			Message: appErr.Message,
		}
		if appErr.Err != nil {
			resp.Error = appErr.Err.Error()
		}
		c.JSON(StatusOf(appErr.Code), resp)
		return
	}

	c.JSON(http.StatusInternalServerError, ErrorResponse{
		Code:    ErrInternal,
		Kind:    KindInternal,
		Message: "Internal Server Error",
		Error:   err.Error(),
	})
}

// HandleSuccess writes a 200 response.
func HandleSuccess(c *gin.Context, data interface{}, message string) {
	c.JSON(http.StatusOK, SuccessResponse{
		Code:    http.StatusOK,
		Message: message,
		Data:    data,
	})
}
