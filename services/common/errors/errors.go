package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
	"github.com/gin-gonic/gin"

	"github.com/ElenaCherpakova/e-store-aws-backend/services/common/response"
)

// Error represents an application error
type Error struct {
	Code    int    `json:"-"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches errors that share code and message, so wrapped copies of the
// common values below still compare equal.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code && e.Message == t.Message
}

// Wrap returns a copy of e carrying err as its cause.
func (e *Error) Wrap(err error) *Error {
	return &Error{Code: e.Code, Message: e.Message, Err: err}
}

// New creates a new Error
func New(code int, message string, err error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common error types
var (
	ErrNotFound       = New(http.StatusNotFound, "Not found", nil)
	ErrInternalServer = New(http.StatusInternalServerError, "Internal error", nil)
)

// Catalog error types
var (
	ErrInvalidRecord   = New(http.StatusBadRequest, "Invalid catalog record", nil)
	ErrProductNotFound = New(http.StatusNotFound, "Product not found", nil)
)

// FromError converts any error into an *Error. Unknown errors become
// ErrInternalServer wrapping the original.
func FromError(err error) *Error {
	var appErr *Error
	if stderrors.As(err, &appErr) {
		return appErr
	}
	return ErrInternalServer.Wrap(err)
}

// Response renders err as an API Gateway proxy response.
func Response(err error) events.APIGatewayProxyResponse {
	appErr := FromError(err)
	return response.Message(appErr.Code, appErr.Message)
}

// ErrorMiddleware renders the last error attached to the gin context.
func ErrorMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) > 0 {
			appErr := FromError(c.Errors.Last().Err)
			c.AbortWithStatusJSON(appErr.Code, appErr)
		}
	}
}
