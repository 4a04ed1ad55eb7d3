package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Error kinds surfaced across the service/handler boundary.
const (
	KindUnauthorized  = "UNAUTHORIZED"
	KindForbidden     = "FORBIDDEN"
	KindNotFound      = "NOT_FOUND"
	KindConflict      = "CONFLICT"
	KindValidation    = "VALIDATION"
	KindDatabaseError = "DATABASE_ERROR"
)

// Response is the unified API response format.
type Response struct {
	Code    int         `json:"code"`
	Kind    string      `json:"kind,omitempty"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// AppError is a structured application error carrying an HTTP status and
// one of the error kinds above. Services raise it at the point of
// detection; handlers translate it into the response envelope.
type AppError struct {
	HTTPStatus int
	Kind       string
	Message    string
}

func (e *AppError) Error() string {
	return e.Message
}

// Error constructors, one per kind.

func NewValidation(msg string) *AppError {
	return &AppError{HTTPStatus: http.StatusBadRequest, Kind: KindValidation, Message: msg}
}

func NewUnauthorized(msg string) *AppError {
	return &AppError{HTTPStatus: http.StatusUnauthorized, Kind: KindUnauthorized, Message: msg}
}

func NewForbidden(msg string) *AppError {
	return &AppError{HTTPStatus: http.StatusForbidden, Kind: KindForbidden, Message: msg}
}

func NewNotFound(msg string) *AppError {
	return &AppError{HTTPStatus: http.StatusNotFound, Kind: KindNotFound, Message: msg}
}

func NewConflict(msg string) *AppError {
	return &AppError{HTTPStatus: http.StatusConflict, Kind: KindConflict, Message: msg}
}

func NewDatabaseError(msg string) *AppError {
	return &AppError{HTTPStatus: http.StatusInternalServerError, Kind: KindDatabaseError, Message: msg}
}

// AsAppError normalizes any error into an *AppError. Errors that are not
// already an AppError are treated as unexpected store failures.
func AsAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return NewDatabaseError(err.Error())
}

// IsKind reports whether err is an *AppError of the given kind.
func IsKind(err error, kind string) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Kind == kind
}

// --- Gin response helpers ---

// Success sends a 200 OK response with data.
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    0,
		Message: "ok",
		Data:    data,
	})
}

// Created sends a 201 Created response with data.
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{
		Code:    0,
		Message: "created",
		Data:    data,
	})
}

// Error sends an error response. Any error that is not an *AppError is
// reported as a DATABASE_ERROR; authorization failures always arrive here
// as a distinguishable kind, never as a generic false/nil.
func Error(c *gin.Context, err error) {
	appErr := AsAppError(err)
	c.JSON(appErr.HTTPStatus, Response{
		Code:    appErr.HTTPStatus,
		Kind:    appErr.Kind,
		Message: appErr.Message,
	})
}

// Convenience error response functions

func BadRequest(c *gin.Context, msg string) {
	Error(c, NewValidation(msg))
}

func Unauthorized(c *gin.Context, msg string) {
	Error(c, NewUnauthorized(msg))
}

func Forbidden(c *gin.Context, msg string) {
	Error(c, NewForbidden(msg))
}

func NotFound(c *gin.Context, msg string) {
	Error(c, NewNotFound(msg))
}

func ServerError(c *gin.Context, msg string) {
	Error(c, NewDatabaseError(msg))
}
