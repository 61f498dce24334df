package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/penline/core/internal/pkg/apperr"
)

const (
	msgUnauthorized = "Not authorized to access this route"
	msgForbidden    = "Not authorized to perform this action"
	msgNotFound     = "Resource not found"
	msgDuplicate    = "Duplicate field value entered."
	msgInternal     = "Server Error"
)

// Pagination metadata returned with paginated responses.
type Pagination struct {
	CurrentPage int   `json:"currentPage"`
	TotalPages  int   `json:"totalPages"`
	TotalItems  int64 `json:"totalItems"`
	Size        int   `json:"size"`
	HasNextPage bool  `json:"hasNextPage"`
}

// NewPagination derives page counts from a total.
func NewPagination(page, size int, total int64) Pagination {
	totalPages := 0
	if size > 0 {
		totalPages = int((total + int64(size) - 1) / int64(size))
	}
	return Pagination{
		CurrentPage: page,
		TotalPages:  totalPages,
		TotalItems:  total,
		Size:        size,
		HasNextPage: page < totalPages,
	}
}

type envelope struct {
	Success    bool        `json:"success"`
	Count      *int        `json:"count,omitempty"`
	Pagination *Pagination `json:"pagination,omitempty"`
	Data       interface{} `json:"data"`
}

type errorBody struct {
	Success bool                `json:"success"`
	Message string              `json:"message"`
	Errors  []apperr.FieldError `json:"errors,omitempty"`
}

// OK sends a 200 {success, data} response.
func OK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, envelope{Success: true, Data: data})
}

// List sends a 200 response carrying the item count.
func List[T any](c *gin.Context, items []T) {
	n := len(items)
	c.JSON(http.StatusOK, envelope{Success: true, Count: &n, Data: items})
}

// Paged sends a paginated list response.
func Paged[T any](c *gin.Context, items []T, pagination Pagination) {
	n := len(items)
	c.JSON(http.StatusOK, envelope{Success: true, Count: &n, Pagination: &pagination, Data: items})
}

// Created sends a 201 response.
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, envelope{Success: true, Data: data})
}

// Deleted sends the 200 {success, data: {}} acknowledgement.
func Deleted(c *gin.Context) {
	c.JSON(http.StatusOK, envelope{Success: true, Data: gin.H{}})
}

func abort(c *gin.Context, status int, message string, errs []apperr.FieldError) {
	c.AbortWithStatusJSON(status, errorBody{Success: false, Message: message, Errors: errs})
}

// BadRequest sends a 400 error response.
func BadRequest(c *gin.Context, message string) {
	abort(c, http.StatusBadRequest, message, nil)
}

// Unauthorized sends a 401 error response.
func Unauthorized(c *gin.Context) {
	abort(c, http.StatusUnauthorized, msgUnauthorized, nil)
}

// UnauthorizedMessage sends a 401 with a custom message.
func UnauthorizedMessage(c *gin.Context, message string) {
	abort(c, http.StatusUnauthorized, message, nil)
}

// Forbidden sends a 403 error response.
func Forbidden(c *gin.Context, message string) {
	if message == "" {
		message = msgForbidden
	}
	abort(c, http.StatusForbidden, message, nil)
}

// NotFound sends a 404 error response.
func NotFound(c *gin.Context, message string) {
	if message == "" {
		message = msgNotFound
	}
	abort(c, http.StatusNotFound, message, nil)
}

// MethodNotAllowed sends a 405 error response.
func MethodNotAllowed(c *gin.Context) {
	abort(c, http.StatusMethodNotAllowed, "Method not allowed", nil)
}

// TooManyRequests sends a 429 error response.
func TooManyRequests(c *gin.Context, message string) {
	abort(c, http.StatusTooManyRequests, message, nil)
}

// Conflict sends a 409 error response.
func Conflict(c *gin.Context, message string) {
	abort(c, http.StatusConflict, message, nil)
}

// InternalError sends a 500 response. The cause is attached to the gin
// context for the request logger and never shown to the client.
func InternalError(c *gin.Context, err error) {
	if err != nil {
		_ = c.Error(err)
	}
	abort(c, http.StatusInternalServerError, msgInternal, nil)
}

// Error maps the apperr taxonomy onto HTTP statuses.
func Error(c *gin.Context, err error) {
	var (
		verr *apperr.ValidationError
		nf   *apperr.NotFoundError
		auth *apperr.AuthorizationError
		dup  *apperr.DuplicateKeyError
	)
	switch {
	case errors.As(err, &verr):
		msg := verr.Message
		if msg == "" {
			msg = "Validation Error"
		}
		abort(c, http.StatusBadRequest, msg, verr.Fields)
	case errors.As(err, &nf):
		NotFound(c, capitalize(nf.Error()))
	case errors.As(err, &auth):
		Forbidden(c, auth.Message)
	case errors.As(err, &dup):
		BadRequest(c, msgDuplicate)
	default:
		InternalError(c, err)
	}
}

func capitalize(s string) string {
	if s == "" || s[0] < 'a' || s[0] > 'z' {
		return s
	}
	return string(s[0]-'a'+'A') + s[1:]
}
