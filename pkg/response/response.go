package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	pkgerrors "github.com/abygeorge8848/VolunteeringPortal/pkg/errors"
)

// Response envelope for every JSON reply
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Details string      `json:"details,omitempty"`
}

// Pagination page metadata
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

// PageData paged list payload
type PageData struct {
	List       interface{} `json:"list"`
	Pagination Pagination  `json:"pagination"`
}

// Generic codes
const (
	CodeOK                 = 0
	CodeInvalidParams      = 10001
	CodeUnauthenticated    = 10002
	CodeForbidden          = 10003
	CodeTooManyRequests    = 10004
	CodeBodyTooLarge       = 10005
	CodeNotFound           = 10006
	CodeConstraint         = 10009
	CodeInternal           = 50000
	CodeServiceUnavailable = 50300
)

// ── success ──

// OK 200
func OK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    CodeOK,
		Message: "success",
		Data:    data,
	})
}

// OKMessage 200 with a custom message
func OKMessage(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    CodeOK,
		Message: message,
		Data:    data,
	})
}

// Created 201
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{
		Code:    CodeOK,
		Message: "success",
		Data:    data,
	})
}

// OKPage 200 with pagination
func OKPage(c *gin.Context, list interface{}, total int64, page, pageSize int) {
	totalPages := 0
	if pageSize > 0 {
		totalPages = int(total) / pageSize
		if int(total)%pageSize > 0 {
			totalPages++
		}
	}
	c.JSON(http.StatusOK, Response{
		Code:    CodeOK,
		Message: "success",
		Data: PageData{
			List: list,
			Pagination: Pagination{
				Page:       page,
				PageSize:   pageSize,
				Total:      total,
				TotalPages: totalPages,
			},
		},
	})
}

// ── errors ──

// Error generic error reply
func Error(c *gin.Context, httpStatus int, code int, message string) {
	c.JSON(httpStatus, Response{
		Code:    code,
		Message: message,
	})
}

// ErrorWithDetails error reply with details
func ErrorWithDetails(c *gin.Context, httpStatus int, code int, message, details string) {
	c.JSON(httpStatus, Response{
		Code:    code,
		Message: message,
		Details: details,
	})
}

// BadRequest 400
func BadRequest(c *gin.Context, code int, message string) {
	Error(c, http.StatusBadRequest, code, message)
}

// Unauthorized 401
func Unauthorized(c *gin.Context, code int, message string) {
	Error(c, http.StatusUnauthorized, code, message)
}

// Forbidden 403
func Forbidden(c *gin.Context, code int, message string) {
	Error(c, http.StatusForbidden, code, message)
}

// NotFound 404
func NotFound(c *gin.Context, code int, message string) {
	Error(c, http.StatusNotFound, code, message)
}

// Conflict 409
func Conflict(c *gin.Context, code int, message string) {
	Error(c, http.StatusConflict, code, message)
}

// InternalError 500
func InternalError(c *gin.Context) {
	Error(c, http.StatusInternalServerError, CodeInternal, "internal server error")
}

// ServiceUnavailable 503
func ServiceUnavailable(c *gin.Context) {
	Error(c, http.StatusServiceUnavailable, CodeServiceUnavailable, "database unavailable, please retry later")
}

// FromError replies according to the error kind. Used after a handler has
// matched its own sentinel errors.
func FromError(c *gin.Context, err error) {
	switch pkgerrors.Classify(err) {
	case pkgerrors.KindNotFound:
		NotFound(c, CodeNotFound, "record not found")
	case pkgerrors.KindConstraint:
		Conflict(c, CodeConstraint, "request conflicts with existing data")
	case pkgerrors.KindConnectivity:
		ServiceUnavailable(c)
	default:
		InternalError(c)
	}
}
