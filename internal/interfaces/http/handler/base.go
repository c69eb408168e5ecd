package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/erp/accounting/internal/domain/shared"
	"github.com/erp/accounting/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// Concurrency protocol headers
const (
	ETagHeader    = "ETag"
	IfMatchHeader = "If-Match"
)

// RequestIDKey is the context key for request ID
const RequestIDKey = "request_id"

// BaseHandler provides common handler utilities
type BaseHandler struct{}

// getRequestID extracts the request ID from the context
func getRequestID(c *gin.Context) string {
	if id := c.GetString(RequestIDKey); id != "" {
		return id
	}
	if id := c.GetHeader("X-Request-ID"); id != "" {
		return id
	}
	return ""
}

// SetETag writes the entity's row version as a quoted ETag header
func (h *BaseHandler) SetETag(c *gin.Context, token string) {
	c.Header(ETagHeader, `"`+token+`"`)
}

// RequireIfMatch reads and decodes the If-Match header. A missing header and
// an undecodable token are both client errors, not conflicts: the request
// never names a version to compare against. Responds 400 and returns false
// in either case.
func (h *BaseHandler) RequireIfMatch(c *gin.Context) (shared.RowVersion, bool) {
	raw := c.GetHeader(IfMatchHeader)
	if raw == "" {
		h.Error(c, http.StatusBadRequest, dto.ErrCodePreconditionRequired, "If-Match header is required")
		return nil, false
	}

	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(raw, "W/")
	raw = strings.Trim(raw, `"`)

	token, err := shared.DecodeRowVersion(raw)
	if err != nil {
		h.Error(c, http.StatusBadRequest, dto.ErrCodePreconditionMalformed, "If-Match header is not a valid row version token")
		return nil, false
	}
	return token, true
}

// Success sends a success response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// SuccessWithMeta sends a success response with pagination meta
func (h *BaseHandler) SuccessWithMeta(c *gin.Context, data any, total int64, page, pageSize int) {
	c.JSON(http.StatusOK, dto.NewSuccessResponseWithMeta(data, total, page, pageSize))
}

// Created sends a 201 created response
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

// NoContent sends a 204 no content response
func (h *BaseHandler) NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Error sends an error response with the appropriate status code
func (h *BaseHandler) Error(c *gin.Context, statusCode int, code, message string) {
	requestID := getRequestID(c)
	c.JSON(statusCode, dto.NewErrorResponseWithRequestID(code, message, requestID))
}

// BadRequest sends a 400 bad request response
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	h.Error(c, http.StatusBadRequest, dto.ErrCodeBadRequest, message)
}

// NotFound sends a 404 not found response
func (h *BaseHandler) NotFound(c *gin.Context, message string) {
	h.Error(c, http.StatusNotFound, dto.ErrCodeNotFound, message)
}

// InternalError sends a 500 internal server error response
func (h *BaseHandler) InternalError(c *gin.Context, message string) {
	h.Error(c, http.StatusInternalServerError, dto.ErrCodeInternal, message)
}

// HandleDomainError converts domain errors to HTTP responses. A stale row
// version answers 409 and echoes the currently stored token in the ETag
// header so the client can refresh without a second read.
func (h *BaseHandler) HandleDomainError(c *gin.Context, err error) {
	requestID := getRequestID(c)

	var conflictErr *shared.ConflictError
	if errors.As(err, &conflictErr) {
		h.SetETag(c, conflictErr.Current.Encode())
		resp := dto.NewErrorResponseWithRequestID(
			dto.ErrCodeConcurrencyConflict, conflictErr.Error(), requestID)
		resp.Error.Details = dto.ConflictDetails{
			Resource:           conflictErr.Resource,
			ID:                 conflictErr.ID.String(),
			ExpectedRowVersion: conflictErr.Expected.Encode(),
			CurrentRowVersion:  conflictErr.Current.Encode(),
		}
		c.JSON(http.StatusConflict, resp)
		return
	}

	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		code := dto.NormalizeErrorCode(domainErr.Code)
		statusCode := dto.GetHTTPStatus(code)
		c.JSON(statusCode, dto.NewErrorResponseWithRequestID(code, domainErr.Message, requestID))
		return
	}

	h.InternalError(c, "An unexpected error occurred")
}
