package handler

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/wozzarvl/InterfazInAction/internal/domain/shared"
	"github.com/wozzarvl/InterfazInAction/internal/infrastructure/logger"
	"github.com/wozzarvl/InterfazInAction/internal/interfaces/http/dto"
	"github.com/wozzarvl/InterfazInAction/internal/interfaces/http/middleware"
	"go.uber.org/zap"
)

const unexpectedErrorMessage = "An unexpected error occurred"

// BaseHandler writes the response envelope for the handlers embedding it
type BaseHandler struct{}

// Success replies 200 with data
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.Success(data))
}

// Error replies with a failed envelope carrying the request ID
func (h *BaseHandler) Error(c *gin.Context, status int, code, message string) {
	c.JSON(status, dto.Failure(code, message, middleware.GetRequestID(c)))
}

// ReadBody returns the raw request body. On an oversized, unreadable or
// blank body it writes the error reply and returns false.
func (h *BaseHandler) ReadBody(c *gin.Context) (string, bool) {
	raw, err := io.ReadAll(c.Request.Body)
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		h.Error(c, http.StatusRequestEntityTooLarge, dto.ErrCodeRequestTooLarge,
			"Request body exceeds maximum allowed size")
		return "", false
	case err != nil:
		h.Error(c, http.StatusBadRequest, dto.ErrCodeBadRequest, "Failed to read request body")
		return "", false
	}

	body := string(raw)
	if strings.TrimSpace(body) == "" {
		h.Error(c, http.StatusBadRequest, dto.ErrCodeBadRequest, "XML body is required")
		return "", false
	}
	return body, true
}

// HandleError replies with the status of a domain error code and its message
// verbatim, SQL errors included. Anything else is a 500 with a generic message.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)

	var domainErr *shared.DomainError
	if !errors.As(err, &domainErr) {
		logger.GetGinLogger(c).Error("Unhandled error", zap.Error(err))
		h.Error(c, http.StatusInternalServerError, dto.ErrCodeInternal, unexpectedErrorMessage)
		return
	}

	code, status := dto.ResolveDomainError(domainErr.Code)
	if status >= http.StatusInternalServerError {
		logger.GetGinLogger(c).Error("Mapping request failed", zap.String("code", code), zap.Error(err))
	}
	h.Error(c, status, code, domainErr.Message)
}
