package middleware

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/wozzarvl/InterfazInAction/internal/interfaces/http/dto"
)

// BodyLimit caps inbound payloads at maxBytes. A declared Content-Length over
// the cap is rejected up front; bodies of unknown length fail on read with
// *http.MaxBytesError.
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	msg := fmt.Sprintf("Request body exceeds the %d byte limit", maxBytes)
	return func(c *gin.Context) {
		if c.Request.ContentLength <= maxBytes {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
			c.Next()
			return
		}
		c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge,
			dto.Failure(dto.ErrCodeRequestTooLarge, msg, GetRequestID(c)))
	}
}
