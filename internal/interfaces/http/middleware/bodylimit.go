package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nvictorme/nikola-sub002/internal/interfaces/http/dto"
)

// BodyLimit rejects requests whose declared size exceeds maxBytes and caps
// the body reader for the rest
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxBytes {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, dto.NewErrorResponseWithRequestID(
				dto.ErrCodePayloadTooLarge,
				"Request body exceeds maximum allowed size",
				GetRequestID(c),
			))
			return
		}

		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}
