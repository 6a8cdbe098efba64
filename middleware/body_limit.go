package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// MaxBodySize chặn body lớn hơn n bytes trước khi gin parse multipart
func MaxBodySize(n int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if n > 0 && c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, n)
		}
		c.Next()
	}
}
