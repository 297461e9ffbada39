package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	resp "github.com/JasjusSirsak/bolususu/internal/transport/http/response"
)

// MaxBodyBytes caps the request body. Handlers that hit the limit while
// binding get a 413 unless they already answered.
func MaxBodyBytes(n int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, n)
		c.Next()
		if c.Writer.Written() {
			return
		}
		if last := c.Errors.Last(); last != nil && IsBodyTooLarge(last.Err) {
			resp.Abort(c, resp.CodeTooLarge, "request body too large")
		}
	}
}

// IsBodyTooLarge reports whether err came from the MaxBodyBytes reader.
func IsBodyTooLarge(err error) bool {
	if err == nil {
		return false
	}
	var mbe *http.MaxBytesError
	return errors.As(err, &mbe)
}
