package middleware

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

const (
	PostoKey    = "posto_id"
	PostoHeader = "X-Posto-ID"
)

// PostoContext reads the selected station from the X-Posto-ID header, or the
// posto_id query parameter, into the request context. Missing or invalid
// values leave the context unset; handlers answer those requests with
// empty results instead of errors.
func PostoContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.GetHeader(PostoHeader)
		if raw == "" {
			raw = c.Query("posto_id")
		}
		if id, err := strconv.ParseInt(raw, 10, 64); err == nil && id > 0 {
			c.Set(PostoKey, id)
		}
		c.Next()
	}
}

// GetPostoID returns the station selected for this request.
func GetPostoID(c *gin.Context) (int64, bool) {
	v, ok := c.Get(PostoKey)
	if !ok {
		return 0, false
	}
	id, ok := v.(int64)
	return id, ok
}
