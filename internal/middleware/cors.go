package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	corsMetodos = "GET, POST, PUT, PATCH, OPTIONS"
	corsHeaders = "Authorization, Content-Type, " + RequestIDHeader + ", " + PostoHeader
)

// CORS answers browser preflights for the admin panel. With no origins
// configured every origin is accepted; otherwise only listed origins get
// the allow headers. The mobile app sends no Origin and is unaffected.
func CORS(origens []string) gin.HandlerFunc {
	permitidas := make(map[string]bool, len(origens))
	for _, o := range origens {
		if o = strings.TrimSpace(o); o != "" {
			permitidas[o] = true
		}
	}
	return func(c *gin.Context) {
		origem := c.GetHeader("Origin")
		switch {
		case len(permitidas) == 0:
			c.Header("Access-Control-Allow-Origin", "*")
		case permitidas[origem]:
			c.Header("Access-Control-Allow-Origin", origem)
			c.Header("Vary", "Origin")
		default:
			if c.Request.Method == http.MethodOptions {
				c.AbortWithStatus(http.StatusForbidden)
				return
			}
			c.Next()
			return
		}
		c.Header("Access-Control-Allow-Methods", corsMetodos)
		c.Header("Access-Control-Allow-Headers", corsHeaders)
		c.Header("Access-Control-Expose-Headers", RequestIDHeader)
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
