package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// Origins is the parsed CORS_ALLOWED_ORIGINS value.
type Origins struct {
	any bool
	set map[string]bool
}

// ParseOrigins reads a comma-separated origin list. An empty list or "*"
// admits every origin.
func ParseOrigins(s string) Origins {
	o := Origins{set: make(map[string]bool)}
	for _, origin := range strings.Split(s, ",") {
		origin = strings.TrimRight(strings.TrimSpace(origin), "/")
		switch origin {
		case "":
		case "*":
			o.any = true
		default:
			o.set[origin] = true
		}
	}
	if len(o.set) == 0 {
		o.any = true
	}
	return o
}

// allow returns the Access-Control-Allow-Origin value for origin, or "".
func (o Origins) allow(origin string) string {
	if o.any {
		return "*"
	}
	if origin != "" && o.set[origin] {
		return origin
	}
	return ""
}

// CORS answers preflights and tags responses for the configured origins.
// Listed origins are echoed back with Vary: Origin; X-User-ID is the only
// custom request header the dashboard sends.
func CORS(allowedOrigins string) gin.HandlerFunc {
	origins := ParseOrigins(allowedOrigins)
	return func(c *gin.Context) {
		if allow := origins.allow(c.GetHeader("Origin")); allow != "" {
			h := c.Writer.Header()
			h.Set("Access-Control-Allow-Origin", allow)
			if allow != "*" {
				h.Add("Vary", "Origin")
			}
			h.Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, OPTIONS")
			h.Set("Access-Control-Allow-Headers", "Content-Type, "+HeaderUserID)
			h.Set("Access-Control-Max-Age", "86400")
		}
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
