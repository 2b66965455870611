package cors

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Allowed method lists per endpoint.
const (
	UploadMethods = "POST, OPTIONS"
	ReadMethods   = "GET, OPTIONS"
)

// Headers returns the permissive cross-origin headers sent on every response.
func Headers(methods string) map[string]string {
	return map[string]string{
		"Content-Type":                 "application/json",
		"Access-Control-Allow-Origin":  "*",
		"Access-Control-Allow-Headers": "Content-Type",
		"Access-Control-Allow-Methods": methods,
	}
}

// Middleware sets Headers on the response before the handler runs.
func Middleware(methods string) gin.HandlerFunc {
	headers := Headers(methods)
	return func(c *gin.Context) {
		for k, v := range headers {
			if k == "Content-Type" {
				continue
			}
			c.Header(k, v)
		}
		c.Next()
	}
}

// Preflight answers OPTIONS requests.
func Preflight(c *gin.Context) {
	c.Status(http.StatusNoContent)
}
