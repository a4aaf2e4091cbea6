package middleware

import (
	"github.com/gin-gonic/gin"
)

// AppInfo stashes the service identity on the request context so handlers
// and logs can report which build served a request.
func AppInfo(name, version string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("app_name", name)
		c.Set("app_version", version)

		c.Next()
	}
}
