package middleware

import (
	"github.com/haierkeys/offline-note-sync-service/pkg/app"
	"github.com/haierkeys/offline-note-sync-service/pkg/code"

	"github.com/gin-gonic/gin"
)

// NoFound answers unrouted paths with the unified envelope.
func NoFound() gin.HandlerFunc {
	return func(c *gin.Context) {
		app.NewResponse(c).ToResponse(code.ErrorNotFound)
		c.Abort()
	}
}
