package middleware

import (
	"fmt"
	"runtime/debug"

	"github.com/haierkeys/offline-note-sync-service/pkg/app"
	"github.com/haierkeys/offline-note-sync-service/pkg/code"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RecoveryWithLogger converts panics into a 500 response and logs the stack.
func RecoveryWithLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery
		defer func() {
			if err := recover(); err != nil {
				var errorMsg string
				switch v := err.(type) {
				case error:
					errorMsg = v.Error()
					logger.Error("Recovered from panic",
						zap.Int("status", c.Writer.Status()),
						zap.String("router", path),
						zap.String("method", c.Request.Method),
						zap.String("query", query),
						zap.String("ip", c.ClientIP()),
						zap.String("user-agent", c.Request.UserAgent()),
						zap.String("trace-id", GetTraceIDFromGin(c)),
						zap.Error(v),
						zap.String("stack", string(debug.Stack())),
					)
				default:
					errorMsg = fmt.Sprintf("%v", err)
					logger.Error("Recovered from unknown panic",
						zap.Int("status", c.Writer.Status()),
						zap.String("router", path),
						zap.String("method", c.Request.Method),
						zap.String("query", query),
						zap.String("ip", c.ClientIP()),
						zap.String("user-agent", c.Request.UserAgent()),
						zap.String("trace-id", GetTraceIDFromGin(c)),
						zap.String("panic_value", errorMsg),
						zap.String("stack", string(debug.Stack())),
					)
				}

				app.NewResponse(c).ToResponse(code.ErrorServerInternal.WithDetails(errorMsg))
				c.Abort()
			}
		}()

		c.Next()
	}
}
