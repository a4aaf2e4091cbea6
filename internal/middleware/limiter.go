package middleware

import (
	"github.com/haierkeys/offline-note-sync-service/pkg/app"
	"github.com/haierkeys/offline-note-sync-service/pkg/code"
	"github.com/haierkeys/offline-note-sync-service/pkg/limiter"

	"github.com/gin-gonic/gin"
)

// RateLimiter rejects requests once the route's token bucket is empty.
func RateLimiter(l limiter.LimiterIface) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := l.Key(c)
		if bucket, ok := l.GetBucket(key); ok {
			count := bucket.TakeAvailable(1)
			if count == 0 {
				app.NewResponse(c).ToResponse(code.ErrorTooManyRequests)
				c.Abort()
				return
			}
		}

		c.Next()
	}
}
