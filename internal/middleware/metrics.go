package middleware

import (
	"strconv"
	"time"

	"github.com/climatrix/climatrix/internal/metrics"
	"github.com/gin-gonic/gin"
)

// Metrics records request counts and latency labelled by route template.
func Metrics() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		start := time.Now()
		ctx.Next()

		route := ctx.FullPath()
		if route == "" {
			route = "unmatched"
		}

		metrics.RecordHTTPRequest(ctx.Request.Method, route, strconv.Itoa(ctx.Writer.Status()), time.Since(start))
	}
}
