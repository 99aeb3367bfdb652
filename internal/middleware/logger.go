package middleware

import (
	"time"

	"github.com/climatrix/climatrix/internal/logging"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// Logger writes one structured line per request.
func Logger() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		start := time.Now()
		ctx.Next()

		status := ctx.Writer.Status()
		level := zerolog.InfoLevel
		switch {
		case status >= 500:
			level = zerolog.ErrorLevel
		case status >= 400:
			level = zerolog.WarnLevel
		}

		event := logging.Ctx(ctx.Request.Context()).WithLevel(level).
			Str("method", ctx.Request.Method).
			Str("path", ctx.Request.URL.Path).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Str("client_ip", ctx.ClientIP()).
			Int("bytes", ctx.Writer.Size())

		if identity, ok := GetIdentity(ctx); ok {
			event = event.Str("user_id", identity.UserID)
		}
		if cache := ctx.Writer.Header().Get("X-Cache"); cache != "" {
			event = event.Str("cache", cache)
		}

		event.Msg("Request handled")
	}
}
