package middleware

import (
	"github.com/climatrix/climatrix/internal/logging"
	"github.com/climatrix/climatrix/internal/types"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const RequestIDHeader = "X-Request-ID"

// RequestID reuses an upstream X-Request-ID or generates one, and exposes
// it on the response and in the request context used for logging.
func RequestID() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		requestID := ctx.GetHeader(RequestIDHeader)
		if requestID == "" || len(requestID) > 128 {
			requestID = uuid.NewString()
		}

		ctx.Header(RequestIDHeader, requestID)
		ctx.Set(types.ContextRequestIDKey, requestID)
		ctx.Request = ctx.Request.WithContext(logging.ContextWithRequestID(ctx.Request.Context(), requestID))

		ctx.Next()
	}
}
