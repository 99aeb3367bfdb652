package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/climatrix/climatrix/internal/apperr"
	"github.com/climatrix/climatrix/internal/types"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const CacheHeader = "X-Cache"

// HandlerFunc is an endpoint that reports failure by returning an error.
type HandlerFunc func(ctx *gin.Context) error

// Wrap adapts fn to gin. Errors are rendered by apperr.Write, the one place
// where an error becomes a status code.
func Wrap(fn HandlerFunc) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if err := fn(ctx); err != nil {
			apperr.Write(ctx, err)
		}
	}
}

func respond(ctx *gin.Context, status int, data any, message string) error {
	ctx.JSON(status, types.Response{
		Success: true,
		Message: message,
		Data:    data,
	})
	return nil
}

// respondCached writes an already encoded payload. A hit and the miss that
// filled the cache produce the same body; only the X-Cache header differs.
func respondCached(ctx *gin.Context, data json.RawMessage, hit bool) error {
	if hit {
		ctx.Header(CacheHeader, "HIT")
	} else {
		ctx.Header(CacheHeader, "MISS")
	}
	return respond(ctx, http.StatusOK, data, "")
}

// listPayload is the body of every paginated listing.
func listPayload(key string, items any, meta types.Meta) gin.H {
	return gin.H{key: items, "meta": meta}
}

// notFound turns a missing row into a 404 with a resource specific title.
func notFound(err error, title string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound(title)
	}
	return err
}

func fieldError(field, message string) error {
	return apperr.Validation([]types.FieldError{{Field: field, Message: message}})
}
