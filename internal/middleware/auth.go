package middleware

import (
	"slices"
	"strings"

	"github.com/climatrix/climatrix/internal/apperr"
	"github.com/climatrix/climatrix/internal/auth"
	"github.com/climatrix/climatrix/internal/types"
	"github.com/gin-gonic/gin"
)

// Identity is the verified caller attached to the request context.
type Identity struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
	Role   string `json:"role"`
}

func (i Identity) HasRole(roles ...string) bool {
	return slices.Contains(roles, i.Role)
}

// Authenticate decodes the session token when one is sent. It never rejects
// the request; RequireAuth and RequireRole do that.
func Authenticate(tokens *auth.Service) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		tokenString := tokenFromRequest(ctx)
		if tokenString == "" || tokens == nil {
			ctx.Next()
			return
		}

		claims, err := tokens.Verify(tokenString)
		if err != nil {
			ctx.Next()
			return
		}

		ctx.Set(types.ContextIdentityKey, Identity{
			UserID: claims.UserID,
			Email:  claims.Email,
			Role:   claims.Role,
		})
		ctx.Next()
	}
}

func tokenFromRequest(ctx *gin.Context) string {
	if cookie, err := ctx.Cookie(types.AuthCookieName); err == nil && cookie != "" {
		return cookie
	}

	parts := strings.SplitN(ctx.GetHeader("Authorization"), " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return strings.TrimSpace(parts[1])
	}

	return ""
}

// GetIdentity returns the identity stored by Authenticate.
func GetIdentity(ctx *gin.Context) (Identity, bool) {
	value, exists := ctx.Get(types.ContextIdentityKey)
	if !exists {
		return Identity{}, false
	}

	identity, ok := value.(Identity)
	return identity, ok
}

func RequireAuth() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if _, ok := GetIdentity(ctx); !ok {
			apperr.Write(ctx, apperr.Unauthorized())
			return
		}
		ctx.Next()
	}
}

func RequireRole(roles ...string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		identity, ok := GetIdentity(ctx)
		if !ok {
			apperr.Write(ctx, apperr.Unauthorized())
			return
		}

		if !identity.HasRole(roles...) {
			apperr.Write(ctx, apperr.Forbidden("You do not have permission to perform this action"))
			return
		}
		ctx.Next()
	}
}
