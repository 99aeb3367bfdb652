package utils

import (
	"github.com/climatrix/climatrix/internal/apperr"
	"github.com/climatrix/climatrix/internal/middleware"
	"github.com/gin-gonic/gin"
)

func GetCurrentUser(ctx *gin.Context) (middleware.Identity, error) {
	identity, ok := middleware.GetIdentity(ctx)
	if !ok {
		return middleware.Identity{}, apperr.Unauthorized()
	}

	return identity, nil
}

func GetCurrentUserID(ctx *gin.Context) (string, error) {
	identity, err := GetCurrentUser(ctx)
	if err != nil {
		return "", err
	}

	return identity.UserID, nil
}
