package handlers

import (
	"net/http"

	"github.com/climatrix/climatrix/internal/models"
	"github.com/climatrix/climatrix/internal/store"
	"github.com/climatrix/climatrix/internal/utils"
	"github.com/climatrix/climatrix/internal/validation"
	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"
)

type UpdateProfileRequest struct {
	FirstName    *string  `json:"firstName" binding:"omitempty,min=1,max=50"`
	LastName     *string  `json:"lastName" binding:"omitempty,min=1,max=50"`
	Bio          *string  `json:"bio" binding:"omitempty,max=500"`
	Website      *string  `json:"website" binding:"omitempty,url"`
	Twitter      *string  `json:"twitter" binding:"omitempty,max=100"`
	Linkedin     *string  `json:"linkedin" binding:"omitempty,max=200"`
	Phone        *string  `json:"phone" binding:"omitempty,max=30"`
	Organization *string  `json:"organization" binding:"omitempty,max=100"`
	Interests    []string `json:"interests" binding:"omitempty,max=20,dive,min=1,max=50"`
	City         *string  `json:"city"`
	State        *string  `json:"state"`
	Country      *string  `json:"country"`
}

// ProfileResponse is the caller's user row with profile and activity counts.
type ProfileResponse struct {
	*models.User
	Count store.UserCounts `json:"_count"`
}

func (h *Handler) GetProfile(ctx *gin.Context) error {
	userID, err := utils.GetCurrentUserID(ctx)
	if err != nil {
		return err
	}

	user, err := h.store.FindUser(ctx.Request.Context(), userID)
	if err != nil {
		return notFound(err, "User not found")
	}

	return h.respondProfile(ctx, user, "")
}

func (h *Handler) UpdateProfile(ctx *gin.Context) error {
	userID, err := utils.GetCurrentUserID(ctx)
	if err != nil {
		return err
	}

	var req UpdateProfileRequest
	if err := validation.BindJSON(ctx, &req); err != nil {
		return err
	}

	userFields := map[string]interface{}{}
	setIf(userFields, "first_name", req.FirstName)
	setIf(userFields, "last_name", req.LastName)
	setIf(userFields, "city", req.City)
	setIf(userFields, "state", req.State)
	setIf(userFields, "country", req.Country)

	profileFields := map[string]interface{}{}
	setIf(profileFields, "bio", req.Bio)
	setIf(profileFields, "website", req.Website)
	setIf(profileFields, "twitter", req.Twitter)
	setIf(profileFields, "linkedin", req.Linkedin)
	setIf(profileFields, "phone", req.Phone)
	setIf(profileFields, "organization", req.Organization)
	if req.Interests != nil {
		profileFields["interests"] = datatypes.JSONSlice[string](req.Interests)
	}

	user, err := h.store.UpdateProfile(ctx.Request.Context(), userID, userFields, profileFields)
	if err != nil {
		return notFound(err, "User not found")
	}

	return h.respondProfile(ctx, user, "Profile updated successfully")
}

func (h *Handler) respondProfile(ctx *gin.Context, user *models.User, message string) error {
	counts, err := h.store.CountUserActivity(ctx.Request.Context(), user.ID)
	if err != nil {
		return err
	}

	return respond(ctx, http.StatusOK, ProfileResponse{User: user, Count: counts}, message)
}

func setIf(fields map[string]interface{}, column string, value *string) {
	if value != nil {
		fields[column] = *value
	}
}
