package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/climatrix/climatrix/internal/apperr"
	"github.com/climatrix/climatrix/internal/cache"
	"github.com/climatrix/climatrix/internal/models"
	"github.com/climatrix/climatrix/internal/store"
	"github.com/climatrix/climatrix/internal/types"
	"github.com/climatrix/climatrix/internal/utils"
	"github.com/climatrix/climatrix/internal/validation"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const msgGroupExists = "A group with this name already exists"

type ListGroupsQuery struct {
	City     string `form:"city"`
	Category string `form:"category"`
	Page     int    `form:"page,default=1" binding:"min=1"`
	Limit    int    `form:"limit,default=20" binding:"min=1,max=50"`
}

type CreateGroupRequest struct {
	Name        string `json:"name" binding:"required,min=3,max=100"`
	Description string `json:"description" binding:"required,min=10,max=1000"`
	City        string `json:"city"`
	State       string `json:"state"`
	Country     string `json:"country"`
	Category    string `json:"category" binding:"max=50"`
	IsPublic    *bool  `json:"isPublic"`
}

func (h *Handler) ListGroups(ctx *gin.Context) error {
	var q ListGroupsQuery
	if err := validation.BindQuery(ctx, &q); err != nil {
		return err
	}

	key := cache.GroupListKey(q.City, q.Category, q.Page, q.Limit)
	data, hit, err := cache.ReadThrough(ctx.Request.Context(), h.cache, key, cache.Medium,
		func(c context.Context) (gin.H, error) {
			groups, total, err := h.store.ListGroups(c, store.GroupFilter{
				City:     q.City,
				Category: q.Category,
				Page:     store.Page{Page: q.Page, Limit: q.Limit},
			})
			if err != nil {
				return nil, err
			}
			return listPayload("groups", groups, types.NewMeta(total, q.Page, q.Limit)), nil
		})
	if err != nil {
		return err
	}

	return respondCached(ctx, data, hit)
}

// CreateGroup creates a group with the caller as its admin. The slug is
// derived from the name and must be unique.
func (h *Handler) CreateGroup(ctx *gin.Context) error {
	userID, err := utils.GetCurrentUserID(ctx)
	if err != nil {
		return err
	}

	var req CreateGroupRequest
	if err := validation.BindJSON(ctx, &req); err != nil {
		return err
	}

	slug := utils.Slugify(req.Name)
	if slug == "" {
		return fieldError("name", "name must contain letters or numbers")
	}

	taken, err := h.store.GroupSlugTaken(ctx.Request.Context(), slug)
	if err != nil {
		return err
	}
	if taken {
		return apperr.Conflict(msgGroupExists)
	}

	isPublic := true
	if req.IsPublic != nil {
		isPublic = *req.IsPublic
	}

	group := &models.Group{
		Name:        req.Name,
		Slug:        slug,
		Description: req.Description,
		City:        req.City,
		State:       req.State,
		Country:     req.Country,
		Category:    req.Category,
		IsPublic:    isPublic,
		CreatedByID: userID,
	}

	if err := h.store.CreateGroup(ctx.Request.Context(), group); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return apperr.Conflict(msgGroupExists)
		}
		return err
	}

	h.cache.Invalidate(ctx.Request.Context(), cache.ResourceGroups)

	return respond(ctx, http.StatusCreated, group, "Group created successfully")
}

func (h *Handler) JoinGroup(ctx *gin.Context) error {
	userID, err := utils.GetCurrentUserID(ctx)
	if err != nil {
		return err
	}

	groupID, err := utils.GetIDParam(ctx, "id", "Group")
	if err != nil {
		return err
	}

	if _, err := h.store.FindGroup(ctx.Request.Context(), groupID); err != nil {
		return notFound(err, "Group not found")
	}

	member, err := h.store.AddGroupMember(ctx.Request.Context(), groupID, userID)
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return apperr.Conflict("You are already a member of this group")
	}
	if err != nil {
		return err
	}

	h.cache.Invalidate(ctx.Request.Context(), cache.ResourceGroups, groupID)

	return respond(ctx, http.StatusCreated, member, "Joined group successfully")
}
