package handlers

import (
	"context"
	"net/http"

	"github.com/climatrix/climatrix/internal/apperr"
	"github.com/climatrix/climatrix/internal/cache"
	"github.com/climatrix/climatrix/internal/models"
	"github.com/climatrix/climatrix/internal/store"
	"github.com/climatrix/climatrix/internal/types"
	"github.com/climatrix/climatrix/internal/utils"
	"github.com/climatrix/climatrix/internal/validation"
	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"
)

type ListPostsQuery struct {
	GroupID string `form:"groupId" binding:"omitempty,uuid"`
	Page    int    `form:"page,default=1" binding:"min=1"`
	Limit   int    `form:"limit,default=20" binding:"min=1,max=50"`
}

type CreatePostRequest struct {
	GroupID *string  `json:"groupId" binding:"omitempty,uuid"`
	Title   string   `json:"title" binding:"required,min=5,max=200"`
	Content string   `json:"content" binding:"required,min=10,max=10000"`
	Images  []string `json:"images" binding:"omitempty,max=10,dive,url"`
	Tags    []string `json:"tags" binding:"omitempty,max=10,dive,min=1,max=30"`
}

type ListCommentsQuery struct {
	Page  int `form:"page,default=1" binding:"min=1"`
	Limit int `form:"limit,default=50" binding:"min=1,max=100"`
}

type CreateCommentRequest struct {
	Content string `json:"content" binding:"required,min=1,max=2000"`
}

func (h *Handler) ListPosts(ctx *gin.Context) error {
	var q ListPostsQuery
	if err := validation.BindQuery(ctx, &q); err != nil {
		return err
	}

	key := cache.PostListKey(q.GroupID, q.Page, q.Limit)
	data, hit, err := cache.ReadThrough(ctx.Request.Context(), h.cache, key, cache.Short,
		func(c context.Context) (gin.H, error) {
			posts, total, err := h.store.ListPosts(c, q.GroupID, store.Page{Page: q.Page, Limit: q.Limit})
			if err != nil {
				return nil, err
			}
			return listPayload("posts", posts, types.NewMeta(total, q.Page, q.Limit)), nil
		})
	if err != nil {
		return err
	}

	return respondCached(ctx, data, hit)
}

// CreatePost publishes a post, optionally inside a group the caller
// belongs to.
func (h *Handler) CreatePost(ctx *gin.Context) error {
	userID, err := utils.GetCurrentUserID(ctx)
	if err != nil {
		return err
	}

	var req CreatePostRequest
	if err := validation.BindJSON(ctx, &req); err != nil {
		return err
	}

	if req.GroupID != nil {
		if _, err := h.store.FindGroup(ctx.Request.Context(), *req.GroupID); err != nil {
			return notFound(err, "Group not found")
		}

		member, err := h.store.IsGroupMember(ctx.Request.Context(), *req.GroupID, userID)
		if err != nil {
			return err
		}
		if !member {
			return apperr.Forbidden("You must be a member of this group to post")
		}
	}

	post := &models.Post{
		AuthorID: userID,
		GroupID:  req.GroupID,
		Title:    req.Title,
		Content:  req.Content,
		Images:   datatypes.JSONSlice[string](orEmpty(req.Images)),
		Tags:     datatypes.JSONSlice[string](orEmpty(req.Tags)),
	}

	if err := h.store.CreatePost(ctx.Request.Context(), post); err != nil {
		return err
	}

	h.cache.Invalidate(ctx.Request.Context(), cache.ResourcePosts)
	if post.GroupID != nil {
		h.cache.Invalidate(ctx.Request.Context(), cache.ResourceGroups)
	}

	return respond(ctx, http.StatusCreated, post, "Post created successfully")
}

func (h *Handler) ListComments(ctx *gin.Context) error {
	postID, err := utils.GetIDParam(ctx, "id", "Post")
	if err != nil {
		return err
	}

	var q ListCommentsQuery
	if err := validation.BindQuery(ctx, &q); err != nil {
		return err
	}

	if _, err := h.store.FindPost(ctx.Request.Context(), postID); err != nil {
		return notFound(err, "Post not found")
	}

	comments, total, err := h.store.ListComments(ctx.Request.Context(), postID, store.Page{Page: q.Page, Limit: q.Limit})
	if err != nil {
		return err
	}

	return respond(ctx, http.StatusOK, listPayload("comments", comments, types.NewMeta(total, q.Page, q.Limit)), "")
}

func (h *Handler) CreateComment(ctx *gin.Context) error {
	userID, err := utils.GetCurrentUserID(ctx)
	if err != nil {
		return err
	}

	postID, err := utils.GetIDParam(ctx, "id", "Post")
	if err != nil {
		return err
	}

	var req CreateCommentRequest
	if err := validation.BindJSON(ctx, &req); err != nil {
		return err
	}

	if _, err := h.store.FindPost(ctx.Request.Context(), postID); err != nil {
		return notFound(err, "Post not found")
	}

	comment := &models.Comment{PostID: postID, AuthorID: userID, Content: req.Content}
	if err := h.store.CreateComment(ctx.Request.Context(), comment); err != nil {
		return err
	}

	h.cache.Invalidate(ctx.Request.Context(), cache.ResourcePosts)

	return respond(ctx, http.StatusCreated, comment, "Comment added successfully")
}

func orEmpty(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
