package store

import (
	"context"
	"fmt"

	"github.com/climatrix/climatrix/internal/models"
	"gorm.io/gorm"
)

// ListPosts returns posts, pinned first and then newest first. An empty
// groupID lists posts from every group.
func (s *Store) ListPosts(ctx context.Context, groupID string, page Page) ([]models.Post, int64, error) {
	q := s.db.WithContext(ctx).Model(&models.Post{})
	if groupID != "" {
		q = q.Where("group_id = ?", groupID)
	}
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	posts := []models.Post{}
	err := q.Scopes(page.scope).
		Preload("Author").
		Preload("Group").
		Order("is_pinned DESC").
		Order("created_at DESC").
		Find(&posts).Error
	if err != nil {
		return nil, 0, err
	}

	ids := make([]string, len(posts))
	for i := range posts {
		ids[i] = posts[i].ID
	}
	comments, err := s.countBy(ctx, &models.Comment{}, "post_id", ids)
	if err != nil {
		return nil, 0, fmt.Errorf("count comments: %w", err)
	}
	for i := range posts {
		posts[i].Count = &models.PostCount{Comments: comments[posts[i].ID]}
	}

	return posts, total, nil
}

func (s *Store) CreatePost(ctx context.Context, post *models.Post) error {
	if err := s.db.WithContext(ctx).Omit("Author", "Group").Create(post).Error; err != nil {
		return err
	}

	loaded, err := s.FindPost(ctx, post.ID)
	if err != nil {
		return err
	}
	*post = *loaded
	return nil
}

func (s *Store) FindPost(ctx context.Context, id string) (*models.Post, error) {
	var post models.Post
	err := s.db.WithContext(ctx).
		Preload("Author").
		Preload("Group").
		First(&post, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// ListComments returns the comments of a post in the order they were written.
func (s *Store) ListComments(ctx context.Context, postID string, page Page) ([]models.Comment, int64, error) {
	q := s.db.WithContext(ctx).Model(&models.Comment{}).Where("post_id = ?", postID).Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	comments := []models.Comment{}
	err := q.Scopes(page.scope).Preload("Author").Order("created_at ASC").Find(&comments).Error
	return comments, total, err
}

func (s *Store) CreateComment(ctx context.Context, comment *models.Comment) error {
	db := s.db.WithContext(ctx)
	if err := db.Omit("Post", "Author").Create(comment).Error; err != nil {
		return err
	}
	return db.Preload("Author").First(comment, "id = ?", comment.ID).Error
}
