package store

import (
	"context"
	"fmt"

	"github.com/climatrix/climatrix/internal/models"
	"gorm.io/gorm"
)

type GroupFilter struct {
	City     string
	Category string
	Page
}

// ListGroups returns public groups, newest first, with their creator and
// member and post counts.
func (s *Store) ListGroups(ctx context.Context, f GroupFilter) ([]models.Group, int64, error) {
	q := s.db.WithContext(ctx).Model(&models.Group{}).Where("is_public = ?", true)
	if f.City != "" {
		q = q.Where("LOWER(city) = LOWER(?)", f.City)
	}
	if f.Category != "" {
		q = q.Where("category = ?", f.Category)
	}

	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	groups := []models.Group{}
	if err := q.Scopes(f.Page.scope).Preload("CreatedBy").Order("created_at DESC").Find(&groups).Error; err != nil {
		return nil, 0, err
	}

	if err := s.attachGroupCounts(ctx, groups); err != nil {
		return nil, 0, err
	}

	return groups, total, nil
}

func (s *Store) attachGroupCounts(ctx context.Context, groups []models.Group) error {
	ids := make([]string, len(groups))
	for i := range groups {
		ids[i] = groups[i].ID
	}

	members, err := s.countBy(ctx, &models.GroupMember{}, "group_id", ids)
	if err != nil {
		return fmt.Errorf("count members: %w", err)
	}
	posts, err := s.countBy(ctx, &models.Post{}, "group_id", ids)
	if err != nil {
		return fmt.Errorf("count posts: %w", err)
	}

	for i := range groups {
		groups[i].Count = &models.GroupCount{
			Members: members[groups[i].ID],
			Posts:   posts[groups[i].ID],
		}
	}
	return nil
}

func (s *Store) GroupSlugTaken(ctx context.Context, slug string) (bool, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.Group{}).Where("slug = ?", slug).Count(&n).Error
	return n > 0, err
}

// CreateGroup inserts the group and makes its creator an ADMIN member.
func (s *Store) CreateGroup(ctx context.Context, group *models.Group) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("CreatedBy", "Members").Create(group).Error; err != nil {
			return fmt.Errorf("create group: %w", err)
		}

		member := &models.GroupMember{
			GroupID: group.ID,
			UserID:  group.CreatedByID,
			Role:    models.GroupRoleAdmin,
		}
		if err := tx.Create(member).Error; err != nil {
			return fmt.Errorf("add group admin: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	loaded, err := s.FindGroup(ctx, group.ID)
	if err != nil {
		return err
	}
	*group = *loaded
	return nil
}

func (s *Store) FindGroup(ctx context.Context, id string) (*models.Group, error) {
	var group models.Group
	if err := s.db.WithContext(ctx).Preload("CreatedBy").First(&group, "id = ?", id).Error; err != nil {
		return nil, err
	}

	groups := []models.Group{group}
	if err := s.attachGroupCounts(ctx, groups); err != nil {
		return nil, err
	}
	return &groups[0], nil
}

// AddGroupMember joins userID to the group with the MEMBER role. A repeated
// join fails with gorm.ErrDuplicatedKey.
func (s *Store) AddGroupMember(ctx context.Context, groupID, userID string) (*models.GroupMember, error) {
	member := &models.GroupMember{
		GroupID: groupID,
		UserID:  userID,
		Role:    models.GroupRoleMember,
	}
	if err := s.db.WithContext(ctx).Create(member).Error; err != nil {
		return nil, err
	}
	return member, nil
}

func (s *Store) IsGroupMember(ctx context.Context, groupID, userID string) (bool, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.GroupMember{}).
		Where("group_id = ? AND user_id = ?", groupID, userID).
		Count(&n).Error
	return n > 0, err
}
