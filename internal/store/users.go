package store

import (
	"context"
	"fmt"

	"github.com/climatrix/climatrix/internal/models"
	"gorm.io/gorm"
)

// CreateUser inserts the user together with an empty profile.
func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			return fmt.Errorf("create user: %w", err)
		}

		profile := &models.Profile{UserID: user.ID}
		if err := tx.Create(profile).Error; err != nil {
			return fmt.Errorf("create profile: %w", err)
		}

		user.Profile = profile
		return nil
	})
}

func (s *Store) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("LOWER(email) = LOWER(?)", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *Store) EmailTaken(ctx context.Context, email string) (bool, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.User{}).Where("LOWER(email) = LOWER(?)", email).Count(&n).Error
	return n > 0, err
}

func (s *Store) UsernameTaken(ctx context.Context, username string) (bool, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.User{}).Where("LOWER(username) = LOWER(?)", username).Count(&n).Error
	return n > 0, err
}

func (s *Store) FindUser(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Preload("Profile").First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

type UserCounts struct {
	Posts                int64 `json:"posts"`
	Comments             int64 `json:"comments"`
	EnvironmentalPledges int64 `json:"environmentalPledges"`
	GroupMemberships     int64 `json:"groupMemberships"`
}

func (s *Store) CountUserActivity(ctx context.Context, userID string) (UserCounts, error) {
	var counts UserCounts
	db := s.db.WithContext(ctx)

	steps := []struct {
		model  interface{}
		column string
		dest   *int64
	}{
		{&models.Post{}, "author_id", &counts.Posts},
		{&models.Comment{}, "author_id", &counts.Comments},
		{&models.EnvironmentalPledge{}, "user_id", &counts.EnvironmentalPledges},
		{&models.GroupMember{}, "user_id", &counts.GroupMemberships},
	}

	for _, step := range steps {
		if err := db.Model(step.model).Where(step.column+" = ?", userID).Count(step.dest).Error; err != nil {
			return counts, err
		}
	}

	return counts, nil
}

// UpdateProfile applies column updates to the user row and its profile. The
// profile row is created if it is missing.
func (s *Store) UpdateProfile(ctx context.Context, userID string, userFields, profileFields map[string]interface{}) (*models.User, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.First(&user, "id = ?", userID).Error; err != nil {
			return err
		}

		if len(userFields) > 0 {
			if err := tx.Model(&user).Updates(userFields).Error; err != nil {
				return fmt.Errorf("update user: %w", err)
			}
		}

		if len(profileFields) > 0 {
			var profile models.Profile
			if err := tx.Where(models.Profile{UserID: userID}).FirstOrCreate(&profile).Error; err != nil {
				return fmt.Errorf("load profile: %w", err)
			}
			if err := tx.Model(&profile).Updates(profileFields).Error; err != nil {
				return fmt.Errorf("update profile: %w", err)
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.FindUser(ctx, userID)
}
