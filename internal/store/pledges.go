package store

import (
	"context"
	"time"

	"github.com/climatrix/climatrix/internal/models"
	"gorm.io/gorm"
)

type PledgeFilter struct {
	UserID string
	Status string
	Page
}

func (s *Store) ListPledges(ctx context.Context, f PledgeFilter) ([]models.EnvironmentalPledge, int64, error) {
	q := s.db.WithContext(ctx).Model(&models.EnvironmentalPledge{}).Where("user_id = ?", f.UserID)
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	pledges := []models.EnvironmentalPledge{}
	err := q.Scopes(f.Page.scope).Order("created_at DESC").Find(&pledges).Error
	return pledges, total, err
}

func (s *Store) CreatePledge(ctx context.Context, pledge *models.EnvironmentalPledge) error {
	return s.db.WithContext(ctx).Omit("User").Create(pledge).Error
}

func (s *Store) FindPledge(ctx context.Context, id string) (*models.EnvironmentalPledge, error) {
	var pledge models.EnvironmentalPledge
	if err := s.db.WithContext(ctx).First(&pledge, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &pledge, nil
}

// SetPledgeStatus moves the pledge to status only if it is still in the
// status it was read with; otherwise it returns false. verifiedBy is recorded
// for VERIFIED.
func (s *Store) SetPledgeStatus(ctx context.Context, pledge *models.EnvironmentalPledge, status string, verifiedBy string, now time.Time) (bool, error) {
	fields := map[string]interface{}{"status": status}
	if status == models.PledgeVerified {
		fields["verified_at"] = now
		fields["verified_by"] = verifiedBy
	}

	res := s.db.WithContext(ctx).
		Model(&models.EnvironmentalPledge{}).
		Where("id = ? AND status = ?", pledge.ID, pledge.Status).
		Updates(fields)
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected == 0 {
		return false, nil
	}

	pledge.Status = status
	if status == models.PledgeVerified {
		pledge.VerifiedAt = &now
		pledge.VerifiedBy = &verifiedBy
	}
	return true, nil
}
