package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/climatrix/climatrix/internal/models"
	"gorm.io/gorm"
)

// severityOrder ranks severities by urgency, most urgent first.
var severityOrder = func() string {
	var b strings.Builder
	b.WriteString("CASE severity")
	for rank, severity := range models.Severities {
		fmt.Fprintf(&b, " WHEN '%s' THEN %d", severity, rank)
	}
	b.WriteString(" ELSE -1 END DESC")
	return b.String()
}()

type AlertFilter struct {
	City     string
	Severity string
	Page
}

func (s *Store) ListActiveAlerts(ctx context.Context, f AlertFilter) ([]models.EnvironmentalAlert, int64, error) {
	q := s.db.WithContext(ctx).Model(&models.EnvironmentalAlert{}).Where("is_active = ?", true)
	if f.City != "" {
		q = q.Where("LOWER(city) = LOWER(?)", f.City)
	}
	if f.Severity != "" {
		q = q.Where("severity = ?", f.Severity)
	}

	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	alerts := []models.EnvironmentalAlert{}
	err := q.Scopes(f.Page.scope).
		Order(severityOrder).
		Order("start_time DESC").
		Find(&alerts).Error

	return alerts, total, err
}

func (s *Store) CreateAlert(ctx context.Context, alert *models.EnvironmentalAlert) error {
	return s.db.WithContext(ctx).Create(alert).Error
}

func (s *Store) FindAlert(ctx context.Context, id string) (*models.EnvironmentalAlert, error) {
	var alert models.EnvironmentalAlert
	if err := s.db.WithContext(ctx).First(&alert, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &alert, nil
}

func (s *Store) UpdateAlert(ctx context.Context, alert *models.EnvironmentalAlert, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}
	return s.db.WithContext(ctx).Model(alert).Updates(fields).Error
}

// ExpireAlerts deactivates active alerts whose end time has passed and
// returns them.
func (s *Store) ExpireAlerts(ctx context.Context, now time.Time) ([]models.EnvironmentalAlert, error) {
	var expired []models.EnvironmentalAlert

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("is_active = ? AND end_time IS NOT NULL AND end_time <= ?", true, now).
			Find(&expired).Error; err != nil {
			return err
		}
		if len(expired) == 0 {
			return nil
		}

		ids := make([]string, len(expired))
		for i := range expired {
			ids[i] = expired[i].ID
			expired[i].IsActive = false
		}

		return tx.Model(&models.EnvironmentalAlert{}).
			Where("id IN ?", ids).
			Update("is_active", false).Error
	})

	return expired, err
}
