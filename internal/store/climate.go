package store

import (
	"context"
	"time"

	"github.com/climatrix/climatrix/internal/models"
)

// LatestReading returns the newest reading for a city, matched case-insensitively.
func (s *Store) LatestReading(ctx context.Context, city string) (*models.ClimateReading, error) {
	var reading models.ClimateReading
	err := s.db.WithContext(ctx).
		Where("LOWER(city) = LOWER(?)", city).
		Order("reading_time DESC").
		First(&reading).Error
	if err != nil {
		return nil, err
	}
	return &reading, nil
}

// ReadingsSince returns the slim history rows of a city, oldest first.
func (s *Store) ReadingsSince(ctx context.Context, city string, since time.Time) ([]models.ReadingPoint, error) {
	var points []models.ReadingPoint
	err := s.db.WithContext(ctx).
		Model(&models.ClimateReading{}).
		Select("id, location, temperature, feels_like, aqi, pm25, humidity, uv_index, rainfall, wind_speed, reading_time").
		Where("LOWER(city) = LOWER(?) AND reading_time >= ?", city, since).
		Order("reading_time ASC").
		Scan(&points).Error
	return points, err
}

func (s *Store) CreateReading(ctx context.Context, reading *models.ClimateReading) error {
	return s.db.WithContext(ctx).Create(reading).Error
}
