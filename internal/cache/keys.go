package cache

import (
	"context"
	"fmt"
	"strings"
)

// Resource prefixes used for invalidation.
const (
	ResourceClimate = "climate"
	ResourceAlerts  = "alerts"
	ResourceGroups  = "groups"
	ResourcePosts   = "posts"
)

func orAll(v string) string {
	if v == "" {
		return "all"
	}
	return v
}

func LatestReadingKey(city string) string {
	return "climate:latest:" + strings.ToLower(city)
}

func ReadingHistoryKey(city string, hours int) string {
	return fmt.Sprintf("climate:history:%s:%d", strings.ToLower(city), hours)
}

func ActiveAlertsKey(city, severity string, page, limit int) string {
	return fmt.Sprintf("alerts:active:%s:%s:%d:%d", orAll(city), orAll(severity), page, limit)
}

func GroupListKey(city, category string, page, limit int) string {
	return fmt.Sprintf("groups:list:%s:%s:%d:%d", orAll(city), orAll(category), page, limit)
}

func PostListKey(groupID string, page, limit int) string {
	return fmt.Sprintf("posts:list:%s:%d:%d", orAll(groupID), page, limit)
}

// InvalidateCity drops the latest and history entries of one city.
func (s *Service) InvalidateCity(ctx context.Context, city string) {
	s.Del(ctx, LatestReadingKey(city))
	s.DelPattern(ctx, "climate:history:"+escapeGlob(strings.ToLower(city))+":*")
}

func WeatherTrendKey(city string) string {
	return "weather:trend:" + strings.ToLower(city)
}
