// Package store holds the GORM queries behind every API resource.
package store

import (
	"context"
	"fmt"

	"github.com/climatrix/climatrix/internal/types"
	"gorm.io/gorm"
)

type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) DB() *gorm.DB {
	return s.db
}

func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("database handle: %w", err)
	}
	return sqlDB.PingContext(ctx)
}

// Page selects one page of a listing. Page starts at 1.
type Page struct {
	Page  int
	Limit int
}

func (p Page) scope(db *gorm.DB) *gorm.DB {
	return db.Offset(types.Offset(p.Page, p.Limit)).Limit(p.Limit)
}

// countRow receives GROUP BY counts keyed by a foreign key.
type countRow struct {
	OwnerID string
	Total   int64
}

func (s *Store) countBy(ctx context.Context, model interface{}, column string, ids []string, where ...interface{}) (map[string]int64, error) {
	counts := make(map[string]int64, len(ids))
	if len(ids) == 0 {
		return counts, nil
	}

	var rows []countRow
	q := s.db.WithContext(ctx).Model(model).
		Select(column+" AS owner_id, COUNT(*) AS total").
		Where(column+" IN ?", ids)
	if len(where) > 0 {
		q = q.Where(where[0], where[1:]...)
	}

	if err := q.Group(column).Scan(&rows).Error; err != nil {
		return nil, err
	}

	for _, row := range rows {
		counts[row.OwnerID] = row.Total
	}
	return counts, nil
}
