package store

import (
	"context"
	"fmt"
	"time"

	"github.com/climatrix/climatrix/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const recentShipmentEvents = 5

var newestEventFirst = clause.OrderByColumn{Column: clause.Column{Name: "timestamp"}, Desc: true}

// ListShipments returns the caller's items, newest first, each with its five
// most recent events, its unresolved alerts and event and alert totals.
func (s *Store) ListShipments(ctx context.Context, userID string) ([]models.SupplyChainItem, error) {
	items := []models.SupplyChainItem{}
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Preload("Alerts", "is_resolved = ?", false).
		Order("created_at DESC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return items, nil
	}

	ids := make([]string, len(items))
	for i := range items {
		ids[i] = items[i].ID
	}
	eventTotals, err := s.countBy(ctx, &models.SupplyChainEvent{}, "item_id", ids)
	if err != nil {
		return nil, fmt.Errorf("count shipment events: %w", err)
	}
	alerts, err := s.countBy(ctx, &models.SupplyChainAlert{}, "item_id", ids)
	if err != nil {
		return nil, fmt.Errorf("count shipment alerts: %w", err)
	}
	recent, err := s.recentEvents(ctx, ids, recentShipmentEvents)
	if err != nil {
		return nil, fmt.Errorf("load shipment events: %w", err)
	}

	for i := range items {
		item := &items[i]
		item.Events = recent[item.ID]
		if item.Events == nil {
			item.Events = []models.SupplyChainEvent{}
		}
		item.Count = &models.ShipmentCount{
			Events: eventTotals[item.ID],
			Alerts: alerts[item.ID],
		}
	}

	return items, nil
}

// recentEvents loads at most n events per item, newest first, ranking rows
// per item in the database so older events are never read.
func (s *Store) recentEvents(ctx context.Context, ids []string, n int) (map[string][]models.SupplyChainEvent, error) {
	db := s.db.WithContext(ctx)
	ts := db.Statement.Quote("timestamp")

	ranked := db.Model(&models.SupplyChainEvent{}).
		Select("*, ROW_NUMBER() OVER (PARTITION BY item_id ORDER BY "+ts+" DESC) AS event_rank").
		Where("item_id IN ?", ids)

	var events []models.SupplyChainEvent
	err := db.Table("(?) AS ranked", ranked).
		Where("event_rank <= ?", n).
		Order(newestEventFirst).
		Find(&events).Error
	if err != nil {
		return nil, err
	}

	out := make(map[string][]models.SupplyChainEvent, len(ids))
	for _, e := range events {
		out[e.ItemID] = append(out[e.ItemID], e)
	}
	return out, nil
}

// CreateShipment inserts the item and its initial "created" event at the
// origin.
func (s *Store) CreateShipment(ctx context.Context, item *models.SupplyChainItem, now time.Time) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Events", "Alerts").Create(item).Error; err != nil {
			return fmt.Errorf("create item: %w", err)
		}

		event := models.SupplyChainEvent{
			ItemID:      item.ID,
			EventType:   "created",
			Location:    item.Origin,
			Description: "Supply chain item created",
			Timestamp:   now,
		}
		if err := tx.Create(&event).Error; err != nil {
			return fmt.Errorf("create initial event: %w", err)
		}

		item.Events = []models.SupplyChainEvent{event}
		item.Alerts = []models.SupplyChainAlert{}
		return nil
	})
}

// FindShipment loads an item owned by userID.
func (s *Store) FindShipment(ctx context.Context, id, userID string) (*models.SupplyChainItem, error) {
	var item models.SupplyChainItem
	err := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// UpdateShipment applies fields to the item and, when event is not nil,
// appends it to the timeline in the same transaction.
func (s *Store) UpdateShipment(ctx context.Context, item *models.SupplyChainItem, fields map[string]interface{}, event *models.SupplyChainEvent) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(fields) > 0 {
			if err := tx.Model(item).Omit("Events", "Alerts").Updates(fields).Error; err != nil {
				return fmt.Errorf("update item: %w", err)
			}
		}
		if event != nil {
			event.ItemID = item.ID
			if err := tx.Create(event).Error; err != nil {
				return fmt.Errorf("append event: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	return s.db.WithContext(ctx).
		Preload("Events", func(db *gorm.DB) *gorm.DB {
			return db.Order(newestEventFirst).Limit(recentShipmentEvents)
		}).
		Preload("Alerts", "is_resolved = ?", false).
		First(item, "id = ?", item.ID).Error
}

func (s *Store) AppendShipmentEvent(ctx context.Context, event *models.SupplyChainEvent) error {
	return s.db.WithContext(ctx).Create(event).Error
}
