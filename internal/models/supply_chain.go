package models

import "time"

const (
	ShipmentPending   = "PENDING"
	ShipmentInTransit = "IN_TRANSIT"
	ShipmentArrived   = "ARRIVED"
	ShipmentDelayed   = "DELAYED"
	ShipmentCancelled = "CANCELLED"
	ShipmentDelivered = "DELIVERED"
)

type SupplyChainItem struct {
	BaseModel

	UserID           string     `gorm:"type:varchar(36);not null;index" json:"userId"`
	ProductName      string     `gorm:"not null" json:"productName"`
	ProductCode      string     `gorm:"uniqueIndex;not null" json:"productCode"`
	Category         string     `gorm:"not null" json:"category"`
	Origin           string     `gorm:"not null" json:"origin"`
	CurrentLocation  string     `gorm:"not null" json:"currentLocation"`
	Destination      string     `gorm:"not null" json:"destination"`
	Status           string     `gorm:"not null;default:PENDING;index" json:"status"`
	CarbonFootprint  *float64   `json:"carbonFootprint"`
	EnergyUsed       *float64   `json:"energyUsed"`
	WaterUsed        *float64   `json:"waterUsed"`
	WasteGenerated   *float64   `json:"wasteGenerated"`
	Temperature      *float64   `json:"temperature"`
	Humidity         *float64   `json:"humidity"`
	EstimatedArrival *time.Time `json:"estimatedArrival"`
	ActualArrival    *time.Time `json:"actualArrival"`

	// Relationships
	Events []SupplyChainEvent `gorm:"foreignKey:ItemID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"events"`
	Alerts []SupplyChainAlert `gorm:"foreignKey:ItemID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"alerts"`
	Count  *ShipmentCount     `gorm:"-" json:"_count,omitempty"`
}

type ShipmentCount struct {
	Events int64 `json:"events"`
	Alerts int64 `json:"alerts"`
}

// SupplyChainEvent is one entry of an item's timeline. Events are only appended.
type SupplyChainEvent struct {
	BaseModel

	ItemID      string    `gorm:"type:varchar(36);not null;index" json:"itemId"`
	EventType   string    `gorm:"not null" json:"eventType"`
	Location    string    `gorm:"not null" json:"location"`
	Latitude    *float64  `json:"latitude"`
	Longitude   *float64  `json:"longitude"`
	Description string    `json:"description,omitempty"`
	Timestamp   time.Time `gorm:"not null;index" json:"timestamp"`
}

type SupplyChainAlert struct {
	BaseModel

	ItemID     string `gorm:"type:varchar(36);not null;index" json:"itemId"`
	AlertType  string `gorm:"not null" json:"alertType"`
	Message    string `gorm:"not null" json:"message"`
	IsResolved bool   `gorm:"not null;default:false" json:"isResolved"`
}
