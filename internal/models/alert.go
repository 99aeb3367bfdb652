package models

import "time"

var AlertTypes = []string{
	"AIR_QUALITY", "HEAT_WAVE", "COLD_WAVE", "UV_WARNING", "STORM",
	"FLOOD", "DROUGHT", "WILDFIRE", "POLLUTION_SPIKE",
}

// Severities in ascending order of urgency.
var Severities = []string{"LOW", "MODERATE", "HIGH", "VERY_HIGH", "EXTREME"}

type EnvironmentalAlert struct {
	BaseModel

	Type         string     `gorm:"not null;index" json:"type"`
	Severity     string     `gorm:"not null;index" json:"severity"`
	Title        string     `gorm:"not null" json:"title"`
	Description  string     `json:"description"`
	Location     string     `gorm:"not null" json:"location"`
	City         string     `gorm:"index" json:"city,omitempty"`
	Latitude     *float64   `json:"latitude"`
	Longitude    *float64   `json:"longitude"`
	Radius       *float64   `json:"radius"`
	Threshold    *float64   `json:"threshold"`
	CurrentValue *float64   `json:"currentValue"`
	IsActive     bool       `gorm:"not null;default:true;index" json:"isActive"`
	StartTime    time.Time  `gorm:"not null" json:"startTime"`
	EndTime      *time.Time `json:"endTime"`
}
