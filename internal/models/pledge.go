package models

import "time"

const (
	PledgeActive    = "ACTIVE"
	PledgeCompleted = "COMPLETED"
	PledgeVerified  = "VERIFIED"
	PledgeCancelled = "CANCELLED"
)

var PledgeTypes = []string{
	"PLANT_TREES", "REDUCE_DRIVING", "SAVE_ENERGY",
	"REDUCE_WASTE", "RENEWABLE_ENERGY", "WATER_CONSERVATION",
}

type EnvironmentalPledge struct {
	BaseModel

	UserID      string     `gorm:"type:varchar(36);not null;index" json:"userId"`
	PledgeType  string     `gorm:"not null" json:"pledgeType"`
	Quantity    int        `gorm:"not null" json:"quantity"`
	Unit        string     `gorm:"not null" json:"unit"`
	Description string     `json:"description,omitempty"`
	StartDate   time.Time  `gorm:"not null" json:"startDate"`
	EndDate     *time.Time `json:"endDate"`
	Status      string     `gorm:"not null;default:ACTIVE;index" json:"status"`
	VerifiedAt  *time.Time `json:"verifiedAt"`
	VerifiedBy  *string    `gorm:"type:varchar(36)" json:"verifiedBy,omitempty"`

	// Relationships
	User *User `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}

// pledgeTransitions lists the statuses reachable from each status.
var pledgeTransitions = map[string][]string{
	PledgeActive:    {PledgeCompleted, PledgeCancelled},
	PledgeCompleted: {PledgeVerified},
}

func CanTransitionPledge(from, to string) bool {
	for _, next := range pledgeTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
