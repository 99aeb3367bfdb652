package models

const (
	GroupRoleAdmin     = "ADMIN"
	GroupRoleModerator = "MODERATOR"
	GroupRoleMember    = "MEMBER"
)

type Group struct {
	BaseModel

	Name        string `gorm:"not null" json:"name"`
	Slug        string `gorm:"uniqueIndex;not null" json:"slug"`
	Description string `gorm:"not null" json:"description"`
	City        string `gorm:"index" json:"city,omitempty"`
	State       string `json:"state,omitempty"`
	Country     string `json:"country,omitempty"`
	Category    string `gorm:"index" json:"category,omitempty"`
	IsPublic    bool   `gorm:"not null" json:"isPublic"`
	CreatedByID string `gorm:"type:varchar(36);not null;index" json:"createdById"`

	// Relationships
	CreatedBy *UserRef      `gorm:"foreignKey:CreatedByID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"createdBy,omitempty"`
	Members   []GroupMember `gorm:"foreignKey:GroupID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	Count     *GroupCount   `gorm:"-" json:"_count,omitempty"`
}

type GroupCount struct {
	Members int64 `json:"members"`
	Posts   int64 `json:"posts"`
}

type GroupMember struct {
	BaseModel

	GroupID string `gorm:"type:varchar(36);not null;uniqueIndex:idx_group_user" json:"groupId"`
	UserID  string `gorm:"type:varchar(36);not null;uniqueIndex:idx_group_user;index" json:"userId"`
	Role    string `gorm:"not null;default:MEMBER" json:"role"`
}

// GroupRef is the short group projection embedded in posts.
type GroupRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

func (GroupRef) TableName() string { return "groups" }
