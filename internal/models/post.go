package models

import "gorm.io/datatypes"

type Post struct {
	BaseModel

	AuthorID string                      `gorm:"type:varchar(36);not null;index" json:"authorId"`
	GroupID  *string                     `gorm:"type:varchar(36);index" json:"groupId"`
	Title    string                      `gorm:"not null" json:"title"`
	Content  string                      `gorm:"type:text;not null" json:"content"`
	Images   datatypes.JSONSlice[string] `json:"images"`
	Tags     datatypes.JSONSlice[string] `json:"tags"`
	IsPinned bool                        `gorm:"not null;default:false" json:"isPinned"`

	// Relationships
	Author *UserRef   `gorm:"foreignKey:AuthorID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"author,omitempty"`
	Group  *GroupRef  `gorm:"foreignKey:GroupID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"group,omitempty"`
	Count  *PostCount `gorm:"-" json:"_count,omitempty"`
}

type PostCount struct {
	Comments int64 `json:"comments"`
}

type Comment struct {
	BaseModel

	PostID   string `gorm:"type:varchar(36);not null;index" json:"postId"`
	AuthorID string `gorm:"type:varchar(36);not null;index" json:"authorId"`
	Content  string `gorm:"type:text;not null" json:"content"`

	// Relationships
	Post   *Post    `gorm:"foreignKey:PostID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	Author *UserRef `gorm:"foreignKey:AuthorID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"author,omitempty"`
}
