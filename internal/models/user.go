package models

import "gorm.io/datatypes"

type User struct {
	BaseModel

	Email        string  `gorm:"uniqueIndex;not null" json:"email"`
	Username     string  `gorm:"uniqueIndex;not null" json:"username"`
	PasswordHash string  `gorm:"not null" json:"-"`
	FirstName    string  `json:"firstName,omitempty"`
	LastName     string  `json:"lastName,omitempty"`
	Avatar       string  `json:"avatar,omitempty"`
	Role         string  `gorm:"not null;default:USER" json:"role"`
	IsVerified   bool    `gorm:"default:false" json:"isVerified"`
	City         string  `json:"city,omitempty"`
	State        string  `json:"state,omitempty"`
	Country      string  `json:"country,omitempty"`
	Latitude     float64 `json:"latitude,omitempty"`
	Longitude    float64 `json:"longitude,omitempty"`

	// Relationships
	Profile *Profile `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"profile,omitempty"`
}

type Profile struct {
	BaseModel

	UserID       string                      `gorm:"type:varchar(36);uniqueIndex;not null" json:"userId"`
	Bio          string                      `json:"bio"`
	Website      string                      `json:"website"`
	Twitter      string                      `json:"twitter"`
	Linkedin     string                      `json:"linkedin"`
	Phone        string                      `json:"phone"`
	Organization string                      `json:"organization"`
	Interests    datatypes.JSONSlice[string] `json:"interests"`
}
