package models

import (
	"time"
)

type User struct {
	ID        uint64    `gorm:"primarykey" json:"id"`
	ClerkID   string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"clerk_id"`
	Name      string    `gorm:"type:varchar(255);not null;default:''" json:"name"`
	Email     string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	AvatarURL *string   `gorm:"type:text" json:"avatar_url"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
