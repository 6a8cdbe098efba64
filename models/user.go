package models

import (
	"time"
)

// User được tạo lười (lazy) từ session của identity provider, ID chính là "sub"
type User struct {
	ID        string    `gorm:"size:255;primaryKey" json:"id"`
	Email     string    `gorm:"size:150;uniqueIndex;not null" json:"email"`
	Name      *string   `gorm:"size:150" json:"name"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
