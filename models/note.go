package models

import (
	"time"
)

// Note không khai báo khoá ngoại tới users: user chỉ được tạo khi session có đủ sub và email
type Note struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    string    `gorm:"size:255;not null;index" json:"user_id"`
	Title     string    `gorm:"size:100;not null" json:"title"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	ImageURL  *string   `gorm:"column:image_url;type:text" json:"image_url"` // path trong bucket, chỉ ký URL khi đọc
	CreatedAt time.Time `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// HasImage cho biết ghi chú có ảnh đính kèm hay không
func (n *Note) HasImage() bool {
	return n.ImageURL != nil && *n.ImageURL != ""
}
