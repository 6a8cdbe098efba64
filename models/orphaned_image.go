package models

import "time"

// OrphanedImage lưu path ảnh đã upload nhưng ghi DB thất bại và xoá bù cũng thất bại
type OrphanedImage struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Path      string    `gorm:"type:text;not null" json:"path"`
	Reason    string    `gorm:"type:text" json:"reason"`
	Attempts  int       `gorm:"not null;default:0" json:"attempts"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}
