package repositories

import (
	"context"

	"gorm.io/gorm"

	"github.com/vnkhanh/notes-backend/models"
)

// MaxOrphanAttempts: quá số lần thử này thì ảnh bị gác lại, không lấy ra để xoá nữa
const MaxOrphanAttempts = 20

// OrphanRepository theo dõi các object ảnh cần xoá lại sau
type OrphanRepository interface {
	Record(ctx context.Context, path, reason string) error
	List(ctx context.Context, limit int) ([]models.OrphanedImage, error)
	Resolve(ctx context.Context, id uint) error
	MarkAttempt(ctx context.Context, id uint) error
}

type orphanRepository struct {
	db *gorm.DB
}

func NewOrphanRepository(db *gorm.DB) OrphanRepository {
	return &orphanRepository{db: db}
}

func (r *orphanRepository) Record(ctx context.Context, path, reason string) error {
	return r.db.WithContext(ctx).Create(&models.OrphanedImage{Path: path, Reason: reason}).Error
}

func (r *orphanRepository) List(ctx context.Context, limit int) ([]models.OrphanedImage, error) {
	var orphans []models.OrphanedImage
	// ảnh ít lần thử nhất đi trước để ảnh lỗi vĩnh viễn không chiếm hết batch
	q := r.db.WithContext(ctx).
		Where("attempts < ?", MaxOrphanAttempts).
		Order("attempts ASC, created_at ASC, id ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&orphans).Error; err != nil {
		return nil, err
	}
	return orphans, nil
}

func (r *orphanRepository) Resolve(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.OrphanedImage{}, "id = ?", id).Error
}

func (r *orphanRepository) MarkAttempt(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).
		Model(&models.OrphanedImage{}).
		Where("id = ?", id).
		UpdateColumn("attempts", gorm.Expr("attempts + 1")).Error
}
