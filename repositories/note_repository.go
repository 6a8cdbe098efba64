package repositories

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/vnkhanh/notes-backend/models"
)

// ErrNoteNotFound khi không có bản ghi với id tương ứng
var ErrNoteNotFound = errors.New("note not found")

// NoteChanges là payload update: title/content luôn thay, ảnh chỉ đổi khi SetImage = true
type NoteChanges struct {
	Title    string
	Content  string
	SetImage bool
	ImageURL *string
}

type NoteRepository interface {
	FindByUser(ctx context.Context, userID string) ([]models.Note, error)
	FindByID(ctx context.Context, id uint) (*models.Note, error)
	Create(ctx context.Context, note *models.Note) error
	Update(ctx context.Context, id uint, changes NoteChanges) (*models.Note, error)
	Delete(ctx context.Context, id uint) error
}

type noteRepository struct {
	db *gorm.DB
}

func NewNoteRepository(db *gorm.DB) NoteRepository {
	return &noteRepository{db: db}
}

func (r *noteRepository) FindByUser(ctx context.Context, userID string) ([]models.Note, error) {
	var notes []models.Note
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&notes).Error; err != nil {
		return nil, err
	}
	return notes, nil
}

func (r *noteRepository) FindByID(ctx context.Context, id uint) (*models.Note, error) {
	var note models.Note
	err := r.db.WithContext(ctx).First(&note, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNoteNotFound
	}
	if err != nil {
		return nil, err
	}
	return &note, nil
}

func (r *noteRepository) Create(ctx context.Context, note *models.Note) error {
	return r.db.WithContext(ctx).Create(note).Error
}

func (r *noteRepository) Update(ctx context.Context, id uint, changes NoteChanges) (*models.Note, error) {
	updates := map[string]interface{}{
		"title":      changes.Title,
		"content":    changes.Content,
		"updated_at": time.Now(),
	}
	// Không đưa image_url vào payload khi giữ nguyên ảnh
	if changes.SetImage {
		if changes.ImageURL == nil {
			updates["image_url"] = gorm.Expr("NULL")
		} else {
			updates["image_url"] = *changes.ImageURL
		}
	}

	res := r.db.WithContext(ctx).Model(&models.Note{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrNoteNotFound
	}
	return r.FindByID(ctx, id)
}

func (r *noteRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.Note{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNoteNotFound
	}
	return nil
}
