package controllers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/vnkhanh/notes-backend/middleware"
	"github.com/vnkhanh/notes-backend/models"
	"github.com/vnkhanh/notes-backend/services"
	"github.com/vnkhanh/notes-backend/utils"
)

// NoteService là các thao tác ghi chú mà controller cần
type NoteService interface {
	List(ctx context.Context, userID string) ([]models.Note, error)
	GetByID(ctx context.Context, id uint, userID string) (*models.Note, error)
	Create(ctx context.Context, actor utils.Identity, in services.CreateNoteInput) (*models.Note, error)
	Update(ctx context.Context, id uint, userID string, in services.UpdateNoteInput) (*models.Note, error)
	Delete(ctx context.Context, id uint, userID string) error
}

type NoteSummarizer interface {
	Summarize(ctx context.Context, id uint, userID string) (string, error)
}

type NoteController struct {
	notes         NoteService
	summaries     NoteSummarizer
	maxImageBytes int64
}

type NoteControllerOption func(*NoteController)

// WithMaxImageBytes giới hạn kích thước file ảnh đọc từ form
func WithMaxImageBytes(n int64) NoteControllerOption {
	return func(nc *NoteController) {
		if n > 0 {
			nc.maxImageBytes = n
		}
	}
}

func NewNoteController(notes NoteService, summaries NoteSummarizer, opts ...NoteControllerOption) *NoteController {
	nc := &NoteController{notes: notes, summaries: summaries, maxImageBytes: services.DefaultMaxImageBytes}
	for _, opt := range opts {
		opt(nc)
	}
	return nc
}

// Lấy danh sách ghi chú của user
func (nc *NoteController) List(c *gin.Context) {
	id, ok := middleware.CurrentIdentity(c)
	if !ok {
		respondError(c, services.ErrUnauthenticated)
		return
	}

	notes, err := nc.notes.List(c.Request.Context(), id.Subject)
	if err != nil {
		respondError(c, err)
		return
	}
	if notes == nil {
		notes = []models.Note{}
	}
	c.JSON(http.StatusOK, gin.H{"notes": notes})
}

// Chi tiết ghi chú
func (nc *NoteController) Get(c *gin.Context) {
	id, ok := middleware.CurrentIdentity(c)
	if !ok {
		respondError(c, services.ErrUnauthenticated)
		return
	}
	noteID, ok := parseNoteID(c)
	if !ok {
		return
	}

	note, err := nc.notes.GetByID(c.Request.Context(), noteID, id.Subject)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"note": note})
}

// Tạo ghi chú (multipart: title, content, image?)
func (nc *NoteController) Create(c *gin.Context) {
	id, ok := middleware.CurrentIdentity(c)
	if !ok {
		respondError(c, services.ErrUnauthenticated)
		return
	}

	image, err := readImage(c, nc.maxImageBytes)
	if err != nil {
		respondImageError(c, err)
		return
	}

	note, err := nc.notes.Create(c.Request.Context(), id, services.CreateNoteInput{
		Title:   c.PostForm("title"),
		Content: c.PostForm("content"),
		Image:   image,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"note": note})
}

// Cập nhật ghi chú (multipart: title, content, imageAction, image?)
func (nc *NoteController) Update(c *gin.Context) {
	id, ok := middleware.CurrentIdentity(c)
	if !ok {
		respondError(c, services.ErrUnauthenticated)
		return
	}
	noteID, ok := parseNoteID(c)
	if !ok {
		return
	}

	image, err := readImage(c, nc.maxImageBytes)
	if err != nil {
		respondImageError(c, err)
		return
	}
	action, err := services.ParseImageAction(c.PostForm("imageAction"), image)
	if err != nil {
		respondError(c, err)
		return
	}

	note, err := nc.notes.Update(c.Request.Context(), noteID, id.Subject, services.UpdateNoteInput{
		Title:   c.PostForm("title"),
		Content: c.PostForm("content"),
		Image:   action,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"note": note})
}

// Xoá ghi chú
func (nc *NoteController) Delete(c *gin.Context) {
	id, ok := middleware.CurrentIdentity(c)
	if !ok {
		respondError(c, services.ErrUnauthenticated)
		return
	}
	noteID, ok := parseNoteID(c)
	if !ok {
		return
	}

	if err := nc.notes.Delete(c.Request.Context(), noteID, id.Subject); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Đã xoá ghi chú"})
}

// Tóm tắt nội dung ghi chú bằng AI
func (nc *NoteController) Summary(c *gin.Context) {
	id, ok := middleware.CurrentIdentity(c)
	if !ok {
		respondError(c, services.ErrUnauthenticated)
		return
	}
	noteID, ok := parseNoteID(c)
	if !ok {
		return
	}
	if nc.summaries == nil {
		respondError(c, services.ErrSummaryUnavailable)
		return
	}

	summary, err := nc.summaries.Summarize(c.Request.Context(), noteID, id.Subject)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"summary": summary})
}

func parseNoteID(c *gin.Context) (uint, bool) {
	raw := c.Param("id")
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID ghi chú không hợp lệ"})
		return 0, false
	}
	return uint(id), true
}

// readImage trả nil khi form không có file "image"; file lớn hơn limit bị từ chối trước khi đọc vào bộ nhớ
func readImage(c *gin.Context, limit int64) (*services.ImageUpload, error) {
	fh, err := c.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	tooLarge := &services.ValidationError{Field: "image", Message: fmt.Sprintf("Ảnh vượt quá %d bytes", limit)}
	if fh.Size > limit {
		return nil, tooLarge
	}

	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, tooLarge
	}
	return &services.ImageUpload{Filename: fh.Filename, Data: data}, nil
}

func respondImageError(c *gin.Context, err error) {
	var (
		verr   *services.ValidationError
		tooBig *http.MaxBytesError
	)
	switch {
	case errors.As(err, &verr):
		respondError(c, err)
	case errors.As(err, &tooBig):
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": fmt.Sprintf("Request vượt quá %d bytes", tooBig.Limit)})
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Không đọc được file ảnh"})
	}
}

// respondError map lỗi từ service sang status code
func respondError(c *gin.Context, err error) {
	var (
		verr *services.ValidationError
		aerr *services.AuthorizationError
	)
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": verr.Message, "field": verr.Field})
	case errors.As(err, &aerr) && aerr.Unauthenticated:
		c.JSON(http.StatusUnauthorized, gin.H{"error": aerr.Error()})
	case errors.As(err, &aerr):
		c.JSON(http.StatusForbidden, gin.H{"error": aerr.Error()})
	case errors.Is(err, services.ErrNoteNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrSummaryUnavailable), errors.Is(err, services.ErrAccountNotConfigured):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	default:
		log.Printf("[HTTP] %s %s lỗi: %v", c.Request.Method, c.Request.URL.Path, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Đã có lỗi xảy ra, vui lòng thử lại"})
	}
}
