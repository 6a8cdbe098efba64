package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"

	"github.com/vnkhanh/notes-backend/models"
	"github.com/vnkhanh/notes-backend/repositories"
	"github.com/vnkhanh/notes-backend/utils"
)

const (
	TitleMaxLength   = 30
	ContentMaxLength = 300

	DefaultSignedURLTTL  = 24 * time.Hour
	DefaultMaxImageBytes = 5 * 1024 * 1024

	signConcurrency = 8
)

// ChangeNotifier được gọi sau mỗi lần ghi thành công để client đồng bộ lại
type ChangeNotifier interface {
	NotesChanged(userID string)
}

type noopNotifier struct{}

func (noopNotifier) NotesChanged(string) {}

type CreateNoteInput struct {
	Title   string
	Content string
	Image   *ImageUpload
}

type UpdateNoteInput struct {
	Title   string
	Content string
	Image   ImageAction
}

// NoteService là nơi duy nhất kiểm tra và ghi thay đổi của ghi chú
type NoteService struct {
	notes         repositories.NoteRepository
	users         *UserService
	storage       utils.ObjectStore
	orphans       repositories.OrphanRepository
	notifier      ChangeNotifier
	signedURLTTL  time.Duration
	maxImageBytes int64
}

type NoteServiceOption func(*NoteService)

func WithChangeNotifier(n ChangeNotifier) NoteServiceOption {
	return func(s *NoteService) {
		if n != nil {
			s.notifier = n
		}
	}
}

func WithOrphanRepository(r repositories.OrphanRepository) NoteServiceOption {
	return func(s *NoteService) { s.orphans = r }
}

func WithSignedURLTTL(ttl time.Duration) NoteServiceOption {
	return func(s *NoteService) {
		if ttl > 0 {
			s.signedURLTTL = ttl
		}
	}
}

func WithMaxImageBytes(n int64) NoteServiceOption {
	return func(s *NoteService) {
		if n > 0 {
			s.maxImageBytes = n
		}
	}
}

func NewNoteService(notes repositories.NoteRepository, users *UserService, storage utils.ObjectStore, opts ...NoteServiceOption) *NoteService {
	s := &NoteService{
		notes:         notes,
		users:         users,
		storage:       storage,
		notifier:      noopNotifier{},
		signedURLTTL:  DefaultSignedURLTTL,
		maxImageBytes: DefaultMaxImageBytes,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// List trả về ghi chú của user, mới nhất trước, ảnh đã được ký URL
func (s *NoteService) List(ctx context.Context, userID string) ([]models.Note, error) {
	if userID == "" {
		return nil, ErrUnauthenticated
	}
	notes, err := s.notes.FindByUser(ctx, userID)
	if err != nil {
		return nil, &PersistenceError{Op: "list", Err: err}
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(signConcurrency)
	for i := range notes {
		g.Go(func() error {
			s.resolveImage(gctx, &notes[i])
			return nil
		})
	}
	_ = g.Wait()
	// request bị huỷ giữa chừng: không trả danh sách với ảnh bị null hàng loạt
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return notes, nil
}

// GetByID trả về ErrNoteNotFound cho cả ghi chú không tồn tại lẫn ghi chú của người khác
func (s *NoteService) GetByID(ctx context.Context, id uint, userID string) (*models.Note, error) {
	if userID == "" {
		return nil, ErrUnauthenticated
	}
	note, err := s.notes.FindByID(ctx, id)
	if errors.Is(err, repositories.ErrNoteNotFound) {
		return nil, ErrNoteNotFound
	}
	if err != nil {
		return nil, &PersistenceError{Op: "get", Err: err}
	}
	if note.UserID != userID {
		return nil, ErrNoteNotFound
	}
	s.resolveImage(ctx, note)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return note, nil
}

func (s *NoteService) Create(ctx context.Context, actor utils.Identity, in CreateNoteInput) (*models.Note, error) {
	if actor.Subject == "" {
		return nil, ErrUnauthenticated
	}
	if err := validateNote(in.Title, in.Content); err != nil {
		return nil, err
	}

	if s.users != nil {
		if err := s.users.ensureIfComplete(ctx, actor); err != nil {
			return nil, err
		}
	}

	note := models.Note{
		UserID:  actor.Subject,
		Title:   in.Title,
		Content: in.Content,
	}
	if !in.Image.empty() {
		path, err := s.uploadImage(ctx, *in.Image)
		if err != nil {
			return nil, err
		}
		note.ImageURL = &path
	}

	if err := s.notes.Create(ctx, &note); err != nil {
		if note.ImageURL != nil {
			s.discardUpload(ctx, *note.ImageURL, err)
		}
		return nil, &PersistenceError{Op: "create", Err: err}
	}

	s.notifier.NotesChanged(actor.Subject)
	return &note, nil
}

func (s *NoteService) Update(ctx context.Context, id uint, userID string, in UpdateNoteInput) (*models.Note, error) {
	if userID == "" {
		return nil, ErrUnauthenticated
	}
	if err := validateNote(in.Title, in.Content); err != nil {
		return nil, err
	}
	if err := s.checkOwner(ctx, id, userID, "cập nhật"); err != nil {
		return nil, err
	}

	changes := repositories.NoteChanges{Title: in.Title, Content: in.Content}
	var uploaded string
	switch action := in.Image.(type) {
	case nil, KeepImage:
	case ClearImage:
		changes.SetImage = true
	case ReplaceImage:
		if action.Upload.empty() {
			break
		}
		path, err := s.uploadImage(ctx, action.Upload)
		if err != nil {
			return nil, err
		}
		uploaded = path
		changes.SetImage = true
		changes.ImageURL = &path
	default:
		return nil, &ValidationError{Field: "imageAction", Message: fmt.Sprintf("imageAction không hợp lệ: %T", action)}
	}

	note, err := s.notes.Update(ctx, id, changes)
	if err != nil {
		if uploaded != "" {
			s.discardUpload(ctx, uploaded, err)
		}
		// Bị xoá giữa chừng: xử lý như không có quyền
		if errors.Is(err, repositories.ErrNoteNotFound) {
			return nil, &AuthorizationError{Action: "cập nhật"}
		}
		return nil, &PersistenceError{Op: "update", Err: err}
	}

	s.notifier.NotesChanged(userID)
	return note, nil
}

func (s *NoteService) Delete(ctx context.Context, id uint, userID string) error {
	if userID == "" {
		return ErrUnauthenticated
	}
	if err := s.checkOwner(ctx, id, userID, "xoá"); err != nil {
		return err
	}
	if err := s.notes.Delete(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrNoteNotFound) {
			return &AuthorizationError{Action: "xoá"}
		}
		return &PersistenceError{Op: "delete", Err: err}
	}

	s.notifier.NotesChanged(userID)
	return nil
}

func (s *NoteService) checkOwner(ctx context.Context, id uint, userID, action string) error {
	note, err := s.notes.FindByID(ctx, id)
	if errors.Is(err, repositories.ErrNoteNotFound) {
		return &AuthorizationError{Action: action}
	}
	if err != nil {
		return &PersistenceError{Op: "find", Err: err}
	}
	if note.UserID != userID {
		return &AuthorizationError{Action: action}
	}
	return nil
}

// resolveImage thay path bằng signed URL; ký lỗi thì coi như không có ảnh
func (s *NoteService) resolveImage(ctx context.Context, note *models.Note) {
	if !note.HasImage() {
		note.ImageURL = nil
		return
	}
	url, err := s.storage.SignedURL(ctx, *note.ImageURL, s.signedURLTTL)
	if err != nil {
		log.Printf("Không tạo được signed URL cho ghi chú %d: %v", note.ID, err)
		note.ImageURL = nil
		return
	}
	note.ImageURL = &url
}

func (s *NoteService) uploadImage(ctx context.Context, up ImageUpload) (string, error) {
	if int64(len(up.Data)) > s.maxImageBytes {
		return "", &ValidationError{Field: "image", Message: fmt.Sprintf("Ảnh vượt quá %d bytes", s.maxImageBytes)}
	}
	contentType, err := utils.DetectImageType(up.Filename, up.Data)
	if err != nil {
		return "", &ValidationError{Field: "image", Message: "Định dạng ảnh không hỗ trợ (png, jpg, gif, webp)"}
	}
	path, err := s.storage.Upload(ctx, utils.ImageObjectPath(up.Filename), up.Data, contentType)
	if err != nil {
		return "", &StorageError{Op: "upload", Err: err}
	}
	return path, nil
}

// discardUpload xoá ảnh vừa upload khi ghi DB thất bại; xoá không được thì ghi sổ để job dọn sau
func (s *NoteService) discardUpload(ctx context.Context, path string, cause error) {
	ctx = context.WithoutCancel(ctx)
	err := s.storage.Remove(ctx, path)
	if err == nil {
		return
	}
	log.Printf("Không xoá được ảnh %s sau khi ghi DB lỗi: %v", path, err)
	if s.orphans == nil {
		return
	}
	if err := s.orphans.Record(ctx, path, cause.Error()); err != nil {
		log.Printf("Không ghi được ảnh mồ côi %s: %v", path, err)
	}
}

func validateNote(title, content string) error {
	title = strings.TrimSpace(title)
	content = strings.TrimSpace(content)

	if title == "" {
		return &ValidationError{Field: "title", Message: "Tiêu đề là bắt buộc (title is required)"}
	}
	if utf8.RuneCountInString(title) > TitleMaxLength {
		return &ValidationError{Field: "title", Message: fmt.Sprintf("Tiêu đề tối đa %d ký tự", TitleMaxLength)}
	}
	if content == "" {
		return &ValidationError{Field: "content", Message: "Nội dung là bắt buộc (content is required)"}
	}
	if utf8.RuneCountInString(content) > ContentMaxLength {
		return &ValidationError{Field: "content", Message: fmt.Sprintf("Nội dung tối đa %d ký tự", ContentMaxLength)}
	}
	return nil
}
