package utils

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	storage "github.com/supabase-community/storage-go"
)

// SupabaseStorage bọc Supabase Storage cho bucket ảnh của ghi chú.
// Object chỉ được truy cập qua signed URL, không dùng public URL.
type SupabaseStorage struct {
	client      *storage.Client
	storageBase string
	bucket      string
}

func NewSupabaseStorage(supabaseURL, supabaseKey, bucket string) *SupabaseStorage {
	base := strings.TrimRight(supabaseURL, "/") + "/storage/v1"
	return &SupabaseStorage{
		client:      storage.NewClient(base, supabaseKey, nil),
		storageBase: base,
		bucket:      bucket,
	}
}

// ImageObjectPath sinh path duy nhất: images/<uuid>_<slug tên file>.<ext>
func ImageObjectPath(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	base := slug.Make(strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename)))
	if base == "" {
		base = "image"
	}
	return fmt.Sprintf("images/%s_%s%s", uuid.NewString(), base, ext)
}

// Upload đẩy bytes lên bucket và trả về path đã lưu (không phải URL)
func (s *SupabaseStorage) Upload(ctx context.Context, path string, data []byte, contentType string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	options := storage.FileOptions{
		ContentType: &contentType,
	}
	if _, err := s.client.UploadFile(s.bucket, path, bytes.NewReader(data), options); err != nil {
		return "", fmt.Errorf("upload %s: %w", path, err)
	}
	return path, nil
}

// SignedURL tạo URL có thời hạn cho object path
func (s *SupabaseStorage) SignedURL(ctx context.Context, path string, ttl time.Duration) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	resp, err := s.client.CreateSignedUrl(s.bucket, path, int(ttl/time.Second))
	if err != nil {
		return "", fmt.Errorf("sign %s: %w", path, err)
	}
	if resp.SignedURL == "" {
		return "", fmt.Errorf("sign %s: empty signed url", path)
	}
	// Một số phiên bản API trả về đường dẫn tương đối
	if strings.HasPrefix(resp.SignedURL, "/") {
		return s.storageBase + resp.SignedURL, nil
	}
	return resp.SignedURL, nil
}

// Remove xoá object khỏi bucket
func (s *SupabaseStorage) Remove(ctx context.Context, path string) error {
	if path == "" {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := s.client.RemoveFile(s.bucket, []string{path}); err != nil {
		return fmt.Errorf("remove %s: %w", path, err)
	}
	return nil
}
