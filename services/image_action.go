package services

import "fmt"

// ImageUpload là file ảnh nhận từ form
type ImageUpload struct {
	Filename string
	Data     []byte
}

func (u *ImageUpload) empty() bool {
	return u == nil || len(u.Data) == 0
}

// ImageAction là thao tác với ảnh khi cập nhật ghi chú: KeepImage, ClearImage hoặc ReplaceImage
type ImageAction interface {
	imageAction()
}

// KeepImage giữ nguyên ảnh, image_url không có trong payload update
type KeepImage struct{}

// ClearImage xoá liên kết ảnh (image_url = NULL), không gọi storage
type ClearImage struct{}

// ReplaceImage upload ảnh mới, path mới thành image_url
type ReplaceImage struct {
	Upload ImageUpload
}

func (KeepImage) imageAction()    {}
func (ClearImage) imageAction()   {}
func (ReplaceImage) imageAction() {}

// Giá trị imageAction trên form
const (
	ImageActionKeep   = "keep"
	ImageActionClear  = "clear"
	ImageActionUpdate = "update"
)

// ParseImageAction chuyển giá trị form sang ImageAction.
// "update" mà không kèm file (hoặc file rỗng) được coi là "keep", không báo lỗi.
// Giá trị rỗng cũng là "keep".
func ParseImageAction(action string, file *ImageUpload) (ImageAction, error) {
	switch action {
	case "", ImageActionKeep:
		return KeepImage{}, nil
	case ImageActionClear:
		return ClearImage{}, nil
	case ImageActionUpdate:
		if file.empty() {
			return KeepImage{}, nil
		}
		return ReplaceImage{Upload: *file}, nil
	default:
		return nil, &ValidationError{Field: "imageAction", Message: fmt.Sprintf("imageAction không hợp lệ: %q", action)}
	}
}
