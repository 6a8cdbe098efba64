package utils

import (
	"errors"
	"net/http"
	"path/filepath"
	"strings"
)

var ErrUnsupportedImageType = errors.New("định dạng ảnh không hỗ trợ")

var imageContentTypes = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
	".webp": "image/webp",
}

// DetectImageType ánh xạ phần mở rộng file sang content type, đối chiếu với nội dung thật
func DetectImageType(filename string, data []byte) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	contentType, ok := imageContentTypes[ext]
	if !ok {
		return "", ErrUnsupportedImageType
	}
	if len(data) > 0 {
		sniffed := http.DetectContentType(data)
		if strings.HasPrefix(sniffed, "image/") && sniffed != contentType {
			return sniffed, nil
		}
		if !strings.HasPrefix(sniffed, "image/") && sniffed != "application/octet-stream" {
			return "", ErrUnsupportedImageType
		}
	}
	return contentType, nil
}
