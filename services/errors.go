package services

import (
	"errors"
	"fmt"
)

var (
	// ErrNoteNotFound: không phân biệt "không tồn tại" và "của người khác" khi đọc
	ErrNoteNotFound = errors.New("không tìm thấy ghi chú")
	// ErrUnauthenticated khi không có user đang thao tác
	ErrUnauthenticated = &AuthorizationError{Unauthenticated: true}
	// ErrSummaryUnavailable khi chưa cấu hình dịch vụ tóm tắt
	ErrSummaryUnavailable = errors.New("dịch vụ tóm tắt chưa được cấu hình")
)

// ValidationError: dữ liệu đầu vào sai, trả nguyên văn cho người dùng
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// AuthorizationError dùng chung cho "không tồn tại" và "không phải chủ sở hữu",
// cùng một thông báo để không lộ ghi chú của người khác
type AuthorizationError struct {
	Action          string
	Unauthenticated bool
}

func (e *AuthorizationError) Error() string {
	if e.Unauthenticated {
		return "người dùng chưa được xác thực, vui lòng đăng nhập"
	}
	return fmt.Sprintf("bạn không có quyền %s ghi chú này", e.Action)
}

// StorageError: lỗi upload hoặc ký URL ở object storage
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// PersistenceError: lỗi từ tầng lưu trữ DB
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
