package services

import (
	"context"
	"errors"

	"github.com/vnkhanh/notes-backend/models"
	"github.com/vnkhanh/notes-backend/repositories"
	"github.com/vnkhanh/notes-backend/utils"
)

type UserService struct {
	users repositories.UserRepository
}

func NewUserService(users repositories.UserRepository) *UserService {
	return &UserService{users: users}
}

// EnsureUser tìm user theo sub, chưa có thì tạo mới
func (s *UserService) EnsureUser(ctx context.Context, id utils.Identity) (*models.User, error) {
	if id.Subject == "" || id.Email == "" {
		return nil, &ValidationError{Field: "user", Message: "Thông tin người dùng không đầy đủ"}
	}

	user := models.User{ID: id.Subject, Email: id.Email}
	if id.Name != "" {
		name := id.Name
		user.Name = &name
	}
	if err := s.users.Upsert(ctx, &user); err != nil {
		return nil, &PersistenceError{Op: "upsert user", Err: err}
	}

	stored, err := s.users.FindByID(ctx, id.Subject)
	if errors.Is(err, repositories.ErrUserNotFound) {
		return &user, nil
	}
	if err != nil {
		return nil, &PersistenceError{Op: "find user", Err: err}
	}
	return stored, nil
}

// ensureIfComplete chỉ tạo user khi session có đủ sub và email, thiếu thì bỏ qua
func (s *UserService) ensureIfComplete(ctx context.Context, id utils.Identity) error {
	if id.Subject == "" || id.Email == "" {
		return nil
	}
	user := models.User{ID: id.Subject, Email: id.Email}
	if id.Name != "" {
		name := id.Name
		user.Name = &name
	}
	if err := s.users.Upsert(ctx, &user); err != nil {
		return &PersistenceError{Op: "upsert user", Err: err}
	}
	return nil
}

// Profile trả về user đã lưu; session thiếu email và chưa có bản ghi thì trả nil
func (s *UserService) Profile(ctx context.Context, id utils.Identity) (*models.User, error) {
	if id.Subject == "" {
		return nil, ErrUnauthenticated
	}
	if id.Email != "" {
		return s.EnsureUser(ctx, id)
	}
	user, err := s.users.FindByID(ctx, id.Subject)
	if errors.Is(err, repositories.ErrUserNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, &PersistenceError{Op: "find user", Err: err}
	}
	return user, nil
}
