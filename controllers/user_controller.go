package controllers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vnkhanh/notes-backend/middleware"
	"github.com/vnkhanh/notes-backend/models"
	"github.com/vnkhanh/notes-backend/services"
	"github.com/vnkhanh/notes-backend/utils"
)

type UserProfiles interface {
	Profile(ctx context.Context, id utils.Identity) (*models.User, error)
}

type PasswordChanger interface {
	RequestPasswordChange(ctx context.Context, email string) error
}

type UserController struct {
	users    UserProfiles
	accounts PasswordChanger
}

func NewUserController(users UserProfiles, accounts PasswordChanger) *UserController {
	return &UserController{users: users, accounts: accounts}
}

// Thông tin session kèm bản ghi user
func (uc *UserController) Me(c *gin.Context) {
	id, ok := middleware.CurrentIdentity(c)
	if !ok {
		respondError(c, services.ErrUnauthenticated)
		return
	}

	user, err := uc.users.Profile(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": id, "user": user})
}

// Gửi mail đổi mật khẩu qua identity provider
func (uc *UserController) PasswordChange(c *gin.Context) {
	id, ok := middleware.CurrentIdentity(c)
	if !ok {
		respondError(c, services.ErrUnauthenticated)
		return
	}
	if id.Email == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Tài khoản không có email"})
		return
	}

	if err := uc.accounts.RequestPasswordChange(c.Request.Context(), id.Email); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Đã gửi email đổi mật khẩu, vui lòng kiểm tra hộp thư"})
}
