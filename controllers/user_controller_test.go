package controllers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vnkhanh/notes-backend/models"
	"github.com/vnkhanh/notes-backend/services"
	"github.com/vnkhanh/notes-backend/utils"
)

type stubProfiles struct {
	user *models.User
	err  error
}

func (s stubProfiles) Profile(ctx context.Context, id utils.Identity) (*models.User, error) {
	return s.user, s.err
}

type stubAccounts struct {
	email string
	err   error
}

func (s *stubAccounts) RequestPasswordChange(ctx context.Context, email string) error {
	s.email = email
	return s.err
}

func newUserRouter(id utils.Identity, uc *UserController) *gin.Engine {
	r := gin.New()
	g := r.Group("/api/user", withIdentity(id))
	g.GET("/me", uc.Me)
	g.POST("/password-change", uc.PasswordChange)
	return r
}

func TestUserController_Me(t *testing.T) {
	name := "Alice"
	uc := NewUserController(stubProfiles{user: &models.User{ID: alice.Subject, Email: alice.Email, Name: &name}}, &stubAccounts{})
	w := do(newUserRouter(alice, uc), httptest.NewRequest(http.MethodGet, "/api/user/me", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"sub":"auth0|alice"`)
	assert.Contains(t, w.Body.String(), `"email":"alice@example.com"`)
}

func TestUserController_MeUnauthenticated(t *testing.T) {
	uc := NewUserController(stubProfiles{}, &stubAccounts{})
	w := do(newUserRouter(utils.Identity{}, uc), httptest.NewRequest(http.MethodGet, "/api/user/me", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestUserController_PasswordChange(t *testing.T) {
	accounts := &stubAccounts{}
	uc := NewUserController(stubProfiles{}, accounts)

	w := do(newUserRouter(alice, uc), httptest.NewRequest(http.MethodPost, "/api/user/password-change", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, alice.Email, accounts.email)

	w = do(newUserRouter(utils.Identity{Subject: "auth0|noemail"}, uc), httptest.NewRequest(http.MethodPost, "/api/user/password-change", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUserController_PasswordChangeErrors(t *testing.T) {
	uc := NewUserController(stubProfiles{}, &stubAccounts{err: services.ErrAccountNotConfigured})
	w := do(newUserRouter(alice, uc), httptest.NewRequest(http.MethodPost, "/api/user/password-change", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	uc = NewUserController(stubProfiles{}, &stubAccounts{err: errors.New("provider 500")})
	w = do(newUserRouter(alice, uc), httptest.NewRequest(http.MethodPost, "/api/user/password-change", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
