package routes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vnkhanh/notes-backend/controllers"
	"github.com/vnkhanh/notes-backend/models"
	"github.com/vnkhanh/notes-backend/services"
	"github.com/vnkhanh/notes-backend/utils"
	"github.com/vnkhanh/notes-backend/ws"
)

const secret = "routes-secret"

type listOnly struct{}

func (listOnly) List(ctx context.Context, userID string) ([]models.Note, error) {
	return []models.Note{{ID: 1, UserID: userID, Title: "t", Content: "c"}}, nil
}
func (listOnly) GetByID(ctx context.Context, id uint, userID string) (*models.Note, error) {
	return nil, services.ErrNoteNotFound
}
func (listOnly) Create(ctx context.Context, actor utils.Identity, in services.CreateNoteInput) (*models.Note, error) {
	return nil, &services.ValidationError{Field: "title", Message: "Tiêu đề là bắt buộc (title is required)"}
}
func (listOnly) Update(ctx context.Context, id uint, userID string, in services.UpdateNoteInput) (*models.Note, error) {
	return nil, &services.AuthorizationError{Action: "cập nhật"}
}
func (listOnly) Delete(ctx context.Context, id uint, userID string) error { return nil }

type noProfiles struct{}

func (noProfiles) Profile(ctx context.Context, id utils.Identity) (*models.User, error) { return nil, nil }

func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return SetupRouter(gin.New(), Deps{
		Verifier:  utils.NewHMACVerifier(secret, "", ""),
		Notes:     controllers.NewNoteController(listOnly{}, nil),
		Users:     controllers.NewUserController(noProfiles{}, services.NewAccountService("", "", nil)),
		Hub:       ws.NewHub(),
		RateRPS:   100,
		RateBurst: 100,
	})
}

func TestSetupRouter(t *testing.T) {
	r := newTestRouter()
	token, err := utils.GenerateToken(secret, utils.Identity{Subject: "u1", Email: "u1@example.com"}, time.Hour)
	require.NoError(t, err)

	tests := []struct {
		method, path string
		auth         bool
		status       int
	}{
		{http.MethodGet, "/ping", false, http.StatusOK},
		{http.MethodGet, "/health", false, http.StatusServiceUnavailable},
		{http.MethodGet, "/api/notes", false, http.StatusUnauthorized},
		{http.MethodGet, "/api/notes", true, http.StatusOK},
		{http.MethodGet, "/api/notes/1", true, http.StatusNotFound},
		{http.MethodPost, "/api/notes", true, http.StatusBadRequest},
		{http.MethodPut, "/api/notes/1", true, http.StatusForbidden},
		{http.MethodDelete, "/api/notes/1", true, http.StatusOK},
		{http.MethodGet, "/api/notes/1/summary", true, http.StatusServiceUnavailable},
		{http.MethodGet, "/api/user/me", true, http.StatusOK},
		{http.MethodPost, "/api/user/password-change", true, http.StatusServiceUnavailable},
		{http.MethodGet, "/ws/notes", false, http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.auth {
				req.Header.Set("Authorization", "Bearer "+token)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tt.status, w.Code)
		})
	}
}
