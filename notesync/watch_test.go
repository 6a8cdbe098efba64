package notesync

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vnkhanh/notes-backend/middleware"
	"github.com/vnkhanh/notes-backend/models"
	"github.com/vnkhanh/notes-backend/utils"
	"github.com/vnkhanh/notes-backend/ws"
)

const watchSecret = "watch-secret"

func newFeed(t *testing.T) (*ws.Hub, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	hub := ws.NewHub()
	r := gin.New()
	r.GET("/ws/notes",
		middleware.AuthMiddleware(utils.NewHMACVerifier(watchSecret, "", "")),
		hub.HandleNotesWebSocket(ws.NewUpgrader(nil)))
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return hub, "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/notes"
}

func TestWatch_InvalidatesOnNotesChanged(t *testing.T) {
	hub, url := newFeed(t)
	token, err := utils.GenerateToken(watchSecret, utils.Identity{Subject: "u1"}, time.Hour)
	require.NoError(t, err)

	ft := newFakeTransport(models.Note{ID: 1, Title: "A"})
	s := NewStore(ft, WithInitialNotes(ft.notes))

	wctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Watch(wctx, url, token, s) }()

	require.Eventually(t, func() bool { return hub.GetStats()["connections"] == 1 }, 2*time.Second, 10*time.Millisecond)

	// server đổi dữ liệu rồi báo qua feed
	ft.mu.Lock()
	ft.notes[0].Title = "B"
	ft.mu.Unlock()
	hub.NotesChanged("u1")

	require.Eventually(t, func() bool {
		notes := s.Notes()
		return len(notes) == 1 && notes[0].Title == "B"
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("Watch không dừng khi ctx bị huỷ")
	}
	s.Wait()
}

func TestWatch_Unauthorized(t *testing.T) {
	_, url := newFeed(t)
	s := NewStore(newFakeTransport())

	err := Watch(context.Background(), url, "bad-token", s)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 401, apiErr.Status)
}
