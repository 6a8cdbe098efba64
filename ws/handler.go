package ws

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/vnkhanh/notes-backend/middleware"
)

var connectedMessage = []byte(`{"type":"connected"}`)

// NewUpgrader chỉ nhận origin trong danh sách; danh sách rỗng thì nhận tất cả
func NewUpgrader(allowedOrigins []string) *websocket.Upgrader {
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = struct{}{}
	}
	return &websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" || len(allowed) == 0 {
				return true
			}
			_, ok := allowed[origin]
			return ok
		},
	}
}

// HandleNotesWebSocket mở change feed cho user; route phải nằm sau AuthMiddleware
func (h *Hub) HandleNotesWebSocket(upgrader *websocket.Upgrader) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := middleware.CurrentIdentity(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Thiếu token"})
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Println("WebSocket upgrade thất bại:", err)
			return
		}
		log.Printf("Notes WS connected: userID=%s\n", id.Subject)

		h.Register(id.Subject, conn, connectedMessage)
	}
}
