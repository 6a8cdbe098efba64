package ws

import (
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	sendBuffer = 16
)

// Sự kiện gửi cho client khi danh sách ghi chú thay đổi
var notesChangedMessage = []byte(`{"type":"notes_changed"}`)

type Client struct {
	UserID string
	Conn   *websocket.Conn
	Send   chan []byte
}

// Hub giữ các kết nối theo từng user
type Hub struct {
	mu      sync.RWMutex
	clients map[string]map[*Client]struct{}
}

func NewHub() *Hub {
	return &Hub{clients: make(map[string]map[*Client]struct{})}
}

// Register thêm kết nối của user và chạy read/write pump; greeting được gửi trước mọi sự kiện
func (h *Hub) Register(userID string, conn *websocket.Conn, greeting ...[]byte) *Client {
	client := &Client{
		UserID: userID,
		Conn:   conn,
		Send:   make(chan []byte, sendBuffer+len(greeting)),
	}
	for _, msg := range greeting {
		client.Send <- msg
	}

	h.mu.Lock()
	if _, ok := h.clients[userID]; !ok {
		h.clients[userID] = make(map[*Client]struct{})
	}
	h.clients[userID][client] = struct{}{}
	h.mu.Unlock()

	go h.writePump(client)
	go h.readPump(client)
	return client
}

// Unregister an toàn khi gọi nhiều lần
func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients, ok := h.clients[client.UserID]
	if !ok {
		return
	}
	if _, ok := clients[client]; ok {
		close(client.Send)
		delete(clients, client)
	}
	if len(clients) == 0 {
		delete(h.clients, client.UserID)
	}
}

// NotesChanged báo cho mọi kết nối của user tải lại danh sách
func (h *Hub) NotesChanged(userID string) {
	h.broadcast(userID, notesChangedMessage)
}

func (h *Hub) broadcast(userID string, data []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.clients[userID] {
		select {
		case client.Send <- data:
		default:
			// client chậm: bỏ tin, lần thay đổi sau vẫn kích hoạt tải lại
			log.Printf("[WS] Bỏ qua message cho user %s, hàng đợi đầy", userID)
		}
	}
}

func (h *Hub) GetStats() map[string]int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	conns := 0
	for _, clients := range h.clients {
		conns += len(clients)
	}
	return map[string]int{
		"users":       len(h.clients),
		"connections": conns,
	}
}

func (h *Hub) readPump(client *Client) {
	defer func() {
		h.Unregister(client)
		client.Conn.Close()
	}()

	client.Conn.SetReadLimit(512)
	client.Conn.SetReadDeadline(time.Now().Add(pongWait))
	client.Conn.SetPongHandler(func(string) error {
		return client.Conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := client.Conn.ReadMessage(); err != nil {
			break
		}
	}
}

func (h *Hub) writePump(client *Client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		client.Conn.Close()
	}()

	for {
		select {
		case msg, ok := <-client.Send:
			client.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				client.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := client.Conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			client.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := client.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
