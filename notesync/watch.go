package notesync

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"

	"github.com/gorilla/websocket"
)

const eventNotesChanged = "notes_changed"

type feedEvent struct {
	Type string `json:"type"`
}

// Watch nghe change feed /ws/notes và invalidate store mỗi khi có sự kiện notes_changed.
// Chạy tới khi ctx bị huỷ hoặc kết nối đóng.
func Watch(ctx context.Context, wsURL, token string, store *Store) error {
	u, err := url.Parse(wsURL)
	if err != nil {
		return fmt.Errorf("ws url không hợp lệ: %w", err)
	}
	if token != "" {
		q := u.Query()
		q.Set("token", token)
		u.RawQuery = q.Encode()
	}

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusUnauthorized {
			return &APIError{Status: resp.StatusCode, Message: "token không hợp lệ"}
		}
		return fmt.Errorf("kết nối change feed thất bại: %w", err)
	}
	defer conn.Close()

	stop := context.AfterFunc(ctx, func() {
		conn.Close()
	})
	defer stop()

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return fmt.Errorf("đọc change feed lỗi: %w", err)
		}

		var ev feedEvent
		if err := json.Unmarshal(msg, &ev); err != nil {
			log.Printf("[notes] bỏ qua message không hợp lệ: %s", msg)
			continue
		}
		if ev.Type == eventNotesChanged {
			store.Invalidate()
		}
	}
}
