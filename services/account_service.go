package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const passwordResetConnection = "Username-Password-Authentication"

var ErrAccountNotConfigured = errors.New("chưa cấu hình domain hoặc client ID của identity provider")

// AccountService gọi identity provider cho các thao tác tài khoản
type AccountService struct {
	baseURL  string
	clientID string
	client   *http.Client
}

func NewAccountService(domain, clientID string, client *http.Client) *AccountService {
	if client == nil {
		client = &http.Client{
			Timeout:   10 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}
	base := strings.TrimRight(domain, "/")
	if base != "" && !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
		base = "https://" + base
	}
	return &AccountService{baseURL: base, clientID: clientID, client: client}
}

// RequestPasswordChange yêu cầu provider gửi mail đổi mật khẩu tới email của user
func (s *AccountService) RequestPasswordChange(ctx context.Context, email string) error {
	if s.baseURL == "" || s.clientID == "" {
		return ErrAccountNotConfigured
	}
	if strings.TrimSpace(email) == "" {
		return &ValidationError{Field: "email", Message: "Không lấy được địa chỉ email của người dùng"}
	}

	payload, err := json.Marshal(map[string]string{
		"client_id":  s.clientID,
		"email":      email,
		"connection": passwordResetConnection,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/dbconnections/change_password", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("password change request failed (%d): %s", resp.StatusCode, string(body))
	}
	return nil
}
