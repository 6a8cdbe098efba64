package notesync

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/vnkhanh/notes-backend/models"
)

// Transport là các lời gọi tới API ghi chú
type Transport interface {
	ListNotes(ctx context.Context) ([]models.Note, error)
	CreateNote(ctx context.Context, form NoteForm) (*models.Note, error)
	UpdateNote(ctx context.Context, id uint, form NoteForm) (*models.Note, error)
	DeleteNote(ctx context.Context, id uint) error
}

// Image là file ảnh đính kèm form
type Image struct {
	Filename string
	Data     []byte
}

// NoteForm là dữ liệu form tạo/cập nhật; ImageAction chỉ dùng khi cập nhật
type NoteForm struct {
	Title       string
	Content     string
	ImageAction string
	Image       *Image
}

// APIError là lỗi server trả về, Message lấy từ trường "error"
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("request thất bại (%d)", e.Status)
	}
	return e.Message
}

// HTTPTransport gọi REST API /api/notes bằng bearer token
type HTTPTransport struct {
	baseURL string
	token   func() string
	client  *http.Client
}

type HTTPOption func(*HTTPTransport)

func WithHTTPClient(c *http.Client) HTTPOption {
	return func(t *HTTPTransport) {
		if c != nil {
			t.client = c
		}
	}
}

// WithTokenSource đọc token mỗi lần gửi request (token có thể được làm mới)
func WithTokenSource(fn func() string) HTTPOption {
	return func(t *HTTPTransport) { t.token = fn }
}

func NewHTTPTransport(baseURL, token string, opts ...HTTPOption) *HTTPTransport {
	t := &HTTPTransport{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   func() string { return token },
		client: &http.Client{
			Timeout:   30 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *HTTPTransport) ListNotes(ctx context.Context) ([]models.Note, error) {
	var resp struct {
		Notes []models.Note `json:"notes"`
	}
	if err := t.do(ctx, http.MethodGet, "/api/notes", nil, "", &resp); err != nil {
		return nil, err
	}
	return resp.Notes, nil
}

func (t *HTTPTransport) CreateNote(ctx context.Context, form NoteForm) (*models.Note, error) {
	body, contentType, err := encodeForm(form, false)
	if err != nil {
		return nil, err
	}
	var resp struct {
		Note models.Note `json:"note"`
	}
	if err := t.do(ctx, http.MethodPost, "/api/notes", body, contentType, &resp); err != nil {
		return nil, err
	}
	return &resp.Note, nil
}

func (t *HTTPTransport) UpdateNote(ctx context.Context, id uint, form NoteForm) (*models.Note, error) {
	body, contentType, err := encodeForm(form, true)
	if err != nil {
		return nil, err
	}
	var resp struct {
		Note models.Note `json:"note"`
	}
	if err := t.do(ctx, http.MethodPut, notePath(id), body, contentType, &resp); err != nil {
		return nil, err
	}
	return &resp.Note, nil
}

func (t *HTTPTransport) DeleteNote(ctx context.Context, id uint) error {
	return t.do(ctx, http.MethodDelete, notePath(id), nil, "", nil)
}

func notePath(id uint) string {
	return "/api/notes/" + strconv.FormatUint(uint64(id), 10)
}

func encodeForm(form NoteForm, update bool) (io.Reader, string, error) {
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)

	fields := [][2]string{{"title", form.Title}, {"content", form.Content}}
	if update {
		action := form.ImageAction
		if action == "" {
			action = "keep"
		}
		fields = append(fields, [2]string{"imageAction", action})
	}
	for _, f := range fields {
		if err := w.WriteField(f[0], f[1]); err != nil {
			return nil, "", err
		}
	}

	if form.Image != nil {
		part, err := w.CreateFormFile("image", form.Image.Filename)
		if err != nil {
			return nil, "", err
		}
		if _, err := part.Write(form.Image.Data); err != nil {
			return nil, "", err
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return body, w.FormDataContentType(), nil
}

func (t *HTTPTransport) do(ctx context.Context, method, path string, body io.Reader, contentType string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, t.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if tok := t.token(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{Status: resp.StatusCode}
		var payload struct {
			Error string `json:"error"`
		}
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		if json.Unmarshal(raw, &payload) == nil {
			apiErr.Message = payload.Error
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
