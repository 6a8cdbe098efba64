package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/vnkhanh/notes-backend/repositories"
)

type Summarizer interface {
	Summarize(ctx context.Context, text string) (string, error)
}

// GeminiSummarizer tóm tắt nội dung ghi chú bằng Gemini
type GeminiSummarizer struct {
	apiKey string
	model  string
}

func NewGeminiSummarizer(apiKey, model string) *GeminiSummarizer {
	return &GeminiSummarizer{apiKey: apiKey, model: model}
}

func (g *GeminiSummarizer) Summarize(ctx context.Context, text string) (string, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(g.apiKey))
	if err != nil {
		return "", fmt.Errorf("không thể tạo Gemini client: %w", err)
	}
	defer client.Close()

	prompt := "Tóm tắt ghi chú sau trong tối đa 3 câu, giữ nguyên ngôn ngữ của ghi chú:\n\n" + text
	resp, err := client.GenerativeModel(g.model).GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("lỗi Gemini xử lý: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", errors.New("gemini không trả kết quả hợp lệ")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			sb.WriteString(string(t))
		}
	}
	if sb.Len() == 0 {
		return "", errors.New("gemini không trả kết quả hợp lệ")
	}
	return strings.TrimSpace(sb.String()), nil
}

type SummaryService struct {
	notes      repositories.NoteRepository
	summarizer Summarizer
}

func NewSummaryService(notes repositories.NoteRepository, summarizer Summarizer) *SummaryService {
	return &SummaryService{notes: notes, summarizer: summarizer}
}

// Summarize tóm tắt ghi chú thuộc về userID
func (s *SummaryService) Summarize(ctx context.Context, id uint, userID string) (string, error) {
	if userID == "" {
		return "", ErrUnauthenticated
	}
	if s.summarizer == nil {
		return "", ErrSummaryUnavailable
	}

	note, err := s.notes.FindByID(ctx, id)
	if errors.Is(err, repositories.ErrNoteNotFound) {
		return "", ErrNoteNotFound
	}
	if err != nil {
		return "", &PersistenceError{Op: "get", Err: err}
	}
	if note.UserID != userID {
		return "", ErrNoteNotFound
	}

	return s.summarizer.Summarize(ctx, PreCleanText(note.Title+"\n"+note.Content))
}

var (
	reSpaces    = regexp.MustCompile(`[ \t]+`)
	reMultiLine = regexp.MustCompile(`\n{2,}`)
)

// PreCleanText gom khoảng trắng và dòng trống trước khi gửi đi
func PreCleanText(text string) string {
	cleaned := strings.ReplaceAll(text, "\r\n", "\n")
	cleaned = reSpaces.ReplaceAllString(cleaned, " ")
	lines := strings.Split(cleaned, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSpace(l)
	}
	cleaned = reMultiLine.ReplaceAllString(strings.Join(lines, "\n"), "\n")
	return strings.TrimSpace(cleaned)
}
