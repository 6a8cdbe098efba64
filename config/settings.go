package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	defaultPort           = "8080"
	defaultSignedURLTTL   = 24 * time.Hour
	defaultMaxImageBytes  = 5 * 1024 * 1024
	defaultRateLimitRPS   = 20
	defaultRateLimitBurst = 40
	defaultGeminiModel    = "gemini-2.0-flash"
)

// Settings gom toàn bộ cấu hình ứng dụng đọc từ môi trường
type Settings struct {
	Port           string
	AllowedOrigins []string

	SupabaseURL    string
	SupabaseKey    string
	SupabaseBucket string
	SignedURLTTL   time.Duration
	MaxImageBytes  int64

	JWTSecret      string
	JWTIssuer      string
	JWTAudience    string
	GoogleClientID string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	GeminiAPIKey string
	GeminiModel  string

	Auth0Domain   string
	Auth0ClientID string

	RateLimitRPS   int
	RateLimitBurst int
}

// LoadSettings đọc biến môi trường, thiếu biến bắt buộc thì trả lỗi ngay khi khởi động
func LoadSettings() (*Settings, error) {
	var missing []string
	required := func(key string) string {
		v := strings.TrimSpace(os.Getenv(key))
		if v == "" {
			missing = append(missing, key)
		}
		return v
	}

	s := &Settings{
		Port:           getEnv("PORT", defaultPort),
		AllowedOrigins: splitList(getEnv("CORS_ORIGINS", "http://localhost:5173")),
		SupabaseURL:    strings.TrimRight(required("SUPABASE_URL"), "/"),
		SupabaseKey:    required("SUPABASE_KEY"),
		SupabaseBucket: required("SUPABASE_BUCKET_NAME"),
		JWTSecret:      required("JWT_SECRET"),
		JWTIssuer:      os.Getenv("JWT_ISSUER"),
		JWTAudience:    os.Getenv("JWT_AUDIENCE"),
		GoogleClientID: os.Getenv("GOOGLE_CLIENT_ID"),
		RedisAddr:      os.Getenv("REDIS_ADDR"),
		RedisPassword:  os.Getenv("REDIS_PASSWORD"),
		GeminiAPIKey:   os.Getenv("GEMINI_API_KEY"),
		GeminiModel:    getEnv("GEMINI_MODEL", defaultGeminiModel),
		Auth0Domain:    os.Getenv("AUTH0_DOMAIN"),
		Auth0ClientID:  os.Getenv("AUTH0_CLIENT_ID"),
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("thiếu biến môi trường: %s", strings.Join(missing, ", "))
	}

	ttl, err := getInt("SIGNED_URL_TTL_SECONDS", int(defaultSignedURLTTL/time.Second))
	if err != nil {
		return nil, err
	}
	s.SignedURLTTL = time.Duration(ttl) * time.Second

	maxBytes, err := getInt("MAX_IMAGE_BYTES", defaultMaxImageBytes)
	if err != nil {
		return nil, err
	}
	s.MaxImageBytes = int64(maxBytes)

	if s.RedisDB, err = getInt("REDIS_DB", 0); err != nil {
		return nil, err
	}
	if s.RateLimitRPS, err = getInt("RATE_LIMIT_RPS", defaultRateLimitRPS); err != nil {
		return nil, err
	}
	if s.RateLimitBurst, err = getInt("RATE_LIMIT_BURST", defaultRateLimitBurst); err != nil {
		return nil, err
	}

	return s, nil
}

func getEnv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getInt(key string, def int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s không hợp lệ: %w", key, err)
	}
	if v < 0 {
		return 0, fmt.Errorf("%s không được âm", key)
	}
	return v, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
