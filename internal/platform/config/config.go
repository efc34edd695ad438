package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DefaultLiveModel = "gemini-2.5-flash-native-audio-preview-09-2025"
	DefaultTTSModel  = "gemini-2.5-flash-preview-tts"
	DefaultTextModel = "gemini-3-flash-preview"
)

// Config agrupa toda la configuración por env del servicio y del CLI.
type Config struct {
	Port string

	// DB_DSN vacío => repos in-memory.
	DBDSN            string
	DBMigrate        bool
	DBMaxConns       int
	DBConnectRetries int

	GeminiAPIKey string
	LiveModel    string
	TTSModel     string
	TextModel    string

	CORSAllowedOrigins []string

	IAMBaseURL string
	IAMAPIKey  string

	PlansBaseURL         string
	PlansAPIKey          string
	AllowAllCapabilities bool

	AlertPollInterval time.Duration
	LowStockThreshold int

	ShutdownTimeout time.Duration
}

// Load lee .env si existe (no es error que falte) y después el entorno.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, err
	}
	return FromEnv(), nil
}

func FromEnv() Config {
	apiKey := envOr("GEMINI_API_KEY", "")
	if apiKey == "" {
		apiKey = envOr("GOOGLE_API_KEY", "")
	}

	return Config{
		Port: envOr("PORT", "8080"),

		DBDSN:            envOr("DB_DSN", ""),
		DBMigrate:        envBoolOr("DB_MIGRATE", true),
		DBMaxConns:       envIntOr("DB_MAX_CONNS", 10),
		DBConnectRetries: envIntOr("DB_CONNECT_RETRIES", 5),

		GeminiAPIKey: apiKey,
		LiveModel:    envOr("GEMINI_LIVE_MODEL", DefaultLiveModel),
		TTSModel:     envOr("GEMINI_TTS_MODEL", DefaultTTSModel),
		TextModel:    envOr("GEMINI_TEXT_MODEL", DefaultTextModel),

		CORSAllowedOrigins: splitCSV(envOr("CORS_ALLOWED_ORIGINS", "http://localhost:3000,http://localhost:5173")),

		IAMBaseURL: envOr("IAM_BASE_URL", ""),
		IAMAPIKey:  envOr("IAM_API_KEY", ""),

		PlansBaseURL:         envOr("PLANS_BASE_URL", ""),
		PlansAPIKey:          envOr("PLANS_API_KEY", ""),
		AllowAllCapabilities: envBoolOr("ALLOW_ALL_CAPABILITIES", false),

		AlertPollInterval: envDurationOr("ALERT_POLL_INTERVAL", time.Minute),
		LowStockThreshold: envIntOr("LOW_STOCK_THRESHOLD", 5),

		ShutdownTimeout: envDurationOr("SHUTDOWN_TIMEOUT", 10*time.Second),
	}
}

func (c Config) Addr() string {
	return ":" + strings.TrimPrefix(c.Port, ":")
}

func envOr(key, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}

func envIntOr(key string, def int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return n
}

func envBoolOr(key string, def bool) bool {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	switch strings.ToLower(raw) {
	case "1", "true", "t", "yes", "y", "on":
		return true
	case "0", "false", "f", "no", "n", "off":
		return false
	default:
		return def
	}
}

func envDurationOr(key string, def time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return def
	}
	return d
}

func splitCSV(raw string) []string {
	out := make([]string, 0)
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
