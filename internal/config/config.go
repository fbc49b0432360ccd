package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// ErrMissingAPIKey is fatal at startup: no shell may serve intents without a
// backend credential.
var ErrMissingAPIKey = errors.New("config: API_KEY environment variable not set")

const (
	defaultPort            = ":8080"
	defaultImageModel      = "gemini-2.5-flash-image"
	defaultTextModel       = "gemini-2.5-flash"
	defaultSessionMax      = 1024
	defaultSessionTTL      = 30 * time.Minute
	defaultUploadMaxMemory = 32 << 20
)

type Config struct {
	Port     string
	Env      string
	LogLevel string
	APIKey   string
	Models   ModelConfig
	Session  SessionConfig
	// UploadMaxMemory bounds multipart parsing in memory; larger parts spill
	// to temporary files.
	UploadMaxMemory int64
	// CORSOrigins may call the API cross-origin with the session cookie.
	CORSOrigins []string
}

type ModelConfig struct {
	Image string
	Text  string
}

type SessionConfig struct {
	Max int
	TTL time.Duration
}

// Load reads .env (when present) and the environment. A missing API key is
// reported as ErrMissingAPIKey alongside the rest of the config so callers
// that do not talk to the backend can still use it.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:     normalizePort(firstNonEmpty(strings.TrimSpace(os.Getenv("PORT")), defaultPort)),
		Env:      firstNonEmpty(strings.TrimSpace(os.Getenv("APP_ENV")), "local"),
		LogLevel: firstNonEmpty(strings.TrimSpace(os.Getenv("LOG_LEVEL")), "info"),
		APIKey: firstNonEmpty(
			strings.TrimSpace(os.Getenv("API_KEY")),
			strings.TrimSpace(os.Getenv("GEMINI_API_KEY")),
			strings.TrimSpace(os.Getenv("GOOGLE_API_KEY")),
		),
		Models: ModelConfig{
			Image: firstNonEmpty(strings.TrimSpace(os.Getenv("IMAGE_MODEL")), defaultImageModel),
			Text:  firstNonEmpty(strings.TrimSpace(os.Getenv("TEXT_MODEL")), defaultTextModel),
		},
		Session: SessionConfig{
			Max: envInt("SESSION_MAX", defaultSessionMax),
			TTL: envDuration("SESSION_TTL", defaultSessionTTL),
		},
		UploadMaxMemory: int64(envInt("UPLOAD_MAX_MEMORY", defaultUploadMaxMemory)),
		CORSOrigins:     envList("CORS_ALLOWED_ORIGINS"),
	}
	if cfg.APIKey == "" {
		return cfg, ErrMissingAPIKey
	}
	return cfg, nil
}

// IsLocal reports whether the process runs in the local development env.
func (c *Config) IsLocal() bool {
	return strings.EqualFold(strings.TrimSpace(c.Env), "local")
}

func normalizePort(port string) string {
	port = strings.TrimSpace(port)
	if port == "" || strings.Contains(port, ":") {
		return port
	}
	return ":" + port
}

// NormalizePort turns "8080" into ":8080" and leaves host:port forms alone.
func NormalizePort(port string) string { return normalizePort(port) }

func envInt(key string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}

func envDuration(key string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	v, err := time.ParseDuration(raw)
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}

func envList(key string) []string {
	var out []string
	for _, v := range strings.Split(os.Getenv(key), ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
