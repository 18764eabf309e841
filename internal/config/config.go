package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	ProviderGroq   = "groq"
	ProviderGemini = "gemini"
)

type Config struct {
	// Server
	Port string
	Env  string

	// Upstream provider
	LLMProvider string

	// Groq
	GroqAPIKey      string
	GroqModel       string
	GroqVisionModel string
	GroqBaseURL     string

	// Gemini AI
	GeminiAPIKey string
	GeminiModel  string

	// Chat relay
	MaxAttempts    int
	RetryBaseDelay time.Duration
	RequestTimeout time.Duration
	MaxBodyBytes   int64

	// Redis (optional, relay events)
	RedisURL string

	// Frontend
	FrontendURL string
}

func Load() *Config {
	// Load .env file if it exists
	godotenv.Load()

	cfg := &Config{
		Port:            getEnvOrDefault("PORT", "8080"),
		Env:             getEnvOrDefault("ENV", "development"),
		LLMProvider:     strings.ToLower(getEnvOrDefault("LLM_PROVIDER", ProviderGroq)),
		GroqAPIKey:      os.Getenv("GROQ_API_KEY"),
		GroqModel:       getEnvOrDefault("GROQ_MODEL", "llama3-8b-8192"),
		GroqVisionModel: getEnvOrDefault("GROQ_VISION_MODEL", "llama-3.2-11b-vision-preview"),
		GroqBaseURL:     getEnvOrDefault("GROQ_BASE_URL", "https://api.groq.com/openai/v1"),
		GeminiAPIKey:    os.Getenv("GEMINI_API_KEY"),
		GeminiModel:     getEnvOrDefault("GEMINI_MODEL", "gemini-2.0-flash"),
		MaxAttempts:     getEnvAsIntOrDefault("CHAT_MAX_ATTEMPTS", 3),
		RetryBaseDelay:  time.Duration(getEnvAsIntOrDefault("CHAT_RETRY_BASE_MS", 1000)) * time.Millisecond,
		RequestTimeout:  time.Duration(getEnvAsIntOrDefault("CHAT_REQUEST_TIMEOUT_SECONDS", 120)) * time.Second,
		MaxBodyBytes:    int64(getEnvAsIntOrDefault("CHAT_MAX_BODY_BYTES", 10<<20)),
		RedisURL:        getEnvOrDefault("REDIS_URL", ""),
		FrontendURL:     getEnvOrDefault("FRONTEND_URL", "*"),
	}

	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}

	return cfg
}

// ProviderAPIKey returns the credential of the selected provider. An empty
// result is a configuration error reported per request, not at startup.
func (c *Config) ProviderAPIKey() string {
	switch c.LLMProvider {
	case ProviderGemini:
		return c.GeminiAPIKey
	case ProviderGroq:
		return c.GroqAPIKey
	default:
		return ""
	}
}

func getEnvOrDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func getEnvAsIntOrDefault(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return n
}
