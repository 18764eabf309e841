package config

import (
	"os"
	"testing"
	"time"
)

func TestGetEnvOrDefault(t *testing.T) {
	tests := []struct {
		name       string
		key        string
		envValue   string
		defaultVal string
		expected   string
	}{
		{"uses env value", "TEST_VAR_1", "hello", "default", "hello"},
		{"uses default when empty", "TEST_VAR_2", "", "default", "default"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.envValue != "" {
				t.Setenv(tc.key, tc.envValue)
			}

			result := getEnvOrDefault(tc.key, tc.defaultVal)
			if result != tc.expected {
				t.Errorf("Expected %q, got %q", tc.expected, result)
			}
		})
	}
}

func TestGetEnvAsIntOrDefault(t *testing.T) {
	tests := []struct {
		name       string
		key        string
		envValue   string
		defaultVal int
		expected   int
	}{
		{"parses integer", "TEST_INT_1", "42", 10, 42},
		{"uses default for empty", "TEST_INT_2", "", 10, 10},
		{"uses default for non-numeric", "TEST_INT_3", "abc", 10, 10},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.envValue != "" {
				t.Setenv(tc.key, tc.envValue)
			}

			result := getEnvAsIntOrDefault(tc.key, tc.defaultVal)
			if result != tc.expected {
				t.Errorf("Expected %d, got %d", tc.expected, result)
			}
		})
	}
}

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{
		"LLM_PROVIDER", "GROQ_API_KEY", "GEMINI_API_KEY",
		"CHAT_MAX_ATTEMPTS", "CHAT_RETRY_BASE_MS", "CHAT_REQUEST_TIMEOUT_SECONDS",
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}

	cfg := Load()

	if cfg.LLMProvider != ProviderGroq {
		t.Errorf("Expected provider %q, got %q", ProviderGroq, cfg.LLMProvider)
	}
	if cfg.MaxAttempts != 3 {
		t.Errorf("Expected 3 attempts, got %d", cfg.MaxAttempts)
	}
	if cfg.RetryBaseDelay != time.Second {
		t.Errorf("Expected 1s base delay, got %s", cfg.RetryBaseDelay)
	}
	if cfg.RequestTimeout != 2*time.Minute {
		t.Errorf("Expected 2m request timeout, got %s", cfg.RequestTimeout)
	}
	if cfg.ProviderAPIKey() != "" {
		t.Errorf("Expected no API key, got %q", cfg.ProviderAPIKey())
	}
}

func TestLoad_MissingKeyDoesNotPanic(t *testing.T) {
	t.Setenv("LLM_PROVIDER", "gemini")
	t.Setenv("GEMINI_API_KEY", "")

	defer func() {
		if r := recover(); r != nil {
			t.Fatalf("Load panicked without an API key: %v", r)
		}
	}()

	cfg := Load()
	if cfg.ProviderAPIKey() != "" {
		t.Errorf("Expected empty key, got %q", cfg.ProviderAPIKey())
	}
}

func TestProviderAPIKey(t *testing.T) {
	cfg := &Config{LLMProvider: ProviderGemini, GeminiAPIKey: "g", GroqAPIKey: "q"}
	if cfg.ProviderAPIKey() != "g" {
		t.Errorf("Expected gemini key, got %q", cfg.ProviderAPIKey())
	}

	cfg.LLMProvider = ProviderGroq
	if cfg.ProviderAPIKey() != "q" {
		t.Errorf("Expected groq key, got %q", cfg.ProviderAPIKey())
	}

	cfg.LLMProvider = "unknown"
	if cfg.ProviderAPIKey() != "" {
		t.Errorf("Expected no key for unknown provider, got %q", cfg.ProviderAPIKey())
	}
}

func TestLoad_ClampsAttempts(t *testing.T) {
	t.Setenv("CHAT_MAX_ATTEMPTS", "0")

	cfg := Load()
	if cfg.MaxAttempts != 1 {
		t.Errorf("Expected attempts clamped to 1, got %d", cfg.MaxAttempts)
	}
}
