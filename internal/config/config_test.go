package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/koscakluka/ema-desk/core/llms/vendor"
)

func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name        string
		modify      func(*Config)
		expectError bool
		errorMsg    string
	}{
		{
			name:   "default configuration",
			modify: func(*Config) {},
		},
		{
			name:        "unknown vendor",
			modify:      func(c *Config) { c.Completions.Vendor = "mistral" },
			expectError: true,
			errorMsg:    "unsupported completions vendor",
		},
		{
			name:        "empty model",
			modify:      func(c *Config) { c.Completions.Model = "" },
			expectError: true,
			errorMsg:    "model cannot be empty",
		},
		{
			name:        "negative max tokens",
			modify:      func(c *Config) { c.Completions.MaxTokens = -1 },
			expectError: true,
			errorMsg:    "max_tokens cannot be negative",
		},
		{
			name: "temperature out of range",
			modify: func(c *Config) {
				temperature := 3.0
				c.Completions.Temperature = &temperature
			},
			expectError: true,
			errorMsg:    "temperature must be between 0 and 2",
		},
		{
			name: "markers disabled",
			modify: func(c *Config) {
				c.Segmenter.StartSeq = ""
				c.Segmenter.EndSeq = ""
			},
		},
		{
			name:        "only one marker",
			modify:      func(c *Config) { c.Segmenter.EndSeq = "" },
			expectError: true,
			errorMsg:    "must both be set or both be empty",
		},
		{
			name:        "marker with whitespace",
			modify:      func(c *Config) { c.Segmenter.StartSeq = "CLIP START" },
			expectError: true,
			errorMsg:    "contains whitespace",
		},
		{
			name: "identical markers",
			modify: func(c *Config) {
				c.Segmenter.StartSeq = "@@"
				c.Segmenter.EndSeq = "@@"
			},
			expectError: true,
			errorMsg:    "must differ",
		},
		{
			name:        "negative history budget",
			modify:      func(c *Config) { c.Assistant.MaxHistoryTokens = -5 },
			expectError: true,
			errorMsg:    "max_history_tokens cannot be negative",
		},
		{
			name:        "invalid log level",
			modify:      func(c *Config) { c.Logging.Level = "loud" },
			expectError: true,
			errorMsg:    "invalid level",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := Default()
			tt.modify(&config)

			err := config.Validate()
			if tt.expectError {
				if err == nil {
					t.Fatalf("expected error but got none")
				}
				if !strings.Contains(err.Error(), tt.errorMsg) {
					t.Fatalf("expected error containing %q, got %q", tt.errorMsg, err.Error())
				}
				return
			}
			if err != nil {
				t.Fatalf("expected no error but got: %v", err)
			}
		})
	}
}

func TestUnknownVendorWrapsSentinel(t *testing.T) {
	config := Default()
	config.Completions.Vendor = "mistral"

	if err := config.Validate(); !errors.Is(err, vendor.ErrUnsupportedVendor) {
		t.Fatalf("expected ErrUnsupportedVendor, got %v", err)
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	configContent := `
completions:
  vendor: groq
  model: llama-3.1-8b-instant
segmenter:
  start_seq: "<<"
  end_seq: ">>"
  flush_on_error: true
assistant:
  max_history_tokens: 2000
`
	if err := os.WriteFile(configPath, []byte(configContent), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	envPath := filepath.Join(dir, ".env")
	if err := os.WriteFile(envPath, []byte("EMA_MODEL_TEST_KEY=from-dotenv\n"), 0o644); err != nil {
		t.Fatalf("failed to write env file: %v", err)
	}
	t.Setenv("EMA_MODEL_TEST_KEY", "")
	os.Unsetenv("EMA_MODEL_TEST_KEY")
	t.Setenv("EMA_MAX_TOKENS", "256")

	config, err := Load(configPath, envPath)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if config.Completions.Vendor != "groq" || config.Completions.Model != "llama-3.1-8b-instant" {
		t.Fatalf("unexpected completions config %+v", config.Completions)
	}
	if config.Completions.MaxTokens != 256 {
		t.Fatalf("expected env override of max tokens, got %d", config.Completions.MaxTokens)
	}
	if config.Segmenter.StartSeq != "<<" || config.Segmenter.EndSeq != ">>" || !config.Segmenter.FlushOnError {
		t.Fatalf("unexpected segmenter config %+v", config.Segmenter)
	}
	if config.Assistant.MaxHistoryTokens != 2000 {
		t.Fatalf("unexpected history budget %d", config.Assistant.MaxHistoryTokens)
	}
	if config.Assistant.SystemPrompt != DefaultSystemPrompt {
		t.Fatalf("expected default system prompt to be kept")
	}
	if got := os.Getenv("EMA_MODEL_TEST_KEY"); got != "from-dotenv" {
		t.Fatalf("expected .env to be loaded, got %q", got)
	}
}

func TestLoadWithoutFiles(t *testing.T) {
	config, err := Load("", filepath.Join(t.TempDir(), "missing.env"))
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if config.Completions.Vendor != string(vendor.OpenAI) {
		t.Fatalf("expected default vendor, got %q", config.Completions.Vendor)
	}
}

func TestLoadInvalidEnv(t *testing.T) {
	t.Setenv("EMA_FLUSH_ON_ERROR", "sometimes")

	if _, err := Load("", filepath.Join(t.TempDir(), "missing.env")); err == nil || !strings.Contains(err.Error(), "EMA_FLUSH_ON_ERROR") {
		t.Fatalf("expected invalid env error, got %v", err)
	}
}

func TestAPIKey(t *testing.T) {
	t.Setenv("GROQ_API_KEY", "groq-key")
	t.Setenv("CUSTOM_KEY", "custom")

	tests := []struct {
		config CompletionsConfig
		want   string
	}{
		{config: CompletionsConfig{Vendor: "groq"}, want: "groq-key"},
		{config: CompletionsConfig{Vendor: "groq", APIKeyEnv: "CUSTOM_KEY"}, want: "custom"},
		{config: CompletionsConfig{Vendor: "ollama"}, want: ""},
	}

	for _, tt := range tests {
		if got := tt.config.APIKey(); got != tt.want {
			t.Fatalf("APIKey() for %+v = %q, want %q", tt.config, got, tt.want)
		}
	}
}
