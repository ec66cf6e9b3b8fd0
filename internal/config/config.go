// Package config loads the ema-desk configuration from a YAML file, a .env
// file and the environment, in that order of precedence (lowest first).
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/koscakluka/ema-desk/core/llms/vendor"
	"github.com/koscakluka/ema-desk/core/segmenter"
	"gopkg.in/yaml.v3"
)

const DefaultSystemPrompt = "You are a helpful voice assistant. Keep your replies short and conversational, they are read out loud. " +
	"When the user asks for text they will want to paste, such as code or an email, wrap exactly that text in " +
	segmenter.DefaultMarkerStart + " and " + segmenter.DefaultMarkerEnd + "."

type Config struct {
	Completions CompletionsConfig `yaml:"completions" jsonschema:"description=Completions vendor and model"`
	Segmenter   SegmenterConfig   `yaml:"segmenter" jsonschema:"description=How replies are split into sentences and clipboard text"`
	Assistant   AssistantConfig   `yaml:"assistant"`
	Logging     LoggingConfig     `yaml:"logging"`
}

type CompletionsConfig struct {
	Vendor string `yaml:"vendor" jsonschema:"enum=anthropic,enum=groq,enum=lm_studio,enum=ollama,enum=openai,enum=openrouter,enum=perplexity,enum=together,default=openai"`
	Model  string `yaml:"model" jsonschema:"default=gpt-4o-mini"`
	// BaseURL overrides the vendor's default endpoint.
	BaseURL string `yaml:"base_url,omitempty"`
	// APIKeyEnv names the environment variable holding the API key. Defaults
	// to <VENDOR>_API_KEY.
	APIKeyEnv   string   `yaml:"api_key_env,omitempty" jsonschema:"description=Environment variable holding the API key"`
	MaxTokens   int      `yaml:"max_tokens,omitempty" jsonschema:"description=Reply length limit; 0 uses the vendor default,minimum=0"`
	Temperature *float64 `yaml:"temperature,omitempty" jsonschema:"minimum=0,maximum=2"`
}

type SegmenterConfig struct {
	StartSeq          string `yaml:"start_seq" jsonschema:"description=Clipboard start marker; empty disables markers,default=-CLIPSTART-"`
	EndSeq            string `yaml:"end_seq" jsonschema:"default=-CLIPEND-"`
	FlushOnError      bool   `yaml:"flush_on_error" jsonschema:"description=Emit buffered text when the stream fails"`
	CloseFenceOnFlush bool   `yaml:"close_fence_on_flush" jsonschema:"description=Close an unterminated code fence at the end of a reply"`
}

type AssistantConfig struct {
	SystemPrompt     string `yaml:"system_prompt"`
	MaxHistoryTokens int    `yaml:"max_history_tokens" jsonschema:"description=Estimated token budget for the history; 0 disables trimming,minimum=0,default=16000"`
}

type LoggingConfig struct {
	Level   string `yaml:"level" jsonschema:"enum=debug,enum=info,enum=warn,enum=error,default=info"`
	Verbose bool   `yaml:"verbose"`
}

func Default() Config {
	return Config{
		Completions: CompletionsConfig{
			Vendor: string(vendor.OpenAI),
			Model:  "gpt-4o-mini",
		},
		Segmenter: SegmenterConfig{
			StartSeq: segmenter.DefaultMarkerStart,
			EndSeq:   segmenter.DefaultMarkerEnd,
		},
		Assistant: AssistantConfig{
			SystemPrompt:     DefaultSystemPrompt,
			MaxHistoryTokens: 16000,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load builds the configuration from defaults, the YAML file at path (if
// path is not empty), the .env files and the environment.
func Load(path string, envFiles ...string) (*Config, error) {
	config := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	if err := loadEnvFiles(envFiles...); err != nil {
		return nil, err
	}
	if err := config.applyEnv(); err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

// loadEnvFiles loads .env style files into the environment without
// overriding variables that are already set. Missing files are skipped.
func loadEnvFiles(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, path := range paths {
		if err := godotenv.Load(path); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("failed to load env file %s: %w", path, err)
		}
	}
	return nil
}

func (c *Config) applyEnv() error {
	stringVars := map[string]*string{
		"EMA_VENDOR":        &c.Completions.Vendor,
		"EMA_MODEL":         &c.Completions.Model,
		"EMA_BASE_URL":      &c.Completions.BaseURL,
		"EMA_START_SEQ":     &c.Segmenter.StartSeq,
		"EMA_END_SEQ":       &c.Segmenter.EndSeq,
		"EMA_SYSTEM_PROMPT": &c.Assistant.SystemPrompt,
		"EMA_LOG_LEVEL":     &c.Logging.Level,
	}
	for name, field := range stringVars {
		if value, ok := os.LookupEnv(name); ok {
			*field = value
		}
	}

	intVars := map[string]*int{
		"EMA_MAX_TOKENS":         &c.Completions.MaxTokens,
		"EMA_MAX_HISTORY_TOKENS": &c.Assistant.MaxHistoryTokens,
	}
	for name, field := range intVars {
		if value, ok := os.LookupEnv(name); ok {
			parsed, err := strconv.Atoi(value)
			if err != nil {
				return fmt.Errorf("invalid %s: %w", name, err)
			}
			*field = parsed
		}
	}

	boolVars := map[string]*bool{
		"EMA_FLUSH_ON_ERROR":       &c.Segmenter.FlushOnError,
		"EMA_CLOSE_FENCE_ON_FLUSH": &c.Segmenter.CloseFenceOnFlush,
		"EMA_VERBOSE":              &c.Logging.Verbose,
	}
	for name, field := range boolVars {
		if value, ok := os.LookupEnv(name); ok {
			parsed, err := strconv.ParseBool(value)
			if err != nil {
				return fmt.Errorf("invalid %s: %w", name, err)
			}
			*field = parsed
		}
	}

	return nil
}

// Validate performs comprehensive validation of the configuration
func (c *Config) Validate() error {
	if err := c.Completions.Validate(); err != nil {
		return fmt.Errorf("completions config: %w", err)
	}

	if err := c.Segmenter.Validate(); err != nil {
		return fmt.Errorf("segmenter config: %w", err)
	}

	if err := c.Assistant.Validate(); err != nil {
		return fmt.Errorf("assistant config: %w", err)
	}

	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging config: %w", err)
	}

	return nil
}

func (c *CompletionsConfig) Validate() error {
	if !vendor.Supported(vendor.Name(c.Vendor)) {
		return fmt.Errorf("%w: %q", vendor.ErrUnsupportedVendor, c.Vendor)
	}

	if c.Model == "" {
		return fmt.Errorf("model cannot be empty")
	}

	if c.MaxTokens < 0 {
		return fmt.Errorf("max_tokens cannot be negative, got %d", c.MaxTokens)
	}

	if c.Temperature != nil && (*c.Temperature < 0 || *c.Temperature > 2) {
		return fmt.Errorf("temperature must be between 0 and 2, got %f", *c.Temperature)
	}

	return nil
}

// APIKey reads the API key from the environment. Local vendors don't need
// one and get an empty key.
func (c *CompletionsConfig) APIKey() string {
	name := c.APIKeyEnv
	if name == "" {
		switch vendor.Name(c.Vendor) {
		case vendor.LMStudio, vendor.Ollama:
			return ""
		}
		name = strings.ToUpper(c.Vendor) + "_API_KEY"
	}
	return os.Getenv(name)
}

func (c *CompletionsConfig) VendorConfig() vendor.Config {
	return vendor.Config{
		Name:    vendor.Name(c.Vendor),
		Model:   c.Model,
		BaseURL: c.BaseURL,
		APIKey:  c.APIKey(),
	}
}

func (s *SegmenterConfig) Validate() error {
	if (s.StartSeq == "") != (s.EndSeq == "") {
		return fmt.Errorf("start_seq and end_seq must both be set or both be empty")
	}

	markers := segmenter.Options{MarkerStart: s.StartSeq, MarkerEnd: s.EndSeq}
	if err := markers.Validate(); err != nil {
		return fmt.Errorf("start_seq and end_seq: %w", err)
	}

	if s.StartSeq != "" && s.StartSeq == s.EndSeq {
		return fmt.Errorf("start_seq and end_seq must differ, got %q", s.StartSeq)
	}

	return nil
}

func (s *SegmenterConfig) Options() []segmenter.Option {
	opts := []segmenter.Option{
		segmenter.WithMarkers(s.StartSeq, s.EndSeq),
		segmenter.WithFlushOnError(s.FlushOnError),
	}
	if s.CloseFenceOnFlush {
		opts = append(opts, segmenter.WithClosedFenceOnFlush())
	}
	return opts
}

func (a *AssistantConfig) Validate() error {
	if a.MaxHistoryTokens < 0 {
		return fmt.Errorf("max_history_tokens cannot be negative, got %d", a.MaxHistoryTokens)
	}

	return nil
}

func (l *LoggingConfig) Validate() error {
	var level slog.Level
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return fmt.Errorf("invalid level %q: %w", l.Level, err)
	}

	return nil
}

// SlogLevel returns the configured level, lowered to debug when verbose.
func (l *LoggingConfig) SlogLevel() slog.Level {
	if l.Verbose {
		return slog.LevelDebug
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return slog.LevelInfo
	}
	return level
}
