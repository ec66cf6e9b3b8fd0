package main

import (
	"fmt"
	"log/slog"

	"github.com/koscakluka/ema-desk/core/assistant"
	"github.com/koscakluka/ema-desk/core/clipboard"
	"github.com/koscakluka/ema-desk/core/llms"
	"github.com/koscakluka/ema-desk/core/llms/vendor"
	"github.com/koscakluka/ema-desk/internal/config"
)

func newAssistant(cfg *config.Config, opts ...assistant.AssistantOption) (*assistant.Assistant, error) {
	completer, err := vendor.New(cfg.Completions.VendorConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to create completions client: %w", err)
	}

	var completionOptions []llms.CompletionOption
	if cfg.Completions.MaxTokens > 0 {
		completionOptions = append(completionOptions, llms.WithMaxTokens(cfg.Completions.MaxTokens))
	}
	if cfg.Completions.Temperature != nil {
		completionOptions = append(completionOptions, llms.WithTemperature(*cfg.Completions.Temperature))
	}

	base := []assistant.AssistantOption{
		assistant.WithClipboard(systemClipboard()),
		assistant.WithSystemPrompt(cfg.Assistant.SystemPrompt),
		assistant.WithTokenLimit(cfg.Assistant.MaxHistoryTokens),
		assistant.WithCompletionOptions(completionOptions...),
		assistant.WithSegmenterOptions(cfg.Segmenter.Options()...),
	}
	return assistant.New(completer, append(base, opts...)...), nil
}

// systemClipboard falls back to an in-memory clipboard on systems without
// clipboard support (e.g. no xclip/xsel on Linux).
func systemClipboard() assistant.Clipboard {
	system, err := clipboard.NewSystem()
	if err != nil {
		slog.Warn("using in-memory clipboard", "error", err)
		return &clipboard.Memory{}
	}
	return system
}
