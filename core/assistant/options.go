package assistant

import (
	"github.com/koscakluka/ema-desk/core/llms"
	"github.com/koscakluka/ema-desk/core/segmenter"
)

type AssistantOption func(*Assistant)

func WithSpeaker(speaker Speaker) AssistantOption {
	return func(a *Assistant) {
		a.speaker = speaker
	}
}

// WithClipboard sets where marked reply text is copied. If clipboard can
// also be read it backs AttachClipboard, unless WithClipboardReader is
// given as well.
func WithClipboard(clipboard Clipboard) AssistantOption {
	return func(a *Assistant) {
		a.clipboard = clipboard
		if reader, ok := clipboard.(ClipboardReader); ok && a.clipboardReader == nil {
			a.clipboardReader = reader
		}
	}
}

func WithClipboardReader(reader ClipboardReader) AssistantOption {
	return func(a *Assistant) {
		a.clipboardReader = reader
	}
}

func WithSystemPrompt(prompt string) AssistantOption {
	return func(a *Assistant) {
		a.systemPrompt = prompt
	}
}

// WithTokenLimit caps the estimated size of the history sent with each
// prompt. Zero disables trimming.
func WithTokenLimit(limit int) AssistantOption {
	return func(a *Assistant) {
		a.tokenLimit = limit
	}
}

func WithCompletionOptions(opts ...llms.CompletionOption) AssistantOption {
	return func(a *Assistant) {
		a.completionOptions = append(a.completionOptions, opts...)
	}
}

func WithSegmenterOptions(opts ...segmenter.Option) AssistantOption {
	return func(a *Assistant) {
		a.segmenterOptions = append(a.segmenterOptions, opts...)
	}
}

// WithEventHandler registers a callback for every dispatched segment event,
// called after the speaker or clipboard handled it.
func WithEventHandler(onEvent func(segmenter.Event)) AssistantOption {
	return func(a *Assistant) {
		a.onEvent = onEvent
	}
}
