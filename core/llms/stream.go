package llms

import (
	"context"
	"iter"
)

// Completer is implemented by every completions vendor.
type Completer interface {
	StreamCompletion(ctx context.Context, messages []Message, opts ...CompletionOption) Stream
}

type Stream interface {
	Chunks(context.Context) func(func(StreamChunk, error) bool)
}

type StreamChunk interface {
	FinishReason() *string
}

type StreamContentChunk interface {
	StreamChunk
	Content() string
}

type StreamUsageChunk interface {
	StreamChunk
	Usage() Usage
}

type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}

// ContentChunks reduces a stream to its text fragments, skipping empty ones.
// Errors are passed through, the caller decides whether to keep pulling.
func ContentChunks(ctx context.Context, stream Stream) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		for chunk, err := range stream.Chunks(ctx) {
			if err != nil {
				if !yield("", err) {
					return
				}
				continue
			}

			contentChunk, ok := chunk.(StreamContentChunk)
			if !ok || contentChunk.Content() == "" {
				continue
			}
			if !yield(contentChunk.Content(), nil) {
				return
			}
		}
	}
}

// ContentChunk is a plain StreamContentChunk for vendors that don't need
// their own chunk types.
type ContentChunk struct {
	Text   string
	Finish *string
}

func (c ContentChunk) FinishReason() *string {
	return c.Finish
}

func (c ContentChunk) Content() string {
	return c.Text
}

type UsageChunk struct {
	Tokens Usage
	Finish *string
}

func (c UsageChunk) FinishReason() *string {
	return c.Finish
}

func (c UsageChunk) Usage() Usage {
	return c.Tokens
}
