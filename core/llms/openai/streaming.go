// Package openai streams chat completions from the OpenAI API through the
// go-openai SDK.
package openai

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/koscakluka/ema-desk/core/llms"
	goopenai "github.com/sashabaranov/go-openai"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

type Client struct {
	client *goopenai.Client
	model  string
}

// NewClient creates an OpenAI client. An empty baseURL uses the public API.
func NewClient(apiKey, baseURL, model string) *Client {
	config := goopenai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	config.HTTPClient = &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)}

	return &Client{
		client: goopenai.NewClientWithConfig(config),
		model:  model,
	}
}

func (c *Client) StreamCompletion(_ context.Context, messages []llms.Message, opts ...llms.CompletionOption) llms.Stream {
	return &Stream{
		client:   c.client,
		options:  llms.NewCompletionOptions(c.model, opts...),
		messages: messages,
	}
}

type Stream struct {
	client *goopenai.Client

	options  llms.CompletionOptions
	messages []llms.Message
}

func (s *Stream) Chunks(ctx context.Context) func(func(llms.StreamChunk, error) bool) {
	return func(yield func(llms.StreamChunk, error) bool) {
		ctx, span := tracer.Start(ctx, "stream completion")
		defer span.End()
		span.SetAttributes(attribute.String("request.model", s.options.Model))

		fail := func(err error) {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			yield(nil, err)
		}

		messages, err := toOpenAIMessages(s.messages)
		if err != nil {
			fail(err)
			return
		}

		req := goopenai.ChatCompletionRequest{
			Model:         s.options.Model,
			Messages:      messages,
			Stream:        true,
			StreamOptions: &goopenai.StreamOptions{IncludeUsage: true},
			MaxTokens:     s.options.MaxTokens,
		}
		if s.options.Temperature != nil {
			req.Temperature = float32(*s.options.Temperature)
		}

		stream, err := s.client.CreateChatCompletionStream(ctx, req)
		if err != nil {
			fail(fmt.Errorf("error creating completion stream: %w", err))
			return
		}
		defer stream.Close()

		for {
			response, err := stream.Recv()
			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				fail(fmt.Errorf("error reading streamed response: %w", err))
				return
			}

			var finishReason *string
			if len(response.Choices) > 0 {
				choice := response.Choices[0]
				if choice.FinishReason != "" {
					reason := string(choice.FinishReason)
					finishReason = &reason
				}

				if choice.Delta.Content != "" {
					if !yield(llms.ContentChunk{Text: choice.Delta.Content, Finish: finishReason}, nil) {
						return
					}
				}
			}

			if response.Usage != nil {
				span.SetAttributes(attribute.Int("usage.total", response.Usage.TotalTokens))
				logger.DebugContext(ctx, "completion usage", "total_tokens", response.Usage.TotalTokens)
				if !yield(llms.UsageChunk{
					Finish: finishReason,
					Tokens: llms.Usage{
						InputTokens:  response.Usage.PromptTokens,
						OutputTokens: response.Usage.CompletionTokens,
						TotalTokens:  response.Usage.TotalTokens,
					},
				}, nil) {
					return
				}
			}
		}
	}
}
