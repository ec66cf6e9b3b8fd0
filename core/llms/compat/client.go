// Package compat streams chat completions from any vendor exposing an
// OpenAI compatible /chat/completions endpoint (Groq, Together, OpenRouter,
// Perplexity, LM Studio, Ollama).
package compat

import (
	"context"
	"net/http"
	"strings"

	"github.com/koscakluka/ema-desk/core/llms"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

type Client struct {
	baseURL string
	apiKey  string
	model   string

	httpClient *http.Client
}

type ClientOption func(*Client)

// WithHTTPClient replaces the default instrumented HTTP client.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) { c.httpClient = client }
}

// NewClient creates a client for baseURL, e.g. "https://api.groq.com/openai/v1".
// apiKey may be empty for local servers.
func NewClient(baseURL, apiKey, model string, opts ...ClientOption) *Client {
	client := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		apiKey:  apiKey,
		model:   model,
		httpClient: &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport,
			otelhttp.WithSpanNameFormatter(func(operationName string, request *http.Request) string {
				return operationName + " " + request.URL.Path
			}),
		)},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

func (c *Client) StreamCompletion(ctx context.Context, messages []llms.Message, opts ...llms.CompletionOption) llms.Stream {
	options := llms.NewCompletionOptions(c.model, opts...)

	return &Stream{
		client:   c,
		options:  options,
		messages: messages,
	}
}
