package llms

type CompletionOptions struct {
	Model string
	// Temperature is left to the vendor default when nil.
	Temperature *float64
	// MaxTokens limits the length of the reply, zero means vendor default.
	MaxTokens int
}

type CompletionOption func(*CompletionOptions)

func NewCompletionOptions(defaultModel string, opts ...CompletionOption) CompletionOptions {
	options := CompletionOptions{Model: defaultModel}
	for _, opt := range opts {
		opt(&options)
	}
	return options
}

// WithModel overrides the model configured on the client.
func WithModel(model string) CompletionOption {
	return func(o *CompletionOptions) {
		if model != "" {
			o.Model = model
		}
	}
}

func WithTemperature(temperature float64) CompletionOption {
	return func(o *CompletionOptions) { o.Temperature = &temperature }
}

func WithMaxTokens(maxTokens int) CompletionOption {
	return func(o *CompletionOptions) { o.MaxTokens = maxTokens }
}
