package openai

import (
	"fmt"

	"github.com/jinzhu/copier"
	"github.com/koscakluka/ema-desk/core/llms"
	goopenai "github.com/sashabaranov/go-openai"
)

func toOpenAIMessages(messages []llms.Message) ([]goopenai.ChatCompletionMessage, error) {
	converted := []goopenai.ChatCompletionMessage{}
	if len(messages) == 0 {
		return converted, nil
	}
	if err := copier.Copy(&converted, messages); err != nil {
		return nil, fmt.Errorf("failed to convert messages: %w", err)
	}
	return converted, nil
}
