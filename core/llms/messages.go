package llms

// Message is a single message of the conversation sent to the completions
// vendor.
type Message struct {
	Role    MessageRole
	Content string
}

// MessageRole describes who the message is from
type MessageRole string

const (
	MessageRoleSystem    MessageRole = "system"
	MessageRoleUser      MessageRole = "user"
	MessageRoleAssistant MessageRole = "assistant"
)

func SystemMessage(content string) Message {
	return Message{Role: MessageRoleSystem, Content: content}
}

func UserMessage(content string) Message {
	return Message{Role: MessageRoleUser, Content: content}
}

func AssistantMessage(content string) Message {
	return Message{Role: MessageRoleAssistant, Content: content}
}

// SplitSystem separates leading system instructions from the rest of the
// conversation, for vendors that take instructions out of band.
func SplitSystem(messages []Message) (string, []Message) {
	instructions := ""
	rest := make([]Message, 0, len(messages))
	for _, message := range messages {
		if message.Role == MessageRoleSystem {
			if instructions != "" {
				instructions += "\n\n"
			}
			instructions += message.Content
			continue
		}
		rest = append(rest, message)
	}
	return instructions, rest
}
