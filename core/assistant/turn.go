package assistant

import "github.com/google/uuid"

// Turn is the outcome of one Respond call.
type Turn struct {
	ID     uuid.UUID
	Prompt string
	// Response is the full, unsegmented reply.
	Response        string
	Sentences       []string
	ClipboardWrites []string
	Cancelled       bool
}
