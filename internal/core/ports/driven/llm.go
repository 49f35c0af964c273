package driven

import "context"

// GenerationBackend produces text from a conversation with a single remote call.
// As with EmbeddingBackend, retryable failures are wrapped with domain.ErrTransient.
//
// Implementations may include:
//   - Ollama (mistral, llama3.2)
//   - Any server speaking the Ollama chat API
type GenerationBackend interface {
	// Chat sends the turns non-streaming and returns the generated content.
	// An empty string means the backend answered without usable content.
	Chat(ctx context.Context, messages []ChatMessage) (string, error)

	// ModelName returns the name of the LLM model being used.
	ModelName() string

	// Ping validates the service is reachable by making a lightweight test request.
	Ping(ctx context.Context) error
}

// ChatMessage represents a single message in a conversation.
type ChatMessage struct {
	// Role is one of "system", "user", or "assistant".
	Role string

	// Content is the message text.
	Content string
}

// RoleUser is the role of caller-authored turns.
const RoleUser = "user"
