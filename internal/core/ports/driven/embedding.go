package driven

import "context"

// EmbeddingBackend generates a vector embedding for one text with a single remote call.
// Retries are not the backend's concern: the embedding client drives them.
//
// Implementations must wrap failures worth retrying (network errors, timeouts,
// overload responses) with domain.ErrTransient so the retry policy can tell them
// apart from permanent failures such as malformed responses.
//
// Implementations may include:
//   - Ollama (nomic-embed-text, all-minilm)
//   - Local models via inference servers
type EmbeddingBackend interface {
	// Embed generates a vector embedding for the given text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// ModelName returns the name of the embedding model being used.
	ModelName() string

	// Ping validates the service is reachable by making a lightweight test request.
	Ping(ctx context.Context) error
}
