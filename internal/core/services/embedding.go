package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/ragd/internal/core/domain"
	"github.com/custodia-labs/ragd/internal/core/ports/driven"
	"github.com/custodia-labs/ragd/internal/observability"
)

// EmbeddingClient turns texts into vectors, one remote call per text.
// Each call is retried independently under the embedding retry policy.
type EmbeddingClient struct {
	backend driven.EmbeddingBackend
	sleeper driven.Sleeper
	policy  domain.RetryPolicy
}

// NewEmbeddingClient creates a client using domain.EmbeddingRetryPolicy.
// A nil sleeper waits on real timers.
func NewEmbeddingClient(backend driven.EmbeddingBackend, sleeper driven.Sleeper) *EmbeddingClient {
	if sleeper == nil {
		sleeper = TimerSleeper{}
	}
	return &EmbeddingClient{
		backend: backend,
		sleeper: sleeper,
		policy:  domain.EmbeddingRetryPolicy,
	}
}

// Embed returns one vector per text, in order. Texts are embedded sequentially;
// the first text that cannot be embedded fails the whole call.
func (c *EmbeddingClient) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, 0, len(texts))
	for i, text := range texts {
		v, err := c.EmbedOne(ctx, text)
		if err != nil {
			return nil, fmt.Errorf("embed text %d of %d: %w", i+1, len(texts), err)
		}
		vectors = append(vectors, v)
	}
	return vectors, nil
}

// EmbedOne embeds a single text.
func (c *EmbeddingClient) EmbedOne(ctx context.Context, text string) ([]float32, error) {
	return withRetry(ctx, c.policy, c.sleeper, observability.BackendEmbedding,
		func(ctx context.Context) ([]float32, error) {
			return c.backend.Embed(ctx, text)
		})
}

// ModelName returns the embedding model in use.
func (c *EmbeddingClient) ModelName() string {
	return c.backend.ModelName()
}
