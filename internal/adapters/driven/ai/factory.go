// Package ai provides factory functions for creating the embedding and
// generation backends from settings.
package ai

import (
	"context"
	"fmt"
	"time"

	ollamaembed "github.com/custodia-labs/ragd/internal/adapters/driven/embedding/ollama"
	ollamallm "github.com/custodia-labs/ragd/internal/adapters/driven/llm/ollama"
	"github.com/custodia-labs/ragd/internal/core/domain"
	"github.com/custodia-labs/ragd/internal/core/ports/driven"
)

// pingTimeout is the maximum time to wait for service connectivity validation.
const pingTimeout = 5 * time.Second

// Backends holds the two model backends of the pipeline.
type Backends struct {
	Embedding  driven.EmbeddingBackend
	Generation driven.GenerationBackend
}

// CreateBackends creates both backends without contacting them.
func CreateBackends(settings domain.Settings) Backends {
	return Backends{
		Embedding:  CreateEmbeddingBackend(settings.Embedding),
		Generation: CreateGenerationBackend(settings.Generation),
	}
}

// CreateEmbeddingBackend creates the Ollama embedding backend.
func CreateEmbeddingBackend(settings domain.EmbeddingSettings) driven.EmbeddingBackend {
	return ollamaembed.NewEmbeddingService(ollamaembed.Config{
		BaseURL:           settings.BaseURL,
		Model:             settings.Model,
		Timeout:           settings.Timeout,
		RequestsPerSecond: settings.RequestsPerSecond,
	})
}

// CreateGenerationBackend creates the Ollama generation backend.
func CreateGenerationBackend(settings domain.GenerationSettings) driven.GenerationBackend {
	return ollamallm.NewLLMService(ollamallm.LLMConfig{
		BaseURL: settings.BaseURL,
		Model:   settings.Model,
		Timeout: settings.Timeout,
	})
}

// CreateAndValidateEmbeddingBackend creates the embedding backend and validates connectivity.
func CreateAndValidateEmbeddingBackend(ctx context.Context, settings domain.EmbeddingSettings) (driven.EmbeddingBackend, error) {
	b := CreateEmbeddingBackend(settings)
	if err := validate(ctx, b); err != nil {
		return nil, fmt.Errorf("%w: embedding service at %s unreachable (%w). Check OLLAMA_URL",
			domain.ErrBackendUnavailable, settings.BaseURL, err)
	}
	return b, nil
}

// CreateAndValidateGenerationBackend creates the generation backend and validates connectivity.
func CreateAndValidateGenerationBackend(ctx context.Context, settings domain.GenerationSettings) (driven.GenerationBackend, error) {
	b := CreateGenerationBackend(settings)
	if err := validate(ctx, b); err != nil {
		return nil, fmt.Errorf("%w: generation service at %s unreachable (%w). Check OLLAMA_URL",
			domain.ErrBackendUnavailable, settings.BaseURL, err)
	}
	return b, nil
}

func validate(ctx context.Context, p Pinger) error {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	return p.Ping(ctx)
}
