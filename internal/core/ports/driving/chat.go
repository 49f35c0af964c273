package driving

import (
	"context"

	"github.com/custodia-labs/ragd/internal/core/domain"
)

// ChatService answers questions from the ingested documents.
type ChatService interface {
	// Answer retrieves passages relevant to the question and generates a grounded answer.
	Answer(ctx context.Context, question string) (*domain.Answer, error)
}
