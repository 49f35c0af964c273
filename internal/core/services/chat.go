package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/custodia-labs/ragd/internal/core/domain"
	"github.com/custodia-labs/ragd/internal/core/ports/driven"
	"github.com/custodia-labs/ragd/internal/core/ports/driving"
	"github.com/custodia-labs/ragd/internal/logger"
	"github.com/custodia-labs/ragd/internal/observability"
)

// Ensure ChatService implements the interface.
var _ driving.ChatService = (*ChatService)(nil)

// ChatService answers questions from retrieved passages.
type ChatService struct {
	embedder  *EmbeddingClient
	store     *VectorStoreManager
	generator driven.GenerationBackend
	prompts   driven.PromptStore
	sleeper   driven.Sleeper
	policy    domain.RetryPolicy
	topK      int
}

// NewChatService creates a chat service retrieving topK passages per question.
// A nil sleeper waits on real timers.
func NewChatService(
	embedder *EmbeddingClient,
	store *VectorStoreManager,
	generator driven.GenerationBackend,
	sleeper driven.Sleeper,
	topK int,
) *ChatService {
	if sleeper == nil {
		sleeper = TimerSleeper{}
	}
	return &ChatService{
		embedder:  embedder,
		store:     store,
		generator: generator,
		sleeper:   sleeper,
		policy:    domain.GenerationRetryPolicy,
		topK:      topK,
	}
}

// SetPromptStore sets the store supplying the grounded-answer template.
// Without one, DefaultGroundedAnswerPrompt is used.
func (s *ChatService) SetPromptStore(store driven.PromptStore) {
	s.prompts = store
}

// Answer embeds the question, retrieves the top passages, and asks the
// generation backend to answer from them only.
func (s *ChatService) Answer(ctx context.Context, question string) (*domain.Answer, error) {
	answer, err := s.answer(ctx, question)
	outcome := observability.OutcomeOK
	if err != nil {
		outcome = observability.OutcomeError
	}
	observability.AnswersTotal.WithLabelValues(outcome).Inc()
	return answer, err
}

func (s *ChatService) answer(ctx context.Context, question string) (*domain.Answer, error) {
	logger.Section("Chat")
	if strings.TrimSpace(question) == "" {
		return nil, fmt.Errorf("%w: question is empty", domain.ErrInvalidInput)
	}
	logger.Debug("Question: %q", question)

	qv, err := s.embedder.EmbedOne(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("embed question: %w", err)
	}

	hits, err := s.store.Search(ctx, qv, s.topK)
	if err != nil {
		return nil, fmt.Errorf("retrieve context: %w", err)
	}
	texts := make([]string, len(hits))
	for i, h := range hits {
		texts[i] = h.Text
		logger.Debug("hit %d score=%.4f len=%d", i+1, h.Score, len(h.Text))
	}

	prompt := BuildPrompt(s.template(), JoinContext(texts), question)
	messages := []driven.ChatMessage{{Role: driven.RoleUser, Content: prompt}}

	text, err := withRetry(ctx, s.policy, s.sleeper, observability.BackendGeneration,
		func(ctx context.Context) (string, error) {
			text, err := s.generator.Chat(ctx, messages)
			if err != nil {
				return "", err
			}
			if strings.TrimSpace(text) == "" {
				return "", domain.ErrEmptyGeneration
			}
			return text, nil
		})
	if err != nil {
		if errors.Is(err, domain.ErrEmptyGeneration) {
			return nil, err
		}
		return nil, fmt.Errorf("generate answer: %w", err)
	}

	logger.Info("answered from %d passages", len(hits))
	return &domain.Answer{Text: text, UsedDocs: len(hits)}, nil
}

func (s *ChatService) template() string {
	if s.prompts == nil {
		return DefaultGroundedAnswerPrompt
	}
	tmpl, err := s.prompts.Load(driven.PromptGroundedAnswer)
	if err != nil || strings.TrimSpace(tmpl) == "" {
		if err != nil {
			logger.Debug("load prompt %s: %v", driven.PromptGroundedAnswer, err)
		}
		return DefaultGroundedAnswerPrompt
	}
	return tmpl
}
