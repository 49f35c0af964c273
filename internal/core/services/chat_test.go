package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ragd/internal/core/domain"
	"github.com/custodia-labs/ragd/internal/core/ports/driven"
)

type chatFixture struct {
	svc       *ChatService
	store     *faultyStore
	manager   *VectorStoreManager
	embedder  *scriptedEmbedder
	generator *fakeGenerator
	sleeper   *recordingSleeper
}

func newChatFixture(t *testing.T, topK int, passages ...string) *chatFixture {
	t.Helper()
	ctx := context.Background()
	store := newFaultyStore()
	manager := openManager(t, store)
	embedder := keywordEmbedder()
	sleeper := &recordingSleeper{}
	client := NewEmbeddingClient(embedder, sleeper)

	if len(passages) > 0 {
		vectors, err := client.Embed(ctx, passages)
		require.NoError(t, err)
		records := make([]domain.VectorRecord, len(passages))
		for i := range passages {
			records[i] = domain.VectorRecord{ID: passages[i][:5], Vector: vectors[i], Text: passages[i]}
		}
		require.NoError(t, manager.Insert(ctx, records))
		require.NoError(t, manager.Flush(ctx))
	}

	generator := &fakeGenerator{}
	return &chatFixture{
		svc:       NewChatService(client, manager, generator, sleeper, topK),
		store:     store,
		manager:   manager,
		embedder:  embedder,
		generator: generator,
		sleeper:   sleeper,
	}
}

func TestChat_RetrievesRelevantPassage(t *testing.T) {
	paris := "Paris is the capital of France."
	berlin := "Berlin is the capital of Germany."
	f := newChatFixture(t, 1, paris, berlin)
	f.generator.replies = []reply{{text: "Paris."}}

	answer, err := f.svc.Answer(context.Background(), "What is the capital of France?")

	require.NoError(t, err)
	assert.Equal(t, "Paris.", answer.Text)
	assert.Equal(t, 1, answer.UsedDocs)

	prompt := f.generator.lastPrompt()
	assert.Contains(t, prompt, paris)
	assert.NotContains(t, prompt, berlin)
	assert.Contains(t, prompt, "[Question]\nWhat is the capital of France?")

	require.Len(t, f.generator.messages, 1)
	require.Len(t, f.generator.messages[0], 1)
	assert.Equal(t, driven.RoleUser, f.generator.messages[0][0].Role)
}

func TestChat_JoinsPassagesInRankOrder(t *testing.T) {
	paris := "Paris is the capital of France."
	berlin := "Berlin is the capital of Germany."
	f := newChatFixture(t, 4, berlin, paris)

	answer, err := f.svc.Answer(context.Background(), "Tell me about France")

	require.NoError(t, err)
	assert.Equal(t, 2, answer.UsedDocs)
	assert.Contains(t, f.generator.lastPrompt(), "[Context]\n"+paris+"\n\n"+berlin+"\n")
}

func TestChat_EmptyCollection(t *testing.T) {
	f := newChatFixture(t, 4)
	f.generator.replies = []reply{{text: "It is not in the documents."}}

	answer, err := f.svc.Answer(context.Background(), "What is the capital of France?")

	require.NoError(t, err)
	assert.Zero(t, answer.UsedDocs)
	assert.Equal(t, "It is not in the documents.", answer.Text)
	assert.Contains(t, f.generator.lastPrompt(), "[Context]\n\n\n[Question]")
}

func TestChat_PromptLayout(t *testing.T) {
	got := BuildPrompt(DefaultGroundedAnswerPrompt, "CTX", "Q?")

	want := "Use the context strictly to answer. If the context does not contain the answer, " +
		"state clearly that it is not in the documents.\n\n[Context]\nCTX\n\n[Question]\nQ?\n\nAnswer:"
	assert.Equal(t, want, got)
}

func TestBuildPrompt_DoesNotReexpand(t *testing.T) {
	got := BuildPrompt("{{context}}|{{question}}", "has {{question}} inside", "q")

	assert.Equal(t, "has {{question}} inside|q", got)
}

func TestChat_GenerationRetry(t *testing.T) {
	f := newChatFixture(t, 4)
	f.generator.replies = []reply{{err: errTimeout}, {text: "second time lucky"}}

	answer, err := f.svc.Answer(context.Background(), "q")

	require.NoError(t, err)
	assert.Equal(t, "second time lucky", answer.Text)
	assert.Equal(t, 2, f.generator.calls)
	assert.Equal(t, []time.Duration{4 * time.Second}, f.sleeper.waits)
}

func TestChat_GenerationExhausted(t *testing.T) {
	f := newChatFixture(t, 4)
	f.generator.replies = []reply{{err: errTimeout}}

	_, err := f.svc.Answer(context.Background(), "q")

	assert.ErrorIs(t, err, domain.ErrBackendUnavailable)
	assert.Equal(t, 2, f.generator.calls)
	assert.Equal(t, []time.Duration{4 * time.Second}, f.sleeper.waits)
}

func TestChat_EmptyGenerationNotRetried(t *testing.T) {
	f := newChatFixture(t, 4)
	f.generator.replies = []reply{{text: "  "}}

	_, err := f.svc.Answer(context.Background(), "q")

	assert.ErrorIs(t, err, domain.ErrEmptyGeneration)
	assert.Equal(t, 1, f.generator.calls)
	assert.Empty(t, f.sleeper.waits)
}

func TestChat_PermanentGenerationError(t *testing.T) {
	f := newChatFixture(t, 4)
	bad := errors.New("model not found")
	f.generator.replies = []reply{{err: bad}}

	_, err := f.svc.Answer(context.Background(), "q")

	assert.ErrorIs(t, err, bad)
	assert.Equal(t, 1, f.generator.calls)
}

func TestChat_BlankQuestion(t *testing.T) {
	f := newChatFixture(t, 4)

	_, err := f.svc.Answer(context.Background(), "  \n ")

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Zero(t, f.embedder.calls)
	assert.Zero(t, f.generator.calls)
}

func TestChat_QuestionEmbeddingUnavailable(t *testing.T) {
	f := newChatFixture(t, 4)
	f.embedder.script = []error{errTimeout, errTimeout, errTimeout}

	_, err := f.svc.Answer(context.Background(), "q")

	assert.ErrorIs(t, err, domain.ErrBackendUnavailable)
	assert.Zero(t, f.generator.calls)
}

func TestChat_SearchFault(t *testing.T) {
	f := newChatFixture(t, 4)
	f.store.searchErr = errors.New("collection not loaded")

	_, err := f.svc.Answer(context.Background(), "q")

	assert.ErrorIs(t, err, domain.ErrStoreFault)
}

func TestChat_PromptStore(t *testing.T) {
	t.Run("custom template", func(t *testing.T) {
		f := newChatFixture(t, 4, "Paris is the capital of France.")
		f.svc.SetPromptStore(&fakePrompts{prompt: "Q={{question}} C={{context}}"})

		_, err := f.svc.Answer(context.Background(), "France?")

		require.NoError(t, err)
		assert.Equal(t, "Q=France? C=Paris is the capital of France.", f.generator.lastPrompt())
	})

	t.Run("store failure falls back to default", func(t *testing.T) {
		f := newChatFixture(t, 4)
		f.svc.SetPromptStore(&fakePrompts{err: errors.New("permission denied")})

		_, err := f.svc.Answer(context.Background(), "q")

		require.NoError(t, err)
		assert.Contains(t, f.generator.lastPrompt(), "Use the context strictly to answer.")
	})
}
