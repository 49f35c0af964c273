package cli

import (
	"context"
	"fmt"

	"github.com/custodia-labs/ragd/internal/adapters/driven/ai"
	"github.com/custodia-labs/ragd/internal/adapters/driven/config/file"
	"github.com/custodia-labs/ragd/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/ragd/internal/adapters/driven/vectorstore/memory"
	"github.com/custodia-labs/ragd/internal/adapters/driven/vectorstore/milvus"
	"github.com/custodia-labs/ragd/internal/core/domain"
	"github.com/custodia-labs/ragd/internal/core/ports/driven"
	"github.com/custodia-labs/ragd/internal/core/services"
	"github.com/custodia-labs/ragd/internal/logger"
	"github.com/custodia-labs/ragd/internal/normalisers/pdf"
	"github.com/custodia-labs/ragd/internal/normalisers/plaintext"
	"github.com/custodia-labs/ragd/internal/postprocessors/chunker"
)

// app holds the wired pipeline for one process.
type app struct {
	settings domain.Settings
	backends ai.Backends
	manager  *services.VectorStoreManager
	ledger   *sqlite.Store
	ingest   *services.IngestService
	chat     *services.ChatService
}

// loadSettings reads the config file, the env file and the environment,
// then applies command line overrides.
func loadSettings() (domain.Settings, error) {
	var envFiles []string
	if envFile != "" {
		envFiles = append(envFiles, envFile)
	}
	if err := file.LoadDotEnv(envFiles...); err != nil {
		return domain.Settings{}, err
	}

	cfg, err := file.NewConfigStore(cfgFile)
	if err != nil {
		return domain.Settings{}, err
	}
	logger.Debug("config file: %s", cfg.Path())
	for _, key := range services.UnknownKeys(cfg) {
		logger.Warn("%s: unknown key %q ignored", cfg.Path(), key)
	}

	s, err := services.ResolveFromProcess(cfg)
	if err != nil {
		return domain.Settings{}, err
	}
	return applyFlagOverrides(s)
}

func applyFlagOverrides(s domain.Settings) (domain.Settings, error) {
	if storeBackend != "" {
		s.VectorStore.Backend = domain.VectorBackend(storeBackend)
	}
	if docsDir != "" {
		s.Ingest.DocsDir = docsDir
	}
	if err := s.Validate(); err != nil {
		return domain.Settings{}, err
	}
	return s, nil
}

// openVectorStore connects the configured backend.
func openVectorStore(ctx context.Context, s domain.VectorStoreSettings) (driven.VectorStore, error) {
	switch s.Backend {
	case domain.VectorBackendMemory:
		logger.Warn("using the in-memory vector store: records are lost on exit")
		return memory.New(), nil
	default:
		store, err := milvus.New(ctx, milvus.Config{Address: s.Address()})
		if err != nil {
			return nil, err
		}
		return store, nil
	}
}

// newApp wires adapters and services from settings and opens the collection.
func newApp(ctx context.Context, s domain.Settings) (*app, error) {
	logger.Section("Wiring")

	store, err := openVectorStore(ctx, s.VectorStore)
	if err != nil {
		return nil, err
	}
	manager := services.NewVectorStoreManager(store, s.VectorStore)
	if err := manager.Open(ctx); err != nil {
		manager.Close() //nolint:errcheck
		return nil, err
	}
	logger.Debug("collection %s ready (dim %d)", manager.Collection(), manager.Dimension())

	backends := ai.CreateBackends(s)
	embedder := services.NewEmbeddingClient(backends.Embedding, nil)
	extractor := services.NewTextExtractor(plaintext.New(), pdf.NewNative(), pdf.NewPoppler())
	if err := pdf.CheckAvailable(); err != nil {
		logger.Debug("secondary PDF extractor unavailable: %v", err)
	}
	split := chunker.New(chunker.WithChunkSize(s.Chunking.Size), chunker.WithOverlap(s.Chunking.Overlap))

	a := &app{
		settings: s,
		backends: backends,
		manager:  manager,
		ingest:   services.NewIngestService(extractor, split, embedder, manager, s.Ingest),
		chat:     services.NewChatService(embedder, manager, backends.Generation, nil, s.Retrieval.TopK),
	}

	if ledger, err := sqlite.NewStore(s.LedgerDir); err != nil {
		logger.Warn("ingestion history disabled: %v", err)
	} else {
		a.ledger = ledger
		a.ingest.SetLedger(ledger)
		logger.Debug("ingestion ledger: %s", ledger.Path())
	}

	if prompts, err := file.NewPromptStore(""); err != nil {
		logger.Warn("using the built-in prompt: %v", err)
	} else {
		a.chat.SetPromptStore(prompts)
	}

	return a, nil
}

// Close releases the vector store and the ledger.
func (a *app) Close() {
	if err := a.manager.Close(); err != nil {
		logger.Warn("close vector store: %v", err)
	}
	if a.ledger != nil {
		if err := a.ledger.Close(); err != nil {
			logger.Warn("close ledger: %v", err)
		}
	}
}

// probes lists the backends checked by `ragd health`.
func probes(ctx context.Context, s domain.Settings) ([]ai.Probe, func(), error) {
	backends := ai.CreateBackends(s)
	list := []ai.Probe{
		{Name: "embedding", Model: backends.Embedding.ModelName(), Target: backends.Embedding},
		{Name: "generation", Model: backends.Generation.ModelName(), Target: backends.Generation},
	}
	if s.VectorStore.Backend != domain.VectorBackendMilvus {
		return list, func() {}, nil
	}

	store, err := milvus.New(ctx, milvus.Config{Address: s.VectorStore.Address()})
	if err != nil {
		return nil, nil, fmt.Errorf("vector store: %w", err)
	}
	list = append(list, ai.Probe{
		Name:   "vector_store",
		Model:  s.VectorStore.Address(),
		Target: collectionPinger{store: store, collection: s.VectorStore.Collection},
	})
	return list, func() { _ = store.Close() }, nil
}

// collectionPinger probes a vector store by asking for the collection.
type collectionPinger struct {
	store      driven.VectorStore
	collection string
}

func (p collectionPinger) Ping(ctx context.Context) error {
	_, err := p.store.HasCollection(ctx, p.collection)
	return err
}
