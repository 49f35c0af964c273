package services

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/custodia-labs/ragd/internal/core/domain"
	"github.com/custodia-labs/ragd/internal/core/ports/driven"
)

// Configuration keys read from the config store.
const (
	KeyVectorBackend     = "vector_store.backend"
	KeyVectorHost        = "vector_store.host"
	KeyVectorPort        = "vector_store.port"
	KeyCollection        = "vector_store.collection"
	KeyDimension         = "vector_store.dimension"
	KeyNList             = "vector_store.nlist"
	KeyNProbe            = "vector_store.nprobe"
	KeyEmbeddingURL      = "embedding.url"
	KeyEmbeddingModel    = "embedding.model"
	KeyEmbeddingTimeout  = "embedding.timeout_secs"
	KeyEmbeddingRPS      = "embedding.requests_per_second"
	KeyGenerationURL     = "generation.url"
	KeyGenerationModel   = "generation.model"
	KeyGenerationTimeout = "generation.timeout_secs"
	KeyTopK              = "retrieval.top_k"
	KeyChunkSize         = "chunking.size"
	KeyChunkOverlap      = "chunking.overlap"
	KeyDocsDir           = "ingest.docs_dir"
	KeyPattern           = "ingest.pattern"
	KeyMaxPages          = "ingest.max_pages"
	KeyMaxChunks         = "ingest.max_chunks"
	KeyLedgerDir         = "ledger.dir"
	KeyServerAddr        = "server.addr"
)

var knownKeys = map[string]bool{
	KeyVectorBackend: true, KeyVectorHost: true, KeyVectorPort: true, KeyCollection: true,
	KeyDimension: true, KeyNList: true, KeyNProbe: true,
	KeyEmbeddingURL: true, KeyEmbeddingModel: true, KeyEmbeddingTimeout: true, KeyEmbeddingRPS: true,
	KeyGenerationURL: true, KeyGenerationModel: true, KeyGenerationTimeout: true,
	KeyTopK: true, KeyChunkSize: true, KeyChunkOverlap: true,
	KeyDocsDir: true, KeyPattern: true, KeyMaxPages: true, KeyMaxChunks: true,
	KeyLedgerDir: true, KeyServerAddr: true,
}

// UnknownKeys returns the keys of store that no setting reads, in sorted order.
func UnknownKeys(store driven.ConfigStore) []string {
	var unknown []string
	for _, k := range store.Keys() {
		if !knownKeys[k] {
			unknown = append(unknown, k)
		}
	}
	return unknown
}

// Environment variables that override the config file.
const (
	EnvMilvusHost      = "MILVUS_HOST"
	EnvMilvusPort      = "MILVUS_PORT"
	EnvOllamaURL       = "OLLAMA_URL"
	EnvEmbedModel      = "EMBED_MODEL"
	EnvGenerationModel = "GENERATION_MODEL"
	EnvTopK            = "TOP_K"
	EnvDocsDir         = "DOCS_DIR"
	EnvLedgerDir       = "RAGD_LEDGER_DIR"
	EnvServerAddr      = "RAGD_ADDR"
)

// EnvLookup reads one environment variable.
type EnvLookup func(key string) (string, bool)

// ResolveSettings layers defaults, the config store and the environment,
// in that order, and validates the result. A nil store or lookup is skipped.
func ResolveSettings(store driven.ConfigStore, lookup EnvLookup) (domain.Settings, error) {
	s := domain.DefaultSettings()
	if store != nil {
		applyConfig(&s, store)
	}
	if lookup != nil {
		if err := applyEnv(&s, lookup); err != nil {
			return domain.Settings{}, err
		}
	}
	if err := s.Validate(); err != nil {
		return domain.Settings{}, err
	}
	return s, nil
}

// ResolveFromProcess resolves settings against the process environment.
func ResolveFromProcess(store driven.ConfigStore) (domain.Settings, error) {
	return ResolveSettings(store, os.LookupEnv)
}

func applyConfig(s *domain.Settings, c driven.ConfigStore) {
	str := func(key string, dst *string) {
		if v := c.GetString(key); v != "" {
			*dst = v
		}
	}
	num := func(key string, dst *int) {
		if _, ok := c.Get(key); ok {
			*dst = c.GetInt(key)
		}
	}
	secs := func(key string, dst *time.Duration) {
		if _, ok := c.Get(key); ok {
			*dst = time.Duration(c.GetFloat(key) * float64(time.Second))
		}
	}

	var backend string
	str(KeyVectorBackend, &backend)
	if backend != "" {
		s.VectorStore.Backend = domain.VectorBackend(backend)
	}
	str(KeyVectorHost, &s.VectorStore.Host)
	// Ports are written either as "19530" or 19530.
	if _, ok := c.Get(KeyVectorPort); ok {
		if p := c.GetString(KeyVectorPort); p != "" {
			s.VectorStore.Port = p
		} else if n := c.GetInt(KeyVectorPort); n > 0 {
			s.VectorStore.Port = strconv.Itoa(n)
		}
	}
	str(KeyCollection, &s.VectorStore.Collection)
	num(KeyDimension, &s.VectorStore.Dimension)
	num(KeyNList, &s.VectorStore.NList)
	num(KeyNProbe, &s.VectorStore.NProbe)

	str(KeyEmbeddingURL, &s.Embedding.BaseURL)
	str(KeyEmbeddingModel, &s.Embedding.Model)
	secs(KeyEmbeddingTimeout, &s.Embedding.Timeout)
	if _, ok := c.Get(KeyEmbeddingRPS); ok {
		s.Embedding.RequestsPerSecond = c.GetFloat(KeyEmbeddingRPS)
	}

	str(KeyGenerationURL, &s.Generation.BaseURL)
	str(KeyGenerationModel, &s.Generation.Model)
	secs(KeyGenerationTimeout, &s.Generation.Timeout)

	num(KeyTopK, &s.Retrieval.TopK)
	num(KeyChunkSize, &s.Chunking.Size)
	num(KeyChunkOverlap, &s.Chunking.Overlap)

	str(KeyDocsDir, &s.Ingest.DocsDir)
	str(KeyPattern, &s.Ingest.Pattern)
	num(KeyMaxPages, &s.Ingest.MaxPages)
	num(KeyMaxChunks, &s.Ingest.MaxChunks)

	str(KeyLedgerDir, &s.LedgerDir)
	str(KeyServerAddr, &s.ServerAddr)
}

func applyEnv(s *domain.Settings, lookup EnvLookup) error {
	str := func(key string, dst ...*string) {
		if v, ok := lookup(key); ok && v != "" {
			for _, d := range dst {
				*d = v
			}
		}
	}

	str(EnvMilvusHost, &s.VectorStore.Host)
	str(EnvMilvusPort, &s.VectorStore.Port)
	// One Ollama serves both backends.
	str(EnvOllamaURL, &s.Embedding.BaseURL, &s.Generation.BaseURL)
	str(EnvEmbedModel, &s.Embedding.Model)
	str(EnvGenerationModel, &s.Generation.Model)
	str(EnvDocsDir, &s.Ingest.DocsDir)
	str(EnvLedgerDir, &s.LedgerDir)
	str(EnvServerAddr, &s.ServerAddr)

	if v, ok := lookup(EnvTopK); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: %s=%q is not an integer", domain.ErrInvalidInput, EnvTopK, v)
		}
		s.Retrieval.TopK = n
	}
	return nil
}
