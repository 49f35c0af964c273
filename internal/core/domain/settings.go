package domain

import (
	"fmt"
	"time"
)

// VectorBackend selects the vector store implementation.
type VectorBackend string

// Available vector backends.
const (
	// VectorBackendMilvus is a Milvus server addressed by host and port.
	VectorBackendMilvus VectorBackend = "milvus"

	// VectorBackendMemory keeps the collection in process memory.
	// Records do not survive a restart.
	VectorBackendMemory VectorBackend = "memory"
)

// IsValid returns true if the backend is recognised.
func (b VectorBackend) IsValid() bool {
	return b == VectorBackendMilvus || b == VectorBackendMemory
}

// VectorStoreSettings configures the vector store connection and collection.
type VectorStoreSettings struct {
	Backend    VectorBackend
	Host       string
	Port       string
	Collection string

	// Dimension must match the embedding model (768 for nomic-embed-text).
	Dimension int

	// NList is the IVF candidate-list size used when building the index.
	NList int

	// NProbe is the number of clusters probed per search.
	NProbe int
}

// Address returns host:port.
func (s VectorStoreSettings) Address() string {
	return s.Host + ":" + s.Port
}

// EmbeddingSettings configures the embedding backend.
type EmbeddingSettings struct {
	BaseURL string
	Model   string
	Timeout time.Duration

	// RequestsPerSecond paces embedding calls. Zero disables pacing.
	RequestsPerSecond float64
}

// GenerationSettings configures the generation backend.
type GenerationSettings struct {
	BaseURL string
	Model   string
	Timeout time.Duration
}

// RetrievalSettings configures question answering.
type RetrievalSettings struct {
	// TopK is the number of passages retrieved per question.
	TopK int
}

// ChunkingSettings configures chunk packing.
type ChunkingSettings struct {
	Size    int
	Overlap int
}

// IngestSettings configures where documents come from and the single-file bounds.
type IngestSettings struct {
	// DocsDir is the directory scanned by directory ingestion and written by uploads.
	DocsDir string

	// Pattern selects files within DocsDir (doublestar syntax, default "*").
	Pattern string

	// MaxPages and MaxChunks are the defaults of single-file ingestion.
	MaxPages  int
	MaxChunks int
}

// Settings is the complete runtime configuration.
type Settings struct {
	VectorStore VectorStoreSettings
	Embedding   EmbeddingSettings
	Generation  GenerationSettings
	Retrieval   RetrievalSettings
	Chunking    ChunkingSettings
	Ingest      IngestSettings

	// LedgerDir holds the ingestion ledger database. Empty uses ~/.ragd/data.
	LedgerDir string

	// ServerAddr is the HTTP listen address.
	ServerAddr string
}

// DefaultSettings returns settings suitable for a local container deployment.
func DefaultSettings() Settings {
	return Settings{
		VectorStore: VectorStoreSettings{
			Backend:    VectorBackendMilvus,
			Host:       "milvus",
			Port:       "19530",
			Collection: "docs",
			Dimension:  768, // nomic-embed-text
			NList:      1024,
			NProbe:     16,
		},
		Embedding: EmbeddingSettings{
			BaseURL: "http://ollama:11434",
			Model:   "nomic-embed-text",
			Timeout: 120 * time.Second,
		},
		Generation: GenerationSettings{
			BaseURL: "http://ollama:11434",
			Model:   "mistral",
			Timeout: 600 * time.Second,
		},
		Retrieval: RetrievalSettings{TopK: 4},
		Chunking:  ChunkingSettings{Size: 1200, Overlap: 200},
		Ingest: IngestSettings{
			DocsDir:   "/app/data/docs",
			Pattern:   "*",
			MaxPages:  10,
			MaxChunks: 100,
		},
		ServerAddr: ":8000",
	}
}

// Validate reports the first setting that cannot work.
func (s Settings) Validate() error {
	if !s.VectorStore.Backend.IsValid() {
		return fmt.Errorf("%w: unknown vector backend %q", ErrInvalidInput, s.VectorStore.Backend)
	}
	if s.VectorStore.Backend == VectorBackendMilvus && (s.VectorStore.Host == "" || s.VectorStore.Port == "") {
		return fmt.Errorf("%w: milvus host and port are required", ErrInvalidInput)
	}
	if s.VectorStore.Collection == "" {
		return fmt.Errorf("%w: collection name is required", ErrInvalidInput)
	}
	if s.VectorStore.Dimension <= 0 {
		return fmt.Errorf("%w: vector dimension must be positive, got %d", ErrInvalidInput, s.VectorStore.Dimension)
	}
	if s.VectorStore.NList <= 0 || s.VectorStore.NProbe <= 0 {
		return fmt.Errorf("%w: nlist and nprobe must be positive", ErrInvalidInput)
	}
	if s.Embedding.BaseURL == "" || s.Embedding.Model == "" {
		return fmt.Errorf("%w: embedding url and model are required", ErrInvalidInput)
	}
	if s.Generation.BaseURL == "" || s.Generation.Model == "" {
		return fmt.Errorf("%w: generation url and model are required", ErrInvalidInput)
	}
	if s.Retrieval.TopK <= 0 {
		return fmt.Errorf("%w: top_k must be positive, got %d", ErrInvalidInput, s.Retrieval.TopK)
	}
	if s.Chunking.Size <= 0 {
		return fmt.Errorf("%w: chunk size must be positive, got %d", ErrInvalidInput, s.Chunking.Size)
	}
	if s.Chunking.Overlap < 0 || s.Chunking.Overlap >= s.Chunking.Size {
		return fmt.Errorf("%w: chunk overlap must be in [0, %d), got %d",
			ErrInvalidInput, s.Chunking.Size, s.Chunking.Overlap)
	}
	if s.Ingest.DocsDir == "" {
		return fmt.Errorf("%w: docs directory is required", ErrInvalidInput)
	}
	return nil
}
