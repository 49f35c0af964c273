// Package ollama provides a generation backend adapter using Ollama.
package ollama

import (
	"context"
	"time"

	"github.com/custodia-labs/ragd/internal/adapters/driven/ollamahttp"
	"github.com/custodia-labs/ragd/internal/core/ports/driven"
)

// Ensure LLMService implements the interface.
var _ driven.GenerationBackend = (*LLMService)(nil)

// Default configuration values.
const (
	DefaultBaseURL    = "http://localhost:11434"
	DefaultLLMModel   = "mistral"
	DefaultLLMTimeout = 600 * time.Second // local models on CPU are slow
)

// LLMConfig holds configuration for the Ollama LLM service.
type LLMConfig struct {
	BaseURL string
	Model   string
	Timeout time.Duration
}

// LLMService generates text with non-streaming POST /api/chat.
type LLMService struct {
	api   *ollamahttp.Client
	model string
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Stream   bool          `json:"stream"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatResponse also carries Response because some proxies answer in the
// /api/generate shape.
type chatResponse struct {
	Message  *chatMessage `json:"message"`
	Response string       `json:"response"`
}

// NewLLMService creates a new Ollama LLM service.
func NewLLMService(cfg LLMConfig) *LLMService {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultLLMModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultLLMTimeout
	}
	return &LLMService{api: ollamahttp.New(cfg.BaseURL, cfg.Timeout), model: cfg.Model}
}

// Chat returns message.content, or response when the message is absent or empty.
func (s *LLMService) Chat(ctx context.Context, messages []driven.ChatMessage) (string, error) {
	req := chatRequest{Model: s.model, Messages: make([]chatMessage, len(messages))}
	for i, m := range messages {
		req.Messages[i] = chatMessage{Role: m.Role, Content: m.Content}
	}

	var resp chatResponse
	if err := s.api.PostJSON(ctx, "/api/chat", req, &resp); err != nil {
		return "", err
	}
	if resp.Message != nil && resp.Message.Content != "" {
		return resp.Message.Content, nil
	}
	return resp.Response, nil
}

// ModelName returns the name of the LLM model being used.
func (s *LLMService) ModelName() string {
	return s.model
}

// Ping checks that the server answers and has the model pulled.
func (s *LLMService) Ping(ctx context.Context) error {
	return s.api.CheckModel(ctx, s.model)
}
