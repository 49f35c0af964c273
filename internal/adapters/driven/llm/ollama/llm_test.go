package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ragd/internal/core/domain"
	"github.com/custodia-labs/ragd/internal/core/ports/driven"
)

func TestNewLLMService_Defaults(t *testing.T) {
	s := NewLLMService(LLMConfig{})
	assert.Equal(t, DefaultBaseURL, s.api.BaseURL())
	assert.Equal(t, "mistral", s.ModelName())
	assert.Equal(t, DefaultLLMTimeout, s.api.Timeout())
}

func TestChat_SendsSingleNonStreamingRequest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/chat", r.URL.Path)

		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "mistral", req.Model)
		assert.False(t, req.Stream)
		require.Len(t, req.Messages, 1)
		assert.Equal(t, "user", req.Messages[0].Role)
		assert.Equal(t, "prompt text", req.Messages[0].Content)

		_, _ = w.Write([]byte(`{"message":{"role":"assistant","content":"Paris."},"done":true}`))
	}))
	defer srv.Close()

	out, err := NewLLMService(LLMConfig{BaseURL: srv.URL}).Chat(context.Background(),
		[]driven.ChatMessage{{Role: driven.RoleUser, Content: "prompt text"}})

	require.NoError(t, err)
	assert.Equal(t, "Paris.", out)
}

func TestChat_ResponseFallback(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"message content", `{"message":{"content":"a"},"response":"b"}`, "a"},
		{"empty message falls back", `{"message":{"content":""},"response":"b"}`, "b"},
		{"missing message falls back", `{"response":"b"}`, "b"},
		{"neither", `{"done":true}`, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			out, err := NewLLMService(LLMConfig{BaseURL: srv.URL}).Chat(context.Background(), nil)

			require.NoError(t, err)
			assert.Equal(t, tt.want, out)
		})
	}
}

func TestChat_ErrorClassification(t *testing.T) {
	tests := []struct {
		status    int
		transient bool
	}{
		{http.StatusInternalServerError, true},
		{http.StatusServiceUnavailable, true},
		{http.StatusTooManyRequests, true},
		{http.StatusNotFound, false},
		{http.StatusBadRequest, false},
	}
	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			_, err := NewLLMService(LLMConfig{BaseURL: srv.URL}).Chat(context.Background(), nil)

			require.Error(t, err)
			if tt.transient {
				assert.ErrorIs(t, err, domain.ErrTransient)
			} else {
				assert.NotErrorIs(t, err, domain.ErrTransient)
			}
		})
	}
}

func TestChat_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewLLMService(LLMConfig{BaseURL: url}).Chat(context.Background(), nil)

	assert.ErrorIs(t, err, domain.ErrTransient)
}

func TestLLMPing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/tags", r.URL.Path)
		_, _ = w.Write([]byte(`{"models":[{"name":"mistral:latest"}]}`))
	}))
	defer srv.Close()

	assert.NoError(t, NewLLMService(LLMConfig{BaseURL: srv.URL}).Ping(context.Background()))

	err := NewLLMService(LLMConfig{BaseURL: srv.URL, Model: "llama3.2"}).Ping(context.Background())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
