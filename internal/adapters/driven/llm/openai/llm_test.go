package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/dossier/internal/core/domain"
	"github.com/custodia-labs/dossier/internal/core/ports/driven"
)

func newTestService(t *testing.T, handler http.HandlerFunc) *ChatService {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	s, err := NewChatService(Config{APIKey: "gsk-test", BaseURL: srv.URL})
	require.NoError(t, err)
	return s
}

func TestNewChatService(t *testing.T) {
	_, err := NewChatService(Config{})
	assert.ErrorIs(t, err, domain.ErrLLMUnavailable)

	s, err := NewChatService(Config{APIKey: "k"})
	require.NoError(t, err)
	assert.Equal(t, DefaultModel, s.ModelName())
	assert.Equal(t, DefaultBaseURL, s.baseURL)
	assert.NoError(t, s.Close())
}

func TestComplete_Request(t *testing.T) {
	s := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer gsk-test", r.Header.Get("Authorization"))

		var req chatCompletionRequest
		if !assert.NoError(t, json.NewDecoder(r.Body).Decode(&req)) {
			return
		}
		assert.Equal(t, "llama3-70b-8192", req.Model)
		assert.Equal(t, 700, req.MaxTokens)
		assert.InDelta(t, 0.2, req.Temperature, 1e-9)
		if !assert.Len(t, req.Messages, 2) {
			return
		}
		assert.Equal(t, "system", req.Messages[0].Role)
		assert.Equal(t, "be brief", req.Messages[0].Content)
		assert.Equal(t, "user", req.Messages[1].Role)

		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"Tesla grew [1]."}}]}`))
	})

	reply, err := s.Complete(context.Background(), driven.ChatRequest{
		System:      "be brief",
		Messages:    []driven.ChatMessage{{Role: "user", Content: "how is tesla?"}},
		MaxTokens:   700,
		Temperature: 0.2,
	})
	require.NoError(t, err)
	assert.Equal(t, "Tesla grew [1].", reply)
}

func TestComplete_ModelOverride(t *testing.T) {
	s := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		var req chatCompletionRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		assert.Equal(t, "mixtral", req.Model)
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"ok"}}]}`))
	})

	_, err := s.Complete(context.Background(), driven.ChatRequest{Model: "mixtral"})
	require.NoError(t, err)
}

func TestComplete_ReplyShapes(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"message content", `{"choices":[{"message":{"content":"hello"}}]}`, "hello"},
		{"empty content is kept", `{"choices":[{"message":{"content":""},"text":"x"}]}`, ""},
		{"legacy text", `{"choices":[{"text":"legacy"}]}`, "legacy"},
		{"no choices", `{"choices":[]}`, `{"choices":[]}`},
		{"unexpected json", `{"result":"x"}`, `{"result":"x"}`},
		{"not json", `plain text`, `plain text`},
		{"choice without content", `{"choices":[{"index":0}]}`, `{"choices":[{"index":0}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestService(t, func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(tt.body))
			})
			reply, err := s.Complete(context.Background(), driven.ChatRequest{})
			require.NoError(t, err)
			assert.Equal(t, tt.want, reply)
		})
	}
}

func TestComplete_HTTPError(t *testing.T) {
	s := newTestService(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("overloaded"))
	})

	_, err := s.Complete(context.Background(), driven.ChatRequest{})
	require.Error(t, err)

	var apiErr *domain.ExternalAPIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusServiceUnavailable, apiErr.StatusCode)
	assert.Equal(t, "overloaded", apiErr.Body)
	assert.ErrorIs(t, err, domain.ErrExternalAPI)
}

func TestPing(t *testing.T) {
	s := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/models", r.URL.Path)
		w.WriteHeader(http.StatusUnauthorized)
	})
	assert.ErrorIs(t, s.Ping(context.Background()), domain.ErrExternalAPI)
}
