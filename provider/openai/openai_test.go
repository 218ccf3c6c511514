package openai_provider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/require"
)

func TestChatSendsModelAndReturnsFirstChoice(t *testing.T) {
	var got openai.ChatCompletionRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/chat/completions", r.URL.Path)
		require.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"hello there"}}]}`))
	}))
	defer srv.Close()

	c := NewClient("sk-test", "gpt-4o-mini", srv.URL, time.Second)
	out, err := c.Chat(context.Background(), []Message{{Role: "user", Content: "hi"}}, 0.2, 64)
	require.NoError(t, err)
	require.Equal(t, "hello there", out)
	require.Equal(t, "gpt-4o-mini", got.Model)
	require.Equal(t, 64, got.MaxTokens)
	require.Len(t, got.Messages, 1)
	require.Equal(t, "hi", got.Messages[0].Content)
}

func TestChatSurfacesAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"rate limited","type":"requests"}}`))
	}))
	defer srv.Close()

	c := NewClient("k", "gpt-4o-mini", srv.URL, time.Second)
	_, err := c.Chat(context.Background(), []Message{{Role: "user", Content: "hi"}}, 0, 0)
	require.ErrorContains(t, err, "429")
	require.ErrorContains(t, err, "rate limited")
}

func TestChatNoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	_, err := NewClient("k", "gpt-4o-mini", srv.URL, time.Second).Chat(context.Background(), []Message{{Role: "user", Content: "hi"}}, 0, 0)
	require.ErrorIs(t, err, ErrNoChoices)
}
