package provider

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mohammad-safakhou/newsdesk/config"
	"github.com/mohammad-safakhou/newsdesk/models"
	openai_provider "github.com/mohammad-safakhou/newsdesk/provider/openai"
)

// Client names a generative backend implementation
type Client string

const (
	OpenAI Client = "openai"
)

// ErrUnavailable is returned by a backend that was not configured.
var ErrUnavailable = errors.New("generative backend unavailable")

// Options tune a single generation.
type Options struct {
	Temperature float64
	MaxTokens   int
}

// Backend is the raw generative call. It may return prose or JSON-shaped text;
// callers never assume the latter without running it through the extractor.
type Backend interface {
	Generate(ctx context.Context, messages []models.Message, opts Options) (string, error)
}

// BackendFunc adapts a function to Backend.
type BackendFunc func(ctx context.Context, messages []models.Message, opts Options) (string, error)

func (f BackendFunc) Generate(ctx context.Context, messages []models.Message, opts Options) (string, error) {
	return f(ctx, messages, opts)
}

// Unavailable always fails; it stands in when no credentials are configured
// so that callers degrade to their defaults instead of refusing to start.
type Unavailable struct{}

func (Unavailable) Generate(context.Context, []models.Message, Options) (string, error) {
	return "", ErrUnavailable
}

// NewBackend creates the backend selected by cfg.Type
func NewBackend(cfg config.LLMConfig) (Backend, error) {
	switch Client(strings.ToLower(cfg.Type)) {
	case OpenAI, "":
		if strings.TrimSpace(cfg.APIKey) == "" {
			return nil, fmt.Errorf("llm.api_key not set: %w", ErrUnavailable)
		}
		c := openai_provider.NewClient(cfg.APIKey, cfg.Model, cfg.BaseURL, cfg.Timeout)
		return BackendFunc(func(ctx context.Context, messages []models.Message, opts Options) (string, error) {
			return c.Chat(ctx, toChat(messages), opts.Temperature, opts.MaxTokens)
		}), nil
	default:
		return nil, fmt.Errorf("unsupported llm type %q", cfg.Type)
	}
}

func toChat(messages []models.Message) []openai_provider.Message {
	out := make([]openai_provider.Message, 0, len(messages))
	for _, m := range messages {
		out = append(out, openai_provider.Message{Role: string(m.Role), Content: m.Content})
	}
	return out
}

// durationOr returns d when positive, otherwise def.
func durationOr(d, def time.Duration) time.Duration {
	if d > 0 {
		return d
	}
	return def
}
