package provider

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mohammad-safakhou/newsdesk/models"
	"github.com/stretchr/testify/require"
)

func TestWrapContextOmitsMarkersForEmptyBundle(t *testing.T) {
	require.Equal(t, "what happened?", WrapContext("what happened?", nil))
	require.Equal(t, "what happened?", WrapContext("what happened?", &models.ContextBundle{}))
}

func TestWrapContextAddsMarkersAndInstruction(t *testing.T) {
	bundle := &models.ContextBundle{Segments: []models.ContextSegment{{Text: "WEB SEARCH RESULTS:\n1. A"}}}
	out := WrapContext("q", bundle)
	require.True(t, strings.HasPrefix(out, "q\n\n"+models.ContextBegin+"\nWEB SEARCH RESULTS:\n1. A\n"+models.ContextEnd))
	require.True(t, strings.HasSuffix(out, ContextInstruction))
}

func TestCompleteWithContextOrdersMessages(t *testing.T) {
	var seen []models.Message
	g := NewGenerator(BackendFunc(func(ctx context.Context, msgs []models.Message, _ Options) (string, error) {
		seen = msgs
		return "ok", nil
	}))
	history := []models.Message{
		{Role: models.RoleUser, Content: "earlier"},
		{Role: models.RoleAssistant, Content: "reply"},
		{Role: models.RoleSystem, Content: "stale system"},
	}
	out, err := g.CompleteWithContext(context.Background(), ContextualRequest{Task: "answer", System: "sys", Query: "now", History: history})
	require.NoError(t, err)
	require.Equal(t, "ok", out)
	require.Len(t, seen, 4)
	require.Equal(t, models.RoleSystem, seen[0].Role)
	require.Equal(t, "earlier", seen[1].Content)
	require.Equal(t, "now", seen[3].Content)
}

func TestGeneratorAppliesCallTimeout(t *testing.T) {
	g := NewGenerator(BackendFunc(func(ctx context.Context, _ []models.Message, _ Options) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	}), WithCallTimeout(20*time.Millisecond))
	_, err := g.Complete(context.Background(), CompletionRequest{Task: "summary"})
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestGeneratorRejectsBlankCompletion(t *testing.T) {
	g := NewGenerator(BackendFunc(func(context.Context, []models.Message, Options) (string, error) {
		return "  \n", nil
	}))
	_, err := g.Complete(context.Background(), CompletionRequest{Task: "summary"})
	require.ErrorIs(t, err, ErrEmptyCompletion)
}

func TestGeneratorConcurrencyCap(t *testing.T) {
	var inflight, peak int32
	g := NewGenerator(BackendFunc(func(context.Context, []models.Message, Options) (string, error) {
		n := atomic.AddInt32(&inflight, 1)
		for {
			p := atomic.LoadInt32(&peak)
			if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
				break
			}
		}
		time.Sleep(10 * time.Millisecond)
		atomic.AddInt32(&inflight, -1)
		return "x", nil
	}), WithConcurrency(2))

	done := make(chan struct{})
	for i := 0; i < 6; i++ {
		go func() {
			_, _ = g.Complete(context.Background(), CompletionRequest{Task: "t"})
			done <- struct{}{}
		}()
	}
	for i := 0; i < 6; i++ {
		<-done
	}
	require.LessOrEqual(t, atomic.LoadInt32(&peak), int32(2))
}

func TestNilBackendIsUnavailable(t *testing.T) {
	_, err := NewGenerator(nil).Complete(context.Background(), CompletionRequest{Task: "t"})
	require.True(t, errors.Is(err, ErrUnavailable))
}
