package provider

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mohammad-safakhou/newsdesk/internal/telemetry"
	"github.com/mohammad-safakhou/newsdesk/models"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
)

// ContextInstruction follows the context block in every context-augmented prompt.
const ContextInstruction = "Use the context above when relevant; prefer recent sources; cite inline."

// ErrEmptyCompletion is returned when the backend answers with blank text.
var ErrEmptyCompletion = errors.New("empty completion")

// CompletionRequest is a single-turn call with a fixed system role.
type CompletionRequest struct {
	Task    string
	System  string
	Prompt  string
	Options Options
}

// ContextualRequest is a call whose user turn is augmented with assembled context.
type ContextualRequest struct {
	Task    string
	System  string
	Query   string
	Context *models.ContextBundle
	History []models.Message
	Options Options
}

// Generator wraps a Backend with per-call deadlines and a concurrency cap.
type Generator struct {
	backend Backend
	sem     *semaphore.Weighted
	timeout time.Duration
	metrics *telemetry.Metrics
	logger  *zap.Logger
}

type GeneratorOption func(*Generator)

func WithCallTimeout(d time.Duration) GeneratorOption {
	return func(g *Generator) { g.timeout = durationOr(d, g.timeout) }
}

// WithConcurrency caps in-flight calls to the backend.
func WithConcurrency(n int) GeneratorOption {
	return func(g *Generator) {
		if n > 0 {
			g.sem = semaphore.NewWeighted(int64(n))
		}
	}
}

func WithMetrics(m *telemetry.Metrics) GeneratorOption {
	return func(g *Generator) { g.metrics = m }
}

func WithLogger(l *zap.Logger) GeneratorOption {
	return func(g *Generator) {
		if l != nil {
			g.logger = l
		}
	}
}

func NewGenerator(b Backend, opts ...GeneratorOption) *Generator {
	if b == nil {
		b = Unavailable{}
	}
	g := &Generator{
		backend: b,
		timeout: 45 * time.Second,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Complete issues a simple system+user completion.
func (g *Generator) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	msgs := []models.Message{
		{Role: models.RoleSystem, Content: req.System},
		{Role: models.RoleUser, Content: req.Prompt},
	}
	return g.call(ctx, req.Task, msgs, req.Options)
}

// CompleteWithContext sends system, history, then the query wrapped with its context.
func (g *Generator) CompleteWithContext(ctx context.Context, req ContextualRequest) (string, error) {
	msgs := make([]models.Message, 0, len(req.History)+2)
	msgs = append(msgs, models.Message{Role: models.RoleSystem, Content: req.System})
	for _, m := range req.History {
		if m.Role == models.RoleSystem || strings.TrimSpace(m.Content) == "" {
			continue
		}
		msgs = append(msgs, m)
	}
	msgs = append(msgs, models.Message{Role: models.RoleUser, Content: WrapContext(req.Query, req.Context)})
	return g.call(ctx, req.Task, msgs, req.Options)
}

// WrapContext appends the bundle between begin/end markers. An empty bundle
// leaves the query untouched.
func WrapContext(query string, bundle *models.ContextBundle) string {
	body := bundle.String()
	if strings.TrimSpace(body) == "" {
		return query
	}
	var b strings.Builder
	b.WriteString(query)
	b.WriteString("\n\n")
	b.WriteString(models.ContextBegin)
	b.WriteByte('\n')
	b.WriteString(body)
	b.WriteByte('\n')
	b.WriteString(models.ContextEnd)
	b.WriteString("\n\n")
	b.WriteString(ContextInstruction)
	return b.String()
}

func (g *Generator) call(ctx context.Context, task string, msgs []models.Message, opts Options) (string, error) {
	if g.sem != nil {
		if err := g.sem.Acquire(ctx, 1); err != nil {
			return "", fmt.Errorf("%s: %w", task, err)
		}
		defer g.sem.Release(1)
	}
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	start := time.Now()
	out, err := g.backend.Generate(ctx, msgs, opts)
	g.metrics.ObserveGeneration(task, time.Since(start))
	if err != nil {
		g.logger.Debug("generation failed", zap.String("task", task), zap.Error(err))
		return "", fmt.Errorf("%s: %w", task, err)
	}
	if strings.TrimSpace(out) == "" {
		return "", fmt.Errorf("%s: %w", task, ErrEmptyCompletion)
	}
	return out, nil
}
