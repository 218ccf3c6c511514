// Package analysis runs the six narrow sub-analyses of an article
// concurrently and merges them. A failed leaf contributes its default and
// never fails the whole analysis.
package analysis

import (
	"context"
	"fmt"
	"strings"

	"github.com/mohammad-safakhou/newsdesk/internal/extract"
	"github.com/mohammad-safakhou/newsdesk/internal/helpers"
	"github.com/mohammad-safakhou/newsdesk/internal/logging"
	"github.com/mohammad-safakhou/newsdesk/internal/synth"
	"github.com/mohammad-safakhou/newsdesk/internal/telemetry"
	"github.com/mohammad-safakhou/newsdesk/models"
	"github.com/mohammad-safakhou/newsdesk/provider"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	defaultConcurrency = 6
	maxArticleChars    = 12000
)

// Orchestrator dispatches sub-analyses against a generator.
type Orchestrator struct {
	gen         *provider.Generator
	synth       *synth.Synthesizer
	concurrency int
	options     provider.Options
	metrics     *telemetry.Metrics
	tracer      trace.Tracer
	logger      *zap.Logger
}

type Option func(*Orchestrator)

// WithConcurrency caps the number of leaves in flight.
func WithConcurrency(n int) Option {
	return func(o *Orchestrator) {
		if n > 0 {
			o.concurrency = n
		}
	}
}

func WithOptions(opts provider.Options) Option {
	return func(o *Orchestrator) { o.options = opts }
}

func WithMetrics(m *telemetry.Metrics) Option {
	return func(o *Orchestrator) { o.metrics = m }
}

func WithLogger(l *zap.Logger) Option {
	return func(o *Orchestrator) { o.logger = logging.Named(l, "analysis") }
}

// New builds an orchestrator. s serves the non-deep path.
func New(gen *provider.Generator, s *synth.Synthesizer, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		gen:         gen,
		synth:       s,
		concurrency: defaultConcurrency,
		tracer:      telemetry.Tracer(),
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// leaf parses one sub-analysis response and writes it into the merged result.
type leaf struct {
	kind  models.SubAnalysis
	parse func(raw string) (func(*models.DeepAnalysis), error)
}

var leaves = []leaf{
	{kind: models.SubBias, parse: func(raw string) (func(*models.DeepAnalysis), error) {
		v, _, err := extract.Bias(raw)
		return func(d *models.DeepAnalysis) { d.Bias = v }, err
	}},
	{kind: models.SubKeyPoints, parse: func(raw string) (func(*models.DeepAnalysis), error) {
		v, _, err := extract.KeyPoints(raw)
		return func(d *models.DeepAnalysis) { d.KeyPoints = v }, err
	}},
	{kind: models.SubEntities, parse: func(raw string) (func(*models.DeepAnalysis), error) {
		v, _, err := extract.Entities(raw)
		return func(d *models.DeepAnalysis) { d.Entities = v }, err
	}},
	{kind: models.SubFactCheck, parse: func(raw string) (func(*models.DeepAnalysis), error) {
		v, _, err := extract.FactCheck(raw)
		return func(d *models.DeepAnalysis) { d.FactCheck = v }, err
	}},
	{kind: models.SubTimeline, parse: func(raw string) (func(*models.DeepAnalysis), error) {
		v, _, err := extract.Timeline(raw)
		return func(d *models.DeepAnalysis) { d.Timeline = v }, err
	}},
	{kind: models.SubSentiment, parse: func(raw string) (func(*models.DeepAnalysis), error) {
		v, _, err := extract.Sentiment(raw)
		return func(d *models.DeepAnalysis) { d.SentimentDetails = v }, err
	}},
}

// Defaults returns a merged result where every leaf holds its default and
// is still pending.
func Defaults() *models.DeepAnalysis {
	d := &models.DeepAnalysis{
		Bias:             extract.DefaultBias(),
		KeyPoints:        []string{},
		Entities:         extract.EmptyEntities(),
		FactCheck:        extract.EmptyFactCheck(),
		Timeline:         nil,
		SentimentDetails: extract.DefaultSentiment(),
		States:           make(map[models.SubAnalysis]models.LeafState, len(models.AllSubAnalyses)),
	}
	for _, k := range models.AllSubAnalyses {
		d.States[k] = models.LeafPending
	}
	return d
}

type outcome struct {
	apply func(*models.DeepAnalysis)
	state models.LeafState
}

// Analyze runs the deep analysis. It fails only for blank article text.
func (o *Orchestrator) Analyze(ctx context.Context, articleText string) (*models.DeepAnalysis, error) {
	if strings.TrimSpace(articleText) == "" {
		return nil, fmt.Errorf("article text is required: %w", models.ErrValidation)
	}
	ctx, span := o.tracer.Start(ctx, "analysis.deep")
	defer span.End()

	article := helpers.Truncate(articleText, maxArticleChars)
	outcomes := make([]outcome, len(leaves))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.concurrency)
	for i, l := range leaves {
		i, l := i, l
		g.Go(func() error {
			outcomes[i] = o.run(gctx, l, article)
			return nil
		})
	}
	_ = g.Wait()

	merged := Defaults()
	failed := 0
	for i, l := range leaves {
		out := outcomes[i]
		if out.state == models.LeafSucceeded {
			out.apply(merged)
		} else {
			failed++
		}
		merged.States[l.kind] = out.state
	}
	span.SetAttributes(attribute.Int("failed_leaves", failed))
	if failed > 0 {
		o.logger.Info("deep analysis merged with defaults", zap.Int("failed", failed))
	}
	return merged, nil
}

func (o *Orchestrator) run(ctx context.Context, l leaf, article string) outcome {
	ctx, span := o.tracer.Start(ctx, "analysis.leaf", trace.WithAttributes(attribute.String("kind", string(l.kind))))
	defer span.End()

	fail := func(err error) outcome {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		o.logger.Warn("sub-analysis failed, using default", zap.String("kind", string(l.kind)), zap.Error(err))
		o.metrics.SubAnalysis(string(l.kind), string(models.LeafFailed))
		return outcome{state: models.LeafFailed}
	}

	raw, err := o.gen.Complete(ctx, provider.CompletionRequest{
		Task:    "analysis_" + string(l.kind),
		System:  systems[l.kind],
		Prompt:  article,
		Options: o.options,
	})
	if err != nil {
		return fail(err)
	}
	apply, err := l.parse(raw)
	if err != nil {
		return fail(fmt.Errorf("%s: %w", l.kind, err))
	}
	span.SetStatus(codes.Ok, "")
	o.metrics.SubAnalysis(string(l.kind), string(models.LeafSucceeded))
	return outcome{apply: apply, state: models.LeafSucceeded}
}

// Simple returns the summary, sentiment label and keywords of an article.
func (o *Orchestrator) Simple(ctx context.Context, articleText string) (*models.SimpleAnalysis, error) {
	if strings.TrimSpace(articleText) == "" {
		return nil, fmt.Errorf("article text is required: %w", models.ErrValidation)
	}
	out := o.synth.Primitives(ctx, articleText)
	return &out, nil
}
