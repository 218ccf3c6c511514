// Package synth turns a clean query and its assembled context into answers,
// topic explanations and reports, and computes the article primitives used by
// the simple analysis path.
package synth

import (
	"context"
	"strings"

	"github.com/mohammad-safakhou/newsdesk/internal/extract"
	"github.com/mohammad-safakhou/newsdesk/internal/helpers"
	"github.com/mohammad-safakhou/newsdesk/internal/logging"
	"github.com/mohammad-safakhou/newsdesk/models"
	"github.com/mohammad-safakhou/newsdesk/provider"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Task names used for metrics and error wrapping.
const (
	TaskAnswer    = "answer"
	TaskExplain   = "explain"
	TaskReport    = "report"
	TaskSummary   = "summary"
	TaskSentiment = "sentiment_label"
	TaskKeywords  = "keywords"
)

// maxArticleChars bounds the article text sent with each primitive call.
const maxArticleChars = 12000

type Synthesizer struct {
	gen     *provider.Generator
	options provider.Options
	logger  *zap.Logger
}

type Option func(*Synthesizer)

// WithOptions sets the sampling options for every call.
func WithOptions(o provider.Options) Option {
	return func(s *Synthesizer) { s.options = o }
}

func WithLogger(l *zap.Logger) Option {
	return func(s *Synthesizer) { s.logger = logging.Named(l, "synth") }
}

func New(gen *provider.Generator, opts ...Option) *Synthesizer {
	s := &Synthesizer{gen: gen, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Reply is a chat answer. Degraded is set when the backend failed and Text is
// the generic apology.
type Reply struct {
	Text     string
	Degraded bool
}

// Answer produces the chat reply for req, including its conversation history.
func (s *Synthesizer) Answer(ctx context.Context, req models.SynthesisRequest) Reply {
	out, err := s.gen.CompleteWithContext(ctx, provider.ContextualRequest{
		Task:    TaskAnswer,
		System:  answerSystem,
		Query:   req.CleanQuery,
		Context: req.Context,
		History: req.History,
		Options: s.options,
	})
	if err != nil {
		s.logger.Warn("answer generation failed", zap.Error(err))
		return Reply{Text: GenericAnswer, Degraded: true}
	}
	return Reply{Text: out}
}

// Exploration is the result of exploring a topic.
type Exploration struct {
	Explanation models.TopicExplanation
	Report      *models.Report
	Sources     []string
	Degraded    bool
}

// Explore explains the topic and, when detailed is set, writes a report in
// parallel. Failed calls fall back to the extractor defaults. Sources are the
// rendered context links followed by any links found in the generated text.
func (s *Synthesizer) Explore(ctx context.Context, req models.SynthesisRequest, detailed bool) Exploration {
	var (
		explainRaw string
		reportRaw  string
		explainErr error
		reportErr  error
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		explainRaw, explainErr = s.gen.CompleteWithContext(gctx, provider.ContextualRequest{
			Task:    TaskExplain,
			System:  explainSystem,
			Query:   explainPrompt(req.CleanQuery),
			Context: req.Context,
			Options: s.options,
		})
		return nil
	})
	if detailed {
		g.Go(func() error {
			reportRaw, reportErr = s.gen.CompleteWithContext(gctx, provider.ContextualRequest{
				Task:    TaskReport,
				System:  reportSystem,
				Query:   reportPrompt(req.CleanQuery),
				Context: req.Context,
				Options: s.options,
			})
			return nil
		})
	}
	_ = g.Wait()

	var out Exploration
	if explainErr != nil {
		s.logger.Warn("explanation generation failed", zap.Error(explainErr))
		explainRaw = ""
		out.Degraded = true
	}
	out.Explanation, _ = extract.TopicExplanation(explainRaw)

	var bundleURLs []string
	if req.Context != nil {
		bundleURLs = req.Context.SourceURLs
	}
	found := extract.URLs(explainRaw, out.Explanation.Resources)

	if detailed {
		if reportErr != nil {
			s.logger.Warn("report generation failed", zap.Error(reportErr))
			reportRaw = ""
		}
		report, _ := extract.Report(reportRaw)
		out.Report = &report
		found = append(found, extract.URLs(reportRaw, report.Resources)...)
	}
	out.Sources = mergeSources(bundleURLs, found)
	return out
}

// Primitives computes summary, sentiment label and keywords concurrently.
// Each failure leaves its own field at the default.
func (s *Synthesizer) Primitives(ctx context.Context, text string) models.SimpleAnalysis {
	article := helpers.Truncate(text, maxArticleChars)
	out := models.SimpleAnalysis{Sentiment: models.SentimentNeutral, Keywords: []string{}}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if raw, err := s.primitive(gctx, TaskSummary, summarySystem, article); err == nil {
			out.Summary = strings.TrimSpace(raw)
		}
		return nil
	})
	g.Go(func() error {
		if raw, err := s.primitive(gctx, TaskSentiment, sentimentSystem, article); err == nil {
			out.Sentiment = extract.SentimentLabel(raw)
		}
		return nil
	})
	g.Go(func() error {
		if raw, err := s.primitive(gctx, TaskKeywords, keywordsSystem, article); err == nil {
			out.Keywords = extract.Keywords(raw)
		}
		return nil
	})
	_ = g.Wait()
	return out
}

func (s *Synthesizer) primitive(ctx context.Context, task, system, article string) (string, error) {
	raw, err := s.gen.Complete(ctx, provider.CompletionRequest{Task: task, System: system, Prompt: article, Options: s.options})
	if err != nil {
		s.logger.Warn("primitive generation failed", zap.String("task", task), zap.Error(err))
		return "", err
	}
	return raw, nil
}

func mergeSources(lists ...[]string) []string {
	out := []string{}
	seen := make(map[string]struct{})
	for _, l := range lists {
		for _, u := range l {
			key := helpers.LinkKey(u)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, u)
		}
	}
	return out
}
