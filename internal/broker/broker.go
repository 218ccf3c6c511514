// Package broker retrieves candidate sources through a prioritised chain of
// backends, falling back tier by tier and deduplicating links.
package broker

import (
	"context"
	"errors"
	"time"

	"github.com/mohammad-safakhou/newsdesk/internal/helpers"
	"github.com/mohammad-safakhou/newsdesk/internal/logging"
	"github.com/mohammad-safakhou/newsdesk/internal/telemetry"
	"github.com/mohammad-safakhou/newsdesk/models"
	"github.com/mohammad-safakhou/newsdesk/news/newsapi"
	wsmodels "github.com/mohammad-safakhou/newsdesk/tools/web_search/models"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

const (
	chatWebCount      = 8
	exploreWebCount   = 15
	targetedNewsCount = 8
	headlineCount     = 10
)

var errNoBackend = errors.New("backend not configured")

// Purpose selects how many web results a request asks for.
type Purpose int

const (
	PurposeChat Purpose = iota
	PurposeExplore
)

// WebCount is the web-search result cap for the purpose.
func (p Purpose) WebCount() int {
	if p == PurposeExplore {
		return exploreWebCount
	}
	return chatWebCount
}

type Flags struct {
	WebSearchEnabled bool
	SearchMode       bool
	Locale           string
}

type Request struct {
	CleanQuery string
	Terms      []string
	Flags      Flags
	Purpose    Purpose
}

// WebSearchBackend matches web_search.WebSearcher.
type WebSearchBackend interface {
	Search(ctx context.Context, q wsmodels.Query) ([]models.SearchResult, error)
}

// TargetedNewsBackend runs a recency-sorted boolean news query.
type TargetedNewsBackend interface {
	Everything(ctx context.Context, q newsapi.EverythingQuery) ([]models.SearchResult, error)
}

// HeadlineBackend returns region-scoped top headlines.
type HeadlineBackend interface {
	TopHeadlines(ctx context.Context, region string, count int) ([]models.SearchResult, error)
}

// Backends are injected per broker. Any of them may be nil, which the broker
// treats as a tier with zero results.
type Backends struct {
	Web       WebSearchBackend
	News      TargetedNewsBackend
	Headlines HeadlineBackend
}

// TierResult is the outcome of one tier probe.
type TierResult struct {
	Tier    models.SourceTier
	Results []models.SearchResult
	Err     error
}

// Usable reports whether the tier produced at least one result.
func (t TierResult) Usable() bool { return len(t.Results) > 0 }

// Result holds the attempted tiers in priority order and the deduplicated links.
type Result struct {
	Tiers      []TierResult
	SourceURLs []string
}

// Tier returns the probe for t, if it ran.
func (r Result) Tier(t models.SourceTier) (TierResult, bool) {
	for _, tr := range r.Tiers {
		if tr.Tier == t {
			return tr, true
		}
	}
	return TierResult{}, false
}

// Usable reports whether tier t ran and produced results.
func (r Result) Usable(t models.SourceTier) bool {
	tr, ok := r.Tier(t)
	return ok && tr.Usable()
}

type Broker struct {
	backends      Backends
	tierTimeout   time.Duration
	defaultLocale string
	sems          map[models.SourceTier]*semaphore.Weighted
	tracer        trace.Tracer
	metrics       *telemetry.Metrics
	logger        *zap.Logger
}

type Option func(*Broker)

func WithTierTimeout(d time.Duration) Option {
	return func(b *Broker) {
		if d > 0 {
			b.tierTimeout = d
		}
	}
}

// WithBackendConcurrency caps in-flight calls per backend across requests.
func WithBackendConcurrency(n int) Option {
	return func(b *Broker) {
		if n <= 0 {
			return
		}
		for _, t := range []models.SourceTier{models.TierWebSearch, models.TierTargetedNews, models.TierHeadlines} {
			b.sems[t] = semaphore.NewWeighted(int64(n))
		}
	}
}

func WithDefaultLocale(locale string) Option {
	return func(b *Broker) {
		if locale != "" {
			b.defaultLocale = locale
		}
	}
}

func WithMetrics(m *telemetry.Metrics) Option {
	return func(b *Broker) { b.metrics = m }
}

func WithLogger(l *zap.Logger) Option {
	return func(b *Broker) { b.logger = logging.Named(l, "broker") }
}

func New(backends Backends, opts ...Option) *Broker {
	b := &Broker{
		backends:      backends,
		tierTimeout:   8 * time.Second,
		defaultLocale: "en-US",
		sems:          make(map[models.SourceTier]*semaphore.Weighted),
		tracer:        telemetry.Tracer(),
		logger:        zap.NewNop(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Fetch runs the tier chain. It never fails: backend errors and timeouts are
// logged and count as empty tiers.
func (b *Broker) Fetch(ctx context.Context, req Request) Result {
	ctx, span := b.tracer.Start(ctx, "broker.fetch", trace.WithAttributes(
		attribute.Bool("web_search_enabled", req.Flags.WebSearchEnabled),
		attribute.Bool("search_mode", req.Flags.SearchMode),
		attribute.Int("terms", len(req.Terms)),
	))
	defer span.End()

	locale := req.Flags.Locale
	if locale == "" {
		locale = b.defaultLocale
	}
	lang, region := helpers.LocaleParts(locale)

	var tiers []TierResult
	if req.Flags.WebSearchEnabled {
		web := b.probe(ctx, models.TierWebSearch, func(ctx context.Context) ([]models.SearchResult, error) {
			if b.backends.Web == nil {
				return nil, errNoBackend
			}
			mode := wsmodels.ModeNews
			if req.Flags.SearchMode {
				mode = wsmodels.ModeComprehensive
			}
			return b.backends.Web.Search(ctx, wsmodels.Query{
				Text: req.CleanQuery, Mode: mode, Locale: locale, Count: req.Purpose.WebCount(),
			})
		})
		tiers = append(tiers, web)
		if web.Usable() {
			return b.finish(span, tiers)
		}
	}

	targeted := func(ctx context.Context) TierResult {
		return b.probe(ctx, models.TierTargetedNews, func(ctx context.Context) ([]models.SearchResult, error) {
			if b.backends.News == nil {
				return nil, errNoBackend
			}
			return b.backends.News.Everything(ctx, newsapi.EverythingQuery{
				Terms: req.Terms, Fallback: req.CleanQuery, Language: lang, SortBy: "publishedAt", PageSize: targetedNewsCount,
			})
		})
	}
	headlines := func(ctx context.Context) TierResult {
		return b.probe(ctx, models.TierHeadlines, func(ctx context.Context) ([]models.SearchResult, error) {
			if b.backends.Headlines == nil {
				return nil, errNoBackend
			}
			return b.backends.Headlines.TopHeadlines(ctx, region, headlineCount)
		})
	}

	if req.Flags.SearchMode {
		// Headlines do not depend on the targeted result in search mode.
		var news, top TierResult
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error { news = targeted(gctx); return nil })
		g.Go(func() error { top = headlines(gctx); return nil })
		_ = g.Wait()
		return b.finish(span, append(tiers, news, top))
	}

	news := targeted(ctx)
	tiers = append(tiers, news)
	if !news.Usable() {
		tiers = append(tiers, headlines(ctx))
	}
	return b.finish(span, tiers)
}

// finish drops links already produced by a higher-priority tier and flattens the links.
func (b *Broker) finish(span trace.Span, tiers []TierResult) Result {
	seen := make(map[string]struct{})
	res := Result{Tiers: make([]TierResult, 0, len(tiers))}
	for _, tr := range tiers {
		kept := tr.Results[:0:0]
		for _, r := range tr.Results {
			key := helpers.LinkKey(r.Link)
			if key == "" {
				continue
			}
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			kept = append(kept, r)
			res.SourceURLs = append(res.SourceURLs, r.Link)
		}
		tr.Results = kept
		res.Tiers = append(res.Tiers, tr)
	}
	span.SetAttributes(attribute.Int("sources", len(res.SourceURLs)))
	return res
}

func (b *Broker) probe(ctx context.Context, tier models.SourceTier, call func(context.Context) ([]models.SearchResult, error)) TierResult {
	ctx, span := b.tracer.Start(ctx, "broker.tier", trace.WithAttributes(attribute.String("tier", tier.String())))
	defer span.End()

	res := TierResult{Tier: tier}
	if sem := b.sems[tier]; sem != nil {
		if err := sem.Acquire(ctx, 1); err != nil {
			res.Err = err
			b.record(span, tier, res)
			return res
		}
		defer sem.Release(1)
	}
	ctx, cancel := context.WithTimeout(ctx, b.tierTimeout)
	defer cancel()

	res.Results, res.Err = call(ctx)
	if res.Err != nil {
		res.Results = nil
	}
	b.record(span, tier, res)
	return res
}

func (b *Broker) record(span trace.Span, tier models.SourceTier, res TierResult) {
	outcome := "hit"
	switch {
	case errors.Is(res.Err, errNoBackend), errors.Is(res.Err, wsmodels.ErrMissingCredentials), errors.Is(res.Err, newsapi.ErrMissingAPIKey):
		outcome = "skipped"
		b.logger.Debug("tier unavailable", zap.String("tier", tier.String()), zap.Error(res.Err))
	case res.Err != nil:
		outcome = "error"
		span.RecordError(res.Err)
		span.SetStatus(codes.Error, res.Err.Error())
		b.logger.Warn("tier failed, treating as empty", zap.String("tier", tier.String()), zap.Error(res.Err))
	case len(res.Results) == 0:
		outcome = "empty"
	default:
		span.SetStatus(codes.Ok, "")
	}
	span.SetAttributes(attribute.Int("results", len(res.Results)), attribute.String("outcome", outcome))
	b.metrics.TierProbe(tier.String(), outcome)
}
