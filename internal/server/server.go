package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/mohammad-safakhou/newsdesk/config"
	"github.com/mohammad-safakhou/newsdesk/internal/analysis"
	"github.com/mohammad-safakhou/newsdesk/internal/assembler"
	"github.com/mohammad-safakhou/newsdesk/internal/broker"
	"github.com/mohammad-safakhou/newsdesk/internal/logging"
	"github.com/mohammad-safakhou/newsdesk/internal/query"
	"github.com/mohammad-safakhou/newsdesk/internal/runtime"
	"github.com/mohammad-safakhou/newsdesk/internal/session"
	"github.com/mohammad-safakhou/newsdesk/internal/store"
	"github.com/mohammad-safakhou/newsdesk/internal/synth"
	"github.com/mohammad-safakhou/newsdesk/internal/telemetry"
	"github.com/mohammad-safakhou/newsdesk/news/newsapi"
	"github.com/mohammad-safakhou/newsdesk/provider"
	"github.com/mohammad-safakhou/newsdesk/tools/web_fetch"
	"github.com/mohammad-safakhou/newsdesk/tools/web_search"
)

const shutdownTimeout = 10 * time.Second

// Deps is everything the HTTP layer needs. Run builds it from config; tests build it by hand.
type Deps struct {
	Store          *store.Store
	Sessions       session.Registry
	Secret         []byte
	SessionTTL     time.Duration
	SecureCookies  bool
	AllowedOrigins []string
	Pipeline       *Pipeline
	Metrics        *telemetry.Metrics
	Logger         *zap.Logger
}

// New builds the echo instance with every route registered.
func New(d Deps) *echo.Echo {
	logger := d.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	httpLog := logging.Named(logger, "http")

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = errorHandler(httpLog)
	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			httpLog.Debug("request",
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency))
			return nil
		},
	}))
	origins := d.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     origins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderContentType, echo.HeaderAuthorization, "Cookie"},
		AllowCredentials: true,
	}))

	e.GET("/healthz", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })
	e.GET("/metrics", echo.WrapHandler(d.Metrics.Handler()))

	api := e.Group("/api")
	auth := &AuthHandler{
		Store:         d.Store,
		Sessions:      d.Sessions,
		Secret:        d.Secret,
		TTL:           d.SessionTTL,
		SecureCookies: d.SecureCookies,
		Logger:        logging.Named(logger, "auth"),
	}
	auth.Register(api.Group("/auth"))

	protected := api.Group("", runtime.EchoAuthMiddleware(d.Secret, d.Sessions))
	chat := &ChatHandler{Store: d.Store, Pipeline: d.Pipeline, Logger: logging.Named(logger, "chat")}
	chat.Register(protected)
	topics := &TopicsHandler{Pipeline: d.Pipeline, Logger: logging.Named(logger, "topics")}
	topics.Register(protected.Group("/topics"))
	articles := &ArticlesHandler{Store: d.Store, Fetcher: d.Pipeline.Fetcher, Logger: logging.Named(logger, "articles")}
	articles.Register(protected.Group("/articles"))
	an := &AnalysisHandler{Store: d.Store, Pipeline: d.Pipeline, Logger: logging.Named(logger, "analysis")}
	an.Register(protected.Group("/analysis"))
	return e
}

// errorHandler renders every error as {"error": msg}. Internal causes are logged, never returned.
func errorHandler(logger *zap.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		code := http.StatusInternalServerError
		msg := "internal error"
		var he *echo.HTTPError
		if errors.As(err, &he) {
			code = he.Code
			if he.Message != nil {
				msg = fmt.Sprint(he.Message)
			}
		}
		req := c.Request()
		fields := []zap.Field{
			zap.Int("status", code),
			zap.String("method", req.Method),
			zap.String("path", req.URL.Path),
			zap.Error(err),
		}
		if code >= http.StatusInternalServerError {
			logger.Error("request failed", fields...)
		} else {
			logger.Debug("request rejected", fields...)
		}
		if c.Response().Committed {
			return
		}
		if req.Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, HTTPError{Error: msg})
	}
}

// Run wires every component from cfg and serves until ctx is cancelled.
func Run(ctx context.Context, cfg *config.Config, logger *zap.Logger, version string) error {
	shutdownTracing, err := telemetry.SetupTracing(ctx, cfg.Telemetry, version)
	if err != nil {
		logger.Warn("tracing disabled", zap.Error(err))
	}
	defer func() { _ = shutdownTracing(context.Background()) }()

	secret, err := runtime.LoadJWTSecret(cfg)
	if err != nil {
		return err
	}
	st, err := store.NewWithDSN(ctx, cfg.Storage.Postgres.DSN())
	if err != nil {
		return err
	}
	defer st.Close()

	sessions, kind, err := session.NewRegistry(ctx, cfg.Storage.Redis, cfg.Server.SessionTTL)
	if err != nil {
		return fmt.Errorf("session registry: %w", err)
	}
	logger.Info("session registry ready", zap.String("store", string(kind)))

	metrics := telemetry.NewMetrics()
	pipeline := buildPipeline(cfg, metrics, logger)

	e := New(Deps{
		Store:          st,
		Sessions:       sessions,
		Secret:         secret,
		SessionTTL:     cfg.Server.SessionTTL,
		SecureCookies:  cfg.Server.SecureCookies,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Pipeline:       pipeline,
		Metrics:        metrics,
		Logger:         logger,
	})

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", cfg.Server.Address), zap.String("version", version))
		errCh <- e.Start(cfg.Server.Address)
	}()
	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	logger.Info("shutting down")
	return e.Shutdown(shutdownCtx)
}

// buildPipeline constructs the retrieval and synthesis components. Missing
// credentials leave the matching backend unset so requests degrade instead of failing.
func buildPipeline(cfg *config.Config, metrics *telemetry.Metrics, logger *zap.Logger) *Pipeline {
	p := cfg.Pipeline
	client := &http.Client{Timeout: 30 * time.Second}

	var backends broker.Backends
	if ws, err := web_search.NewWebSearcher(web_search.Provider(cfg.Sources.WebSearch.Provider), cfg.Sources.WebSearch.APIKey(), client); err == nil {
		backends.Web = ws
	} else {
		logger.Warn("web search disabled", zap.String("provider", cfg.Sources.WebSearch.Provider), zap.Error(err))
	}
	if cfg.Sources.NewsAPI.APIKey != "" {
		news := newsapi.NewClient(cfg.Sources.NewsAPI.APIKey, cfg.Sources.NewsAPI.Endpoint, client)
		backends.News = news
		backends.Headlines = news
	} else {
		logger.Warn("news api disabled: no api key")
	}

	backend, err := provider.NewBackend(cfg.LLM)
	if err != nil {
		logger.Warn("generative backend unavailable", zap.Error(err))
		backend = provider.Unavailable{}
	}
	gen := newGenerator(backend, p, metrics, logger)
	genOpts := provider.Options{Temperature: cfg.LLM.Temperature, MaxTokens: cfg.LLM.MaxTokens}
	s := synth.New(gen, synth.WithOptions(genOpts), synth.WithLogger(logger))

	fetcher, err := web_fetch.NewWebFetcher(cfg.Sources.Fetch, client)
	if err != nil {
		logger.Warn("article fetching disabled", zap.Error(err))
		fetcher = nil
	}

	return &Pipeline{
		Analyzer: query.New(p.Keywords),
		Broker: broker.New(backends,
			broker.WithTierTimeout(p.TierTimeout),
			broker.WithBackendConcurrency(p.BackendConcurrency),
			broker.WithDefaultLocale(p.DefaultLocale),
			broker.WithMetrics(metrics),
			broker.WithLogger(logger)),
		Assembler: assembler.New(
			assembler.WithMaxChars(p.MaxContextChars),
			assembler.WithDateFormat(p.DateFormat)),
		Synth: s,
		Analysis: analysis.New(gen, s,
			analysis.WithConcurrency(p.AnalysisConcurrency),
			analysis.WithOptions(genOpts),
			analysis.WithMetrics(metrics),
			analysis.WithLogger(logger)),
		Fetcher: fetcher,
	}
}

// newGenerator shares one in-flight cap across every request and sub-analysis.
func newGenerator(backend provider.Backend, p config.PipelineConfig, metrics *telemetry.Metrics, logger *zap.Logger) *provider.Generator {
	return provider.NewGenerator(backend,
		provider.WithCallTimeout(p.CallTimeout),
		provider.WithConcurrency(p.LLMConcurrency),
		provider.WithMetrics(metrics),
		provider.WithLogger(logging.Named(logger, "generator")))
}
