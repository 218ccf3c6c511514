package server

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/mohammad-safakhou/newsdesk/internal/store"
	"github.com/mohammad-safakhou/newsdesk/models"
	fetchmodels "github.com/mohammad-safakhou/newsdesk/tools/web_fetch/models"
)

type AnalysisHandler struct {
	Store    *store.Store
	Pipeline *Pipeline
	Logger   *zap.Logger
}

func (h *AnalysisHandler) Register(g *echo.Group) {
	g.POST("", h.analyze)
}

// analyze runs the simple or deep analysis over a stored article, a url or raw text.
// Results for stored articles are persisted per kind.
func (h *AnalysisHandler) analyze(c echo.Context) error {
	uid, err := userID(c)
	if err != nil {
		return err
	}
	var req AnalysisRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(err.Error())
	}
	ctx := c.Request().Context()

	text, err := h.resolveText(ctx, uid, req)
	if err != nil {
		return err
	}
	if strings.TrimSpace(text) == "" {
		return badRequest("articleId, url or text required")
	}

	result := models.AnalysisResult{ArticleID: req.ArticleID}
	kind := store.AnalysisSimple
	var stored any
	if req.DeepAnalysis {
		deep, err := h.Pipeline.Analysis.Analyze(ctx, text)
		if err != nil {
			return httpError(err)
		}
		result.Deep, kind, stored = deep, store.AnalysisDeep, deep
	} else {
		simple, err := h.Pipeline.Analysis.Simple(ctx, text)
		if err != nil {
			return httpError(err)
		}
		result.Simple, stored = simple, simple
	}

	if req.ArticleID != "" {
		if err := h.Store.SaveAnalysis(ctx, req.ArticleID, kind, stored); err != nil {
			return httpError(err)
		}
	}
	return c.JSON(http.StatusOK, result)
}

// resolveText returns the article body. A stored article without content is
// fetched once and updated; if that fails its title stands in for the body.
// A url request falls back to its text field the same way and fails with 502
// when it carries none.
func (h *AnalysisHandler) resolveText(ctx context.Context, uid string, req AnalysisRequest) (string, error) {
	switch {
	case req.ArticleID != "":
		a, err := h.Store.GetArticle(ctx, req.ArticleID, uid)
		if err != nil {
			return "", httpError(err)
		}
		if strings.TrimSpace(a.Content) != "" {
			return a.Content, nil
		}
		if h.Pipeline.Fetcher != nil && a.URL != "" {
			res, err := h.Pipeline.Fetcher.Exec(ctx, a.URL)
			if err == nil && strings.TrimSpace(res.Text) != "" {
				if err := h.Store.UpdateArticleContent(ctx, a.ID, res.Title, res.Text); err != nil {
					return "", httpError(err)
				}
				return res.Text, nil
			}
			h.Logger.Warn("article fetch failed; using title", zap.String("article_id", a.ID), zap.Error(err))
		}
		return a.Title, nil
	case req.URL != "":
		if h.Pipeline.Fetcher == nil {
			if strings.TrimSpace(req.Text) != "" {
				return req.Text, nil
			}
			return "", echo.NewHTTPError(http.StatusServiceUnavailable, "article fetching is not configured")
		}
		res, err := h.Pipeline.Fetcher.Exec(ctx, req.URL)
		if errors.Is(err, fetchmodels.ErrInvalidURL) {
			return "", badRequest("a valid http(s) url is required")
		}
		if err == nil && strings.TrimSpace(res.Text) != "" {
			return res.Text, nil
		}
		if err == nil {
			err = errors.New("no readable text")
		}
		if strings.TrimSpace(req.Text) != "" {
			h.Logger.Warn("url fetch failed; using supplied text", zap.String("url", req.URL), zap.Error(err))
			return req.Text, nil
		}
		h.Logger.Warn("url fetch failed", zap.String("url", req.URL), zap.Error(err))
		return "", echo.NewHTTPError(http.StatusBadGateway, "could not fetch article").SetInternal(err)
	default:
		return req.Text, nil
	}
}
