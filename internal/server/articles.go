package server

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/mohammad-safakhou/newsdesk/internal/helpers"
	"github.com/mohammad-safakhou/newsdesk/internal/store"
	"github.com/mohammad-safakhou/newsdesk/models"
	"github.com/mohammad-safakhou/newsdesk/tools/web_fetch"
	"github.com/mohammad-safakhou/newsdesk/tools/web_fetch/article"
)

type ArticlesHandler struct {
	Store   *store.Store
	Fetcher web_fetch.WebFetcher // nil disables fetch-on-create
	Logger  *zap.Logger
}

func (h *ArticlesHandler) Register(g *echo.Group) {
	g.GET("", h.list)
	g.POST("", h.create)
	g.GET("/:id", h.get)
	g.DELETE("/:id", h.delete)
}

func (h *ArticlesHandler) list(c echo.Context) error {
	uid, err := userID(c)
	if err != nil {
		return err
	}
	items, err := h.Store.ListArticles(c.Request().Context(), uid)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, items)
}

// create saves an article. When only a url is given the page is fetched;
// a failed fetch still saves the article without content.
func (h *ArticlesHandler) create(c echo.Context) error {
	uid, err := userID(c)
	if err != nil {
		return err
	}
	var req CreateArticleRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(err.Error())
	}
	if _, err := article.ParseURL(req.URL); err != nil {
		return badRequest("a valid http(s) url is required")
	}
	a := models.Article{
		UserID:      uid,
		URL:         strings.TrimSpace(req.URL),
		Title:       strings.TrimSpace(req.Title),
		Source:      strings.TrimSpace(req.Source),
		Content:     strings.TrimSpace(req.Content),
		PublishedAt: req.PublishedAt,
	}
	ctx := c.Request().Context()
	if a.Content == "" && h.Fetcher != nil {
		res, err := h.Fetcher.Exec(ctx, a.URL)
		if err != nil {
			h.Logger.Warn("article fetch failed", zap.String("url", a.URL), zap.Error(err))
		} else {
			a.Content = res.Text
			if a.Title == "" {
				a.Title = res.Title
			}
			if a.Source == "" {
				a.Source = res.SiteName
			}
		}
	}
	if a.Source == "" {
		a.Source = helpers.Domain(a.URL)
	}
	if a.Title == "" {
		a.Title = a.URL
	}
	saved, err := h.Store.CreateArticle(ctx, a)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, saved)
}

func (h *ArticlesHandler) get(c echo.Context) error {
	uid, err := userID(c)
	if err != nil {
		return err
	}
	a, err := h.Store.GetArticle(c.Request().Context(), c.Param("id"), uid)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, a)
}

func (h *ArticlesHandler) delete(c echo.Context) error {
	uid, err := userID(c)
	if err != nil {
		return err
	}
	if err := h.Store.DeleteArticle(c.Request().Context(), c.Param("id"), uid); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}
