package server

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/mohammad-safakhou/newsdesk/internal/broker"
	"github.com/mohammad-safakhou/newsdesk/internal/query"
	"github.com/mohammad-safakhou/newsdesk/models"
)

type TopicsHandler struct {
	Pipeline *Pipeline
	Logger   *zap.Logger
}

func (h *TopicsHandler) Register(g *echo.Group) {
	g.POST("/explore", h.explore)
}

// explore explains a topic from retrieved context and optionally adds a report.
func (h *TopicsHandler) explore(c echo.Context) error {
	var req ExploreRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(err.Error())
	}
	clean := query.CleanQuery(req.Topic)
	if clean == "" {
		return badRequest("topic required")
	}
	ctx := c.Request().Context()

	bundle := h.Pipeline.retrieve(ctx, clean, broker.Flags{
		WebSearchEnabled: req.WebSearchEnabled,
		Locale:           req.Locale,
	}, broker.PurposeExplore)
	out := h.Pipeline.Synth.Explore(ctx, models.NewSynthesisRequest(clean, bundle, nil), req.GenerateDetailedReport)
	if out.Degraded {
		h.Logger.Warn("topic explanation degraded", zap.String("topic", clean))
	}

	ex := out.Explanation
	return c.JSON(http.StatusOK, ExploreResponse{
		Explanation:         ex.Overview,
		KeyPoints:           ex.KeyPoints,
		CurrentDevelopments: ex.CurrentDevelopments,
		RelatedTopics:       ex.RelatedTopics,
		SuggestedQuestions:  ex.SuggestedQuestions,
		Sources:             out.Sources,
		DetailedReport:      out.Report,
	})
}
