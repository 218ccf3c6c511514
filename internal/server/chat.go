package server

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/mohammad-safakhou/newsdesk/internal/broker"
	"github.com/mohammad-safakhou/newsdesk/internal/helpers"
	"github.com/mohammad-safakhou/newsdesk/internal/query"
	"github.com/mohammad-safakhou/newsdesk/internal/store"
	"github.com/mohammad-safakhou/newsdesk/models"
)

const titleLimit = 80

type ChatHandler struct {
	Store    *store.Store
	Pipeline *Pipeline
	Logger   *zap.Logger
}

func (h *ChatHandler) Register(g *echo.Group) {
	g.POST("/chat", h.chat)
	g.GET("/conversations/:id", h.conversation)
}

// chat answers one message inside a conversation, creating the conversation
// on first use. Both turns are persisted; a persistence failure fails the request.
func (h *ChatHandler) chat(c echo.Context) error {
	uid, err := userID(c)
	if err != nil {
		return err
	}
	var req ChatRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(err.Error())
	}
	clean := query.CleanQuery(req.Message)
	if clean == "" {
		return badRequest("message required")
	}
	ctx := c.Request().Context()

	var conv *models.Conversation
	if req.ConversationID != "" {
		if conv, err = h.Store.GetConversation(ctx, req.ConversationID, uid); err != nil {
			return httpError(err)
		}
	} else {
		created, err := h.Store.CreateConversation(ctx, uid, helpers.Truncate(clean, titleLimit))
		if err != nil {
			return httpError(err)
		}
		conv = &created
	}
	history := conv.History()

	if _, err := h.Store.AddMessage(ctx, conv.ID, models.RoleUser, strings.TrimSpace(req.Message), nil); err != nil {
		return httpError(err)
	}

	bundle := h.Pipeline.retrieve(ctx, clean, broker.Flags{
		WebSearchEnabled: req.WebSearchEnabled,
		SearchMode:       req.SearchMode,
		Locale:           req.Locale,
	}, broker.PurposeChat)
	reply := h.Pipeline.Synth.Answer(ctx, models.NewSynthesisRequest(clean, bundle, history))

	sources := bundle.SourceURLs
	if sources == nil {
		sources = []string{}
	}
	if _, err := h.Store.AddMessage(ctx, conv.ID, models.RoleAssistant, reply.Text, sources); err != nil {
		return httpError(err)
	}
	h.Logger.Info("chat answered",
		zap.String("conversation_id", conv.ID),
		zap.Int("segments", len(bundle.Segments)),
		zap.Int("sources", len(sources)),
		zap.Bool("degraded", reply.Degraded))

	return c.JSON(http.StatusOK, ChatResponse{Response: reply.Text, Sources: sources, ConversationID: conv.ID})
}

func (h *ChatHandler) conversation(c echo.Context) error {
	uid, err := userID(c)
	if err != nil {
		return err
	}
	conv, err := h.Store.GetConversation(c.Request().Context(), c.Param("id"), uid)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, conv)
}
