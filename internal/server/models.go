package server

import (
	"time"

	"github.com/mohammad-safakhou/newsdesk/models"
)

// HTTPError is a generic error envelope returned by the server.
type HTTPError struct {
	Error string `json:"error"`
}

// AuthSignupRequest represents the signup payload.
type AuthSignupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthLoginRequest represents the login payload.
type AuthLoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// TokenResponse carries a bearer token.
type TokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// IDResponse is a generic id response wrapper.
type IDResponse struct {
	ID string `json:"id"`
}

type ChatRequest struct {
	Message          string `json:"message"`
	WebSearchEnabled bool   `json:"webSearchEnabled"`
	SearchMode       bool   `json:"searchMode"`
	Locale           string `json:"locale,omitempty"`
	ConversationID   string `json:"conversationId,omitempty"`
}

type ChatResponse struct {
	Response       string   `json:"response"`
	Sources        []string `json:"sources"`
	ConversationID string   `json:"conversationId"`
}

type ExploreRequest struct {
	Topic                  string `json:"topic"`
	WebSearchEnabled       bool   `json:"webSearchEnabled"`
	GenerateDetailedReport bool   `json:"generateDetailedReport"`
	Locale                 string `json:"locale,omitempty"`
}

type ExploreResponse struct {
	Explanation         string         `json:"explanation"`
	KeyPoints           []string       `json:"keyPoints"`
	CurrentDevelopments string         `json:"currentDevelopments"`
	RelatedTopics       []string       `json:"relatedTopics"`
	SuggestedQuestions  []string       `json:"suggestedQuestions"`
	Sources             []string       `json:"sources"`
	DetailedReport      *models.Report `json:"detailedReport,omitempty"`
}

// AnalysisRequest names the article by id, by url, or carries its text.
type AnalysisRequest struct {
	ArticleID    string `json:"articleId,omitempty"`
	URL          string `json:"url,omitempty"`
	Text         string `json:"text,omitempty"`
	DeepAnalysis bool   `json:"deepAnalysis"`
}

type CreateArticleRequest struct {
	URL         string     `json:"url"`
	Title       string     `json:"title"`
	Source      string     `json:"source"`
	Content     string     `json:"content"`
	PublishedAt *time.Time `json:"publishedAt,omitempty"`
}
