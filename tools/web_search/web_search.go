package web_search

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/mohammad-safakhou/newsdesk/models"
	"github.com/mohammad-safakhou/newsdesk/tools/web_search/brave"
	wsmodels "github.com/mohammad-safakhou/newsdesk/tools/web_search/models"
	"github.com/mohammad-safakhou/newsdesk/tools/web_search/serper"
)

// WebSearcher runs one query against a web search provider.
type WebSearcher interface {
	Search(ctx context.Context, q wsmodels.Query) ([]models.SearchResult, error)
}

type Provider string

const (
	SerperProvider Provider = "serper"
	BraveProvider  Provider = "brave"
)

var ErrUnsupportedProvider = errors.New("unsupported web search provider")

// NewWebSearcher builds the provider's searcher. A nil client uses http.DefaultClient.
func NewWebSearcher(provider Provider, apiKey string, client *http.Client) (WebSearcher, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, wsmodels.ErrMissingCredentials
	}
	switch Provider(strings.ToLower(string(provider))) {
	case SerperProvider:
		return serper.Search{APIKey: apiKey, Client: client}, nil
	case BraveProvider:
		return brave.Search{APIKey: apiKey, Client: client}, nil
	default:
		return nil, ErrUnsupportedProvider
	}
}
