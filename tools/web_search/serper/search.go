package serper

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/mohammad-safakhou/newsdesk/internal/helpers"
	"github.com/mohammad-safakhou/newsdesk/models"
	wsmodels "github.com/mohammad-safakhou/newsdesk/tools/web_search/models"
	"github.com/tidwall/gjson"
)

const defaultBaseURL = "https://google.serper.dev"

// Search queries the Serper Google proxy. https://serper.dev/
type Search struct {
	APIKey  string
	BaseURL string
	Client  *http.Client
}

// Search posts to /news in news mode and /search otherwise.
func (s Search) Search(ctx context.Context, q wsmodels.Query) ([]models.SearchResult, error) {
	if s.APIKey == "" {
		return nil, wsmodels.ErrMissingCredentials
	}
	base := s.BaseURL
	if base == "" {
		base = defaultBaseURL
	}
	lang, region := helpers.LocaleParts(q.Locale)
	body, _ := json.Marshal(map[string]any{"q": q.Text, "num": q.Count, "gl": region, "hl": lang})

	path, listKey := "/search", "organic"
	if q.Mode == wsmodels.ModeNews {
		path, listKey = "/news", "news"
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, base+path, strings.NewReader(string(body)))
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-API-KEY", s.APIKey)
	req.Header.Set("Content-Type", "application/json")

	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	raw, err := helpers.ReadAllAndClose(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &wsmodels.StatusError{Provider: "serper", Code: resp.StatusCode}
	}

	now := time.Now()
	var out []models.SearchResult
	gjson.GetBytes(raw, listKey).ForEach(func(_, item gjson.Result) bool {
		if q.Count > 0 && len(out) >= q.Count {
			return false
		}
		link := item.Get("link").String()
		if link == "" {
			return true
		}
		out = append(out, models.SearchResult{
			Title:       item.Get("title").String(),
			Link:        link,
			Snippet:     item.Get("snippet").String(),
			Source:      item.Get("source").String(),
			PublishedAt: wsmodels.ParseAge(item.Get("date").String(), now),
		})
		return true
	})
	return out, nil
}
