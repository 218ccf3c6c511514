package brave

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/mohammad-safakhou/newsdesk/internal/helpers"
	"github.com/mohammad-safakhou/newsdesk/models"
	wsmodels "github.com/mohammad-safakhou/newsdesk/tools/web_search/models"
)

const defaultBaseURL = "https://api.search.brave.com/res/v1"

// Search queries the Brave Search API.
// https://api.search.brave.com/app/documentation/web-search
type Search struct {
	APIKey  string
	BaseURL string
	Client  *http.Client
}

type result struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	Description string `json:"description"`
	Age         string `json:"age"`
	PageAge     string `json:"page_age"`
	Profile     struct {
		Name string `json:"name"`
	} `json:"profile"`
	MetaURL struct {
		Hostname string `json:"hostname"`
	} `json:"meta_url"`
}

// Search uses the news endpoint in news mode and the web endpoint otherwise.
func (s Search) Search(ctx context.Context, q wsmodels.Query) ([]models.SearchResult, error) {
	if s.APIKey == "" {
		return nil, wsmodels.ErrMissingCredentials
	}
	base := s.BaseURL
	if base == "" {
		base = defaultBaseURL
	}
	lang, region := helpers.LocaleParts(q.Locale)
	params := url.Values{}
	params.Set("q", q.Text)
	params.Set("count", strconv.Itoa(q.Count))
	params.Set("search_lang", lang)
	params.Set("country", region)

	endpoint := base + "/web/search"
	if q.Mode == wsmodels.ModeNews {
		endpoint = base + "/news/search"
		params.Set("freshness", "pw")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Subscription-Token", s.APIKey)

	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, &wsmodels.StatusError{Provider: "brave", Code: resp.StatusCode}
	}

	var raw struct {
		Results []result `json:"results"`
		Web     struct {
			Results []result `json:"results"`
		} `json:"web"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("brave: decode: %w", err)
	}
	items := raw.Web.Results
	if q.Mode == wsmodels.ModeNews {
		items = raw.Results
	}

	now := time.Now()
	var out []models.SearchResult
	for _, r := range items {
		if q.Count > 0 && len(out) >= q.Count {
			break
		}
		if r.URL == "" {
			continue
		}
		source := r.Profile.Name
		if source == "" {
			source = r.MetaURL.Hostname
		}
		published := wsmodels.ParseAge(r.PageAge, now)
		if published == nil {
			published = wsmodels.ParseAge(r.Age, now)
		}
		out = append(out, models.SearchResult{
			Title:       r.Title,
			Link:        r.URL,
			Snippet:     r.Description,
			Source:      source,
			PublishedAt: published,
		})
	}
	return out, nil
}
