package newsapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/mohammad-safakhou/newsdesk/models"
)

const defaultEndpoint = "https://newsapi.org/v2"

// ErrMissingAPIKey is returned when the client has no credentials.
var ErrMissingAPIKey = errors.New("newsapi: api key missing")

type Article struct {
	Source struct {
		Name string `json:"name"`
	} `json:"source"`
	Author      string    `json:"author"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	URL         string    `json:"url"`
	PublishedAt time.Time `json:"publishedAt"`
}

type response struct {
	Status       string    `json:"status"`
	Code         string    `json:"code"`
	Message      string    `json:"message"`
	TotalResults int       `json:"totalResults"`
	Articles     []Article `json:"articles"`
}

// BuildQuery wraps each term in quotes and joins them with OR.
func BuildQuery(terms []string) string {
	quoted := make([]string, 0, len(terms))
	for _, t := range terms {
		t = strings.TrimSpace(strings.ReplaceAll(t, `"`, ""))
		if t == "" {
			continue
		}
		quoted = append(quoted, fmt.Sprintf(`"%s"`, t))
	}
	return strings.Join(quoted, " OR ")
}

// EverythingQuery targets the /everything endpoint.
type EverythingQuery struct {
	Terms    []string
	Fallback string // used verbatim when Terms is empty
	Language string
	SortBy   string // relevancy, popularity, publishedAt
	PageSize int
}

type Client struct {
	APIKey   string
	Endpoint string
	HTTP     *http.Client
}

func NewClient(apiKey, endpoint string, httpClient *http.Client) *Client {
	if endpoint == "" {
		endpoint = defaultEndpoint
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{APIKey: apiKey, Endpoint: strings.TrimRight(endpoint, "/"), HTTP: httpClient}
}

// Everything searches all indexed articles for the OR-joined terms.
func (c *Client) Everything(ctx context.Context, q EverythingQuery) ([]models.SearchResult, error) {
	query := BuildQuery(q.Terms)
	if query == "" {
		query = strings.TrimSpace(q.Fallback)
	}
	if query == "" {
		return nil, nil
	}
	params := url.Values{}
	params.Add("q", query)
	if q.Language != "" {
		params.Add("language", q.Language)
	}
	if q.SortBy != "" {
		params.Add("sortBy", q.SortBy)
	}
	if q.PageSize > 0 {
		params.Add("pageSize", strconv.Itoa(q.PageSize))
	}
	return c.fetch(ctx, "/everything", params, q.PageSize)
}

// TopHeadlines returns region-scoped top headlines.
func (c *Client) TopHeadlines(ctx context.Context, region string, count int) ([]models.SearchResult, error) {
	params := url.Values{}
	if region != "" {
		params.Add("country", strings.ToLower(region))
	}
	if count > 0 {
		params.Add("pageSize", strconv.Itoa(count))
	}
	return c.fetch(ctx, "/top-headlines", params, count)
}

func (c *Client) fetch(ctx context.Context, path string, params url.Values, limit int) ([]models.SearchResult, error) {
	if c == nil || c.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	reqURL := fmt.Sprintf("%s%s?%s", c.Endpoint, path, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-Api-Key", c.APIKey)

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch news: %w", err)
	}
	defer resp.Body.Close()

	var result response
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("newsapi error: %s", resp.Status)
		}
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if resp.StatusCode != http.StatusOK || result.Status == "error" {
		return nil, fmt.Errorf("newsapi error: %s %s", result.Code, result.Message)
	}

	out := make([]models.SearchResult, 0, len(result.Articles))
	for _, a := range result.Articles {
		if limit > 0 && len(out) >= limit {
			break
		}
		if a.URL == "" || a.Title == "[Removed]" {
			continue
		}
		out = append(out, toResult(a))
	}
	return out, nil
}

func toResult(a Article) models.SearchResult {
	r := models.SearchResult{
		Title:   a.Title,
		Link:    a.URL,
		Snippet: a.Description,
		Source:  a.Source.Name,
	}
	if !a.PublishedAt.IsZero() {
		t := a.PublishedAt
		r.PublishedAt = &t
	}
	return r
}
