package web_fetch

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/mohammad-safakhou/newsdesk/config"
	"github.com/mohammad-safakhou/newsdesk/tools/web_fetch/chromedp"
	"github.com/mohammad-safakhou/newsdesk/tools/web_fetch/httpfetch"
	"github.com/mohammad-safakhou/newsdesk/tools/web_fetch/models"
)

const (
	DefaultTimeout  = 15 * time.Second
	MaxCharsDefault = 20000
	DefaultAgent    = "newsdesk/1.0 (+https://github.com/mohammad-safakhou/newsdesk)"
)

// WebFetcher turns a link into readable article text.
type WebFetcher interface {
	Exec(ctx context.Context, url string) (models.Result, error)
}

type FetcherType string

const (
	HTTPFetcherType     FetcherType = "http"
	ChromedpFetcherType FetcherType = "chromedp"
)

func NewWebFetcher(cfg config.FetchConfig, client *http.Client) (WebFetcher, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	maxChars := cfg.MaxChars
	if maxChars <= 0 {
		maxChars = MaxCharsDefault
	}
	agent := cfg.UserAgent
	if agent == "" {
		agent = DefaultAgent
	}

	switch FetcherType(strings.ToLower(cfg.Renderer)) {
	case HTTPFetcherType, "":
		return httpfetch.Fetch{Client: client, Timeout: timeout, MaxChars: maxChars, UserAgent: agent}, nil
	case ChromedpFetcherType:
		return chromedp.Fetch{Timeout: timeout, MaxChars: maxChars, UserAgent: agent}, nil
	default:
		return nil, fmt.Errorf("unsupported fetcher type %q", cfg.Renderer)
	}
}
