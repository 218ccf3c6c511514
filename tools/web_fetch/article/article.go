// Package article reduces an HTML page to its readable text.
package article

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/go-shiori/go-readability"
	"github.com/mohammad-safakhou/newsdesk/internal/helpers"
	"github.com/mohammad-safakhou/newsdesk/tools/web_fetch/models"
)

// ParseURL validates an http(s) link.
func ParseURL(raw string) (*url.URL, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%q: %w", raw, models.ErrInvalidURL)
	}
	return u, nil
}

// Parse runs readability over html and returns plain text capped at maxChars runes.
func Parse(html string, page *url.URL, maxChars int) (models.Result, error) {
	a, err := readability.FromReader(strings.NewReader(html), page)
	if err != nil {
		return models.Result{URL: page.String()}, fmt.Errorf("readability: %w", err)
	}
	text := helpers.PlainText(a.TextContent)
	if maxChars > 0 {
		if r := []rune(text); len(r) > maxChars {
			text = strings.TrimSpace(string(r[:maxChars]))
		}
	}
	return models.Result{
		URL:      page.String(),
		Title:    helpers.PlainText(a.Title),
		Byline:   strings.TrimSpace(a.Byline),
		SiteName: strings.TrimSpace(a.SiteName),
		Excerpt:  helpers.PlainText(a.Excerpt),
		Text:     text,
	}, nil
}
