package models

import (
	"errors"
	"fmt"
)

// ErrInvalidURL is returned for blank or non-http(s) links.
var ErrInvalidURL = errors.New("invalid url")

// Result is a fetched article reduced to its readable text.
type Result struct {
	URL      string `json:"url"`
	Title    string `json:"title"`
	Byline   string `json:"byline"`
	SiteName string `json:"site_name"`
	Excerpt  string `json:"excerpt"`
	Text     string `json:"text"`
	Status   int    `json:"status"`
	RenderMS int    `json:"render_ms"`
}

// StatusError reports a non-2xx response from the origin.
type StatusError struct {
	URL  string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("fetch %s: unexpected status %d", e.URL, e.Code)
}
