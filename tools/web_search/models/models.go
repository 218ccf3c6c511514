package models

import (
	"errors"
	"net/http"
	"strings"
	"time"
)

// Mode selects between recency-focused and broad web search.
type Mode string

const (
	ModeNews          Mode = "news"
	ModeComprehensive Mode = "comprehensive"
)

// Query is one web search request.
type Query struct {
	Text   string
	Mode   Mode
	Locale string
	Count  int
}

// ErrMissingCredentials is returned when a provider has no API key.
var ErrMissingCredentials = errors.New("web search credentials missing")

// StatusError reports a non-2xx upstream answer.
type StatusError struct {
	Provider string
	Code     int
}

func (e *StatusError) Error() string {
	return e.Provider + ": unexpected status " + http.StatusText(e.Code)
}

// ParseAge understands absolute timestamps and relative phrases such as
// "3 hours ago" or "2 days ago". It returns nil when nothing parses.
func ParseAge(s string, now time.Time) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02", "Jan 2, 2006"} {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	fields := strings.Fields(strings.ToLower(s))
	if len(fields) < 2 {
		return nil
	}
	n := 0
	if fields[0] == "a" || fields[0] == "an" {
		n = 1
	} else {
		for _, r := range fields[0] {
			if r < '0' || r > '9' {
				return nil
			}
			n = n*10 + int(r-'0')
		}
	}
	unit := strings.TrimSuffix(fields[1], "s")
	var d time.Duration
	switch unit {
	case "minute", "min":
		d = time.Minute
	case "hour":
		d = time.Hour
	case "day":
		d = 24 * time.Hour
	case "week":
		d = 7 * 24 * time.Hour
	case "month":
		d = 30 * 24 * time.Hour
	default:
		return nil
	}
	t := now.Add(-time.Duration(n) * d)
	return &t
}
