package models

import (
	"errors"
	"strings"
	"time"
)

var (
	// ErrValidation marks a request that is missing a required field.
	ErrValidation = errors.New("validation failed")
	// ErrUnauthenticated is returned when no active session backs the request.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrPersistence wraps failures of the relational store.
	ErrPersistence = errors.New("persistence failure")
	// ErrNotFound is returned when a stored entity does not exist
	ErrNotFound = errors.New("not found")
)

// Markers delimiting an injected context block inside a composed message.
const (
	ContextBegin = "--- BEGIN CONTEXT ---"
	ContextEnd   = "--- END CONTEXT ---"
)

// SearchResult is one candidate item returned by a source backend.
type SearchResult struct {
	Title       string     `json:"title"`
	Link        string     `json:"link"`
	Snippet     string     `json:"snippet"`
	Source      string     `json:"source,omitempty"`
	PublishedAt *time.Time `json:"publishedAt,omitempty"`
}

// SourceTier is a retrieval strategy in priority order.
type SourceTier int

const (
	TierWebSearch SourceTier = iota
	TierTargetedNews
	TierHeadlines
)

func (t SourceTier) String() string {
	switch t {
	case TierWebSearch:
		return "web_search"
	case TierTargetedNews:
		return "targeted_news"
	case TierHeadlines:
		return "headlines"
	default:
		return "unknown"
	}
}

// Header is the provenance label rendered above a tier's block.
func (t SourceTier) Header() string {
	switch t {
	case TierWebSearch:
		return "WEB SEARCH RESULTS"
	case TierTargetedNews:
		return "TARGETED NEWS"
	case TierHeadlines:
		return "TOP HEADLINES"
	default:
		return "SOURCES"
	}
}

// ContextSegment is one rendered tier block.
type ContextSegment struct {
	Tier   SourceTier `json:"tier"`
	Header string     `json:"header"`
	Text   string     `json:"text"`
}

// ContextBundle is the bounded context handed to the generative backend.
type ContextBundle struct {
	Segments   []ContextSegment `json:"segments"`
	SourceURLs []string         `json:"sourceUrls"`
}

// Empty reports whether the bundle carries no segments.
func (b *ContextBundle) Empty() bool {
	return b == nil || len(b.Segments) == 0
}

// String joins the segments with a blank line. An empty bundle renders as "".
func (b *ContextBundle) String() string {
	if b.Empty() {
		return ""
	}
	parts := make([]string, 0, len(b.Segments))
	for _, s := range b.Segments {
		parts = append(parts, s.Text)
	}
	return strings.Join(parts, "\n\n")
}

// SynthesisRequest is built once per request and not modified afterwards.
type SynthesisRequest struct {
	CleanQuery string
	Context    *ContextBundle
	History    []Message
}

// NewSynthesisRequest copies history so later appends by the caller do not leak in.
func NewSynthesisRequest(cleanQuery string, bundle *ContextBundle, history []Message) SynthesisRequest {
	h := make([]Message, len(history))
	copy(h, history)
	return SynthesisRequest{CleanQuery: cleanQuery, Context: bundle, History: h}
}
