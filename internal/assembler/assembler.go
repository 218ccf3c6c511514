// Package assembler renders broker tiers into a bounded, labelled context block.
package assembler

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/mohammad-safakhou/newsdesk/internal/broker"
	"github.com/mohammad-safakhou/newsdesk/internal/helpers"
	"github.com/mohammad-safakhou/newsdesk/models"
)

const (
	snippetLimit    = 140
	targetedNewsCap = 6
	headlinesCap    = 8
	defaultMaxChars = 6000
	defaultDateFmt  = "Jan 2, 2006"
	itemSeparator   = " — "
	blockSeparator  = "\n\n"
)

// Assembler is safe for concurrent use.
type Assembler struct {
	maxChars   int
	dateFormat string
	now        func() time.Time
}

type Option func(*Assembler)

// WithMaxChars bounds the rendered bundle length in bytes.
func WithMaxChars(n int) Option {
	return func(a *Assembler) {
		if n > 0 {
			a.maxChars = n
		}
	}
}

// WithDateFormat sets the layout used for items older than a week.
func WithDateFormat(layout string) Option {
	return func(a *Assembler) {
		if layout != "" {
			a.dateFormat = layout
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(a *Assembler) { a.now = now }
}

func New(opts ...Option) *Assembler {
	a := &Assembler{maxChars: defaultMaxChars, dateFormat: defaultDateFmt, now: time.Now}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Build renders the usable tiers in priority order. Tiers without results
// produce no block, so an all-empty result yields an empty bundle.
func (a *Assembler) Build(res broker.Result, purpose broker.Purpose) *models.ContextBundle {
	bundle := &models.ContextBundle{}
	used := 0
	for _, tier := range []models.SourceTier{models.TierWebSearch, models.TierTargetedNews, models.TierHeadlines} {
		tr, ok := res.Tier(tier)
		if !ok || !tr.Usable() {
			continue
		}
		limit := a.capFor(tier, purpose)
		header := tier.Header() + ":"
		sep := 0
		if len(bundle.Segments) > 0 {
			sep = len(blockSeparator)
		}
		if used+sep+len(header) >= a.maxChars {
			break
		}

		var b strings.Builder
		b.WriteString(header)
		size := used + sep + len(header)
		var links []string
		for _, r := range tr.Results {
			if len(links) == limit {
				break
			}
			line := a.formatItem(len(links)+1, r)
			if size+1+len(line) > a.maxChars {
				break
			}
			b.WriteByte('\n')
			b.WriteString(line)
			size += 1 + len(line)
			links = append(links, r.Link)
		}
		if len(links) == 0 {
			continue
		}
		bundle.Segments = append(bundle.Segments, models.ContextSegment{Tier: tier, Header: tier.Header(), Text: b.String()})
		bundle.SourceURLs = append(bundle.SourceURLs, links...)
		used = size
	}
	return bundle
}

func (a *Assembler) capFor(tier models.SourceTier, purpose broker.Purpose) int {
	switch tier {
	case models.TierTargetedNews:
		return targetedNewsCap
	case models.TierHeadlines:
		return headlinesCap
	default:
		return purpose.WebCount()
	}
}

func (a *Assembler) formatItem(i int, r models.SearchResult) string {
	var b strings.Builder
	b.WriteString(strconv.Itoa(i))
	b.WriteString(". ")
	title := helpers.PlainText(r.Title)
	if title == "" {
		title = helpers.Domain(r.Link)
	}
	b.WriteString(title)
	if src := helpers.PlainText(r.Source); src != "" {
		b.WriteString(itemSeparator)
		b.WriteString(src)
	}
	if age := a.RelativeAge(r.PublishedAt); age != "" {
		b.WriteString(" (")
		b.WriteString(age)
		b.WriteByte(')')
	}
	if snippet := helpers.Truncate(helpers.PlainText(r.Snippet), snippetLimit); snippet != "" {
		b.WriteString(itemSeparator)
		b.WriteString(snippet)
	}
	if link := strings.TrimSpace(r.Link); link != "" {
		b.WriteString(itemSeparator)
		b.WriteString(link)
	}
	return b.String()
}

// RelativeAge renders "Nh ago" under a day, "Nd ago" under a week and a date otherwise.
func (a *Assembler) RelativeAge(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	d := a.now().Sub(*t)
	if d < 0 {
		d = 0
	}
	switch {
	case d < 24*time.Hour:
		h := int(d.Hours())
		if h < 1 {
			h = 1
		}
		return fmt.Sprintf("%dh ago", h)
	case d < 7*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	default:
		return t.Format(a.dateFormat)
	}
}
