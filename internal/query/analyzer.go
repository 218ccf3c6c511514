// Package query turns a composed chat message into a clean query and a small set of search terms.
package query

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/mohammad-safakhou/newsdesk/models"
)

// MaxTerms bounds the extracted term list.
const MaxTerms = 6

// DefaultKeywords are hot topics matched before any other heuristic.
var DefaultKeywords = []string{
	"ai", "artificial intelligence", "openai", "chatgpt", "nvidia", "apple", "google", "microsoft",
	"tesla", "bitcoin", "crypto", "inflation", "interest rates", "federal reserve", "stock market",
	"climate", "election", "ukraine", "russia", "israel", "gaza", "china", "tariffs", "recession",
	"covid", "nato", "un", "eu",
}

var (
	headerLine     = regexp.MustCompile(`(?i)^\s*(web search results|targeted news|top headlines|latest news|recent news|sources?)\s*:`)
	enumeratedLine = regexp.MustCompile(`^\s*\d+[.)]\s+`)
	capitalized    = regexp.MustCompile(`\b[A-Z][A-Za-z0-9&'-]*(?:\s+[A-Z][A-Za-z0-9&'-]*){0,3}\b`)
)

// leading words that are capitalised only because they open a sentence
var sentenceOpeners = map[string]struct{}{
	"what": {}, "whats": {}, "how": {}, "why": {}, "who": {}, "when": {}, "where": {}, "which": {},
	"is": {}, "are": {}, "was": {}, "can": {}, "could": {}, "should": {}, "will": {}, "do": {}, "does": {},
	"tell": {}, "give": {}, "show": {}, "explain": {}, "please": {}, "the": {}, "a": {}, "an": {},
	"i": {}, "any": {}, "latest": {}, "recent": {}, "today": {}, "news": {},
}

type keyword struct {
	word    string
	pattern *regexp.Regexp // nil means plain substring match
}

// Analyzer extracts clean queries and search terms. The zero value is not usable; call New.
type Analyzer struct {
	keywords []keyword
}

// New builds an Analyzer; an empty list selects DefaultKeywords.
func New(keywords []string) *Analyzer {
	if len(keywords) == 0 {
		keywords = DefaultKeywords
	}
	a := &Analyzer{}
	seen := make(map[string]struct{}, len(keywords))
	for _, k := range keywords {
		k = strings.ToLower(strings.TrimSpace(k))
		if k == "" {
			continue
		}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		kw := keyword{word: k}
		if len([]rune(k)) <= 3 {
			kw.pattern = regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(k) + `\b`)
		}
		a.keywords = append(a.keywords, kw)
	}
	return a
}

// CleanQuery strips a previously injected context block from message.
func CleanQuery(message string) string {
	if i := strings.Index(message, models.ContextBegin); i >= 0 {
		return strings.TrimSpace(message[:i])
	}
	var kept []string
	for _, line := range strings.Split(message, "\n") {
		if headerLine.MatchString(line) {
			break
		}
		if enumeratedLine.MatchString(line) {
			continue
		}
		kept = append(kept, line)
	}
	return strings.TrimSpace(strings.Join(kept, "\n"))
}

// ExtractSearchTerms runs keyword, capitalised-phrase and plain-word passes in
// that order and returns at most MaxTerms case-insensitively unique terms.
func (a *Analyzer) ExtractSearchTerms(cleanQuery string) []string {
	terms := make([]string, 0, MaxTerms)
	seen := make(map[string]struct{}, MaxTerms)
	add := func(t string) bool {
		t = strings.TrimSpace(t)
		if t == "" {
			return true
		}
		key := strings.ToLower(t)
		if _, dup := seen[key]; dup {
			return true
		}
		seen[key] = struct{}{}
		terms = append(terms, t)
		return len(terms) < MaxTerms
	}
	if strings.TrimSpace(cleanQuery) == "" {
		return terms
	}

	lower := strings.ToLower(cleanQuery)
	for _, kw := range a.keywords {
		var hit bool
		if kw.pattern != nil {
			hit = kw.pattern.MatchString(cleanQuery)
		} else {
			hit = strings.Contains(lower, kw.word)
		}
		if hit && !add(kw.word) {
			return terms
		}
	}

	for _, m := range capitalized.FindAllString(cleanQuery, -1) {
		if phrase := trimOpeners(m); phrase != "" && !add(phrase) {
			return terms
		}
	}

	if len(terms) > 0 {
		return terms
	}
	picked := 0
	for _, w := range strings.Fields(cleanQuery) {
		w = strings.ToLower(strings.TrimFunc(w, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsNumber(r)
		}))
		if len([]rune(w)) <= 3 {
			continue
		}
		if !add(w) {
			break
		}
		if picked++; picked == 4 {
			break
		}
	}
	return terms
}

func trimOpeners(phrase string) string {
	words := strings.Fields(phrase)
	for len(words) > 0 {
		w := strings.ToLower(strings.Trim(words[0], "'-&"))
		if _, ok := sentenceOpeners[w]; !ok {
			break
		}
		words = words[1:]
	}
	return strings.Join(words, " ")
}
