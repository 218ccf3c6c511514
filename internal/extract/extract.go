// Package extract converts generative backend text into typed results. Each
// extractor first tries a JSON object and falls back to a heading and bullet
// grammar; both paths yield the same shape.
package extract

import (
	"errors"
	"regexp"
	"strings"
	"unicode"

	"github.com/mohammad-safakhou/newsdesk/internal/helpers"
	"github.com/tidwall/gjson"
)

// Path records which grammar produced a result.
type Path int

const (
	PathStructured Path = iota
	PathHeadings
)

func (p Path) String() string {
	if p == PathStructured {
		return "structured"
	}
	return "headings"
}

// ErrNoContent is returned when neither grammar finds the expected fields.
var ErrNoContent = errors.New("no recognisable content")

var (
	linePrefix  = regexp.MustCompile(`^\s*(#{1,6}\s*)?(\*\*|__)?\s*(?:\d+[.)]\s*)?`)
	bulletLine  = regexp.MustCompile(`^\s*(?:[-?*+•]|\d+[.)])\s+(.*\S)\s*$`)
	urlPattern  = regexp.MustCompile(`https?://[^\s<>"'()\[\]{}]+`)
	emphasis    = strings.NewReplacer("**", "", "__", "")
	trailingURL = ".,;:!?"
)

// object parses the first balanced JSON object in raw. ok is false for
// anything that is not a valid object.
func object(raw string) (gjson.Result, bool) {
	s, err := helpers.ExtractJSONObject(raw)
	if err != nil || !gjson.Valid(s) {
		return gjson.Result{}, false
	}
	res := gjson.Parse(s)
	return res, res.IsObject()
}

// keyVariants expands a section name into the JSON spellings models use:
// "Key Points" -> key_points, keyPoints, KeyPoints, key points.
func keyVariants(name string) []string {
	words := strings.Fields(strings.ToLower(name))
	if len(words) == 0 {
		return nil
	}
	snake := strings.Join(words, "_")
	camel := words[0]
	pascal := ""
	for i, w := range words {
		up := strings.ToUpper(w[:1]) + w[1:]
		if i > 0 {
			camel += up
		}
		pascal += up
	}
	return []string{snake, camel, pascal, strings.Join(words, " "), strings.Join(words, "-")}
}

// field returns the first present key among the variants of each name.
func field(obj gjson.Result, names ...string) gjson.Result {
	for _, n := range names {
		for _, k := range keyVariants(n) {
			if v := obj.Get(gjson.Escape(k)); v.Exists() {
				return v
			}
		}
	}
	return gjson.Result{}
}

// hasAny reports whether obj carries at least one of the named fields.
func hasAny(obj gjson.Result, names ...string) bool {
	for _, n := range names {
		if field(obj, n).Exists() {
			return true
		}
	}
	return false
}

// text reads a narrative value; arrays are joined line by line.
func text(v gjson.Result) string {
	if v.IsArray() {
		return strings.Join(list(v), "\n")
	}
	if v.Type == gjson.Null {
		return ""
	}
	return strings.TrimSpace(v.String())
}

// list reads a string list. Objects contribute their most descriptive field;
// a plain string is split like a bullet body.
func list(v gjson.Result) []string {
	out := []string{}
	switch {
	case v.IsArray():
		v.ForEach(func(_, item gjson.Result) bool {
			var s string
			if item.IsObject() {
				for _, k := range []string{"text", "title", "name", "point", "claim", "question", "url", "description"} {
					if f := item.Get(k); f.Exists() {
						s = f.String()
						break
					}
				}
			} else {
				s = item.String()
			}
			if s = cleanItem(s); s != "" {
				out = append(out, s)
			}
			return true
		})
	case v.Type == gjson.String:
		out = bullets(v.String())
	}
	return out
}

type heading struct {
	key     string // canonical section name
	aliases []string
}

type located struct {
	key  string
	body []string
}

// segment splits raw into sections keyed by canonical heading name. A line is
// a heading when it names a known section and either ends there or continues
// after a colon; content after the colon belongs to the section. Text before
// the first heading is kept under the empty key.
func segment(raw string, headings []heading) map[string]string {
	lines := strings.Split(strings.ReplaceAll(raw, "\r\n", "\n"), "\n")
	var (
		found    []located
		current  *located
		preamble []string
	)
	for _, line := range lines {
		if key, inline, ok := matchHeading(line, headings); ok {
			found = append(found, located{key: key})
			current = &found[len(found)-1]
			if inline != "" {
				current.body = append(current.body, inline)
			}
			continue
		}
		if current != nil {
			current.body = append(current.body, line)
		} else {
			preamble = append(preamble, line)
		}
	}
	out := make(map[string]string, len(found)+1)
	if p := strings.TrimSpace(strings.Join(preamble, "\n")); p != "" {
		out[""] = p
	}
	for _, f := range found {
		if _, dup := out[f.key]; dup {
			continue
		}
		out[f.key] = strings.TrimSpace(strings.Join(f.body, "\n"))
	}
	return out
}

func matchHeading(line string, headings []heading) (string, string, bool) {
	loc := linePrefix.FindStringSubmatchIndex(line)
	rest := line
	if loc != nil {
		rest = line[loc[1]:]
	}
	lower := strings.ToLower(rest)
	for _, h := range headings {
		for _, name := range append([]string{h.key}, h.aliases...) {
			n := strings.ToLower(name)
			if !strings.HasPrefix(lower, n) {
				continue
			}
			after := rest[len(n):]
			if after != "" {
				r := rune(after[0])
				if unicode.IsLetter(r) || unicode.IsDigit(r) {
					continue
				}
			}
			after = strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(after), "*_"))
			colon := strings.HasPrefix(after, ":")
			after = strings.TrimSpace(strings.TrimLeft(strings.TrimPrefix(after, ":"), "*_ \t"))
			// Trailing text without a colon only counts after a bold heading;
			// "## Overview of X" and "Background checks" are prose.
			if !colon && after != "" && (loc == nil || loc[4] < 0) {
				continue
			}
			return h.key, after, true
		}
	}
	return "", "", false
}

// bullets splits a section body into items. Bullet markers win; without any,
// a single line is split on commas and multiple lines are taken one per item.
func bullets(body string) []string {
	out := []string{}
	var plain []string
	for _, line := range strings.Split(body, "\n") {
		if m := bulletLine.FindStringSubmatch(line); m != nil {
			if s := cleanItem(m[1]); s != "" {
				out = append(out, s)
			}
			continue
		}
		if s := strings.TrimSpace(line); s != "" {
			plain = append(plain, s)
		}
	}
	if len(out) > 0 {
		return out
	}
	if len(plain) == 1 && strings.Contains(plain[0], ",") && !urlPattern.MatchString(plain[0]) {
		plain = strings.Split(plain[0], ",")
	}
	for _, p := range plain {
		if s := cleanItem(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// marked returns only the bullet-marked items of body.
func marked(body string) []string {
	out := []string{}
	for _, line := range strings.Split(body, "\n") {
		if m := bulletLine.FindStringSubmatch(line); m != nil {
			if s := cleanItem(m[1]); s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}

func cleanItem(s string) string {
	s = strings.TrimSpace(emphasis.Replace(s))
	return strings.Trim(s, " \t\"")
}

func narrative(body string) string {
	return strings.TrimSpace(emphasis.Replace(body))
}

// URLs scans raw for links and unions them with the Resources items, keeping
// the first spelling of each canonical link.
func URLs(raw string, resources []string) []string {
	out := []string{}
	seen := make(map[string]struct{})
	add := func(u string) {
		u = strings.TrimRight(u, trailingURL)
		if u == "" {
			return
		}
		key := helpers.LinkKey(u)
		if _, dup := seen[key]; dup {
			return
		}
		seen[key] = struct{}{}
		out = append(out, u)
	}
	for _, u := range urlPattern.FindAllString(raw, -1) {
		add(u)
	}
	for _, r := range resources {
		if found := urlPattern.FindAllString(r, -1); len(found) > 0 {
			for _, u := range found {
				add(u)
			}
			continue
		}
		if r = strings.TrimSpace(r); strings.Contains(r, ".") && !strings.ContainsAny(r, " \t") {
			add("https://" + strings.TrimPrefix(r, "www."))
		}
	}
	return out
}
