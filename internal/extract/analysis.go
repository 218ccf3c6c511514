package extract

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/mohammad-safakhou/newsdesk/models"
	"github.com/tidwall/gjson"
)

// MaxKeyPoints bounds the key-point list of an article analysis.
const MaxKeyPoints = 5

var (
	scorePattern = regexp.MustCompile(`\d+(?:\.\d+)?`)
	eventLine    = regexp.MustCompile(`^\s*(.+?)\s*(?::|\s[-–—]\s)\s*(.+)$`)
	verdictTail  = regexp.MustCompile(`(?i)\s*[(\[:—–-]\s*(verified|unverified|misleading|true|false)[)\]]?\s*$`)
	// "None.", "N/A", "No verifiable claims found.", "There are no dated events."
	nothingFound = regexp.MustCompile(`(?i)^\s*(?:\*\*|__)?(?:none\b|n/a\b|no\s|nothing\b|there\s+(?:is|are|were)\s+no\s)`)
)

// DefaultBias is used when the bias leaf fails.
func DefaultBias() models.Bias {
	return models.Bias{Detected: false, Type: "none", Explanation: "No bias detected"}
}

// DefaultSentiment is used when the sentiment leaf fails.
func DefaultSentiment() models.SentimentDetail {
	return models.SentimentDetail{Overall: models.SentimentNeutral, Score: 0.5, Explanation: "Sentiment could not be determined"}
}

// EmptyEntities has non-nil lists so it serialises as arrays.
func EmptyEntities() models.Entities {
	return models.Entities{People: []string{}, Organizations: []string{}, Locations: []string{}}
}

// EmptyFactCheck has no claims and no verdicts.
func EmptyFactCheck() models.FactCheck {
	return models.FactCheck{Claims: []string{}, Veracity: []models.Veracity{}}
}

func Bias(raw string) (models.Bias, Path, error) {
	if obj, ok := object(raw); ok && hasAny(obj, "detected", "bias detected", "has bias", "type", "bias type", "explanation") {
		out := DefaultBias()
		out.Detected = truthy(field(obj, "detected", "bias detected", "has bias"))
		if t := text(field(obj, "type", "bias type")); t != "" {
			out.Type = strings.ToLower(t)
		}
		if e := text(field(obj, "explanation", "reasoning")); e != "" {
			out.Explanation = e
		}
		if !out.Detected && !hasAny(obj, "type", "bias type") {
			out.Type = "none"
		}
		return out, PathStructured, nil
	}
	sec := segment(raw, []heading{
		{key: "Detected", aliases: []string{"Bias Detected", "Has Bias"}},
		{key: "Type", aliases: []string{"Bias Type"}},
		{key: "Explanation", aliases: []string{"Reasoning"}},
	})
	if _, ok := sec["Detected"]; !ok {
		if _, ok := sec["Type"]; !ok {
			return DefaultBias(), PathHeadings, ErrNoContent
		}
	}
	out := DefaultBias()
	out.Detected = yes(sec["Detected"])
	if t := narrative(sec["Type"]); t != "" {
		out.Type = strings.ToLower(t)
	}
	if e := narrative(sec["Explanation"]); e != "" {
		out.Explanation = e
	}
	return out, PathHeadings, nil
}

func KeyPoints(raw string) ([]string, Path, error) {
	var (
		points []string
		path   = PathHeadings
	)
	if obj, ok := object(raw); ok && hasAny(obj, SecKeyPoints, "points") {
		path = PathStructured
		points = list(field(obj, SecKeyPoints, "points"))
	} else {
		sec := segment(raw, []heading{{key: SecKeyPoints, aliases: []string{"Key Takeaways"}}})
		body, ok := sec[SecKeyPoints]
		if !ok {
			body = sec[""]
		}
		points = bullets(body)
		if len(points) == 0 {
			return []string{}, path, ErrNoContent
		}
	}
	if len(points) > MaxKeyPoints {
		points = points[:MaxKeyPoints]
	}
	return points, path, nil
}

func Entities(raw string) (models.Entities, Path, error) {
	out := EmptyEntities()
	if obj, ok := object(raw); ok && hasAny(obj, "people", "organizations", "locations", "persons", "orgs", "places") {
		out.People = list(field(obj, "people", "persons"))
		out.Organizations = list(field(obj, "organizations", "organisations", "orgs"))
		out.Locations = list(field(obj, "locations", "places"))
		return out, PathStructured, nil
	}
	sec := segment(raw, []heading{
		{key: "People", aliases: []string{"Persons"}},
		{key: "Organizations", aliases: []string{"Organisations"}},
		{key: "Locations", aliases: []string{"Places"}},
	})
	if len(sec) == 0 || (len(sec) == 1 && sec[""] != "") {
		return out, PathHeadings, ErrNoContent
	}
	out.People = bullets(sec["People"])
	out.Organizations = bullets(sec["Organizations"])
	out.Locations = bullets(sec["Locations"])
	return out, PathHeadings, nil
}

// FactCheck pairs claims with verdicts; the verdict list is padded with
// unverified or truncated so both lists have the same length.
func FactCheck(raw string) (models.FactCheck, Path, error) {
	out := EmptyFactCheck()
	if obj, ok := object(raw); ok && hasAny(obj, "claims") {
		claims := field(obj, "claims")
		if claims.IsArray() && claims.Get("0").IsObject() {
			claims.ForEach(func(_, c gjson.Result) bool {
				claim := cleanItem(c.Get("claim").String())
				if claim == "" {
					claim = cleanItem(c.Get("text").String())
				}
				if claim != "" {
					out.Claims = append(out.Claims, claim)
					out.Veracity = append(out.Veracity, models.ParseVeracity(field(c, "veracity", "verdict", "status").String()))
				}
				return true
			})
		} else {
			out.Claims = list(claims)
			for _, v := range list(field(obj, "veracity", "verdicts")) {
				out.Veracity = append(out.Veracity, models.ParseVeracity(v))
			}
		}
		return alignVerdicts(out), PathStructured, nil
	}

	sec := segment(raw, []heading{{key: "Claims"}, {key: "Veracity", aliases: []string{"Verdicts"}}})
	body, ok := sec["Claims"]
	if !ok {
		body = sec[""]
	}
	if saysNone(body) {
		return out, PathHeadings, nil
	}
	// Without a Claims heading only bulleted preamble lines are claims.
	items := marked(body)
	if ok {
		items = bullets(body)
	}
	if len(items) == 0 {
		return out, PathHeadings, ErrNoContent
	}
	verdicts := bullets(sec["Veracity"])
	for i, item := range items {
		claim, verdict := item, ""
		if m := verdictTail.FindStringSubmatchIndex(item); m != nil {
			claim, verdict = strings.TrimSpace(item[:m[0]]), item[m[2]:m[3]]
		} else if i < len(verdicts) {
			verdict = verdicts[i]
		}
		out.Claims = append(out.Claims, claim)
		out.Veracity = append(out.Veracity, models.ParseVeracity(verdict))
	}
	return alignVerdicts(out), PathHeadings, nil
}

func alignVerdicts(fc models.FactCheck) models.FactCheck {
	if fc.Claims == nil {
		fc.Claims = []string{}
	}
	switch {
	case len(fc.Veracity) > len(fc.Claims):
		fc.Veracity = fc.Veracity[:len(fc.Claims)]
	case len(fc.Veracity) < len(fc.Claims):
		for len(fc.Veracity) < len(fc.Claims) {
			fc.Veracity = append(fc.Veracity, models.VeracityUnverified)
		}
	}
	if fc.Veracity == nil {
		fc.Veracity = []models.Veracity{}
	}
	return fc
}

// Timeline returns nil when the response holds no events.
func Timeline(raw string) (*models.Timeline, Path, error) {
	var events []models.TimelineEvent
	if obj, ok := object(raw); ok && hasAny(obj, "events", "timeline") {
		field(obj, "events", "timeline").ForEach(func(_, e gjson.Result) bool {
			if e.IsObject() {
				desc := cleanItem(field(e, "description", "event", "text").String())
				if desc != "" {
					events = append(events, models.TimelineEvent{Date: cleanItem(e.Get("date").String()), Description: desc})
				}
			} else if s := cleanItem(e.String()); s != "" {
				events = append(events, splitEvent(s))
			}
			return true
		})
		return timelineOf(events), PathStructured, nil
	}
	sec := segment(raw, []heading{{key: "Timeline", aliases: []string{"Events"}}})
	body, ok := sec["Timeline"]
	if !ok {
		body = sec[""]
	}
	if strings.TrimSpace(body) == "" {
		return nil, PathHeadings, ErrNoContent
	}
	if saysNone(body) {
		return nil, PathHeadings, nil
	}
	return timelineOf(eventLines(body)), PathHeadings, nil
}

// eventLines keeps bulleted lines and unbulleted lines that open with a date;
// other prose is commentary, not an event.
func eventLines(body string) []models.TimelineEvent {
	var events []models.TimelineEvent
	for _, line := range strings.Split(body, "\n") {
		if m := bulletLine.FindStringSubmatch(line); m != nil {
			if s := cleanItem(m[1]); s != "" {
				events = append(events, splitEvent(s))
			}
			continue
		}
		if s := cleanItem(line); s != "" {
			if ev := splitEvent(s); ev.Date != "" {
				events = append(events, ev)
			}
		}
	}
	return events
}

func timelineOf(events []models.TimelineEvent) *models.Timeline {
	if len(events) == 0 {
		return nil
	}
	return &models.Timeline{Events: events}
}

func saysNone(body string) bool {
	return nothingFound.MatchString(body)
}

func splitEvent(s string) models.TimelineEvent {
	if m := eventLine.FindStringSubmatch(s); m != nil && looksLikeDate(m[1]) {
		return models.TimelineEvent{Date: cleanItem(m[1]), Description: cleanItem(m[2])}
	}
	return models.TimelineEvent{Description: s}
}

func looksLikeDate(s string) bool {
	if len(s) > 32 {
		return false
	}
	return strings.IndexFunc(s, func(r rune) bool { return r >= '0' && r <= '9' }) >= 0
}

// Sentiment reads the score as a fraction or a percentage and clamps it to [0,1].
func Sentiment(raw string) (models.SentimentDetail, Path, error) {
	out := DefaultSentiment()
	if obj, ok := object(raw); ok && hasAny(obj, "overall", "sentiment", "score") {
		out.Overall = models.ParseSentiment(text(field(obj, "overall", "sentiment", "label")))
		if s := field(obj, "score", "confidence"); s.Exists() {
			out.Score = unitScore(s.Float())
		}
		if e := text(field(obj, "explanation", "rationale", "reasoning")); e != "" {
			out.Explanation = e
		}
		return out, PathStructured, nil
	}
	sec := segment(raw, []heading{
		{key: "Score", aliases: []string{"Sentiment Score", "Confidence"}},
		{key: "Overall", aliases: []string{"Overall Sentiment", "Sentiment"}},
		{key: "Explanation", aliases: []string{"Rationale", "Reasoning"}},
	})
	label, ok := sec["Overall"]
	if !ok {
		return out, PathHeadings, ErrNoContent
	}
	out.Overall = models.ParseSentiment(firstWord(label))
	if m := scorePattern.FindString(sec["Score"]); m != "" {
		if f, err := strconv.ParseFloat(m, 64); err == nil {
			out.Score = unitScore(f)
		}
	}
	if e := narrative(sec["Explanation"]); e != "" {
		out.Explanation = e
	}
	return out, PathHeadings, nil
}

// Keywords reads a short keyword list from either grammar.
func Keywords(raw string) []string {
	if obj, ok := object(raw); ok && hasAny(obj, "keywords") {
		return list(field(obj, "keywords"))
	}
	sec := segment(raw, []heading{{key: "Keywords"}})
	body, ok := sec["Keywords"]
	if !ok {
		body = sec[""]
	}
	return bullets(body)
}

// SentimentLabel reads a single-word label.
func SentimentLabel(raw string) models.Sentiment {
	if obj, ok := object(raw); ok {
		return models.ParseSentiment(text(field(obj, "sentiment", "overall", "label")))
	}
	return models.ParseSentiment(firstWord(raw))
}

func firstWord(s string) string {
	f := strings.Fields(narrative(s))
	if len(f) == 0 {
		return ""
	}
	return f[0]
}

// unitScore treats values above 1 and up to 100 as percentages.
func unitScore(f float64) float64 {
	if f > 1 && f <= 100 {
		f /= 100
	}
	return clamp(f)
}

func clamp(f float64) float64 {
	if math.IsNaN(f) {
		return 0.5
	}
	return math.Max(0, math.Min(1, f))
}

func truthy(v gjson.Result) bool {
	if v.Type == gjson.True || v.Type == gjson.False {
		return v.Bool()
	}
	return yes(v.String())
}

func yes(s string) bool {
	switch strings.ToLower(firstWord(strings.Trim(s, ".!"))) {
	case "yes", "true", "detected", "y":
		return true
	}
	return false
}
