package extract

import (
	"github.com/mohammad-safakhou/newsdesk/models"
)

// Section names shared by the prompts and the parser.
const (
	SecOverview            = "Overview"
	SecKeyPoints           = "Key Points"
	SecCurrentDevelopments = "Current Developments"
	SecRelatedTopics       = "Related Topics"
	SecSuggestedQuestions  = "Suggested Questions"
	SecResources           = "Resources"

	SecExecutiveSummary = "Executive Summary"
	SecBackground       = "Background"
	SecCurrentSituation = "Current Situation"
	SecKeyStakeholders  = "Key Stakeholders"
	SecAnalysis         = "Analysis"
	SecFutureOutlook    = "Future Outlook"
)

// Unavailable is the default text of a missing narrative section.
func Unavailable(section string) string {
	return section + " information is currently unavailable."
}

var topicHeadings = []heading{
	{key: SecOverview, aliases: []string{"Summary", "Explanation"}},
	{key: SecKeyPoints, aliases: []string{"Key Takeaways"}},
	{key: SecCurrentDevelopments, aliases: []string{"Recent Developments", "Latest Developments"}},
	{key: SecRelatedTopics},
	{key: SecSuggestedQuestions, aliases: []string{"Questions to Explore", "Follow-up Questions"}},
	{key: SecResources, aliases: []string{"Sources", "Further Reading"}},
}

var reportHeadings = []heading{
	{key: SecExecutiveSummary, aliases: []string{"Summary"}},
	{key: SecBackground},
	{key: SecCurrentSituation},
	{key: SecKeyStakeholders, aliases: []string{"Stakeholders"}},
	{key: SecAnalysis},
	{key: SecFutureOutlook, aliases: []string{"Outlook"}},
	{key: SecResources, aliases: []string{"Sources", "References"}},
}

// TopicExplanation parses a topic-exploration answer.
func TopicExplanation(raw string) (models.TopicExplanation, Path) {
	out := models.TopicExplanation{}
	path := PathHeadings
	if obj, ok := object(raw); ok && hasAny(obj, SecOverview, "summary", SecKeyPoints, SecCurrentDevelopments, SecRelatedTopics, SecSuggestedQuestions) {
		path = PathStructured
		out.Overview = text(field(obj, SecOverview, "summary", "explanation"))
		out.KeyPoints = list(field(obj, SecKeyPoints))
		out.CurrentDevelopments = text(field(obj, SecCurrentDevelopments))
		out.RelatedTopics = list(field(obj, SecRelatedTopics))
		out.SuggestedQuestions = list(field(obj, SecSuggestedQuestions, "questions"))
		out.Resources = list(field(obj, SecResources, "sources"))
	} else {
		sec := segment(raw, topicHeadings)
		out.Overview = narrative(sec[SecOverview])
		if out.Overview == "" && len(sec) > 0 {
			out.Overview = narrative(sec[""])
		}
		out.KeyPoints = bullets(sec[SecKeyPoints])
		out.CurrentDevelopments = narrative(sec[SecCurrentDevelopments])
		out.RelatedTopics = bullets(sec[SecRelatedTopics])
		out.SuggestedQuestions = bullets(sec[SecSuggestedQuestions])
		out.Resources = bullets(sec[SecResources])
	}
	fillTopicDefaults(&out)
	return out, path
}

func fillTopicDefaults(t *models.TopicExplanation) {
	if t.Overview == "" {
		t.Overview = Unavailable(SecOverview)
	}
	if t.CurrentDevelopments == "" {
		t.CurrentDevelopments = Unavailable(SecCurrentDevelopments)
	}
	for _, l := range []*[]string{&t.KeyPoints, &t.RelatedTopics, &t.SuggestedQuestions, &t.Resources} {
		if *l == nil {
			*l = []string{}
		}
	}
}

// Report parses a detailed report.
func Report(raw string) (models.Report, Path) {
	out := models.Report{}
	path := PathHeadings
	if obj, ok := object(raw); ok && hasAny(obj, SecExecutiveSummary, SecBackground, SecCurrentSituation, SecKeyStakeholders, SecAnalysis, SecFutureOutlook) {
		path = PathStructured
		out.ExecutiveSummary = text(field(obj, SecExecutiveSummary, "summary"))
		out.Background = text(field(obj, SecBackground))
		out.CurrentSituation = text(field(obj, SecCurrentSituation))
		out.KeyStakeholders = list(field(obj, SecKeyStakeholders, "stakeholders"))
		out.Analysis = text(field(obj, SecAnalysis))
		out.FutureOutlook = text(field(obj, SecFutureOutlook, "outlook"))
		out.Resources = list(field(obj, SecResources, "sources", "references"))
	} else {
		sec := segment(raw, reportHeadings)
		out.ExecutiveSummary = narrative(sec[SecExecutiveSummary])
		if out.ExecutiveSummary == "" && len(sec) > 0 {
			out.ExecutiveSummary = narrative(sec[""])
		}
		out.Background = narrative(sec[SecBackground])
		out.CurrentSituation = narrative(sec[SecCurrentSituation])
		out.KeyStakeholders = bullets(sec[SecKeyStakeholders])
		out.Analysis = narrative(sec[SecAnalysis])
		out.FutureOutlook = narrative(sec[SecFutureOutlook])
		out.Resources = bullets(sec[SecResources])
	}
	for _, f := range []struct {
		v    *string
		name string
	}{
		{&out.ExecutiveSummary, SecExecutiveSummary},
		{&out.Background, SecBackground},
		{&out.CurrentSituation, SecCurrentSituation},
		{&out.Analysis, SecAnalysis},
		{&out.FutureOutlook, SecFutureOutlook},
	} {
		if *f.v == "" {
			*f.v = Unavailable(f.name)
		}
	}
	if out.KeyStakeholders == nil {
		out.KeyStakeholders = []string{}
	}
	if out.Resources == nil {
		out.Resources = []string{}
	}
	return out, path
}
