package models

// Veracity is the verdict attached to one fact-check claim.
type Veracity string

const (
	VeracityVerified   Veracity = "verified"
	VeracityUnverified Veracity = "unverified"
	VeracityMisleading Veracity = "misleading"
)

// ParseVeracity maps free text onto a verdict; anything unknown is unverified.
func ParseVeracity(s string) Veracity {
	switch Veracity(normalizeWord(s)) {
	case VeracityVerified, "true", "accurate", "correct":
		return VeracityVerified
	case VeracityMisleading, "false", "inaccurate", "incorrect":
		return VeracityMisleading
	default:
		return VeracityUnverified
	}
}

// Sentiment is the overall tone label.
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNegative Sentiment = "negative"
	SentimentNeutral  Sentiment = "neutral"
)

// ParseSentiment maps free text onto a label; anything unknown is neutral.
func ParseSentiment(s string) Sentiment {
	switch Sentiment(normalizeWord(s)) {
	case SentimentPositive:
		return SentimentPositive
	case SentimentNegative:
		return SentimentNegative
	default:
		return SentimentNeutral
	}
}

type Bias struct {
	Detected    bool   `json:"detected"`
	Type        string `json:"type"`
	Explanation string `json:"explanation"`
}

type Entities struct {
	People        []string `json:"people"`
	Organizations []string `json:"organizations"`
	Locations     []string `json:"locations"`
}

// FactCheck keeps Veracity aligned index by index with Claims.
type FactCheck struct {
	Claims   []string   `json:"claims"`
	Veracity []Veracity `json:"veracity"`
}

type TimelineEvent struct {
	Date        string `json:"date,omitempty"`
	Description string `json:"description"`
}

// Timeline is never produced without events; a missing timeline is a nil *Timeline.
type Timeline struct {
	Events []TimelineEvent `json:"events"`
}

type SentimentDetail struct {
	Overall     Sentiment `json:"overall"`
	Score       float64   `json:"score"`
	Explanation string    `json:"explanation"`
}

// SubAnalysis names one of the deep-analysis leaves.
type SubAnalysis string

const (
	SubBias      SubAnalysis = "bias"
	SubKeyPoints SubAnalysis = "key_points"
	SubEntities  SubAnalysis = "entities"
	SubFactCheck SubAnalysis = "fact_check"
	SubTimeline  SubAnalysis = "timeline"
	SubSentiment SubAnalysis = "sentiment"
)

// AllSubAnalyses lists the leaves in dispatch order.
var AllSubAnalyses = []SubAnalysis{SubBias, SubKeyPoints, SubEntities, SubFactCheck, SubTimeline, SubSentiment}

// LeafState tracks a single sub-analysis.
type LeafState string

const (
	LeafPending   LeafState = "pending"
	LeafSucceeded LeafState = "succeeded"
	LeafFailed    LeafState = "failed"
)

// DeepAnalysis is the merged result of all six leaves.
type DeepAnalysis struct {
	Bias             Bias                      `json:"bias"`
	KeyPoints        []string                  `json:"keyPoints"`
	Entities         Entities                  `json:"entities"`
	FactCheck        FactCheck                 `json:"factCheck"`
	Timeline         *Timeline                 `json:"timeline"`
	SentimentDetails SentimentDetail           `json:"sentimentDetails"`
	States           map[SubAnalysis]LeafState `json:"-"`
}

// SimpleAnalysis holds the primitives used by the non-deep path.
type SimpleAnalysis struct {
	Summary   string    `json:"summary"`
	Sentiment Sentiment `json:"sentiment"`
	Keywords  []string  `json:"keywords"`
}

// AnalysisResult is what the analysis endpoint returns and persists.
type AnalysisResult struct {
	ArticleID string          `json:"articleId,omitempty"`
	Simple    *SimpleAnalysis `json:"simple,omitempty"`
	Deep      *DeepAnalysis   `json:"deep,omitempty"`
}

// TopicExplanation is the typed form of a topic-exploration answer.
type TopicExplanation struct {
	Overview            string   `json:"overview"`
	KeyPoints           []string `json:"keyPoints"`
	CurrentDevelopments string   `json:"currentDevelopments"`
	RelatedTopics       []string `json:"relatedTopics"`
	SuggestedQuestions  []string `json:"suggestedQuestions"`
	Resources           []string `json:"resources"`
}

// Report is the typed form of a detailed topic report.
type Report struct {
	ExecutiveSummary string   `json:"executiveSummary"`
	Background       string   `json:"background"`
	CurrentSituation string   `json:"currentSituation"`
	KeyStakeholders  []string `json:"keyStakeholders"`
	Analysis         string   `json:"analysis"`
	FutureOutlook    string   `json:"futureOutlook"`
	Resources        []string `json:"resources"`
}
