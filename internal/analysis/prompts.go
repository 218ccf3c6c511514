package analysis

import "github.com/mohammad-safakhou/newsdesk/models"

const jsonOnly = " Respond with a single JSON object and nothing else."

var systems = map[models.SubAnalysis]string{
	models.SubBias: "You assess news articles for bias. Decide whether the article shows political, commercial, " +
		"ideological or framing bias." + jsonOnly +
		` Shape: {"detected": true|false, "type": "political|commercial|ideological|framing|none", "explanation": "one or two sentences"}`,
	models.SubKeyPoints: "You extract the key points of news articles. Give at most five short, factual points." + jsonOnly +
		` Shape: {"key_points": ["..."]}`,
	models.SubEntities: "You extract named entities from news articles." + jsonOnly +
		` Shape: {"people": ["..."], "organizations": ["..."], "locations": ["..."]}`,
	models.SubFactCheck: "You fact-check news articles. Identify the main factual claims and rate each as verified, " +
		"unverified or misleading based on widely established knowledge." + jsonOnly +
		` Shape: {"claims": [{"claim": "...", "veracity": "verified|unverified|misleading"}]}`,
	models.SubTimeline: "You build timelines of the events described in news articles. Use an empty list when the " +
		"article describes no dated events." + jsonOnly +
		` Shape: {"events": [{"date": "...", "description": "..."}]}`,
	models.SubSentiment: "You analyze the sentiment of news articles and explain it." + jsonOnly +
		` Shape: {"overall": "positive|negative|neutral", "score": 0.0-1.0, "explanation": "one or two sentences"}`,
}
