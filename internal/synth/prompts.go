package synth

import (
	"fmt"
	"strings"

	"github.com/mohammad-safakhou/newsdesk/internal/extract"
)

const (
	answerSystem = "You are a news assistant. Answer the user's question clearly and accurately. " +
		"When context is provided, ground the answer in it, mention how recent each source is, " +
		"and cite sources inline by name or link. If the context does not cover the question, say so briefly."

	explainSystem = "You are a news analyst who explains topics to a general audience. " +
		"Be factual, neutral and concise. Always answer in the requested section format."

	reportSystem = "You are a senior research analyst writing a detailed briefing on a current topic. " +
		"Be thorough, balanced and specific. Always answer in the requested section format."

	summarySystem   = "Summarize the article in three to four sentences. Reply with the summary only."
	sentimentSystem = "Classify the overall sentiment of the article. Reply with exactly one word: positive, negative or neutral."
	keywordsSystem  = "List the five to eight most important keywords of the article as a single comma-separated line. Reply with the list only."
)

// GenericAnswer is returned to the user when the main generation fails.
const GenericAnswer = "I'm sorry, I couldn't put together an answer right now. Please try again in a moment."

func sectionFormat(sections []string, lists map[string]bool) string {
	var b strings.Builder
	b.WriteString("Use exactly these Markdown headings, in this order:\n")
	for _, s := range sections {
		if lists[s] {
			fmt.Fprintf(&b, "## %s\n- item\n", s)
			continue
		}
		fmt.Fprintf(&b, "## %s\nparagraph\n", s)
	}
	return b.String()
}

func explainPrompt(topic string) string {
	return fmt.Sprintf("Explain the topic %q.\n\n%s\nList sections hold three to six bullet items. "+
		"Resources lists full URLs taken from the context.",
		topic,
		sectionFormat(
			[]string{extract.SecOverview, extract.SecKeyPoints, extract.SecCurrentDevelopments, extract.SecRelatedTopics, extract.SecSuggestedQuestions, extract.SecResources},
			map[string]bool{extract.SecKeyPoints: true, extract.SecRelatedTopics: true, extract.SecSuggestedQuestions: true, extract.SecResources: true},
		))
}

func reportPrompt(topic string) string {
	return fmt.Sprintf("Write a detailed report on %q.\n\n%s",
		topic,
		sectionFormat(
			[]string{extract.SecExecutiveSummary, extract.SecBackground, extract.SecCurrentSituation, extract.SecKeyStakeholders, extract.SecAnalysis, extract.SecFutureOutlook, extract.SecResources},
			map[string]bool{extract.SecKeyStakeholders: true, extract.SecResources: true},
		))
}
