package extract

import (
	"testing"

	"github.com/mohammad-safakhou/newsdesk/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBias(t *testing.T) {
	fromJSON, p1, err := Bias(`{"detected": true, "type": "Political", "explanation": "Leans left."}`)
	require.NoError(t, err)
	fromText, p2, err := Bias("Bias Detected: Yes\nType: Political\nExplanation: Leans left.")
	require.NoError(t, err)

	assert.Equal(t, PathStructured, p1)
	assert.Equal(t, PathHeadings, p2)
	assert.Equal(t, models.Bias{Detected: true, Type: "political", Explanation: "Leans left."}, fromJSON)
	assert.Equal(t, fromJSON, fromText)
}

func TestBiasNotDetectedDefaultsType(t *testing.T) {
	got, _, err := Bias(`{"detected": false, "explanation": "Balanced coverage."}`)
	require.NoError(t, err)
	assert.False(t, got.Detected)
	assert.Equal(t, "none", got.Type)
}

func TestBiasNoContent(t *testing.T) {
	got, _, err := Bias("I cannot tell.")
	assert.ErrorIs(t, err, ErrNoContent)
	assert.Equal(t, DefaultBias(), got)
}

func TestKeyPointsCapped(t *testing.T) {
	got, path, err := KeyPoints(`{"key_points": ["a","b","c","d","e","f"]}`)
	require.NoError(t, err)
	assert.Equal(t, PathStructured, path)
	assert.Equal(t, []string{"a", "b", "c", "d", "e"}, got)
}

func TestKeyPointsHeadingAndBareBullets(t *testing.T) {
	withHeading, _, err := KeyPoints("Key Points:\n- First\n- Second")
	require.NoError(t, err)
	bare, _, err := KeyPoints("- First\n- Second")
	require.NoError(t, err)
	assert.Equal(t, []string{"First", "Second"}, withHeading)
	assert.Equal(t, withHeading, bare)

	_, _, err = KeyPoints("   ")
	assert.ErrorIs(t, err, ErrNoContent)
}

func TestEntitiesGrammarsAgree(t *testing.T) {
	fromJSON, _, err := Entities(`{"people":["Ada Lovelace"],"organizations":["ACME Corp"],"locations":[]}`)
	require.NoError(t, err)
	fromText, _, err := Entities("People: Ada Lovelace\nOrganizations:\n- ACME Corp\nLocations:\n")
	require.NoError(t, err)

	assert.Equal(t, fromJSON, fromText)
	assert.Equal(t, []string{}, fromText.Locations)
}

func TestEntitiesNoHeadings(t *testing.T) {
	got, _, err := Entities("nothing useful")
	assert.ErrorIs(t, err, ErrNoContent)
	assert.Equal(t, EmptyEntities(), got)
}

func TestFactCheckClaimObjects(t *testing.T) {
	got, _, err := FactCheck(`{"claims":[{"claim":"Rates rose","veracity":"Verified"},{"claim":"Prices halved","veracity":"bogus"}]}`)
	require.NoError(t, err)
	assert.Equal(t, []string{"Rates rose", "Prices halved"}, got.Claims)
	assert.Equal(t, []models.Veracity{models.VeracityVerified, models.VeracityUnverified}, got.Veracity)
}

func TestFactCheckAlignsParallelArrays(t *testing.T) {
	padded, _, err := FactCheck(`{"claims":["A","B","C"],"veracity":["misleading"]}`)
	require.NoError(t, err)
	assert.Equal(t, []models.Veracity{models.VeracityMisleading, models.VeracityUnverified, models.VeracityUnverified}, padded.Veracity)

	truncated, _, err := FactCheck(`{"claims":["A"],"veracity":["verified","misleading"]}`)
	require.NoError(t, err)
	assert.Len(t, truncated.Veracity, 1)
}

func TestFactCheckHeadings(t *testing.T) {
	got, path, err := FactCheck("Claims:\n- Rates rose (verified)\n- Prices halved - misleading\n- Mayor resigned")
	require.NoError(t, err)
	assert.Equal(t, PathHeadings, path)
	assert.Equal(t, []string{"Rates rose", "Prices halved", "Mayor resigned"}, got.Claims)
	assert.Equal(t, []models.Veracity{models.VeracityVerified, models.VeracityMisleading, models.VeracityUnverified}, got.Veracity)
}

func TestFactCheckWithoutClaims(t *testing.T) {
	for _, raw := range []string{
		"No verifiable claims found.",
		"Claims: None.",
		"**No claims** could be checked in this article.",
	} {
		got, _, err := FactCheck(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, EmptyFactCheck(), got, raw)
	}

	got, _, err := FactCheck("The piece is mostly opinion and quotes.")
	assert.ErrorIs(t, err, ErrNoContent)
	assert.Equal(t, EmptyFactCheck(), got)
}

func TestFactCheckPreambleKeepsBulletsOnly(t *testing.T) {
	got, path, err := FactCheck("Here is what I checked:\n- Rates rose (verified)\n- No taxes were raised (false)")
	require.NoError(t, err)
	assert.Equal(t, PathHeadings, path)
	assert.Equal(t, []string{"Rates rose", "No taxes were raised"}, got.Claims)
	assert.Len(t, got.Veracity, 2)
}

func TestTimelineGrammarsAgree(t *testing.T) {
	fromJSON, _, err := Timeline(`{"events":[{"date":"2024-01-02","description":"Vote held"},{"date":"Jan 5, 2024","description":"Law signed"}]}`)
	require.NoError(t, err)
	fromText, _, err := Timeline("Timeline:\n- 2024-01-02: Vote held\n- **Jan 5, 2024** — Law signed")
	require.NoError(t, err)

	require.NotNil(t, fromJSON)
	assert.Equal(t, fromJSON, fromText)
}

func TestTimelineWithoutEventsIsNil(t *testing.T) {
	got, _, err := Timeline(`{"events":[]}`)
	require.NoError(t, err)
	assert.Nil(t, got)

	got, _, err = Timeline("Timeline: None identified.")
	require.NoError(t, err)
	assert.Nil(t, got)

	got, _, err = Timeline("Timeline:\nThe article does not contain any dated events.")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestTimelineSkipsCommentary(t *testing.T) {
	got, path, err := Timeline("Timeline:\nThe sequence below is approximate.\n2024-01-02: Vote held\nMarch 3, 2024 - Law signed")
	require.NoError(t, err)
	assert.Equal(t, PathHeadings, path)
	require.NotNil(t, got)
	assert.Equal(t, []models.TimelineEvent{
		{Date: "2024-01-02", Description: "Vote held"},
		{Date: "March 3, 2024", Description: "Law signed"},
	}, got.Events)
}

func TestSentimentGrammarsAgree(t *testing.T) {
	fromJSON, _, err := Sentiment(`{"overall":"Positive","score":85,"explanation":"Upbeat tone."}`)
	require.NoError(t, err)
	fromText, _, err := Sentiment("Overall Sentiment: Positive\nScore: 85%\nExplanation: Upbeat tone.")
	require.NoError(t, err)

	assert.Equal(t, models.SentimentDetail{Overall: models.SentimentPositive, Score: 0.85, Explanation: "Upbeat tone."}, fromJSON)
	assert.Equal(t, fromJSON, fromText)
}

func TestSentimentScoreHeadings(t *testing.T) {
	got, _, err := Sentiment("Overall Sentiment: Negative\nSentiment Score: 0.2\nExplanation: Grim outlook.")
	require.NoError(t, err)
	assert.Equal(t, models.SentimentNegative, got.Overall)
	assert.InDelta(t, 0.2, got.Score, 1e-9)

	got, _, err = Sentiment("Sentiment: Positive\nConfidence: 70%")
	require.NoError(t, err)
	assert.Equal(t, models.SentimentPositive, got.Overall)
	assert.InDelta(t, 0.7, got.Score, 1e-9)

	got, _, err = Sentiment(`{"sentiment":"neutral","score":140}`)
	require.NoError(t, err)
	assert.Equal(t, 1.0, got.Score)
}

func TestSentimentNoContent(t *testing.T) {
	got, _, err := Sentiment("hard to say")
	assert.ErrorIs(t, err, ErrNoContent)
	assert.Equal(t, DefaultSentiment(), got)
}

func TestPrimitives(t *testing.T) {
	assert.Equal(t, []string{"inflation", "tariffs", "trade"}, Keywords("inflation, tariffs, trade"))
	assert.Equal(t, []string{"inflation"}, Keywords(`{"keywords":["inflation"]}`))
	assert.Equal(t, models.SentimentNegative, SentimentLabel("Negative."))
	assert.Equal(t, models.SentimentNeutral, SentimentLabel("mixed feelings"))
	assert.Equal(t, models.SentimentPositive, SentimentLabel(`{"sentiment":"positive"}`))
}
