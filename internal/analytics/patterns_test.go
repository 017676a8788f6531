package analytics

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

var t0 = time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)

func answerEvent(i int, topic, question string, correct bool, ms float64) Event {
	return Event{
		Name:      EventAnswerSubmitted,
		Timestamp: t0.Add(time.Duration(i) * time.Minute),
		Properties: map[string]any{
			"topic":        topic,
			"questionId":   question,
			"isCorrect":    correct,
			"timeToAnswer": ms,
		},
	}
}

func TestCategorize(t *testing.T) {
	tests := []struct {
		elapsed time.Duration
		want    ErrorCategory
	}{
		{2 * time.Second, CategoryRushed},
		{5 * time.Second, CategoryKnowledgeGap},
		{30 * time.Second, CategoryKnowledgeGap},
		{31 * time.Second, CategoryOverthinking},
	}
	for _, tt := range tests {
		if got := Categorize(DefaultClassifiers(), tt.elapsed); got != tt.want {
			t.Errorf("Categorize(%v) = %q, want %q", tt.elapsed, got, tt.want)
		}
	}
}

func TestAnalyzePatterns_Empty(t *testing.T) {
	p := AnalyzePatterns(nil, "topic")
	assert.Empty(t, p.Groups)
	assert.Equal(t, 0.5, p.Retention)
}

func TestAnalyzePatterns_StrengthsAndWeaknesses(t *testing.T) {
	var events []Event
	i := 0
	add := func(topic string, correct bool, ms float64) {
		events = append(events, answerEvent(i, topic, topic+string(rune('a'+i)), correct, ms))
		i++
	}
	// grammar: 5/5 correct
	for n := 0; n < 5; n++ {
		add("grammar", true, 8000)
	}
	// vocabulary: 1/5 correct, two rushed and one overthinking wrong answers
	add("vocabulary", true, 8000)
	add("vocabulary", false, 2000)
	add("vocabulary", false, 3000)
	add("vocabulary", false, 45000)
	add("vocabulary", false, 10000)
	// spelling: 7/10 correct, neither strength nor weakness
	for n := 0; n < 10; n++ {
		add("spelling", n < 7, 8000)
	}
	events = append(events, Event{Name: EventHintRequested, Properties: map[string]any{"topic": "grammar"}})

	p := AnalyzePatterns(events, "topic")
	require.Len(t, p.Groups, 3)
	assert.Equal(t, "grammar", p.Groups[0].Key)

	require.Len(t, p.Strengths, 1)
	assert.Equal(t, "grammar", p.Strengths[0].Key)

	require.Len(t, p.Weaknesses, 1)
	w := p.Weaknesses[0]
	assert.Equal(t, "vocabulary", w.Group.Key)
	assert.InDelta(t, 0.2, w.Group.Accuracy, 1e-9)
	require.Len(t, w.Errors, 3)
	assert.Equal(t, ErrorCount{Category: CategoryRushed, Count: 2}, w.Errors[0])
	assert.Equal(t, ErrorCount{Category: CategoryOverthinking, Count: 1}, w.Errors[1])
	assert.Equal(t, ErrorCount{Category: CategoryKnowledgeGap, Count: 1}, w.Errors[2])

	require.Len(t, p.Recommendations, 1)
	assert.Contains(t, p.Recommendations[0], "vocabulary")
}

func TestAnalyzePatterns_AverageSpeed(t *testing.T) {
	events := []Event{
		answerEvent(0, "a", "q1", true, 4000),
		answerEvent(1, "a", "q2", true, 6000),
		answerEvent(2, "b", "q3", false, 11000),
	}
	p := AnalyzePatterns(events, "topic")
	if !almostEqual(p.AverageSpeedMs, 7000) {
		t.Errorf("AverageSpeedMs = %v, want 7000", p.AverageSpeedMs)
	}
}

func TestAnalyzePatterns_Retention(t *testing.T) {
	events := []Event{
		answerEvent(0, "a", "q1", false, 8000),
		answerEvent(1, "a", "q2", true, 8000),
		answerEvent(2, "a", "q1", true, 8000),
		answerEvent(3, "a", "q2", false, 8000),
		answerEvent(4, "a", "q1", true, 8000),
	}
	p := AnalyzePatterns(events, "topic")
	// repeats: q1 true, q2 false, q1 true
	if !almostEqual(p.Retention, 2.0/3.0) {
		t.Errorf("Retention = %v, want 2/3", p.Retention)
	}

	noRepeats := AnalyzePatterns(events[:2], "topic")
	assert.Equal(t, 0.5, noRepeats.Retention)
}

func TestAnalyzePatterns_DecodedJSONEvents(t *testing.T) {
	raw := `{"name":"answer_submitted","timestamp":"2026-01-01T10:00:00Z",
		"properties":{"exerciseType":"fill-blank","isCorrect":false,"timeToAnswer":1500}}`
	var ev Event
	require.NoError(t, json.Unmarshal([]byte(raw), &ev))

	p := AnalyzePatterns([]Event{ev}, "exerciseType")
	require.Len(t, p.Weaknesses, 1)
	assert.Equal(t, "fill-blank", p.Weaknesses[0].Group.Key)
	assert.Equal(t, CategoryRushed, p.Weaknesses[0].Errors[0].Category)
}

func TestAnalyzePatterns_MissingGroupProperty(t *testing.T) {
	ev := answerEvent(0, "", "q1", true, 8000)
	delete(ev.Properties, "topic")
	p := AnalyzePatterns([]Event{ev}, "topic")
	require.Len(t, p.Groups, 1)
	assert.Equal(t, "unknown", p.Groups[0].Key)
}
