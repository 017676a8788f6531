package recommend

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const epsilon = 1e-9

func good(id, topic, format string, diff float64) Content {
	return Content{
		ID:         id,
		Topic:      topic,
		Format:     format,
		Difficulty: diff,
		Quality:    0.9,
		Available:  true,
	}
}

// mockPeers returns fixed peers, or an error when err is set.
type mockPeers struct {
	similar   []string
	successes map[string]float64
	err       error
}

func (m *mockPeers) FindSimilarUsers(context.Context, string, int) ([]string, error) {
	return m.similar, m.err
}

func (m *mockPeers) Successes(context.Context, []string) (map[string]float64, error) {
	return m.successes, m.err
}

type mockTrending struct{ items []TrendingItem }

func (m *mockTrending) Trending(context.Context, string, time.Duration) ([]TrendingItem, error) {
	return m.items, nil
}

func TestAggregate_CommutativeInStrategyOrder(t *testing.T) {
	content := []Candidate{
		{ContentID: "a", Score: 0.1, Strategy: StrategyContent},
		{ContentID: "b", Score: 0.2, Strategy: StrategyContent},
	}
	collab := []Candidate{{ContentID: "a", Score: 0.07, Strategy: StrategyCollaborative}}
	know := []Candidate{
		{ContentID: "a", Score: 0.33, Strategy: StrategyKnowledge},
		{ContentID: "c", Score: 0.3, Strategy: StrategyKnowledge},
	}
	ctxl := []Candidate{{ContentID: "b", Score: 0.03, Strategy: StrategyContextual}}
	ser := []Candidate{{ContentID: "a", Score: 0.011, Strategy: StrategySerendipity}}

	forward := Aggregate(content, collab, know, ctxl, ser)
	backward := Aggregate(ser, ctxl, know, collab, content)
	shuffled := Aggregate(know, ser, content, ctxl, collab)

	totals := func(aggs []Aggregated) map[string]float64 {
		out := make(map[string]float64)
		for _, a := range aggs {
			out[a.ContentID] = a.TotalScore
		}
		return out
	}
	assert.Equal(t, totals(forward), totals(backward))
	assert.Equal(t, totals(forward), totals(shuffled))
	assert.InDelta(t, 0.1+0.07+0.33+0.011, totals(forward)["a"], epsilon)

	require.Equal(t, "a", forward[0].ContentID)
	assert.Equal(t, []StrategyKind{StrategyContent, StrategyCollaborative, StrategyKnowledge, StrategySerendipity},
		forward[0].Strategies)
	assert.Equal(t, forward[0].Strategies, shuffled[0].Strategies)
}

func TestDiversify_TopicCap(t *testing.T) {
	var items []scored
	for i := 0; i < 10; i++ {
		c := good(fmt.Sprintf("g%d", i), "grammar", fmt.Sprintf("f%d", i), float64(i)/10)
		items = append(items, scored{content: c})
	}
	out := diversify(items, DefaultConfig().Caps)
	assert.Len(t, out, 3)
	for i, it := range out {
		assert.Equal(t, fmt.Sprintf("g%d", i), it.content.ID, "highest-ranked items admitted first")
	}
}

func TestDiversify_FormatAndDifficultyCaps(t *testing.T) {
	var sameFormat, sameBucket []scored
	for i := 0; i < 10; i++ {
		sameFormat = append(sameFormat, scored{content: good(fmt.Sprintf("f%d", i), fmt.Sprintf("t%d", i), "video", float64(i)/10)})
		sameBucket = append(sameBucket, scored{content: good(fmt.Sprintf("d%d", i), fmt.Sprintf("t%d", i), fmt.Sprintf("fmt%d", i), 0.5)})
	}
	caps := DefaultConfig().Caps
	assert.Len(t, diversify(sameFormat, caps), 4)
	assert.Len(t, diversify(sameBucket, caps), 5)
}

func TestRules_AndSemantics(t *testing.T) {
	req := Request{Mastered: func(topic string) bool { return topic == "alphabet" }, Age: 10, Subject: "English"}
	rules := DefaultRules(0.7)

	base := good("x", "grammar", "quiz", 0.5)
	base.Subject = "english"
	ok, _ := passes(rules, base, req)
	assert.True(t, ok)

	tests := []struct {
		name   string
		mutate func(*Content)
		rule   string
	}{
		{"unavailable", func(c *Content) { c.Available = false }, "availability"},
		{"prerequisite unmet", func(c *Content) { c.Prerequisites = []string{"alphabet", "phonics"} }, "prerequisites"},
		{"premium", func(c *Content) { c.Premium = true }, "access"},
		{"low quality", func(c *Content) { c.Quality = 0.69 }, "quality"},
		{"too young", func(c *Content) { c.MinAge = 13 }, "appropriateness"},
		{"other subject", func(c *Content) { c.Subject = "math" }, "subject"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := base
			tt.mutate(&c)
			ok, rule := passes(rules, c, req)
			assert.False(t, ok)
			assert.Equal(t, tt.rule, rule)
		})
	}

	met := base
	met.Prerequisites = []string{"alphabet"}
	ok, _ = passes(rules, met, req)
	assert.True(t, ok)

	untagged := base
	untagged.Subject = ""
	ok, _ = passes(rules, untagged, req)
	assert.True(t, ok, "items without a subject pass")
}

func TestContentBased_Formula(t *testing.T) {
	c := good("x", "grammar", "video", 0.6)
	c.Tags = []string{"verbs"}
	c.Style = "visual"
	req := Request{
		Interests:        []string{"grammar"},
		PreferredFormats: []string{"Video"},
		Style:            "visual",
		TargetDifficulty: 0.5,
	}
	cands := contentBased([]Content{c}, req, 0.3)
	require.Len(t, cands, 1)
	// jaccard {grammar,verbs} vs {grammar} = 0.5, closeness 1-2*0.1 = 0.8
	want := (0.4*0.5 + 0.3 + 0.2 + 0.1*0.8) * 0.3
	assert.InDelta(t, want, cands[0].Score, epsilon)
}

func TestKnowledgeBased_GapAndNextConceptBothCount(t *testing.T) {
	c := good("g1", "grammar", "video", 0.4)
	req := Request{
		TargetDifficulty: 0.5,
		Gaps:             []Gap{{Topic: "grammar", Mastery: 0.3, Readiness: 1, Importance: 0.5}},
		NextConcepts:     []NextConcept{{Topic: "grammar", Importance: 0.5}},
	}
	cands := knowledgeBased([]Content{c}, req, 0.4)
	require.Len(t, cands, 2)
	// gap: 0.4*1 + 0.4*0.5 + 0.2*1; next concept: 0.4*1 + 0.4*0.5 + 0.2*0.8
	assert.InDelta(t, 0.8*0.4, cands[0].Score, epsilon)
	assert.InDelta(t, 0.76*0.4, cands[1].Score, epsilon)

	aggs := Aggregate(cands)
	require.Len(t, aggs, 1)
	assert.InDelta(t, (0.8+0.76)*0.4, aggs[0].TotalScore, epsilon)
	assert.Equal(t, []StrategyKind{StrategyKnowledge}, aggs[0].Strategies)
	assert.Len(t, aggs[0].Reasoning, 2)
}

func TestContextual_AbsentFactorsContributeZero(t *testing.T) {
	c := good("x", "grammar", "video", 0.5)
	c.Minutes = 10
	assert.Empty(t, contextual([]Content{c}, Request{}, 0.1))

	cands := contextual([]Content{c}, Request{Situation: Situation{AvailableTime: 15 * time.Minute}}, 0.1)
	require.Len(t, cands, 1)
	assert.InDelta(t, 0.3*0.1, cands[0].Score, epsilon)

	all := Situation{AvailableTime: 5 * time.Minute, Device: "mobile", Energy: "low", Location: "home"}
	c.Intensity = "high"
	cands = contextual([]Content{c}, Request{Situation: all}, 0.1)
	require.Len(t, cands, 1)
	// too long and too intense: only device and location fit
	assert.InDelta(t, 0.4*0.1, cands[0].Score, epsilon)
}

func TestCollaborative_TrendBoost(t *testing.T) {
	peers := &mockPeers{similar: []string{"u2"}, successes: map[string]float64{"a": 0.8}}
	trend := &mockTrending{items: []TrendingItem{{ContentID: "a", Score: 0.9}, {ContentID: "b", Score: 0.6}}}
	cands, err := collaborative(context.Background(), peers, trend, Request{}, DefaultConfig())
	require.NoError(t, err)
	require.Len(t, cands, 2)
	assert.InDelta(t, 0.8*0.15*1.1, cands[0].Score, epsilon)
	assert.InDelta(t, 0.6*0.15*0.5, cands[1].Score, epsilon)
}

func TestRank_EndToEnd(t *testing.T) {
	catalog := NewStaticCatalog([]Content{
		good("g1", "grammar", "quiz", 0.4),
		good("g2", "grammar", "video", 0.5),
		good("v1", "vocabulary", "quiz", 0.5),
		{ID: "bad", Topic: "grammar", Quality: 0.2, Available: true},
		{ID: "gone", Topic: "grammar", Quality: 0.9, Available: false},
		good("art", "painting", "video", 0.3),
	})
	r := NewRanker(DefaultConfig(), catalog, nil, nil, nil)
	res, err := r.Rank(context.Background(), Request{
		Interests:        []string{"grammar"},
		TargetDifficulty: 0.5,
		Gaps:             []Gap{{Topic: "grammar", Mastery: 0.3, Readiness: 1, Importance: 0.5}},
	})
	require.NoError(t, err)
	require.NotEmpty(t, res.Items)

	ids := make(map[string]bool)
	for _, it := range res.Items {
		ids[it.Content.ID] = true
		assert.InDelta(t, it.Aggregated.TotalScore*it.Confidence, it.FinalScore, epsilon)
		assert.InDelta(t, Confidence(len(it.Aggregated.Strategies)), it.Confidence, epsilon)
	}
	assert.False(t, ids["bad"], "low quality item must be filtered")
	assert.False(t, ids["gone"], "unavailable item must be filtered")
	assert.Equal(t, "g1", res.Items[0].Content.ID)
	assert.LessOrEqual(t, len(res.Reasoning), 5)
	assert.Greater(t, res.Confidence, 0.6)

	for i := 1; i < len(res.Items); i++ {
		assert.GreaterOrEqual(t, res.Items[i-1].FinalScore, res.Items[i].FinalScore)
	}
}

func TestRank_FailingPeersDoNotBlockOtherStrategies(t *testing.T) {
	catalog := NewStaticCatalog([]Content{good("g1", "grammar", "quiz", 0.5)})
	r := NewRanker(DefaultConfig(), catalog, &mockPeers{err: errors.New("peer service down")}, nil, nil)
	res, err := r.Rank(context.Background(), Request{Interests: []string{"grammar"}, TargetDifficulty: 0.5})
	require.NoError(t, err)
	require.Len(t, res.Items, 1)
	assert.NotContains(t, res.Items[0].Aggregated.Strategies, StrategyCollaborative)
}

func TestRank_LimitDefaultsToTen(t *testing.T) {
	var items []Content
	for i := 0; i < 30; i++ {
		items = append(items, good(fmt.Sprintf("c%02d", i), fmt.Sprintf("topic%d", i), fmt.Sprintf("fmt%d", i), float64(i%10)/10))
	}
	r := NewRanker(DefaultConfig(), NewStaticCatalog(items), nil, nil, nil)
	res, err := r.Rank(context.Background(), Request{TargetDifficulty: 0.5})
	require.NoError(t, err)
	assert.LessOrEqual(t, len(res.Items), 10)

	res, err = r.Rank(context.Background(), Request{TargetDifficulty: 0.5, Limit: 3})
	require.NoError(t, err)
	assert.Len(t, res.Items, 3)
}

func TestRank_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r := NewRanker(DefaultConfig(), NewStaticCatalog(nil), &mockPeers{err: context.Canceled}, nil, nil)
	_, err := r.Rank(ctx, Request{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestConfidence(t *testing.T) {
	assert.InDelta(t, 0.7, Confidence(1), epsilon)
	assert.InDelta(t, 0.9, Confidence(3), epsilon)
	assert.Equal(t, 1.0, Confidence(5))
}

func TestParseCatalog(t *testing.T) {
	c, err := ParseCatalog([]byte(`[{"id":"a","topic":"grammar","available":true,"quality":0.9,"minutes":5}]`))
	require.NoError(t, err)
	got, err := c.Content(context.Background(), "a")
	require.NoError(t, err)
	assert.Equal(t, 5*time.Minute, got.Duration())

	missing, err := c.Content(context.Background(), "zzz")
	require.NoError(t, err)
	assert.False(t, missing.Available)

	_, err = ParseCatalog([]byte(`[{"id":"a","topic":"grammar","available":true,"quality":3}]`))
	assert.Error(t, err)
}
