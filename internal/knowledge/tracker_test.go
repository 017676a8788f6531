package knowledge

import (
	"math"
	"strings"
	"testing"
	"time"

	"github.com/abhisek/quizmind/internal/ordered"
)

const epsilon = 0.001

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < epsilon
}

func levels(pairs ...any) *ordered.Map[float64] {
	m := ordered.New[float64]()
	for i := 0; i < len(pairs); i += 2 {
		m.Set(pairs[i].(string), pairs[i+1].(float64))
	}
	return m
}

func TestTracker_LazyCreate(t *testing.T) {
	tr := NewTracker(DefaultConfig(), nil)
	if _, ok := tr.Mastery("fractions"); ok {
		t.Fatal("topic should not exist before first update")
	}

	fixed := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	tr.now = func() time.Time { return fixed }

	got := tr.Update("fractions", 1)
	if !almostEqual(got, 0.3) {
		t.Errorf("first update = %f, want 0.3", got)
	}
	snap := tr.SnapshotData()
	n, ok := snap.Get("fractions")
	if !ok {
		t.Fatal("fractions missing from snapshot")
	}
	if n.PracticeCount != 1 {
		t.Errorf("PracticeCount = %d, want 1", n.PracticeCount)
	}
	if !n.LastPracticed.Equal(fixed) {
		t.Errorf("LastPracticed = %v, want %v", n.LastPracticed, fixed)
	}
}

func TestTracker_Bounded(t *testing.T) {
	tr := NewTracker(DefaultConfig(), nil)
	inputs := []float64{1, 1, 1, 5, 1e9, -3, 0, 0, 1, -1e9, 0.5}
	for i := 0; i < 200; i++ {
		lvl := tr.Update("t", inputs[i%len(inputs)])
		if lvl < 0 || lvl > 1 {
			t.Fatalf("iteration %d: mastery %f out of [0,1]", i, lvl)
		}
	}
}

func TestTracker_ConvergesOnConstantInput(t *testing.T) {
	tr := NewTracker(DefaultConfig(), nil)
	var lvl float64
	for i := 0; i < 50; i++ {
		lvl = tr.Update("t", 1)
	}
	if !almostEqual(lvl, 1) {
		t.Errorf("after 50 correct answers mastery = %f, want ~1", lvl)
	}
}

func TestTracker_SeededFromSnapshot(t *testing.T) {
	graph := ordered.New[Node]()
	graph.Set("b", Node{MasteryLevel: 0.4, PracticeCount: 2})
	graph.Set("a", Node{MasteryLevel: 1.7})

	tr := NewTracker(DefaultConfig(), graph)
	if lvl, _ := tr.Mastery("a"); lvl != 1 {
		t.Errorf("seeded mastery not clamped: %f", lvl)
	}
	keys := tr.Levels().Keys()
	if len(keys) != 2 || keys[0] != "b" || keys[1] != "a" {
		t.Errorf("Levels order = %v, want [b a]", keys)
	}
}

func TestWeaknesses_SortedAndCapped(t *testing.T) {
	tr := NewTracker(DefaultConfig(), nil)
	got := tr.Weaknesses(levels("a", 0.5, "b", 0.1, "c", 0.9, "d", 0.3, "e", 0.59, "f", 0.6))
	if len(got) != 3 {
		t.Fatalf("got %d weaknesses, want 3: %v", len(got), got)
	}
	want := []string{"b", "d", "a"}
	for i, w := range want {
		if got[i].Topic != w {
			t.Errorf("weakness[%d] = %s, want %s", i, got[i].Topic, w)
		}
	}
}

func TestStrengths(t *testing.T) {
	tr := NewTracker(DefaultConfig(), nil)
	got := tr.Strengths(levels("a", 0.8, "b", 0.95, "c", 0.79))
	if len(got) != 2 || got[0].Topic != "b" || got[1].Topic != "a" {
		t.Errorf("Strengths = %v, want [b a]", got)
	}
}

func TestRecommend_GrammarAndVocabulary(t *testing.T) {
	tr := NewTracker(DefaultConfig(), nil)
	recs := tr.Recommend(levels("grammar", 0.3, "vocabulary", 0.9))

	if len(recs) != 1 {
		t.Fatalf("got %d recommendations, want 1: %v", len(recs), recs)
	}
	r := recs[0]
	if r.Type != RecommendationPractice {
		t.Errorf("Type = %q, want practice", r.Type)
	}
	if r.Topic != "grammar" {
		t.Errorf("Topic = %q, want grammar", r.Topic)
	}
	if !strings.Contains(r.Reason, "30%") {
		t.Errorf("Reason %q does not contain 30%%", r.Reason)
	}
	if !almostEqual(r.Priority, 0.7) {
		t.Errorf("Priority = %f, want 0.7", r.Priority)
	}
	for _, rec := range recs {
		if rec.Topic == "vocabulary" {
			t.Error("vocabulary should not be recommended")
		}
	}
}

func TestRecommend_Empty(t *testing.T) {
	tr := NewTracker(DefaultConfig(), nil)
	if recs := tr.Recommend(nil); len(recs) != 0 {
		t.Errorf("Recommend(nil) = %v, want empty", recs)
	}
}
