package hints

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/abhisek/quizmind/internal/profile"
)

func sampleQuestion() Question {
	return Question{
		ID:            "q1",
		Text:          "Choose the correct article: ___ apple.",
		Topic:         "grammar",
		Type:          TypeMultipleChoice,
		Explanation:   "Use an before vowel sounds. Apple starts with a vowel sound.",
		CorrectAnswer: "an",
		Options:       []string{"a", "an", "the"},
	}
}

func TestSelect_PriorityOrder(t *testing.T) {
	cfg := DefaultConfig()
	tests := []struct {
		name       string
		attempts   int
		elapsed    time.Duration
		preference profile.HintStyle
		want       Strategy
	}{
		{"preference used", 0, 0, profile.HintContextual, StrategyContextual},
		{"unknown preference", 1, 10 * time.Second, "telepathy", StrategyProgressive},
		{"empty preference", 0, 0, "", StrategyProgressive},
		{"slow forces socratic", 1, 31 * time.Second, profile.HintDirect, StrategySocratic},
		{"exactly 30s keeps preference", 1, 30 * time.Second, profile.HintContextual, StrategyContextual},
		{"two attempts keeps preference", 2, 0, profile.HintSocratic, StrategySocratic},
		{"three attempts forces direct", 3, 0, profile.HintSocratic, StrategyDirect},
		{"attempts beat elapsed", 3, time.Minute, profile.HintProgressive, StrategyDirect},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := Request{Question: sampleQuestion(), Attempts: tt.attempts, Elapsed: tt.elapsed}
			if got := Select(cfg, req, tt.preference); got != tt.want {
				t.Errorf("Select = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestGenerate_ThreeAttemptsAlwaysDirect(t *testing.T) {
	g := NewGenerator(DefaultConfig())
	for _, pref := range []profile.HintStyle{
		profile.HintDirect, profile.HintProgressive, profile.HintSocratic, profile.HintContextual, "", "nonsense",
	} {
		h, err := g.Generate(Request{Question: sampleQuestion(), Attempts: 3}, pref)
		if err != nil {
			t.Fatalf("pref %q: unexpected error: %v", pref, err)
		}
		if h.Strategy != StrategyDirect {
			t.Errorf("pref %q: strategy = %s, want direct", pref, h.Strategy)
		}
		if !strings.Contains(h.Content, "an") {
			t.Errorf("pref %q: direct hint %q does not mention the answer", pref, h.Content)
		}
	}
}

func TestGenerate_LadderEscalates(t *testing.T) {
	g := NewGenerator(DefaultConfig())
	q := sampleQuestion()
	wantConf := []float64{0.6, 0.75, 0.85, 0.95, 0.95}
	prev := 0.0
	for i, want := range wantConf {
		h, err := g.Generate(Request{Question: q}, profile.HintProgressive)
		if err != nil {
			t.Fatalf("request %d: %v", i+1, err)
		}
		if h.Level != i+1 {
			t.Errorf("request %d: level = %d, want %d", i+1, h.Level, i+1)
		}
		if h.Confidence != want {
			t.Errorf("request %d: confidence = %f, want %f", i+1, h.Confidence, want)
		}
		if h.Confidence < prev {
			t.Errorf("request %d: confidence decreased", i+1)
		}
		prev = h.Confidence
	}

	g.Ladder().Reset(q.ID)
	h, _ := g.Generate(Request{Question: q}, profile.HintProgressive)
	if h.Level != 1 {
		t.Errorf("after reset level = %d, want 1", h.Level)
	}
}

func TestProgressive_SpecificPrefersAuthorHint(t *testing.T) {
	g := NewGenerator(DefaultConfig())
	q := sampleQuestion()
	q.Hint = "Listen to the first sound of the noun."

	h, err := g.Run(StrategyProgressive, q, LevelSpecific)
	if err != nil {
		t.Fatal(err)
	}
	if h.Content != q.Hint {
		t.Errorf("Content = %q, want author hint", h.Content)
	}

	q.Hint = ""
	h, _ = g.Run(StrategyProgressive, q, LevelSpecific)
	if h.Content != "Consider this: Use an before vowel sounds." {
		t.Errorf("Content = %q, want explanation-derived hint", h.Content)
	}

	q.Explanation = ""
	h, _ = g.Run(StrategyProgressive, q, LevelSpecific)
	if !strings.Contains(h.Content, "grammar") {
		t.Errorf("Content = %q, want topic hint", h.Content)
	}
}

func TestDirect_InsufficientData(t *testing.T) {
	g := NewGenerator(DefaultConfig())
	_, err := g.Run(StrategyDirect, Question{ID: "q2"}, 1)
	if !errors.Is(err, ErrInsufficientData) {
		t.Errorf("err = %v, want ErrInsufficientData", err)
	}

	q := Question{ID: "q2", Topic: "grammar"}
	h, err := g.Run(StrategyDirect, q, 1)
	if err != nil {
		t.Fatalf("topic alone should give a direct hint: %v", err)
	}
	if h.Strategy != StrategyDirect || h.Confidence != 0.6 {
		t.Errorf("got %s at %v, want direct at 0.6", h.Strategy, h.Confidence)
	}
	if !strings.Contains(h.Content, "grammar") {
		t.Errorf("Content = %q, want topic guidance", h.Content)
	}

	q.Hint = "Look at the subject."
	if h, _ = g.Run(StrategyDirect, q, 1); h.Content != q.Hint {
		t.Errorf("Content = %q, want author hint", h.Content)
	}
	q.Hint = ""

	q.Explanation = "Subjects and verbs agree in number."
	h, err = g.Run(StrategyDirect, q, 1)
	if err != nil {
		t.Fatalf("explanation alone should suffice: %v", err)
	}
	if h.Content != q.Explanation {
		t.Errorf("Content = %q, want explanation", h.Content)
	}
}

func TestContextual_CoversEveryExerciseType(t *testing.T) {
	if len(ExerciseTypes) != 12 {
		t.Fatalf("ExerciseTypes has %d entries, want 12", len(ExerciseTypes))
	}
	g := NewGenerator(DefaultConfig())
	seen := make(map[string]bool)
	for _, typ := range ExerciseTypes {
		h, err := g.Run(StrategyContextual, Question{ID: "q", Type: typ}, 1)
		if err != nil {
			t.Fatalf("%s: %v", typ, err)
		}
		if seen[h.Content] {
			t.Errorf("%s: duplicate tip %q", typ, h.Content)
		}
		seen[h.Content] = true
	}
}

func TestGenerate_Disabled(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Enabled = false
	g := NewGenerator(cfg)
	h, err := g.Generate(Request{Question: sampleQuestion(), Attempts: 5, Elapsed: time.Hour}, profile.HintDirect)
	if err != nil {
		t.Fatal(err)
	}
	if h != Basic() {
		t.Errorf("got %+v, want basic hint", h)
	}
}

func TestRun_UnknownStrategy(t *testing.T) {
	g := NewGenerator(DefaultConfig())
	if _, err := g.Run("interpretive-dance", sampleQuestion(), 1); err == nil {
		t.Error("expected error for unknown strategy")
	}
}

func TestSocratic_HighLevelsClamp(t *testing.T) {
	g := NewGenerator(DefaultConfig())
	h, err := g.Run(StrategySocratic, sampleQuestion(), 9)
	if err != nil {
		t.Fatal(err)
	}
	if h.Level != 9 || h.Content != socraticPrompts[3] {
		t.Errorf("got level %d content %q", h.Level, h.Content)
	}
}
