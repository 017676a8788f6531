package analytics

import (
	"fmt"
	"sort"
	"time"

	"github.com/abhisek/quizmind/internal/stats"
)

// ErrorCategory classifies a wrong answer by how long it took.
type ErrorCategory string

const (
	CategoryRushed       ErrorCategory = "rushed"
	CategoryOverthinking ErrorCategory = "overthinking"
	CategoryKnowledgeGap ErrorCategory = "knowledge-gap"
)

const (
	// RushedThreshold is the answer time (exclusive) below which a wrong
	// answer counts as rushed.
	RushedThreshold = 5 * time.Second

	// OverthinkingThreshold is the answer time (exclusive) above which a
	// wrong answer counts as overthinking.
	OverthinkingThreshold = 30 * time.Second
)

// Classifier is a rule-based error classifier. It returns "" when the rule
// does not apply.
type Classifier interface {
	Name() string
	Classify(elapsed time.Duration) ErrorCategory
}

type rushedClassifier struct{}

func (rushedClassifier) Name() string { return "rushed" }

func (rushedClassifier) Classify(elapsed time.Duration) ErrorCategory {
	if elapsed < RushedThreshold {
		return CategoryRushed
	}
	return ""
}

type overthinkingClassifier struct{}

func (overthinkingClassifier) Name() string { return "overthinking" }

func (overthinkingClassifier) Classify(elapsed time.Duration) ErrorCategory {
	if elapsed > OverthinkingThreshold {
		return CategoryOverthinking
	}
	return ""
}

// DefaultClassifiers returns classifiers in priority order.
func DefaultClassifiers() []Classifier {
	return []Classifier{rushedClassifier{}, overthinkingClassifier{}}
}

// Categorize runs classifiers in order and returns the first match, or
// CategoryKnowledgeGap when none apply.
func Categorize(classifiers []Classifier, elapsed time.Duration) ErrorCategory {
	for _, c := range classifiers {
		if cat := c.Classify(elapsed); cat != "" {
			return cat
		}
	}
	return CategoryKnowledgeGap
}

// Group is the per-group answer summary.
type Group struct {
	Key       string  `json:"key"`
	Attempts  int     `json:"attempts"`
	Correct   int     `json:"correct"`
	Accuracy  float64 `json:"accuracy"`
	AvgTimeMs float64 `json:"avgTimeMs"`
}

// ErrorCount is how often a category occurred.
type ErrorCount struct {
	Category ErrorCategory `json:"category"`
	Count    int           `json:"count"`
}

// Weakness is a low-accuracy group with its most common error kinds.
type Weakness struct {
	Group  Group        `json:"group"`
	Errors []ErrorCount `json:"errors"`
}

// Patterns is the result of pattern analysis.
type Patterns struct {
	Groups          []Group    `json:"groups"`
	Strengths       []Group    `json:"strengths"`
	Weaknesses      []Weakness `json:"weaknesses"`
	AverageSpeedMs  float64    `json:"averageSpeedMs"`
	Retention       float64    `json:"retention"`
	Recommendations []string   `json:"recommendations"`
}

// Thresholds for pattern classification.
const (
	StrengthAccuracy = 0.8
	WeaknessAccuracy = 0.6
	topErrors        = 3
)

type answer struct {
	group    string
	question string
	correct  bool
	elapsed  time.Duration
	hasTime  bool
	at       time.Time
}

// AnalyzePatterns aggregates answer_submitted events grouped by the given
// property. Events missing the property are grouped under "unknown".
func AnalyzePatterns(events []Event, groupBy string) Patterns {
	var answers []answer
	for _, ev := range events {
		if ev.Name != EventAnswerSubmitted {
			continue
		}
		correct, ok := ev.Properties["isCorrect"].(bool)
		if !ok {
			continue
		}
		a := answer{
			group:    stringProp(ev.Properties, groupBy),
			question: stringProp(ev.Properties, "questionId"),
			correct:  correct,
			at:       ev.Timestamp,
		}
		if a.group == "" {
			a.group = "unknown"
		}
		if ms, ok := numberProp(ev.Properties, "timeToAnswer"); ok {
			a.elapsed = time.Duration(ms * float64(time.Millisecond))
			a.hasTime = true
		}
		answers = append(answers, a)
	}

	p := Patterns{Retention: stats.Neutral}
	if len(answers) == 0 {
		return p
	}

	type acc struct {
		g      Group
		times  []float64
		errors map[ErrorCategory]int
	}
	byKey := make(map[string]*acc)
	var order []string
	var allTimes []float64
	classifiers := DefaultClassifiers()

	for _, a := range answers {
		ga, ok := byKey[a.group]
		if !ok {
			ga = &acc{g: Group{Key: a.group}, errors: make(map[ErrorCategory]int)}
			byKey[a.group] = ga
			order = append(order, a.group)
		}
		ga.g.Attempts++
		if a.correct {
			ga.g.Correct++
		}
		if a.hasTime {
			ms := float64(a.elapsed.Milliseconds())
			ga.times = append(ga.times, ms)
			allTimes = append(allTimes, ms)
		}
		if !a.correct && a.hasTime {
			ga.errors[Categorize(classifiers, a.elapsed)]++
		} else if !a.correct {
			ga.errors[CategoryKnowledgeGap]++
		}
	}

	for _, key := range order {
		ga := byKey[key]
		ga.g.Accuracy = float64(ga.g.Correct) / float64(ga.g.Attempts)
		if len(ga.times) > 0 {
			ga.g.AvgTimeMs = stats.Mean(ga.times)
		}
		p.Groups = append(p.Groups, ga.g)

		switch {
		case ga.g.Accuracy > StrengthAccuracy:
			p.Strengths = append(p.Strengths, ga.g)
		case ga.g.Accuracy < WeaknessAccuracy:
			w := Weakness{Group: ga.g, Errors: rankErrors(ga.errors)}
			p.Weaknesses = append(p.Weaknesses, w)
			p.Recommendations = append(p.Recommendations, recommendation(w))
		}
	}

	if len(allTimes) > 0 {
		p.AverageSpeedMs = stats.Mean(allTimes)
	}
	p.Retention = retention(answers)
	return p
}

var categoryOrder = map[ErrorCategory]int{
	CategoryRushed:       0,
	CategoryOverthinking: 1,
	CategoryKnowledgeGap: 2,
}

func rankErrors(counts map[ErrorCategory]int) []ErrorCount {
	out := make([]ErrorCount, 0, len(counts))
	for cat, n := range counts {
		out = append(out, ErrorCount{Category: cat, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return categoryOrder[out[i].Category] < categoryOrder[out[j].Category]
	})
	if len(out) > topErrors {
		out = out[:topErrors]
	}
	return out
}

func recommendation(w Weakness) string {
	if len(w.Errors) == 0 {
		return fmt.Sprintf("Practice more %s questions", w.Group.Key)
	}
	switch w.Errors[0].Category {
	case CategoryRushed:
		return fmt.Sprintf("Slow down on %s questions; most mistakes were rushed", w.Group.Key)
	case CategoryOverthinking:
		return fmt.Sprintf("Trust your first instinct on %s questions; long deliberation led to mistakes", w.Group.Key)
	default:
		return fmt.Sprintf("Review the fundamentals of %s", w.Group.Key)
	}
}

// retention is the accuracy of repeat attempts on questions already seen,
// in time order. Neutral when nothing was repeated.
func retention(answers []answer) float64 {
	sorted := make([]answer, len(answers))
	copy(sorted, answers)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].at.Before(sorted[j].at) })

	seen := make(map[string]bool)
	var repeats []bool
	for _, a := range sorted {
		if a.question == "" {
			continue
		}
		if seen[a.question] {
			repeats = append(repeats, a.correct)
		}
		seen[a.question] = true
	}
	return stats.Accuracy(repeats)
}

func stringProp(props map[string]any, key string) string {
	if key == "" {
		return ""
	}
	switch v := props[key].(type) {
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

func numberProp(props map[string]any, key string) (float64, bool) {
	switch v := props[key].(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case time.Duration:
		return float64(v.Milliseconds()), true
	default:
		return 0, false
	}
}
