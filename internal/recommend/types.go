// Package recommend ranks catalog content for a learner by combining
// several independent scoring strategies.
package recommend

import (
	"time"

	"github.com/abhisek/quizmind/internal/profile"
)

// StrategyKind names a recommendation strategy.
type StrategyKind string

const (
	StrategyContent       StrategyKind = "content-based"
	StrategyCollaborative StrategyKind = "collaborative"
	StrategyKnowledge     StrategyKind = "knowledge-based"
	StrategyContextual    StrategyKind = "contextual"
	StrategySerendipity   StrategyKind = "serendipity"
)

// Strategies lists every strategy in aggregation order.
var Strategies = []StrategyKind{
	StrategyContent,
	StrategyCollaborative,
	StrategyKnowledge,
	StrategyContextual,
	StrategySerendipity,
}

func rank(s StrategyKind) int {
	for i, k := range Strategies {
		if k == s {
			return i
		}
	}
	return len(Strategies)
}

// Content is a catalog item.
type Content struct {
	ID            string                `json:"id"`
	Title         string                `json:"title,omitempty"`
	Subject       string                `json:"subject,omitempty"`
	Topic         string                `json:"topic"`
	Tags          []string              `json:"tags,omitempty"`
	Format        string                `json:"format,omitempty"`
	Style         profile.LearningStyle `json:"style,omitempty"`
	Difficulty    float64               `json:"difficulty"`
	Quality       float64               `json:"quality"`
	Accessibility float64               `json:"accessibility,omitempty"`
	Available     bool                  `json:"available"`
	Premium       bool                  `json:"premium,omitempty"`
	MinAge        int                   `json:"minAge,omitempty"`
	Prerequisites []string              `json:"prerequisites,omitempty"`
	Minutes       int                   `json:"minutes,omitempty"`
	Devices       []string              `json:"devices,omitempty"`
	Intensity     string                `json:"intensity,omitempty"`
	Locations     []string              `json:"locations,omitempty"`
}

// Duration is the expected time to complete the item, or zero if unknown.
func (c Content) Duration() time.Duration {
	return time.Duration(c.Minutes) * time.Minute
}

// Topics returns the item's topic plus its tags.
func (c Content) Topics() []string {
	out := make([]string, 0, len(c.Tags)+1)
	if c.Topic != "" {
		out = append(out, c.Topic)
	}
	return append(out, c.Tags...)
}

// Gap is a weak topic the knowledge strategy should remediate.
type Gap struct {
	Topic      string  `json:"topic"`
	Mastery    float64 `json:"mastery"`
	Readiness  float64 `json:"readiness"`
	Importance float64 `json:"importance"`
}

// NextConcept is a topic whose prerequisites are met.
type NextConcept struct {
	Topic      string  `json:"topic"`
	Importance float64 `json:"importance"`
}

// Situation describes the learner's current circumstances. Zero fields are
// unknown and do not contribute to the contextual strategy.
type Situation struct {
	AvailableTime time.Duration `json:"availableTime,omitempty"`
	Device        string        `json:"device,omitempty"`
	Energy        string        `json:"energy,omitempty"`
	Location      string        `json:"location,omitempty"`
}

// Request is the input to a ranking pass. Every call recomputes from
// scratch.
type Request struct {
	UserID           string
	Subject          string
	Limit            int
	Interests        []string
	PreferredFormats []string
	Style            profile.LearningStyle
	TargetDifficulty float64
	Gaps             []Gap
	NextConcepts     []NextConcept
	Situation        Situation

	// Seen holds content ids the learner has already used.
	Seen map[string]bool

	// Mastered reports whether a prerequisite topic is mastered. Nil
	// treats every prerequisite as unmet.
	Mastered func(topic string) bool

	Premium bool
	Age     int
}

// Candidate is one strategy's score for one item.
type Candidate struct {
	ContentID string             `json:"contentId"`
	Score     float64            `json:"score"`
	Strategy  StrategyKind       `json:"strategy"`
	Factors   map[string]float64 `json:"factors"`
	Reasoning string             `json:"reasoning"`
}

// Aggregated merges every strategy's candidate for one item.
type Aggregated struct {
	ContentID  string                              `json:"contentId"`
	TotalScore float64                             `json:"totalScore"`
	Strategies []StrategyKind                      `json:"strategies"`
	Factors    map[StrategyKind]map[string]float64 `json:"factors"`
	Reasoning  []string                            `json:"reasoning"`
}

// Item is a ranked recommendation.
type Item struct {
	Content    Content    `json:"content"`
	Aggregated Aggregated `json:"aggregated"`
	FinalScore float64    `json:"finalScore"`
	Confidence float64    `json:"confidence"`
}

// Result is the output of a ranking pass.
type Result struct {
	Items      []Item   `json:"items"`
	Reasoning  []string `json:"reasoning"`
	Confidence float64  `json:"confidence"`
}

// Weights are the global per-strategy weights.
type Weights struct {
	Content       float64 `yaml:"content" validate:"gte=0,lte=1"`
	Collaborative float64 `yaml:"collaborative" validate:"gte=0,lte=1"`
	Knowledge     float64 `yaml:"knowledge" validate:"gte=0,lte=1"`
	Contextual    float64 `yaml:"contextual" validate:"gte=0,lte=1"`
	Serendipity   float64 `yaml:"serendipity" validate:"gte=0,lte=1"`
}

// Caps limit how many results may share a category.
type Caps struct {
	PerTopic      int `yaml:"per_topic" validate:"gte=1"`
	PerFormat     int `yaml:"per_format" validate:"gte=1"`
	PerDifficulty int `yaml:"per_difficulty" validate:"gte=1"`
}

// Config holds ranker settings.
type Config struct {
	Weights          Weights       `yaml:"weights"`
	Caps             Caps          `yaml:"caps"`
	Limit            int           `yaml:"limit" validate:"gte=1"`
	QualityThreshold float64       `yaml:"quality_threshold" validate:"gte=0,lte=1"`
	SimilarUsers     int           `yaml:"similar_users" validate:"gte=0"`
	TrendWindow      time.Duration `yaml:"trend_window" validate:"gte=0"`
	ReasoningCount   int           `yaml:"reasoning_count" validate:"gte=0"`
}

// DefaultConfig returns the standard ranker configuration.
func DefaultConfig() Config {
	return Config{
		Weights: Weights{
			Content:       0.3,
			Collaborative: 0.15,
			Knowledge:     0.4,
			Contextual:    0.1,
			Serendipity:   0.05,
		},
		Caps:             Caps{PerTopic: 3, PerFormat: 4, PerDifficulty: 5},
		Limit:            10,
		QualityThreshold: 0.7,
		SimilarUsers:     10,
		TrendWindow:      7 * 24 * time.Hour,
		ReasoningCount:   5,
	}
}
