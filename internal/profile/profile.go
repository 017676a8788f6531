// Package profile holds the learner profile: preferences, per-topic
// knowledge, and running performance aggregates.
package profile

import (
	"strings"
	"time"

	"github.com/abhisek/quizmind/internal/knowledge"
	"github.com/abhisek/quizmind/internal/ordered"
	"github.com/abhisek/quizmind/internal/stats"
)

// LearningStyle is the learner's preferred modality. Empty means unknown.
type LearningStyle string

const (
	StyleUnknown     LearningStyle = ""
	StyleVisual      LearningStyle = "visual"
	StyleAuditory    LearningStyle = "auditory"
	StyleKinesthetic LearningStyle = "kinesthetic"
	StyleReading     LearningStyle = "reading"
)

// HintStyle is the preferred hint strategy.
type HintStyle string

const (
	HintDirect      HintStyle = "direct"
	HintProgressive HintStyle = "progressive"
	HintSocratic    HintStyle = "socratic"
	HintContextual  HintStyle = "contextual"
)

// FeedbackDetail controls how verbose feedback is.
type FeedbackDetail string

const (
	FeedbackBrief    FeedbackDetail = "brief"
	FeedbackMedium   FeedbackDetail = "medium"
	FeedbackDetailed FeedbackDetail = "detailed"
)

// ChallengeLevel is how hard the learner wants to be pushed.
type ChallengeLevel string

const (
	ChallengeEasy        ChallengeLevel = "easy"
	ChallengeBalanced    ChallengeLevel = "balanced"
	ChallengeChallenging ChallengeLevel = "challenging"
)

// ParseLearningStyle normalizes s. Unrecognized values become StyleUnknown.
func ParseLearningStyle(s string) LearningStyle {
	switch v := LearningStyle(strings.ToLower(strings.TrimSpace(s))); v {
	case StyleVisual, StyleAuditory, StyleKinesthetic, StyleReading:
		return v
	default:
		return StyleUnknown
	}
}

// ParseHintStyle normalizes s. Unrecognized values become HintProgressive.
func ParseHintStyle(s string) HintStyle {
	switch v := HintStyle(strings.ToLower(strings.TrimSpace(s))); v {
	case HintDirect, HintProgressive, HintSocratic, HintContextual:
		return v
	default:
		return HintProgressive
	}
}

// ParseFeedbackDetail normalizes s. Unrecognized values become FeedbackMedium.
func ParseFeedbackDetail(s string) FeedbackDetail {
	switch v := FeedbackDetail(strings.ToLower(strings.TrimSpace(s))); v {
	case FeedbackBrief, FeedbackMedium, FeedbackDetailed:
		return v
	default:
		return FeedbackMedium
	}
}

// ParseChallengeLevel normalizes s. Unrecognized values become
// ChallengeBalanced.
func ParseChallengeLevel(s string) ChallengeLevel {
	switch v := ChallengeLevel(strings.ToLower(strings.TrimSpace(s))); v {
	case ChallengeEasy, ChallengeBalanced, ChallengeChallenging:
		return v
	default:
		return ChallengeBalanced
	}
}

// Preferences are the learner's stated preferences.
type Preferences struct {
	HintStyle      HintStyle      `json:"hintStyle"`
	FeedbackDetail FeedbackDetail `json:"feedbackDetail"`
	ChallengeLevel ChallengeLevel `json:"challengeLevel"`
}

// DefaultPreferences returns the preferences of a new learner.
func DefaultPreferences() Preferences {
	return Preferences{
		HintStyle:      HintProgressive,
		FeedbackDetail: FeedbackMedium,
		ChallengeLevel: ChallengeBalanced,
	}
}

// Normalize replaces unrecognized values with defaults.
func (p Preferences) Normalize() Preferences {
	return Preferences{
		HintStyle:      ParseHintStyle(string(p.HintStyle)),
		FeedbackDetail: ParseFeedbackDetail(string(p.FeedbackDetail)),
		ChallengeLevel: ParseChallengeLevel(string(p.ChallengeLevel)),
	}
}

// Performance holds aggregates across analysed sessions. AverageTime is
// in milliseconds.
type Performance struct {
	AverageAccuracy float64 `json:"averageAccuracy"`
	AverageTime     float64 `json:"averageTime"`
	SessionCount    int     `json:"sessionCount"`
	TotalQuestions  int     `json:"totalQuestions"`
}

// Profile is the learner model. It is not safe for concurrent use.
type Profile struct {
	LearningStyle LearningStyle
	Preferences   Preferences

	// Knowledge maps topic to mastery in first-seen order. Topics are
	// never evicted.
	Knowledge *ordered.Map[float64]

	// Graph is the per-topic knowledge node state.
	Graph *ordered.Map[knowledge.Node]

	Performance  Performance
	RecentScores *stats.Window
	UpdatedAt    time.Time
}

// New returns a profile with default preferences and no history.
func New() *Profile {
	return &Profile{
		Preferences:  DefaultPreferences(),
		Knowledge:    ordered.New[float64](),
		Graph:        ordered.New[knowledge.Node](),
		RecentScores: stats.NewWindow(stats.DefaultWindowSize),
	}
}

// Session summarizes one analysed batch of attempts.
type Session struct {
	Accuracy    float64
	AverageTime time.Duration
	Questions   int
	Score       float64
}

// RecordSession folds a session into the running aggregates. The session
// count is incremented before averaging.
func (p *Profile) RecordSession(s Session) {
	p.Performance.SessionCount++
	n := p.Performance.SessionCount
	p.Performance.AverageAccuracy = stats.Clamp01(
		stats.RunningAverage(p.Performance.AverageAccuracy, s.Accuracy, n))
	p.Performance.AverageTime = stats.RunningAverage(
		p.Performance.AverageTime, float64(s.AverageTime.Milliseconds()), n)
	p.Performance.TotalQuestions += s.Questions
	p.RecentScores.Push(stats.Clamp01(s.Score))
}

// SetKnowledge mirrors a tracker's state into the profile.
func (p *Profile) SetKnowledge(levels *ordered.Map[float64], graph *ordered.Map[knowledge.Node]) {
	levels.Each(func(topic string, lvl float64) bool {
		p.Knowledge.Set(topic, stats.Clamp01(lvl))
		return true
	})
	graph.Each(func(topic string, n knowledge.Node) bool {
		p.Graph.Set(topic, n)
		return true
	})
}
