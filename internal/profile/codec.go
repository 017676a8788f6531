package profile

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"golang.org/x/mod/semver"

	"github.com/abhisek/quizmind/internal/knowledge"
	"github.com/abhisek/quizmind/internal/ordered"
	"github.com/abhisek/quizmind/internal/stats"
	"github.com/abhisek/quizmind/internal/validate"
)

// FormatVersion is the version written into encoded profiles. Blobs with
// a different major version are rejected.
const FormatVersion = "v1.0.0"

// ErrIncompatibleVersion is returned when a blob's format version is
// missing, malformed, or has a different major version.
var ErrIncompatibleVersion = errors.New("incompatible profile format version")

type blob struct {
	Version        string                       `json:"version"`
	LearningStyle  LearningStyle                `json:"learningStyle"`
	Preferences    Preferences                  `json:"preferences"`
	KnowledgeLevel *ordered.Map[float64]        `json:"knowledgeLevel"`
	KnowledgeGraph *ordered.Map[knowledge.Node] `json:"knowledgeGraph"`
	Performance    Performance                  `json:"performance"`
	RecentScores   []float64                    `json:"recentScores"`
	UpdatedAt      time.Time                    `json:"updatedAt"`
}

// Encode serializes p to its persisted JSON layout.
func Encode(p *Profile) ([]byte, error) {
	b := blob{
		Version:        FormatVersion,
		LearningStyle:  p.LearningStyle,
		Preferences:    p.Preferences,
		KnowledgeLevel: p.Knowledge,
		KnowledgeGraph: p.Graph,
		Performance:    p.Performance,
		UpdatedAt:      p.UpdatedAt,
	}
	if b.KnowledgeLevel == nil {
		b.KnowledgeLevel = ordered.New[float64]()
	}
	if b.KnowledgeGraph == nil {
		b.KnowledgeGraph = ordered.New[knowledge.Node]()
	}
	if p.RecentScores != nil {
		b.RecentScores = p.RecentScores.Samples
	}
	if b.RecentScores == nil {
		b.RecentScores = []float64{}
	}
	data, err := json.Marshal(b)
	if err != nil {
		return nil, fmt.Errorf("encode profile: %w", err)
	}
	return data, nil
}

// Decode parses a persisted profile. The blob is version-checked, then
// validated against the profile schema. Unrecognized enum values are
// defaulted and scores are clamped.
func Decode(data []byte) (*Profile, error) {
	var head struct {
		Version string `json:"version"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, fmt.Errorf("decode profile: %w", err)
	}
	if !semver.IsValid(head.Version) || semver.Major(head.Version) != semver.Major(FormatVersion) {
		return nil, fmt.Errorf("%w: %q", ErrIncompatibleVersion, head.Version)
	}

	if err := validate.Document(Schema, data); err != nil {
		return nil, fmt.Errorf("decode profile: %w", err)
	}

	var b blob
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("decode profile: %w", err)
	}

	p := New()
	p.LearningStyle = ParseLearningStyle(string(b.LearningStyle))
	p.Preferences = b.Preferences.Normalize()
	p.Performance = b.Performance
	p.Performance.AverageAccuracy = stats.Clamp01(p.Performance.AverageAccuracy)
	p.UpdatedAt = b.UpdatedAt
	b.KnowledgeLevel.Each(func(topic string, lvl float64) bool {
		p.Knowledge.Set(topic, stats.Clamp01(lvl))
		return true
	})
	b.KnowledgeGraph.Each(func(topic string, n knowledge.Node) bool {
		n.MasteryLevel = stats.Clamp01(n.MasteryLevel)
		p.Graph.Set(topic, n)
		return true
	})
	for _, s := range b.RecentScores {
		p.RecentScores.Push(stats.Clamp01(s))
	}
	return p, nil
}
