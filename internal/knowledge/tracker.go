package knowledge

import (
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/abhisek/quizmind/internal/ordered"
	"github.com/abhisek/quizmind/internal/stats"
)

// Config holds knowledge tracking thresholds.
type Config struct {
	// LearningRate is the EMA weight given to each new indicator.
	LearningRate float64 `yaml:"learning_rate" validate:"gt=0,lte=1"`

	// WeakThreshold marks topics below it as weaknesses.
	WeakThreshold float64 `yaml:"weak_threshold" validate:"gt=0,lte=1"`

	// StrongThreshold marks topics at or above it as strengths and as
	// mastered for learning-path purposes.
	StrongThreshold float64 `yaml:"strong_threshold" validate:"gt=0,lte=1"`

	// WeakLimit caps how many weaknesses are surfaced.
	WeakLimit int `yaml:"weak_limit" validate:"gte=1"`
}

// DefaultConfig returns the standard knowledge tracking configuration.
func DefaultConfig() Config {
	return Config{
		LearningRate:    0.3,
		WeakThreshold:   0.6,
		StrongThreshold: 0.8,
		WeakLimit:       3,
	}
}

// Node is the per-topic knowledge state.
type Node struct {
	MasteryLevel  float64            `json:"masteryLevel"`
	Connections   map[string]float64 `json:"connections"`
	LastPracticed time.Time          `json:"lastPracticed"`
	PracticeCount int                `json:"practiceCount"`
}

// Tracker maintains topic mastery. It is safe for concurrent use.
type Tracker struct {
	mu    sync.RWMutex
	cfg   Config
	nodes *ordered.Map[*Node]
	now   func() time.Time
}

// NewTracker creates a tracker, seeding it from a previously exported graph.
// A nil graph starts empty.
func NewTracker(cfg Config, graph *ordered.Map[Node]) *Tracker {
	t := &Tracker{
		cfg:   cfg,
		nodes: ordered.New[*Node](),
		now:   time.Now,
	}
	if graph == nil {
		return t
	}
	graph.Each(func(topic string, n Node) bool {
		node := n
		node.MasteryLevel = stats.Clamp01(node.MasteryLevel)
		if node.Connections == nil {
			node.Connections = make(map[string]float64)
		}
		t.nodes.Set(topic, &node)
		return true
	})
	return t
}

// Config returns the tracker's configuration.
func (t *Tracker) Config() Config { return t.cfg }

// node returns the node for a topic, creating it at mastery 0 on first
// sight. Caller must hold the write lock.
func (t *Tracker) node(topic string) *Node {
	if n, ok := t.nodes.Get(topic); ok {
		return n
	}
	n := &Node{Connections: make(map[string]float64)}
	t.nodes.Set(topic, n)
	return n
}

// Update folds one performance indicator into a topic's mastery and
// returns the new level. The indicator is clamped to [0, 1], so the
// result always stays in [0, 1].
func (t *Tracker) Update(topic string, indicator float64) float64 {
	t.mu.Lock()
	defer t.mu.Unlock()

	n := t.node(topic)
	p := stats.Clamp01(indicator)
	n.MasteryLevel = stats.Clamp01(n.MasteryLevel + t.cfg.LearningRate*(p-n.MasteryLevel))
	n.PracticeCount++
	n.LastPracticed = t.now()
	return n.MasteryLevel
}

// Mastery returns a topic's mastery and whether the topic has been seen.
func (t *Tracker) Mastery(topic string) (float64, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	n, ok := t.nodes.Get(topic)
	if !ok {
		return 0, false
	}
	return n.MasteryLevel, true
}

// Levels returns topic to mastery level in first-seen order.
func (t *Tracker) Levels() *ordered.Map[float64] {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := ordered.New[float64]()
	t.nodes.Each(func(topic string, n *Node) bool {
		out.Set(topic, n.MasteryLevel)
		return true
	})
	return out
}

// SnapshotData exports a copy of every node for persistence.
func (t *Tracker) SnapshotData() *ordered.Map[Node] {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := ordered.New[Node]()
	t.nodes.Each(func(topic string, n *Node) bool {
		cp := *n
		cp.Connections = make(map[string]float64, len(n.Connections))
		for k, v := range n.Connections {
			cp.Connections[k] = v
		}
		out.Set(topic, cp)
		return true
	})
	return out
}

// Reset drops all topics.
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.nodes = ordered.New[*Node]()
}

// TopicLevel pairs a topic with its mastery.
type TopicLevel struct {
	Topic string  `json:"topic"`
	Level float64 `json:"level"`
}

// Weaknesses returns topics below the weak threshold, lowest mastery first,
// capped at the configured limit. Ties keep first-seen order.
func (t *Tracker) Weaknesses(levels *ordered.Map[float64]) []TopicLevel {
	var weak []TopicLevel
	levels.Each(func(topic string, lvl float64) bool {
		if lvl < t.cfg.WeakThreshold {
			weak = append(weak, TopicLevel{Topic: topic, Level: lvl})
		}
		return true
	})
	sort.SliceStable(weak, func(i, j int) bool { return weak[i].Level < weak[j].Level })
	if len(weak) > t.cfg.WeakLimit {
		weak = weak[:t.cfg.WeakLimit]
	}
	return weak
}

// Strengths returns topics at or above the strong threshold, highest
// mastery first.
func (t *Tracker) Strengths(levels *ordered.Map[float64]) []TopicLevel {
	var strong []TopicLevel
	levels.Each(func(topic string, lvl float64) bool {
		if lvl >= t.cfg.StrongThreshold {
			strong = append(strong, TopicLevel{Topic: topic, Level: lvl})
		}
		return true
	})
	sort.SliceStable(strong, func(i, j int) bool { return strong[i].Level > strong[j].Level })
	return strong
}

// Recommendation is a remediation suggestion for a weak topic.
type Recommendation struct {
	Type     string  `json:"type"`
	Topic    string  `json:"topic"`
	Reason   string  `json:"reason"`
	Priority float64 `json:"priority"`
}

// RecommendationPractice is the type of weak-topic recommendations.
const RecommendationPractice = "practice"

// Recommend turns weaknesses into practice recommendations. Lower mastery
// gives higher priority.
func (t *Tracker) Recommend(levels *ordered.Map[float64]) []Recommendation {
	weak := t.Weaknesses(levels)
	recs := make([]Recommendation, 0, len(weak))
	for _, w := range weak {
		recs = append(recs, Recommendation{
			Type:  RecommendationPractice,
			Topic: w.Topic,
			Reason: fmt.Sprintf("Mastery of %s is %d%%, below the %d%% target",
				w.Topic, percent(w.Level), percent(t.cfg.WeakThreshold)),
			Priority: 1 - w.Level,
		})
	}
	return recs
}

func percent(v float64) int {
	return int(math.Round(v * 100))
}
