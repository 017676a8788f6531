package performance

import (
	"time"

	"github.com/abhisek/quizmind/internal/difficulty"
	"github.com/abhisek/quizmind/internal/stats"
)

const (
	// TargetAnswerTime is the answer time that earns a full speed score.
	TargetAnswerTime = 15 * time.Second

	// MinAnswerTime floors the average answer time before dividing.
	MinAnswerTime = 1 * time.Second
)

// AttemptRecord is one submitted answer.
type AttemptRecord struct {
	QuestionID   string           `json:"questionId,omitempty"`
	IsCorrect    bool             `json:"isCorrect"`
	TimeToAnswer time.Duration    `json:"timeToAnswer"`
	Topic        string           `json:"topic"`
	Difficulty   difficulty.Level `json:"difficulty"`
}

// Breakdown holds the individual factor scores alongside the weighted total.
type Breakdown struct {
	Accuracy    float64 `json:"accuracy"`
	Speed       float64 `json:"speed"`
	Consistency float64 `json:"consistency"`
	Improvement float64 `json:"improvement"`
	Total       float64 `json:"total"`
}

// Scorer converts a window of attempts into a single score in [0, 1].
type Scorer struct {
	model Model
}

// NewScorer creates a scorer for the given model.
func NewScorer(model Model) *Scorer {
	return &Scorer{model: model}
}

// Model returns the scorer's model.
func (s *Scorer) Model() Model { return s.model }

// Score returns the weighted performance score. An empty window scores a
// neutral 0.5.
func (s *Scorer) Score(records []AttemptRecord) float64 {
	return s.Breakdown(records).Total
}

// Breakdown computes every factor and the weighted total. For an empty
// window all factors and the total are neutral.
func (s *Scorer) Breakdown(records []AttemptRecord) Breakdown {
	if len(records) == 0 {
		return Breakdown{
			Accuracy:    stats.Neutral,
			Speed:       stats.Neutral,
			Consistency: stats.Neutral,
			Improvement: stats.Neutral,
			Total:       stats.Neutral,
		}
	}

	outcomes := Outcomes(records)
	b := Breakdown{
		Accuracy:    stats.Accuracy(outcomes),
		Speed:       SpeedScore(AverageTime(records)),
		Consistency: stats.Clamp01(1 - stats.Variance(stats.Indicators(outcomes))),
		Improvement: stats.Improvement(outcomes),
	}
	f := s.model.Factors
	b.Total = stats.Clamp01(
		b.Accuracy*f.Accuracy +
			b.Speed*f.Speed +
			b.Consistency*f.Consistency +
			b.Improvement*f.Improvement,
	)
	return b
}

// SpeedScore rewards answering at or under TargetAnswerTime. Slower
// answers are penalized proportionally; averages under MinAnswerTime are
// treated as MinAnswerTime.
func SpeedScore(avg time.Duration) float64 {
	if avg < MinAnswerTime {
		avg = MinAnswerTime
	}
	return stats.Clamp01(float64(TargetAnswerTime) / float64(avg))
}

// AverageTime returns the mean answer time, or zero for no records.
func AverageTime(records []AttemptRecord) time.Duration {
	if len(records) == 0 {
		return 0
	}
	var total time.Duration
	for _, r := range records {
		total += r.TimeToAnswer
	}
	return total / time.Duration(len(records))
}

// Outcomes extracts the correctness sequence.
func Outcomes(records []AttemptRecord) []bool {
	out := make([]bool, len(records))
	for i, r := range records {
		out[i] = r.IsCorrect
	}
	return out
}

// ByTopic groups records by topic, preserving first-seen topic order.
func ByTopic(records []AttemptRecord) ([]string, map[string][]AttemptRecord) {
	var order []string
	groups := make(map[string][]AttemptRecord)
	for _, r := range records {
		if r.Topic == "" {
			continue
		}
		if _, ok := groups[r.Topic]; !ok {
			order = append(order, r.Topic)
		}
		groups[r.Topic] = append(groups[r.Topic], r)
	}
	return order, groups
}
