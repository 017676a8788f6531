package performance

import (
	"fmt"
	"math"

	"github.com/abhisek/quizmind/internal/difficulty"
)

// Factors weights the components of the performance score. The weights
// must sum to 1.
type Factors struct {
	Accuracy    float64 `yaml:"accuracy" json:"accuracy" validate:"gte=0,lte=1"`
	Speed       float64 `yaml:"speed" json:"speed" validate:"gte=0,lte=1"`
	Consistency float64 `yaml:"consistency" json:"consistency" validate:"gte=0,lte=1"`
	Improvement float64 `yaml:"improvement" json:"improvement" validate:"gte=0,lte=1"`
}

// Sum returns the total weight.
func (f Factors) Sum() float64 {
	return f.Accuracy + f.Speed + f.Consistency + f.Improvement
}

// Threshold pairs a performance level with the highest score it covers.
type Threshold struct {
	Level difficulty.Level `yaml:"level" json:"level"`
	Upper float64          `yaml:"upper" json:"upper"`
}

// Model is the static scoring configuration.
type Model struct {
	Factors Factors     `yaml:"factors" json:"factors"`
	Levels  []Threshold `yaml:"levels" json:"levels"`
}

// DefaultModel returns the standard weights and level thresholds.
func DefaultModel() Model {
	return Model{
		Factors: Factors{
			Accuracy:    0.4,
			Speed:       0.2,
			Consistency: 0.2,
			Improvement: 0.2,
		},
		Levels: []Threshold{
			{Level: difficulty.Beginner, Upper: 0.3},
			{Level: difficulty.Intermediate, Upper: 0.6},
			{Level: difficulty.Advanced, Upper: 0.8},
			{Level: difficulty.Expert, Upper: 0.95},
		},
	}
}

// Validate checks that the factor weights sum to 1 and level thresholds
// strictly increase.
func (m Model) Validate() error {
	if sum := m.Factors.Sum(); math.Abs(sum-1) > 1e-9 {
		return fmt.Errorf("factor weights sum to %.4f, want 1", sum)
	}
	if len(m.Levels) == 0 {
		return fmt.Errorf("no performance levels configured")
	}
	for i := 1; i < len(m.Levels); i++ {
		if m.Levels[i].Upper <= m.Levels[i-1].Upper {
			return fmt.Errorf("level %q threshold %.2f does not exceed %q threshold %.2f",
				m.Levels[i].Level, m.Levels[i].Upper, m.Levels[i-1].Level, m.Levels[i-1].Upper)
		}
	}
	return nil
}

// Classify returns the first level whose threshold covers score. Scores
// above every threshold belong to the last level.
func (m Model) Classify(score float64) difficulty.Level {
	for _, l := range m.Levels {
		if score <= l.Upper {
			return l.Level
		}
	}
	if len(m.Levels) == 0 {
		return difficulty.Intermediate
	}
	return m.Levels[len(m.Levels)-1].Level
}
