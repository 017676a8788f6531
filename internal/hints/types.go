package hints

import (
	"errors"
	"time"

	"github.com/abhisek/quizmind/internal/difficulty"
)

// Strategy identifies how a hint was produced.
type Strategy string

const (
	StrategyProgressive Strategy = "progressive"
	StrategySocratic    Strategy = "socratic"
	StrategyDirect      Strategy = "direct"
	StrategyContextual  Strategy = "contextual"

	// StrategyBasic is used when hint generation is disabled.
	StrategyBasic Strategy = "basic"

	// StrategyFallback is used when generation fails.
	StrategyFallback Strategy = "fallback"
)

// ExerciseType is the interaction format of a question.
type ExerciseType string

const (
	TypeMultipleChoice       ExerciseType = "multiple-choice"
	TypeTrueFalse            ExerciseType = "true-false"
	TypeFillInTheBlanks      ExerciseType = "fill-in-the-blanks"
	TypeDragAndDrop          ExerciseType = "drag-and-drop"
	TypeSequencing           ExerciseType = "sequencing"
	TypeMatching             ExerciseType = "matching"
	TypeShortAnswer          ExerciseType = "short-answer"
	TypeCategorization       ExerciseType = "categorization"
	TypeHotspot              ExerciseType = "hotspot"
	TypeSlider               ExerciseType = "slider"
	TypeWordBank             ExerciseType = "word-bank"
	TypeReadingComprehension ExerciseType = "reading-comprehension"
)

// ExerciseTypes lists every supported exercise type.
var ExerciseTypes = []ExerciseType{
	TypeMultipleChoice, TypeTrueFalse, TypeFillInTheBlanks, TypeDragAndDrop,
	TypeSequencing, TypeMatching, TypeShortAnswer, TypeCategorization,
	TypeHotspot, TypeSlider, TypeWordBank, TypeReadingComprehension,
}

// Question is the read-only authoring data a hint may draw on. Every
// field except ID is optional.
type Question struct {
	ID            string           `json:"id"`
	Text          string           `json:"text,omitempty"`
	Topic         string           `json:"topic,omitempty"`
	Type          ExerciseType     `json:"type,omitempty"`
	Hint          string           `json:"hint,omitempty"`
	Explanation   string           `json:"explanation,omitempty"`
	CorrectAnswer string           `json:"correctAnswer,omitempty"`
	Options       []string         `json:"options,omitempty"`
	Difficulty    difficulty.Level `json:"difficulty,omitempty"`
}

// Request is a learner's hint request.
type Request struct {
	Question Question
	Attempts int
	Elapsed  time.Duration

	// Level is the requested hint level. Zero means the next level from the
	// generator's ladder.
	Level int
}

// Hint is a generated hint.
type Hint struct {
	Content    string   `json:"content"`
	Level      int      `json:"level"`
	Confidence float64  `json:"confidence"`
	FollowUp   string   `json:"followUp,omitempty"`
	Strategy   Strategy `json:"strategy"`
}

// ErrInsufficientData is returned when a strategy lacks the question data
// it needs.
var ErrInsufficientData = errors.New("insufficient question data for hint")

// Config controls hint selection and generation.
type Config struct {
	Enabled bool `yaml:"enabled"`

	// DirectAfterAttempts forces the direct strategy once attempts exceed it.
	DirectAfterAttempts int `yaml:"direct_after_attempts" validate:"gte=0"`

	// SocraticAfter forces the socratic strategy once elapsed time exceeds it.
	SocraticAfter time.Duration `yaml:"socratic_after" validate:"gte=0"`

	// MaxLevel is the most specific level generators produce.
	MaxLevel int `yaml:"max_level" validate:"gte=1,lte=4"`
}

// DefaultConfig returns the standard hint configuration.
func DefaultConfig() Config {
	return Config{
		Enabled:             true,
		DirectAfterAttempts: 2,
		SocraticAfter:       30 * time.Second,
		MaxLevel:            4,
	}
}
