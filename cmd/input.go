package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/abhisek/quizmind/internal/difficulty"
	"github.com/abhisek/quizmind/internal/hints"
	"github.com/abhisek/quizmind/internal/knowledge"
	"github.com/abhisek/quizmind/internal/performance"
	"github.com/abhisek/quizmind/internal/validate"
)

var attemptsSchema = &validate.Schema{
	Name: "attempts-v1",
	Definition: map[string]any{
		"type":     "array",
		"minItems": 1,
		"items": map[string]any{
			"type":     "object",
			"required": []any{"isCorrect", "timeToAnswer"},
			"properties": map[string]any{
				"questionId":   map[string]any{"type": "string"},
				"isCorrect":    map[string]any{"type": "boolean"},
				"timeToAnswer": map[string]any{"type": "number", "minimum": 0},
				"topic":        map[string]any{"type": "string"},
				"difficulty":   map[string]any{"type": "string"},
			},
		},
	},
}

var questionSchema = &validate.Schema{
	Name: "question-v1",
	Definition: map[string]any{
		"type":     "object",
		"required": []any{"id"},
		"properties": map[string]any{
			"id":            map[string]any{"type": "string", "minLength": 1},
			"text":          map[string]any{"type": "string"},
			"topic":         map[string]any{"type": "string"},
			"type":          map[string]any{"type": "string"},
			"hint":          map[string]any{"type": "string"},
			"explanation":   map[string]any{"type": "string"},
			"correctAnswer": map[string]any{"type": "string"},
			"options":       map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
			"difficulty":    map[string]any{"type": "string"},
		},
	},
}

var pathSchema = &validate.Schema{
	Name: "path-v1",
	Definition: map[string]any{
		"type": "array",
		"items": map[string]any{
			"type":     "object",
			"required": []any{"id"},
			"properties": map[string]any{
				"id":            map[string]any{"type": "string", "minLength": 1},
				"prerequisites": map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
			},
		},
	},
}

// attemptInput is the file form of an attempt. Times are milliseconds.
type attemptInput struct {
	QuestionID   string           `json:"questionId"`
	IsCorrect    bool             `json:"isCorrect"`
	TimeToAnswer float64          `json:"timeToAnswer"`
	Topic        string           `json:"topic"`
	Difficulty   difficulty.Level `json:"difficulty"`
}

func readFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}

func decodeAttempts(data []byte) ([]performance.AttemptRecord, error) {
	if err := validate.Document(attemptsSchema, data); err != nil {
		return nil, err
	}
	var in []attemptInput
	if err := json.Unmarshal(data, &in); err != nil {
		return nil, fmt.Errorf("decode attempts: %w", err)
	}
	out := make([]performance.AttemptRecord, len(in))
	for i, a := range in {
		out[i] = performance.AttemptRecord{
			QuestionID:   a.QuestionID,
			IsCorrect:    a.IsCorrect,
			TimeToAnswer: time.Duration(a.TimeToAnswer * float64(time.Millisecond)),
			Topic:        a.Topic,
			Difficulty:   a.Difficulty,
		}
	}
	return out, nil
}

func decodeQuestion(data []byte) (hints.Question, error) {
	var q hints.Question
	if err := validate.Document(questionSchema, data); err != nil {
		return q, err
	}
	if err := json.Unmarshal(data, &q); err != nil {
		return q, fmt.Errorf("decode question: %w", err)
	}
	return q, nil
}

func decodePath(data []byte) (*knowledge.Path, error) {
	if err := validate.Document(pathSchema, data); err != nil {
		return nil, err
	}
	var topics []knowledge.Topic
	if err := json.Unmarshal(data, &topics); err != nil {
		return nil, fmt.Errorf("decode path: %w", err)
	}
	return knowledge.NewPath(topics)
}

// parseDifficulty accepts a level name or a number in [0, 1].
func parseDifficulty(s string) (difficulty.Difficulty, error) {
	s = strings.TrimSpace(s)
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		if v < 0 || v > 1 {
			return difficulty.Difficulty{}, fmt.Errorf("difficulty %v out of range [0, 1]", v)
		}
		return difficulty.Numeric(v), nil
	}
	level := difficulty.Level(strings.ToLower(s))
	if !difficulty.Known(level) {
		return difficulty.Difficulty{}, fmt.Errorf("unknown difficulty %q", s)
	}
	return difficulty.Named(level), nil
}

// parseProps turns k=v pairs into event properties. Values that parse as
// numbers or booleans keep that type.
func parseProps(pairs []string) (map[string]any, error) {
	props := make(map[string]any, len(pairs))
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid property %q, want key=value", p)
		}
		if n, err := strconv.ParseFloat(v, 64); err == nil {
			props[k] = n
		} else if b, err := strconv.ParseBool(v); err == nil {
			props[k] = b
		} else {
			props[k] = v
		}
	}
	return props, nil
}
