package hints

import (
	"fmt"
	"strings"

	"github.com/abhisek/quizmind/internal/profile"
)

// Progressive hint levels, from least to most specific.
const (
	LevelSubtle   = 1
	LevelModerate = 2
	LevelSpecific = 3
	LevelAnswer   = 4
)

var progressiveConfidence = map[int]float64{
	LevelSubtle:   0.6,
	LevelModerate: 0.75,
	LevelSpecific: 0.85,
	LevelAnswer:   0.95,
}

// Generator produces hints for questions.
type Generator struct {
	cfg    Config
	ladder *Ladder
}

// NewGenerator creates a generator with its own hint ladder.
func NewGenerator(cfg Config) *Generator {
	if cfg.MaxLevel <= 0 {
		cfg.MaxLevel = DefaultConfig().MaxLevel
	}
	return &Generator{cfg: cfg, ladder: NewLadder()}
}

// Ladder returns the generator's hint ladder.
func (g *Generator) Ladder() *Ladder { return g.ladder }

// Generate selects a strategy and produces a hint. When hints are
// disabled it always returns the basic hint.
func (g *Generator) Generate(req Request, preference profile.HintStyle) (Hint, error) {
	if !g.cfg.Enabled {
		return Basic(), nil
	}
	level := req.Level
	if level <= 0 {
		level = g.ladder.Next(req.Question.ID)
	}
	return g.Run(Select(g.cfg, req, preference), req.Question, level)
}

// Run produces a hint with a specific strategy. Levels above the
// configured maximum produce the most specific content but keep the
// requested level number.
func (g *Generator) Run(s Strategy, q Question, level int) (Hint, error) {
	if level < 1 {
		level = 1
	}
	content := min(level, g.cfg.MaxLevel)

	var (
		h   Hint
		err error
	)
	switch s {
	case StrategyProgressive:
		h = progressive(q, content)
	case StrategySocratic:
		h = socratic(q, content)
	case StrategyDirect:
		h, err = direct(q)
	case StrategyContextual:
		h = contextual(q)
	case StrategyBasic:
		return Basic(), nil
	case StrategyFallback:
		return Fallback(), nil
	default:
		return Hint{}, fmt.Errorf("unknown hint strategy %q", s)
	}
	if err != nil {
		return Hint{}, fmt.Errorf("generate %s hint: %w", s, err)
	}
	h.Level = level
	h.Strategy = s
	return h, nil
}

// Basic is the single fixed hint used when hints are disabled.
func Basic() Hint {
	return Hint{
		Content:    "Read the question carefully and eliminate options you know are wrong.",
		Level:      1,
		Confidence: 0.5,
		Strategy:   StrategyBasic,
	}
}

// Fallback is the hint substituted when generation fails.
func Fallback() Hint {
	return Hint{
		Content:    "Take another look at the question and think about what it is really asking.",
		Level:      1,
		Confidence: 0.5,
		FollowUp:   "Which part of the question are you unsure about?",
		Strategy:   StrategyFallback,
	}
}

func topicOf(q Question) string {
	if q.Topic != "" {
		return q.Topic
	}
	return "this topic"
}

func progressive(q Question, level int) Hint {
	h := Hint{Confidence: progressiveConfidence[min(level, LevelAnswer)]}
	switch level {
	case LevelSubtle:
		h.Content = fmt.Sprintf("Think about what you already know about %s.", topicOf(q))
		h.FollowUp = "What is the question really asking?"
	case LevelModerate:
		h.Content = fmt.Sprintf("Focus on the key idea behind %s and rule out answers that contradict it.", topicOf(q))
		h.FollowUp = "Which options can you eliminate?"
	case LevelSpecific:
		h.Content = specific(q)
		h.FollowUp = "Does that point you toward one answer?"
	default:
		if q.CorrectAnswer != "" {
			h.Content = fmt.Sprintf("The answer is %s.", q.CorrectAnswer)
			if q.Explanation != "" {
				h.Content += " " + q.Explanation
			}
		} else {
			h.Content = specific(q)
		}
		h.FollowUp = "Can you explain why this is correct?"
	}
	return h
}

// specific prefers the author's hint, then one derived from the
// explanation, then a generic topic hint.
func specific(q Question) string {
	if s := strings.TrimSpace(q.Hint); s != "" {
		return s
	}
	if s := firstSentence(q.Explanation); s != "" {
		return "Consider this: " + s
	}
	return fmt.Sprintf("Review the core rules of %s and apply them step by step.", topicOf(q))
}

func firstSentence(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexAny(s, ".!?"); i >= 0 {
		return s[:i+1]
	}
	return s
}

var socraticPrompts = []string{
	"What do you already know that could help here?",
	"What would have to be true for each option to be correct?",
	"How would you check your answer if you had one?",
	"If you explained this to a friend, where would you start?",
}

func socratic(q Question, level int) Hint {
	content := socraticPrompts[min(level, len(socraticPrompts))-1]
	if level == LevelSpecific && q.Topic != "" {
		content = fmt.Sprintf("Which rule of %s applies here, and why?", q.Topic)
	}
	return Hint{
		Content:    content,
		Confidence: 0.7,
		FollowUp:   "Take a moment to reason it through before answering.",
	}
}

// direct reveals the answer or explanation. Without either it states the
// most specific guidance available at lower confidence; a question with
// no text, topic or author hint has nothing to state.
func direct(q Question) (Hint, error) {
	answer := strings.TrimSpace(q.CorrectAnswer)
	explanation := strings.TrimSpace(q.Explanation)
	var content string
	switch {
	case answer != "" && explanation != "":
		content = fmt.Sprintf("The correct answer is %s. %s", answer, explanation)
	case answer != "":
		content = fmt.Sprintf("The correct answer is %s.", answer)
	case explanation != "":
		content = explanation
	default:
		if strings.TrimSpace(q.Text) == "" && q.Topic == "" && strings.TrimSpace(q.Hint) == "" {
			return Hint{}, ErrInsufficientData
		}
		return Hint{
			Content:    specific(q),
			Confidence: 0.6,
			FollowUp:   "Apply this directly to the question and check your answer against it.",
		}, nil
	}
	return Hint{
		Content:    content,
		Confidence: 0.9,
		FollowUp:   "Try a similar question to lock this in.",
	}, nil
}

var typeTips = map[ExerciseType]string{
	TypeMultipleChoice:       "Eliminate the options you are sure are wrong, then compare the rest.",
	TypeTrueFalse:            "Look for absolute words like always or never; they often make a statement false.",
	TypeFillInTheBlanks:      "Read the whole sentence first; the words around the blank limit what fits.",
	TypeDragAndDrop:          "Place the items you are most confident about first to narrow the rest.",
	TypeSequencing:           "Find the first and last steps, then fill in the middle.",
	TypeMatching:             "Match the pairs you are certain of first and work through what remains.",
	TypeShortAnswer:          "Answer in your own words, then check you covered the key term.",
	TypeCategorization:       "Name what each category has in common before sorting the items.",
	TypeHotspot:              "Scan the whole image and look for the part the question names.",
	TypeSlider:               "Estimate a rough range first, then adjust toward the exact value.",
	TypeWordBank:             "Cross off words as you use them; grammar often rules some out.",
	TypeReadingComprehension: "Reread the passage around the key words from the question.",
}

func contextual(q Question) Hint {
	tip, ok := typeTips[q.Type]
	if !ok {
		tip = "Break the question into smaller parts and tackle them one at a time."
	}
	if q.Topic != "" {
		tip = fmt.Sprintf("%s Keep the basics of %s in mind.", tip, q.Topic)
	}
	return Hint{
		Content:    tip,
		Confidence: 0.8,
		FollowUp:   "Does approaching it this way make it clearer?",
	}
}
