package difficulty

import "strings"

// Level is a named difficulty. Exercises may carry any of the anchor names;
// adaptation always produces one of the five bucket levels.
type Level string

const (
	Beginner     Level = "beginner"
	Easy         Level = "easy"
	Intermediate Level = "intermediate"
	Medium       Level = "medium"
	Advanced     Level = "advanced"
	Hard         Level = "hard"
	Expert       Level = "expert"
)

// DefaultAnchor is the numeric difficulty for unrecognized level names.
const DefaultAnchor = 0.5

var anchors = map[Level]float64{
	Beginner:     0.2,
	Easy:         0.3,
	Intermediate: 0.5,
	Medium:       0.5,
	Advanced:     0.7,
	Hard:         0.8,
	Expert:       0.9,
}

// Buckets lists the adaptation output levels from easiest to hardest.
var Buckets = []Level{Beginner, Easy, Intermediate, Advanced, Expert}

// Anchor maps a level name to its numeric difficulty. Matching is
// case-insensitive; unknown names map to DefaultAnchor.
func Anchor(name Level) float64 {
	if v, ok := anchors[Level(strings.ToLower(strings.TrimSpace(string(name))))]; ok {
		return v
	}
	return DefaultAnchor
}

// Known reports whether name is one of the anchor names.
func Known(name Level) bool {
	_, ok := anchors[Level(strings.ToLower(strings.TrimSpace(string(name))))]
	return ok
}

// boundaryTolerance absorbs float drift from repeated steps, so 0.5+0.1
// lands in the same bucket as 0.6.
const boundaryTolerance = 1e-9

// Bucket maps a numeric difficulty onto the five bucket levels. Upper
// bounds are inclusive: 0.6 is intermediate, not advanced.
func Bucket(v float64) Level {
	switch {
	case v <= 0.25+boundaryTolerance:
		return Beginner
	case v <= 0.4+boundaryTolerance:
		return Easy
	case v <= 0.6+boundaryTolerance:
		return Intermediate
	case v <= 0.75+boundaryTolerance:
		return Advanced
	default:
		return Expert
	}
}

// Difficulty is an exercise's current difficulty, given either by name or
// as a number in [0, 1].
type Difficulty struct {
	Name    Level
	Value   float64
	numeric bool
}

// Named returns a difficulty given by level name.
func Named(name Level) Difficulty {
	return Difficulty{Name: name}
}

// Numeric returns a difficulty given as a number.
func Numeric(v float64) Difficulty {
	return Difficulty{Value: v, numeric: true}
}

// IsNumeric reports whether the difficulty was given as a number.
func (d Difficulty) IsNumeric() bool { return d.numeric }

// Float returns the numeric difficulty, resolving names through Anchor.
func (d Difficulty) Float() float64 {
	if d.numeric {
		return d.Value
	}
	return Anchor(d.Name)
}

// Level returns the difficulty's level: the given name, or the bucket of
// the numeric value.
func (d Difficulty) Level() Level {
	if d.numeric {
		return Bucket(d.Value)
	}
	return d.Name
}

func (d Difficulty) String() string {
	return string(d.Level())
}
