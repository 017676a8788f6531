package difficulty

import "math"

// Config controls difficulty adaptation.
type Config struct {
	// Enabled turns adaptation on. When off, Adapt passes the current
	// difficulty through unchanged.
	Enabled bool `yaml:"enabled"`

	// AdaptationThreshold is the performance score above which difficulty
	// goes up. Below 1-AdaptationThreshold it goes down.
	AdaptationThreshold float64 `yaml:"adaptation_threshold" validate:"gt=0.5,lt=1"`

	// Step is the numeric change applied per adaptation.
	Step float64 `yaml:"step" validate:"gt=0,lte=0.5"`

	// Ceiling and Floor bound the numeric difficulty.
	Ceiling float64 `yaml:"ceiling" validate:"gt=0,lte=1"`
	Floor   float64 `yaml:"floor" validate:"gte=0,lt=1"`
}

// DefaultConfig returns the standard adaptation settings.
func DefaultConfig() Config {
	return Config{
		Enabled:             true,
		AdaptationThreshold: 0.7,
		Step:                0.1,
		Ceiling:             1.0,
		Floor:               0.1,
	}
}

// Direction reports which way an adaptation moved difficulty.
type Direction int

const (
	Down Direction = -1
	Hold Direction = 0
	Up   Direction = 1
)

func (d Direction) String() string {
	switch d {
	case Up:
		return "up"
	case Down:
		return "down"
	default:
		return "hold"
	}
}

// Result is the outcome of one adaptation.
type Result struct {
	Level     Level
	Value     float64
	Previous  float64
	Direction Direction
}

// Adapter moves exercise difficulty one step at a time in response to the
// learner's recent performance score.
type Adapter struct {
	cfg Config
}

// NewAdapter creates an adapter. Zero-valued numeric settings fall back to
// the defaults.
func NewAdapter(cfg Config) *Adapter {
	def := DefaultConfig()
	if cfg.AdaptationThreshold == 0 {
		cfg.AdaptationThreshold = def.AdaptationThreshold
	}
	if cfg.Step == 0 {
		cfg.Step = def.Step
	}
	if cfg.Ceiling == 0 {
		cfg.Ceiling = def.Ceiling
	}
	if cfg.Floor == 0 {
		cfg.Floor = def.Floor
	}
	return &Adapter{cfg: cfg}
}

// Adapt returns the next difficulty given the current one and a
// performance score in [0, 1].
func (a *Adapter) Adapt(current Difficulty, performance float64) Result {
	prev := current.Float()
	if !a.cfg.Enabled {
		return Result{
			Level:    current.Level(),
			Value:    prev,
			Previous: prev,
		}
	}

	next := prev
	dir := Hold
	switch {
	case performance > a.cfg.AdaptationThreshold:
		next = prev + a.cfg.Step
		if next > a.cfg.Ceiling {
			next = math.Max(prev, a.cfg.Ceiling)
		}
		dir = Up
	case performance < 1-a.cfg.AdaptationThreshold:
		next = prev - a.cfg.Step
		if next < a.cfg.Floor {
			next = math.Min(prev, a.cfg.Floor)
		}
		dir = Down
	}
	if next == prev {
		dir = Hold
	}

	return Result{
		Level:     Bucket(next),
		Value:     next,
		Previous:  prev,
		Direction: dir,
	}
}
