package hints

import "github.com/abhisek/quizmind/internal/profile"

// Select picks the hint strategy for a request. Rules are checked in
// priority order and the first match wins: repeated failed attempts force
// the direct strategy, a long time on the question forces the socratic
// strategy, and otherwise the learner's preference is used.
func Select(cfg Config, req Request, preference profile.HintStyle) Strategy {
	if req.Attempts > cfg.DirectAfterAttempts {
		return StrategyDirect
	}
	if req.Elapsed > cfg.SocraticAfter {
		return StrategySocratic
	}
	switch profile.ParseHintStyle(string(preference)) {
	case profile.HintDirect:
		return StrategyDirect
	case profile.HintSocratic:
		return StrategySocratic
	case profile.HintContextual:
		return StrategyContextual
	default:
		return StrategyProgressive
	}
}
