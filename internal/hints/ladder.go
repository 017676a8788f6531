package hints

import "sync"

// Ladder tracks how many hints have been requested per question. It is
// safe for concurrent use.
type Ladder struct {
	mu     sync.Mutex
	levels map[string]int
}

// NewLadder returns an empty ladder.
func NewLadder() *Ladder {
	return &Ladder{levels: make(map[string]int)}
}

// Next returns the level for the next hint on a question: 1 on the first
// request, then one higher on each further request.
func (l *Ladder) Next(questionID string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.levels[questionID]++
	return l.levels[questionID]
}

// Current returns the last level handed out for a question, or 0.
func (l *Ladder) Current(questionID string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.levels[questionID]
}

// Reset forgets a question, typically once it has been answered.
func (l *Ladder) Reset(questionID string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.levels, questionID)
}

// ResetAll forgets every question.
func (l *Ladder) ResetAll() {
	l.mu.Lock()
	defer l.mu.Unlock()
	clear(l.levels)
}
