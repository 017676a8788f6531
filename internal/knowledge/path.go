package knowledge

import (
	"errors"
	"fmt"
	"sort"
)

// ErrCycle is returned when prerequisites form a cycle.
var ErrCycle = errors.New("learning path contains a cycle")

// Topic is a node in the learning path.
type Topic struct {
	ID            string   `json:"id" yaml:"id"`
	Prerequisites []string `json:"prerequisites,omitempty" yaml:"prerequisites,omitempty"`
}

// Path is a prerequisite DAG over topics with a precomputed topological
// order.
type Path struct {
	topics     map[string]Topic
	dependents map[string][]string
	order      []string
	index      map[string]int
}

// NewPath builds a learning path. Unknown prerequisites and cycles are
// errors.
func NewPath(topics []Topic) (*Path, error) {
	p := &Path{
		topics:     make(map[string]Topic, len(topics)),
		dependents: make(map[string][]string),
		index:      make(map[string]int, len(topics)),
	}
	for _, t := range topics {
		if t.ID == "" {
			return nil, fmt.Errorf("topic with empty id")
		}
		if _, dup := p.topics[t.ID]; dup {
			return nil, fmt.Errorf("duplicate topic %q", t.ID)
		}
		p.topics[t.ID] = t
	}
	for _, t := range topics {
		for _, pre := range t.Prerequisites {
			if _, ok := p.topics[pre]; !ok {
				return nil, fmt.Errorf("topic %q: unknown prerequisite %q", t.ID, pre)
			}
			p.dependents[pre] = append(p.dependents[pre], t.ID)
		}
	}

	// Kahn's algorithm with sorted queues for deterministic order.
	inDegree := make(map[string]int, len(topics))
	for _, t := range topics {
		inDegree[t.ID] = len(t.Prerequisites)
	}
	var queue []string
	for id, deg := range inDegree {
		if deg == 0 {
			queue = append(queue, id)
		}
	}
	sort.Strings(queue)

	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		p.index[id] = len(p.order)
		p.order = append(p.order, id)

		deps := append([]string(nil), p.dependents[id]...)
		sort.Strings(deps)
		for _, dep := range deps {
			inDegree[dep]--
			if inDegree[dep] == 0 {
				queue = append(queue, dep)
			}
		}
	}
	if len(p.order) != len(topics) {
		return nil, ErrCycle
	}
	return p, nil
}

// Order returns topic ids in topological order.
func (p *Path) Order() []string {
	out := make([]string, len(p.order))
	copy(out, p.order)
	return out
}

// Has reports whether id is part of the path.
func (p *Path) Has(id string) bool {
	_, ok := p.topics[id]
	return ok
}

// Prerequisites returns the direct prerequisites of a topic.
func (p *Path) Prerequisites(id string) []string {
	return append([]string(nil), p.topics[id].Prerequisites...)
}

// Ready reports whether every prerequisite of id is mastered.
func (p *Path) Ready(id string, mastered func(string) bool) bool {
	for _, pre := range p.topics[id].Prerequisites {
		if !mastered(pre) {
			return false
		}
	}
	return true
}

// Readiness is the fraction of a topic's prerequisites that are mastered.
// Topics without prerequisites are fully ready.
func (p *Path) Readiness(id string, mastered func(string) bool) float64 {
	pres := p.topics[id].Prerequisites
	if len(pres) == 0 {
		return 1
	}
	n := 0
	for _, pre := range pres {
		if mastered(pre) {
			n++
		}
	}
	return float64(n) / float64(len(pres))
}

// Importance scores a topic by how much of the path depends on it,
// normalized to [0, 1]. Leaf topics score 0.
func (p *Path) Importance(id string) float64 {
	if len(p.topics) <= 1 {
		return 0
	}
	seen := make(map[string]bool)
	stack := append([]string(nil), p.dependents[id]...)
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if seen[n] {
			continue
		}
		seen[n] = true
		stack = append(stack, p.dependents[n]...)
	}
	return float64(len(seen)) / float64(len(p.topics)-1)
}

// Next returns up to limit unmastered topics whose prerequisites are all
// mastered, in topological order. A non-positive limit means no cap.
func (p *Path) Next(mastered func(string) bool, limit int) []string {
	var out []string
	for _, id := range p.order {
		if mastered(id) || !p.Ready(id, mastered) {
			continue
		}
		out = append(out, id)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}

// MasteredBy returns a predicate that treats topics at or above the
// tracker's strong threshold as mastered.
func (t *Tracker) MasteredBy() func(string) bool {
	return func(topic string) bool {
		lvl, ok := t.Mastery(topic)
		return ok && lvl >= t.cfg.StrongThreshold
	}
}
