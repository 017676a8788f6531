package recommend

import "strings"

// Rule is a business rule an item must pass to be recommended.
type Rule interface {
	Name() string
	Allow(c Content, req Request) bool
}

// DefaultRules returns the business rules. An item is excluded if any
// rule rejects it.
func DefaultRules(qualityThreshold float64) []Rule {
	return []Rule{
		availabilityRule{},
		prerequisiteRule{},
		accessRule{},
		qualityRule{min: qualityThreshold},
		appropriatenessRule{},
		subjectRule{},
	}
}

// passes reports whether c passes every rule, and the first rule it fails.
func passes(rules []Rule, c Content, req Request) (bool, string) {
	for _, r := range rules {
		if !r.Allow(c, req) {
			return false, r.Name()
		}
	}
	return true, ""
}

type availabilityRule struct{}

func (availabilityRule) Name() string { return "availability" }

func (availabilityRule) Allow(c Content, _ Request) bool { return c.Available }

type prerequisiteRule struct{}

func (prerequisiteRule) Name() string { return "prerequisites" }

func (prerequisiteRule) Allow(c Content, req Request) bool {
	for _, pre := range c.Prerequisites {
		if req.Mastered == nil || !req.Mastered(pre) {
			return false
		}
	}
	return true
}

type accessRule struct{}

func (accessRule) Name() string { return "access" }

func (accessRule) Allow(c Content, req Request) bool { return !c.Premium || req.Premium }

type qualityRule struct{ min float64 }

func (qualityRule) Name() string { return "quality" }

func (r qualityRule) Allow(c Content, _ Request) bool { return c.Quality >= r.min }

// appropriatenessRule rejects age-restricted content for learners known to
// be too young. Unknown ages pass.
type appropriatenessRule struct{}

func (appropriatenessRule) Name() string { return "appropriateness" }

func (appropriatenessRule) Allow(c Content, req Request) bool {
	return c.MinAge == 0 || req.Age == 0 || req.Age >= c.MinAge
}

// subjectRule restricts results to the requested subject. Items without a
// subject and requests without one pass.
type subjectRule struct{}

func (subjectRule) Name() string { return "subject" }

func (subjectRule) Allow(c Content, req Request) bool {
	return req.Subject == "" || c.Subject == "" || strings.EqualFold(c.Subject, req.Subject)
}
