package recommend

import (
	"context"
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/abhisek/quizmind/internal/stats"
)

// TrendBoost multiplies the collaborative score of items that are also
// trending.
const TrendBoost = 1.1

// contentBased blends topic similarity, format match, style match and
// difficulty closeness.
func contentBased(items []Content, req Request, weight float64) []Candidate {
	var out []Candidate
	for _, c := range items {
		f := map[string]float64{
			"topicSimilarity":     jaccard(c.Topics(), req.Interests),
			"formatMatch":         boolScore(c.Format != "" && containsFold(req.PreferredFormats, c.Format)),
			"styleMatch":          boolScore(req.Style != "" && c.Style == req.Style),
			"difficultyCloseness": math.Max(0, 1-2*math.Abs(c.Difficulty-req.TargetDifficulty)),
		}
		raw := 0.4*f["topicSimilarity"] + 0.3*f["formatMatch"] + 0.2*f["styleMatch"] + 0.1*f["difficultyCloseness"]
		if raw <= 0 {
			continue
		}
		out = append(out, Candidate{
			ContentID: c.ID,
			Score:     raw * weight,
			Strategy:  StrategyContent,
			Factors:   f,
			Reasoning: fmt.Sprintf("Matches your interest in %s", c.Topic),
		})
	}
	return out
}

// collaborative scores what similar learners succeeded with, boosted by
// trending content. Trend-only items are seeded at half weight.
func collaborative(ctx context.Context, peers Peers, trending Trending, req Request, cfg Config) ([]Candidate, error) {
	weight := cfg.Weights.Collaborative
	similar, err := peers.FindSimilarUsers(ctx, req.UserID, cfg.SimilarUsers)
	if err != nil {
		return nil, fmt.Errorf("find similar users: %w", err)
	}
	var successes map[string]float64
	if len(similar) > 0 {
		successes, err = peers.Successes(ctx, similar)
		if err != nil {
			return nil, fmt.Errorf("peer successes: %w", err)
		}
	}
	trend, err := trending.Trending(ctx, req.Subject, cfg.TrendWindow)
	if err != nil {
		return nil, fmt.Errorf("trending content: %w", err)
	}

	index := make(map[string]int)
	var out []Candidate
	ids := make([]string, 0, len(successes))
	for id := range successes {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	for _, id := range ids {
		rate := stats.Clamp01(successes[id])
		if rate <= 0 {
			continue
		}
		index[id] = len(out)
		out = append(out, Candidate{
			ContentID: id,
			Score:     rate * weight,
			Strategy:  StrategyCollaborative,
			Factors:   map[string]float64{"peerSuccess": rate},
			Reasoning: "Learners like you did well with this",
		})
	}
	for _, t := range trend {
		pop := stats.Clamp01(t.Score)
		if i, ok := index[t.ContentID]; ok {
			out[i].Score *= TrendBoost
			out[i].Factors["trending"] = pop
			continue
		}
		if pop <= 0 {
			continue
		}
		index[t.ContentID] = len(out)
		out = append(out, Candidate{
			ContentID: t.ContentID,
			Score:     pop * weight * 0.5,
			Strategy:  StrategyCollaborative,
			Factors:   map[string]float64{"trending": pop},
			Reasoning: "Popular with other learners right now",
		})
	}
	return out, nil
}

// knowledgeBased scores remediation content for gaps and, separately,
// content for the next concepts in the learning path. An item matching
// several gaps or concepts yields one candidate per match; Aggregate sums
// them.
func knowledgeBased(items []Content, req Request, weight float64) []Candidate {
	var out []Candidate

	for _, gap := range req.Gaps {
		target := stats.Clamp01(gap.Mastery + 0.1)
		for _, c := range items {
			if !coversTopic(c, gap.Topic) {
				continue
			}
			f := map[string]float64{
				"readiness":    stats.Clamp01(gap.Readiness),
				"importance":   stats.Clamp01(gap.Importance),
				"pedagogical":  pedagogical(c, target),
				"masteryLevel": gap.Mastery,
			}
			raw := 0.4*f["readiness"] + 0.4*f["importance"] + 0.2*f["pedagogical"]
			out = append(out, Candidate{
				ContentID: c.ID,
				Score:     raw * weight,
				Strategy:  StrategyKnowledge,
				Factors:   f,
				Reasoning: fmt.Sprintf("Strengthens %s, where your mastery is %d%%", gap.Topic, int(math.Round(gap.Mastery*100))),
			})
		}
	}

	for _, next := range req.NextConcepts {
		for _, c := range items {
			if !coversTopic(c, next.Topic) {
				continue
			}
			f := map[string]float64{
				"readiness":   1,
				"importance":  stats.Clamp01(next.Importance),
				"pedagogical": pedagogical(c, req.TargetDifficulty),
			}
			raw := 0.4*f["readiness"] + 0.4*f["importance"] + 0.2*f["pedagogical"]
			out = append(out, Candidate{
				ContentID: c.ID,
				Score:     raw * weight,
				Strategy:  StrategyKnowledge,
				Factors:   f,
				Reasoning: fmt.Sprintf("Next step in your learning path: %s", next.Topic),
			})
		}
	}

	return out
}

// pedagogical rates how close an item's difficulty is to the level the
// learner should practice at next.
func pedagogical(c Content, target float64) float64 {
	return math.Max(0, 1-2*math.Abs(c.Difficulty-target))
}

var energyRank = map[string]int{"low": 1, "medium": 2, "high": 3}

// contextual adds up situational matches. Unknown situation fields
// contribute nothing.
func contextual(items []Content, req Request, weight float64) []Candidate {
	s := req.Situation
	var out []Candidate
	for _, c := range items {
		f := make(map[string]float64)
		if s.AvailableTime > 0 && c.Minutes > 0 && c.Duration() <= s.AvailableTime {
			f["timeFit"] = 0.3
		}
		if s.Device != "" && (len(c.Devices) == 0 || containsFold(c.Devices, s.Device)) {
			f["deviceFit"] = 0.2
		}
		if e, ok := energyRank[strings.ToLower(s.Energy)]; ok {
			need, known := energyRank[strings.ToLower(c.Intensity)]
			if !known || need <= e {
				f["energyFit"] = 0.3
			}
		}
		if s.Location != "" && (len(c.Locations) == 0 || containsFold(c.Locations, s.Location)) {
			f["locationFit"] = 0.2
		}
		raw := f["timeFit"] + f["deviceFit"] + f["energyFit"] + f["locationFit"]
		if raw <= 0 {
			continue
		}
		out = append(out, Candidate{
			ContentID: c.ID,
			Score:     raw * weight,
			Strategy:  StrategyContextual,
			Factors:   f,
			Reasoning: "Fits your current situation",
		})
	}
	return out
}

// serendipity surfaces unseen content outside the learner's interests.
func serendipity(items []Content, req Request, weight float64) []Candidate {
	var out []Candidate
	for _, c := range items {
		if req.Seen[c.ID] || jaccard(c.Topics(), req.Interests) > 0 {
			continue
		}
		f := map[string]float64{
			"novelty":       1,
			"quality":       stats.Clamp01(c.Quality),
			"accessibility": stats.Clamp01(c.Accessibility),
		}
		raw := 0.5*f["novelty"] + 0.3*f["quality"] + 0.2*f["accessibility"]
		out = append(out, Candidate{
			ContentID: c.ID,
			Score:     raw * weight,
			Strategy:  StrategySerendipity,
			Factors:   f,
			Reasoning: fmt.Sprintf("Something new to explore: %s", c.Topic),
		})
	}
	return out
}

// jaccard is |a ∩ b| / |a ∪ b| over case-folded sets. Two empty sets score 0.
func jaccard(a, b []string) float64 {
	setA := foldSet(a)
	setB := foldSet(b)
	union := len(setA)
	inter := 0
	for k := range setB {
		if setA[k] {
			inter++
		} else {
			union++
		}
	}
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}

func foldSet(xs []string) map[string]bool {
	out := make(map[string]bool, len(xs))
	for _, x := range xs {
		if x = strings.ToLower(strings.TrimSpace(x)); x != "" {
			out[x] = true
		}
	}
	return out
}

func containsFold(xs []string, v string) bool {
	for _, x := range xs {
		if strings.EqualFold(x, v) {
			return true
		}
	}
	return false
}

func coversTopic(c Content, topic string) bool {
	return containsFold(c.Topics(), topic)
}

func boolScore(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
