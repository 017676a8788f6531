package recommend

import (
	"context"
	"fmt"
	"math"
	"sort"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/abhisek/quizmind/internal/difficulty"
	"github.com/abhisek/quizmind/internal/logger"
)

// Ranker combines strategy candidates into a ranked list.
type Ranker struct {
	cfg      Config
	catalog  Catalog
	peers    Peers
	trending Trending
	rules    []Rule
	log      *zap.Logger
}

// NewRanker creates a ranker. Nil peers or trending collaborators are
// replaced with empty ones.
func NewRanker(cfg Config, catalog Catalog, peers Peers, trending Trending, log *zap.Logger) *Ranker {
	if peers == nil {
		peers = NoPeers{}
	}
	if trending == nil {
		trending = NoTrending{}
	}
	if cfg.Limit <= 0 {
		cfg.Limit = DefaultConfig().Limit
	}
	return &Ranker{
		cfg:      cfg,
		catalog:  catalog,
		peers:    peers,
		trending: trending,
		rules:    DefaultRules(cfg.QualityThreshold),
		log:      logger.OrNop(log),
	}
}

// Rank runs every strategy, aggregates, filters, diversifies and truncates.
// A failing strategy is logged and contributes nothing; only context
// cancellation is returned as an error.
func (r *Ranker) Rank(ctx context.Context, req Request) (Result, error) {
	items, err := r.catalog.List(ctx)
	if err != nil {
		r.log.Warn("catalog list failed", zap.Error(err))
		items = nil
	}

	results := make([][]Candidate, len(Strategies))
	g, gctx := errgroup.WithContext(ctx)
	for i, kind := range Strategies {
		g.Go(func() error {
			cands, err := r.runStrategy(gctx, kind, items, req)
			if err != nil {
				if ctxErr := gctx.Err(); ctxErr != nil {
					return ctxErr
				}
				r.log.Warn("recommendation strategy failed",
					zap.String("strategy", string(kind)), zap.Error(err))
				return nil
			}
			results[i] = cands
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Result{}, fmt.Errorf("rank content: %w", err)
	}

	aggregated := Aggregate(results...)
	filtered := r.filter(ctx, aggregated, req)
	diverse := diversify(filtered, r.cfg.Caps)
	return r.finalize(diverse, req.Limit), nil
}

func (r *Ranker) runStrategy(ctx context.Context, kind StrategyKind, items []Content, req Request) ([]Candidate, error) {
	w := r.cfg.Weights
	switch kind {
	case StrategyContent:
		return contentBased(items, req, w.Content), nil
	case StrategyCollaborative:
		return collaborative(ctx, r.peers, r.trending, req, r.cfg)
	case StrategyKnowledge:
		return knowledgeBased(items, req, w.Knowledge), nil
	case StrategyContextual:
		return contextual(items, req, w.Contextual), nil
	case StrategySerendipity:
		return serendipity(items, req, w.Serendipity), nil
	default:
		return nil, fmt.Errorf("unknown strategy %q", kind)
	}
}

// Aggregate sums candidate scores per content id. Candidates are summed in
// a fixed strategy order, so the totals do not depend on the order of the
// input lists. The result is sorted by total score, highest first.
func Aggregate(lists ...[]Candidate) []Aggregated {
	var all []Candidate
	for _, l := range lists {
		all = append(all, l...)
	}
	sort.SliceStable(all, func(i, j int) bool {
		ri, rj := rank(all[i].Strategy), rank(all[j].Strategy)
		if ri != rj {
			return ri < rj
		}
		return all[i].ContentID < all[j].ContentID
	})

	byID := make(map[string]*Aggregated)
	var order []string
	for _, c := range all {
		a, ok := byID[c.ContentID]
		if !ok {
			a = &Aggregated{
				ContentID: c.ContentID,
				Factors:   make(map[StrategyKind]map[string]float64),
			}
			byID[c.ContentID] = a
			order = append(order, c.ContentID)
		}
		a.TotalScore += c.Score
		if _, seen := a.Factors[c.Strategy]; !seen {
			a.Strategies = append(a.Strategies, c.Strategy)
		}
		a.Factors[c.Strategy] = c.Factors
		if c.Reasoning != "" {
			a.Reasoning = append(a.Reasoning, c.Reasoning)
		}
	}

	out := make([]Aggregated, 0, len(order))
	for _, id := range order {
		out = append(out, *byID[id])
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].TotalScore != out[j].TotalScore {
			return out[i].TotalScore > out[j].TotalScore
		}
		return out[i].ContentID < out[j].ContentID
	})
	return out
}

type scored struct {
	content Content
	agg     Aggregated
}

func (r *Ranker) filter(ctx context.Context, aggs []Aggregated, req Request) []scored {
	out := make([]scored, 0, len(aggs))
	for _, a := range aggs {
		c, err := r.catalog.Content(ctx, a.ContentID)
		if err != nil {
			r.log.Warn("content lookup failed", zap.String("content", a.ContentID), zap.Error(err))
			continue
		}
		if ok, rule := passes(r.rules, c, req); !ok {
			r.log.Debug("content filtered", zap.String("content", a.ContentID), zap.String("rule", rule))
			continue
		}
		out = append(out, scored{content: c, agg: a})
	}
	return out
}

// diversify scans items in order and admits each one only while its
// topic, format and difficulty bucket are all under their caps. Rejected
// items are dropped.
func diversify(items []scored, caps Caps) []scored {
	topics := make(map[string]int)
	formats := make(map[string]int)
	buckets := make(map[difficulty.Level]int)

	var out []scored
	for _, it := range items {
		topic := it.content.Topic
		format := it.content.Format
		bucket := difficulty.Bucket(it.content.Difficulty)
		if topics[topic] >= caps.PerTopic ||
			formats[format] >= caps.PerFormat ||
			buckets[bucket] >= caps.PerDifficulty {
			continue
		}
		topics[topic]++
		formats[format]++
		buckets[bucket]++
		out = append(out, it)
	}
	return out
}

// Confidence grows with the number of strategies that agree on an item.
func Confidence(strategies int) float64 {
	return math.Min(1, 0.6+0.1*float64(strategies))
}

func (r *Ranker) finalize(items []scored, limit int) Result {
	if limit <= 0 {
		limit = r.cfg.Limit
	}
	ranked := make([]Item, 0, len(items))
	for _, it := range items {
		conf := Confidence(len(it.agg.Strategies))
		ranked = append(ranked, Item{
			Content:    it.content,
			Aggregated: it.agg,
			FinalScore: it.agg.TotalScore * conf,
			Confidence: conf,
		})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].FinalScore > ranked[j].FinalScore
	})
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}

	res := Result{Items: ranked}
	seen := make(map[string]bool)
	for _, it := range ranked {
		for _, reason := range it.Aggregated.Reasoning {
			if len(res.Reasoning) == r.cfg.ReasoningCount {
				break
			}
			if !seen[reason] {
				seen[reason] = true
				res.Reasoning = append(res.Reasoning, reason)
			}
		}
	}
	if len(ranked) > 0 {
		var sum float64
		for _, it := range ranked {
			sum += it.Confidence
		}
		res.Confidence = sum / float64(len(ranked))
	}
	return res
}
