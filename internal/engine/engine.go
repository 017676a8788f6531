// Package engine is the learner-modelling facade. Construct one Engine at
// startup and pass it to every consumer.
package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/abhisek/quizmind/internal/analytics"
	"github.com/abhisek/quizmind/internal/config"
	"github.com/abhisek/quizmind/internal/difficulty"
	"github.com/abhisek/quizmind/internal/hints"
	"github.com/abhisek/quizmind/internal/knowledge"
	"github.com/abhisek/quizmind/internal/logger"
	"github.com/abhisek/quizmind/internal/metrics"
	"github.com/abhisek/quizmind/internal/ordered"
	"github.com/abhisek/quizmind/internal/performance"
	"github.com/abhisek/quizmind/internal/profile"
	"github.com/abhisek/quizmind/internal/recommend"
	"github.com/abhisek/quizmind/internal/store"
)

// Options configures an Engine. Only Config is consulted when zero; every
// other field is optional.
type Options struct {
	Config *config.Config

	// Store persists the profile, events and identifiers. Nil keeps all
	// state in memory.
	Store *store.Store

	// Path is the topic prerequisite graph used for recommendations.
	Path *knowledge.Path

	Catalog  recommend.Catalog
	Peers    recommend.Peers
	Trending recommend.Trending

	Page    analytics.PageContext
	Metrics *metrics.Metrics
	Logger  *zap.Logger
}

// Engine holds one learner's model. It is safe for concurrent use.
type Engine struct {
	cfg     config.Config
	log     *zap.Logger
	metrics *metrics.Metrics

	snapshots store.SnapshotRepo
	events    store.EventRepo
	kv        store.KVRepo
	st        *store.Store

	scorer    *performance.Scorer
	adapter   *difficulty.Adapter
	hints     *hints.Generator
	ranker    *recommend.Ranker
	path      *knowledge.Path
	analytics *analytics.Tracker
	now       func() time.Time

	mu      sync.Mutex
	profile *profile.Profile
	tracker *knowledge.Tracker
	userID  string

	topicsFlagged bool
}

// TopicWarnThreshold is the tracked-topic count at which the engine logs a
// warning. Topics are never evicted.
const TopicWarnThreshold = 500

// New creates an engine with a fresh profile. Call Load to restore
// persisted state.
func New(opts Options) *Engine {
	cfg := config.Default()
	if opts.Config != nil {
		cfg = opts.Config
	}
	now := time.Now()
	e := &Engine{
		cfg:     *cfg,
		log:     logger.OrNop(opts.Logger),
		metrics: opts.Metrics,
		st:      opts.Store,
		scorer:  performance.NewScorer(cfg.Performance),
		adapter: difficulty.NewAdapter(cfg.Difficulty),
		hints:   hints.NewGenerator(cfg.Hints),
		path:    opts.Path,
		now:     time.Now,
		profile: profile.New(),
		tracker: knowledge.NewTracker(cfg.Knowledge, nil),
		userID:  NewID("user", now),
	}

	var sink analytics.Sink
	if opts.Store != nil {
		e.snapshots = opts.Store.SnapshotRepo()
		e.events = opts.Store.EventRepo()
		e.kv = opts.Store.KVRepo()
		sink = analytics.StoreSink{Repo: e.events}
	}
	if opts.Catalog != nil {
		e.ranker = recommend.NewRanker(cfg.Recommend, opts.Catalog, opts.Peers, opts.Trending, e.log)
	}

	e.analytics = analytics.NewTracker(analytics.Options{
		Config:    cfg.Analytics,
		Sink:      sink,
		Page:      opts.Page,
		SessionID: NewID("session", now),
		UserID:    e.userID,
		Logger:    e.log,
		Hooks: analytics.Hooks{
			Flushed:     e.metrics.Flushed,
			FlushFailed: e.metrics.FlushFailed,
		},
	})
	return e
}

// Load restores the persisted profile and user id. Failures are logged
// and leave the defaults in place.
func (e *Engine) Load(ctx context.Context) {
	if e.kv != nil {
		e.loadUserID(ctx)
	}
	if e.snapshots == nil {
		return
	}

	snap, err := e.snapshots.Latest(ctx)
	if err != nil {
		e.persistFailed("load_profile", err)
		return
	}
	if snap == nil {
		return
	}
	p, err := profile.Decode(snap.Data)
	if err != nil {
		e.log.Warn("stored profile unreadable, starting fresh",
			zap.Int64("snapshot", snap.ID), zap.Error(err))
		return
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.profile = p
	e.tracker = knowledge.NewTracker(e.cfg.Knowledge, seedGraph(p))
}

// seedGraph returns the profile's knowledge graph, adding nodes for topics
// that only have a mastery level.
func seedGraph(p *profile.Profile) *ordered.Map[knowledge.Node] {
	graph := p.Graph.Clone()
	p.Knowledge.Each(func(topic string, lvl float64) bool {
		if _, ok := graph.Get(topic); !ok {
			graph.Set(topic, knowledge.Node{MasteryLevel: lvl})
		}
		return true
	})
	return graph
}

func (e *Engine) loadUserID(ctx context.Context) {
	id, ok, err := e.kv.Get(ctx, store.KeyUserID)
	if err != nil {
		e.persistFailed("load_user", err)
		return
	}
	if ok && id != "" {
		e.mu.Lock()
		e.userID = id
		e.mu.Unlock()
		e.analytics.SetUserID(id)
		return
	}
	if err := e.kv.Set(ctx, store.KeyUserID, e.UserID()); err != nil {
		e.persistFailed("save_user", err)
	}
}

// UserID returns the learner's id.
func (e *Engine) UserID() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.userID
}

// SessionID returns the id minted for this engine's session.
func (e *Engine) SessionID() string { return e.analytics.SessionID() }

// Config returns the engine configuration.
func (e *Engine) Config() config.Config { return e.cfg }

// Analysis is the result of analysing a batch of attempts.
type Analysis struct {
	Score     float64               `json:"score"`
	Breakdown performance.Breakdown `json:"breakdown"`
	Level     difficulty.Level      `json:"level"`
	Mastery   map[string]float64    `json:"mastery,omitempty"`
}

// AnalyzePerformance scores the attempts, folds them into the profile and
// knowledge state, and persists the profile. An empty batch returns the
// neutral analysis without changing any state.
func (e *Engine) AnalyzePerformance(ctx context.Context, attempts []performance.AttemptRecord) Analysis {
	bd := e.scorer.Breakdown(attempts)
	a := Analysis{
		Score:     bd.Total,
		Breakdown: bd,
		Level:     e.scorer.Model().Classify(bd.Total),
	}
	if len(attempts) == 0 {
		return a
	}
	e.metrics.Scored(bd.Total)

	e.mu.Lock()
	e.profile.RecordSession(profile.Session{
		Accuracy:    bd.Accuracy,
		AverageTime: performance.AverageTime(attempts),
		Questions:   len(attempts),
		Score:       bd.Total,
	})
	a.Mastery = make(map[string]float64)
	for _, at := range attempts {
		if at.Topic == "" {
			continue
		}
		indicator := 0.0
		if at.IsCorrect {
			indicator = 1
		}
		a.Mastery[at.Topic] = e.tracker.Update(at.Topic, indicator)
	}
	e.profile.SetKnowledge(e.tracker.Levels(), e.tracker.SnapshotData())
	e.profile.UpdatedAt = e.now()
	blob, err := profile.Encode(e.profile)
	topics := e.tracker.Levels().Len()
	flag := topics >= TopicWarnThreshold && !e.topicsFlagged
	if flag {
		e.topicsFlagged = true
	}
	e.mu.Unlock()

	if flag {
		e.log.Warn("knowledge state has grown large", zap.Int("topics", topics))
	}
	if err != nil {
		e.persistFailed("encode_profile", err)
	} else {
		e.saveProfile(ctx, blob)
	}

	for _, at := range attempts {
		e.analytics.Track(ctx, analytics.EventAnswerSubmitted, map[string]any{
			"questionId":   at.QuestionID,
			"topic":        at.Topic,
			"difficulty":   string(at.Difficulty),
			"isCorrect":    at.IsCorrect,
			"timeToAnswer": at.TimeToAnswer.Milliseconds(),
		})
	}
	e.analytics.Track(ctx, analytics.EventSessionAnalyzed, map[string]any{
		"score":     bd.Total,
		"level":     string(a.Level),
		"questions": len(attempts),
	})
	return a
}

// CalculatePerformanceScore returns the weighted score for the attempts.
func (e *Engine) CalculatePerformanceScore(attempts []performance.AttemptRecord) float64 {
	return e.scorer.Score(attempts)
}

// AdaptDifficulty scores the attempts and moves the difficulty at most one
// step.
func (e *Engine) AdaptDifficulty(ctx context.Context, current difficulty.Difficulty, attempts []performance.AttemptRecord) difficulty.Result {
	res := e.adapter.Adapt(current, e.scorer.Score(attempts))
	e.metrics.Adapted(res.Direction.String())
	if res.Direction != difficulty.Hold {
		e.analytics.Track(ctx, analytics.EventDifficultyChanged, map[string]any{
			"from":      res.Previous,
			"to":        res.Value,
			"level":     string(res.Level),
			"direction": res.Direction.String(),
		})
	}
	return res
}

// GenerateHint produces a hint. Any generator failure, including a panic,
// yields the fallback hint.
func (e *Engine) GenerateHint(ctx context.Context, req hints.Request) (h hints.Hint) {
	e.mu.Lock()
	pref := e.profile.Preferences.HintStyle
	e.mu.Unlock()

	defer func() {
		if r := recover(); r != nil {
			e.log.Error("hint generation panicked",
				zap.String("question", req.Question.ID), zap.Any("panic", r))
			h = hints.Fallback()
		}
		e.metrics.HintGenerated(string(h.Strategy))
		e.analytics.Track(ctx, analytics.EventHintRequested, map[string]any{
			"questionId": req.Question.ID,
			"topic":      req.Question.Topic,
			"strategy":   string(h.Strategy),
			"level":      h.Level,
			"attempts":   req.Attempts,
		})
	}()

	h, err := e.hints.Generate(req, pref)
	if err != nil {
		e.log.Warn("hint generation failed",
			zap.String("question", req.Question.ID), zap.Error(err))
		return hints.Fallback()
	}
	return h
}

// GenerateRecommendations returns practice recommendations for weak topics.
func (e *Engine) GenerateRecommendations() []knowledge.Recommendation {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tracker.Recommend(e.tracker.Levels())
}

// nextConceptLimit caps the next-concept candidates drawn from the path.
const nextConceptLimit = 5

// RecommendContent ranks catalog content for the learner. Unset request
// fields are filled from the learner model: gaps and next concepts from
// the knowledge tracker and learning path, style and target difficulty
// from the profile. Only context cancellation is returned as an error.
func (e *Engine) RecommendContent(ctx context.Context, req recommend.Request) (recommend.Result, error) {
	if e.ranker == nil {
		return recommend.Result{}, nil
	}

	e.mu.Lock()
	if req.UserID == "" {
		req.UserID = e.userID
	}
	if req.Style == "" {
		req.Style = e.profile.LearningStyle
	}
	if req.TargetDifficulty == 0 {
		req.TargetDifficulty = targetDifficulty(e.profile.Preferences.ChallengeLevel)
	}
	mastered := e.tracker.MasteredBy()
	if req.Mastered == nil {
		req.Mastered = mastered
	}
	levels := e.tracker.Levels()
	weak := e.tracker.Weaknesses(levels)
	e.mu.Unlock()

	if req.Gaps == nil {
		for _, w := range weak {
			req.Gaps = append(req.Gaps, e.gap(w, mastered))
		}
	}
	if req.NextConcepts == nil && e.path != nil {
		for _, topic := range e.path.Next(mastered, nextConceptLimit) {
			req.NextConcepts = append(req.NextConcepts, recommend.NextConcept{
				Topic:      topic,
				Importance: e.path.Importance(topic),
			})
		}
	}

	res, err := e.ranker.Rank(ctx, req)
	if err != nil {
		return recommend.Result{}, fmt.Errorf("recommend content: %w", err)
	}
	e.metrics.Recommended(len(res.Items))
	return res, nil
}

// gap describes a weak topic. Without a learning path the topic is taken
// as ready with neutral importance.
func (e *Engine) gap(w knowledge.TopicLevel, mastered func(string) bool) recommend.Gap {
	g := recommend.Gap{Topic: w.Topic, Mastery: w.Level, Readiness: 1, Importance: 0.5}
	if e.path != nil && e.path.Has(w.Topic) {
		g.Readiness = e.path.Readiness(w.Topic, mastered)
		g.Importance = e.path.Importance(w.Topic)
	}
	return g
}

func targetDifficulty(c profile.ChallengeLevel) float64 {
	switch c {
	case profile.ChallengeEasy:
		return difficulty.Anchor(difficulty.Easy)
	case profile.ChallengeChallenging:
		return difficulty.Anchor(difficulty.Advanced)
	default:
		return difficulty.Anchor(difficulty.Intermediate)
	}
}

// UpdatePreferences stores normalized preferences and persists the
// profile. It returns the preferences as stored.
func (e *Engine) UpdatePreferences(ctx context.Context, prefs profile.Preferences) profile.Preferences {
	return e.mutateProfile(ctx, func(p *profile.Profile) {
		p.Preferences = prefs.Normalize()
	}).Preferences
}

// SetLearningStyle stores the learner's style. Unknown styles clear it.
func (e *Engine) SetLearningStyle(ctx context.Context, style string) profile.LearningStyle {
	return e.mutateProfile(ctx, func(p *profile.Profile) {
		p.LearningStyle = profile.ParseLearningStyle(style)
	}).LearningStyle
}

func (e *Engine) mutateProfile(ctx context.Context, fn func(*profile.Profile)) profile.Profile {
	e.mu.Lock()
	fn(e.profile)
	e.profile.UpdatedAt = e.now()
	current := *e.profile
	blob, err := profile.Encode(e.profile)
	e.mu.Unlock()

	if err != nil {
		e.persistFailed("encode_profile", err)
	} else {
		e.saveProfile(ctx, blob)
	}
	return current
}

// Insights summarizes the learner model.
type Insights struct {
	Performance     profile.Performance        `json:"performance"`
	Preferences     profile.Preferences        `json:"preferences"`
	LearningStyle   profile.LearningStyle      `json:"learningStyle,omitempty"`
	Level           difficulty.Level           `json:"level"`
	RecentAverage   float64                    `json:"recentAverage"`
	Trend           float64                    `json:"trend"`
	Strengths       []knowledge.TopicLevel     `json:"strengths"`
	Weaknesses      []knowledge.TopicLevel     `json:"weaknesses"`
	Recommendations []knowledge.Recommendation `json:"recommendations"`
	NextConcepts    []string                   `json:"nextConcepts,omitempty"`
}

// Insights returns a snapshot of the learner model.
func (e *Engine) Insights() Insights {
	e.mu.Lock()
	defer e.mu.Unlock()

	levels := e.tracker.Levels()
	recent := e.profile.RecentScores.Mean()
	in := Insights{
		Performance:     e.profile.Performance,
		Preferences:     e.profile.Preferences,
		LearningStyle:   e.profile.LearningStyle,
		Level:           e.scorer.Model().Classify(recent),
		RecentAverage:   recent,
		Trend:           e.profile.RecentScores.Trend(),
		Strengths:       e.tracker.Strengths(levels),
		Weaknesses:      e.tracker.Weaknesses(levels),
		Recommendations: e.tracker.Recommend(levels),
	}
	if e.path != nil {
		in.NextConcepts = e.path.Next(e.tracker.MasteredBy(), nextConceptLimit)
	}
	return in
}

// Track records an analytics event.
func (e *Engine) Track(ctx context.Context, name string, props map[string]any) analytics.Event {
	return e.analytics.Track(ctx, name, props)
}

// Flush writes buffered analytics events.
func (e *Engine) Flush(ctx context.Context) error {
	return e.analytics.Flush(ctx)
}

// Run flushes analytics periodically until ctx is done.
func (e *Engine) Run(ctx context.Context) {
	e.analytics.Run(ctx)
}

// Patterns analyses the stored event history, grouped by the given event
// property.
func (e *Engine) Patterns(ctx context.Context, groupBy string) (analytics.Patterns, error) {
	if e.events == nil {
		return analytics.AnalyzePatterns(nil, groupBy), nil
	}
	events, err := analytics.History(ctx, e.events, store.QueryOpts{})
	if err != nil {
		return analytics.Patterns{}, err
	}
	return analytics.AnalyzePatterns(events, groupBy), nil
}

// Reset discards the learner model, buffered analytics events and all
// persisted state. The user id is kept.
func (e *Engine) Reset(ctx context.Context) error {
	e.mu.Lock()
	e.profile = profile.New()
	e.tracker.Reset()
	id := e.userID
	e.mu.Unlock()
	e.hints.Ladder().ResetAll()
	if n := e.analytics.Discard(); n > 0 {
		e.log.Debug("discarded buffered analytics events", zap.Int("events", n))
	}

	if e.st == nil {
		return nil
	}
	if err := e.st.Reset(ctx); err != nil {
		return fmt.Errorf("reset store: %w", err)
	}
	if err := e.kv.Set(ctx, store.KeyUserID, id); err != nil {
		return fmt.Errorf("reset store: %w", err)
	}
	return nil
}

func (e *Engine) saveProfile(ctx context.Context, blob []byte) {
	if e.snapshots == nil {
		return
	}
	err := e.snapshots.Save(ctx, &store.Snapshot{
		Timestamp: e.now(),
		Version:   profile.FormatVersion,
		Data:      blob,
	})
	if err != nil {
		e.persistFailed("save_profile", err)
		return
	}
	if err := e.snapshots.Prune(ctx, store.KeepSnapshots); err != nil {
		e.persistFailed("prune_profile", err)
	}
}

func (e *Engine) persistFailed(op string, err error) {
	e.metrics.PersistFailed(op)
	e.log.Warn("persistence failed, continuing in memory", zap.String("op", op), zap.Error(err))
}
