// Package analytics records learner events, batches them to a sink, and
// aggregates learning patterns.
package analytics

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/abhisek/quizmind/internal/logger"
)

// Event names emitted by quizmind.
const (
	EventAnswerSubmitted   = "answer_submitted"
	EventHintRequested     = "hint_requested"
	EventDifficultyChanged = "difficulty_changed"
	EventSessionAnalyzed   = "session_analyzed"
)

// Event is one recorded event.
type Event struct {
	ID         string         `json:"id"`
	Name       string         `json:"name"`
	Timestamp  time.Time      `json:"timestamp"`
	SessionID  string         `json:"sessionId"`
	UserID     string         `json:"userId"`
	Properties map[string]any `json:"properties"`
}

// Sink persists flushed batches.
type Sink interface {
	Append(ctx context.Context, events []Event) error
}

// PageContext supplies the location context stamped onto events.
type PageContext interface {
	URL() string
	Referrer() string
}

// StaticPage is a PageContext with fixed values.
type StaticPage struct {
	Location string
	From     string
}

func (p StaticPage) URL() string      { return p.Location }
func (p StaticPage) Referrer() string { return p.From }

// Config controls batching.
type Config struct {
	BatchSize     int           `yaml:"batch_size" validate:"gte=1"`
	FlushInterval time.Duration `yaml:"flush_interval" validate:"gt=0"`
}

// DefaultConfig returns the standard batching configuration.
func DefaultConfig() Config {
	return Config{BatchSize: 10, FlushInterval: 30 * time.Second}
}

// Hooks observe flushes. Nil functions are skipped.
type Hooks struct {
	Flushed     func(n int)
	FlushFailed func(err error)
}

// Tracker buffers events and flushes them to a sink. It is safe for
// concurrent use.
type Tracker struct {
	cfg       Config
	sink      Sink
	page      PageContext
	sessionID string
	started   time.Time
	log       *zap.Logger
	hooks     Hooks
	now       func() time.Time

	mu      sync.Mutex
	userID  string
	buffer  []Event
	flushes int

	// carried counts buffered events left over from the last failed or
	// sinkless flush. They do not count toward the next batch.
	carried int
}

// Options configures a Tracker.
type Options struct {
	Config    Config
	Sink      Sink
	Page      PageContext
	SessionID string
	UserID    string
	Logger    *zap.Logger
	Hooks     Hooks
}

// NewTracker creates a tracker. A nil page context stamps empty location
// fields.
func NewTracker(opts Options) *Tracker {
	cfg := opts.Config
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultConfig().BatchSize
	}
	if cfg.FlushInterval <= 0 {
		cfg.FlushInterval = DefaultConfig().FlushInterval
	}
	page := opts.Page
	if page == nil {
		page = StaticPage{}
	}
	return &Tracker{
		cfg:       cfg,
		sink:      opts.Sink,
		page:      page,
		sessionID: opts.SessionID,
		userID:    opts.UserID,
		started:   time.Now(),
		log:       logger.OrNop(opts.Logger),
		hooks:     opts.Hooks,
		now:       time.Now,
	}
}

// Track records an event and flushes once the buffer reaches the batch
// size. Flush failures are logged and the events stay buffered.
func (t *Tracker) Track(ctx context.Context, name string, props map[string]any) Event {
	now := t.now()
	merged := make(map[string]any, len(props)+3)
	for k, v := range props {
		merged[k] = v
	}
	merged["url"] = t.page.URL()
	merged["referrer"] = t.page.Referrer()
	merged["sessionDuration"] = now.Sub(t.started).Milliseconds()

	t.mu.Lock()
	ev := Event{
		ID:         uuid.NewString(),
		Name:       name,
		Timestamp:  now,
		SessionID:  t.sessionID,
		UserID:     t.userID,
		Properties: merged,
	}
	t.buffer = append(t.buffer, ev)
	full := len(t.buffer)-t.carried >= t.cfg.BatchSize
	t.mu.Unlock()

	if full {
		if err := t.flush(ctx, true); err != nil {
			t.log.Warn("automatic analytics flush failed", zap.Error(err))
		}
	}
	return ev
}

// Flush writes every buffered event to the sink. On failure the events
// are put back ahead of any recorded since.
func (t *Tracker) Flush(ctx context.Context) error {
	return t.flush(ctx, false)
}

func (t *Tracker) flush(ctx context.Context, auto bool) error {
	t.mu.Lock()
	batch := t.buffer
	t.buffer = nil
	t.carried = 0
	if auto && len(batch) > 0 {
		t.flushes++
	}
	t.mu.Unlock()

	if len(batch) == 0 || t.sink == nil {
		t.requeue(batch)
		return nil
	}
	if err := t.sink.Append(ctx, batch); err != nil {
		t.requeue(batch)
		if t.hooks.FlushFailed != nil {
			t.hooks.FlushFailed(err)
		}
		return fmt.Errorf("flush %d events: %w", len(batch), err)
	}
	if t.hooks.Flushed != nil {
		t.hooks.Flushed(len(batch))
	}
	return nil
}

func (t *Tracker) requeue(batch []Event) {
	if len(batch) == 0 {
		return
	}
	t.mu.Lock()
	t.buffer = append(batch, t.buffer...)
	t.carried += len(batch)
	t.mu.Unlock()
}

// Pending returns the number of buffered events.
func (t *Tracker) Pending() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.buffer)
}

// Discard drops every buffered event and returns how many were dropped.
func (t *Tracker) Discard() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	n := len(t.buffer)
	t.buffer = nil
	t.carried = 0
	return n
}

// AutoFlushes returns how many automatic flushes have been triggered.
func (t *Tracker) AutoFlushes() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.flushes
}

// SessionID returns the tracker's session id.
func (t *Tracker) SessionID() string { return t.sessionID }

// SetUserID changes the user id stamped on later events.
func (t *Tracker) SetUserID(id string) {
	t.mu.Lock()
	t.userID = id
	t.mu.Unlock()
}

// Run flushes on the configured interval until ctx is done, then makes a
// final flush.
func (t *Tracker) Run(ctx context.Context) {
	ticker := time.NewTicker(t.cfg.FlushInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			// ctx is already cancelled; give the final flush its own deadline.
			final, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
			if err := t.Flush(final); err != nil {
				t.log.Warn("final analytics flush failed", zap.Error(err))
			}
			cancel()
			return
		case <-ticker.C:
			if err := t.Flush(ctx); err != nil {
				t.log.Warn("periodic analytics flush failed", zap.Error(err))
			}
		}
	}
}
