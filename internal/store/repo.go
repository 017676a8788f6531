package store

import (
	"context"
	"time"
)

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Name  string    // exact event name ("" = any)
	Limit int       // most recent N (0 = unlimited)
	From  time.Time // timestamp >= From
	To    time.Time // timestamp <= To
}

// Snapshot is a stored profile blob.
type Snapshot struct {
	ID        int64
	Timestamp time.Time
	Version   string
	Data      []byte
}

// SnapshotRepo manages profile snapshots.
type SnapshotRepo interface {
	// Save stores a new snapshot.
	Save(ctx context.Context, snap *Snapshot) error

	// Latest returns the most recent snapshot, or nil if none exist.
	Latest(ctx context.Context) (*Snapshot, error)

	// Prune deletes all but the N most recent snapshots.
	Prune(ctx context.Context, keep int) error
}

// EventRecord is a stored analytics event. Properties holds JSON.
type EventRecord struct {
	ID         string
	Name       string
	SessionID  string
	UserID     string
	Timestamp  time.Time
	Properties []byte
}

// EventRepo provides append and query access to analytics events.
type EventRepo interface {
	// Append stores events in order and evicts the oldest rows beyond the
	// retention cap. Events whose id is already stored are skipped.
	Append(ctx context.Context, events []EventRecord) error

	// Query returns matching events, oldest first.
	Query(ctx context.Context, opts QueryOpts) ([]EventRecord, error)

	// Count returns the number of stored events.
	Count(ctx context.Context) (int, error)
}

// KVRepo stores small string values such as identifiers.
type KVRepo interface {
	// Get returns the value for key and whether it exists.
	Get(ctx context.Context, key string) (string, bool, error)

	// Set creates or replaces the value for key.
	Set(ctx context.Context, key, value string) error
}
