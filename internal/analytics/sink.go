package analytics

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/abhisek/quizmind/internal/store"
)

// StoreSink persists events to the store's capped event history.
type StoreSink struct {
	Repo store.EventRepo
}

// Append implements Sink.
func (s StoreSink) Append(ctx context.Context, events []Event) error {
	records := make([]store.EventRecord, 0, len(events))
	for _, ev := range events {
		props, err := json.Marshal(ev.Properties)
		if err != nil {
			return fmt.Errorf("marshal event %s: %w", ev.ID, err)
		}
		records = append(records, store.EventRecord{
			ID:         ev.ID,
			Name:       ev.Name,
			SessionID:  ev.SessionID,
			UserID:     ev.UserID,
			Timestamp:  ev.Timestamp,
			Properties: props,
		})
	}
	return s.Repo.Append(ctx, records)
}

// History loads stored events, oldest first. Rows with undecodable
// properties are returned with empty properties.
func History(ctx context.Context, repo store.EventRepo, opts store.QueryOpts) ([]Event, error) {
	records, err := repo.Query(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("load events: %w", err)
	}
	out := make([]Event, 0, len(records))
	for _, r := range records {
		var props map[string]any
		if err := json.Unmarshal(r.Properties, &props); err != nil || props == nil {
			props = map[string]any{}
		}
		out = append(out, Event{
			ID:         r.ID,
			Name:       r.Name,
			Timestamp:  r.Timestamp,
			SessionID:  r.SessionID,
			UserID:     r.UserID,
			Properties: props,
		})
	}
	return out, nil
}
