package store

import (
	"context"
	"fmt"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name()))
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestPragmasApplied(t *testing.T) {
	s := openTestStore(t)
	db := s.DB()

	tests := []struct {
		pragma string
		want   string
	}{
		// WAL mode falls back to "memory" for in-memory databases,
		// so we skip journal_mode here.
		{"foreign_keys", "1"},
		{"synchronous", "1"}, // NORMAL = 1
		{"busy_timeout", "5000"},
	}

	for _, tt := range tests {
		var got string
		err := db.QueryRow("PRAGMA " + tt.pragma).Scan(&got)
		if err != nil {
			t.Errorf("PRAGMA %s: %v", tt.pragma, err)
			continue
		}
		if got != tt.want {
			t.Errorf("PRAGMA %s = %q, want %q", tt.pragma, got, tt.want)
		}
	}
}

func TestMigrationCreatesTables(t *testing.T) {
	s := openTestStore(t)
	for _, table := range []string{tableSnapshots, tableEvents, tableKV} {
		var name string
		err := s.DB().QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?", table,
		).Scan(&name)
		if err != nil {
			t.Errorf("table %s: %v", table, err)
		}
	}
}

func saveSnapshots(t *testing.T, repo SnapshotRepo, n int) {
	t.Helper()
	base := time.Now().Truncate(time.Second)
	for i := 0; i < n; i++ {
		err := repo.Save(context.Background(), &Snapshot{
			Timestamp: base.Add(time.Duration(i) * time.Minute),
			Version:   "v1.0.0",
			Data:      []byte(fmt.Sprintf(`{"n":%d}`, i+1)),
		})
		if err != nil {
			t.Fatalf("save %d: %v", i, err)
		}
	}
}

func TestSnapshotSaveAndLatest(t *testing.T) {
	s := openTestStore(t)
	repo := s.SnapshotRepo()
	ctx := context.Background()

	snap, err := repo.Latest(ctx)
	if err != nil {
		t.Fatalf("latest (empty): %v", err)
	}
	if snap != nil {
		t.Fatal("expected nil snapshot when none exist")
	}

	now := time.Now().Truncate(time.Millisecond)
	in := &Snapshot{Timestamp: now, Version: "v1.0.0", Data: []byte(`{"a":1}`)}
	if err := repo.Save(ctx, in); err != nil {
		t.Fatalf("save: %v", err)
	}
	if in.ID == 0 {
		t.Error("expected Save to assign an id")
	}

	snap, err = repo.Latest(ctx)
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if snap == nil {
		t.Fatal("expected non-nil snapshot")
	}
	if string(snap.Data) != `{"a":1}` {
		t.Errorf("data = %s", snap.Data)
	}
	if snap.Version != "v1.0.0" {
		t.Errorf("version = %q", snap.Version)
	}
	if !snap.Timestamp.Equal(now) {
		t.Errorf("timestamp = %v, want %v", snap.Timestamp, now)
	}
}

func TestSnapshotLatestReturnsNewest(t *testing.T) {
	s := openTestStore(t)
	repo := s.SnapshotRepo()
	saveSnapshots(t, repo, 3)

	snap, err := repo.Latest(context.Background())
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if string(snap.Data) != `{"n":3}` {
		t.Errorf("data = %s, want n=3", snap.Data)
	}
}

func countRows(t *testing.T, s *Store, table string) int {
	t.Helper()
	var n int
	if err := s.DB().QueryRow("SELECT COUNT(*) FROM " + table).Scan(&n); err != nil {
		t.Fatalf("count %s: %v", table, err)
	}
	return n
}

func TestSnapshotPrune(t *testing.T) {
	s := openTestStore(t)
	repo := s.SnapshotRepo()
	ctx := context.Background()
	saveSnapshots(t, repo, 7)

	if err := repo.Prune(ctx, KeepSnapshots); err != nil {
		t.Fatalf("prune: %v", err)
	}
	if got := countRows(t, s, tableSnapshots); got != 5 {
		t.Errorf("remaining snapshots = %d, want 5", got)
	}

	snap, err := repo.Latest(ctx)
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if string(snap.Data) != `{"n":7}` {
		t.Errorf("latest data = %s, want n=7", snap.Data)
	}
}

func TestSnapshotPruneWithFewerThanKeep(t *testing.T) {
	s := openTestStore(t)
	repo := s.SnapshotRepo()
	saveSnapshots(t, repo, 2)

	if err := repo.Prune(context.Background(), 5); err != nil {
		t.Fatalf("prune: %v", err)
	}
	if got := countRows(t, s, tableSnapshots); got != 2 {
		t.Errorf("remaining snapshots = %d, want 2", got)
	}
}

func records(from, to int) []EventRecord {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	var out []EventRecord
	for i := from; i < to; i++ {
		out = append(out, EventRecord{
			ID:         fmt.Sprintf("e%04d", i),
			Name:       "answer_submitted",
			Timestamp:  base.Add(time.Duration(i) * time.Second),
			Properties: []byte(fmt.Sprintf(`{"i":%d}`, i)),
		})
	}
	return out
}

func TestEventAppendAndQuery(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	if err := repo.Append(ctx, records(0, 5)); err != nil {
		t.Fatalf("append: %v", err)
	}
	hint := EventRecord{ID: "h1", Name: "hint_requested", Timestamp: time.Now()}
	if err := repo.Append(ctx, []EventRecord{hint}); err != nil {
		t.Fatalf("append hint: %v", err)
	}

	all, err := repo.Query(ctx, QueryOpts{})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(all) != 6 {
		t.Fatalf("len = %d, want 6", len(all))
	}
	if all[0].ID != "e0000" || all[5].ID != "h1" {
		t.Errorf("order = %s..%s, want oldest first", all[0].ID, all[5].ID)
	}
	if string(all[5].Properties) != "{}" {
		t.Errorf("nil properties stored as %s, want {}", all[5].Properties)
	}

	answers, err := repo.Query(ctx, QueryOpts{Name: "answer_submitted", Limit: 2})
	if err != nil {
		t.Fatalf("query answers: %v", err)
	}
	if len(answers) != 2 || answers[0].ID != "e0003" || answers[1].ID != "e0004" {
		t.Errorf("limited query = %+v, want the two most recent answers", answers)
	}
}

func TestEventAppendSkipsDuplicates(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	if err := repo.Append(ctx, records(0, 3)); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := repo.Append(ctx, records(2, 4)); err != nil {
		t.Fatalf("append again: %v", err)
	}
	n, err := repo.Count(ctx)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 4 {
		t.Errorf("count = %d, want 4", n)
	}
}

func TestEventCapEvictsOldest(t *testing.T) {
	s := openTestStore(t)
	repo := &eventRepo{db: s.DB(), limit: 10}
	ctx := context.Background()

	for i := 0; i < 25; i += 5 {
		if err := repo.Append(ctx, records(i, i+5)); err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
		n, err := repo.Count(ctx)
		if err != nil {
			t.Fatalf("count: %v", err)
		}
		if n > 10 {
			t.Fatalf("count = %d after append %d, exceeds cap", n, i)
		}
	}

	all, err := repo.Query(ctx, QueryOpts{})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(all) != 10 {
		t.Fatalf("len = %d, want 10", len(all))
	}
	if all[0].ID != "e0015" || all[9].ID != "e0024" {
		t.Errorf("kept %s..%s, want e0015..e0024", all[0].ID, all[9].ID)
	}
}

func TestKV(t *testing.T) {
	s := openTestStore(t)
	repo := s.KVRepo()
	ctx := context.Background()

	if _, ok, err := repo.Get(ctx, KeyUserID); err != nil || ok {
		t.Fatalf("get missing = ok %v, err %v", ok, err)
	}
	if err := repo.Set(ctx, KeyUserID, "user_1"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := repo.Set(ctx, KeyUserID, "user_2"); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	v, ok, err := repo.Get(ctx, KeyUserID)
	if err != nil || !ok || v != "user_2" {
		t.Errorf("get = %q, %v, %v; want user_2", v, ok, err)
	}
}

func TestReset(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	saveSnapshots(t, s.SnapshotRepo(), 2)
	if err := s.EventRepo().Append(ctx, records(0, 3)); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := s.KVRepo().Set(ctx, KeyUserID, "u"); err != nil {
		t.Fatalf("set: %v", err)
	}

	if err := s.Reset(ctx); err != nil {
		t.Fatalf("reset: %v", err)
	}
	for _, table := range []string{tableSnapshots, tableEvents, tableKV} {
		if n := countRows(t, s, table); n != 0 {
			t.Errorf("%s has %d rows after reset", table, n)
		}
	}
}
