package sqlite

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/vertextoedge/resource-fetcher/internal/domain"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "fetches.db"))
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStoreRecordAndListRecent(t *testing.T) {
	store := openTestStore(t)

	records := []*domain.FetchRecord{
		{
			ID:          "a1",
			SourceURL:   "https://example.com/one.json",
			ResolvedURL: "https://example.com/one.json",
			Status:      200,
			Bytes:       7,
			FilePath:    "/tmp/work/fetch-a1",
			CreatedAt:   time.Now().UTC().Add(-2 * time.Minute),
		},
		{
			ID:        "b2",
			SourceURL: "http://nbviewer.ipython.org/foo/bar",
			Status:    400,
			Error:     "unknown nbviewer URL type foo",
			CreatedAt: time.Now().UTC().Add(-time.Minute),
		},
		{
			ID:          "c3",
			SourceURL:   "https://gist.github.com/user/id",
			ResolvedURL: "https://gist.githubusercontent.com/user/id/raw",
			Status:      200,
			Bytes:       128,
			FilePath:    "/tmp/work/fetch-c3",
			CreatedAt:   time.Now().UTC(),
		},
	}
	for _, rec := range records {
		if err := store.RecordFetch(rec); err != nil {
			t.Fatalf("RecordFetch(%s) returned error: %v", rec.ID, err)
		}
	}

	got, err := store.ListRecent(10)
	if err != nil {
		t.Fatalf("ListRecent returned error: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("ListRecent returned %d records, want 3", len(got))
	}
	// Newest first
	if got[0].ID != "c3" || got[1].ID != "b2" || got[2].ID != "a1" {
		t.Errorf("ListRecent order = %s, %s, %s; want c3, b2, a1",
			got[0].ID, got[1].ID, got[2].ID)
	}

	first := got[0]
	if first.ResolvedURL != "https://gist.githubusercontent.com/user/id/raw" {
		t.Errorf("ResolvedURL = %q, want the normalized gist URL", first.ResolvedURL)
	}
	if !first.Succeeded() {
		t.Errorf("record c3 should report success")
	}
	if got[1].Succeeded() {
		t.Errorf("record b2 should not report success")
	}
}

func TestStoreListRecentLimit(t *testing.T) {
	store := openTestStore(t)

	for i := 0; i < 5; i++ {
		rec := &domain.FetchRecord{
			ID:        string(rune('a' + i)),
			SourceURL: "https://example.com/x",
			Status:    200,
			CreatedAt: time.Now().UTC().Add(time.Duration(i) * time.Second),
		}
		if err := store.RecordFetch(rec); err != nil {
			t.Fatalf("RecordFetch returned error: %v", err)
		}
	}

	got, err := store.ListRecent(2)
	if err != nil {
		t.Fatalf("ListRecent returned error: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("ListRecent(2) returned %d records, want 2", len(got))
	}
}

func TestStorePruneOlderThan(t *testing.T) {
	store := openTestStore(t)

	old := &domain.FetchRecord{
		ID:        "old",
		SourceURL: "https://example.com/old",
		Status:    200,
		CreatedAt: time.Now().UTC().Add(-48 * time.Hour),
	}
	fresh := &domain.FetchRecord{
		ID:        "fresh",
		SourceURL: "https://example.com/fresh",
		Status:    200,
		CreatedAt: time.Now().UTC(),
	}
	for _, rec := range []*domain.FetchRecord{old, fresh} {
		if err := store.RecordFetch(rec); err != nil {
			t.Fatalf("RecordFetch returned error: %v", err)
		}
	}

	pruned, err := store.PruneOlderThan(24 * time.Hour)
	if err != nil {
		t.Fatalf("PruneOlderThan returned error: %v", err)
	}
	if pruned != 1 {
		t.Errorf("PruneOlderThan pruned %d rows, want 1", pruned)
	}

	got, err := store.ListRecent(10)
	if err != nil {
		t.Fatalf("ListRecent returned error: %v", err)
	}
	if len(got) != 1 || got[0].ID != "fresh" {
		t.Errorf("after pruning, remaining records = %v, want only fresh", got)
	}
}
