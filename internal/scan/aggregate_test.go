package scan

import (
	"bytes"
	"errors"
	"log"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/notedeck/taskscan/internal/model"
	"github.com/notedeck/taskscan/internal/vault"
)

func newTestAggregator(store vault.Store) *Aggregator {
	return NewAggregator(store, log.New(&bytes.Buffer{}, "", 0), LogLevelDebug)
}

func TestListDocuments_Ordering(t *testing.T) {
	store := newMemStore()
	store.addOrigin("notes", "notes/2026-08-27.md", "notes/2026-08-29.md", "notes/2026-08-28.md")

	agg := newTestAggregator(store)
	got := agg.ListDocuments(vault.Scope{})

	// Descending lexicographic order of the trailing filename component.
	want := []model.DocumentID{"notes/2026-08-29.md", "notes/2026-08-28.md", "notes/2026-08-27.md"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}
}

func TestListDocuments_OrderingIgnoresDirectories(t *testing.T) {
	store := newMemStore()
	store.addOrigin("all", "z-dir/aaa.md", "a-dir/zzz.md")

	agg := newTestAggregator(store)
	got := agg.ListDocuments(vault.Scope{})

	// zzz.md sorts before aaa.md despite its earlier directory prefix.
	want := []model.DocumentID{"a-dir/zzz.md", "z-dir/aaa.md"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}
}

func TestListDocuments_StableTies(t *testing.T) {
	// Same trailing component in different directories: union order wins.
	store := newMemStore()
	store.addOrigin("first", "b/today.md")
	store.addOrigin("second", "a/today.md")

	agg := newTestAggregator(store)
	got := agg.ListDocuments(vault.Scope{})

	want := []model.DocumentID{"b/today.md", "a/today.md"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}
}

func TestListDocuments_Dedupe(t *testing.T) {
	store := newMemStore()
	store.addOrigin("subtree", "notes/a.md", "notes/b.md")
	store.addOrigin("tagged", "notes/b.md", "notes/c.md")

	agg := newTestAggregator(store)
	got := agg.ListDocuments(vault.Scope{})

	if len(got) != 3 {
		t.Fatalf("expected 3 unique documents, got %d: %v", len(got), got)
	}
}

func TestListDocuments_FailingOriginTolerated(t *testing.T) {
	store := newMemStore()
	store.origins = append(store.origins, &memOrigin{name: "broken", err: errors.New("unavailable")})
	store.addOrigin("healthy", "notes/a.md")

	agg := newTestAggregator(store)
	got := agg.ListDocuments(vault.Scope{})

	want := []model.DocumentID{"notes/a.md"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestListDocuments_CurrentPeriod(t *testing.T) {
	now := time.Date(2026, 8, 29, 15, 0, 0, 0, time.UTC)

	store := newMemStore()
	store.addOrigin("all", "journal/2026-08-29.md", "journal/2026-08-28.md", "notes/plain.md", "notes/touched.md")
	store.mtimes["notes/touched.md"] = now.Add(-time.Hour)         // modified today
	store.mtimes["notes/plain.md"] = now.Add(-48 * time.Hour)      // stale
	store.mtimes["journal/2026-08-28.md"] = now.Add(-26 * time.Hour)

	agg := newTestAggregator(store)
	agg.SetNow(func() time.Time { return now })
	got := agg.ListDocuments(vault.Scope{CurrentPeriodOnly: true})

	// 2026-08-29.md passes by identifier, touched.md by recency.
	want := []model.DocumentID{"notes/touched.md", "journal/2026-08-29.md"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestListDocuments_EmptyOrigins(t *testing.T) {
	agg := newTestAggregator(newMemStore())
	if got := agg.ListDocuments(vault.Scope{}); len(got) != 0 {
		t.Errorf("expected empty list, got %v", got)
	}
}
