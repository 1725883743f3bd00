package meta

import (
	"errors"
	"os"
	"testing"
	"time"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	return s
}

func TestStore_SaveAndGet(t *testing.T) {
	s := newTestStore(t)

	m := DocMeta{
		DocID:           "doc-1",
		Title:           "Attention Is All You Need",
		Filename:        "attention.pdf",
		NumPages:        15,
		CreatedAt:       time.Now().UTC(),
		EmbeddingStatus: StatusNotStarted,
	}
	if err := s.Save(m); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := s.Get("doc-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Title != m.Title || got.NumPages != 15 {
		t.Errorf("unexpected metadata: %+v", got)
	}
	if got.EmbeddingStatus != StatusNotStarted {
		t.Errorf("expected status not_started, got %q", got.EmbeddingStatus)
	}
}

func TestStore_GetMissing(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.Get("nope"); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected ErrNotExist, got %v", err)
	}
}

func TestStore_SetStatus(t *testing.T) {
	s := newTestStore(t)
	if err := s.Save(DocMeta{DocID: "doc-1", Title: "t", EmbeddingStatus: StatusNotStarted}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	for _, status := range []EmbeddingStatus{StatusProcessing, StatusCompleted, StatusFailed} {
		if err := s.SetStatus("doc-1", status); err != nil {
			t.Fatalf("SetStatus(%s): %v", status, err)
		}
		got, err := s.Get("doc-1")
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		if got.EmbeddingStatus != status {
			t.Errorf("expected status %q, got %q", status, got.EmbeddingStatus)
		}
		if got.Title != "t" {
			t.Errorf("SetStatus clobbered other fields: %+v", got)
		}
	}
}

func TestStore_ListNewestFirst(t *testing.T) {
	s := newTestStore(t)
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"old", "mid", "new"} {
		err := s.Save(DocMeta{DocID: id, CreatedAt: base.Add(time.Duration(i) * time.Hour)})
		if err != nil {
			t.Fatalf("Save(%s): %v", id, err)
		}
	}

	metas, err := s.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(metas) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(metas))
	}
	if metas[0].DocID != "new" || metas[2].DocID != "old" {
		t.Errorf("expected newest first, got %s,%s,%s", metas[0].DocID, metas[1].DocID, metas[2].DocID)
	}
}

func TestStore_DeleteIdempotent(t *testing.T) {
	s := newTestStore(t)
	if err := s.Save(DocMeta{DocID: "doc-1"}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := s.Delete("doc-1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := s.Delete("doc-1"); err != nil {
		t.Errorf("second Delete should be a no-op, got %v", err)
	}
}
