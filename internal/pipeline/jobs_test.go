package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/OuyangRuyi/pdf-reader/internal/config"
)

func TestJob_StateTransitions(t *testing.T) {
	job := &Job{
		ID:        "test-1",
		Status:    StatusQueued,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	for _, status := range []JobStatus{StatusProcessing, StatusCompleted} {
		before := job.UpdatedAt
		// Small sleep to ensure time difference is detectable.
		time.Sleep(time.Millisecond)
		job.SetStatus(status)

		snap := job.Snapshot()
		if snap.Status != status {
			t.Errorf("expected status %q, got %q", status, snap.Status)
		}
		if !snap.UpdatedAt.After(before) {
			t.Errorf("expected UpdatedAt to advance after SetStatus(%q)", status)
		}
	}
}

func TestJob_SetError(t *testing.T) {
	job := &Job{ID: "err-test", Status: StatusProcessing, UpdatedAt: time.Now()}
	job.SetError("embedding provider unreachable")

	snap := job.Snapshot()
	if snap.Status != StatusFailed {
		t.Errorf("expected status failed, got %q", snap.Status)
	}
	if snap.Error != "embedding provider unreachable" {
		t.Errorf("unexpected error text %q", snap.Error)
	}
}

func TestJobStore_PutGet(t *testing.T) {
	store := NewJobStore(time.Hour)
	store.Put(&Job{ID: "store-1", UpdatedAt: time.Now()})

	if got := store.Get("store-1"); got == nil || got.ID != "store-1" {
		t.Fatalf("expected to get job back, got %+v", got)
	}
	if store.Get("nonexistent") != nil {
		t.Error("expected nil for missing job")
	}
}

func TestJobStore_TTLCleanup(t *testing.T) {
	store := NewJobStore(50 * time.Millisecond)
	store.Put(&Job{ID: "old", UpdatedAt: time.Now()})

	time.Sleep(100 * time.Millisecond)
	store.Put(&Job{ID: "new", UpdatedAt: time.Now()})
	store.Cleanup()

	if store.Get("old") != nil {
		t.Error("expected expired job to be cleaned up")
	}
	if store.Get("new") == nil {
		t.Error("expected fresh job to survive cleanup")
	}
}

func TestNewID_UniqueAndSortable(t *testing.T) {
	seen := make(map[string]bool)
	var prev string
	for i := 0; i < 1000; i++ {
		id := NewID()
		if len(id) != 26 {
			t.Fatalf("expected 26-character id, got %q", id)
		}
		if seen[id] {
			t.Fatalf("duplicate id %q", id)
		}
		seen[id] = true
		if prev != "" && id < prev {
			t.Fatalf("ids not monotonically sortable: %q after %q", id, prev)
		}
		prev = id
	}
}

func TestNewID_Alphabet(t *testing.T) {
	id := NewID()
	for _, r := range id {
		if !strings.ContainsRune(crockford, r) {
			t.Fatalf("id %q contains non-Crockford character %q", id, r)
		}
	}
}

// slowIndexer blocks until released so tests can observe in-flight state.
type slowIndexer struct {
	mu      sync.Mutex
	release chan struct{}
	calls   int
	failFor map[string]bool
	noChunk map[string]bool
}

func (s *slowIndexer) Create(ctx context.Context, docID string) (bool, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	if s.release != nil {
		<-s.release
	}
	if s.failFor[docID] {
		return false, fmt.Errorf("boom")
	}
	if s.noChunk[docID] {
		return false, nil
	}
	return true, nil
}

func (s *slowIndexer) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func testOrchestratorConfig() config.Config {
	return config.Config{
		WorkerCount:  2,
		MaxQueueSize: 4,
		JobTTL:       time.Hour,
	}
}

func waitTerminal(t *testing.T, o *Orchestrator, jobID string) JobSnapshot {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		job := o.GetJob(jobID)
		if job != nil && job.terminal() {
			return job.Snapshot()
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("job %s never reached a terminal state", jobID)
	return JobSnapshot{}
}

func TestOrchestrator_ProcessesJobs(t *testing.T) {
	indexer := &slowIndexer{}
	o := NewOrchestrator(testOrchestratorConfig(), indexer, slog.Default())
	o.Start(context.Background())
	defer o.Stop()

	job, err := o.Submit("doc-1")
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	snap := waitTerminal(t, o, job.ID)
	if snap.Status != StatusCompleted {
		t.Errorf("expected completed, got %q (%s)", snap.Status, snap.Error)
	}
}

func TestOrchestrator_FailedAndNoContentJobs(t *testing.T) {
	indexer := &slowIndexer{
		failFor: map[string]bool{"bad-doc": true},
		noChunk: map[string]bool{"empty-doc": true},
	}
	o := NewOrchestrator(testOrchestratorConfig(), indexer, slog.Default())
	o.Start(context.Background())
	defer o.Stop()

	bad, err := o.Submit("bad-doc")
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	empty, err := o.Submit("empty-doc")
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	if snap := waitTerminal(t, o, bad.ID); snap.Status != StatusFailed || snap.Error != "boom" {
		t.Errorf("expected failed job with error, got %+v", snap)
	}
	if snap := waitTerminal(t, o, empty.ID); snap.Status != StatusNoContent {
		t.Errorf("expected no_content, got %q", snap.Status)
	}
}

func TestOrchestrator_DeduplicatesInflight(t *testing.T) {
	indexer := &slowIndexer{release: make(chan struct{})}
	o := NewOrchestrator(testOrchestratorConfig(), indexer, slog.Default())
	o.Start(context.Background())
	defer o.Stop()

	first, err := o.Submit("doc-1")
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	second, err := o.Submit("doc-1")
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("expected the in-flight job to be reused, got %q and %q", first.ID, second.ID)
	}

	close(indexer.release)
	waitTerminal(t, o, first.ID)

	// After completion the document can be resubmitted.
	third, err := o.Submit("doc-1")
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if third.ID == first.ID {
		t.Error("expected a fresh job after the first completed")
	}
	waitTerminal(t, o, third.ID)
}

func TestOrchestrator_QueueFull(t *testing.T) {
	cfg := testOrchestratorConfig()
	cfg.WorkerCount = 1
	cfg.MaxQueueSize = 1
	indexer := &slowIndexer{release: make(chan struct{})}
	o := NewOrchestrator(cfg, indexer, slog.Default())
	o.Start(context.Background())
	defer o.Stop()

	// Fill the single worker and the single queue slot, plus one more.
	var lastErr error
	for i := 0; i < 5; i++ {
		_, err := o.Submit(fmt.Sprintf("doc-%d", i))
		if err != nil {
			lastErr = err
			break
		}
		// Give the worker a moment to pick up the first job.
		time.Sleep(10 * time.Millisecond)
	}
	if lastErr == nil {
		t.Error("expected a queue-full error")
	}
	close(indexer.release)
}
