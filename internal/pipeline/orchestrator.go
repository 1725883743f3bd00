package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/OuyangRuyi/pdf-reader/internal/config"
)

// Indexer builds a document's index. *index.Store satisfies this.
type Indexer interface {
	Create(ctx context.Context, docID string) (bool, error)
}

// Orchestrator runs index creation jobs on a fixed worker pool with a
// bounded queue. At most one job per document is in flight; submitting
// a document that is already queued or processing returns the existing
// job instead of a new one.
type Orchestrator struct {
	jobs    *JobStore
	queue   chan *Job
	indexer Indexer
	log     *slog.Logger
	cfg     config.Config

	inflightMu sync.Mutex
	inflight   map[string]*Job

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewOrchestrator(cfg config.Config, indexer Indexer, log *slog.Logger) *Orchestrator {
	return &Orchestrator{
		jobs:     NewJobStore(cfg.JobTTL),
		queue:    make(chan *Job, cfg.MaxQueueSize),
		indexer:  indexer,
		log:      log,
		cfg:      cfg,
		inflight: make(map[string]*Job),
	}
}

// Start launches worker goroutines and the job store cleanup loop.
func (o *Orchestrator) Start(ctx context.Context) {
	workerCtx, cancel := context.WithCancel(ctx)
	o.cancel = cancel

	for range o.cfg.WorkerCount {
		o.wg.Add(1)
		go func() {
			defer o.wg.Done()
			for {
				select {
				case <-workerCtx.Done():
					return
				case job, ok := <-o.queue:
					if !ok {
						return
					}
					o.process(workerCtx, job)
				}
			}
		}()
	}

	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-workerCtx.Done():
				return
			case <-ticker.C:
				o.jobs.Cleanup()
			}
		}
	}()
}

// Stop gracefully shuts down the pipeline.
func (o *Orchestrator) Stop() {
	if o.cancel != nil {
		o.cancel()
	}
	close(o.queue)
	o.wg.Wait()
}

func (o *Orchestrator) process(ctx context.Context, job *Job) {
	defer o.clearInflight(job.DocID)

	job.SetStatus(StatusProcessing)
	log := o.log.With("job_id", job.ID, "doc_id", job.DocID)

	ok, err := o.indexer.Create(ctx, job.DocID)
	switch {
	case err != nil:
		log.Error("index creation failed", "error", err)
		job.SetError(err.Error())
	case !ok:
		log.Warn("document produced no indexable content")
		job.SetStatus(StatusNoContent)
	default:
		log.Info("index creation completed")
		job.SetStatus(StatusCompleted)
	}
}

// Submit queues index creation for a document. The returned job may be
// a previously submitted one that is still in flight for the same
// document.
func (o *Orchestrator) Submit(docID string) (*Job, error) {
	o.inflightMu.Lock()
	if existing, ok := o.inflight[docID]; ok && !existing.terminal() {
		o.inflightMu.Unlock()
		return existing, nil
	}

	now := time.Now()
	job := &Job{
		ID:        NewID(),
		DocID:     docID,
		Status:    StatusQueued,
		CreatedAt: now,
		UpdatedAt: now,
	}
	o.inflight[docID] = job
	o.inflightMu.Unlock()

	o.jobs.Put(job)
	select {
	case o.queue <- job:
		return job, nil
	default:
		o.clearInflight(docID)
		job.SetError("queue full")
		return nil, fmt.Errorf("job queue is full (%d)", o.cfg.MaxQueueSize)
	}
}

func (o *Orchestrator) clearInflight(docID string) {
	o.inflightMu.Lock()
	delete(o.inflight, docID)
	o.inflightMu.Unlock()
}

// GetJob returns a job by id, or nil when unknown or expired.
func (o *Orchestrator) GetJob(id string) *Job {
	return o.jobs.Get(id)
}

// QueueDepth returns the current queue depth.
func (o *Orchestrator) QueueDepth() int {
	return len(o.queue)
}
