// Package index builds and persists per-document vector indices. Each
// document gets one JSON file under <data>/embeddings holding its
// chunks, embeddings and section tree.
package index

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/OuyangRuyi/pdf-reader/internal/chunker"
	"github.com/OuyangRuyi/pdf-reader/internal/classify"
	"github.com/OuyangRuyi/pdf-reader/internal/config"
	"github.com/OuyangRuyi/pdf-reader/internal/doc"
	"github.com/OuyangRuyi/pdf-reader/internal/docsource"
	"github.com/OuyangRuyi/pdf-reader/internal/meta"
	"github.com/OuyangRuyi/pdf-reader/internal/section"
)

// CurrentVersion is the index file format version written by this build.
const CurrentVersion = "2"

// Bounded concurrency for embedding batch requests.
const maxConcurrentBatches = 4

// Embedder produces embedding vectors for batches of text.
// *llm.EmbeddingClient satisfies this.
type Embedder interface {
	EmbedBatch(ctx context.Context, texts []string) ([][]float64, error)
	Model() string
	Dimension() int
}

// Store builds, loads and deletes document indices.
type Store struct {
	dir      string
	provider docsource.Provider
	embedder Embedder
	meta     *meta.Store
	log      *slog.Logger

	classifyCfg classify.Config
	chunkCfg    chunker.Config
	batchSize   int

	mu sync.RWMutex
}

func NewStore(cfg config.Config, provider docsource.Provider, embedder Embedder, metaStore *meta.Store, log *slog.Logger) (*Store, error) {
	dir := filepath.Join(cfg.DataDir, "embeddings")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create embeddings dir: %w", err)
	}
	return &Store{
		dir:      dir,
		provider: provider,
		embedder: embedder,
		meta:     metaStore,
		log:      log,
		classifyCfg: classify.Config{
			HeadingZScore:        cfg.HeadingZScore,
			BoldHeadingMaxLen:    cfg.BoldHeadingMaxLen,
			PatternHeadingMaxLen: cfg.PatternHeadingMaxLen,
		},
		chunkCfg: chunker.Config{
			ChunkSize:    cfg.ChunkSize,
			ChunkOverlap: cfg.ChunkOverlap,
		},
		batchSize: cfg.EmbedBatchSize,
	}, nil
}

// Create builds the full index for a document: blocks are classified,
// grouped into sections, chunked and embedded, then the result is
// written to disk. Returns false (with nil error) when the document
// yields no chunks. A batch whose embedding call fails after retries
// is zero-filled rather than aborting the whole index.
func (s *Store) Create(ctx context.Context, docID string) (bool, error) {
	log := s.log.With("doc_id", docID)

	s.setStatus(docID, meta.StatusProcessing)

	blocks, err := s.provider.GetBlocks(ctx, docID)
	if err != nil {
		s.setStatus(docID, meta.StatusFailed)
		return false, fmt.Errorf("get blocks: %w", err)
	}

	classified := classify.Blocks(blocks, s.classifyCfg)
	sections := section.Build(classified)
	chunks := chunker.Build(classified, sections, s.chunkCfg)
	if len(chunks) == 0 {
		log.Warn("no chunks produced")
		s.setStatus(docID, meta.StatusFailed)
		return false, nil
	}
	log.Info("chunked document", "chunks", len(chunks), "sections", len(sections))

	embeddings, err := s.embedAll(ctx, log, chunks)
	if err != nil {
		s.setStatus(docID, meta.StatusFailed)
		return false, err
	}

	idx := &doc.DocumentIndex{
		DocID:      docID,
		Chunks:     chunks,
		Embeddings: embeddings,
		Sections:   sections,
		Model:      s.embedder.Model(),
		Version:    CurrentVersion,
	}
	if err := Validate(idx); err != nil {
		s.setStatus(docID, meta.StatusFailed)
		return false, fmt.Errorf("built invalid index: %w", err)
	}
	if err := s.save(idx); err != nil {
		s.setStatus(docID, meta.StatusFailed)
		return false, err
	}

	s.setStatus(docID, meta.StatusCompleted)
	log.Info("index created", "chunks", len(chunks), "model", idx.Model)
	return true, nil
}

// embedAll runs batch embedding with bounded concurrency. Section
// titles are prepended so vectors carry local structure. Each chunk
// gets exactly one vector in chunk order.
func (s *Store) embedAll(ctx context.Context, log *slog.Logger, chunks []doc.Chunk) ([][]float64, error) {
	inputs := make([]string, len(chunks))
	for i, c := range chunks {
		if c.SectionTitle != "" {
			inputs[i] = "[" + c.SectionTitle + "] " + c.Text
		} else {
			inputs[i] = c.Text
		}
	}

	numBatches := (len(inputs) + s.batchSize - 1) / s.batchSize

	type batchResult struct {
		vectors [][]float64
		err     error
		idx     int
	}
	results := make(chan batchResult, numBatches)
	sem := make(chan struct{}, maxConcurrentBatches)

	for b := 0; b < numBatches; b++ {
		start := b * s.batchSize
		end := start + s.batchSize
		if end > len(inputs) {
			end = len(inputs)
		}
		sem <- struct{}{}
		go func(b int, batch []string) {
			defer func() { <-sem }()
			vectors, err := s.embedder.EmbedBatch(ctx, batch)
			results <- batchResult{vectors: vectors, err: err, idx: b}
		}(b, inputs[start:end])
	}

	batches := make([][][]float64, numBatches)
	for range numBatches {
		r := <-results
		if r.err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			// Zero-fill the failed batch so the index stays aligned
			// with its chunks. Zero vectors never win retrieval.
			log.Error("embedding batch failed, zero-filling", "batch", r.idx, "error", r.err)
			start := r.idx * s.batchSize
			end := start + s.batchSize
			if end > len(inputs) {
				end = len(inputs)
			}
			zeros := make([][]float64, end-start)
			for i := range zeros {
				zeros[i] = make([]float64, s.embedder.Dimension())
			}
			batches[r.idx] = zeros
			continue
		}
		batches[r.idx] = r.vectors
	}

	embeddings := make([][]float64, 0, len(inputs))
	for _, b := range batches {
		embeddings = append(embeddings, b...)
	}
	if len(embeddings) != len(chunks) {
		return nil, fmt.Errorf("embedding count %d does not match chunk count %d", len(embeddings), len(chunks))
	}
	return embeddings, nil
}

// Load reads one document index from disk, migrating legacy formats in
// memory. A file that cannot be parsed or migrated is an error, never
// a silently empty index.
func (s *Store) Load(docID string) (*doc.DocumentIndex, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(s.path(docID))
	if err != nil {
		return nil, fmt.Errorf("read index for %s: %w", docID, err)
	}
	idx, err := Migrate(data)
	if err != nil {
		return nil, fmt.Errorf("index for %s: %w", docID, err)
	}
	if idx.DocID == "" {
		idx.DocID = docID
	}
	if err := Validate(idx); err != nil {
		return nil, fmt.Errorf("index for %s: %w", docID, err)
	}
	return idx, nil
}

// List returns the doc ids of all stored indices.
func (s *Store) List() ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("read embeddings dir: %w", err)
	}
	var ids []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		ids = append(ids, strings.TrimSuffix(e.Name(), ".json"))
	}
	return ids, nil
}

// Exists reports whether an index file is present for the document.
func (s *Store) Exists(docID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, err := os.Stat(s.path(docID))
	return err == nil
}

// Delete removes a document's index. Deleting a missing index is not
// an error.
func (s *Store) Delete(docID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.Remove(s.path(docID)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete index for %s: %w", docID, err)
	}
	return nil
}

func (s *Store) path(docID string) string {
	return filepath.Join(s.dir, docID+".json")
}

func (s *Store) save(idx *doc.DocumentIndex) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.Marshal(idx)
	if err != nil {
		return fmt.Errorf("marshal index: %w", err)
	}
	tmp := s.path(idx.DocID) + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write index: %w", err)
	}
	if err := os.Rename(tmp, s.path(idx.DocID)); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("rename index: %w", err)
	}
	return nil
}

func (s *Store) setStatus(docID string, status meta.EmbeddingStatus) {
	if s.meta == nil {
		return
	}
	if err := s.meta.SetStatus(docID, status); err != nil {
		s.log.Warn("status update failed", "doc_id", docID, "status", status, "error", err)
	}
}
