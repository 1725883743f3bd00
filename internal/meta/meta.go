// Package meta persists per-document metadata as one JSON file per
// document under <data>/docs, alongside but separate from the vector
// index. The embedding status field tracks the index lifecycle.
package meta

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

// EmbeddingStatus is the lifecycle state of a document's vector index.
type EmbeddingStatus string

const (
	StatusNotStarted EmbeddingStatus = "not_started"
	StatusProcessing EmbeddingStatus = "processing"
	StatusCompleted  EmbeddingStatus = "completed"
	StatusFailed     EmbeddingStatus = "failed"
)

// DocMeta describes one stored document.
type DocMeta struct {
	DocID           string          `json:"doc_id"`
	Title           string          `json:"title"`
	Filename        string          `json:"filename"`
	NumPages        int             `json:"num_pages"`
	SizeBytes       int64           `json:"size_bytes"`
	CreatedAt       time.Time       `json:"created_at"`
	EmbeddingStatus EmbeddingStatus `json:"embedding_status"`
}

// Store reads and writes DocMeta files under a single directory.
// Safe for concurrent use.
type Store struct {
	dir string
	mu  sync.Mutex
}

func NewStore(dataDir string) (*Store, error) {
	dir := filepath.Join(dataDir, "docs")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create docs dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

func (s *Store) path(docID string) string {
	return filepath.Join(s.dir, docID+".json")
}

// Save writes the metadata atomically via a temp file and rename.
func (s *Store) Save(m DocMeta) error {
	if m.DocID == "" {
		return fmt.Errorf("doc id is empty")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writeLocked(m)
}

func (s *Store) writeLocked(m DocMeta) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}
	tmp := s.path(m.DocID) + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write metadata: %w", err)
	}
	if err := os.Rename(tmp, s.path(m.DocID)); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("rename metadata: %w", err)
	}
	return nil
}

// Get returns the metadata for one document. os.ErrNotExist is
// returned (wrapped) when no such document exists.
func (s *Store) Get(docID string) (DocMeta, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readLocked(docID)
}

func (s *Store) readLocked(docID string) (DocMeta, error) {
	data, err := os.ReadFile(s.path(docID))
	if err != nil {
		return DocMeta{}, fmt.Errorf("read metadata for %s: %w", docID, err)
	}
	var m DocMeta
	if err := json.Unmarshal(data, &m); err != nil {
		return DocMeta{}, fmt.Errorf("parse metadata for %s: %w", docID, err)
	}
	if m.EmbeddingStatus == "" {
		m.EmbeddingStatus = StatusNotStarted
	}
	return m, nil
}

// List returns all document metadata sorted by creation time, newest first.
func (s *Store) List() ([]DocMeta, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("read docs dir: %w", err)
	}

	var metas []DocMeta
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		m, err := s.readLocked(strings.TrimSuffix(e.Name(), ".json"))
		if err != nil {
			continue
		}
		metas = append(metas, m)
	}
	sort.Slice(metas, func(i, j int) bool {
		return metas[i].CreatedAt.After(metas[j].CreatedAt)
	})
	return metas, nil
}

// Delete removes the metadata file. Deleting a missing document is not
// an error.
func (s *Store) Delete(docID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.Remove(s.path(docID)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete metadata for %s: %w", docID, err)
	}
	return nil
}

// SetStatus updates only the embedding status, preserving the rest of
// the record.
func (s *Store) SetStatus(docID string, status EmbeddingStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, err := s.readLocked(docID)
	if err != nil {
		return err
	}
	m.EmbeddingStatus = status
	return s.writeLocked(m)
}
