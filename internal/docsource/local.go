package docsource

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/OuyangRuyi/pdf-reader/internal/blocksource"
	"github.com/OuyangRuyi/pdf-reader/internal/doc"
)

// LocalStore keeps uploaded files under <data>/uploads and parses them
// on demand. Files are stored as <doc_id><ext> so the original format
// survives for re-parsing.
type LocalStore struct {
	dir string
}

func NewLocalStore(dataDir string) (*LocalStore, error) {
	dir := filepath.Join(dataDir, "uploads")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create uploads dir: %w", err)
	}
	return &LocalStore{dir: dir}, nil
}

// SaveUpload streams an uploaded file to disk and returns its size.
// The extension is taken from the original filename and must be one of
// the supported formats.
func (s *LocalStore) SaveUpload(docID, filename string, r io.Reader) (int64, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if !blocksource.SupportedExtensions[ext] {
		return 0, fmt.Errorf("unsupported file type %q", ext)
	}

	path := filepath.Join(s.dir, docID+ext)
	f, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("create upload file: %w", err)
	}
	n, err := io.Copy(f, r)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(path)
		return 0, fmt.Errorf("write upload file: %w", err)
	}
	return n, nil
}

// GetBlocks parses the stored file into positional blocks.
func (s *LocalStore) GetBlocks(ctx context.Context, docID string) ([]doc.Block, error) {
	path, err := s.find(docID)
	if err != nil {
		return nil, err
	}
	src, err := blocksource.ForFile(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open document %s: %w", docID, err)
	}
	defer f.Close()
	return src.Blocks(f, path)
}

// GetFullText parses the stored file and joins its blocks into plain text.
func (s *LocalStore) GetFullText(ctx context.Context, docID string) (string, error) {
	blocks, err := s.GetBlocks(ctx, docID)
	if err != nil {
		return "", err
	}
	return blocksource.FullText(blocks), nil
}

// Delete removes the stored file. Missing files are not an error.
func (s *LocalStore) Delete(docID string) error {
	path, err := s.find(docID)
	if err != nil {
		return nil
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete document %s: %w", docID, err)
	}
	return nil
}

func (s *LocalStore) find(docID string) (string, error) {
	matches, err := filepath.Glob(filepath.Join(s.dir, docID+".*"))
	if err != nil || len(matches) == 0 {
		return "", fmt.Errorf("document %s: %w", docID, os.ErrNotExist)
	}
	return matches[0], nil
}
