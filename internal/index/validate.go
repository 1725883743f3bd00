package index

import (
	"fmt"

	"github.com/OuyangRuyi/pdf-reader/internal/doc"
)

// Validate checks the structural invariants of an index before it is
// persisted or served: chunks and embeddings stay aligned one to one,
// vectors share a single dimension, and chunk section references
// resolve against the stored section list.
func Validate(idx *doc.DocumentIndex) error {
	if idx == nil {
		return fmt.Errorf("nil index")
	}
	if idx.DocID == "" {
		return fmt.Errorf("index has no doc id")
	}
	if len(idx.Chunks) != len(idx.Embeddings) {
		return fmt.Errorf("%d chunks but %d embeddings", len(idx.Chunks), len(idx.Embeddings))
	}

	dim := -1
	for i, vec := range idx.Embeddings {
		if len(vec) == 0 {
			return fmt.Errorf("embedding %d is empty", i)
		}
		if dim == -1 {
			dim = len(vec)
		} else if len(vec) != dim {
			return fmt.Errorf("embedding %d has dimension %d, expected %d", i, len(vec), dim)
		}
	}

	if len(idx.Sections) > 0 {
		known := make(map[string]bool, len(idx.Sections))
		for _, s := range idx.Sections {
			known[s.ID] = true
		}
		for i, c := range idx.Chunks {
			if c.SectionID != "" && !known[c.SectionID] {
				return fmt.Errorf("chunk %d references unknown section %q", i, c.SectionID)
			}
		}
	}
	return nil
}
