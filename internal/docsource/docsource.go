// Package docsource provides document content to the indexing
// pipeline. A Provider yields the positional blocks and the plain full
// text of a stored document; the local implementation parses uploaded
// files, the HTTP client delegates to a remote extraction service.
package docsource

import (
	"context"

	"github.com/OuyangRuyi/pdf-reader/internal/doc"
)

// Provider is the content boundary the indexer builds on.
type Provider interface {
	// GetBlocks returns the positional text blocks of a document in
	// original order.
	GetBlocks(ctx context.Context, docID string) ([]doc.Block, error)
	// GetFullText returns the document's plain text. Used for
	// paragraph-boundary context expansion around legacy chunk offsets.
	GetFullText(ctx context.Context, docID string) (string, error)
}
