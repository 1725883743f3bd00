// Package blocksource extracts ordered, page-tagged text blocks from
// raw document bytes. PDF blocks carry font spans; all other formats
// produce marker-style blocks that the classifier handles in its
// metadata-free mode.
package blocksource

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/OuyangRuyi/pdf-reader/internal/doc"
)

// Source converts raw document bytes into positional text blocks.
type Source interface {
	Blocks(r io.Reader, filename string) ([]doc.Block, error)
}

// SupportedExtensions lists file extensions this service can handle.
var SupportedExtensions = map[string]bool{
	".pdf":      true,
	".txt":      true,
	".md":       true,
	".markdown": true,
	".csv":      true,
	".html":     true,
	".htm":      true,
	".docx":     true,
}

// ForFile returns the appropriate source for a filename.
func ForFile(filename string) (Source, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".pdf":
		return &PDFSource{}, nil
	case ".txt":
		return &TextSource{}, nil
	case ".md", ".markdown":
		return &MarkdownSource{}, nil
	case ".csv":
		return &CSVSource{}, nil
	case ".html", ".htm":
		return &HTMLSource{}, nil
	case ".docx":
		return &DOCXSource{}, nil
	default:
		return nil, fmt.Errorf("unsupported file extension: %s", ext)
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}

// FullText flattens blocks into the document full text, paragraphs
// separated by blank lines. This is the text the context expander's
// legacy-span fallback searches in.
func FullText(blocks []doc.Block) string {
	var sb strings.Builder
	for _, b := range blocks {
		if strings.TrimSpace(b.Text) == "" {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteString("\n\n")
		}
		sb.WriteString(b.Text)
	}
	return sb.String()
}
