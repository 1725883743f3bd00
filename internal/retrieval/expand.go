package retrieval

import (
	"strings"

	"github.com/OuyangRuyi/pdf-reader/internal/doc"
)

// Window sizes for paragraph-boundary context expansion around a
// chunk's stored character span.
const (
	boundarySearchWindow = 500
	fallbackPadding      = 200
)

// Expand widens a chunk to nearby paragraph boundaries in the document
// full text. Only chunks carrying a valid [start,end) span are
// expanded; structural chunks and chunks whose span falls outside the
// text come back as their stored text. All output is
// whitespace-normalized.
func Expand(chunk doc.Chunk, fullText string) string {
	if !chunk.HasSpan() || fullText == "" || chunk.Start >= len(fullText) {
		return normalize(chunk.Text)
	}

	start, end := chunk.Start, chunk.End
	if end > len(fullText) {
		end = len(fullText)
	}

	expStart := start - fallbackPadding
	lo := start - boundarySearchWindow
	if lo < 0 {
		lo = 0
	}
	if i := strings.LastIndex(fullText[lo:start], "\n\n"); i >= 0 {
		expStart = lo + i + 2
	}
	if expStart < 0 {
		expStart = 0
	}

	expEnd := end + fallbackPadding
	hi := end + boundarySearchWindow
	if hi > len(fullText) {
		hi = len(fullText)
	}
	if i := strings.Index(fullText[end:hi], "\n\n"); i >= 0 {
		expEnd = end + i
	}
	if expEnd > len(fullText) {
		expEnd = len(fullText)
	}

	return normalize(fullText[expStart:expEnd])
}

// normalize collapses whitespace runs to single spaces and trims.
func normalize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
