// Package chunker emits fixed-size, section-tagged chunks from
// classified blocks. Splitting never crosses a block boundary, so every
// sub-chunk keeps its block's page, bbox and type.
package chunker

import (
	"github.com/OuyangRuyi/pdf-reader/internal/doc"
)

// Config controls chunking behavior.
type Config struct {
	ChunkSize    int // Target chunk size in characters.
	ChunkOverlap int // Overlap between consecutive windows in characters.
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		ChunkSize:    800,
		ChunkOverlap: 150,
	}
}

// Build walks the classified blocks in order and produces chunks tagged
// with the section each block falls in. The section cursor advances
// monotonically; when a block could trigger both a heading-title match
// and a page overrun, the heading match takes precedence.
func Build(blocks []doc.ClassifiedBlock, sections []doc.Section, cfg Config) []doc.Chunk {
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = 800
	}
	if cfg.ChunkOverlap < 0 || cfg.ChunkOverlap >= cfg.ChunkSize {
		cfg.ChunkOverlap = 150
	}

	var chunks []doc.Chunk
	cur := 0

	for _, b := range blocks {
		cur = advanceCursor(cur, b, sections)

		sectionID := ""
		sectionTitle := ""
		if cur < len(sections) {
			sectionID = sections[cur].ID
			sectionTitle = sections[cur].Title
		}

		for _, text := range splitWindows(b.Text, cfg.ChunkSize, cfg.ChunkOverlap) {
			chunks = append(chunks, doc.Chunk{
				Text:         text,
				Page:         b.Page,
				BBox:         b.BBox,
				Type:         b.Type,
				SectionID:    sectionID,
				SectionTitle: sectionTitle,
				Start:        -1,
				End:          -1,
			})
		}
	}

	return chunks
}

// advanceCursor moves the section cursor forward while the block's page
// has reached the next section's start page. A heading block whose text
// equals the next section's title always advances; otherwise the cursor
// only advances once the page has overrun the current section's range.
func advanceCursor(cur int, b doc.ClassifiedBlock, sections []doc.Section) int {
	for cur < len(sections)-1 && b.Page >= sections[cur+1].StartPage {
		if b.Type == doc.Heading && b.Text == sections[cur+1].Title {
			cur++
			continue
		}
		if b.Page > sections[cur].EndPage {
			cur++
			continue
		}
		break
	}
	return cur
}

// splitWindows cuts text into consecutive windows of size chars with
// overlap chars shared between neighbors. Text at or under the size
// limit comes back as a single window. Offsets are in runes so
// multi-byte text never splits mid-character.
func splitWindows(text string, size, overlap int) []string {
	runes := []rune(text)
	if len(runes) <= size {
		return []string{text}
	}

	step := size - overlap
	var out []string
	for i := 0; i < len(runes); i += step {
		end := i + size
		if end > len(runes) {
			end = len(runes)
		}
		out = append(out, string(runes[i:end]))
		if end == len(runes) {
			break
		}
	}
	return out
}
