package chunker

import (
	"strings"
	"testing"

	"github.com/OuyangRuyi/pdf-reader/internal/doc"
	"github.com/OuyangRuyi/pdf-reader/internal/section"
)

func TestBuild_SmallBlockIsOneChunk(t *testing.T) {
	blocks := []doc.ClassifiedBlock{
		{Block: doc.Block{Page: 1, Text: "short paragraph", BBox: doc.Rect{1, 2, 3, 4}}, Type: doc.Paragraph},
	}
	sections := section.Build(blocks)

	chunks := Build(blocks, sections, DefaultConfig())
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	c := chunks[0]
	if c.Text != "short paragraph" {
		t.Errorf("unexpected chunk text %q", c.Text)
	}
	if c.Page != 1 || c.BBox != (doc.Rect{1, 2, 3, 4}) || c.Type != doc.Paragraph {
		t.Errorf("block metadata not carried: %+v", c)
	}
	if c.SectionID != doc.RootSectionID {
		t.Errorf("expected root section id, got %q", c.SectionID)
	}
	if c.HasSpan() {
		t.Errorf("structural chunks must not carry a text span, got [%d,%d)", c.Start, c.End)
	}
}

func TestBuild_LongBlockSplitsWithOverlap(t *testing.T) {
	text := strings.Repeat("abcdefghij", 30) // 300 chars
	blocks := []doc.ClassifiedBlock{
		{Block: doc.Block{Page: 2, Text: text}, Type: doc.Caption},
	}
	sections := section.Build(blocks)

	cfg := Config{ChunkSize: 100, ChunkOverlap: 20}
	chunks := Build(blocks, sections, cfg)

	if len(chunks) < 3 {
		t.Fatalf("expected at least 3 chunks for 300 chars at 100/20, got %d", len(chunks))
	}
	for i, c := range chunks {
		if len([]rune(c.Text)) > cfg.ChunkSize {
			t.Errorf("chunk %d exceeds size limit: %d chars", i, len(c.Text))
		}
		if c.Type != doc.Caption {
			t.Errorf("chunk %d lost its block type: %s", i, c.Type)
		}
	}
	// Consecutive windows share the configured overlap.
	for i := 1; i < len(chunks); i++ {
		prev := []rune(chunks[i-1].Text)
		curr := []rune(chunks[i].Text)
		if len(prev) == cfg.ChunkSize {
			tail := string(prev[len(prev)-cfg.ChunkOverlap:])
			head := string(curr[:min(cfg.ChunkOverlap, len(curr))])
			if tail != head {
				t.Errorf("chunks %d/%d do not overlap by %d chars", i-1, i, cfg.ChunkOverlap)
			}
		}
	}
}

func TestBuild_SectionCursorHeadingMatch(t *testing.T) {
	blocks := []doc.ClassifiedBlock{
		{Block: doc.Block{Page: 1, Text: "preamble"}, Type: doc.Paragraph},
		{Block: doc.Block{Page: 1, Text: "Methods"}, Type: doc.Heading},
		{Block: doc.Block{Page: 1, Text: "methods body"}, Type: doc.Paragraph},
		{Block: doc.Block{Page: 2, Text: "Results"}, Type: doc.Heading},
		{Block: doc.Block{Page: 2, Text: "results body"}, Type: doc.Paragraph},
	}
	sections := section.Build(blocks)

	chunks := Build(blocks, sections, DefaultConfig())
	if len(chunks) != len(blocks) {
		t.Fatalf("expected %d chunks, got %d", len(blocks), len(chunks))
	}

	wantTitles := []string{section.RootTitle, "Methods", "Methods", "Results", "Results"}
	for i, c := range chunks {
		if c.SectionTitle != wantTitles[i] {
			t.Errorf("chunk %d: expected section %q, got %q", i, wantTitles[i], c.SectionTitle)
		}
	}
	// Heading on the same page as the previous section's content still
	// advances the cursor (heading match beats the page comparison).
	if chunks[1].SectionTitle != "Methods" {
		t.Errorf("heading chunk should belong to its own section, got %q", chunks[1].SectionTitle)
	}
}

func TestBuild_SectionCursorPageOverrun(t *testing.T) {
	// Sections built elsewhere; the body blocks never repeat the heading
	// text, so the cursor can only advance on page overrun.
	sections := []doc.Section{
		{ID: "root", Title: section.RootTitle, StartPage: 1, EndPage: 2},
		{ID: "sec_1", Title: "Appendix", Level: 1, StartPage: 2, EndPage: 5},
	}
	blocks := []doc.ClassifiedBlock{
		{Block: doc.Block{Page: 1, Text: "front matter"}, Type: doc.Paragraph},
		{Block: doc.Block{Page: 2, Text: "still front matter"}, Type: doc.Paragraph},
		{Block: doc.Block{Page: 3, Text: "appendix detail"}, Type: doc.Paragraph},
	}

	chunks := Build(blocks, sections, DefaultConfig())
	if chunks[0].SectionID != "root" || chunks[1].SectionID != "root" {
		t.Errorf("pages within root range must stay in root: %q %q", chunks[0].SectionID, chunks[1].SectionID)
	}
	if chunks[2].SectionID != "sec_1" {
		t.Errorf("page past root end_page should advance to sec_1, got %q", chunks[2].SectionID)
	}
}

func TestBuild_NoChunkCrossesSections(t *testing.T) {
	blocks := []doc.ClassifiedBlock{
		{Block: doc.Block{Page: 1, Text: strings.Repeat("a", 2000)}, Type: doc.Paragraph},
		{Block: doc.Block{Page: 1, Text: "Next"}, Type: doc.Heading},
		{Block: doc.Block{Page: 1, Text: strings.Repeat("b", 2000)}, Type: doc.Paragraph},
	}
	sections := section.Build(blocks)

	chunks := Build(blocks, sections, DefaultConfig())
	for i, c := range chunks {
		if c.SectionID == "" {
			t.Fatalf("chunk %d has no section", i)
		}
	}
	// All sub-chunks of one block share that block's single section.
	for _, c := range chunks {
		switch {
		case strings.HasPrefix(c.Text, "a") && c.SectionID != doc.RootSectionID:
			t.Errorf("pre-heading sub-chunk tagged %q", c.SectionID)
		case strings.HasPrefix(c.Text, "b") && c.SectionID != "sec_1":
			t.Errorf("post-heading sub-chunk tagged %q", c.SectionID)
		}
	}
}

func TestBuild_EmptyInput(t *testing.T) {
	if got := Build(nil, section.Build(nil), DefaultConfig()); len(got) != 0 {
		t.Errorf("expected no chunks, got %d", len(got))
	}
}
