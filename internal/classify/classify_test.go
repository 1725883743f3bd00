package classify

import (
	"strings"
	"testing"

	"github.com/OuyangRuyi/pdf-reader/internal/doc"
)

func TestBlocks_LargeFontIsHeading(t *testing.T) {
	// Nine 10pt spans and one 24pt span: mean ≈ 11.4, stddev ≈ 4.2,
	// threshold ≈ 17.7, so only the 24pt block qualifies on size.
	blocks := []doc.Block{
		{Page: 1, Text: "Deep Retrieval Systems", Spans: []doc.Span{{Size: 24}}},
	}
	for i := 0; i < 9; i++ {
		blocks = append(blocks, doc.Block{
			Page:  1,
			Text:  "Some body text that is clearly a normal paragraph of prose.",
			Spans: []doc.Span{{Size: 10}},
		})
	}

	classified := Blocks(blocks, DefaultConfig())
	if len(classified) != len(blocks) {
		t.Fatalf("expected %d classified blocks, got %d", len(blocks), len(classified))
	}
	if classified[0].Type != doc.Heading {
		t.Errorf("expected large-font block to be heading, got %s", classified[0].Type)
	}
	for i := 1; i < len(classified); i++ {
		if classified[i].Type != doc.Paragraph {
			t.Errorf("block %d: expected paragraph, got %s", i, classified[i].Type)
		}
	}
	if classified[0].FontSize != 24 {
		t.Errorf("expected font_size 24, got %v", classified[0].FontSize)
	}
}

func TestBlocks_BoldShortIsHeading(t *testing.T) {
	blocks := []doc.Block{
		{Page: 1, Text: "Overview", Spans: []doc.Span{{Size: 10, Bold: true}}},
		{Page: 1, Text: strings.Repeat("bold but long text ", 10), Spans: []doc.Span{{Size: 10, Bold: true}}},
		{Page: 1, Text: "plain body", Spans: []doc.Span{{Size: 10}}},
	}

	classified := Blocks(blocks, DefaultConfig())
	if classified[0].Type != doc.Heading {
		t.Errorf("short bold block: expected heading, got %s", classified[0].Type)
	}
	if classified[1].Type != doc.Paragraph {
		t.Errorf("long bold block: expected paragraph, got %s", classified[1].Type)
	}
}

func TestBlocks_PatternHeadings(t *testing.T) {
	tests := []struct {
		text string
		want doc.BlockType
	}{
		{"1 Introduction", doc.Heading},
		{"2.3 Evaluation Setup", doc.Heading},
		{"Abstract", doc.Heading},
		{"conclusion and future work", doc.Heading},
		{"References", doc.Heading},
		{"3" + strings.Repeat(".1", 2) + " " + strings.Repeat("x", 200), doc.Paragraph}, // over length cutoff
		{"Ordinary sentence about methods.", doc.Paragraph},
	}
	for _, tt := range tests {
		blocks := []doc.Block{
			{Page: 1, Text: tt.text, Spans: []doc.Span{{Size: 10}}},
			{Page: 1, Text: "filler paragraph", Spans: []doc.Span{{Size: 10}}},
		}
		got := Blocks(blocks, DefaultConfig())[0].Type
		if got != tt.want {
			t.Errorf("%q: expected %s, got %s", tt.text, tt.want, got)
		}
	}
}

func TestBlocks_CaptionRequiresSmallFont(t *testing.T) {
	blocks := []doc.Block{
		{Page: 1, Text: "Figure 3: ablation results", Spans: []doc.Span{{Size: 8}}},
		{Page: 1, Text: "Table 1: dataset statistics", Spans: []doc.Span{{Size: 12}}},
		{Page: 1, Text: "body", Spans: []doc.Span{{Size: 11}}},
		{Page: 1, Text: "body", Spans: []doc.Span{{Size: 11}}},
	}

	classified := Blocks(blocks, DefaultConfig())
	if classified[0].Type != doc.Caption {
		t.Errorf("small-font figure block: expected caption, got %s", classified[0].Type)
	}
	// At or above the mean font size the fig/table prefix is not enough.
	if classified[1].Type == doc.Caption {
		t.Errorf("large-font table block: expected non-caption, got caption")
	}
}

func TestBlocks_MarkdownMode(t *testing.T) {
	blocks := []doc.Block{
		{Page: 1, Text: "# Setup"},
		{Page: 1, Text: "Figure 1: pipeline overview"},
		{Page: 1, Text: "- first item"},
		{Page: 1, Text: "* second item"},
		{Page: 1, Text: "1. numbered item"},
		{Page: 1, Text: "Plain prose paragraph."},
	}

	classified := Blocks(blocks, DefaultConfig())
	want := []doc.BlockType{doc.Heading, doc.Caption, doc.ListItem, doc.ListItem, doc.ListItem, doc.Paragraph}
	for i, w := range want {
		if classified[i].Type != w {
			t.Errorf("block %d (%q): expected %s, got %s", i, blocks[i].Text, w, classified[i].Type)
		}
		if classified[i].FontSize != 0 {
			t.Errorf("block %d: expected font_size 0 in markdown mode, got %v", i, classified[i].FontSize)
		}
	}
}

func TestBlocks_EmptyInput(t *testing.T) {
	if got := Blocks(nil, DefaultConfig()); len(got) != 0 {
		t.Errorf("expected no classified blocks, got %d", len(got))
	}
}

func TestBlocks_ZeroConfigFallsBackToDefaults(t *testing.T) {
	blocks := []doc.Block{
		{Page: 1, Text: "Overview", Spans: []doc.Span{{Size: 10, Bold: true}}},
		{Page: 1, Text: "body", Spans: []doc.Span{{Size: 10}}},
	}
	classified := Blocks(blocks, Config{})
	if classified[0].Type != doc.Heading {
		t.Errorf("expected heading with zero config, got %s", classified[0].Type)
	}
}
