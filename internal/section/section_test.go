package section

import (
	"testing"

	"github.com/OuyangRuyi/pdf-reader/internal/doc"
)

func para(page int, text string) doc.ClassifiedBlock {
	return doc.ClassifiedBlock{Block: doc.Block{Page: page, Text: text}, Type: doc.Paragraph}
}

func heading(page int, text string) doc.ClassifiedBlock {
	return doc.ClassifiedBlock{Block: doc.Block{Page: page, Text: text}, Type: doc.Heading}
}

func TestBuild_EmptyInput(t *testing.T) {
	sections := Build(nil)
	if len(sections) != 1 {
		t.Fatalf("expected 1 section, got %d", len(sections))
	}
	s := sections[0]
	if s.ID != doc.RootSectionID {
		t.Errorf("expected id %q, got %q", doc.RootSectionID, s.ID)
	}
	if s.StartPage != 1 || s.EndPage != 1 {
		t.Errorf("expected degenerate page range [1,1], got [%d,%d]", s.StartPage, s.EndPage)
	}
}

func TestBuild_NoHeadings(t *testing.T) {
	sections := Build([]doc.ClassifiedBlock{
		para(1, "intro text"),
		para(3, "more text"),
	})
	if len(sections) != 1 {
		t.Fatalf("expected 1 section, got %d", len(sections))
	}
	if sections[0].ID != doc.RootSectionID {
		t.Errorf("expected root section, got %q", sections[0].ID)
	}
	if sections[0].EndPage != 3 {
		t.Errorf("expected end_page 3 (last block), got %d", sections[0].EndPage)
	}
}

func TestBuild_HeadingsOpenNewSections(t *testing.T) {
	sections := Build([]doc.ClassifiedBlock{
		para(1, "preamble"),
		heading(2, "Methods"),
		para(2, "methods text"),
		heading(4, "Results"),
		para(5, "results text"),
	})

	if len(sections) != 3 {
		t.Fatalf("expected 3 sections, got %d", len(sections))
	}

	if sections[0].ID != doc.RootSectionID || sections[0].EndPage != 2 {
		t.Errorf("root section: got id=%q end_page=%d", sections[0].ID, sections[0].EndPage)
	}
	if sections[1].Title != "Methods" || sections[1].StartPage != 2 || sections[1].EndPage != 4 {
		t.Errorf("section 1: got %+v", sections[1])
	}
	if sections[2].Title != "Results" || sections[2].StartPage != 4 || sections[2].EndPage != 5 {
		t.Errorf("section 2: got %+v", sections[2])
	}
	for i, s := range sections[1:] {
		if s.Level != 1 {
			t.Errorf("section %d: expected level 1, got %d", i+1, s.Level)
		}
	}
}

func TestBuild_StartPagesNonDecreasing(t *testing.T) {
	sections := Build([]doc.ClassifiedBlock{
		heading(1, "A"),
		para(2, "a"),
		heading(2, "B"),
		para(3, "b"),
		heading(7, "C"),
		para(9, "c"),
	})

	for i := 1; i < len(sections); i++ {
		if sections[i].StartPage < sections[i-1].StartPage {
			t.Errorf("section %d start_page %d < previous %d", i, sections[i].StartPage, sections[i-1].StartPage)
		}
		if sections[i-1].EndPage != sections[i].StartPage && i > 0 {
			// Contiguity: a section closes on the page its successor opens.
			t.Errorf("section %d end_page %d != section %d start_page %d",
				i-1, sections[i-1].EndPage, i, sections[i].StartPage)
		}
	}
}
