// Package section groups classified blocks into a flat ordered sequence
// of heading-delimited sections.
package section

import (
	"fmt"

	"github.com/OuyangRuyi/pdf-reader/internal/doc"
)

// RootTitle is the title given to the implicit section covering all
// blocks before the first heading.
const RootTitle = "Document Start"

// Build scans the classified blocks in order and emits sections. The
// hierarchy is flat: every heading opens a level-1 section, the implicit
// root section is level 0. Build never fails; empty input yields a
// single degenerate root section covering page 1.
func Build(blocks []doc.ClassifiedBlock) []doc.Section {
	var sections []doc.Section
	current := doc.Section{
		ID:        doc.RootSectionID,
		Title:     RootTitle,
		Level:     0,
		StartPage: 1,
	}

	for _, b := range blocks {
		if b.Type != doc.Heading {
			continue
		}
		current.EndPage = b.Page
		sections = append(sections, current)
		current = doc.Section{
			ID:        fmt.Sprintf("sec_%d", len(sections)),
			Title:     b.Text,
			Level:     1,
			StartPage: b.Page,
		}
	}

	if len(blocks) > 0 {
		current.EndPage = blocks[len(blocks)-1].Page
	} else {
		current.EndPage = 1
	}
	sections = append(sections, current)
	return sections
}
