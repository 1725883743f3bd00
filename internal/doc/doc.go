// Package doc holds the shared document data model: positional text
// blocks as produced by a document source, their classified form, and
// the section/chunk/index shapes built from them.
package doc

// Rect is an axis-aligned bounding box in page coordinates.
type Rect [4]float64

// Span is a run of text with uniform font metadata within a block.
type Span struct {
	Size float64 `json:"size"`
	Bold bool    `json:"bold"`
}

// Block is a positional text block extracted from one page of a document.
// Blocks are ordered by original document position.
type Block struct {
	Page  int    `json:"page"`
	Text  string `json:"text"`
	Order int    `json:"order"`
	BBox  Rect   `json:"bbox"`
	Spans []Span `json:"spans,omitempty"`
}

// BlockType classifies the structural role of a block.
type BlockType string

const (
	Heading   BlockType = "heading"
	Paragraph BlockType = "paragraph"
	Caption   BlockType = "caption"
	ListItem  BlockType = "list_item"
)

// ClassifiedBlock is a Block with its inferred type and dominant font size.
type ClassifiedBlock struct {
	Block
	Type     BlockType `json:"type"`
	FontSize float64   `json:"font_size"`
}

// Section is a heading-delimited region of a document. Sections are
// ordered and contiguous; the first section (id "root") covers all
// blocks before the first heading.
type Section struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Level     int    `json:"level"`
	StartPage int    `json:"start_page"`
	EndPage   int    `json:"end_page"`
}

// RootSectionID is the id of the implicit first section.
const RootSectionID = "root"

// Chunk is a bounded span of document text tagged with structural
// metadata, the unit of embedding and retrieval. Start/End carry
// character offsets into the document full text for legacy indices;
// chunks built from structural blocks use -1 for both.
type Chunk struct {
	Text         string    `json:"text"`
	Page         int       `json:"page"`
	BBox         Rect      `json:"bbox"`
	Type         BlockType `json:"type"`
	SectionID    string    `json:"section_id"`
	SectionTitle string    `json:"section_title"`
	Start        int       `json:"start"`
	End          int       `json:"end"`
}

// HasSpan reports whether the chunk carries a valid [Start,End) offset
// into the document full text.
func (c Chunk) HasSpan() bool {
	return c.Start >= 0 && c.End > c.Start
}

// DocumentIndex is the persisted unit of one document's chunks, vectors
// and sections. len(Chunks) == len(Embeddings) always; Embeddings[i] is
// the vector for Chunks[i].
type DocumentIndex struct {
	DocID      string      `json:"doc_id"`
	Chunks     []Chunk     `json:"chunks"`
	Embeddings [][]float64 `json:"embeddings"`
	Sections   []Section   `json:"sections"`
	Model      string      `json:"model"`
	Version    string      `json:"version"`
}
