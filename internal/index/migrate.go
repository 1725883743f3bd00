package index

import (
	"encoding/json"
	"fmt"

	"github.com/OuyangRuyi/pdf-reader/internal/doc"
)

// Earlier index files stored chunks in looser shapes: a bare string, a
// [text, start, end] array, or an object without structural metadata.
// Migrate parses any stored version into the current in-memory form.
// The file on disk is left untouched.
func Migrate(data []byte) (*doc.DocumentIndex, error) {
	var raw struct {
		DocID      string            `json:"doc_id"`
		Chunks     []json.RawMessage `json:"chunks"`
		Embeddings [][]float64       `json:"embeddings"`
		Sections   []doc.Section     `json:"sections"`
		Model      string            `json:"model"`
		Version    string            `json:"version"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse index: %w", err)
	}

	chunks := make([]doc.Chunk, 0, len(raw.Chunks))
	for i, rc := range raw.Chunks {
		c, err := migrateChunk(rc)
		if err != nil {
			return nil, fmt.Errorf("chunk %d: %w", i, err)
		}
		chunks = append(chunks, c)
	}

	return &doc.DocumentIndex{
		DocID:      raw.DocID,
		Chunks:     chunks,
		Embeddings: raw.Embeddings,
		Sections:   raw.Sections,
		Model:      raw.Model,
		Version:    CurrentVersion,
	}, nil
}

func migrateChunk(raw json.RawMessage) (doc.Chunk, error) {
	// Oldest format: the chunk is just its text.
	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		return doc.Chunk{
			Text:  text,
			Type:  doc.Paragraph,
			Start: -1,
			End:   -1,
		}, nil
	}

	// Middle format: [text, start, end] with offsets into the full text.
	var tuple []json.RawMessage
	if err := json.Unmarshal(raw, &tuple); err == nil {
		if len(tuple) != 3 {
			return doc.Chunk{}, fmt.Errorf("chunk array has %d elements, expected 3", len(tuple))
		}
		var (
			t          string
			start, end int
		)
		if err := json.Unmarshal(tuple[0], &t); err != nil {
			return doc.Chunk{}, fmt.Errorf("chunk array text: %w", err)
		}
		if err := json.Unmarshal(tuple[1], &start); err != nil {
			return doc.Chunk{}, fmt.Errorf("chunk array start: %w", err)
		}
		if err := json.Unmarshal(tuple[2], &end); err != nil {
			return doc.Chunk{}, fmt.Errorf("chunk array end: %w", err)
		}
		return doc.Chunk{
			Text:  t,
			Type:  doc.Paragraph,
			Start: start,
			End:   end,
		}, nil
	}

	// Object format, possibly missing the structural fields added later.
	var obj struct {
		Text         string        `json:"text"`
		Chunk        string        `json:"chunk"`
		Page         int           `json:"page"`
		BBox         doc.Rect      `json:"bbox"`
		Type         doc.BlockType `json:"type"`
		SectionID    string        `json:"section_id"`
		SectionTitle string        `json:"section_title"`
		Start        *int          `json:"start"`
		End          *int          `json:"end"`
	}
	if err := json.Unmarshal(raw, &obj); err != nil {
		return doc.Chunk{}, fmt.Errorf("unrecognized chunk shape: %w", err)
	}

	c := doc.Chunk{
		Text:         obj.Text,
		Page:         obj.Page,
		BBox:         obj.BBox,
		Type:         obj.Type,
		SectionID:    obj.SectionID,
		SectionTitle: obj.SectionTitle,
		Start:        -1,
		End:          -1,
	}
	if c.Text == "" {
		c.Text = obj.Chunk
	}
	if c.Type == "" {
		c.Type = doc.Paragraph
	}
	if obj.Start != nil {
		c.Start = *obj.Start
	}
	if obj.End != nil {
		c.End = *obj.End
	}
	return c, nil
}
