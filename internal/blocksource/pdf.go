package blocksource

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/OuyangRuyi/pdf-reader/internal/doc"
	pdflib "github.com/ledongthuc/pdf"
)

// PDFSource extracts row-level text blocks from PDF files, carrying the
// font size and boldness of each text fragment so the classifier can
// run its font-statistics mode.
type PDFSource struct{}

func (s *PDFSource) Blocks(r io.Reader, filename string) ([]doc.Block, error) {
	// ledongthuc/pdf requires a ReadSeeker+size, so we write to a temp file.
	tmp, err := os.CreateTemp("", "pdfreader-*.pdf")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("write temp file: %w", err)
	}
	tmp.Close()

	f, reader, err := pdflib.Open(tmpPath)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	var blocks []doc.Block
	order := 0
	numPages := reader.NumPage()
	for pageNum := 1; pageNum <= numPages; pageNum++ {
		page := reader.Page(pageNum)
		if page.V.IsNull() {
			continue
		}
		rows, err := page.GetTextByRow()
		if err != nil {
			continue
		}
		for _, row := range rows {
			b, ok := rowBlock(row, pageNum, order)
			if !ok {
				continue
			}
			blocks = append(blocks, b)
			order++
		}
	}
	return blocks, nil
}

// rowBlock merges one text row into a block. Consecutive fragments with
// the same font collapse into a single span.
func rowBlock(row *pdflib.Row, pageNum, order int) (doc.Block, bool) {
	var sb strings.Builder
	var spans []doc.Span
	minX, maxX := 0.0, 0.0
	maxSize := 0.0
	first := true

	for _, t := range row.Content {
		sb.WriteString(t.S)
		span := doc.Span{
			Size: t.FontSize,
			Bold: strings.Contains(t.Font, "Bold"),
		}
		if len(spans) == 0 || spans[len(spans)-1] != span {
			spans = append(spans, span)
		}
		if first || t.X < minX {
			minX = t.X
		}
		if first || t.X+t.W > maxX {
			maxX = t.X + t.W
		}
		if t.FontSize > maxSize {
			maxSize = t.FontSize
		}
		first = false
	}

	text := strings.TrimSpace(sb.String())
	if text == "" {
		return doc.Block{}, false
	}
	y := float64(row.Position)
	return doc.Block{
		Page:  pageNum,
		Text:  text,
		Order: order,
		BBox:  doc.Rect{minX, y, maxX, y + maxSize},
		Spans: spans,
	}, true
}
