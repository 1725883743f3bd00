package blocksource

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/OuyangRuyi/pdf-reader/internal/doc"
)

// CSVSource handles CSV files. Rows are grouped into batches so one
// block stays within a sensible size for chunking and retrieval.
type CSVSource struct{}

const csvBatchSize = 20

func (s *CSVSource) Blocks(r io.Reader, filename string) ([]doc.Block, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	headers := records[0]
	dataRows := records[1:]

	var blocks []doc.Block
	for i := 0; i < len(dataRows); i += csvBatchSize {
		end := i + csvBatchSize
		if end > len(dataRows) {
			end = len(dataRows)
		}

		var text strings.Builder
		text.WriteString("Headers: " + strings.Join(headers, ", ") + "\n")
		for _, row := range dataRows[i:end] {
			for j, cell := range row {
				if j < len(headers) {
					text.WriteString(headers[j] + ": " + cell)
				} else {
					text.WriteString(cell)
				}
				if j < len(row)-1 {
					text.WriteString(", ")
				}
			}
			text.WriteString("\n")
		}

		blocks = append(blocks, doc.Block{
			Page:  1,
			Text:  strings.TrimSpace(text.String()),
			Order: len(blocks),
		})
	}
	return blocks, nil
}
