package blocksource

import (
	"bufio"
	"io"
	"strings"

	"github.com/OuyangRuyi/pdf-reader/internal/doc"
)

// TextSource handles plain text files. Paragraphs are separated by
// blank lines; each becomes one block on page 1.
type TextSource struct{}

func (s *TextSource) Blocks(r io.Reader, filename string) ([]doc.Block, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var blocks []doc.Block
	var current strings.Builder
	flush := func() {
		if current.Len() == 0 {
			return
		}
		blocks = append(blocks, doc.Block{
			Page:  1,
			Text:  current.String(),
			Order: len(blocks),
		})
		current.Reset()
	}

	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			flush()
			continue
		}
		if current.Len() > 0 {
			current.WriteString("\n")
		}
		current.WriteString(line)
	}
	flush()

	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return blocks, nil
}
