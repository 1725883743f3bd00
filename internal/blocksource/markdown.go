package blocksource

import (
	"bytes"
	"io"
	"strings"

	"github.com/OuyangRuyi/pdf-reader/internal/doc"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// MarkdownSource turns markdown into marker-style blocks: headings keep
// their "#" prefix and list items their bullet, so the classifier's
// metadata-free mode can recover the structure. Markdown has no pages;
// every block reports page 1.
type MarkdownSource struct{}

func (s *MarkdownSource) Blocks(r io.Reader, filename string) ([]doc.Block, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	md := goldmark.New()
	reader := text.NewReader(src)
	root := md.Parser().Parse(reader)

	var blocks []doc.Block
	order := 0
	appendBlock := func(text string) {
		text = strings.TrimSpace(text)
		if text == "" {
			return
		}
		blocks = append(blocks, doc.Block{Page: 1, Text: text, Order: order})
		order++
	}

	for n := root.FirstChild(); n != nil; n = n.NextSibling() {
		switch node := n.(type) {
		case *ast.Heading:
			title := string(node.Text(src))
			appendBlock(strings.Repeat("#", node.Level) + " " + title)
		case *ast.List:
			for item := node.FirstChild(); item != nil; item = item.NextSibling() {
				appendBlock("- " + nodeText(item, src))
			}
		default:
			appendBlock(nodeText(n, src))
		}
	}
	return blocks, nil
}

// nodeText gets the text content of a goldmark AST node.
func nodeText(n ast.Node, src []byte) string {
	var buf bytes.Buffer
	if n.Type() == ast.TypeBlock {
		lines := n.Lines()
		for i := 0; i < lines.Len(); i++ {
			line := lines.At(i)
			buf.Write(line.Value(src))
		}
	}
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if t, ok := c.(*ast.Text); ok {
			buf.Write(t.Value(src))
			if t.HardLineBreak() || t.SoftLineBreak() {
				buf.WriteByte('\n')
			}
		} else {
			buf.WriteString(nodeText(c, src))
		}
	}
	return strings.TrimSpace(buf.String())
}
