// Package classify tags raw text blocks as heading, paragraph, caption
// or list item. With font metadata present it uses font-size statistics
// across the whole document; without it (markdown-derived blocks) it
// falls back to text markers.
package classify

import (
	"math"
	"regexp"
	"strings"

	"github.com/OuyangRuyi/pdf-reader/internal/doc"
)

// Config holds the classification thresholds. These are heuristics, not
// fixed laws; boundary values are covered by tests.
type Config struct {
	HeadingZScore        float64 // font size must exceed mean + z*stddev
	BoldHeadingMaxLen    int     // bold text up to this length counts as heading
	PatternHeadingMaxLen int     // pattern-matched text up to this length counts as heading
}

// DefaultConfig returns the thresholds used in production.
func DefaultConfig() Config {
	return Config{
		HeadingZScore:        1.5,
		BoldHeadingMaxLen:    100,
		PatternHeadingMaxLen: 150,
	}
}

var (
	numberedSectionRe = regexp.MustCompile(`^(\d+(\.\d+)*)\s+`)
	keywordSectionRe  = regexp.MustCompile(`(?i)^(Abstract|Introduction|Related Work|Method|Experiments|Conclusion|Results|Discussion|References)`)
)

// Blocks classifies an ordered block sequence. It is a pure function of
// its input and never fails; ambiguous blocks default to paragraph. The
// output has the same length and order as the input.
func Blocks(blocks []doc.Block, cfg Config) []doc.ClassifiedBlock {
	if cfg.HeadingZScore <= 0 {
		cfg.HeadingZScore = 1.5
	}
	if cfg.BoldHeadingMaxLen <= 0 {
		cfg.BoldHeadingMaxLen = 100
	}
	if cfg.PatternHeadingMaxLen <= 0 {
		cfg.PatternHeadingMaxLen = 150
	}

	var sizes []float64
	for _, b := range blocks {
		for _, s := range b.Spans {
			sizes = append(sizes, s.Size)
		}
	}
	if len(sizes) == 0 {
		return classifyByMarkers(blocks)
	}

	mean, stddev := meanStddev(sizes)
	threshold := mean + cfg.HeadingZScore*stddev

	out := make([]doc.ClassifiedBlock, 0, len(blocks))
	for _, b := range blocks {
		maxSize := 0.0
		bold := false
		for _, s := range b.Spans {
			if s.Size > maxSize {
				maxSize = s.Size
			}
			if s.Bold {
				bold = true
			}
		}

		isHeading := false
		switch {
		case maxSize > threshold:
			isHeading = true
		case bold && len(b.Text) < cfg.BoldHeadingMaxLen:
			isHeading = true
		case (numberedSectionRe.MatchString(b.Text) || keywordSectionRe.MatchString(b.Text)) &&
			len(b.Text) < cfg.PatternHeadingMaxLen:
			isHeading = true
		}

		t := doc.Paragraph
		if isHeading {
			t = doc.Heading
		} else if isCaptionText(b.Text) && maxSize < mean {
			t = doc.Caption
		}

		out = append(out, doc.ClassifiedBlock{Block: b, Type: t, FontSize: maxSize})
	}
	return out
}

// classifyByMarkers handles blocks without font metadata, e.g. blocks
// derived from markdown. FontSize is reported as 0 in this mode.
func classifyByMarkers(blocks []doc.Block) []doc.ClassifiedBlock {
	out := make([]doc.ClassifiedBlock, 0, len(blocks))
	for _, b := range blocks {
		t := doc.Paragraph
		trimmed := strings.TrimSpace(b.Text)
		switch {
		case strings.HasPrefix(b.Text, "#"):
			t = doc.Heading
		case isCaptionText(b.Text):
			t = doc.Caption
		case strings.HasPrefix(trimmed, "- "),
			strings.HasPrefix(trimmed, "* "),
			numberedListRe.MatchString(trimmed):
			t = doc.ListItem
		}
		out = append(out, doc.ClassifiedBlock{Block: b, Type: t, FontSize: 0})
	}
	return out
}

var numberedListRe = regexp.MustCompile(`^\d+\.\s`)

func isCaptionText(text string) bool {
	lower := strings.ToLower(text)
	return strings.HasPrefix(lower, "fig") || strings.HasPrefix(lower, "table")
}

func meanStddev(vals []float64) (float64, float64) {
	var sum float64
	for _, v := range vals {
		sum += v
	}
	mean := sum / float64(len(vals))

	var sq float64
	for _, v := range vals {
		d := v - mean
		sq += d * d
	}
	// Population stddev, matching the statistics the thresholds were tuned on.
	return mean, math.Sqrt(sq / float64(len(vals)))
}
