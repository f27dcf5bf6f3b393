package graph

import (
	"strings"

	"github.com/rivo/uniseg"
)

// SplitLabel wraps text into lines of at most max grapheme clusters,
// breaking at spaces where possible and inside words that are longer than
// a line.
func SplitLabel(text string, max int) []string {
	if max <= 0 || uniseg.GraphemeClusterCount(text) <= max {
		return []string{text}
	}

	var lines []string
	var line strings.Builder
	width := 0

	flush := func() {
		if width > 0 {
			lines = append(lines, line.String())
			line.Reset()
			width = 0
		}
	}

	for _, word := range strings.Fields(text) {
		w := uniseg.GraphemeClusterCount(word)
		if width > 0 && width+1+w <= max {
			line.WriteByte(' ')
			line.WriteString(word)
			width += 1 + w
			continue
		}
		flush()
		if w <= max {
			line.WriteString(word)
			width = w
			continue
		}

		gr := uniseg.NewGraphemes(word)
		for gr.Next() {
			if width == max {
				flush()
			}
			line.WriteString(gr.Str())
			width++
		}
	}
	flush()
	return lines
}
