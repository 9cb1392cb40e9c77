package receipt

import (
	"strings"
	"unicode/utf8"
)

const DefaultWidth = 40

// Text renders the receipt as plain text lines padded to width. Bold lines
// are upper-cased.
func (r Receipt) Text(width int) string {
	if width <= 0 {
		width = DefaultWidth
	}
	var b strings.Builder
	for _, l := range r.Lines {
		text := l.Text
		if l.Bold {
			text = strings.ToUpper(text)
		}
		if utf8.RuneCountInString(text) > width {
			text = string([]rune(text)[:width])
		}
		pad := width - utf8.RuneCountInString(text)
		switch l.Alignment {
		case Center:
			b.WriteString(strings.Repeat(" ", pad/2))
		case Right:
			b.WriteString(strings.Repeat(" ", pad))
		}
		b.WriteString(text)
		b.WriteByte('\n')
	}
	return b.String()
}
