// Package receipt decodes the nested print-data stream carried by a
// confirmation response into branded, PAN-masked print lines.
package receipt

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/danmuck/tkpay/internal/pan"
	"github.com/danmuck/tkpay/internal/protocol/tlv"
)

// Sub-tags inside the print-data value.
const (
	SubTagLineNumber = "001"
	SubTagFormat     = "002"
	SubTagAlignment  = "003"
	SubTagContent    = "004"
)

// Format codes carried by SubTagFormat.
const (
	FormatBold     = "G"
	FormatStandard = "S"
)

// Alignment codes carried by SubTagAlignment. These share letters with the
// format codes but are a separate enumeration.
const (
	AlignCodeLeft   = "G"
	AlignCodeCenter = "C"
	AlignCodeRight  = "D"
)

const maxLineNumber = 99

const (
	BrandMarker   = "NAPS"
	BrandHeader   = "TKPAY"
	BrandSubtitle = "Powered by NAPS"
)

type Type string

const (
	Merchant Type = "MERCHANT"
	Customer Type = "CUSTOMER"
)

type Alignment string

const (
	Left   Alignment = "LEFT"
	Center Alignment = "CENTER"
	Right  Alignment = "RIGHT"
)

// Line is one printable receipt line.
type Line struct {
	Number    string    `json:"line_number"`
	Text      string    `json:"text"`
	Bold      bool      `json:"bold"`
	Alignment Alignment `json:"alignment"`
}

// Receipt is one view over the print data.
type Receipt struct {
	Type  Type   `json:"type"`
	Lines []Line `json:"lines"`
}

// Parse builds the t view of printData. Merchant and customer views are
// currently rendered from the same lines.
func Parse(printData string, t Type) Receipt {
	lines := brand(scanLines(printData))
	for i := range lines {
		lines[i].Text = pan.MaskAll(lines[i].Text)
	}
	return Receipt{Type: t, Lines: lines}
}

type pendingLine struct {
	number    string
	format    string
	alignment string
	text      string
}

func newPending(number string) pendingLine {
	return pendingLine{number: number, format: FormatStandard, alignment: AlignCodeLeft}
}

func (p pendingLine) ready() bool {
	return p.number != "" && p.text != ""
}

func (p pendingLine) line() Line {
	return Line{
		Number:    p.number,
		Text:      p.text,
		Bold:      p.format == FormatBold,
		Alignment: alignmentFromCode(p.alignment),
	}
}

func scanLines(printData string) []Line {
	lines := make([]Line, 0, 16)
	cur := newPending("")
	for _, f := range tlv.SplitFields([]byte(printData)) {
		switch f.Tag {
		case SubTagLineNumber:
			if cur.ready() {
				lines = append(lines, cur.line())
			}
			cur = newPending(f.Value)
		case SubTagFormat:
			cur.format = f.Value
		case SubTagAlignment:
			cur.alignment = f.Value
		case SubTagContent:
			cur.text = f.Value
		}
	}
	if cur.ready() {
		lines = append(lines, cur.line())
	}
	return lines
}

func alignmentFromCode(code string) Alignment {
	switch code {
	case AlignCodeCenter:
		return Center
	case AlignCodeRight:
		return Right
	default:
		return Left
	}
}

// brand swaps the first centered line mentioning the terminal brand for the
// two-line TKPAY block.
func brand(lines []Line) []Line {
	marker := strings.ToLower(BrandMarker)
	for i, l := range lines {
		if l.Alignment != Center || !strings.Contains(strings.ToLower(l.Text), marker) {
			continue
		}
		out := make([]Line, 0, len(lines)+1)
		out = append(out, lines[:i]...)
		out = append(out,
			Line{Number: l.Number, Text: BrandHeader, Bold: true, Alignment: Center},
			Line{Number: nextLineNumber(l.Number), Text: BrandSubtitle, Alignment: Center},
		)
		out = append(out, lines[i+1:]...)
		return out
	}
	return lines
}

// nextLineNumber keeps n when it is unparseable or already the last
// two-digit number.
func nextLineNumber(n string) string {
	v, err := strconv.Atoi(n)
	if err != nil || v >= maxLineNumber {
		return n
	}
	return fmt.Sprintf("%02d", v+1)
}
