package trace

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
)

const caret = "^---"

var (
	headerColor = color.New(color.FgRed, color.Bold)
	caretColor  = color.New(color.FgYellow, color.Bold)
)

// Options selects the parts of a report that are off by default.
type Options struct {
	// Raw also renders entries that carry only a primitive classifier.
	// These are rarely meaningful without a human label, so the default
	// report hides them.
	Raw bool

	// Color highlights the header and caret lines with ANSI colors.
	Color bool
}

// Render formats a completed trace against the buffer the parse consumed.
// It must be the same buffer the spans were derived from, since offsets are
// resolved relative to its start. Rendering never fails.
//
// Each entry becomes a block: a header naming the byte offset and the
// context label, a 16-byte hexdump row containing the offset, and a caret
// marking the exact byte. Blocks appear in trace order, so the report reads
// from the deepest cause down to the outermost context:
//
//	0: at offset 0x11, field `count`:
//	00000010: 1011 1213 1415 1617 1819 1a1b 1c1d 1e1f  ................
//	              ^---
func Render(input []byte, t Trace) string {
	return RenderWith(input, t, Options{})
}

// RenderWith is Render with non-default Options.
func RenderWith(input []byte, t Trace, opts Options) string {
	var b strings.Builder

	for i, e := range t {
		offset := e.Span.Start

		if len(input) == 0 {
			fmt.Fprintf(&b, "%d: in %s, got empty input\n\n", i, e.Ann)
			continue
		}

		var header string
		switch e.Ann.(type) {
		case Context:
			header = fmt.Sprintf("%d: at offset %#x, %s:", i, offset, e.Ann)
		case Raw:
			if !opts.Raw {
				continue
			}
			header = fmt.Sprintf("%d: at offset %#x, in %s:", i, offset, e.Ann)
		}

		// The row is the 16-byte aligned window containing the offset.
		lineBegin := offset - offset%16
		line := hexLine(input, lineBegin)

		// Caret column: 10 for the row header, 4 for the caret itself,
		// 5 columns per hex pair plus 2 for the odd byte of a pair.
		column := 10 + len(caret) + offset%16/2*5 + offset%16%2*2
		pad := strings.Repeat(" ", column-len(caret))

		mark := caret
		if opts.Color {
			header = headerColor.Sprint(header)
			mark = caretColor.Sprint(caret)
		}

		fmt.Fprintf(&b, "%s\n%s\n%s%s\n\n", header, line, pad, mark)
	}

	return b.String()
}

// hexLine renders the single 16-byte row starting at lineBegin, which must
// be 16-byte aligned and at most len(input):
//
//	00000000: 0000 0000 0000 0000 0000 0000 0000 0000  ................
//
// Columns past the end of the buffer are padded with spaces in the hex
// panel and omitted from the ASCII panel.
func hexLine(input []byte, lineBegin int) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%08x:", lineBegin)

	for i := 0; i < 16; i++ {
		if i%2 == 0 {
			b.WriteByte(' ')
		}
		if lineBegin+i < len(input) {
			fmt.Fprintf(&b, "%02x", input[lineBegin+i])
		} else {
			b.WriteString("  ")
		}
	}

	b.WriteString("  ")

	for i := 0; i < 16 && lineBegin+i < len(input); i++ {
		c := input[lineBegin+i]
		if c >= '!' && c <= '~' || c == ' ' {
			b.WriteByte(c)
		} else {
			b.WriteByte('.')
		}
	}

	return b.String()
}

// Hexdump renders the whole buffer as 16-byte rows in the same layout the
// trace report uses.
func Hexdump(data []byte) string {
	var b strings.Builder
	for off := 0; off < len(data); off += 16 {
		b.WriteString(hexLine(data, off))
		b.WriteByte('\n')
	}
	return b.String()
}
