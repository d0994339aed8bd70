package trace

import (
	"strings"
	"testing"
)

func TestRenderContextEntry(t *testing.T) {
	input := make([]byte, 32)
	for i := range input {
		input[i] = byte(i)
	}

	tr := New(Span{Start: 0x11, End: len(input)}, Context("field X"))
	got := Render(input, tr)

	want := "0: at offset 0x11, field X:\n" +
		"00000010: 1011 1213 1415 1617 1819 1a1b 1c1d 1e1f  ................\n" +
		strings.Repeat(" ", 12) + "^---\n\n"
	if got != want {
		t.Errorf("Render() =\n%q\nwant\n%q", got, want)
	}
}

func TestRenderCaretColumns(t *testing.T) {
	// One entry per offset within a row, covering even and odd byte
	// positions plus the zero-length position at the end of the buffer.
	input := make([]byte, 17)
	for i := range input {
		input[i] = byte(i)
	}

	for offset := 0; offset <= 16; offset++ {
		tr := New(Span{Start: offset, End: len(input)}, Context("x"))
		out := Render(input, tr)
		lines := strings.Split(out, "\n")
		if len(lines) < 3 {
			t.Fatalf("offset %d: report has %d lines, want at least 3", offset, len(lines))
		}

		column := 10 + len(caret) + offset%16/2*5 + offset%16%2*2
		want := strings.Repeat(" ", column-len(caret)) + caret
		if lines[2] != want {
			t.Errorf("offset %d: caret line %q, want %q", offset, lines[2], want)
		}
	}
}

func TestRenderEmptyBuffer(t *testing.T) {
	tr := New(Span{}, Raw(KindTake)).Append(Span{}, Context("top level"))
	got := Render(nil, tr)

	want := "0: in Take, got empty input\n\n" +
		"1: in top level, got empty input\n\n"
	if got != want {
		t.Errorf("Render() = %q, want %q", got, want)
	}
}

func TestRenderHidesRawEntries(t *testing.T) {
	input := []byte{0xde, 0xad, 0xbe, 0xef}
	tr := New(Span{0, 4}, Raw(KindTake)).
		Append(Span{1, 4}, Context("a")).
		Append(Span{2, 4}, Raw(KindAlt)).
		Append(Span{3, 4}, Context("b"))

	got := Render(input, tr)
	if n := strings.Count(got, "at offset"); n != 2 {
		t.Errorf("default report has %d blocks, want 2 (raw entries hidden):\n%s", n, got)
	}
	// Skipped entries still consume their index.
	if !strings.Contains(got, "1: at offset 0x1, a:") {
		t.Errorf("report lost the trace index of entry 1:\n%s", got)
	}
	if !strings.Contains(got, "3: at offset 0x3, b:") {
		t.Errorf("report lost the trace index of entry 3:\n%s", got)
	}

	all := RenderWith(input, tr, Options{Raw: true})
	if n := strings.Count(all, "at offset"); n != 4 {
		t.Errorf("raw-enabled report has %d blocks, want 4:\n%s", n, all)
	}
	if !strings.Contains(all, "0: at offset 0x0, in Take:") {
		t.Errorf("raw-enabled report misses the classifier block:\n%s", all)
	}
}

func TestRenderZeroLengthSpanAtEOF(t *testing.T) {
	input := make([]byte, 16)
	tr := New(Span{Start: 16, End: 16}, Context("end of input"))
	got := Render(input, tr)

	want := "0: at offset 0x10, end of input:\n" +
		"00000010:" + strings.Repeat(" ", 42) + "\n" +
		strings.Repeat(" ", 10) + "^---\n\n"
	if got != want {
		t.Errorf("Render() =\n%q\nwant\n%q", got, want)
	}
}

func TestRenderOffsetsMatchSpanStart(t *testing.T) {
	input := make([]byte, 64)
	for _, start := range []int{0, 15, 16, 33, 63, 64} {
		tr := New(Span{Start: start, End: len(input)}, Context("here"))
		out := Render(input, tr)
		header := strings.SplitN(out, "\n", 2)[0]
		want := "0: at offset " + hexLiteral(start) + ", here:"
		if header != want {
			t.Errorf("start %d: header %q, want %q", start, header, want)
		}
	}
}

func hexLiteral(n int) string {
	const digits = "0123456789abcdef"
	if n == 0 {
		return "0x0"
	}
	var out []byte
	for n > 0 {
		out = append([]byte{digits[n%16]}, out...)
		n /= 16
	}
	return "0x" + string(out)
}

func TestHexdump(t *testing.T) {
	data := append([]byte("Hello, World!!!!"), 0x00, 0x01)
	got := Hexdump(data)

	want := "00000000: 4865 6c6c 6f2c 2057 6f72 6c64 2121 2121  Hello, World!!!!\n" +
		"00000010: 0001" + strings.Repeat(" ", 35) + "  ..\n"
	if got != want {
		t.Errorf("Hexdump() =\n%q\nwant\n%q", got, want)
	}

	if Hexdump(nil) != "" {
		t.Error("Hexdump(nil) should be empty")
	}
}
