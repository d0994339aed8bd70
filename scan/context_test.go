package scan

import (
	"fmt"
	"testing"

	"github.com/dhamidi/bintrace/trace"
)

func TestContextTransparentOnSuccess(t *testing.T) {
	evaluations := 0
	label := func() string {
		evaluations++
		return "never seen"
	}

	in := NewInput([]byte{0x01, 0x02})
	rest, v, err := Context(label, Parser[uint8](U8))(in)
	if err != nil {
		t.Fatalf("wrapped parser failed: %v", err)
	}
	if v != 0x01 || rest.Offset() != 1 {
		t.Errorf("result = %#x at offset %d, want 0x1 at 1", v, rest.Offset())
	}
	if evaluations != 0 {
		t.Errorf("label evaluated %d times on the success path, want 0", evaluations)
	}
}

func TestContextRecordsPreAttemptPosition(t *testing.T) {
	// The inner parser consumes two bytes before running out of input; the
	// context entry must point at where the annotated attempt began, not
	// at the deeper failure.
	inner := func(in Input) (Input, []byte, error) {
		in, _, err := U16(in)
		if err != nil {
			return in, nil, err
		}
		return Take(10)(in)
	}

	in := NewInput([]byte{0x00, 0x01, 0x02, 0x03})
	_, _, err := Context(Msg("record"), Parser[[]byte](inner))(in)
	perr := parseErr(t, err)

	if len(perr.Trace) != 2 {
		t.Fatalf("trace has %d entries, want 2", len(perr.Trace))
	}
	if perr.Trace[0].Ann != trace.Raw(trace.KindTake) {
		t.Errorf("innermost entry = %v, want Raw(KindTake)", perr.Trace[0].Ann)
	}
	if perr.Trace[0].Span.Start != 2 {
		t.Errorf("innermost failure at %d, want 2", perr.Trace[0].Span.Start)
	}
	if perr.Trace[1].Ann != trace.Context("record") {
		t.Errorf("context entry = %v, want Context(record)", perr.Trace[1].Ann)
	}
	if perr.Trace[1].Span.Start != 0 {
		t.Errorf("context recorded at %d, want the pre-attempt position 0", perr.Trace[1].Span.Start)
	}
}

func TestContextNesting(t *testing.T) {
	p := Context(Msg("outer"), Context(Msg("inner"), Take(8)))
	_, _, err := p(NewInput([]byte{1, 2}))
	perr := parseErr(t, err)

	want := []trace.Annotation{
		trace.Raw(trace.KindTake),
		trace.Context("inner"),
		trace.Context("outer"),
	}
	if len(perr.Trace) != len(want) {
		t.Fatalf("trace has %d entries, want %d", len(perr.Trace), len(want))
	}
	for i, ann := range want {
		if perr.Trace[i].Ann != ann {
			t.Errorf("entry %d = %v, want %v", i, perr.Trace[i].Ann, ann)
		}
	}
}

func TestContextPreservesFatal(t *testing.T) {
	p := Context(Msg("committed"), Fatal(Tag([]byte{0xFF})))
	_, _, err := p(NewInput([]byte{0x00}))
	perr := parseErr(t, err)
	if !perr.Fatal {
		t.Error("annotation dropped the fatal classification")
	}
	if perr.Trace[len(perr.Trace)-1].Ann != trace.Context("committed") {
		t.Error("fatal failure was not annotated")
	}
}

func TestMsgfIsLazy(t *testing.T) {
	evaluations := 0
	counter := countingStringer{n: &evaluations}

	p := Context(Stringer(counter), Parser[uint8](U8))

	if _, _, err := p(NewInput([]byte{1})); err != nil {
		t.Fatalf("wrapped parser failed: %v", err)
	}
	if evaluations != 0 {
		t.Errorf("String() ran %d times on success, want 0", evaluations)
	}

	_, _, err := p(NewInput(nil))
	perr := parseErr(t, err)
	if evaluations != 1 {
		t.Errorf("String() ran %d times on failure, want 1", evaluations)
	}
	if perr.Trace[1].Ann != trace.Context("stringer 1") {
		t.Errorf("label = %v, want Context(stringer 1)", perr.Trace[1].Ann)
	}
}

type countingStringer struct {
	n *int
}

func (c countingStringer) String() string {
	*c.n++
	return fmt.Sprintf("stringer %d", *c.n)
}

func TestLabelConstructors(t *testing.T) {
	if got := Msg("plain")(); got != "plain" {
		t.Errorf("Msg = %q", got)
	}
	if got := Msgf("field %q (%d bytes)", "count", 4)(); got != `field "count" (4 bytes)` {
		t.Errorf("Msgf = %q", got)
	}
}
