// Package trace records the positions a binary parser visited while
// backtracking out of a failed parse, and renders the result as an
// annotated hexdump. A naive parser reports only the shallowest error;
// keeping the whole trace lets the report point at every byte offset the
// parse gave up on, from the deepest primitive up to the outermost section.
package trace

import "slices"

// Span locates a failure inside the original input buffer. Start is the
// byte offset at which the failing attempt began; End is the end of the
// input view the parser held at that point. A zero-length span sitting
// exactly at the end of the buffer is valid and means "ran out of input
// here". Spans borrow into the buffer; they carry no bytes of their own.
type Span struct {
	Start int
	End   int
}

// Len returns the number of bytes the span covers.
func (s Span) Len() int { return s.End - s.Start }

// Kind classifies why a parsing primitive failed. Kinds are recorded in the
// trace for completeness but kept out of the default report; the Context
// labels are what a reader acts on.
type Kind int

const (
	KindTake Kind = iota // not enough bytes left to consume
	KindTag              // literal byte sequence did not match
	KindByte             // single expected byte did not match
	KindUint             // not enough bytes for a fixed-width integer
	KindAlt              // every alternative was exhausted
	KindEof              // input not fully consumed
)

func (k Kind) String() string {
	switch k {
	case KindTake:
		return "Take"
	case KindTag:
		return "Tag"
	case KindByte:
		return "Byte"
	case KindUint:
		return "Uint"
	case KindAlt:
		return "Alt"
	case KindEof:
		return "Eof"
	}
	return "Unknown"
}

// Annotation describes one recorded failure: either a Context label added by
// a wrapping combinator, or a Raw classifier emitted by a primitive.
type Annotation interface {
	String() string
	annotation()
}

// Context is a human-readable label attached by the context combinator,
// describing what the enclosing layer was attempting.
type Context string

func (c Context) String() string { return string(c) }
func (Context) annotation()      {}

// Raw is the classifier a primitive reports on its own, with no
// human-authored label attached.
type Raw Kind

func (r Raw) String() string { return Kind(r).String() }
func (Raw) annotation()      {}

// Entry is one recorded failure point. Entries are immutable once created.
type Entry struct {
	Span Span
	Ann  Annotation
}

// Trace is the ordered record of failure points gathered while unwinding a
// parse attempt: the innermost failure first, each enclosing context after
// it. A trace returned from a failing parser is never empty.
type Trace []Entry

// New seeds a trace with its first entry. The innermost failing primitive
// calls this; everything above it appends.
func New(span Span, ann Annotation) Trace {
	return Trace{{Span: span, Ann: ann}}
}

// Append returns the trace grown by one entry. The receiver is not
// modified, so each layer of the parse tree can hold its own value without
// sharing state with siblings. Entries are never removed or reordered.
func (t Trace) Append(span Span, ann Annotation) Trace {
	return append(slices.Clip(t), Entry{Span: span, Ann: ann})
}

// Equal reports whether two traces hold the same entries in the same order.
func (t Trace) Equal(other Trace) bool {
	if len(t) != len(other) {
		return false
	}
	for i := range t {
		if t[i] != other[i] {
			return false
		}
	}
	return true
}

// Clone returns an independent copy of the trace.
func (t Trace) Clone() Trace {
	return slices.Clone(t)
}
