// Package scan provides the small combinator layer the class-file parser is
// written against. A Parser consumes an Input by value and either returns
// the remaining input with a result, or fails with an *Error carrying a
// trace.Trace of every position the parse backed out of. Nothing here does
// I/O; the whole buffer is in memory before parsing starts.
package scan

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/dhamidi/bintrace/trace"
)

// Input is a read-only cursor into the buffer being parsed. It is passed
// and returned by value; the underlying buffer is never copied or mutated.
type Input struct {
	buf []byte
	off int
}

// NewInput wraps a buffer for parsing, positioned at its start.
func NewInput(data []byte) Input {
	return Input{buf: data}
}

// Offset returns the cursor position from the start of the buffer.
func (in Input) Offset() int { return in.off }

// Len returns the number of unread bytes.
func (in Input) Len() int { return len(in.buf) - in.off }

// Bytes returns the unread portion of the buffer. Callers must not modify
// the returned slice.
func (in Input) Bytes() []byte { return in.buf[in.off:] }

// Pos is the span of the unread input, used to stamp trace entries.
func (in Input) Pos() trace.Span {
	return trace.Span{Start: in.off, End: len(in.buf)}
}

func (in Input) advance(n int) Input {
	return Input{buf: in.buf, off: in.off + n}
}

// Error is the failure value produced by parsers. Fatal marks failures that
// must not be retried by Alt: an enclosing alternation propagates them
// instead of trying sibling branches.
type Error struct {
	Trace trace.Trace
	Fatal bool
}

// Error summarizes the failure in one line using the most specific context
// label available. The full story is in Trace; render it with trace.Render.
func (e *Error) Error() string {
	for _, entry := range e.Trace {
		if _, ok := entry.Ann.(trace.Context); ok {
			return fmt.Sprintf("parse error at offset %#x: %s", entry.Span.Start, entry.Ann)
		}
	}
	first := e.Trace[0]
	return fmt.Sprintf("parse error at offset %#x: in %s", first.Span.Start, first.Ann)
}

// Parser consumes input and produces a value. On failure it returns the
// input unchanged and an *Error.
type Parser[T any] func(Input) (Input, T, error)

func fail(in Input, kind trace.Kind) error {
	return &Error{Trace: trace.New(in.Pos(), trace.Raw(kind))}
}

// Errorf builds a recoverable failure seeded with a formatted context
// label, for validation failures that no primitive classifier describes.
func Errorf(in Input, format string, args ...any) error {
	return &Error{Trace: trace.New(in.Pos(), trace.Context(fmt.Sprintf(format, args...)))}
}

// Fatalf is Errorf for failures that must abort the whole alternation.
func Fatalf(in Input, format string, args ...any) error {
	return &Error{
		Trace: trace.New(in.Pos(), trace.Context(fmt.Sprintf(format, args...))),
		Fatal: true,
	}
}

// Take consumes exactly n bytes.
func Take(n int) Parser[[]byte] {
	return func(in Input) (Input, []byte, error) {
		if in.Len() < n {
			return in, nil, fail(in, trace.KindTake)
		}
		return in.advance(n), in.buf[in.off : in.off+n], nil
	}
}

// Byte consumes one byte and requires it to equal b.
func Byte(b byte) Parser[byte] {
	return func(in Input) (Input, byte, error) {
		if in.Len() < 1 || in.buf[in.off] != b {
			return in, 0, fail(in, trace.KindByte)
		}
		return in.advance(1), b, nil
	}
}

// Tag consumes len(tag) bytes and requires them to match tag exactly.
func Tag(tag []byte) Parser[[]byte] {
	return func(in Input) (Input, []byte, error) {
		if in.Len() < len(tag) || !bytes.Equal(in.buf[in.off:in.off+len(tag)], tag) {
			return in, nil, fail(in, trace.KindTag)
		}
		return in.advance(len(tag)), in.buf[in.off : in.off+len(tag)], nil
	}
}

// U8 consumes a single byte.
func U8(in Input) (Input, uint8, error) {
	if in.Len() < 1 {
		return in, 0, fail(in, trace.KindUint)
	}
	return in.advance(1), in.buf[in.off], nil
}

// U16 consumes a big-endian 16-bit integer.
func U16(in Input) (Input, uint16, error) {
	if in.Len() < 2 {
		return in, 0, fail(in, trace.KindUint)
	}
	return in.advance(2), binary.BigEndian.Uint16(in.Bytes()), nil
}

// U32 consumes a big-endian 32-bit integer.
func U32(in Input) (Input, uint32, error) {
	if in.Len() < 4 {
		return in, 0, fail(in, trace.KindUint)
	}
	return in.advance(4), binary.BigEndian.Uint32(in.Bytes()), nil
}

// U64 consumes a big-endian 64-bit integer.
func U64(in Input) (Input, uint64, error) {
	if in.Len() < 8 {
		return in, 0, fail(in, trace.KindUint)
	}
	return in.advance(8), binary.BigEndian.Uint64(in.Bytes()), nil
}

// U16LE consumes a little-endian 16-bit integer.
func U16LE(in Input) (Input, uint16, error) {
	if in.Len() < 2 {
		return in, 0, fail(in, trace.KindUint)
	}
	return in.advance(2), binary.LittleEndian.Uint16(in.Bytes()), nil
}

// U32LE consumes a little-endian 32-bit integer.
func U32LE(in Input) (Input, uint32, error) {
	if in.Len() < 4 {
		return in, 0, fail(in, trace.KindUint)
	}
	return in.advance(4), binary.LittleEndian.Uint32(in.Bytes()), nil
}

// Map applies f to the result of p.
func Map[T, U any](p Parser[T], f func(T) U) Parser[U] {
	return func(in Input) (Input, U, error) {
		rest, v, err := p(in)
		if err != nil {
			var zero U
			return in, zero, err
		}
		return rest, f(v), nil
	}
}

// Count runs p exactly n times and collects the results.
func Count[T any](p Parser[T], n int) Parser[[]T] {
	return func(in Input) (Input, []T, error) {
		out := make([]T, 0, n)
		rest := in
		for i := 0; i < n; i++ {
			var (
				v   T
				err error
			)
			rest, v, err = p(rest)
			if err != nil {
				return in, nil, err
			}
			out = append(out, v)
		}
		return rest, out, nil
	}
}

// Alt tries each parser in turn at the same position, backtracking on
// recoverable failures. A fatal failure aborts immediately with no further
// branches tried. When every branch fails, the last branch's trace gains an
// Alt classifier entry at the alternation start.
func Alt[T any](parsers ...Parser[T]) Parser[T] {
	return func(in Input) (Input, T, error) {
		var (
			zero T
			last *Error
		)
		for _, p := range parsers {
			rest, v, err := p(in)
			if err == nil {
				return rest, v, nil
			}
			perr := err.(*Error)
			if perr.Fatal {
				return in, zero, perr
			}
			last = perr
		}
		if last == nil {
			return in, zero, fail(in, trace.KindAlt)
		}
		last.Trace = last.Trace.Append(in.Pos(), trace.Raw(trace.KindAlt))
		return in, zero, last
	}
}

// Fatal converts a recoverable failure of p into a fatal one, so an
// enclosing Alt commits to this branch instead of trying siblings.
func Fatal[T any](p Parser[T]) Parser[T] {
	return func(in Input) (Input, T, error) {
		rest, v, err := p(in)
		if err != nil {
			perr := err.(*Error)
			perr.Fatal = true
			return in, v, perr
		}
		return rest, v, nil
	}
}

// Eof succeeds only when the input is fully consumed.
func Eof(in Input) (Input, struct{}, error) {
	if in.Len() != 0 {
		return in, struct{}{}, fail(in, trace.KindEof)
	}
	return in, struct{}{}, nil
}
