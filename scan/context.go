package scan

import (
	"fmt"

	"github.com/dhamidi/bintrace/trace"
)

// Label produces the text for a context entry. Labels run only on the
// failure path, so callers can capture whatever the message needs and defer
// the formatting cost; a wrapped parser that succeeds costs nothing.
type Label func() string

// Msg labels with a fixed string.
func Msg(s string) Label {
	return func() string { return s }
}

// Msgf labels with fmt.Sprintf output. The arguments are captured now; the
// formatting happens only if the wrapped parser fails.
func Msgf(format string, args ...any) Label {
	return func() string { return fmt.Sprintf(format, args...) }
}

// Stringer labels with v.String(), called only on failure.
func Stringer(v fmt.Stringer) Label {
	return func() string { return v.String() }
}

// Context wraps p with a human-readable breadcrumb. On success the result
// passes through untouched and the label is never evaluated. On failure the
// label is recorded against the position at which this attempt started, not
// the deeper position where the inner parser gave up, so each trace entry
// reads "while attempting X starting here, parsing failed further in". The
// fatal classification of the inner failure is preserved.
func Context[T any](label Label, p Parser[T]) Parser[T] {
	return func(in Input) (Input, T, error) {
		rest, v, err := p(in)
		if err == nil {
			return rest, v, nil
		}
		perr := err.(*Error)
		perr.Trace = perr.Trace.Append(in.Pos(), trace.Context(label()))
		var zero T
		return in, zero, perr
	}
}
