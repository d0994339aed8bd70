// Package format renders successfully parsed class files for output.
// Diagnostics for failed parses are not handled here; those come from
// trace.Render.
package format

import (
	"encoding"

	"github.com/dhamidi/bintrace/classfile"
)

type Encoder interface {
	encoding.TextMarshaler
	Encode(cf *classfile.ClassFile) error
}
