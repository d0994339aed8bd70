package format

import (
	"bytes"
	"fmt"
	"io"

	"github.com/dhamidi/bintrace/classfile"
)

// TextEncoder writes a compact human-readable summary of a class file.
type TextEncoder struct {
	w  io.Writer
	cf *classfile.ClassFile
}

func NewTextEncoder(w io.Writer) *TextEncoder {
	return &TextEncoder{w: w}
}

func (e *TextEncoder) Encode(cf *classfile.ClassFile) error {
	e.cf = cf
	text, err := e.MarshalText()
	if err != nil {
		return err
	}
	_, err = e.w.Write(text)
	return err
}

func (e *TextEncoder) MarshalText() ([]byte, error) {
	cf := e.cf
	cp := cf.ConstantPool
	var b bytes.Buffer

	fmt.Fprintf(&b, "%s %s (major %d, minor %d)\n",
		classKind(cf), cf.ClassName(), cf.MajorVersion, cf.MinorVersion)
	if super := cf.SuperClassName(); super != "" {
		fmt.Fprintf(&b, "  super: %s\n", super)
	}
	for _, name := range cf.InterfaceNames() {
		fmt.Fprintf(&b, "  implements: %s\n", name)
	}
	fmt.Fprintf(&b, "  constant pool: %d entries\n", len(cp))

	for i := range cf.Fields {
		f := &cf.Fields[i]
		fmt.Fprintf(&b, "  field %s %s\n", f.Name(cp), f.Descriptor(cp))
	}
	for i := range cf.Methods {
		m := &cf.Methods[i]
		fmt.Fprintf(&b, "  method %s%s\n", m.Name(cp), m.Descriptor(cp))
	}
	for i := range cf.Attributes {
		fmt.Fprintf(&b, "  attribute %s (%d bytes)\n",
			cf.Attributes[i].Name(cp), len(cf.Attributes[i].Info))
	}

	return b.Bytes(), nil
}
