package format

import (
	"encoding/json"
	"io"

	"github.com/dhamidi/bintrace/classfile"
)

type JSONEncoder struct {
	w  io.Writer
	cf *classfile.ClassFile
}

func NewJSONEncoder(w io.Writer) *JSONEncoder {
	return &JSONEncoder{w: w}
}

func (e *JSONEncoder) Encode(cf *classfile.ClassFile) error {
	e.cf = cf
	text, err := e.MarshalText()
	if err != nil {
		return err
	}
	_, err = e.w.Write(text)
	return err
}

func (e *JSONEncoder) MarshalText() ([]byte, error) {
	return json.MarshalIndent(e.buildClassData(), "", "  ")
}

type jsonClass struct {
	Name       string       `json:"name"`
	SuperClass string       `json:"superClass,omitempty"`
	Interfaces []string     `json:"interfaces,omitempty"`
	Kind       string       `json:"kind"`
	Version    jsonVersion  `json:"version"`
	Constants  int          `json:"constants"`
	Fields     []jsonMember `json:"fields,omitempty"`
	Methods    []jsonMember `json:"methods,omitempty"`
	Attributes []string     `json:"attributes,omitempty"`
}

type jsonVersion struct {
	Major uint16 `json:"major"`
	Minor uint16 `json:"minor"`
}

type jsonMember struct {
	Name       string   `json:"name"`
	Descriptor string   `json:"descriptor"`
	Attributes []string `json:"attributes,omitempty"`
}

func (e *JSONEncoder) buildClassData() jsonClass {
	cf := e.cf
	return jsonClass{
		Name:       cf.ClassName(),
		SuperClass: cf.SuperClassName(),
		Interfaces: cf.InterfaceNames(),
		Kind:       classKind(cf),
		Version: jsonVersion{
			Major: cf.MajorVersion,
			Minor: cf.MinorVersion,
		},
		Constants:  len(cf.ConstantPool),
		Fields:     e.buildFields(),
		Methods:    e.buildMethods(),
		Attributes: attributeNames(cf.ConstantPool, cf.Attributes),
	}
}

func classKind(cf *classfile.ClassFile) string {
	switch {
	case cf.IsAnnotation():
		return "annotation"
	case cf.IsEnum():
		return "enum"
	case cf.IsInterface():
		return "interface"
	case cf.IsModule():
		return "module"
	default:
		return "class"
	}
}

func (e *JSONEncoder) buildFields() []jsonMember {
	cp := e.cf.ConstantPool
	result := make([]jsonMember, len(e.cf.Fields))
	for i := range e.cf.Fields {
		f := &e.cf.Fields[i]
		result[i] = jsonMember{
			Name:       f.Name(cp),
			Descriptor: f.Descriptor(cp),
			Attributes: attributeNames(cp, f.Attributes),
		}
	}
	return result
}

func (e *JSONEncoder) buildMethods() []jsonMember {
	cp := e.cf.ConstantPool
	result := make([]jsonMember, len(e.cf.Methods))
	for i := range e.cf.Methods {
		m := &e.cf.Methods[i]
		result[i] = jsonMember{
			Name:       m.Name(cp),
			Descriptor: m.Descriptor(cp),
			Attributes: attributeNames(cp, m.Attributes),
		}
	}
	return result
}

func attributeNames(cp classfile.ConstantPool, attrs []classfile.AttributeInfo) []string {
	if len(attrs) == 0 {
		return nil
	}
	names := make([]string, len(attrs))
	for i := range attrs {
		names[i] = attrs[i].Name(cp)
	}
	return names
}
