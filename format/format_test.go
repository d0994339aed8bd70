package format

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/dhamidi/bintrace/classfile"
)

func sampleClass(t *testing.T) *classfile.ClassFile {
	t.Helper()
	cf := &classfile.ClassFile{
		MinorVersion: 0,
		MajorVersion: 61,
		ConstantPool: classfile.ConstantPool{
			&classfile.ConstantUtf8Info{Value: "Foo"},              // 1
			&classfile.ConstantClassInfo{NameIndex: 1},             // 2
			&classfile.ConstantUtf8Info{Value: "java/lang/Object"}, // 3
			&classfile.ConstantClassInfo{NameIndex: 3},             // 4
			&classfile.ConstantUtf8Info{Value: "count"},            // 5
			&classfile.ConstantUtf8Info{Value: "I"},                // 6
		},
		AccessFlags: classfile.AccPublic | classfile.AccSuper,
		ThisClass:   2,
		SuperClass:  4,
		Fields: []classfile.FieldInfo{
			{AccessFlags: classfile.AccPrivate, NameIndex: 5, DescriptorIndex: 6},
		},
	}
	return cf
}

func TestJSONEncoder(t *testing.T) {
	var buf bytes.Buffer
	if err := NewJSONEncoder(&buf).Encode(sampleClass(t)); err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	var decoded struct {
		Name       string `json:"name"`
		SuperClass string `json:"superClass"`
		Kind       string `json:"kind"`
		Fields     []struct {
			Name       string `json:"name"`
			Descriptor string `json:"descriptor"`
		} `json:"fields"`
	}
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if decoded.Name != "Foo" || decoded.SuperClass != "java/lang/Object" {
		t.Errorf("class = %q extends %q", decoded.Name, decoded.SuperClass)
	}
	if decoded.Kind != "class" {
		t.Errorf("kind = %q, want class", decoded.Kind)
	}
	if len(decoded.Fields) != 1 || decoded.Fields[0].Name != "count" || decoded.Fields[0].Descriptor != "I" {
		t.Errorf("fields = %+v", decoded.Fields)
	}
}

func TestTextEncoder(t *testing.T) {
	var buf bytes.Buffer
	if err := NewTextEncoder(&buf).Encode(sampleClass(t)); err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	out := buf.String()
	for _, want := range []string{
		"class Foo (major 61, minor 0)",
		"super: java/lang/Object",
		"field count I",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output misses %q:\n%s", want, out)
		}
	}
}
