package classfile

import (
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/dhamidi/bintrace/scan"
)

var magic = []byte{0xCA, 0xFE, 0xBA, 0xBE}

// ParseFile reads and parses the class file at path.
func ParseFile(path string) (*ClassFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read class file: %w", err)
	}
	return Parse(data)
}

// Parse parses a whole class file image. On failure the returned error is a
// *scan.Error whose trace records every structure the parse was inside of;
// render it with trace.Render against the same data slice.
func Parse(data []byte) (*ClassFile, error) {
	_, cf, err := scan.Context(scan.Msg("class file"), parseClassFile)(scan.NewInput(data))
	if err != nil {
		return nil, err
	}
	return cf, nil
}

func parseClassFile(in scan.Input) (scan.Input, *ClassFile, error) {
	in, _, err := scan.Context(scan.Msg("magic number (0xCAFEBABE)"), scan.Tag(magic))(in)
	if err != nil {
		return in, nil, err
	}

	cf := &ClassFile{}
	if in, cf.MinorVersion, err = scan.Context(scan.Msg("minor version"), scan.U16)(in); err != nil {
		return in, nil, err
	}
	if in, cf.MajorVersion, err = scan.Context(scan.Msg("major version"), scan.U16)(in); err != nil {
		return in, nil, err
	}

	var cpCount uint16
	if in, cpCount, err = scan.Context(scan.Msg("constant pool count"), scan.U16)(in); err != nil {
		return in, nil, err
	}
	if in, cf.ConstantPool, err = parseConstantPool(in, cpCount); err != nil {
		return in, nil, err
	}

	var flags uint16
	if in, flags, err = scan.Context(scan.Msg("access flags"), scan.U16)(in); err != nil {
		return in, nil, err
	}
	cf.AccessFlags = AccessFlags(flags)

	if in, cf.ThisClass, err = scan.Context(scan.Msg("this_class index"), scan.U16)(in); err != nil {
		return in, nil, err
	}
	if in, cf.SuperClass, err = scan.Context(scan.Msg("super_class index"), scan.U16)(in); err != nil {
		return in, nil, err
	}

	var ifaceCount uint16
	if in, ifaceCount, err = scan.Context(scan.Msg("interfaces count"), scan.U16)(in); err != nil {
		return in, nil, err
	}
	interfaces := scan.Count(scan.Parser[uint16](scan.U16), int(ifaceCount))
	if in, cf.Interfaces, err = scan.Context(scan.Msgf("interface table (%d entries)", ifaceCount), interfaces)(in); err != nil {
		return in, nil, err
	}

	var fieldCount uint16
	if in, fieldCount, err = scan.Context(scan.Msg("fields count"), scan.U16)(in); err != nil {
		return in, nil, err
	}
	cf.Fields = make([]FieldInfo, fieldCount)
	for i := range cf.Fields {
		if in, cf.Fields[i], err = parseField(i)(in); err != nil {
			return in, nil, err
		}
	}

	var methodCount uint16
	if in, methodCount, err = scan.Context(scan.Msg("methods count"), scan.U16)(in); err != nil {
		return in, nil, err
	}
	cf.Methods = make([]MethodInfo, methodCount)
	for i := range cf.Methods {
		if in, cf.Methods[i], err = parseMethod(i)(in); err != nil {
			return in, nil, err
		}
	}

	if in, cf.Attributes, err = scan.Context(scan.Msg("class attributes"), parseAttributes)(in); err != nil {
		return in, nil, err
	}

	if in, _, err = scan.Context(scan.Msg("end of class file"), scan.Eof)(in); err != nil {
		return in, nil, err
	}

	return in, cf, nil
}

func parseConstantPool(in scan.Input, count uint16) (scan.Input, ConstantPool, error) {
	if count == 0 {
		return in, nil, scan.Fatalf(in, "constant pool count 0 (must be at least 1)")
	}

	cp := make(ConstantPool, count-1)
	for i := uint16(1); i < count; i++ {
		var (
			entry ConstantPoolEntry
			err   error
		)
		if in, entry, err = parseConstantPoolEntry(i)(in); err != nil {
			return in, nil, err
		}
		cp[i-1] = entry

		// Long and Double constants take up two pool slots.
		switch entry.Tag() {
		case ConstantLong, ConstantDouble:
			i++
		}
	}
	return in, cp, nil
}

func parseConstantPoolEntry(index uint16) scan.Parser[ConstantPoolEntry] {
	return scan.Context(scan.Msgf("constant pool entry %d", index), func(in scan.Input) (scan.Input, ConstantPoolEntry, error) {
		start := in
		in, tag, err := scan.U8(in)
		if err != nil {
			return in, nil, err
		}

		switch ConstantTag(tag) {
		case ConstantUtf8:
			var length uint16
			if in, length, err = scan.Context(scan.Msg("utf8 length"), scan.U16)(in); err != nil {
				return in, nil, err
			}
			var raw []byte
			payload := scan.Take(int(length))
			if in, raw, err = scan.Context(scan.Msgf("utf8 payload (%d bytes)", length), payload)(in); err != nil {
				return in, nil, err
			}
			return in, &ConstantUtf8Info{Value: decodeModifiedUtf8(raw)}, nil

		case ConstantInteger:
			var v uint32
			if in, v, err = scan.U32(in); err != nil {
				return in, nil, err
			}
			return in, &ConstantIntegerInfo{Value: int32(v)}, nil

		case ConstantFloat:
			var v uint32
			if in, v, err = scan.U32(in); err != nil {
				return in, nil, err
			}
			return in, &ConstantFloatInfo{Value: math.Float32frombits(v)}, nil

		case ConstantLong:
			var v uint64
			if in, v, err = scan.U64(in); err != nil {
				return in, nil, err
			}
			return in, &ConstantLongInfo{Value: int64(v)}, nil

		case ConstantDouble:
			var v uint64
			if in, v, err = scan.U64(in); err != nil {
				return in, nil, err
			}
			return in, &ConstantDoubleInfo{Value: math.Float64frombits(v)}, nil

		case ConstantClass:
			var nameIndex uint16
			if in, nameIndex, err = scan.U16(in); err != nil {
				return in, nil, err
			}
			return in, &ConstantClassInfo{NameIndex: nameIndex}, nil

		case ConstantString:
			var stringIndex uint16
			if in, stringIndex, err = scan.U16(in); err != nil {
				return in, nil, err
			}
			return in, &ConstantStringInfo{StringIndex: stringIndex}, nil

		case ConstantFieldref:
			var class, nat uint16
			if in, class, nat, err = parseRefPair(in); err != nil {
				return in, nil, err
			}
			return in, &ConstantFieldrefInfo{ClassIndex: class, NameAndTypeIndex: nat}, nil

		case ConstantMethodref:
			var class, nat uint16
			if in, class, nat, err = parseRefPair(in); err != nil {
				return in, nil, err
			}
			return in, &ConstantMethodrefInfo{ClassIndex: class, NameAndTypeIndex: nat}, nil

		case ConstantInterfaceMethodref:
			var class, nat uint16
			if in, class, nat, err = parseRefPair(in); err != nil {
				return in, nil, err
			}
			return in, &ConstantInterfaceMethodrefInfo{ClassIndex: class, NameAndTypeIndex: nat}, nil

		case ConstantNameAndType:
			var name, desc uint16
			if in, name, desc, err = parseRefPair(in); err != nil {
				return in, nil, err
			}
			return in, &ConstantNameAndTypeInfo{NameIndex: name, DescriptorIndex: desc}, nil

		case ConstantMethodHandle:
			var kind uint8
			if in, kind, err = scan.U8(in); err != nil {
				return in, nil, err
			}
			var refIndex uint16
			if in, refIndex, err = scan.U16(in); err != nil {
				return in, nil, err
			}
			return in, &ConstantMethodHandleInfo{
				ReferenceKind:  MethodHandleKind(kind),
				ReferenceIndex: refIndex,
			}, nil

		case ConstantMethodType:
			var descIndex uint16
			if in, descIndex, err = scan.U16(in); err != nil {
				return in, nil, err
			}
			return in, &ConstantMethodTypeInfo{DescriptorIndex: descIndex}, nil

		case ConstantDynamic:
			var bootstrap, nat uint16
			if in, bootstrap, nat, err = parseRefPair(in); err != nil {
				return in, nil, err
			}
			return in, &ConstantDynamicInfo{BootstrapMethodAttrIndex: bootstrap, NameAndTypeIndex: nat}, nil

		case ConstantInvokeDynamic:
			var bootstrap, nat uint16
			if in, bootstrap, nat, err = parseRefPair(in); err != nil {
				return in, nil, err
			}
			return in, &ConstantInvokeDynamicInfo{BootstrapMethodAttrIndex: bootstrap, NameAndTypeIndex: nat}, nil

		case ConstantModule:
			var nameIndex uint16
			if in, nameIndex, err = scan.U16(in); err != nil {
				return in, nil, err
			}
			return in, &ConstantModuleInfo{NameIndex: nameIndex}, nil

		case ConstantPackage:
			var nameIndex uint16
			if in, nameIndex, err = scan.U16(in); err != nil {
				return in, nil, err
			}
			return in, &ConstantPackageInfo{NameIndex: nameIndex}, nil

		default:
			// A bogus tag means the pool layout is lost; retrying
			// siblings cannot recover, so fail hard at the tag byte.
			return in, nil, scan.Fatalf(start, "unknown constant pool tag %d", tag)
		}
	})
}

func parseRefPair(in scan.Input) (scan.Input, uint16, uint16, error) {
	in, first, err := scan.U16(in)
	if err != nil {
		return in, 0, 0, err
	}
	in, second, err := scan.U16(in)
	if err != nil {
		return in, 0, 0, err
	}
	return in, first, second, nil
}

func parseField(index int) scan.Parser[FieldInfo] {
	return scan.Context(scan.Msgf("field %d", index), func(in scan.Input) (scan.Input, FieldInfo, error) {
		var (
			f   FieldInfo
			err error
		)
		var flags uint16
		if in, flags, err = scan.Context(scan.Msg("access flags"), scan.U16)(in); err != nil {
			return in, f, err
		}
		f.AccessFlags = AccessFlags(flags)
		if in, f.NameIndex, err = scan.Context(scan.Msg("name index"), scan.U16)(in); err != nil {
			return in, f, err
		}
		if in, f.DescriptorIndex, err = scan.Context(scan.Msg("descriptor index"), scan.U16)(in); err != nil {
			return in, f, err
		}
		if in, f.Attributes, err = parseAttributes(in); err != nil {
			return in, f, err
		}
		return in, f, nil
	})
}

func parseMethod(index int) scan.Parser[MethodInfo] {
	return scan.Context(scan.Msgf("method %d", index), func(in scan.Input) (scan.Input, MethodInfo, error) {
		var (
			m   MethodInfo
			err error
		)
		var flags uint16
		if in, flags, err = scan.Context(scan.Msg("access flags"), scan.U16)(in); err != nil {
			return in, m, err
		}
		m.AccessFlags = AccessFlags(flags)
		if in, m.NameIndex, err = scan.Context(scan.Msg("name index"), scan.U16)(in); err != nil {
			return in, m, err
		}
		if in, m.DescriptorIndex, err = scan.Context(scan.Msg("descriptor index"), scan.U16)(in); err != nil {
			return in, m, err
		}
		if in, m.Attributes, err = parseAttributes(in); err != nil {
			return in, m, err
		}
		return in, m, nil
	})
}

func parseAttributes(in scan.Input) (scan.Input, []AttributeInfo, error) {
	var (
		count uint16
		err   error
	)
	if in, count, err = scan.Context(scan.Msg("attributes count"), scan.U16)(in); err != nil {
		return in, nil, err
	}
	attrs := make([]AttributeInfo, count)
	for i := range attrs {
		if in, attrs[i], err = parseAttribute(i)(in); err != nil {
			return in, nil, err
		}
	}
	return in, attrs, nil
}

func parseAttribute(index int) scan.Parser[AttributeInfo] {
	return scan.Context(scan.Msgf("attribute %d", index), func(in scan.Input) (scan.Input, AttributeInfo, error) {
		var (
			attr AttributeInfo
			err  error
		)
		if in, attr.NameIndex, err = scan.Context(scan.Msg("attribute name index"), scan.U16)(in); err != nil {
			return in, attr, err
		}
		var length uint32
		if in, length, err = scan.Context(scan.Msg("attribute length"), scan.U32)(in); err != nil {
			return in, attr, err
		}
		payload := scan.Take(int(length))
		if in, attr.Info, err = scan.Context(scan.Msgf("attribute payload (%d bytes)", length), payload)(in); err != nil {
			return in, attr, err
		}
		return in, attr, nil
	})
}

// decodeModifiedUtf8 decodes the JVM's modified UTF-8: code point U+0000 is
// two bytes, supplementary code points are six bytes (a surrogate pair of
// three-byte sequences). Malformed tails decode byte-by-byte rather than
// failing, since string content does not affect the file's structure.
func decodeModifiedUtf8(raw []byte) string {
	var b strings.Builder
	b.Grow(len(raw))

	for i := 0; i < len(raw); {
		c := raw[i]
		switch {
		case c&0x80 == 0:
			b.WriteRune(rune(c))
			i++
		case c&0xE0 == 0xC0 && i+1 < len(raw):
			b.WriteRune(rune(c&0x1F)<<6 | rune(raw[i+1]&0x3F))
			i += 2
		case c&0xF0 == 0xE0 && i+2 < len(raw):
			r := rune(c&0x0F)<<12 | rune(raw[i+1]&0x3F)<<6 | rune(raw[i+2]&0x3F)
			if r >= 0xD800 && r <= 0xDBFF && i+5 < len(raw) && raw[i+3] == 0xED {
				low := rune(raw[i+3]&0x0F)<<12 | rune(raw[i+4]&0x3F)<<6 | rune(raw[i+5]&0x3F)
				if low >= 0xDC00 && low <= 0xDFFF {
					b.WriteRune(0x10000 + (r-0xD800)<<10 + (low - 0xDC00))
					i += 6
					continue
				}
			}
			b.WriteRune(r)
			i += 3
		default:
			b.WriteRune(rune(c))
			i++
		}
	}
	return b.String()
}
