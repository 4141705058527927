// Package classfile implements a structural codec for JVM class files.
// It parses a class file into an in-memory form that preserves every byte it
// does not understand, supports targeted mutation (attaching MethodParameters
// attributes), and serializes back. A class that is parsed and serialized
// without mutation round-trips byte-for-byte.
package classfile

import "fmt"

// Class access and property flags (JVMS table 4.1-B)
const (
	AccPublic    = 0x0001
	AccStatic    = 0x0008
	AccFinal     = 0x0010
	AccInterface = 0x0200
	AccAbstract  = 0x0400
	AccSynthetic = 0x1000
)

// ClassFile is the parsed form of one class file
type ClassFile struct {
	Minor        uint16
	Major        uint16
	ConstantPool ConstantPool
	AccessFlags  uint16
	ThisClass    uint16
	SuperClass   uint16
	Interfaces   []uint16
	Fields       []Member
	Methods      []Member
	Attributes   []Attribute
}

// Member is a field or method declaration. Attribute payloads are kept raw so
// that code, annotations, and anything else we do not touch survive unchanged.
type Member struct {
	AccessFlags     uint16
	NameIndex       uint16
	DescriptorIndex uint16
	Attributes      []Attribute
}

// Attribute is a raw attribute: the constant pool index of its name plus its
// undecoded payload (excluding the name index and length prefix).
type Attribute struct {
	NameIndex uint16
	Data      []byte
}

// ThisClassName returns the class's own internal (slash-separated) binary name
func (cf *ClassFile) ThisClassName() (string, error) {
	return cf.ConstantPool.ClassNameAt(cf.ThisClass)
}

// Name resolves the member's name through the constant pool
func (m *Member) Name(cp ConstantPool) (string, error) {
	return cp.Utf8At(m.NameIndex)
}

// Descriptor resolves the member's type descriptor through the constant pool
func (m *Member) Descriptor(cp ConstantPool) (string, error) {
	return cp.Utf8At(m.DescriptorIndex)
}

// methodParametersAttr is the attribute name for parameter-name debug metadata
const methodParametersAttr = "MethodParameters"

// SetMethodParameters replaces the method's MethodParameters attribute with
// one declaring the given names, in order, with no access flags set. Replacing
// rather than appending keeps the operation idempotent when a class already
// carries parameter names. Names are interned in the constant pool.
func (cf *ClassFile) SetMethodParameters(m *Member, names []string) error {
	nameIndex, err := cf.ConstantPool.AddUtf8(methodParametersAttr)
	if err != nil {
		return err
	}

	data := make([]byte, 0, 1+4*len(names))
	data = append(data, byte(len(names)))
	for _, name := range names {
		idx, err := cf.ConstantPool.AddUtf8(name)
		if err != nil {
			return err
		}
		data = append(data, byte(idx>>8), byte(idx), 0x00, 0x00)
	}

	// Drop any existing MethodParameters attribute before attaching ours
	kept := m.Attributes[:0]
	for _, attr := range m.Attributes {
		attrName, err := cf.ConstantPool.Utf8At(attr.NameIndex)
		if err != nil {
			return fmt.Errorf("failed to resolve attribute name: %w", err)
		}
		if attrName != methodParametersAttr {
			kept = append(kept, attr)
		}
	}
	m.Attributes = append(kept, Attribute{NameIndex: nameIndex, Data: data})

	return nil
}

// MethodParameterNames reads back the names declared by the method's
// MethodParameters attribute, or nil if the method has none.
func (cf *ClassFile) MethodParameterNames(m *Member) ([]string, error) {
	for _, attr := range m.Attributes {
		attrName, err := cf.ConstantPool.Utf8At(attr.NameIndex)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve attribute name: %w", err)
		}
		if attrName != methodParametersAttr {
			continue
		}

		if len(attr.Data) < 1 {
			return nil, fmt.Errorf("truncated MethodParameters attribute")
		}
		count := int(attr.Data[0])
		if len(attr.Data) != 1+4*count {
			return nil, fmt.Errorf("malformed MethodParameters attribute: %d bytes for %d parameters", len(attr.Data), count)
		}

		names := make([]string, 0, count)
		for i := 0; i < count; i++ {
			idx := uint16(attr.Data[1+4*i])<<8 | uint16(attr.Data[2+4*i])
			name, err := cf.ConstantPool.Utf8At(idx)
			if err != nil {
				return nil, fmt.Errorf("failed to resolve parameter name: %w", err)
			}
			names = append(names, name)
		}
		return names, nil
	}
	return nil, nil
}
