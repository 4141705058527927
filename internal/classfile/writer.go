package classfile

import (
	"bytes"
	"fmt"
	"io"
)

// Bytes serializes the class file back to its on-disk form
func (cf *ClassFile) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := cf.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Write serializes the class file to w
func (cf *ClassFile) Write(w io.Writer) error {
	var buf bytes.Buffer

	writeU32(&buf, classMagic)
	writeU16(&buf, cf.Minor)
	writeU16(&buf, cf.Major)

	if err := writeConstantPool(&buf, cf.ConstantPool); err != nil {
		return err
	}

	writeU16(&buf, cf.AccessFlags)
	writeU16(&buf, cf.ThisClass)
	writeU16(&buf, cf.SuperClass)

	writeU16(&buf, uint16(len(cf.Interfaces)))
	for _, iface := range cf.Interfaces {
		writeU16(&buf, iface)
	}

	writeMembers(&buf, cf.Fields)
	writeMembers(&buf, cf.Methods)
	writeAttributes(&buf, cf.Attributes)

	_, err := w.Write(buf.Bytes())
	return err
}

func writeConstantPool(buf *bytes.Buffer, pool ConstantPool) error {
	if len(pool) > 0xFFFF {
		return fmt.Errorf("constant pool too large: %d entries", len(pool))
	}
	writeU16(buf, uint16(len(pool)))
	for i, c := range pool {
		if i == 0 || c.Tag == 0 {
			// slot 0 and long/double fillers have no on-disk form
			continue
		}
		buf.WriteByte(c.Tag)
		if c.Tag == TagUtf8 {
			writeU16(buf, uint16(len(c.Raw)))
		}
		buf.Write(c.Raw)
	}
	return nil
}

func writeMembers(buf *bytes.Buffer, members []Member) {
	writeU16(buf, uint16(len(members)))
	for i := range members {
		m := &members[i]
		writeU16(buf, m.AccessFlags)
		writeU16(buf, m.NameIndex)
		writeU16(buf, m.DescriptorIndex)
		writeAttributes(buf, m.Attributes)
	}
}

func writeAttributes(buf *bytes.Buffer, attrs []Attribute) {
	writeU16(buf, uint16(len(attrs)))
	for _, attr := range attrs {
		writeU16(buf, attr.NameIndex)
		writeU32(buf, uint32(len(attr.Data)))
		buf.Write(attr.Data)
	}
}

func writeU16(buf *bytes.Buffer, v uint16) {
	buf.WriteByte(byte(v >> 8))
	buf.WriteByte(byte(v))
}

func writeU32(buf *bytes.Buffer, v uint32) {
	buf.WriteByte(byte(v >> 24))
	buf.WriteByte(byte(v >> 16))
	buf.WriteByte(byte(v >> 8))
	buf.WriteByte(byte(v))
}
