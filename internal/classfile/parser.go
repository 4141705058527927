package classfile

import (
	"fmt"
	"io"
)

// classMagic is the four-byte signature every class file begins with
const classMagic = 0xCAFEBABE

// ParseError indicates that a byte stream is not a well-formed class file
type ParseError struct {
	Offset int
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid class file at offset %d: %s", e.Offset, e.Reason)
}

// Parse reads a complete class file from r. Structure (constant pool, member
// tables, attribute framing) is decoded; attribute payloads are kept raw.
func Parse(r io.Reader) (*ClassFile, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read class file: %w", err)
	}
	return ParseBytes(data)
}

// ParseBytes parses a class file held fully in memory
func ParseBytes(data []byte) (*ClassFile, error) {
	c := &cursor{data: data}

	magic, err := c.u32()
	if err != nil {
		return nil, err
	}
	if magic != classMagic {
		return nil, &ParseError{Offset: 0, Reason: fmt.Sprintf("bad magic 0x%08X", magic)}
	}

	cf := &ClassFile{}
	if cf.Minor, err = c.u16(); err != nil {
		return nil, err
	}
	if cf.Major, err = c.u16(); err != nil {
		return nil, err
	}

	if cf.ConstantPool, err = c.constantPool(); err != nil {
		return nil, err
	}

	if cf.AccessFlags, err = c.u16(); err != nil {
		return nil, err
	}
	if cf.ThisClass, err = c.u16(); err != nil {
		return nil, err
	}
	if cf.SuperClass, err = c.u16(); err != nil {
		return nil, err
	}

	ifaceCount, err := c.u16()
	if err != nil {
		return nil, err
	}
	cf.Interfaces = make([]uint16, ifaceCount)
	for i := range cf.Interfaces {
		if cf.Interfaces[i], err = c.u16(); err != nil {
			return nil, err
		}
	}

	if cf.Fields, err = c.members(); err != nil {
		return nil, err
	}
	if cf.Methods, err = c.members(); err != nil {
		return nil, err
	}
	if cf.Attributes, err = c.attributes(); err != nil {
		return nil, err
	}

	if c.pos != len(c.data) {
		return nil, &ParseError{Offset: c.pos, Reason: fmt.Sprintf("%d trailing bytes after class structure", len(c.data)-c.pos)}
	}

	return cf, nil
}

// cursor walks a byte slice with bounds checking
type cursor struct {
	data []byte
	pos  int
}

func (c *cursor) u8() (uint8, error) {
	if c.pos+1 > len(c.data) {
		return 0, &ParseError{Offset: c.pos, Reason: "unexpected end of file"}
	}
	v := c.data[c.pos]
	c.pos++
	return v, nil
}

func (c *cursor) u16() (uint16, error) {
	if c.pos+2 > len(c.data) {
		return 0, &ParseError{Offset: c.pos, Reason: "unexpected end of file"}
	}
	v := uint16(c.data[c.pos])<<8 | uint16(c.data[c.pos+1])
	c.pos += 2
	return v, nil
}

func (c *cursor) u32() (uint32, error) {
	if c.pos+4 > len(c.data) {
		return 0, &ParseError{Offset: c.pos, Reason: "unexpected end of file"}
	}
	v := uint32(c.data[c.pos])<<24 | uint32(c.data[c.pos+1])<<16 | uint32(c.data[c.pos+2])<<8 | uint32(c.data[c.pos+3])
	c.pos += 4
	return v, nil
}

func (c *cursor) bytes(n int) ([]byte, error) {
	if n < 0 || c.pos+n > len(c.data) {
		return nil, &ParseError{Offset: c.pos, Reason: "unexpected end of file"}
	}
	v := c.data[c.pos : c.pos+n : c.pos+n]
	c.pos += n
	return v, nil
}

func (c *cursor) constantPool() (ConstantPool, error) {
	count, err := c.u16()
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, &ParseError{Offset: c.pos - 2, Reason: "constant pool count is zero"}
	}

	pool := make(ConstantPool, 1, count)
	for len(pool) < int(count) {
		at := c.pos
		tag, err := c.u8()
		if err != nil {
			return nil, err
		}

		size, err := payloadSize(tag)
		if err != nil {
			return nil, &ParseError{Offset: at, Reason: err.Error()}
		}
		if size == -1 {
			length, err := c.u16()
			if err != nil {
				return nil, err
			}
			size = int(length)
		}

		raw, err := c.bytes(size)
		if err != nil {
			return nil, err
		}
		pool = append(pool, Constant{Tag: tag, Raw: raw})

		// Long and double constants take two pool slots
		if tag == TagLong || tag == TagDouble {
			if len(pool) == int(count) {
				return nil, &ParseError{Offset: at, Reason: "long/double constant overflows pool"}
			}
			pool = append(pool, Constant{})
		}
	}
	return pool, nil
}

func (c *cursor) members() ([]Member, error) {
	count, err := c.u16()
	if err != nil {
		return nil, err
	}
	members := make([]Member, count)
	for i := range members {
		m := &members[i]
		if m.AccessFlags, err = c.u16(); err != nil {
			return nil, err
		}
		if m.NameIndex, err = c.u16(); err != nil {
			return nil, err
		}
		if m.DescriptorIndex, err = c.u16(); err != nil {
			return nil, err
		}
		if m.Attributes, err = c.attributes(); err != nil {
			return nil, err
		}
	}
	return members, nil
}

func (c *cursor) attributes() ([]Attribute, error) {
	count, err := c.u16()
	if err != nil {
		return nil, err
	}
	attrs := make([]Attribute, count)
	for i := range attrs {
		if attrs[i].NameIndex, err = c.u16(); err != nil {
			return nil, err
		}
		length, err := c.u32()
		if err != nil {
			return nil, err
		}
		if attrs[i].Data, err = c.bytes(int(length)); err != nil {
			return nil, err
		}
	}
	return attrs, nil
}
