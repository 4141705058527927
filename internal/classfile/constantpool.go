package classfile

import "fmt"

// Constant pool tags (JVMS table 4.4-B)
const (
	TagUtf8               = 1
	TagInteger            = 3
	TagFloat              = 4
	TagLong               = 5
	TagDouble             = 6
	TagClass              = 7
	TagString             = 8
	TagFieldref           = 9
	TagMethodref          = 10
	TagInterfaceMethodref = 11
	TagNameAndType        = 12
	TagMethodHandle       = 15
	TagMethodType         = 16
	TagDynamic            = 17
	TagInvokeDynamic      = 18
	TagModule             = 19
	TagPackage            = 20
)

// Constant is one constant pool entry. The payload is kept in its encoded form
// (minus the tag byte) so untouched entries survive reserialization exactly;
// for Utf8 entries Raw holds the modified-UTF-8 bytes without the length
// prefix. A zero Tag marks the unusable slot that follows a long or double.
type Constant struct {
	Tag uint8
	Raw []byte
}

// ConstantPool indexes constants by pool index. Slot 0 is unused, matching the
// on-disk numbering, and len(cp) equals the constant_pool_count.
type ConstantPool []Constant

// Utf8At returns the string at the given pool index
func (cp ConstantPool) Utf8At(idx uint16) (string, error) {
	if int(idx) >= len(cp) || idx == 0 {
		return "", fmt.Errorf("constant pool index %d out of range (pool size %d)", idx, len(cp))
	}
	c := cp[idx]
	if c.Tag != TagUtf8 {
		return "", fmt.Errorf("constant pool entry %d is tag %d, not Utf8", idx, c.Tag)
	}
	return string(c.Raw), nil
}

// ClassNameAt resolves a Class entry to its internal binary name
func (cp ConstantPool) ClassNameAt(idx uint16) (string, error) {
	if int(idx) >= len(cp) || idx == 0 {
		return "", fmt.Errorf("constant pool index %d out of range (pool size %d)", idx, len(cp))
	}
	c := cp[idx]
	if c.Tag != TagClass {
		return "", fmt.Errorf("constant pool entry %d is tag %d, not Class", idx, c.Tag)
	}
	if len(c.Raw) != 2 {
		return "", fmt.Errorf("constant pool entry %d has malformed Class payload", idx)
	}
	nameIndex := uint16(c.Raw[0])<<8 | uint16(c.Raw[1])
	return cp.Utf8At(nameIndex)
}

// AddUtf8 interns a string in the pool and returns its index. An existing
// Utf8 entry with the same bytes is reused; otherwise the entry is appended.
// Fails when the pool is full (constant_pool_count is a u16).
func (cp *ConstantPool) AddUtf8(s string) (uint16, error) {
	for i, c := range *cp {
		if c.Tag == TagUtf8 && string(c.Raw) == s {
			return uint16(i), nil
		}
	}
	if len(*cp) >= 0xFFFF {
		return 0, fmt.Errorf("constant pool overflow adding %q", s)
	}
	*cp = append(*cp, Constant{Tag: TagUtf8, Raw: []byte(s)})
	return uint16(len(*cp) - 1), nil
}

// payloadSize returns the fixed payload size for a tag, or -1 for Utf8 whose
// payload is length-prefixed.
func payloadSize(tag uint8) (int, error) {
	switch tag {
	case TagUtf8:
		return -1, nil
	case TagInteger, TagFloat:
		return 4, nil
	case TagLong, TagDouble:
		return 8, nil
	case TagClass, TagString, TagMethodType, TagModule, TagPackage:
		return 2, nil
	case TagFieldref, TagMethodref, TagInterfaceMethodref, TagNameAndType, TagDynamic, TagInvokeDynamic:
		return 4, nil
	case TagMethodHandle:
		return 3, nil
	default:
		return 0, fmt.Errorf("unknown constant pool tag %d", tag)
	}
}
