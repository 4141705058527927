package classfile

import (
	"fmt"
	"strings"
)

// primitiveNames maps descriptor base-type characters to Java type names
var primitiveNames = map[byte]string{
	'B': "byte",
	'C': "char",
	'D': "double",
	'F': "float",
	'I': "int",
	'J': "long",
	'S': "short",
	'Z': "boolean",
	'V': "void",
}

// ParameterTypes parses a method descriptor and returns the canonical
// (dot-separated) Java type name of each parameter in declaration order.
// "(I[Ljava/lang/String;)V" yields ["int", "java.lang.String[]"].
func ParameterTypes(descriptor string) ([]string, error) {
	if len(descriptor) == 0 || descriptor[0] != '(' {
		return nil, fmt.Errorf("malformed method descriptor %q", descriptor)
	}

	var types []string
	pos := 1
	for pos < len(descriptor) && descriptor[pos] != ')' {
		name, next, err := parseFieldType(descriptor, pos)
		if err != nil {
			return nil, err
		}
		types = append(types, name)
		pos = next
	}
	if pos >= len(descriptor) {
		return nil, fmt.Errorf("malformed method descriptor %q: missing ')'", descriptor)
	}
	return types, nil
}

// ReturnType parses a method descriptor's return type as a canonical name
func ReturnType(descriptor string) (string, error) {
	close := strings.IndexByte(descriptor, ')')
	if close == -1 || close+1 >= len(descriptor) {
		return "", fmt.Errorf("malformed method descriptor %q", descriptor)
	}
	name, next, err := parseFieldType(descriptor, close+1)
	if err != nil {
		return "", err
	}
	if next != len(descriptor) {
		return "", fmt.Errorf("malformed method descriptor %q: trailing characters", descriptor)
	}
	return name, nil
}

// parseFieldType decodes one field type starting at pos and returns its
// canonical name plus the position after it.
func parseFieldType(descriptor string, pos int) (string, int, error) {
	arrayDepth := 0
	for pos < len(descriptor) && descriptor[pos] == '[' {
		arrayDepth++
		pos++
	}
	if pos >= len(descriptor) {
		return "", 0, fmt.Errorf("malformed descriptor %q: truncated type", descriptor)
	}

	var name string
	switch c := descriptor[pos]; c {
	case 'L':
		end := strings.IndexByte(descriptor[pos:], ';')
		if end == -1 {
			return "", 0, fmt.Errorf("malformed descriptor %q: unterminated class type", descriptor)
		}
		name = InternalToCanonical(descriptor[pos+1 : pos+end])
		pos += end + 1
	default:
		primitive, ok := primitiveNames[c]
		if !ok {
			return "", 0, fmt.Errorf("malformed descriptor %q: unknown type character %q", descriptor, c)
		}
		name = primitive
		pos++
	}

	return name + strings.Repeat("[]", arrayDepth), pos, nil
}

// InternalToCanonical converts a slash-separated internal binary name to the
// dot-separated canonical form. Nested-class '$' separators are part of the
// binary name and are kept.
func InternalToCanonical(name string) string {
	return strings.ReplaceAll(name, "/", ".")
}

// CanonicalToInternal is the inverse of InternalToCanonical
func CanonicalToInternal(name string) string {
	return strings.ReplaceAll(name, ".", "/")
}
