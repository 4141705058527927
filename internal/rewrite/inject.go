package rewrite

import (
	"fmt"

	"github.com/jarweave/jarweave/internal/classfile"
	"github.com/jarweave/jarweave/internal/metadata"
)

// InjectParameterNames attaches a MethodParameters attribute to every method
// of cf whose signature has an entry in the index. Methods without a match
// are left alone. Returns whether any method was changed.
func InjectParameterNames(cf *classfile.ClassFile, idx *metadata.Index) (bool, error) {
	internalName, err := cf.ThisClassName()
	if err != nil {
		return false, fmt.Errorf("failed to resolve class name: %w", err)
	}
	owner := classfile.InternalToCanonical(internalName)

	changed := false
	for i := range cf.Methods {
		method := &cf.Methods[i]

		name, err := method.Name(cf.ConstantPool)
		if err != nil {
			return false, fmt.Errorf("%s: failed to resolve method name: %w", owner, err)
		}
		descriptor, err := method.Descriptor(cf.ConstantPool)
		if err != nil {
			return false, fmt.Errorf("%s.%s: failed to resolve descriptor: %w", owner, name, err)
		}
		paramTypes, err := classfile.ParameterTypes(descriptor)
		if err != nil {
			return false, fmt.Errorf("%s.%s: %w", owner, name, err)
		}

		names, ok := idx.ParameterNames(owner, name, paramTypes)
		if !ok {
			continue
		}
		if len(names) != len(paramTypes) {
			return false, fmt.Errorf("%s.%s: metadata declares %d parameter names for %d parameters",
				owner, name, len(names), len(paramTypes))
		}

		if err := cf.SetMethodParameters(method, names); err != nil {
			return false, fmt.Errorf("%s.%s: %w", owner, name, err)
		}
		changed = true
	}

	return changed, nil
}
