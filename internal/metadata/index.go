// Package metadata loads the API metadata archive: the declaration of which
// classes form the published API surface, and the parameter-name index keyed
// by method signature.
package metadata

import (
	"fmt"
	"strings"

	"github.com/jarweave/jarweave/internal/archive"
)

// Resource names expected inside the metadata archive
const (
	DeclarationResource    = "api-declaration.properties"
	ParameterNamesResource = "parameter-names.properties"
)

// LoadError indicates the metadata archive could not be loaded or is missing
// a required resource.
type LoadError struct {
	Archive  string
	Resource string
	Err      error
}

func (e *LoadError) Error() string {
	if e.Resource != "" {
		return fmt.Sprintf("metadata archive %s: missing or unreadable resource %s: %v", e.Archive, e.Resource, e.Err)
	}
	return fmt.Sprintf("metadata archive %s: %v", e.Archive, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// Index answers public-API membership and parameter-name lookups. It is
// immutable once constructed.
type Index struct {
	includes []pattern
	excludes []pattern
	names    map[string][]string
}

// Open reads the metadata archive at path and builds the index. Both required
// resources must be present.
func Open(path string) (*Index, error) {
	r, err := archive.OpenReader(path)
	if err != nil {
		return nil, &LoadError{Archive: path, Err: err}
	}
	defer r.Close()

	resources := make(map[string]map[string]string)
	for _, name := range []string{DeclarationResource, ParameterNamesResource} {
		var found bool
		for _, f := range r.File {
			if f.Name != name {
				continue
			}
			data, err := archive.ReadEntry(f)
			if err != nil {
				return nil, &LoadError{Archive: path, Resource: name, Err: err}
			}
			props, err := parseProperties(data)
			if err != nil {
				return nil, &LoadError{Archive: path, Resource: name, Err: err}
			}
			resources[name] = props
			found = true
			break
		}
		if !found {
			return nil, &LoadError{Archive: path, Resource: name, Err: fmt.Errorf("resource not found")}
		}
	}

	idx := &Index{names: make(map[string][]string, len(resources[ParameterNamesResource]))}

	decl := resources[DeclarationResource]
	if idx.includes, err = parsePatternList(decl["includes"]); err != nil {
		return nil, &LoadError{Archive: path, Resource: DeclarationResource, Err: err}
	}
	if idx.excludes, err = parsePatternList(decl["excludes"]); err != nil {
		return nil, &LoadError{Archive: path, Resource: DeclarationResource, Err: err}
	}

	for key, value := range resources[ParameterNamesResource] {
		idx.names[key] = splitNames(value)
	}

	return idx, nil
}

// IsPublicAPI reports whether the class with the given internal binary name
// (slash-separated; a dotted canonical name is accepted too) belongs to the
// published API surface. Marker classes with no methods of their own
// (package-info, module-info) are never API.
func (idx *Index) IsPublicAPI(name string) bool {
	name = strings.ReplaceAll(name, ".", "/")

	simple := name
	if i := strings.LastIndexByte(name, '/'); i != -1 {
		simple = name[i+1:]
	}
	if simple == "package-info" || simple == "module-info" {
		return false
	}

	included := false
	for _, p := range idx.includes {
		if p.match(name) {
			included = true
			break
		}
	}
	if !included {
		return false
	}
	for _, p := range idx.excludes {
		if p.match(name) {
			return false
		}
	}
	return true
}

// ParameterNames returns the recorded parameter names for the method with the
// given owner (canonical binary name), method name, and canonical parameter
// type names. The second result is false when the signature is unknown.
func (idx *Index) ParameterNames(owner, method string, paramTypes []string) ([]string, bool) {
	names, ok := idx.names[signatureKey(owner, method, paramTypes)]
	return names, ok
}

// EntryCount returns the number of method signatures in the index
func (idx *Index) EntryCount() int {
	return len(idx.names)
}

func signatureKey(owner, method string, paramTypes []string) string {
	return owner + "." + method + "(" + strings.Join(paramTypes, ",") + ")"
}

func splitNames(value string) []string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	names := strings.Split(value, ",")
	for i := range names {
		names[i] = strings.TrimSpace(names[i])
	}
	return names
}
