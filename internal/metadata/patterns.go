package metadata

import (
	"fmt"
	"strings"
)

// pattern is an ant-style path pattern over slash-separated binary class
// names: '**' matches any number of path segments, '*' matches within one
// segment.
type pattern struct {
	source   string
	segments []string
}

// parsePatternList splits a colon-separated pattern list, as found in the
// includes/excludes keys of the API declaration.
func parsePatternList(value string) ([]pattern, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}

	var patterns []pattern
	for _, raw := range strings.Split(value, ":") {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		p, err := parsePattern(raw)
		if err != nil {
			return nil, err
		}
		patterns = append(patterns, p)
	}
	return patterns, nil
}

func parsePattern(raw string) (pattern, error) {
	segments := strings.Split(strings.Trim(raw, "/"), "/")
	for _, seg := range segments {
		if seg == "" {
			return pattern{}, fmt.Errorf("invalid pattern %q: empty path segment", raw)
		}
		if seg != "**" && strings.Contains(seg, "**") {
			return pattern{}, fmt.Errorf("invalid pattern %q: '**' must be a whole segment", raw)
		}
	}
	return pattern{source: raw, segments: segments}, nil
}

func (p pattern) match(name string) bool {
	return matchSegments(p.segments, strings.Split(name, "/"))
}

func matchSegments(pat, parts []string) bool {
	if len(pat) == 0 {
		return len(parts) == 0
	}
	if pat[0] == "**" {
		// '**' absorbs zero or more leading segments
		for skip := 0; skip <= len(parts); skip++ {
			if matchSegments(pat[1:], parts[skip:]) {
				return true
			}
		}
		return false
	}
	if len(parts) == 0 {
		return false
	}
	if !matchSegment(pat[0], parts[0]) {
		return false
	}
	return matchSegments(pat[1:], parts[1:])
}

// matchSegment matches one glob segment where '*' matches any run of
// characters within the segment.
func matchSegment(pat, s string) bool {
	if !strings.Contains(pat, "*") {
		return pat == s
	}

	chunks := strings.Split(pat, "*")
	if !strings.HasPrefix(s, chunks[0]) {
		return false
	}
	s = s[len(chunks[0]):]

	for i := 1; i < len(chunks)-1; i++ {
		idx := strings.Index(s, chunks[i])
		if idx == -1 {
			return false
		}
		s = s[idx+len(chunks[i]):]
	}

	return strings.HasSuffix(s, chunks[len(chunks)-1])
}
