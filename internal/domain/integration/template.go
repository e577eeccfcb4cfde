package integration

import "strings"

// maxTemplatePasses bounds re-expansion when a substituted value itself contains placeholders
const maxTemplatePasses = 4

// LookupFunc resolves a placeholder name. ok is false when the name does not resolve.
type LookupFunc func(name string) (value string, ok bool)

// IsTemplate reports whether s carries {Name} placeholder syntax
func IsTemplate(s string) bool {
	return strings.Contains(s, "{") && strings.Contains(s, "}")
}

// ExpandTemplate replaces every {Name} in tpl with lookup(Name).
// Unresolved placeholders become "". A "{" with no closing brace is kept literally.
func ExpandTemplate(tpl string, lookup LookupFunc) string {
	out := tpl
	for i := 0; i < maxTemplatePasses && IsTemplate(out); i++ {
		next := expandOnce(out, lookup)
		if next == out {
			break
		}
		out = next
	}
	return out
}

func expandOnce(s string, lookup LookupFunc) string {
	var b strings.Builder
	b.Grow(len(s))
	rest := s
	for {
		start := strings.IndexByte(rest, '{')
		if start < 0 {
			break
		}
		end := strings.IndexByte(rest[start:], '}')
		if end < 0 {
			break
		}
		end += start
		b.WriteString(rest[:start])
		name := strings.TrimSpace(rest[start+1 : end])
		if v, ok := lookup(name); ok {
			b.WriteString(v)
		}
		rest = rest[end+1:]
	}
	b.WriteString(rest)
	return b.String()
}
