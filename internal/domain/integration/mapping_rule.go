package integration

import "strings"

// wildcardSource matches any input
const wildcardSource = "*"

// RuleClause is one "source:target" pair of a value-mapping rule
type RuleClause struct {
	Source string
	Target string
}

// MappingRule is an ordered list of clauses; the first match wins
type MappingRule []RuleClause

// ParseMappingRule parses "X:true; *:false". Clauses that do not split into
// exactly two parts on ":" are ignored.
func ParseMappingRule(rule string) MappingRule {
	var clauses MappingRule
	for _, raw := range strings.Split(rule, ";") {
		parts := strings.Split(raw, ":")
		if len(parts) != 2 {
			continue
		}
		clauses = append(clauses, RuleClause{
			Source: strings.TrimSpace(parts[0]),
			Target: strings.TrimSpace(parts[1]),
		})
	}
	return clauses
}

// Apply returns the target of the first clause matching value, compared
// trimmed and case-insensitively. The second result is false when nothing
// matched, in which case value is returned unchanged.
func (r MappingRule) Apply(value string) (string, bool) {
	input := strings.TrimSpace(value)
	for _, c := range r {
		if c.Source == wildcardSource || strings.EqualFold(c.Source, input) {
			return c.Target, true
		}
	}
	return value, false
}
