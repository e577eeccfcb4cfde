// Package dynsql builds the statements the mapping engine runs against tables
// named in configuration. Identifiers are checked by a Guard and quoted; values
// are always bound as parameters.
package dynsql

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/lib/pq"
)

var (
	// ErrInvalidIdentifier is returned for names outside the identifier grammar
	ErrInvalidIdentifier = errors.New("invalid identifier")
	// ErrTableNotAllowed is returned for well-formed tables missing from the allow-list
	ErrTableNotAllowed = errors.New("table not allowed")
)

var (
	tablePattern  = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)
	columnPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*( [A-Za-z0-9_]+)*$`)
)

// Guard validates configured identifiers before they reach SQL.
// Tables must match "table" or "schema.table" and, when an allow-list is set,
// appear in it (case-insensitive). Columns are identifiers that may contain
// single spaces between words ("distribution channel").
type Guard struct {
	allowed map[string]struct{}
}

// NewGuard creates a Guard. An empty allow-list accepts any well-formed table.
func NewGuard(allowedTables []string) *Guard {
	g := &Guard{}
	for _, t := range allowedTables {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		if g.allowed == nil {
			g.allowed = make(map[string]struct{}, len(allowedTables))
		}
		g.allowed[t] = struct{}{}
	}
	return g
}

// Restricted reports whether an allow-list is in force
func (g *Guard) Restricted() bool {
	return len(g.allowed) > 0
}

// CheckTable validates a table name
func (g *Guard) CheckTable(name string) error {
	if !tablePattern.MatchString(name) {
		return fmt.Errorf("%w: table %q", ErrInvalidIdentifier, name)
	}
	if g.Restricted() {
		if _, ok := g.allowed[strings.ToLower(name)]; !ok {
			return fmt.Errorf("%w: %q", ErrTableNotAllowed, name)
		}
	}
	return nil
}

// CheckColumn validates a column name
func (g *Guard) CheckColumn(name string) error {
	if !columnPattern.MatchString(name) {
		return fmt.Errorf("%w: column %q", ErrInvalidIdentifier, name)
	}
	return nil
}

// QuoteTable quotes each dotted segment of a table name
func QuoteTable(name string) string {
	segments := strings.Split(name, ".")
	for i, s := range segments {
		segments[i] = pq.QuoteIdentifier(s)
	}
	return strings.Join(segments, ".")
}

// QuoteColumn quotes a column name
func QuoteColumn(name string) string {
	return pq.QuoteIdentifier(name)
}
