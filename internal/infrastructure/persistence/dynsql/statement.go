package dynsql

import (
	"strings"
	"time"

	"github.com/wozzarvl/InterfazInAction/internal/domain/integration"
)

// CreatedAtColumn is never rewritten by an update
const CreatedAtColumn = "created_at"

// Statement is SQL text with "?" placeholders and the values bound to them
type Statement struct {
	SQL  string
	Args []any
}

// Count builds SELECT COUNT(*) filtered by equality on every key column
func Count(table string, keys []integration.Column) Statement {
	where, args := whereEqual(keys)
	return Statement{
		SQL:  "SELECT COUNT(*) FROM " + QuoteTable(table) + where,
		Args: args,
	}
}

// Insert builds an INSERT covering every column
func Insert(table string, columns []integration.Column) Statement {
	names := make([]string, len(columns))
	marks := make([]string, len(columns))
	args := make([]any, len(columns))
	for i, c := range columns {
		names[i] = QuoteColumn(c.Name)
		marks[i] = "?"
		args[i] = c.Value
	}
	return Statement{
		SQL: "INSERT INTO " + QuoteTable(table) +
			" (" + strings.Join(names, ", ") + ") VALUES (" + strings.Join(marks, ", ") + ")",
		Args: args,
	}
}

// Update builds an UPDATE of set filtered by keys. created_at is dropped from
// set; ok is false when nothing is left to set.
func Update(table string, set, keys []integration.Column) (stmt Statement, ok bool) {
	assignments := make([]string, 0, len(set))
	args := make([]any, 0, len(set)+len(keys))
	for _, c := range set {
		if strings.EqualFold(c.Name, CreatedAtColumn) {
			continue
		}
		assignments = append(assignments, QuoteColumn(c.Name)+" = ?")
		args = append(args, c.Value)
	}
	if len(assignments) == 0 {
		return Statement{}, false
	}
	where, keyArgs := whereEqual(keys)
	return Statement{
		SQL:  "UPDATE " + QuoteTable(table) + " SET " + strings.Join(assignments, ", ") + where,
		Args: append(args, keyArgs...),
	}, true
}

// DependencyUpsert inserts a reference row holding value in mainColumn (and
// extraColumn when set), doing nothing when mainColumn already holds it.
func DependencyUpsert(table, mainColumn, extraColumn string, value any, now time.Time) Statement {
	names := []string{QuoteColumn(mainColumn)}
	args := []any{value}
	if extraColumn != "" {
		names = append(names, QuoteColumn(extraColumn))
		args = append(args, value)
	}
	names = append(names, QuoteColumn(CreatedAtColumn), QuoteColumn("updated_at"))
	args = append(args, now, now)

	marks := strings.TrimSuffix(strings.Repeat("?, ", len(names)), ", ")
	return Statement{
		SQL: "INSERT INTO " + QuoteTable(table) +
			" (" + strings.Join(names, ", ") + ") VALUES (" + marks + ")" +
			" ON CONFLICT (" + QuoteColumn(mainColumn) + ") DO NOTHING",
		Args: args,
	}
}

// RowIDColumn is the primary key every target table carries
const RowIDColumn = "id"

// SelectIn builds a SELECT of every column where column is one of values.
// Rows are ordered by column, then by primary key, so detail lines sharing
// a foreign key keep their insertion order.
func SelectIn(table, column string, values []int64) Statement {
	col := QuoteColumn(column)
	order := col
	if !strings.EqualFold(column, RowIDColumn) {
		order += ", " + QuoteColumn(RowIDColumn)
	}
	return Statement{
		SQL:  "SELECT * FROM " + QuoteTable(table) + " WHERE " + col + " IN ? ORDER BY " + order,
		Args: []any{values},
	}
}

func whereEqual(keys []integration.Column) (string, []any) {
	if len(keys) == 0 {
		return "", nil
	}
	conds := make([]string, len(keys))
	args := make([]any, len(keys))
	for i, k := range keys {
		conds[i] = QuoteColumn(k.Name) + " = ?"
		args[i] = k.Value
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}
