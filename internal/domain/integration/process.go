package integration

import (
	"sort"
	"strings"
)

// DataType names the coercion applied to a resolved field value
type DataType string

// Supported data types. Matching is case-insensitive; unknown types pass the string through.
const (
	DataTypeString           DataType = "string"
	DataTypeInt              DataType = "int"
	DataTypeDecimal          DataType = "decimal"
	DataTypeFloat            DataType = "float"
	DataTypeBoolean          DataType = "boolean"
	DataTypeDatetime         DataType = "datetime"
	DataTypeCurrentTimestamp DataType = "CURRENT_TIMESTAMP"
)

// IsCurrentTimestamp reports whether the type is the CURRENT_TIMESTAMP pseudo type
func (t DataType) IsCurrentTimestamp() bool {
	return strings.EqualFold(string(t), string(DataTypeCurrentTimestamp))
}

// IntegrationProcess maps one XML node-set to one target table (inbound),
// or one set of relational rows to one XML template (outbound).
type IntegrationProcess struct {
	ProcessName    string
	InterfaceName  string
	TargetTable    string
	XmlIterator    string
	Order          int
	XmlTemplate    string
	BodyNodeName   string
	DetailNodeName string
	DetailTable    string
	Fields         []IntegrationField
}

// IntegrationField is one column mapping within a process
type IntegrationField struct {
	ID              int64
	ProcessName     string
	XmlPath         string
	DbColumn        string
	DataType        DataType
	DefaultValue    string
	ReferenceTable  string
	ReferenceColumn string
	IsKey           bool
	IsDetailLine    bool
}

// IsOutbound reports whether the process renders XML from rows
func (p *IntegrationProcess) IsOutbound() bool {
	return strings.TrimSpace(p.XmlTemplate) != ""
}

// HasDetail reports whether the process renders detail lines from a second table
func (p *IntegrationProcess) HasDetail() bool {
	return strings.TrimSpace(p.DetailTable) != ""
}

// SortFields orders the fields by ID, which is the evaluation order
func (p *IntegrationProcess) SortFields() {
	sort.SliceStable(p.Fields, func(i, j int) bool {
		return p.Fields[i].ID < p.Fields[j].ID
	})
}

// DetailForeignKey returns the detail table column referencing the header row.
// By convention it is the last dotted segment of TargetTable followed by "_id".
func (p *IntegrationProcess) DetailForeignKey() string {
	table := p.TargetTable
	if idx := strings.LastIndex(table, "."); idx >= 0 {
		table = table[idx+1:]
	}
	return table + "_id"
}

// HasDependency reports whether the field upserts a reference row before the main write
func (f *IntegrationField) HasDependency() bool {
	return strings.TrimSpace(f.ReferenceTable) != "" && strings.TrimSpace(f.ReferenceColumn) != ""
}

// ReferenceColumns splits ReferenceColumn into its main column and the optional
// extra column that receives the same value ("name|description").
func (f *IntegrationField) ReferenceColumns() (main, extra string) {
	parts := strings.SplitN(f.ReferenceColumn, "|", 2)
	main = strings.TrimSpace(parts[0])
	if len(parts) > 1 {
		extra = strings.TrimSpace(parts[1])
	}
	return main, extra
}

// IsPlaceholder reports whether the field fills a literal {token} in the outbound template text
func (f *IntegrationField) IsPlaceholder() bool {
	return strings.HasPrefix(f.XmlPath, "{")
}

// FieldPath is an XmlPath split into its extraction part and optional mapping rule
type FieldPath struct {
	Extract string
	Rule    string
}

// ParseFieldPath splits a raw XmlPath on the first "|".
// Both parts are trimmed; a path without "|" has an empty rule.
func ParseFieldPath(raw string) FieldPath {
	extract, rule, found := strings.Cut(raw, "|")
	if !found {
		return FieldPath{Extract: raw}
	}
	return FieldPath{Extract: strings.TrimSpace(extract), Rule: strings.TrimSpace(rule)}
}

// HasRule reports whether a value-mapping rule is present
func (p FieldPath) HasRule() bool {
	return p.Rule != ""
}
