package integration

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Row is one relational row keyed by column name
type Row map[string]any

// Lookup returns the value of column, matching the exact name first and
// then case-insensitively. ok is false when the column is absent.
func (r Row) Lookup(column string) (any, bool) {
	if r == nil {
		return nil, false
	}
	if v, ok := r[column]; ok {
		return v, true
	}
	for k, v := range r {
		if strings.EqualFold(k, column) {
			return v, true
		}
	}
	return nil, false
}

// Int64 returns the column as an integer identifier
func (r Row) Int64(column string) (int64, bool) {
	v, ok := r.Lookup(column)
	if !ok || v == nil {
		return 0, false
	}
	return toInt64(v)
}

// Text returns the column rendered as text, "" when absent or NULL
func (r Row) Text(column string) string {
	v, ok := r.Lookup(column)
	if !ok || v == nil {
		return ""
	}
	return toString(v)
}

func toInt64(v any) (int64, bool) {
	switch x := v.(type) {
	case int64:
		return x, true
	case int32:
		return int64(x), true
	case int:
		return int64(x), true
	case uint32:
		return int64(x), true
	case uint64:
		return int64(x), true
	case float64:
		return int64(x), true
	case []byte:
		n, err := strconv.ParseInt(strings.TrimSpace(string(x)), 10, 64)
		return n, err == nil
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(x), 10, 64)
		return n, err == nil
	default:
		return 0, false
	}
}

// toString renders a database value the way ERP documents expect it.
// Dates use the SAP yyyy-MM-dd form.
func toString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case []byte:
		return string(x)
	case time.Time:
		return x.Format("2006-01-02")
	case *time.Time:
		if x == nil {
			return ""
		}
		return x.Format("2006-01-02")
	case decimal.Decimal:
		return x.String()
	case bool:
		return strconv.FormatBool(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	default:
		return fmt.Sprint(x)
	}
}

// Generator column names. A DbColumn starting with GeneratorPrefix never reads a row.
const (
	GeneratorPrefix  = "GENERATE_"
	GeneratorGUID    = "GENERATE_GUID"
	GeneratorQuickID = "GENERATE_QUICK_ID"
)

// DefaultQuickIDPrefix is the correlation prefix used by GENERATE_QUICK_ID
const DefaultQuickIDPrefix = "924"

// Generators produces the values of GENERATE_ columns
type Generators struct {
	Now           func() time.Time
	NewID         func() uuid.UUID
	QuickIDPrefix string
}

// NewGenerators returns generators using the wall clock and random UUIDs
func NewGenerators(quickIDPrefix string) Generators {
	if quickIDPrefix == "" {
		quickIDPrefix = DefaultQuickIDPrefix
	}
	return Generators{Now: time.Now, NewID: uuid.New, QuickIDPrefix: quickIDPrefix}
}

// Generate returns the generated value for column. Unknown generators yield "".
func (g Generators) Generate(column string) string {
	switch column {
	case GeneratorGUID:
		newID := g.NewID
		if newID == nil {
			newID = uuid.New
		}
		return strings.ReplaceAll(newID().String(), "-", "")
	case GeneratorQuickID:
		now := g.Now
		if now == nil {
			now = time.Now
		}
		prefix := g.QuickIDPrefix
		if prefix == "" {
			prefix = DefaultQuickIDPrefix
		}
		stamp := strings.Replace(now().Format("20060102150405.000"), ".", "", 1)
		return prefix + "-" + stamp
	default:
		return ""
	}
}

// ResolveRowValue resolves an outbound field against a main row and an optional
// fallback row: main row, then fallback row, then DefaultValue, then "".
// A blank DbColumn returns DefaultValue directly.
func ResolveRowValue(f IntegrationField, main, fallback Row, gen Generators) string {
	column := f.DbColumn
	if strings.TrimSpace(column) == "" {
		return f.DefaultValue
	}
	if strings.HasPrefix(column, GeneratorPrefix) {
		return gen.Generate(column)
	}
	if v := main.Text(column); v != "" {
		return v
	}
	if v := fallback.Text(column); v != "" {
		return v
	}
	return f.DefaultValue
}
