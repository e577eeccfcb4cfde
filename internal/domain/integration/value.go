package integration

import (
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Value is a resolved field value. The zero Value is the null marker.
type Value struct {
	v     any
	valid bool
}

// Null returns the null marker
func Null() Value {
	return Value{}
}

// NewValue wraps a non-null value
func NewValue(v any) Value {
	if v == nil {
		return Value{}
	}
	return Value{v: v, valid: true}
}

// IsNull reports whether the value is the null marker
func (v Value) IsNull() bool {
	return !v.valid
}

// Interface returns the underlying value, or nil for the null marker
func (v Value) Interface() any {
	return v.v
}

// String renders the value as text. The null marker renders as "".
func (v Value) String() string {
	if !v.valid {
		return ""
	}
	switch x := v.v.(type) {
	case string:
		return x
	case decimal.Decimal:
		return x.String()
	case time.Time:
		return x.Format(time.RFC3339)
	case bool:
		return strconv.FormatBool(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	default:
		return toString(x)
	}
}

// datetimeLayouts are tried in order when coercing to datetime
var datetimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"20060102",
	"01/02/2006 15:04:05",
	"01/02/2006",
}

// Coerce parses raw into the given data type.
// Blank input and parse failures yield the null marker. An empty or unknown
// type keeps the string as-is.
func Coerce(raw string, dataType DataType) Value {
	if strings.TrimSpace(raw) == "" {
		return Null()
	}
	if dataType == "" {
		return NewValue(raw)
	}

	s := strings.TrimSpace(raw)
	switch strings.ToLower(string(dataType)) {
	case "int":
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return Null()
		}
		return NewValue(n)
	case "decimal":
		d, err := decimal.NewFromString(s)
		if err != nil {
			return Null()
		}
		return NewValue(d)
	case "float":
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return Null()
		}
		return NewValue(f)
	case "boolean":
		return NewValue(s == "1" || strings.EqualFold(s, "true") || strings.EqualFold(s, "x"))
	case "datetime":
		for _, layout := range datetimeLayouts {
			if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
				return NewValue(t)
			}
		}
		return Null()
	default:
		return NewValue(raw)
	}
}
