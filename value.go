package confer

import "time"

// ValueKind is the closed set of shapes a Value can hold, mirroring the
// toml::Value enum the original store is built on.
type ValueKind uint8

const (
	KindString ValueKind = iota
	KindInt64
	KindFloat64
	KindBool
	KindDatetime
	KindArray
	KindTable
)

func (k ValueKind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInt64:
		return "integer"
	case KindFloat64:
		return "float"
	case KindBool:
		return "boolean"
	case KindDatetime:
		return "datetime"
	case KindArray:
		return "array"
	case KindTable:
		return "table"
	default:
		return "unknown"
	}
}

// Table is a section or sub-table: a flat mapping from key to Value.
type Table map[string]Value

// Value is a closed, tagged union over the shapes a TOML document can hold
// at any position: scalars, a homogeneous-by-convention array of Values, or
// a nested table. Arrays are not type-checked at construction time; the
// typed accessors on Store enforce homogeneity (with int-to-float
// promotion) when converting an array into a Go slice.
type Value struct {
	kind  ValueKind
	str   string
	i64   int64
	f64   float64
	b     bool
	dt    time.Time
	arr   []Value
	table Table
}

func (v Value) Kind() ValueKind { return v.kind }

// String constructs a Value holding a string.
func String(s string) Value { return Value{kind: KindString, str: s} }

// Int64 constructs a Value holding a signed 64-bit integer.
func Int64(i int64) Value { return Value{kind: KindInt64, i64: i} }

// Float64 constructs a Value holding a 64-bit float.
func Float64(f float64) Value { return Value{kind: KindFloat64, f64: f} }

// Bool constructs a Value holding a boolean.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Datetime constructs a Value holding a timestamp.
func Datetime(t time.Time) Value { return Value{kind: KindDatetime, dt: t} }

// Array constructs a Value holding an ordered sequence of Values.
func Array(items []Value) Value { return Value{kind: KindArray, arr: items} }

// SubTable constructs a Value holding a nested table.
func SubTable(t Table) Value { return Value{kind: KindTable, table: t} }

// AsString returns the held string and true if the Value is a KindString.
func (v Value) AsString() (string, bool) {
	if v.kind != KindString {
		return "", false
	}
	return v.str, true
}

// AsInt64 returns the held integer and true if the Value is a KindInt64.
func (v Value) AsInt64() (int64, bool) {
	if v.kind != KindInt64 {
		return 0, false
	}
	return v.i64, true
}

// AsFloat64 returns the held float and true if the Value is a KindFloat64.
func (v Value) AsFloat64() (float64, bool) {
	if v.kind != KindFloat64 {
		return 0, false
	}
	return v.f64, true
}

// AsBool returns the held boolean and true if the Value is a KindBool.
func (v Value) AsBool() (bool, bool) {
	if v.kind != KindBool {
		return false, false
	}
	return v.b, true
}

// AsDatetime returns the held timestamp and true if the Value is a
// KindDatetime.
func (v Value) AsDatetime() (time.Time, bool) {
	if v.kind != KindDatetime {
		return time.Time{}, false
	}
	return v.dt, true
}

// AsArray returns the held element slice and true if the Value is a
// KindArray.
func (v Value) AsArray() ([]Value, bool) {
	if v.kind != KindArray {
		return nil, false
	}
	return v.arr, true
}

// AsTable returns the held table and true if the Value is a KindTable.
func (v Value) AsTable() (Table, bool) {
	if v.kind != KindTable {
		return nil, false
	}
	return v.table, true
}

// clone returns a deep copy of the Value, used by Store.Clone and
// Store.GetSectionTable so callers can never observe shared backing
// storage for arrays or tables.
func (v Value) clone() Value {
	switch v.kind {
	case KindArray:
		out := make([]Value, len(v.arr))
		for i, item := range v.arr {
			out[i] = item.clone()
		}
		return Value{kind: KindArray, arr: out}
	case KindTable:
		return SubTable(v.table.clone())
	default:
		return v
	}
}

func (t Table) clone() Table {
	out := make(Table, len(t))
	for k, v := range t {
		out[k] = v.clone()
	}
	return out
}
