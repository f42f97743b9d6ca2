package confer

import (
	"bytes"
	"fmt"
	"time"

	"github.com/BurntSushi/toml"
)

// parseTable decodes TOML source into the internal Table representation,
// wrapping decoding failures as a KindParse error.
func parseTable(source string) (Table, error) {
	var native map[string]any
	if err := toml.Unmarshal([]byte(source), &native); err != nil {
		return nil, newParseError(err)
	}
	return nativeToTable(native), nil
}

// serializeTable encodes a Table back to TOML text, wrapping encoding
// failures as a KindSerialize error.
func serializeTable(t Table) (string, error) {
	native := tableToNative(t)
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(native); err != nil {
		return "", newSerializeError(err)
	}
	return buf.String(), nil
}

// nativeToTable converts a map produced by toml.Unmarshal into our closed
// Value algebra.
func nativeToTable(native map[string]any) Table {
	out := make(Table, len(native))
	for k, v := range native {
		out[k] = nativeToValue(v)
	}
	return out
}

func nativeToValue(v any) Value {
	switch x := v.(type) {
	case string:
		return String(x)
	case int64:
		return Int64(x)
	case int:
		return Int64(int64(x))
	case float64:
		return Float64(x)
	case bool:
		return Bool(x)
	case time.Time:
		return Datetime(x)
	case fmt.Stringer:
		// Any other decoded value with a String method is kept as its
		// string form; a datetime-typed read can still re-parse it through
		// the string fallback in ConvertDatetime. (All TOML date and time
		// literals, local ones included, arrive as time.Time and take the
		// case above.)
		return String(x.String())
	case []any:
		items := make([]Value, len(x))
		for i, item := range x {
			items[i] = nativeToValue(item)
		}
		return Array(items)
	case map[string]any:
		return SubTable(nativeToTable(x))
	default:
		return String(fmt.Sprintf("%v", x))
	}
}

// tableToNative converts our closed Value algebra back into plain Go
// values that toml.Encoder understands.
func tableToNative(t Table) map[string]any {
	out := make(map[string]any, len(t))
	for k, v := range t {
		out[k] = valueToNative(v)
	}
	return out
}

func valueToNative(v Value) any {
	switch v.kind {
	case KindString:
		s, _ := v.AsString()
		return s
	case KindInt64:
		i, _ := v.AsInt64()
		return i
	case KindFloat64:
		f, _ := v.AsFloat64()
		return f
	case KindBool:
		b, _ := v.AsBool()
		return b
	case KindDatetime:
		dt, _ := v.AsDatetime()
		return dt
	case KindArray:
		items, _ := v.AsArray()
		native := make([]any, len(items))
		for i, item := range items {
			native[i] = valueToNative(item)
		}
		return native
	case KindTable:
		table, _ := v.AsTable()
		return tableToNative(table)
	default:
		return nil
	}
}
