package confer

import "time"

// ConvertString converts v to a string, producing a type-mismatch error
// when v does not hold one.
func ConvertString(section, key string, v Value) (string, error) {
	if s, ok := v.AsString(); ok {
		return s, nil
	}
	return "", TypeMismatch(section, key, "string", v.Kind().String())
}

// ConvertInt64 converts v to an int64, producing a type-mismatch error
// when v does not hold one.
func ConvertInt64(section, key string, v Value) (int64, error) {
	if i, ok := v.AsInt64(); ok {
		return i, nil
	}
	return 0, TypeMismatch(section, key, "integer", v.Kind().String())
}

// ConvertFloat64 converts v to a float64, accepting both integers and
// floats (integers are promoted).
func ConvertFloat64(section, key string, v Value) (float64, error) {
	if f, ok := v.AsFloat64(); ok {
		return f, nil
	}
	if i, ok := v.AsInt64(); ok {
		return float64(i), nil
	}
	return 0, TypeMismatch(section, key, "float", v.Kind().String())
}

// ConvertBool converts v to a bool, producing a type-mismatch error when v
// does not hold one.
func ConvertBool(section, key string, v Value) (bool, error) {
	if b, ok := v.AsBool(); ok {
		return b, nil
	}
	return false, TypeMismatch(section, key, "boolean", v.Kind().String())
}

// ConvertDatetime converts v to a time.Time, parsing v as RFC 3339 when it
// holds a string instead of a native datetime.
func ConvertDatetime(section, key string, v Value) (time.Time, error) {
	if dt, ok := v.AsDatetime(); ok {
		return dt, nil
	}
	if s, ok := v.AsString(); ok {
		return parseDatetime(section, key, s)
	}
	return time.Time{}, TypeMismatch(section, key, "datetime", v.Kind().String())
}

func parseDatetime(section, key, raw string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, ValueParse(section, key, "failed to parse datetime: "+raw)
}

// ConvertStringSlice converts v to a []string, validating each element.
func ConvertStringSlice(section, key string, v Value) ([]string, error) {
	return convertSlice(section, key, v, func(section, key string, item Value) (string, error) {
		if s, ok := item.AsString(); ok {
			return s, nil
		}
		return "", elementMismatch(section, key, "string", item)
	})
}

// ConvertInt64Slice converts v to a []int64, validating each element.
func ConvertInt64Slice(section, key string, v Value) ([]int64, error) {
	return convertSlice(section, key, v, func(section, key string, item Value) (int64, error) {
		if i, ok := item.AsInt64(); ok {
			return i, nil
		}
		return 0, elementMismatch(section, key, "integer", item)
	})
}

// ConvertFloat64Slice converts v to a []float64, promoting integer
// elements to float64.
func ConvertFloat64Slice(section, key string, v Value) ([]float64, error) {
	return convertSlice(section, key, v, func(section, key string, item Value) (float64, error) {
		if f, ok := item.AsFloat64(); ok {
			return f, nil
		}
		if i, ok := item.AsInt64(); ok {
			return float64(i), nil
		}
		return 0, elementMismatch(section, key, "float", item)
	})
}

// ConvertBoolSlice converts v to a []bool, validating each element.
func ConvertBoolSlice(section, key string, v Value) ([]bool, error) {
	return convertSlice(section, key, v, func(section, key string, item Value) (bool, error) {
		if b, ok := item.AsBool(); ok {
			return b, nil
		}
		return false, elementMismatch(section, key, "boolean", item)
	})
}

// ConvertDatetimeSlice converts v to a []time.Time, parsing string
// elements when necessary.
func ConvertDatetimeSlice(section, key string, v Value) ([]time.Time, error) {
	return convertSlice(section, key, v, func(section, key string, item Value) (time.Time, error) {
		if dt, ok := item.AsDatetime(); ok {
			return dt, nil
		}
		if s, ok := item.AsString(); ok {
			return parseDatetime(section, key, s)
		}
		return time.Time{}, elementMismatch(section, key, "datetime", item)
	})
}

func convertSlice[T any](section, key string, v Value, convert func(section, key string, item Value) (T, error)) ([]T, error) {
	items, ok := v.AsArray()
	if !ok {
		return nil, TypeMismatch(section, key, "array", v.Kind().String())
	}
	out := make([]T, 0, len(items))
	for index, item := range items {
		converted, err := convert(section, key, item)
		if err != nil {
			return nil, withIndex(err, index)
		}
		out = append(out, converted)
	}
	return out, nil
}

func elementMismatch(section, key, expected string, v Value) error {
	return ValueParse(section, key, "expected array elements of type "+expected+", found "+v.Kind().String())
}
