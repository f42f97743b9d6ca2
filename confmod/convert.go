package confmod

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"time"

	"github.com/Komix42/conferencier"
)

// narrowIntTo converts a store int64 down to the exact Go integer width and
// signedness ik describes, range-checking the conversion the way
// conferencier-derive's integer_from_store does at macro-expansion time.
// The result is returned as `any` holding the concrete narrow type (int8,
// uint32, ...) so reflect.Set can assign it directly into the field.
func narrowIntTo(ik integerKind, raw int64) (any, error) {
	switch {
	case ik.unsigned && ik.bits == 8:
		if raw < 0 || raw > math.MaxUint8 {
			return nil, rangeError(raw, ik)
		}
		return uint8(raw), nil
	case ik.unsigned && ik.bits == 16:
		if raw < 0 || raw > math.MaxUint16 {
			return nil, rangeError(raw, ik)
		}
		return uint16(raw), nil
	case ik.unsigned && ik.bits == 32:
		if raw < 0 || raw > math.MaxUint32 {
			return nil, rangeError(raw, ik)
		}
		return uint32(raw), nil
	case ik.unsigned:
		if raw < 0 {
			return nil, rangeError(raw, ik)
		}
		return uint64(raw), nil
	case ik.bits == 8:
		if raw < math.MinInt8 || raw > math.MaxInt8 {
			return nil, rangeError(raw, ik)
		}
		return int8(raw), nil
	case ik.bits == 16:
		if raw < math.MinInt16 || raw > math.MaxInt16 {
			return nil, rangeError(raw, ik)
		}
		return int16(raw), nil
	case ik.bits == 32:
		if raw < math.MinInt32 || raw > math.MaxInt32 {
			return nil, rangeError(raw, ik)
		}
		return int32(raw), nil
	default:
		return raw, nil
	}
}

func rangeError(raw int64, ik integerKind) error {
	return fmt.Errorf("value %d out of range for %d-bit %s integer", raw, ik.bits, signedness(ik))
}

func signedness(ik integerKind) string {
	if ik.unsigned {
		return "unsigned"
	}
	return "signed"
}

// widenIntFrom converts a concrete Go integer value up to the store's
// int64, range-checking the one direction that can actually overflow: an
// unsigned value whose magnitude exceeds int64's positive range. Reads the
// value via reflect rather than a type switch on exact types so platform-
// sized fields (int, uint — which classify as 64-bit but aren't spelled
// int64/uint64) widen correctly too. Mirrors integer_to_store.
func widenIntFrom(ik integerKind, v any) (int64, error) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int(), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		u := rv.Uint()
		if u > math.MaxInt64 {
			return 0, fmt.Errorf("value %d overflows the store's signed 64-bit integer representation", u)
		}
		return int64(u), nil
	default:
		return 0, fmt.Errorf("unsupported integer type %T", v)
	}
}

// narrowFloatTo converts a store float64 down to float32 when fk calls for
// it, checking finiteness and range the way float_from_store does.
func narrowFloatTo(fk floatKind, raw float64) (any, error) {
	if fk.bits == 32 {
		if math.IsNaN(raw) || math.IsInf(raw, 0) {
			return nil, fmt.Errorf("value %v is not finite", raw)
		}
		if raw != 0 && (math.Abs(raw) > math.MaxFloat32) {
			return nil, fmt.Errorf("value %v out of range for 32-bit float", raw)
		}
		return float32(raw), nil
	}
	return raw, nil
}

// widenFloatFrom converts a concrete Go float value up to the store's
// float64. Always lossless, mirroring float_to_store.
func widenFloatFrom(fk floatKind, v any) (float64, error) {
	if fk.bits == 32 {
		return float64(v.(float32)), nil
	}
	return v.(float64), nil
}

// scalarFromStore reads one scalar field's value out of v, converting and
// range-checking it down to the exact Go type ft describes. Mirrors
// scalar_from_store's dispatch over ScalarKind.
func scalarFromStore(section, key string, ft fieldType, v confer.Value) (any, error) {
	switch ft.scalar {
	case scalarString:
		return confer.ConvertString(section, key, v)
	case scalarBool:
		return confer.ConvertBool(section, key, v)
	case scalarInteger:
		raw, err := confer.ConvertInt64(section, key, v)
		if err != nil {
			return nil, err
		}
		narrowed, err := narrowIntTo(ft.integer, raw)
		if err != nil {
			return nil, confer.ValueParse(section, key, err.Error())
		}
		return narrowed, nil
	case scalarFloat:
		raw, err := confer.ConvertFloat64(section, key, v)
		if err != nil {
			return nil, err
		}
		narrowed, err := narrowFloatTo(ft.float, raw)
		if err != nil {
			return nil, confer.ValueParse(section, key, err.Error())
		}
		return narrowed, nil
	case scalarDatetime:
		return confer.ConvertDatetime(section, key, v)
	default:
		return nil, fmt.Errorf("unsupported scalar kind for store read")
	}
}

// vecFromStore reads an array field's value out of v, converting and
// range-checking each element down to ft's exact element type. Elements
// are returned boxed in their concrete narrow Go type (e.g. int32,
// float32); binding.go assembles the properly typed slice via reflect.
// Mirrors vec_from_store.
func vecFromStore(section, key string, ft fieldType, v confer.Value) ([]any, error) {
	items, ok := v.AsArray()
	if !ok {
		return nil, confer.TypeMismatch(section, key, "array", v.Kind().String())
	}
	scalarFt := ft
	scalarFt.container = containerPlain
	out := make([]any, 0, len(items))
	for index, item := range items {
		converted, err := scalarFromStore(section, key, scalarFt, item)
		if err != nil {
			return nil, withIndexErr(err, index)
		}
		out = append(out, converted)
	}
	return out, nil
}

func withIndexErr(err error, index int) error {
	var ce *confer.ConferError
	if errors.As(err, &ce) && ce.Kind == confer.KindValueParse {
		return confer.ValueParse(ce.Section, ce.Key, fmt.Sprintf("%s (at index %d)", ce.Message, index))
	}
	return err
}

// valueToStore converts a native Go scalar value (as read off a struct
// field via reflection) into a confer.Value, mirroring scalar_to_store's
// dispatch over ScalarKind.
func valueToStore(ft fieldType, v any) (confer.Value, error) {
	switch ft.scalar {
	case scalarString:
		return confer.String(v.(string)), nil
	case scalarBool:
		return confer.Bool(v.(bool)), nil
	case scalarInteger:
		i, err := widenIntFrom(ft.integer, v)
		if err != nil {
			return confer.Value{}, err
		}
		return confer.Int64(i), nil
	case scalarFloat:
		f, err := widenFloatFrom(ft.float, v)
		if err != nil {
			return confer.Value{}, err
		}
		return confer.Float64(f), nil
	case scalarDatetime:
		return confer.Datetime(v.(time.Time)), nil
	default:
		return confer.Value{}, fmt.Errorf("unsupported scalar kind for store write")
	}
}

// vecToStore converts a reflect.Value holding a []T slice into a
// confer.Value array, widening each element up to the store's native
// representation. Mirrors vec_to_store.
func vecToStore(ft fieldType, slice reflect.Value) (confer.Value, error) {
	scalarFt := ft
	scalarFt.container = containerPlain
	items := make([]confer.Value, slice.Len())
	for i := 0; i < slice.Len(); i++ {
		v, err := valueToStore(scalarFt, slice.Index(i).Interface())
		if err != nil {
			return confer.Value{}, err
		}
		items[i] = v
	}
	return confer.Array(items), nil
}
