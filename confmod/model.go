package confmod

import (
	"reflect"
	"time"
)

// containerKind is the high-level shape a field's Go type takes, mirroring
// conferencier-derive's ContainerKind.
type containerKind int

const (
	containerPlain containerKind = iota
	containerVec
	containerOption
	containerOptionVec
)

// scalarKind is the primitive category underneath a container, mirroring
// conferencier-derive's ScalarKind.
type scalarKind int

const (
	scalarString scalarKind = iota
	scalarBool
	scalarInteger
	scalarFloat
	scalarDatetime
)

// integerKind records the exact Go integer type so narrowing/widening
// conversions to and from the store's Int64 can range-check correctly,
// mirroring conferencier-derive's IntegerKind.
type integerKind struct {
	bits     int // 8, 16, 32, or 64
	unsigned bool
}

// floatKind records the exact Go float type, mirroring
// conferencier-derive's FloatKind.
type floatKind struct {
	bits int // 32 or 64
}

// fieldType is a field's fully classified type: its container shape plus
// its scalar category and width.
type fieldType struct {
	container containerKind
	scalar    scalarKind
	integer   integerKind
	float     floatKind
}

var timeType = reflect.TypeOf(time.Time{})

// classifyType inspects a struct field's reflect.Type and returns its
// fieldType, or false if the type is outside the supported set (plain
// scalar, []scalar, *scalar, *[]scalar over string/bool/integer/float/
// time.Time).
func classifyType(t reflect.Type) (fieldType, bool) {
	if t.Kind() == reflect.Ptr {
		elem := t.Elem()
		if elem.Kind() == reflect.Slice {
			scalar, ok := classifyScalar(elem.Elem())
			if !ok {
				return fieldType{}, false
			}
			scalar.container = containerOptionVec
			return scalar, true
		}
		scalar, ok := classifyScalar(elem)
		if !ok {
			return fieldType{}, false
		}
		scalar.container = containerOption
		return scalar, true
	}
	if t.Kind() == reflect.Slice {
		scalar, ok := classifyScalar(t.Elem())
		if !ok {
			return fieldType{}, false
		}
		scalar.container = containerVec
		return scalar, true
	}
	scalar, ok := classifyScalar(t)
	if !ok {
		return fieldType{}, false
	}
	scalar.container = containerPlain
	return scalar, true
}

func classifyScalar(t reflect.Type) (fieldType, bool) {
	switch {
	case t == timeType:
		return fieldType{scalar: scalarDatetime}, true
	case t.Kind() == reflect.String:
		return fieldType{scalar: scalarString}, true
	case t.Kind() == reflect.Bool:
		return fieldType{scalar: scalarBool}, true
	case isIntegerKind(t.Kind()):
		return fieldType{scalar: scalarInteger, integer: integerKind{bits: integerBits(t.Kind()), unsigned: isUnsigned(t.Kind())}}, true
	case t.Kind() == reflect.Float32:
		return fieldType{scalar: scalarFloat, float: floatKind{bits: 32}}, true
	case t.Kind() == reflect.Float64:
		return fieldType{scalar: scalarFloat, float: floatKind{bits: 64}}, true
	default:
		return fieldType{}, false
	}
}

func isIntegerKind(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return true
	default:
		return false
	}
}

func isUnsigned(k reflect.Kind) bool {
	switch k {
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return true
	default:
		return false
	}
}

func integerBits(k reflect.Kind) int {
	switch k {
	case reflect.Int8, reflect.Uint8:
		return 8
	case reflect.Int16, reflect.Uint16:
		return 16
	case reflect.Int32, reflect.Uint32:
		return 32
	default:
		// Int, Int64, Uint, Uint64: treated as 64-bit, matching Go's
		// platform-independent guarantee that int/uint are at least 32
		// bits wide and matching TOML's 64-bit integer representation.
		return 64
	}
}

// fieldDescriptor is the runtime descriptor for one bound struct field,
// the Go substitute for conferencier-derive's Field.
type fieldDescriptor struct {
	goName  string
	key     string
	index   []int
	typ     fieldType
	ignore  bool
	hasInit bool
	init    func() any
	hasDef  bool
	def     any // native Go value already shaped for this field's container
}
