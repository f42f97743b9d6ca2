package confmod

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// Option customizes binding construction. Most customization happens via
// struct tags; Option covers the handful of things a string tag cannot
// express, chiefly an explicit section name override and per-field runtime
// initializers (Go has no compile-time expression literals to put in a
// tag, so an initializer must be a real closure supplied here — the
// idiomatic substitute for conferencier-derive's `init = "<expr>"`).
type Option func(*options)

type options struct {
	section string
	inits   map[string]func() any
}

// WithSection overrides the section name a binding targets. Without it,
// the section name is derived from the struct's type name, stripping a
// leading "Confer" prefix if present — mirroring conferencier-derive's
// default_section_name.
func WithSection(name string) Option {
	return func(o *options) { o.section = name }
}

// WithInit supplies the initializer for the named field, used in place of
// a zero value or a `default=` tag when the field is marked `confer:"-"`
// for save/load but still needs a runtime-computed starting value (e.g. a
// timestamp captured at construction time). fn's returned value is
// assigned directly into the field and must be of the field's exact Go
// type.
func WithInit(fieldName string, fn func() any) Option {
	return func(o *options) {
		if o.inits == nil {
			o.inits = make(map[string]func() any)
		}
		o.inits[fieldName] = fn
	}
}

const tagKey = "confer"

// parsedTag is the result of splitting one field's `confer:"..."` tag.
type parsedTag struct {
	ignore     bool
	rename     string
	hasDefault bool
	defaultLit string
}

func parseTag(raw string) parsedTag {
	if raw == "-" {
		return parsedTag{ignore: true}
	}
	if raw == "" {
		return parsedTag{}
	}
	segments := splitTopLevel(raw, ',')
	out := parsedTag{}
	if len(segments) > 0 && segments[0] != "" && !strings.Contains(segments[0], "=") {
		out.rename = segments[0]
		segments = segments[1:]
	}
	for _, seg := range segments {
		if rest, ok := cutPrefix(seg, "default="); ok {
			out.hasDefault = true
			out.defaultLit = rest
		}
	}
	return out
}

func cutPrefix(s, prefix string) (string, bool) {
	if strings.HasPrefix(s, prefix) {
		return s[len(prefix):], true
	}
	return "", false
}

// splitTopLevel splits s on sep, treating '[' ... ']' as non-splittable so
// an array default literal's internal commas survive.
func splitTopLevel(s string, sep byte) []string {
	var out []string
	depth := 0
	start := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '[':
			depth++
		case ']':
			if depth > 0 {
				depth--
			}
		default:
			if s[i] == sep && depth == 0 {
				out = append(out, s[start:i])
				start = i + 1
			}
		}
	}
	out = append(out, s[start:])
	return out
}

// parseDefaultLiteral interprets raw according to ft, producing a native Go
// value of exactly goType — the field's own reflect.Type — so the result is
// always directly assignable without a further conversion at load time.
// This matters for platform-sized fields (int, uint): narrowIntTo/
// parseScalarLiteral work in int64/uint64, so every element gets Converted
// to goType's element type before being placed in the result.
func parseDefaultLiteral(raw string, ft fieldType, goType reflect.Type) (any, error) {
	switch ft.container {
	case containerVec:
		out, err := parseArraySlice(raw, ft, goType)
		if err != nil {
			return nil, err
		}
		return out.Interface(), nil
	case containerOptionVec:
		sliceType := goType.Elem()
		out, err := parseArraySlice(raw, ft, sliceType)
		if err != nil {
			return nil, err
		}
		ptr := reflect.New(sliceType)
		ptr.Elem().Set(out)
		return ptr.Interface(), nil
	case containerOption:
		elemType := goType.Elem()
		v, err := parseScalarLiteral(raw, ft)
		if err != nil {
			return nil, err
		}
		ptr := reflect.New(elemType)
		ptr.Elem().Set(reflect.ValueOf(v).Convert(elemType))
		return ptr.Interface(), nil
	default:
		v, err := parseScalarLiteral(raw, ft)
		if err != nil {
			return nil, err
		}
		return reflect.ValueOf(v).Convert(goType).Interface(), nil
	}
}

// parseArraySlice parses a bracketed literal into a slice of exactly
// sliceType.
func parseArraySlice(raw string, ft fieldType, sliceType reflect.Type) (reflect.Value, error) {
	elems := parseArrayLiteral(raw)
	elemType := sliceType.Elem()
	out := reflect.MakeSlice(sliceType, 0, len(elems))
	for _, elem := range elems {
		v, err := parseScalarLiteral(strings.TrimSpace(elem), ft)
		if err != nil {
			return reflect.Value{}, err
		}
		out = reflect.Append(out, reflect.ValueOf(v).Convert(elemType))
	}
	return out, nil
}

func parseArrayLiteral(raw string) []string {
	trimmed := strings.TrimSpace(raw)
	trimmed = strings.TrimPrefix(trimmed, "[")
	trimmed = strings.TrimSuffix(trimmed, "]")
	if strings.TrimSpace(trimmed) == "" {
		return nil
	}
	parts := splitTopLevel(trimmed, ',')
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return parts
}

func parseScalarLiteral(raw string, ft fieldType) (any, error) {
	switch ft.scalar {
	case scalarString:
		return raw, nil
	case scalarBool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid bool default %q: %w", raw, err)
		}
		return b, nil
	case scalarInteger:
		i, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid integer default %q: %w", raw, err)
		}
		return narrowIntTo(ft.integer, i)
	case scalarFloat:
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid float default %q: %w", raw, err)
		}
		return narrowFloatTo(ft.float, f)
	case scalarDatetime:
		for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
			if t, err := time.Parse(layout, raw); err == nil {
				return t, nil
			}
		}
		return nil, fmt.Errorf("invalid datetime default %q", raw)
	default:
		return nil, fmt.Errorf("unsupported default scalar kind")
	}
}

