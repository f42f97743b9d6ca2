package confmod

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/Komix42/conferencier"
)

// Binding is a validated, reusable descriptor for loading and saving values
// of type T against a section of a confer.Store. Build one with New and
// keep it around; constructing a Binding is the only place field
// descriptors are parsed and validated, mirroring the one-time cost of
// macro expansion in the original derive-based design.
type Binding[T any] struct {
	section string
	fields  []fieldDescriptor
}

// New builds a Binding for T by reflecting over its fields and their
// `confer:"..."` tags. It fails if T is not a struct, if a field's type
// isn't one of the supported scalar/container shapes, if a field both
// supplies a `default=` literal and a WithInit initializer, or if two
// non-ignored fields resolve to the same stored key.
func New[T any](opts ...Option) (*Binding[T], error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	var zero T
	t := reflect.TypeOf(zero)
	if t == nil || t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("confmod: %T is not a struct", zero)
	}

	section := o.section
	if section == "" {
		section = defaultSectionName(t.Name())
	}

	fields, err := describeFields(t, o.inits)
	if err != nil {
		return nil, fmt.Errorf("confmod: %s: %w", t.Name(), err)
	}

	seen := make(map[string]string, len(fields))
	for _, f := range fields {
		if f.ignore {
			continue
		}
		if other, dup := seen[f.key]; dup {
			return nil, fmt.Errorf("confmod: %s: fields %s and %s both map to key %q", t.Name(), other, f.goName, f.key)
		}
		seen[f.key] = f.goName
	}

	for name := range o.inits {
		if !hasField(fields, name) {
			return nil, fmt.Errorf("confmod: %s: WithInit names unknown field %q", t.Name(), name)
		}
	}

	return &Binding[T]{section: section, fields: fields}, nil
}

func hasField(fields []fieldDescriptor, goName string) bool {
	for _, f := range fields {
		if f.goName == goName {
			return true
		}
	}
	return false
}

// defaultSectionName derives a section name from a struct type name,
// stripping a leading "Confer" prefix if present, mirroring
// conferencier-derive's default_section_name.
func defaultSectionName(typeName string) string {
	if rest, ok := strings.CutPrefix(typeName, "Confer"); ok && rest != "" {
		return rest
	}
	return typeName
}

func describeFields(t reflect.Type, inits map[string]func() any) ([]fieldDescriptor, error) {
	var out []fieldDescriptor
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue
		}
		tagRaw, hasTag := sf.Tag.Lookup(tagKey)
		tag := parseTag(tagRaw)
		if !hasTag {
			tag.rename = ""
		}

		desc := fieldDescriptor{
			goName: sf.Name,
			key:    fieldKey(sf.Name, tag.rename),
			index:  sf.Index,
			ignore: tag.ignore,
		}

		if init, ok := inits[sf.Name]; ok {
			if tag.hasDefault {
				return nil, fmt.Errorf("field %s has both a default= tag and a WithInit initializer", sf.Name)
			}
			desc.hasInit = true
			desc.init = init
		}

		if desc.ignore {
			out = append(out, desc)
			continue
		}

		ft, ok := classifyType(sf.Type)
		if !ok {
			return nil, fmt.Errorf("field %s has unsupported type %s", sf.Name, sf.Type)
		}
		desc.typ = ft

		if tag.hasDefault {
			lit, err := parseDefaultLiteral(tag.defaultLit, ft, sf.Type)
			if err != nil {
				return nil, fmt.Errorf("field %s: %w", sf.Name, err)
			}
			desc.hasDef = true
			desc.def = lit
		}

		out = append(out, desc)
	}
	return out, nil
}

// fieldKey resolves the stored key for a field: an explicit rename from
// the tag's first segment, or the Go field name verbatim otherwise —
// mirroring the teacher's own RegisterStruct convention of falling back to
// field.Name rather than applying any case transform.
func fieldKey(goName, rename string) string {
	if rename != "" {
		return rename
	}
	return goName
}

// Construct builds a fresh record of type T — applying initializers,
// defaults, and zero values field by field — wraps it in a confer.Shared
// handle, and then loads it from store. It is the Go substitute for the
// original's from_confer constructor.
func (b *Binding[T]) Construct(store *confer.Store) (*confer.Shared[T], error) {
	var record T
	rv := reflect.ValueOf(&record).Elem()
	for _, f := range b.fields {
		switch {
		case f.hasInit:
			rv.FieldByIndex(f.index).Set(reflect.ValueOf(f.init()))
		case !f.ignore && f.hasDef:
			assignConverted(rv.FieldByIndex(f.index), f.def)
		}
	}
	handle := confer.NewShared(record)
	if err := b.Load(handle, store); err != nil {
		return nil, err
	}
	return handle, nil
}

// Load refreshes handle's record from store. It takes exactly one read
// snapshot of the section via store.GetSectionTable, then holds handle's
// writer lock for the entire field-assignment sweep against that snapshot
// — a single store read acquisition and a single handle write acquisition,
// deliberately stronger than the per-field lock churn the original
// from_confer/load performs, chosen to avoid re-entrant lock acquisition
// entirely. Fields are assigned into a copy of the record that replaces it
// only once every field has loaded, so a failing field leaves the record
// at its pre-load values.
func (b *Binding[T]) Load(handle *confer.Shared[T], store *confer.Store) error {
	snapshot, sectionExists := store.GetSectionTable(b.section)

	handle.Lock()
	defer handle.Unlock()
	staged := *handle.Get()
	rv := reflect.ValueOf(&staged).Elem()

	for _, f := range b.fields {
		if f.ignore {
			continue
		}
		field := rv.FieldByIndex(f.index)
		var raw confer.Value
		present := false
		if sectionExists {
			raw, present = snapshot[f.key]
		}
		if !present {
			if err := applyMissing(b.section, field, f); err != nil {
				return err
			}
			continue
		}
		if err := assignFromStore(b.section, field, f, raw); err != nil {
			return err
		}
	}
	*handle.Get() = staged
	return nil
}

// applyMissing fills field when its key is absent from the section,
// mirroring missing_behavior: Plain and Vec both require a default (or fail
// with a missing-key error — a required vector is just as mandatory as a
// required scalar), Option/OptionVec default to nil unless a default/init
// says otherwise.
func applyMissing(section string, field reflect.Value, f fieldDescriptor) error {
	switch f.typ.container {
	case containerPlain, containerVec:
		if f.hasDef {
			assignConverted(field, f.def)
			return nil
		}
		return confer.MissingKey(section, f.key)
	case containerOption, containerOptionVec:
		if f.hasDef {
			assignConverted(field, f.def)
			return nil
		}
		field.Set(reflect.Zero(field.Type()))
		return nil
	default:
		return fmt.Errorf("confmod: unreachable container kind")
	}
}

// assignConverted sets field to v, converting v's concrete type (e.g. the
// int64/uint64 values narrowIntTo produces for 64-bit integer kinds) to
// field's exact Go type. This covers platform-sized fields (int, uint)
// that classify as 64-bit but are not spelled int64/uint64.
func assignConverted(field reflect.Value, v any) {
	field.Set(reflect.ValueOf(v).Convert(field.Type()))
}

func assignFromStore(section string, field reflect.Value, f fieldDescriptor, raw confer.Value) error {
	switch f.typ.container {
	case containerPlain:
		v, err := scalarFromStore(section, f.key, f.typ, raw)
		if err != nil {
			return err
		}
		assignConverted(field, v)
		return nil
	case containerVec:
		elems, err := vecFromStore(section, f.key, f.typ, raw)
		if err != nil {
			return err
		}
		field.Set(buildSlice(field.Type(), elems))
		return nil
	case containerOption:
		v, err := scalarFromStore(section, f.key, f.typ, raw)
		if err != nil {
			return err
		}
		ptr := reflect.New(field.Type().Elem())
		assignConverted(ptr.Elem(), v)
		field.Set(ptr)
		return nil
	case containerOptionVec:
		elems, err := vecFromStore(section, f.key, f.typ, raw)
		if err != nil {
			return err
		}
		ptr := reflect.New(field.Type().Elem())
		ptr.Elem().Set(buildSlice(field.Type().Elem(), elems))
		field.Set(ptr)
		return nil
	default:
		return fmt.Errorf("confmod: unreachable container kind")
	}
}

// buildSlice assembles a slice of exactly targetType (e.g. []int, []int32)
// from boxed elements whose concrete type may be narrower or differently
// spelled (targetType's element kind matches, but platform-sized element
// types like int/uint need a Convert from the int64/uint64 narrowIntTo
// produces).
func buildSlice(targetType reflect.Type, elems []any) reflect.Value {
	elemType := targetType.Elem()
	out := reflect.MakeSlice(targetType, 0, len(elems))
	for _, e := range elems {
		out = reflect.Append(out, reflect.ValueOf(e).Convert(elemType))
	}
	return out
}

// Save snapshots handle's record under its reader lock, then writes each
// non-ignored field into store under the store's own locking, finally
// pruning any key in the section that no longer corresponds to a declared
// field. Pruning happens strictly after every field write has succeeded,
// mirroring generate_save's ordering.
func (b *Binding[T]) Save(handle *confer.Shared[T], store *confer.Store) error {
	record := handle.Load()
	rv := reflect.ValueOf(&record).Elem()

	if err := store.AddSection(b.section); err != nil {
		return err
	}

	declared := make(map[string]struct{}, len(b.fields))
	for _, f := range b.fields {
		if f.ignore {
			continue
		}
		declared[f.key] = struct{}{}

		field := rv.FieldByIndex(f.index)
		if err := saveField(store, b.section, f, field); err != nil {
			return err
		}
	}

	existing, err := store.ListKeys(b.section)
	if err != nil {
		return err
	}
	for _, key := range existing {
		if _, ok := declared[key]; !ok {
			if err := store.RemoveKey(b.section, key); err != nil {
				return err
			}
		}
	}
	return nil
}

func saveField(store *confer.Store, section string, f fieldDescriptor, field reflect.Value) error {
	switch f.typ.container {
	case containerPlain:
		v, err := valueToStore(f.typ, field.Interface())
		if err != nil {
			return confer.ValueParse(section, f.key, err.Error())
		}
		return store.SetValue(section, f.key, v)
	case containerVec:
		v, err := vecToStore(f.typ, field)
		if err != nil {
			return confer.ValueParse(section, f.key, err.Error())
		}
		return store.SetValue(section, f.key, v)
	case containerOption:
		if field.IsNil() {
			return store.RemoveKey(section, f.key)
		}
		v, err := valueToStore(f.typ, field.Elem().Interface())
		if err != nil {
			return confer.ValueParse(section, f.key, err.Error())
		}
		return store.SetValue(section, f.key, v)
	case containerOptionVec:
		if field.IsNil() {
			return store.RemoveKey(section, f.key)
		}
		v, err := vecToStore(f.typ, field.Elem())
		if err != nil {
			return confer.ValueParse(section, f.key, err.Error())
		}
		return store.SetValue(section, f.key, v)
	default:
		return fmt.Errorf("confmod: unreachable container kind")
	}
}
