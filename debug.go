package confer

import (
	"fmt"
	"strings"

	"github.com/mitchellh/mapstructure"
)

// DecodeSection decodes section's current contents into target using
// mapstructure, for ad hoc inspection and diagnostics. It is a narrow,
// non-authoritative convenience: the module binding layer in confmod never
// uses this path, since its field-by-field conversion has to enforce the
// store's own narrowing/widening rules rather than mapstructure's generic
// ones. DecodeSection is for callers that just want a quick typed peek at
// a section's data, e.g. in a debug endpoint or a test assertion.
func (s *Store) DecodeSection(section string, target any) error {
	snapshot, ok := s.GetSectionTable(section)
	if !ok {
		return MissingKey(section, "<section>")
	}
	native := tableToNative(snapshot)
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           target,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return fmt.Errorf("confer: building decoder for section %s: %w", section, err)
	}
	if err := decoder.Decode(native); err != nil {
		return fmt.Errorf("confer: decoding section %s: %w", section, err)
	}
	return nil
}

// Debug renders a human-readable dump of the store's current contents,
// sections and keys in sorted order, for logging and troubleshooting.
// Mirrors the teacher's own Debug convenience in spirit, ported to this
// store's section/key shape.
func (s *Store) Debug() string {
	var b strings.Builder
	b.WriteString("Store Debug Info:\n")

	sections := s.ListSections()
	for _, section := range sections {
		b.WriteString(fmt.Sprintf("[%s]\n", section))
		keys, err := s.ListKeys(section)
		if err != nil {
			b.WriteString(fmt.Sprintf("  <error: %v>\n", err))
			continue
		}
		for _, key := range keys {
			v, _ := s.GetValue(section, key)
			b.WriteString(fmt.Sprintf("  %s = %v (%s)\n", key, debugValue(v), v.Kind()))
		}
	}
	return b.String()
}

func debugValue(v Value) any {
	switch v.Kind() {
	case KindTable:
		return "<table>"
	default:
		return valueToNative(v)
	}
}
