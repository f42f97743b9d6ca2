package confer

import (
	"context"
	"sort"
	"sync"
	"time"
)

// Store is an in-memory, TOML-backed configuration hub: a tree of sections,
// each a flat map of keys to Values, guarded by a single sync.RWMutex.
// A *Store is a plain shareable pointer — Go's garbage collector retires it
// once its last reference goes away, which is why this port carries no
// explicit reference-counting wrapper around it.
type Store struct {
	mu    sync.RWMutex
	table Table
}

// New creates an empty Store.
func New() *Store {
	return &Store{table: make(Table)}
}

// FromString parses source as a TOML document and returns a Store seeded
// with its contents.
func FromString(source string) (*Store, error) {
	table, err := parseTable(source)
	if err != nil {
		return nil, err
	}
	return &Store{table: table}, nil
}

// Clone returns a deep copy of the Store. Mutating the clone never affects
// the original and vice versa.
func (s *Store) Clone() *Store {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return &Store{table: s.table.clone()}
}

// LoadString destructively replaces the Store's contents with the parsed
// contents of source. On parse failure the Store is left untouched.
func (s *Store) LoadString(source string) error {
	table, err := parseTable(source)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.table = table
	return nil
}

// SaveString serializes the Store's current contents to a TOML string.
func (s *Store) SaveString() (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return serializeTable(s.table)
}

// GetValue returns the raw Value stored at (section, key), if present.
func (s *Store) GetValue(section, key string) (Value, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	table, ok := sectionTable(s.table, section)
	if !ok {
		return Value{}, false
	}
	v, ok := table[key]
	return v, ok
}

// GetSectionTable returns a deep-cloned snapshot of the table stored at
// section, and whether section exists as a table at all. This is the Go
// equivalent of the original's get_section_table, and the single read
// acquisition a module binding uses to snapshot a whole section before its
// exclusive write phase (see confmod.Binding.Load).
func (s *Store) GetSectionTable(section string) (Table, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	table, ok := sectionTable(s.table, section)
	if !ok {
		return nil, false
	}
	return table.clone(), true
}

// SetValue inserts value at (section, key), creating the section if
// necessary. It fails with a type-mismatch error if section already names
// a non-table value.
func (s *Store) SetValue(section, key string, value Value) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.setLocked(section, key, value)
}

func (s *Store) setLocked(section, key string, value Value) error {
	existing, present := s.table[section]
	if !present {
		s.table[section] = SubTable(Table{key: value})
		return nil
	}
	table, ok := existing.AsTable()
	if !ok {
		return TypeMismatch(section, "<section>", "table", existing.Kind().String())
	}
	table[key] = value
	s.table[section] = SubTable(table)
	return nil
}

// SectionExists reports whether section names a table in the store.
func (s *Store) SectionExists(section string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := sectionTable(s.table, section)
	return ok
}

// AddSection ensures section exists as an empty table, and is a no-op if
// it already does. It fails with a type-mismatch error if section already
// names a non-table value.
func (s *Store) AddSection(section string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, present := s.table[section]
	if !present {
		s.table[section] = SubTable(Table{})
		return nil
	}
	if _, ok := existing.AsTable(); !ok {
		return TypeMismatch(section, "<section>", "table", existing.Kind().String())
	}
	return nil
}

// RemoveKey removes key from section. It is a no-op if the key or the
// section is absent, and fails with a type-mismatch error if section
// names a non-table value.
func (s *Store) RemoveKey(section, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, present := s.table[section]
	if !present {
		return nil
	}
	table, ok := existing.AsTable()
	if !ok {
		return TypeMismatch(section, "<section>", "table", existing.Kind().String())
	}
	delete(table, key)
	s.table[section] = SubTable(table)
	return nil
}

// RemoveSection removes section entirely. It is a no-op if section is
// absent.
func (s *Store) RemoveSection(section string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.table, section)
	return nil
}

// ListSections returns the names of every top-level table in the store, in
// sorted order. This is a minor, documented deviation from the original's
// unordered Vec<String>, chosen for deterministic assertions (see
// DESIGN.md).
func (s *Store) ListSections() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.table))
	for name, value := range s.table {
		if _, ok := value.AsTable(); ok {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// ListKeys returns the keys contained in section, sorted, or an empty
// slice if section is absent. It fails with a type-mismatch error if
// section names a non-table value.
func (s *Store) ListKeys(section string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	existing, present := s.table[section]
	if !present {
		return []string{}, nil
	}
	table, ok := existing.AsTable()
	if !ok {
		return nil, TypeMismatch(section, "<section>", "table", existing.Kind().String())
	}
	keys := make([]string, 0, len(table))
	for k := range table {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

// Sections is an alias for ListSections, kept for readability at call
// sites that read as "the store's sections" rather than "list them".
func (s *Store) Sections() []string { return s.ListSections() }

// Keys is an alias for ListKeys.
func (s *Store) Keys(section string) ([]string, error) { return s.ListKeys(section) }

// fetchValue fetches the raw Value at (section, key), returning a
// missing-key error when the section or key is absent and a type-mismatch
// error when section names a non-table value.
func (s *Store) fetchValue(section, key string) (Value, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	existing, present := s.table[section]
	if !present {
		return Value{}, MissingKey(section, key)
	}
	table, ok := existing.AsTable()
	if !ok {
		return Value{}, TypeMismatch(section, "<section>", "table", existing.Kind().String())
	}
	v, ok := table[key]
	if !ok {
		return Value{}, MissingKey(section, key)
	}
	return v, nil
}

func sectionTable(table Table, section string) (Table, bool) {
	v, ok := table[section]
	if !ok {
		return nil, false
	}
	return v.AsTable()
}

// GetString retrieves a string value at (section, key).
func (s *Store) GetString(section, key string) (string, error) {
	v, err := s.fetchValue(section, key)
	if err != nil {
		return "", err
	}
	return ConvertString(section, key, v)
}

// GetInt64 retrieves an integer value at (section, key).
func (s *Store) GetInt64(section, key string) (int64, error) {
	v, err := s.fetchValue(section, key)
	if err != nil {
		return 0, err
	}
	return ConvertInt64(section, key, v)
}

// GetFloat64 retrieves a floating-point value at (section, key), accepting
// stored integers by promotion.
func (s *Store) GetFloat64(section, key string) (float64, error) {
	v, err := s.fetchValue(section, key)
	if err != nil {
		return 0, err
	}
	return ConvertFloat64(section, key, v)
}

// GetBool retrieves a boolean value at (section, key).
func (s *Store) GetBool(section, key string) (bool, error) {
	v, err := s.fetchValue(section, key)
	if err != nil {
		return false, err
	}
	return ConvertBool(section, key, v)
}

// GetDatetime retrieves a timestamp at (section, key), parsing a stored
// string as RFC 3339 when the value isn't already a datetime.
func (s *Store) GetDatetime(section, key string) (time.Time, error) {
	v, err := s.fetchValue(section, key)
	if err != nil {
		return time.Time{}, err
	}
	return ConvertDatetime(section, key, v)
}

// GetStringSlice retrieves a string array at (section, key).
func (s *Store) GetStringSlice(section, key string) ([]string, error) {
	v, err := s.fetchValue(section, key)
	if err != nil {
		return nil, err
	}
	return ConvertStringSlice(section, key, v)
}

// GetInt64Slice retrieves an integer array at (section, key).
func (s *Store) GetInt64Slice(section, key string) ([]int64, error) {
	v, err := s.fetchValue(section, key)
	if err != nil {
		return nil, err
	}
	return ConvertInt64Slice(section, key, v)
}

// GetFloat64Slice retrieves a float array at (section, key), promoting
// stored integer elements.
func (s *Store) GetFloat64Slice(section, key string) ([]float64, error) {
	v, err := s.fetchValue(section, key)
	if err != nil {
		return nil, err
	}
	return ConvertFloat64Slice(section, key, v)
}

// GetBoolSlice retrieves a boolean array at (section, key).
func (s *Store) GetBoolSlice(section, key string) ([]bool, error) {
	v, err := s.fetchValue(section, key)
	if err != nil {
		return nil, err
	}
	return ConvertBoolSlice(section, key, v)
}

// GetDatetimeSlice retrieves a datetime array at (section, key), parsing
// string elements as RFC 3339 when necessary.
func (s *Store) GetDatetimeSlice(section, key string) ([]time.Time, error) {
	v, err := s.fetchValue(section, key)
	if err != nil {
		return nil, err
	}
	return ConvertDatetimeSlice(section, key, v)
}

// SetString stores a string at (section, key), creating the section if
// needed.
func (s *Store) SetString(section, key string, value string) error {
	return s.SetValue(section, key, String(value))
}

// SetInt64 stores an integer at (section, key), creating the section if
// needed.
func (s *Store) SetInt64(section, key string, value int64) error {
	return s.SetValue(section, key, Int64(value))
}

// SetFloat64 stores a float at (section, key), creating the section if
// needed.
func (s *Store) SetFloat64(section, key string, value float64) error {
	return s.SetValue(section, key, Float64(value))
}

// SetBool stores a boolean at (section, key), creating the section if
// needed.
func (s *Store) SetBool(section, key string, value bool) error {
	return s.SetValue(section, key, Bool(value))
}

// SetDatetime stores a timestamp at (section, key), creating the section
// if needed.
func (s *Store) SetDatetime(section, key string, value time.Time) error {
	return s.SetValue(section, key, Datetime(value))
}

// SetStringSlice stores a string array at (section, key), creating the
// section if needed.
func (s *Store) SetStringSlice(section, key string, values []string) error {
	return s.SetValue(section, key, Array(mapSlice(values, String)))
}

// SetInt64Slice stores an integer array at (section, key), creating the
// section if needed.
func (s *Store) SetInt64Slice(section, key string, values []int64) error {
	return s.SetValue(section, key, Array(mapSlice(values, Int64)))
}

// SetFloat64Slice stores a float array at (section, key), creating the
// section if needed.
func (s *Store) SetFloat64Slice(section, key string, values []float64) error {
	return s.SetValue(section, key, Array(mapSlice(values, Float64)))
}

// SetBoolSlice stores a boolean array at (section, key), creating the
// section if needed.
func (s *Store) SetBoolSlice(section, key string, values []bool) error {
	return s.SetValue(section, key, Array(mapSlice(values, Bool)))
}

// SetDatetimeSlice stores a datetime array at (section, key), creating the
// section if needed.
func (s *Store) SetDatetimeSlice(section, key string, values []time.Time) error {
	return s.SetValue(section, key, Array(mapSlice(values, Datetime)))
}

func mapSlice[T any](in []T, f func(T) Value) []Value {
	out := make([]Value, len(in))
	for i, v := range in {
		out[i] = f(v)
	}
	return out
}

// cancelled reports whether ctx has already been cancelled, used by the
// context-aware file constructors to honor cancellation at the blocking
// read suspension point even though the read itself is not interruptible
// mid-syscall.
func cancelled(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil
	}
}
