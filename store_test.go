package confer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStoreIsEmpty(t *testing.T) {
	s := New()
	assert.Empty(t, s.ListSections())
}

func TestSetAndGetStringRoundtrip(t *testing.T) {
	s := New()
	require.NoError(t, s.SetString("app", "name", "conferencier"))

	got, err := s.GetString("app", "name")
	require.NoError(t, err)
	assert.Equal(t, "conferencier", got)
}

func TestDatetimeFallbackFromString(t *testing.T) {
	s := New()
	require.NoError(t, s.SetString("app", "started", "2026-01-02T03:04:05Z"))

	got, err := s.GetDatetime("app", "started")
	require.NoError(t, err)
	assert.True(t, got.Equal(time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)))
}

func TestFloatSliceAcceptsIntegers(t *testing.T) {
	s, err := FromString(`[app]
ratios = [1, 2.5, 3]
`)
	require.NoError(t, err)

	got, err := s.GetFloat64Slice("app", "ratios")
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2.5, 3}, got)
}

func TestMissingKeyYieldsError(t *testing.T) {
	s := New()
	_, err := s.GetString("app", "missing")
	require.Error(t, err)

	var ce *ConferError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, KindMissingKey, ce.Kind)
	assert.ErrorIs(t, err, ErrMissingKey)
}

func TestLoadStringReplacesContent(t *testing.T) {
	s, err := FromString(`[a]
x = 1
`)
	require.NoError(t, err)

	require.NoError(t, s.LoadString(`[b]
y = 2
`))

	assert.False(t, s.SectionExists("a"))
	assert.True(t, s.SectionExists("b"))
}

func TestListKeysOnMissingSectionIsEmpty(t *testing.T) {
	s := New()
	keys, err := s.ListKeys("nowhere")
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestAddSectionIsIdempotent(t *testing.T) {
	s := New()
	require.NoError(t, s.AddSection("app"))
	require.NoError(t, s.AddSection("app"))
	assert.True(t, s.SectionExists("app"))
}

func TestRemoveKeyOnMissingKeyIsNoop(t *testing.T) {
	s := New()
	require.NoError(t, s.AddSection("app"))
	require.NoError(t, s.RemoveKey("app", "absent"))
}

func TestCloneIsIndependentOfOriginal(t *testing.T) {
	s := New()
	require.NoError(t, s.SetInt64Slice("app", "ports", []int64{1, 2, 3}))

	clone := s.Clone()
	require.NoError(t, s.SetInt64Slice("app", "ports", []int64{9}))

	got, err := clone.GetInt64Slice("app", "ports")
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2, 3}, got)
}

func TestGetSectionTableSnapshotIsDetached(t *testing.T) {
	s := New()
	require.NoError(t, s.SetString("app", "name", "a"))

	snap, ok := s.GetSectionTable("app")
	require.True(t, ok)

	require.NoError(t, s.SetString("app", "name", "b"))
	v, ok := snap["name"]
	require.True(t, ok)
	str, _ := v.AsString()
	assert.Equal(t, "a", str)
}

func TestSetValueTypeMismatchesAgainstNonTableSection(t *testing.T) {
	s, err := FromString(`app = "not a table"`)
	require.NoError(t, err)

	err = s.SetString("app", "x", "y")
	require.Error(t, err)

	var ce *ConferError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, KindTypeMismatch, ce.Kind)
}
