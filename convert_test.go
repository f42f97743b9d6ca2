package confer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvertFloat64PromotesStoredInteger(t *testing.T) {
	got, err := ConvertFloat64("s", "k", Int64(7))
	require.NoError(t, err)
	assert.Equal(t, float64(7), got)
}

func TestConvertInt64RejectsFloat(t *testing.T) {
	_, err := ConvertInt64("s", "k", Float64(1.5))
	require.Error(t, err)
	var ce *ConferError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, KindTypeMismatch, ce.Kind)
}

func TestConvertDatetimeParsesRFC3339String(t *testing.T) {
	got, err := ConvertDatetime("s", "k", String("2026-08-03T00:00:00Z"))
	require.NoError(t, err)
	assert.True(t, got.Equal(time.Date(2026, 8, 3, 0, 0, 0, 0, time.UTC)))
}

func TestConvertDatetimeRejectsUnparseableString(t *testing.T) {
	_, err := ConvertDatetime("s", "k", String("not a date"))
	require.Error(t, err)
	var ce *ConferError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, KindValueParse, ce.Kind)
}

func TestConvertStringSliceAnnotatesOffendingIndex(t *testing.T) {
	arr := Array([]Value{String("ok"), Int64(1)})
	_, err := ConvertStringSlice("s", "k", arr)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "index 1")
}

func TestConvertFloat64SlicePromotesMixedElements(t *testing.T) {
	arr := Array([]Value{Int64(1), Float64(2.5), Int64(3)})
	got, err := ConvertFloat64Slice("s", "k", arr)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2.5, 3}, got)
}

func TestConvertBoolSliceRejectsNonArray(t *testing.T) {
	_, err := ConvertBoolSlice("s", "k", Bool(true))
	require.Error(t, err)
	var ce *ConferError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, KindTypeMismatch, ce.Kind)
}
