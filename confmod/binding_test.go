package confmod

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	confer "github.com/Komix42/conferencier"
)

type serverSettings struct {
	Host    string   `confer:"host,default=localhost"`
	Port    int32    `confer:"port,default=8080"`
	Tags    []string `confer:"tags,default=[]"`
	Timeout *int64   `confer:"timeout"`
	Ratio   float32  `confer:"ratio,default=0.5"`
	ignored string   `confer:"-"`
}

func TestBindingLoadUsesDefaultsWhenKeysAbsent(t *testing.T) {
	store := confer.New()

	binding, err := New[serverSettings]()
	require.NoError(t, err)

	handle, err := binding.Construct(store)
	require.NoError(t, err)

	rec := handle.Load()
	assert.Equal(t, "localhost", rec.Host)
	assert.Equal(t, int32(8080), rec.Port)
	assert.Nil(t, rec.Timeout)
	assert.Equal(t, float32(0.5), rec.Ratio)
	assert.Empty(t, rec.Tags)
}

func TestBindingLoadReadsStoredValues(t *testing.T) {
	store, err := confer.FromString(`
[serverSettings]
host = "0.0.0.0"
port = 9090
tags = ["a", "b"]
timeout = 30
ratio = 1.5
`)
	require.NoError(t, err)

	binding, err := New[serverSettings]()
	require.NoError(t, err)

	handle, err := binding.Construct(store)
	require.NoError(t, err)

	rec := handle.Load()
	assert.Equal(t, "0.0.0.0", rec.Host)
	assert.Equal(t, int32(9090), rec.Port)
	assert.Equal(t, []string{"a", "b"}, rec.Tags)
	require.NotNil(t, rec.Timeout)
	assert.Equal(t, int64(30), *rec.Timeout)
	assert.Equal(t, float32(1.5), rec.Ratio)
}

func TestBindingLoadMissingRequiredFieldWithoutDefaultFails(t *testing.T) {
	type noDefault struct {
		Required string `confer:"required"`
	}
	store := confer.New()

	binding, err := New[noDefault](WithSection("noDefault"))
	require.NoError(t, err)

	_, err = binding.Construct(store)
	require.Error(t, err)
	var ce *confer.ConferError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, confer.KindMissingKey, ce.Kind)
}

func TestBindingLoadMissingRequiredVectorFails(t *testing.T) {
	type requiredTags struct {
		Tags []string `confer:"tags"`
	}
	store := confer.New()

	binding, err := New[requiredTags](WithSection("requiredTags"))
	require.NoError(t, err)

	_, err = binding.Construct(store)
	require.Error(t, err)
	var ce *confer.ConferError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, confer.KindMissingKey, ce.Kind)
}

func TestBindingSaveWritesFieldsAndPrunesUnknownKeys(t *testing.T) {
	store, err := confer.FromString(`
[serverSettings]
host = "stale"
port = 1
stray = "leftover"
`)
	require.NoError(t, err)

	binding, err := New[serverSettings]()
	require.NoError(t, err)

	handle := confer.NewShared(serverSettings{
		Host:  "fresh.example",
		Port:  443,
		Tags:  []string{"x"},
		Ratio: 2.0,
	})

	require.NoError(t, binding.Save(handle, store))

	host, err := store.GetString("serverSettings", "host")
	require.NoError(t, err)
	assert.Equal(t, "fresh.example", host)

	_, err = store.GetString("serverSettings", "stray")
	require.Error(t, err)

	_, err = store.GetInt64("serverSettings", "timeout")
	require.Error(t, err)
}

func TestBindingSaveOmitsNilOptionalFields(t *testing.T) {
	store := confer.New()

	binding, err := New[serverSettings]()
	require.NoError(t, err)

	handle := confer.NewShared(serverSettings{Host: "h", Port: 1})
	require.NoError(t, binding.Save(handle, store))

	keys, err := store.ListKeys("serverSettings")
	require.NoError(t, err)
	assert.NotContains(t, keys, "timeout")
}

func TestBindingWithSectionOverridesDefaultName(t *testing.T) {
	store, err := confer.FromString(`
[custom]
host = "override.example"
port = 1
`)
	require.NoError(t, err)

	binding, err := New[serverSettings](WithSection("custom"))
	require.NoError(t, err)

	handle, err := binding.Construct(store)
	require.NoError(t, err)
	assert.Equal(t, "override.example", handle.Load().Host)
}

type stampedRecord struct {
	CreatedAt time.Time `confer:"-"`
	Name      string    `confer:"name,default=unnamed"`
}

func TestBindingWithInitSuppliesIgnoredFieldValue(t *testing.T) {
	store := confer.New()
	fixed := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	binding, err := New[stampedRecord](WithInit("CreatedAt", func() any { return fixed }))
	require.NoError(t, err)

	handle, err := binding.Construct(store)
	require.NoError(t, err)

	rec := handle.Load()
	assert.True(t, fixed.Equal(rec.CreatedAt))
	assert.Equal(t, "unnamed", rec.Name)
}

func TestNewRejectsDuplicateKeys(t *testing.T) {
	type dup struct {
		A string `confer:"same"`
		B string `confer:"same"`
	}
	_, err := New[dup]()
	require.Error(t, err)
}

func TestNewRejectsDefaultAndInitTogether(t *testing.T) {
	type conflicted struct {
		Value string `confer:"value,default=x"`
	}
	_, err := New[conflicted](WithInit("Value", func() any { return "y" }))
	require.Error(t, err)
}

func TestNewRejectsUnsupportedFieldType(t *testing.T) {
	type unsupported struct {
		Fn func() `confer:"fn"`
	}
	_, err := New[unsupported]()
	require.Error(t, err)
}

func TestIntegerDefaultOutOfRangeFails(t *testing.T) {
	type narrow struct {
		Small int8 `confer:"small,default=500"`
	}
	_, err := New[narrow]()
	require.Error(t, err)
}

func TestPlatformSizedIntegerFieldsRoundtrip(t *testing.T) {
	type counters struct {
		Total   int    `confer:"total,default=7"`
		Buckets []int  `confer:"buckets,default=[1,2,3]"`
		Seen    uint   `confer:"seen,default=9"`
		Weights []uint `confer:"weights"`
	}
	store, err := confer.FromString(`
[counters]
total = 42
buckets = [4, 5]
seen = 100
weights = [1, 2]
`)
	require.NoError(t, err)

	binding, err := New[counters]()
	require.NoError(t, err)

	handle, err := binding.Construct(store)
	require.NoError(t, err)

	rec := handle.Load()
	assert.Equal(t, 42, rec.Total)
	assert.Equal(t, []int{4, 5}, rec.Buckets)
	assert.Equal(t, uint(100), rec.Seen)
	assert.Equal(t, []uint{1, 2}, rec.Weights)

	require.NoError(t, binding.Save(handle, store))
	total, err := store.GetInt64("counters", "total")
	require.NoError(t, err)
	assert.Equal(t, int64(42), total)
}

func TestPlatformSizedIntegerFieldDefaultsApplyWhenAbsent(t *testing.T) {
	type counters struct {
		Total   int    `confer:"total,default=7"`
		Buckets []int  `confer:"buckets,default=[1,2,3]"`
		Seen    uint   `confer:"seen,default=9"`
	}
	store := confer.New()

	binding, err := New[counters]()
	require.NoError(t, err)

	handle, err := binding.Construct(store)
	require.NoError(t, err)

	rec := handle.Load()
	assert.Equal(t, 7, rec.Total)
	assert.Equal(t, []int{1, 2, 3}, rec.Buckets)
	assert.Equal(t, uint(9), rec.Seen)
}

func TestUntaggedFieldDefaultsToGoFieldNameAsKey(t *testing.T) {
	type plain struct {
		Nickname string
	}
	store, err := confer.FromString(`
[plain]
Nickname = "ferris"
`)
	require.NoError(t, err)

	binding, err := New[plain]()
	require.NoError(t, err)

	handle, err := binding.Construct(store)
	require.NoError(t, err)
	assert.Equal(t, "ferris", handle.Load().Nickname)
}
