package confer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveAndLoadFileRoundtrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "conf.toml")

	s := New()
	require.NoError(t, s.SetString("app", "name", "conferencier"))
	require.NoError(t, s.SetInt64("app", "port", 9090))
	require.NoError(t, s.SaveFile(path))

	loaded, err := FromFile(path)
	require.NoError(t, err)

	name, err := loaded.GetString("app", "name")
	require.NoError(t, err)
	assert.Equal(t, "conferencier", name)

	port, err := loaded.GetInt64("app", "port")
	require.NoError(t, err)
	assert.Equal(t, int64(9090), port)
}

func TestSaveFileOverwritesExistingFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "conf.toml")
	require.NoError(t, os.WriteFile(path, []byte("stale = true\n"), 0o644))

	s := New()
	require.NoError(t, s.SetBool("app", "fresh", true))
	require.NoError(t, s.SaveFile(path))

	loaded, err := FromFile(path)
	require.NoError(t, err)
	assert.False(t, loaded.SectionExists("stale"))

	fresh, err := loaded.GetBool("app", "fresh")
	require.NoError(t, err)
	assert.True(t, fresh)
}

func TestLoadFileReplacesStoreContent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "conf.toml")
	require.NoError(t, os.WriteFile(path, []byte("[b]\ny = 2\n"), 0o644))

	s, err := FromString("[a]\nx = 1\n")
	require.NoError(t, err)
	require.NoError(t, s.LoadFile(path))

	assert.False(t, s.SectionExists("a"))
	assert.True(t, s.SectionExists("b"))
}

func TestFromFileMissingPathIsIOError(t *testing.T) {
	_, err := FromFile(filepath.Join(t.TempDir(), "missing.toml"))
	require.Error(t, err)

	var ce *ConferError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, KindIO, ce.Kind)
}

func TestSaveFileCreatesMissingDirectories(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "deep", "conf.toml")

	s := New()
	require.NoError(t, s.SetString("app", "name", "x"))
	require.NoError(t, s.SaveFile(path))

	_, err := os.Stat(path)
	require.NoError(t, err)
}
