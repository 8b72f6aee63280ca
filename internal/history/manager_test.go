package history

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFile(t *testing.T) {
	m, err := NewManager(t.TempDir())
	require.NoError(t, err)

	entries, err := m.Load("find.toml")
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestSaveAndLoad(t *testing.T) {
	m, err := NewManager(filepath.Join(t.TempDir(), "nested"))
	require.NoError(t, err)

	require.NoError(t, m.Save("find.toml", []string{"kind:shape", "~whl"}))
	entries, err := m.Load("find.toml")
	require.NoError(t, err)
	assert.Equal(t, []string{"kind:shape", "~whl"}, entries)
}

func TestCorruptedFileIsIgnored(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "find.toml"), []byte("entries = ["), 0o644))
	m, err := NewManager(dir)
	require.NoError(t, err)

	entries, err := m.Load("find.toml")
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestAppendDeduplicatesAndTrims(t *testing.T) {
	m, err := NewManager(t.TempDir())
	require.NoError(t, err)

	for _, q := range []string{"a", "b", "c", "a", "d"} {
		require.NoError(t, m.Append("find.toml", q, 3))
	}
	entries, err := m.Load("find.toml")
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "a", "d"}, entries)
}
