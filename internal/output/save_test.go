package output

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveJSON_CreatesDirsAndIndents(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "out", "doc_analysis.json")
	out := FormatOutput(sampleSections(), "Food Contractor", "Plan", fixedTime, 0.1)

	require.NoError(t, SaveJSON(out, path))
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(raw), "{\n  \"metadata\""))
	assert.Contains(t, string(raw), "&")
}

func TestSaveJSON_PropagatesWriteError(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	err := SaveJSON(map[string]int{"a": 1}, filepath.Join(blocker, "child.json"))
	assert.Error(t, err)
}

func TestSaveJSON_UnencodableValue(t *testing.T) {
	err := SaveJSON(map[string]any{"ch": make(chan int)}, filepath.Join(t.TempDir(), "x.json"))
	assert.Error(t, err)
}

func TestLoadOutput_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.json")
	want := FormatOutput(sampleSections(), "p", "j", fixedTime, 0.1)
	require.NoError(t, SaveJSON(want, path))

	got, err := LoadOutput(path)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestLoadOutput_RejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"sections":"x"}`), 0o644))
	_, err := LoadOutput(path)
	assert.Error(t, err)

	_, err = LoadOutput(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}
