package cache

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testKey() Key {
	return Key{InputHash: "aaa", Version: "8.4", MetadataHash: "bbb"}
}

func TestKeyDigest(t *testing.T) {
	base := testKey()

	assert.Equal(t, base.Digest(), testKey().Digest())

	changedInput := base
	changedInput.InputHash = "zzz"
	assert.NotEqual(t, base.Digest(), changedInput.Digest())

	changedVersion := base
	changedVersion.Version = "8.5"
	assert.NotEqual(t, base.Digest(), changedVersion.Digest())

	changedMetadata := base
	changedMetadata.MetadataHash = "zzz"
	assert.NotEqual(t, base.Digest(), changedMetadata.Digest())
}

func TestHashStringsFraming(t *testing.T) {
	assert.NotEqual(t, HashStrings("ab", "c"), HashStrings("a", "bc"))
	assert.Equal(t, HashStrings("a", "b"), HashStrings("a", "b"))
}

func TestHashFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "input")
	require.NoError(t, os.WriteFile(path, []byte("content"), 0644))

	first, err := HashFile(path)
	require.NoError(t, err)
	second, err := HashFile(path)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Len(t, first, 64)

	_, err = HashFile(filepath.Join(t.TempDir(), "absent"))
	assert.Error(t, err)
}

func TestGetOrComputeRunsOnce(t *testing.T) {
	store, err := NewStore(t.TempDir(), nil)
	require.NoError(t, err)

	runs := 0
	compute := func(outputDir string) error {
		runs++
		return os.WriteFile(filepath.Join(outputDir, "result.txt"), []byte("done"), 0644)
	}

	first, err := store.GetOrCompute(testKey(), compute)
	require.NoError(t, err)
	second, err := store.GetOrCompute(testKey(), compute)
	require.NoError(t, err)

	assert.Equal(t, 1, runs)
	assert.Equal(t, first, second)

	data, err := os.ReadFile(filepath.Join(first, "result.txt"))
	require.NoError(t, err)
	assert.Equal(t, []byte("done"), data)
}

func TestGetOrComputeSurvivesReopen(t *testing.T) {
	dir := t.TempDir()

	store, err := NewStore(dir, nil)
	require.NoError(t, err)
	_, err = store.GetOrCompute(testKey(), func(outputDir string) error {
		return os.WriteFile(filepath.Join(outputDir, "result.txt"), []byte("done"), 0644)
	})
	require.NoError(t, err)

	// a fresh store over the same directory must see the entry
	reopened, err := NewStore(dir, nil)
	require.NoError(t, err)
	runs := 0
	outputs, err := reopened.GetOrCompute(testKey(), func(string) error {
		runs++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 0, runs)

	data, err := os.ReadFile(filepath.Join(outputs, "result.txt"))
	require.NoError(t, err)
	assert.Equal(t, []byte("done"), data)
}

func TestGetOrComputeFailureLeavesNoEntry(t *testing.T) {
	store, err := NewStore(t.TempDir(), nil)
	require.NoError(t, err)

	wantErr := assert.AnError
	_, err = store.GetOrCompute(testKey(), func(string) error { return wantErr })
	require.ErrorIs(t, err, wantErr)

	// the failed computation must not have been published
	runs := 0
	_, err = store.GetOrCompute(testKey(), func(outputDir string) error {
		runs++
		return os.WriteFile(filepath.Join(outputDir, "result.txt"), []byte("ok"), 0644)
	})
	require.NoError(t, err)
	assert.Equal(t, 1, runs)
}

func TestStatsAndClear(t *testing.T) {
	store, err := NewStore(t.TempDir(), nil)
	require.NoError(t, err)

	for _, input := range []string{"one", "two"} {
		key := testKey()
		key.InputHash = input
		_, err := store.GetOrCompute(key, func(outputDir string) error {
			return os.WriteFile(filepath.Join(outputDir, "result.txt"), []byte("payload"), 0644)
		})
		require.NoError(t, err)
	}

	stats, err := store.Stats()
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Entries)
	assert.Greater(t, stats.TotalSize, int64(0))

	require.NoError(t, store.Clear())

	stats, err = store.Stats()
	require.NoError(t, err)
	assert.Equal(t, 0, stats.Entries)

	// cleared entries are recomputed, not served from the purged index
	key := testKey()
	key.InputHash = "one"
	runs := 0
	_, err = store.GetOrCompute(key, func(string) error {
		runs++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, runs)
}
