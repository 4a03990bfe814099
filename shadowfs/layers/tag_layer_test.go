package layers

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func staticTags(tags ...string) TagExtractor {
	return func(*FileInfo) ([]string, error) {
		return tags, nil
	}
}

func TestNewTagLayer(t *testing.T) {
	t.Run("rejects an empty extractor list", func(t *testing.T) {
		_, err := NewTagLayer("tags")
		assert.ErrorIs(t, err, ErrNoExtractors)
	})

	t.Run("rejects nil extractors", func(t *testing.T) {
		_, err := NewTagLayer("tags", staticTags("a"), nil)
		assert.ErrorIs(t, err, ErrNilExtractor)
	})
}

func TestTagLayer_BuildIndex(t *testing.T) {
	now := time.Now()

	t.Run("a file appears under every valid tag and nowhere else", func(t *testing.T) {
		layer, err := NewTagLayer("tags", staticTags("a", "b", "c"))
		require.NoError(t, err)
		layer.BuildIndex(Snapshot{testFile("x.txt", "x.txt", "/src/x.txt", 1, now)})

		assert.Equal(t, []string{"a", "b", "c"}, layer.ListDirectory(""))
		for _, tag := range []string{"a", "b", "c"} {
			assert.Equal(t, []string{"x.txt"}, layer.ListDirectory(tag))
		}
		assert.Empty(t, layer.ListDirectory("d"))
	})

	t.Run("tags are deduplicated across extractors", func(t *testing.T) {
		layer, err := NewTagLayer("tags", staticTags("work", "urgent"), staticTags("work"))
		require.NoError(t, err)
		layer.BuildIndex(Snapshot{testFile("x.txt", "x.txt", "/src/x.txt", 1, now)})

		assert.Equal(t, []string{"x.txt"}, layer.ListDirectory("work"), "file occurs at most once per tag")
	})

	t.Run("whitespace-only candidates are discarded", func(t *testing.T) {
		layer, err := NewTagLayer("tags", staticTags("  ", "\t", " real "))
		require.NoError(t, err)
		layer.BuildIndex(Snapshot{testFile("x.txt", "x.txt", "/src/x.txt", 1, now)})

		assert.Equal(t, []string{"real"}, layer.ListDirectory(""))
	})

	t.Run("an erroring extractor is skipped in isolation", func(t *testing.T) {
		failing := func(*FileInfo) ([]string, error) { return nil, errors.New("xattr unsupported") }
		layer, err := NewTagLayer("tags", failing, staticTags("kept"))
		require.NoError(t, err)
		layer.BuildIndex(Snapshot{testFile("x.txt", "x.txt", "/src/x.txt", 1, now)})

		assert.Equal(t, []string{"kept"}, layer.ListDirectory(""), "remaining extractors still run")
	})

	t.Run("a file with zero valid tags appears nowhere", func(t *testing.T) {
		layer, err := NewTagLayer("tags", staticTags())
		require.NoError(t, err)
		layer.BuildIndex(Snapshot{testFile("x.txt", "x.txt", "/src/x.txt", 1, now)})

		assert.Empty(t, layer.ListDirectory(""))
	})

	t.Run("directories are never indexed", func(t *testing.T) {
		layer, err := NewTagLayer("tags", staticTags("all"))
		require.NoError(t, err)
		layer.BuildIndex(Snapshot{testDir("sub", "sub", "/src/sub")})

		assert.Empty(t, layer.ListDirectory(""))
	})
}

func TestTagLayer_SidecarScenario(t *testing.T) {
	root := t.TempDir()
	file := filepath.Join(root, "x.txt")
	require.NoError(t, os.WriteFile(file, []byte("content"), 0o644))
	require.NoError(t, os.WriteFile(file+".tags", []byte("work, important"), 0o644))

	fi, err := NewFileInfo(file, root)
	require.NoError(t, err)

	layer, err := NewTagLayer("tags", SidecarExtractor(".tags"))
	require.NoError(t, err)
	layer.BuildIndex(Snapshot{fi})

	assert.Equal(t, []string{"important", "work"}, layer.ListDirectory(""))
	assert.Equal(t, []string{"x.txt"}, layer.ListDirectory("work"))
	assert.Equal(t, []string{"x.txt"}, layer.ListDirectory("important"))

	real, ok := layer.Resolve("work/x.txt")
	require.True(t, ok)
	assert.Equal(t, file, real)
}

func TestTagLayer_Resolve(t *testing.T) {
	now := time.Now()
	layer, err := NewTagLayer("tags", staticTags("shared"))
	require.NoError(t, err)
	layer.BuildIndex(Snapshot{
		testFile("dup.txt", "a/dup.txt", "/src/a/dup.txt", 1, now),
		testFile("dup.txt", "b/dup.txt", "/src/b/dup.txt", 1, now),
	})

	t.Run("first inserted wins on duplicate names", func(t *testing.T) {
		real, ok := layer.Resolve("shared/dup.txt")
		require.True(t, ok)
		assert.Equal(t, "/src/a/dup.txt", real)
	})

	t.Run("unknown paths are not found", func(t *testing.T) {
		for _, path := range []string{"", "shared", "nope/dup.txt", "shared/missing.txt"} {
			_, ok := layer.Resolve(path)
			assert.False(t, ok, "path %q should not resolve", path)
		}
	})
}
