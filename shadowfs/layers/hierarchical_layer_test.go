package layers

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewHierarchicalLayer(t *testing.T) {
	t.Run("rejects an empty chain", func(t *testing.T) {
		_, err := NewHierarchicalLayer("deep")
		assert.ErrorIs(t, err, ErrNoClassifiers)
	})

	t.Run("rejects nil chain entries", func(t *testing.T) {
		_, err := NewHierarchicalLayer("deep", ExtensionClassifier, nil)
		assert.ErrorIs(t, err, ErrNilClassifier)
	})

	t.Run("fixes depth at construction", func(t *testing.T) {
		layer, err := NewHierarchicalLayer("deep", ExtensionClassifier, SizeClassifier)
		require.NoError(t, err)
		assert.Equal(t, 2, layer.Depth())
	})
}

func TestHierarchicalLayer_SingleLevel(t *testing.T) {
	now := time.Now()
	layer, err := NewHierarchicalLayer("by-project", PathComponentClassifier(0))
	require.NoError(t, err)

	layer.BuildIndex(Snapshot{
		testFile("main.py", "projectA/main.py", "/src/projectA/main.py", 1, now),
		testFile("readme.md", "projectB/readme.md", "/src/projectB/readme.md", 1, now),
	})

	assert.Equal(t, []string{"projectA", "projectB"}, layer.ListDirectory(""))
	assert.Equal(t, []string{"main.py"}, layer.ListDirectory("projectA"))

	real, ok := layer.Resolve("projectA/main.py")
	require.True(t, ok)
	assert.Equal(t, "/src/projectA/main.py", real)
}

func TestHierarchicalLayer_MultiLevel(t *testing.T) {
	now := time.Now()
	layer, err := NewHierarchicalLayer("ext-size", ExtensionClassifier, SizeClassifier)
	require.NoError(t, err)

	files := Snapshot{
		testFile("tiny.py", "tiny.py", "/src/tiny.py", 10, now),
		testFile("big.py", "big.py", "/src/big.py", 2e6, now),
		testFile("note.md", "note.md", "/src/note.md", 10, now),
	}
	layer.BuildIndex(files)

	t.Run("lists branch keys at every prefix depth", func(t *testing.T) {
		assert.Equal(t, []string{"md", "py"}, layer.ListDirectory(""))
		assert.Equal(t, []string{"large", "small"}, layer.ListDirectory("py"))
	})

	t.Run("lists filenames at the chain depth", func(t *testing.T) {
		assert.Equal(t, []string{"tiny.py"}, layer.ListDirectory("py/small"))
		assert.Equal(t, []string{"big.py"}, layer.ListDirectory("py/large"))
	})

	t.Run("resolves full-depth paths only", func(t *testing.T) {
		real, ok := layer.Resolve("py/small/tiny.py")
		require.True(t, ok)
		assert.Equal(t, "/src/tiny.py", real)

		for _, path := range []string{
			"py",                      // too shallow
			"py/small",                // still a directory
			"py/small/tiny.py/extra",  // too deep
			"py/medium/tiny.py",       // missing intermediate
			"md/small/missing.md",     // absent filename
			"py/small/../small/x.py",  // not a normalized index key
		} {
			_, ok := layer.Resolve(path)
			assert.False(t, ok, "path %q should not resolve", path)
		}
	})

	t.Run("list beyond the chain depth is empty", func(t *testing.T) {
		assert.Empty(t, layer.ListDirectory("py/small/tiny.py"))
		assert.Empty(t, layer.ListDirectory("py/nope"))
	})

	t.Run("round-trip: every listed path resolves to a real path", func(t *testing.T) {
		for _, c1 := range layer.ListDirectory("") {
			for _, c2 := range layer.ListDirectory(c1) {
				for _, name := range layer.ListDirectory(c1 + "/" + c2) {
					real, ok := layer.Resolve(c1 + "/" + c2 + "/" + name)
					require.True(t, ok, "listed path %s/%s/%s must resolve", c1, c2, name)
					assert.NotEmpty(t, real)
				}
			}
		}
	})
}

func TestHierarchicalLayer_AllOrNothing(t *testing.T) {
	now := time.Now()
	second := func(fi *FileInfo) (string, error) {
		if fi.Name == "err.py" {
			return "", errors.New("boom")
		}
		if fi.Name == "empty.py" {
			return "", nil
		}
		return "ok", nil
	}

	layer, err := NewHierarchicalLayer("strict", ExtensionClassifier, second)
	require.NoError(t, err)
	layer.BuildIndex(Snapshot{
		testFile("err.py", "err.py", "/src/err.py", 1, now),
		testFile("empty.py", "empty.py", "/src/empty.py", 1, now),
		testFile("fine.py", "fine.py", "/src/fine.py", 1, now),
	})

	// A file must classify at every level or it is indexed nowhere.
	assert.Equal(t, []string{"py"}, layer.ListDirectory(""))
	assert.Equal(t, []string{"fine.py"}, layer.ListDirectory("py/ok"))

	_, ok := layer.Resolve("py/ok/err.py")
	assert.False(t, ok)
}

func TestHierarchicalLayer_RebuildReplacesState(t *testing.T) {
	now := time.Now()
	layer, err := NewHierarchicalLayer("by-project", PathComponentClassifier(0))
	require.NoError(t, err)

	layer.BuildIndex(Snapshot{testFile("a.py", "old/a.py", "/src/old/a.py", 1, now)})
	layer.BuildIndex(Snapshot{testFile("b.py", "new/b.py", "/src/new/b.py", 1, now)})

	assert.Equal(t, []string{"new"}, layer.ListDirectory(""))
	_, ok := layer.Resolve("old/a.py")
	assert.False(t, ok)
}
