package corpus

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResultCache(t *testing.T) {
	assert := assert.New(t)

	filename := filepath.Join(t.TempDir(), "cache.db")
	rc, err := OpenResultCache(filename, 1)
	require.NoError(t, err)

	res := &ExtractionResult{FileName: "a.py", RelativePath: "a.py", Content: "x=1"}
	assert.NoError(rc.Put("a.py", []byte("x = 1"), res))

	got, hit, err := rc.Get("a.py", []byte("x = 1"))
	assert.NoError(err)
	assert.True(hit)
	assert.Equal(res, got)

	_, hit, err = rc.Get("a.py", []byte("x = 2"))
	assert.NoError(err)
	assert.False(hit)

	_, hit, err = rc.Get("b.py", []byte("x = 1"))
	assert.NoError(err)
	assert.False(hit)

	require.NoError(t, rc.Close())

	// a different rule table invalidates every entry
	rc, err = OpenResultCache(filename, 2)
	require.NoError(t, err)
	defer rc.Close()

	_, hit, err = rc.Get("a.py", []byte("x = 1"))
	assert.NoError(err)
	assert.False(hit)
}

func TestExtractUsesCache(t *testing.T) {
	assert := assert.New(t)

	root := t.TempDir()
	path := writeFile(t, root, "s.py", "x = 1  # c\n")

	rc, err := OpenResultCache(filepath.Join(t.TempDir(), "cache.db"), DefaultRules.Fingerprint())
	require.NoError(t, err)
	defer rc.Close()

	ext := testExtractor(root, utf8Detector)
	ext.Cache = rc

	first, err := ext.Extract(path)
	assert.NoError(err)

	// a poisoned entry for the same bytes proves the second run is served
	// from the cache
	assert.NoError(rc.Put("s.py", []byte("x = 1  # c\n"), &ExtractionResult{FileName: "s.py", RelativePath: "s.py", Content: "cached"}))
	second, err := ext.Extract(path)
	assert.NoError(err)

	assert.Equal("x=1", first.Content)
	assert.Equal("cached", second.Content)
}
