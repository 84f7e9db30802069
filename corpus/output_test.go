package corpus

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestWriteResults(t *testing.T) {
	assert := assert.New(t)

	dir := filepath.Join(t.TempDir(), "out")
	results := []*ExtractionResult{
		{FileName: "a.py", RelativePath: "a.py", Content: "x<y&z"},
		{FileName: "b.xml", RelativePath: "sub/b.xml", Content: "<b>\n  \"q\"\n</b>"},
	}
	assert.NoError(WriteResults(dir, results))

	assert.Equal(`[{"f":"a.py","p":"a.py","c":"x<y&z"},{"f":"b.xml","p":"sub/b.xml","c":"<b>\n  \"q\"\n</b>"}]`,
		readFile(t, filepath.Join(dir, CompactFileName)))

	assert.Equal(`[
    {
        "f": "a.py",
        "p": "a.py",
        "c": "x<y&z"
    },
    {
        "f": "b.xml",
        "p": "sub/b.xml",
        "c": "<b>\n  \"q\"\n</b>"
    }
]`, readFile(t, filepath.Join(dir, ReadableFileName)))

	entries, err := os.ReadDir(dir)
	assert.NoError(err)
	assert.Len(entries, 2)
}

func TestWriteResultsEmpty(t *testing.T) {
	assert := assert.New(t)

	dir := t.TempDir()
	assert.NoError(WriteResults(dir, nil))
	assert.Equal("[]", readFile(t, filepath.Join(dir, CompactFileName)))
	assert.Equal("[]", readFile(t, filepath.Join(dir, ReadableFileName)))
}

func TestWriteResultsReplacesPreviousRun(t *testing.T) {
	assert := assert.New(t)

	dir := t.TempDir()
	assert.NoError(WriteResults(dir, []*ExtractionResult{{FileName: "a", RelativePath: "a", Content: "1"}}))
	assert.NoError(WriteResults(dir, []*ExtractionResult{{FileName: "b", RelativePath: "b", Content: "2"}}))
	assert.Equal(`[{"f":"b","p":"b","c":"2"}]`, readFile(t, filepath.Join(dir, CompactFileName)))
}

func TestWriteResultsCompactRenamedLast(t *testing.T) {
	assert := assert.New(t)

	dir := t.TempDir()
	// a non-empty directory in the way makes the compact rename fail
	writeFile(t, dir, CompactFileName+"/blocker", "x")

	err := WriteResults(dir, []*ExtractionResult{{FileName: "a", RelativePath: "a", Content: "1"}})
	assert.Error(err)

	assert.FileExists(filepath.Join(dir, ReadableFileName))
	entries, err := os.ReadDir(dir)
	assert.NoError(err)
	for _, e := range entries {
		assert.NotContains(e.Name(), ".tmp")
	}
}
