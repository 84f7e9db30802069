package stats

import (
	"bytes"
	"path/filepath"
	"testing"
	"time"

	"github.com/aaakoako/reduce-gpt-tokens/corpus"
	"github.com/stretchr/testify/assert"
)

var testTime = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

var testRows = []corpus.StatsRow{
	{Syntax: "Go", Files: 2, OriginalBytes: 200, CleanedBytes: 150},
	{Syntax: "Python", Files: 1, OriginalBytes: 100, CleanedBytes: 50},
}

func TestTable(t *testing.T) {
	assert := assert.New(t)

	var buf bytes.Buffer
	assert.NoError(Table(&buf, testRows))

	out := buf.String()
	assert.Contains(out, "Python")
	assert.Contains(out, "25.0%")
	assert.Contains(out, "50.0%")
	// totals
	assert.Contains(out, "300")
	assert.Contains(out, "33.3%")
}

func TestTableSingleRowHasNoTotal(t *testing.T) {
	assert := assert.New(t)

	var buf bytes.Buffer
	assert.NoError(Table(&buf, testRows[:1]))
	assert.NotContains(buf.String(), "total")
}

func TestIntTicker(t *testing.T) {
	assert := assert.New(t)

	for _, tick := range (&IntTicker{}).Ticks(0, 1e7) {
		assert.NotContains(tick.Label, "e+")
	}
}

func TestImage(t *testing.T) {
	assert := assert.New(t)

	out := filepath.Join(t.TempDir(), "stats.png")
	assert.NoError(Image(testRows, out))
	assert.FileExists(out)

	assert.Error(Image(nil, out))
}

func TestBQRows(t *testing.T) {
	assert := assert.New(t)

	rows := bqRows(testTime, "/src", testRows)
	assert.Len(rows, 2)
	assert.Equal(bqStatsRow{RunAt: testTime, SourceRoot: "/src", Syntax: "Go", FileCount: 2, OriginalBytes: 200, CleanedBytes: 150}, rows[0])
}
