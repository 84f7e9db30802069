package corpus

import (
	"context"
	"database/sql"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Needs a scratch database, e.g.
// CONCLUDE_TEST_PG_DSN="postgres://postgres@localhost/conclude_test?sslmode=disable"
func TestWritePostgres(t *testing.T) {
	dsn := os.Getenv("CONCLUDE_TEST_PG_DSN")
	if dsn == "" {
		t.Skip("CONCLUDE_TEST_PG_DSN not set")
	}
	assert := assert.New(t)
	ctx := context.Background()

	results := []*ExtractionResult{
		{FileName: "a.py", RelativePath: "a.py", Content: "x=1"},
		{FileName: "b.c", RelativePath: "sub/b.c", Content: "a\x00b"},
	}
	require.NoError(t, WritePostgres(ctx, dsn, results))
	// a second run replaces rather than appends
	require.NoError(t, WritePostgres(ctx, dsn, results))

	db, err := sql.Open("postgres", dsn)
	require.NoError(t, err)
	defer db.Close()

	var count int
	require.NoError(t, db.QueryRowContext(ctx, "select count(*) from conclude_files").Scan(&count))
	assert.Equal(2, count)

	var c string
	require.NoError(t, db.QueryRowContext(ctx, "select c from conclude_files where p = $1", "sub/b.c").Scan(&c))
	assert.Equal("ab", c)
}
