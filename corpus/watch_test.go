package corpus

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatchRelevant(t *testing.T) {
	assert := assert.New(t)

	root := t.TempDir()
	cfg := DefaultConfig()
	cfg.Ignore = []string{"build/**"}
	s, err := Open(root, Options{Config: cfg, Detector: utf8Detector})
	require.NoError(t, err)
	defer s.Close()

	assert.True(s.relevant(filepath.Join(root, "a.py")))
	assert.True(s.relevant(filepath.Join(root, "sub", "conclude.json")))
	assert.False(s.relevant(filepath.Join(root, CompactFileName)))
	assert.False(s.relevant(filepath.Join(root, ReadableFileName)))
	assert.False(s.relevant(filepath.Join(root, ".conclude-123.tmp")))
	assert.False(s.relevant(filepath.Join(root, "build", "out.py")))
}

func TestWatchRerunsOnChange(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.py", "a = 1\n")

	s, err := Open(root, Options{Config: DefaultConfig(), Detector: utf8Detector})
	require.NoError(t, err)
	defer s.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	runs := make(chan int, 10)
	count := 0
	done := make(chan error, 1)
	go func() {
		done <- s.Watch(ctx, 20*time.Millisecond, func(ctx context.Context) error {
			count++
			runs <- count
			return s.Publish(ctx, root, "")
		})
	}()

	require.Equal(t, 1, <-runs)
	writeFile(t, root, "b.py", "b = 2\n")

	select {
	case n := <-runs:
		assert.Equal(t, 2, n)
	case <-ctx.Done():
		t.Fatal("no rerun after change")
	}

	cancel()
	assert.NoError(t, <-done)
}
