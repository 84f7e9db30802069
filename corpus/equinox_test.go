package corpus

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEquinoxStripperKeepsCode(t *testing.T) {
	assert := assert.New(t)

	s, ok := DefaultRules.Stripper(SyntaxEquinox)
	assert.True(ok)

	src := "alpha beta\ngamma\n"
	assert.Equal(src, s.Strip(src))
}

func TestEquinoxEncoding(t *testing.T) {
	assert := assert.New(t)

	assert.Equal(FallbackEncoding, equinoxEncoding(FallbackEncoding, []byte("plain")))
	assert.Equal(EquinoxEncoding, equinoxEncoding(FallbackEncoding, []byte("\xa3")))
	assert.Equal("ISO-8859-2", equinoxEncoding("ISO-8859-2", []byte("\xa3")))
}

func TestLexerCheck(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "Methods/calc.jc@.txt", "alpha beta\ngamma\n")
	writeFile(t, root, "other.py", "x = 1\n")

	assert.NoError(t, LexerCheck(context.Background(), root, Options{Detector: utf8Detector}))
}
