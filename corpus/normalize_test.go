package corpus

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeCode(t *testing.T) {
	assert := assert.New(t)

	assert.Equal("x=1", Normalize("x = 1  \n", false))
	assert.Equal("abc", Normalize("a b\t\U0001F600\u200dc\r\n", false))
	assert.Equal("y=''", Normalize("y = '\uFFFD'", false))
	assert.Equal("", Normalize(" \n\t\r", false))
}

func TestNormalizeKeepsText(t *testing.T) {
	assert := assert.New(t)

	assert.Equal("s='\u65e5\u672c'", Normalize("s = '\u65e5\u672c'", false))
	assert.Equal("caf\u00e9\u2192\u00f1", Normalize("caf\u00e9 \u2192 \u00f1", false))
}

func TestNormalizeMarkupUntouched(t *testing.T) {
	assert := assert.New(t)

	in := "<a>\n  <b>\U0001F600</b>\n</a>\n"
	assert.Equal(in, Normalize(in, true))
}

func TestNormalizeIdempotent(t *testing.T) {
	assert := assert.New(t)

	for _, in := range []string{
		"x = 1  \n",
		"a\u200b\u200db \U0001F44D\U0001F3FD",
		"\x00 \x01 \u0378 tab\there",
	} {
		once := Normalize(in, false)
		assert.Equal(once, Normalize(once, false), in)
	}
}
