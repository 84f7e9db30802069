package corpus

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeDetector struct {
	charset    string
	confidence int
	err        error
}

func (f fakeDetector) Detect([]byte) (string, int, error) {
	return f.charset, f.confidence, f.err
}

func TestResolveTrustsConfidentGuess(t *testing.T) {
	assert := assert.New(t)

	r := NewEncodingResolver(fakeDetector{charset: "windows-1252", confidence: 80}, 10)
	assert.Equal("windows-1252", r.Resolve([]byte("abc")))

	r = NewEncodingResolver(fakeDetector{charset: "Shift_JIS", confidence: 10}, 10)
	assert.Equal("Shift_JIS", r.Resolve([]byte("abc")))
}

func TestResolveFallsBack(t *testing.T) {
	assert := assert.New(t)

	for name, d := range map[string]Detector{
		"low confidence": fakeDetector{charset: "windows-1252", confidence: 5},
		"no guess":       fakeDetector{confidence: 100},
		"unknown name":   fakeDetector{charset: "x-klingon", confidence: 100},
		"error":          fakeDetector{err: errors.New("no idea")},
	} {
		r := NewEncodingResolver(d, 10)
		assert.Equal(FallbackEncoding, r.Resolve([]byte("abc")), name)
	}

	r := NewEncodingResolver(fakeDetector{charset: "windows-1252", confidence: 100}, 10)
	assert.Equal(FallbackEncoding, r.Resolve(nil))
	assert.Equal(FallbackEncoding, NewEncodingResolver(nil, 0).Resolve([]byte("abc")))
}

func TestChardetDetector(t *testing.T) {
	assert := assert.New(t)

	charset, confidence, err := NewChardetDetector().Detect([]byte("The quick brown fox jumps over the lazy dog, again and again and again."))
	assert.NoError(err)
	assert.NotEmpty(charset)
	assert.True(confidence > 0)
	assert.NotNil(lookupEncoding(charset))
}

func TestLookupEncodingNameVariants(t *testing.T) {
	assert := assert.New(t)

	for _, name := range []string{"UTF-8", "utf8", "ISO-8859-1", "windows-1252", "Shift_JIS", "EUC-JP", "GB18030", "UTF-16LE", "Big5"} {
		assert.NotNil(lookupEncoding(name), name)
	}
	assert.Nil(lookupEncoding(""))
	assert.Nil(lookupEncoding("x-klingon"))
}

func TestDecode(t *testing.T) {
	assert := assert.New(t)

	assert.Equal("\u201chi\u201d", Decode([]byte("\x93hi\x94"), "windows-1252"))
	assert.Equal("\u65e5\u672c", Decode([]byte("\x93\xfa\x96\x7b"), "Shift_JIS"))
	assert.Equal("abc", Decode([]byte("\xef\xbb\xbfabc"), "windows-1252"))
	assert.Equal("plain", Decode([]byte("plain"), "x-klingon"))
}

func TestDecodeIsLossyNotFatal(t *testing.T) {
	assert := assert.New(t)

	assert.Equal("a\uFFFDb", Decode([]byte("a\xffb"), "UTF-8"))
}
