package corpus

import (
	"strings"

	"github.com/gogs/chardet"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// FallbackEncoding is used whenever detection is inconclusive.
const FallbackEncoding = "UTF-8"

// Detector guesses the character set of raw bytes. An empty charset or an
// error means no guess.
type Detector interface {
	Detect(raw []byte) (charset string, confidence int, err error)
}

type chardetDetector struct {
	d *chardet.Detector
}

// NewChardetDetector returns a Detector backed by the ICU derived statistical
// detector in github.com/gogs/chardet.
func NewChardetDetector() Detector {
	return &chardetDetector{d: chardet.NewTextDetector()}
}

func (c *chardetDetector) Detect(raw []byte) (string, int, error) {
	res, err := c.d.DetectBest(raw)
	if err != nil {
		return "", 0, err
	}
	return res.Charset, res.Confidence, nil
}

// EncodingResolver picks the encoding used to decode a file.
type EncodingResolver struct {
	detector      Detector
	minConfidence int
}

// NewEncodingResolver returns a resolver that trusts detector guesses with at
// least minConfidence (0-100).
func NewEncodingResolver(detector Detector, minConfidence int) *EncodingResolver {
	return &EncodingResolver{detector: detector, minConfidence: minConfidence}
}

// Resolve returns the most probable encoding name for raw, or
// FallbackEncoding. It never fails.
func (r *EncodingResolver) Resolve(raw []byte) string {
	if len(raw) == 0 || r.detector == nil {
		return FallbackEncoding
	}
	name, confidence, err := r.detector.Detect(raw)
	if err != nil || name == "" || confidence < r.minConfidence {
		return FallbackEncoding
	}
	if lookupEncoding(name) == nil {
		return FallbackEncoding
	}
	return name
}

func lookupEncoding(name string) encoding.Encoding {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil
	}
	for _, candidate := range []string{name, strings.ReplaceAll(name, "-", ""), strings.ReplaceAll(name, "_", "-")} {
		if e, err := htmlindex.Get(candidate); err == nil && e != nil {
			return e
		}
		if e, err := ianaindex.IANA.Encoding(candidate); err == nil && e != nil {
			return e
		}
	}
	return nil
}

// Decode converts raw to UTF-8 using the named encoding. Invalid sequences
// become U+FFFD; decoding itself never fails.
func Decode(raw []byte, name string) string {
	enc := lookupEncoding(name)
	if enc == nil {
		enc = unicode.UTF8
	}
	out, _, err := transform.Bytes(unicode.BOMOverride(enc.NewDecoder()), raw)
	if err != nil {
		out = raw
	}
	return strings.ToValidUTF8(string(out), "\uFFFD")
}
