package corpus

import (
	"bytes"
	"io"
	"log"
	"strings"
	"unicode/utf8"

	"github.com/utilitywarehouse/equilex"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// EquinoxEncoding is what Equinox exports are written in when they are not
// plain UTF-8.
const EquinoxEncoding = "windows-1252"

// equinoxEncoding picks the decoding for an Equinox export. The detector is
// unreliable on short 4GL sources, so anything that is not valid UTF-8 is
// read as Windows-1252.
func equinoxEncoding(detected string, raw []byte) string {
	if detected != FallbackEncoding || utf8.Valid(raw) {
		return detected
	}
	return EquinoxEncoding
}

// equinoxStripper drops Comment tokens from Equinox source.
type equinoxStripper struct{}

func (equinoxStripper) Strip(text string) string {
	l := equilex.NewLexer(strings.NewReader(text))

	var out strings.Builder
	out.Grow(len(text))

	for {
		tok, lit, err := l.Scan()
		if err != nil {
			// unscannable source is passed through rather than truncated
			return text
		}

		switch tok {
		case equilex.Comment:
		case equilex.EOF:
			return out.String()
		default:
			out.WriteString(lit)
		}
	}
}

type lexCheck struct {
	extractor *Extractor
	anyErrors bool
}

func (lc *lexCheck) process(path string) error {
	raw, err := lc.extractor.read(path)
	if err != nil {
		return err
	}
	var r io.Reader
	if enc := equinoxEncoding(lc.extractor.resolver.Resolve(raw), raw); enc == EquinoxEncoding {
		r = transform.NewReader(bytes.NewReader(raw), charmap.Windows1252.NewDecoder())
	} else {
		r = strings.NewReader(Decode(raw, enc))
	}

	l := equilex.NewLexer(r)

loop:
	for {
		tok, lit, err := l.Scan()
		if err != nil {
			return err
		}

		switch tok {
		case equilex.EOF:
			break loop
		case equilex.Illegal:
			lc.anyErrors = true
			log.Printf("illegal token in file '%s' : '%v'\n", path, lit)
		}
	}
	return nil
}
