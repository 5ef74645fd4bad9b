// Package printer renders kitchen tickets and customer receipts as
// fixed-width text and frames them for ESC/POS thermal printers.
package printer

import (
	"bytes"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	cmdInit        = []byte{0x1B, 0x40}
	cmdAlignLeft   = []byte{0x1B, 0x61, 0x00}
	cmdAlignCenter = []byte{0x1B, 0x61, 0x01}
	cmdBoldOn      = []byte{0x1B, 0x45, 0x01}
	cmdBoldOff     = []byte{0x1B, 0x45, 0x00}
	cmdDoubleOn    = []byte{0x1D, 0x21, 0x11}
	cmdDoubleOff   = []byte{0x1D, 0x21, 0x00}
	cmdCut         = []byte{0x1D, 0x56, 0x00}
)

const feedLines = 4

// CutSuffix is the byte sequence every framed ticket ends with.
func CutSuffix() []byte {
	return append([]byte(nil), cmdCut...)
}

// Frame wraps a rendered ticket between the printer init prefix and the
// paper cut. The title is printed centred, bold and double sized.
func Frame(title, body string) []byte {
	var buf bytes.Buffer
	buf.Write(cmdInit)
	if title != "" {
		buf.Write(cmdAlignCenter)
		buf.Write(cmdBoldOn)
		buf.Write(cmdDoubleOn)
		buf.WriteString(toASCII(title))
		buf.WriteByte('\n')
		buf.Write(cmdDoubleOff)
		buf.Write(cmdBoldOff)
		buf.Write(cmdAlignLeft)
	}
	buf.WriteString(toASCII(body))
	buf.Write(bytes.Repeat([]byte{'\n'}, feedLines))
	buf.Write(cmdCut)
	return buf.Bytes()
}

// typographic spells out characters that do not decompose into a base
// letter plus accents.
var typographic = strings.NewReplacer(
	"œ", "oe", "Œ", "OE", "æ", "ae", "Æ", "AE", "ß", "ss",
	"€", "EUR", "–", "-", "—", "-", "‘", "'", "’", "'",
	"“", "\"", "”", "\"", "«", "\"", "»", "\"", "…", "...",
	"\u00a0", " ", "\u202f", " ",
)

func asciiRune(r rune) rune {
	switch {
	case r == '\n':
		return r
	case r < 0x20 || r == 0x7F:
		// Control bytes would be read as printer commands.
		return ' '
	case r > unicode.MaxASCII:
		return '?'
	}
	return r
}

var foldASCII = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC, runes.Map(asciiRune))

// toASCII folds text to 7-bit ASCII, the only range every printer code
// page agrees on. Accents are dropped and anything left is printed as '?'.
func toASCII(s string) string {
	s = typographic.Replace(s)
	out, _, err := transform.String(foldASCII, s)
	if err != nil {
		return strings.Map(asciiRune, s)
	}
	return out
}
