package upi

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// DefaultFieldLimit bounds display fields (payee name, note, reference) when
// they are written into a built link.
const DefaultFieldLimit = 40

// asciiFold decomposes accented runes and strips the combining marks, so
// "Café" folds to "Cafe" before the printable-ASCII filter runs.
var asciiFold = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Sanitize reduces free text to a transport-safe subset: diacritics folded to
// their ASCII base, everything outside printable ASCII dropped, whitespace
// runs collapsed to single spaces, the result trimmed and truncated to max
// bytes. A max of zero or less applies DefaultFieldLimit. Sanitize is total;
// the worst input yields an empty string, never an error.
func Sanitize(s string, max int) string {
	if max <= 0 {
		max = DefaultFieldLimit
	}
	folded, _, err := transform.String(asciiFold, s)
	if err != nil {
		folded = s
	}

	var b strings.Builder
	b.Grow(len(folded))
	pending := false
	for _, r := range folded {
		if unicode.IsSpace(r) {
			pending = true
			continue
		}
		if r < 0x21 || r > 0x7e {
			continue
		}
		if pending && b.Len() > 0 {
			b.WriteByte(' ')
		}
		pending = false
		b.WriteRune(r)
	}

	out := b.String()
	if len(out) > max {
		out = strings.TrimRight(out[:max], " ")
	}
	return out
}
