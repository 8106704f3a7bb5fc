package upi

import "strings"

// Scheme is the canonical prefix every payment link is normalized to before
// parsing, and the prefix every link this app builds carries.
const Scheme = "upi://pay"

// schemeAliases are vendor deep-link prefixes that address the same pay
// endpoint and differ only in scheme. Google Pay's tez:// links use a
// different path shape, so they are a launch target rather than an alias.
var schemeAliases = []string{
	"phonepe://pay",
	"paytm://pay",
}

// NormalizeScheme rewrites a known vendor prefix to the canonical scheme and
// leaves the rest of the payload untouched. The prefix match is
// case-insensitive. Input that carries no known alias passes through
// unchanged, so the rewrite is idempotent.
func NormalizeScheme(raw string) string {
	for _, alias := range schemeAliases {
		if len(raw) >= len(alias) && strings.EqualFold(raw[:len(alias)], alias) {
			return Scheme + raw[len(alias):]
		}
	}
	return raw
}
