package upi

import (
	"net/url"
	"strings"

	"github.com/boopathydreams/capnpay-upi/internal/domain"
)

// BuildPaymentURL renders a descriptor plus the user-entered amount (and an
// optional note override) into a launchable deep link.
//
// Merchant payloads are rebuilt from OriginalPayload with every original
// pair kept byte-for-byte in its original position: the merchant signature
// covers those bytes, and re-encoding them invalidates the code at the
// receiving end. Only currency and note, which are outside the signature,
// are set or replaced; am is appended just when the original omitted it.
// Peer-to-peer payloads get a minimal canonical link that drops unsigned
// extras. A merchant descriptor whose original payload turns out not to be a
// readable link falls back to the peer-to-peer form instead of failing.
//
// An empty amount falls back to the descriptor's own. The only error is an
// amount that does not parse as a number, which callers validate first.
func BuildPaymentURL(d domain.PaymentDescriptor, amount, note string) (string, error) {
	am := strings.TrimSpace(amount)
	if am == "" {
		am = strings.TrimSpace(d.Amount)
	}
	if am != "" {
		normalized, err := NormalizeAmount(am)
		if err != nil {
			return "", err
		}
		am = normalized
	}

	currency := d.CurrencyCode
	if currency == "" {
		currency = domain.DefaultCurrency
	}

	if d.IsMerchant {
		if link, ok := rebuildMerchant(d.OriginalPayload, am, note, currency); ok {
			return link, nil
		}
	}
	if am == "" {
		return "", ErrBadAmount
	}
	return buildPeerToPeer(d, am, note, currency), nil
}

// rebuildMerchant edits the original payload's raw query as text, splitting
// on & and rejoining, so untouched pairs survive with their exact bytes and
// order. Returns false when the original is not a readable canonical link,
// which sends the caller down the peer-to-peer path.
func rebuildMerchant(original, amount, note, currency string) (string, bool) {
	if !hasCanonicalScheme(original) {
		return "", false
	}
	if _, err := url.Parse(original); err != nil {
		return "", false
	}
	prefix, rawQuery, _ := strings.Cut(original, "?")

	var segments []string
	if rawQuery != "" {
		segments = strings.Split(rawQuery, "&")
	}

	var haveAmount, haveCurrency, haveNote bool
	for i, seg := range segments {
		// Keys are matched on their exact bytes, mirroring the structured
		// decode; an oddly cased AM pair is signed content, not ours to own.
		key, _, _ := strings.Cut(seg, "=")
		switch key {
		case "am":
			haveAmount = true
		case "cu":
			haveCurrency = true
			segments[i] = "cu=" + queryEscape(currency)
		case "tn":
			haveNote = true
			if note != "" {
				segments[i] = "tn=" + queryEscape(Sanitize(note, 0))
			}
		}
	}

	if !haveAmount && amount != "" {
		segments = append(segments, "am="+amount)
	}
	if !haveCurrency {
		segments = append(segments, "cu="+queryEscape(currency))
	}
	if !haveNote && note != "" {
		segments = append(segments, "tn="+queryEscape(Sanitize(note, 0)))
	}
	return prefix + "?" + strings.Join(segments, "&"), true
}

// buildPeerToPeer renders the minimal canonical link. Unsigned extras from
// the scanned payload are dropped on purpose; only fields this app vouches
// for are carried.
func buildPeerToPeer(d domain.PaymentDescriptor, amount, note, currency string) string {
	if note == "" {
		note = d.Note
	}

	var b strings.Builder
	b.WriteString(Scheme)
	sep := byte('?')
	add := func(key, value string) {
		if value == "" {
			return
		}
		b.WriteByte(sep)
		sep = '&'
		b.WriteString(key)
		b.WriteByte('=')
		b.WriteString(value)
	}
	add("pa", escapeAddress(d.PayeeAddress))
	add("pn", queryEscape(Sanitize(d.PayeeName, 0)))
	add("am", amount)
	add("cu", queryEscape(currency))
	add("tn", queryEscape(Sanitize(note, 0)))
	add("tr", queryEscape(Sanitize(d.TransactionRef, 0)))
	return b.String()
}

// queryEscape percent-encodes a query value with %20 for spaces. Handler
// apps in the wild read + literally, so the form-encoding shortcut is off
// the table.
func queryEscape(v string) string {
	return strings.ReplaceAll(url.QueryEscape(v), "+", "%20")
}

// escapeAddress keeps the @ of a payee address literal; several handler
// apps reject %40 inside the address.
func escapeAddress(addr string) string {
	return strings.ReplaceAll(queryEscape(addr), "%40", "@")
}
