// Package upi decodes UPI QR payloads into payment descriptors and builds
// launchable payment deep links from them.
package upi

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/boopathydreams/capnpay-upi/internal/domain"
)

// ParseErrorKind classifies why a payload was rejected.
type ParseErrorKind string

const (
	// KindUnrecognizedScheme marks payloads that announce a non-payment
	// scheme, such as plain https links.
	KindUnrecognizedScheme ParseErrorKind = "unrecognized_scheme"
	// KindMissingPayeeAddress marks payloads that decoded but carry no
	// machine-readable payee address.
	KindMissingPayeeAddress ParseErrorKind = "missing_payee_address"
	// KindUnparseable marks payloads neither decode stage could read.
	KindUnparseable ParseErrorKind = "unparseable"
)

// ParseError reports why a scanned payload could not become a usable
// descriptor. Every kind reads the same to the person holding the phone; the
// kind itself is for logs and for callers that can recover.
type ParseError struct {
	Kind ParseErrorKind
}

func (e *ParseError) Error() string {
	return "not a valid payment code: " + string(e.Kind)
}

var (
	// vpaPattern is the local@handle shape of a payee address. The handle
	// starts with a letter; bank handles are alphabetic.
	vpaPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*@[A-Za-z][A-Za-z0-9.-]*$`)

	// foreignScheme matches any URI scheme prefix. Payloads that announce a
	// scheme other than the canonical one are rejected outright; schemeless
	// text still gets the tolerant stage.
	foreignScheme = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9+.-]*://`)
)

var fallbackFields = []string{"pa", "pn", "am", "cu", "tn", "tr", "mc"}

// fallbackPatterns finds key=value shapes without requiring a well-formed
// URI. Keys match case-insensitively and must sit at the start of the text
// or after a separator, so "pa" never fires inside "mpa".
var fallbackPatterns = func() map[string]*regexp.Regexp {
	m := make(map[string]*regexp.Regexp, len(fallbackFields))
	for _, key := range fallbackFields {
		m[key] = regexp.MustCompile(`(?i)(?:^|[?&;\s])` + key + `=([^&#;\s]+)`)
	}
	return m
}()

// Parse decodes one scanned payload into a PaymentDescriptor.
//
// The pipeline runs two stages: a strict structured decode for canonical
// links, then a tolerant pattern scan for payloads that are not well-formed
// URIs. QR encoders in the wild emit bare parameter strings, stray
// whitespace and uppercase keys, so the tolerant stage is load-bearing, not
// a safety net.
//
// On KindMissingPayeeAddress the returned descriptor still carries whatever
// display fields were decoded, so the scanning workflow can attempt
// RecoverAddress. For the other kinds the descriptor is zero.
func Parse(raw string) (domain.PaymentDescriptor, error) {
	payload := NormalizeScheme(strings.TrimSpace(raw))

	if !hasCanonicalScheme(payload) {
		if foreignScheme.MatchString(payload) {
			return domain.PaymentDescriptor{}, &ParseError{Kind: KindUnrecognizedScheme}
		}
		return decodeFallback(payload)
	}

	d, err := decodeStructured(payload)
	if err == nil {
		return d, nil
	}
	var perr *ParseError
	if errors.As(err, &perr) {
		// The structured stage read the payload and delivered a verdict;
		// d may be a recoverable partial.
		return d, err
	}
	return decodeFallback(payload)
}

func hasCanonicalScheme(payload string) bool {
	return len(payload) >= len(Scheme) && strings.EqualFold(payload[:len(Scheme)], Scheme)
}

// decodeStructured reads a canonical link with the standard URL machinery.
// Keys are matched exactly; an uppercase PA is invisible here and surfaces
// only through the tolerant address scan.
func decodeStructured(payload string) (domain.PaymentDescriptor, error) {
	u, err := url.Parse(payload)
	if err != nil {
		return domain.PaymentDescriptor{}, fmt.Errorf("parse uri: %w", err)
	}
	params, err := url.ParseQuery(u.RawQuery)
	if err != nil {
		return domain.PaymentDescriptor{}, fmt.Errorf("parse query: %w", err)
	}

	d := domain.PaymentDescriptor{
		PayeeAddress:    lastValue(params, "pa"),
		PayeeName:       lastValue(params, "pn"),
		Amount:          lastValue(params, "am"),
		CurrencyCode:    lastValue(params, "cu"),
		Note:            lastValue(params, "tn"),
		TransactionRef:  lastValue(params, "tr"),
		MerchantCode:    lastValue(params, "mc"),
		OriginalPayload: payload,
		IsMerchant:      IsMerchantPayload(params),
	}
	if d.CurrencyCode == "" {
		d.CurrencyCode = domain.DefaultCurrency
	}
	if !vpaPattern.MatchString(d.PayeeAddress) {
		// An address that is present but malformed is treated as absent.
		d.PayeeAddress = ""
		return d, &ParseError{Kind: KindMissingPayeeAddress}
	}
	return d, nil
}

// lastValue returns the trimmed last occurrence of key. Repeated keys follow
// query-string convention: the final occurrence wins.
func lastValue(params url.Values, key string) string {
	vs := params[key]
	if len(vs) == 0 {
		return ""
	}
	return strings.TrimSpace(vs[len(vs)-1])
}

// decodeFallback scans raw text for key=value shapes. It cannot see a
// trustworthy parameter set, so it never marks a payload as merchant.
func decodeFallback(payload string) (domain.PaymentDescriptor, error) {
	addr, ok := ExtractAddress(payload)
	if !ok {
		return domain.PaymentDescriptor{}, &ParseError{Kind: KindUnparseable}
	}
	d := domain.PaymentDescriptor{
		PayeeAddress:    addr,
		PayeeName:       fallbackField(payload, "pn"),
		Amount:          fallbackField(payload, "am"),
		CurrencyCode:    fallbackField(payload, "cu"),
		Note:            fallbackField(payload, "tn"),
		TransactionRef:  fallbackField(payload, "tr"),
		MerchantCode:    fallbackField(payload, "mc"),
		OriginalPayload: payload,
	}
	if d.CurrencyCode == "" {
		d.CurrencyCode = domain.DefaultCurrency
	}
	return d, nil
}

func fallbackField(payload, key string) string {
	matches := fallbackPatterns[key].FindAllStringSubmatch(payload, -1)
	if len(matches) == 0 {
		return ""
	}
	return strings.TrimSpace(percentDecode(matches[len(matches)-1][1]))
}

func percentDecode(v string) string {
	if dec, err := url.QueryUnescape(v); err == nil {
		return dec
	}
	return v
}

// ExtractAddress is the tolerant payee-address scan shared by the fallback
// stage and RecoverAddress: the last pa occurrence wins, and the value must
// look like a local@handle token after percent-decoding.
func ExtractAddress(payload string) (string, bool) {
	v := fallbackField(payload, "pa")
	if v == "" || !vpaPattern.MatchString(v) {
		return "", false
	}
	return v, true
}

// RecoverAddress backfills the payee address on a descriptor that decoded
// with a display name but no machine-readable address, as happens on
// merchant stickers whose pa pair is oddly cased or half-broken. A
// descriptor that already has an address comes back unchanged, so recovery
// is idempotent.
func RecoverAddress(d domain.PaymentDescriptor) (domain.PaymentDescriptor, bool) {
	if d.PayeeAddress != "" {
		return d, true
	}
	if d.PayeeName == "" {
		return d, false
	}
	addr, ok := ExtractAddress(d.OriginalPayload)
	if !ok {
		return d, false
	}
	d.PayeeAddress = addr
	return d, true
}
