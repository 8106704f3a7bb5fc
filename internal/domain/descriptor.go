package domain

// DefaultCurrency is assumed whenever a payload omits the cu field.
const DefaultCurrency = "INR"

// PaymentDescriptor is the validated, normalized form of one scanned payment
// code. It is produced exclusively by the payload parser and never mutated
// afterwards: amount and note edits travel as separate builder inputs.
type PaymentDescriptor struct {
	PayeeAddress   string
	PayeeName      string
	Amount         string
	Note           string
	CurrencyCode   string
	MerchantCode   string
	TransactionRef string

	// OriginalPayload is the exact scheme-normalized input the descriptor was
	// derived from. Merchant rebuilds start from it so signed fields survive
	// byte-for-byte.
	OriginalPayload string

	// IsMerchant reports whether the payload carried a merchant signature
	// marker. Derived during parsing; tolerant-decoded payloads are always
	// peer-to-peer.
	IsMerchant bool
}

// Usable reports whether the descriptor identifies a payee at all: either a
// machine-parseable address, or at least a display name that a secondary
// address extraction may still resolve.
func (d PaymentDescriptor) Usable() bool {
	return d.PayeeAddress != "" || d.PayeeName != ""
}
