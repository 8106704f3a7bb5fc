package domain

// ScanState tracks one scanning session through the capture flow.
type ScanState string

const (
	// ScanIdle means the camera is armed and codes are accepted.
	ScanIdle ScanState = "IDLE"
	// ScanScanned means a code decoded into a usable descriptor and the
	// session is waiting for an amount.
	ScanScanned ScanState = "SCANNED"
	// ScanAwaitingPayment means a deep link has been built and the session
	// is ready to hand off to a payment app.
	ScanAwaitingPayment ScanState = "AWAITING_PAYMENT"
	// ScanLaunching means the handoff probe sequence is running.
	ScanLaunching ScanState = "LAUNCHING"
)
