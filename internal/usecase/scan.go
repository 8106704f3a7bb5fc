package usecase

import (
	"errors"
	"fmt"
	"math/big"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/boopathydreams/capnpay-upi/internal/domain"
	"github.com/boopathydreams/capnpay-upi/internal/launch"
	"github.com/boopathydreams/capnpay-upi/internal/upi"
)

var (
	ErrSessionNotFound   = errors.New("scan session not found")
	ErrNotArmed          = errors.New("scanner is not armed")
	ErrStateConflict     = errors.New("operation not allowed in this scan state")
	ErrAmountNotPositive = errors.New("amount must be greater than zero")
)

// DebounceError reports a payload submitted while the scanner is re-arming
// after a rejected code.
type DebounceError struct {
	RetryAfter time.Duration
}

func (e *DebounceError) Error() string {
	return fmt.Sprintf("scanner re-arming, retry in %s", e.RetryAfter)
}

// Session is a point-in-time snapshot of one scanning session.
type Session struct {
	ID         string
	State      domain.ScanState
	Descriptor *domain.PaymentDescriptor
	DeepLink   string
	Plan       []launch.Candidate
}

type session struct {
	id         string
	state      domain.ScanState
	descriptor *domain.PaymentDescriptor
	deepLink   string
	plan       []launch.Candidate
	rejectedAt time.Time
}

func (s *session) snapshot() Session {
	snap := Session{ID: s.id, State: s.state, DeepLink: s.deepLink, Plan: s.plan}
	if s.descriptor != nil {
		d := *s.descriptor
		snap.Descriptor = &d
	}
	return snap
}

// ScanWorkflow drives scanning sessions from armed camera to payment-app
// handoff. Sessions live in memory only; nothing about a payment is
// persisted anywhere.
type ScanWorkflow struct {
	registry launch.Registry
	debounce time.Duration
	logger   *zap.Logger

	mu       sync.Mutex
	sessions map[string]*session
	now      func() time.Time
}

func NewScanWorkflow(registry launch.Registry, debounce time.Duration, logger *zap.Logger) *ScanWorkflow {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScanWorkflow{
		registry: registry,
		debounce: debounce,
		logger:   logger,
		sessions: make(map[string]*session),
		now:      time.Now,
	}
}

// WithClock replaces the time source. Tests drive the debounce window
// through it.
func (w *ScanWorkflow) WithClock(now func() time.Time) *ScanWorkflow {
	w.now = now
	return w
}

// Decode runs the parser plus the address-recovery pass every scanned
// payload gets.
func Decode(payload string) (domain.PaymentDescriptor, error) {
	d, err := upi.Parse(payload)
	if err == nil {
		return d, nil
	}
	var perr *upi.ParseError
	if errors.As(err, &perr) && perr.Kind == upi.KindMissingPayeeAddress {
		if recovered, ok := upi.RecoverAddress(d); ok {
			return recovered, nil
		}
	}
	return d, err
}

// Submit feeds one decoded QR payload into a session. A session that does
// not exist yet starts idle. A valid code advances the session to Scanned;
// a rejected one keeps it idle and closes the scanner for the debounce
// window, so a bad sticker in front of the camera cannot fire rejections at
// frame rate.
func (w *ScanWorkflow) Submit(sessionID, payload string) (Session, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	s := w.session(sessionID)
	if s.state != domain.ScanIdle {
		return s.snapshot(), ErrNotArmed
	}
	now := w.now()
	if !s.rejectedAt.IsZero() {
		if until := s.rejectedAt.Add(w.debounce); now.Before(until) {
			return s.snapshot(), &DebounceError{RetryAfter: until.Sub(now)}
		}
	}

	d, err := Decode(payload)
	if err != nil {
		s.rejectedAt = now
		w.logger.Info("scan rejected",
			zap.String("session", s.id),
			zap.String("reason", err.Error()))
		return s.snapshot(), err
	}

	s.state = domain.ScanScanned
	s.descriptor = &d
	s.rejectedAt = time.Time{}
	w.logger.Info("code scanned",
		zap.String("session", s.id),
		zap.String("payee", d.PayeeAddress),
		zap.Bool("merchant", d.IsMerchant))
	return s.snapshot(), nil
}

// ConfirmPayment takes the user-entered amount and optional note, builds the
// deep link and advances the session to AwaitingPayment. With autoRef set, a
// peer-to-peer link that has no transaction reference yet gets a minted one.
func (w *ScanWorkflow) ConfirmPayment(sessionID, amount, note string, autoRef bool) (Session, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	s, ok := w.sessions[sessionID]
	if !ok {
		return Session{}, ErrSessionNotFound
	}
	if s.state != domain.ScanScanned || s.descriptor == nil {
		return s.snapshot(), ErrStateConflict
	}
	if err := ValidateAmount(amount); err != nil {
		return s.snapshot(), err
	}

	d := *s.descriptor
	if autoRef && d.TransactionRef == "" && !d.IsMerchant {
		d.TransactionRef = NewReference()
	}
	link, err := upi.BuildPaymentURL(d, amount, note)
	if err != nil {
		return s.snapshot(), err
	}

	s.deepLink = link
	s.plan = w.registry.Plan(link)
	s.state = domain.ScanAwaitingPayment
	w.logger.Info("payment link built",
		zap.String("session", s.id),
		zap.Bool("merchant", d.IsMerchant))
	return s.snapshot(), nil
}

// MarkLaunching records that the handoff probe sequence started.
func (w *ScanWorkflow) MarkLaunching(sessionID string) (Session, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	s, ok := w.sessions[sessionID]
	if !ok {
		return Session{}, ErrSessionNotFound
	}
	if s.state != domain.ScanAwaitingPayment {
		return s.snapshot(), ErrStateConflict
	}
	s.state = domain.ScanLaunching
	return s.snapshot(), nil
}

// Reset returns a session to idle from any state and clears everything
// scanned, including a pending debounce window.
func (w *ScanWorkflow) Reset(sessionID string) Session {
	w.mu.Lock()
	defer w.mu.Unlock()

	s := w.session(sessionID)
	s.state = domain.ScanIdle
	s.descriptor = nil
	s.deepLink = ""
	s.plan = nil
	s.rejectedAt = time.Time{}
	return s.snapshot()
}

// Get returns a snapshot of an existing session.
func (w *ScanWorkflow) Get(sessionID string) (Session, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	s, ok := w.sessions[sessionID]
	if !ok {
		return Session{}, ErrSessionNotFound
	}
	return s.snapshot(), nil
}

func (w *ScanWorkflow) session(id string) *session {
	s, ok := w.sessions[id]
	if !ok {
		s = &session{id: id, state: domain.ScanIdle}
		w.sessions[id] = s
	}
	return s
}

// ComposeRequest describes a one-shot link build outside any session:
// either a scanned payload or a manually entered address.
type ComposeRequest struct {
	Payload string
	Address string
	Name    string
	Amount  string
	Note    string
	AutoRef bool
}

type ComposeResult struct {
	Descriptor domain.PaymentDescriptor
	DeepLink   string
	Plan       []launch.Candidate
}

// Compose parses or synthesizes a payload, validates the amount, builds the
// link and plans its launch. Manual entries are rendered as a canonical
// payload first, so the parser stays the only code path that constructs
// descriptors and a mistyped address fails its validation.
func (w *ScanWorkflow) Compose(req ComposeRequest) (ComposeResult, error) {
	payload := req.Payload
	if payload == "" {
		payload = manualPayload(req.Address, req.Name)
	}

	d, err := Decode(payload)
	if err != nil {
		return ComposeResult{}, err
	}

	amount := strings.TrimSpace(req.Amount)
	if amount == "" {
		amount = strings.TrimSpace(d.Amount)
	}
	if err := ValidateAmount(amount); err != nil {
		return ComposeResult{}, err
	}

	if req.AutoRef && d.TransactionRef == "" && !d.IsMerchant {
		d.TransactionRef = NewReference()
	}
	link, err := upi.BuildPaymentURL(d, amount, req.Note)
	if err != nil {
		return ComposeResult{}, err
	}
	return ComposeResult{Descriptor: d, DeepLink: link, Plan: w.registry.Plan(link)}, nil
}

func manualPayload(address, name string) string {
	payload := upi.Scheme + "?pa=" + strings.TrimSpace(address)
	if name = strings.TrimSpace(name); name != "" {
		payload += "&pn=" + url.QueryEscape(name)
	}
	return payload
}

// ValidateAmount enforces the caller-side amount contract: a parseable
// number, strictly positive.
func ValidateAmount(amount string) error {
	r, ok := new(big.Rat).SetString(strings.TrimSpace(amount))
	if !ok {
		return upi.ErrBadAmount
	}
	if r.Sign() <= 0 {
		return ErrAmountNotPositive
	}
	return nil
}

// NewReference mints a transaction reference for links built here, so a
// payment can be picked out of the handler app's history later.
func NewReference() string {
	return "CP" + strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", ""))[:12]
}
