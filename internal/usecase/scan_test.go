package usecase

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/boopathydreams/capnpay-upi/internal/domain"
	"github.com/boopathydreams/capnpay-upi/internal/launch"
	"github.com/boopathydreams/capnpay-upi/internal/upi"
)

const debounce = 1500 * time.Millisecond

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time {
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.t = c.t.Add(d)
}

func newWorkflow() (*ScanWorkflow, *fakeClock) {
	clock := &fakeClock{t: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	w := NewScanWorkflow(launch.DefaultRegistry(), debounce, nil).WithClock(clock.Now)
	return w, clock
}

func TestScanHappyPath(t *testing.T) {
	w, _ := newWorkflow()

	s, err := w.Submit("s1", "upi://pay?pa=ravi@okaxis&pn=Ravi")
	require.NoError(t, err)
	assert.Equal(t, domain.ScanScanned, s.State)
	require.NotNil(t, s.Descriptor)
	assert.Equal(t, "ravi@okaxis", s.Descriptor.PayeeAddress)

	s, err = w.ConfirmPayment("s1", "250", "chai", false)
	require.NoError(t, err)
	assert.Equal(t, domain.ScanAwaitingPayment, s.State)
	assert.Contains(t, s.DeepLink, "am=250.00")
	assert.Contains(t, s.DeepLink, "tn=chai")
	require.Len(t, s.Plan, 4)
	assert.Equal(t, "gpay", s.Plan[0].App)

	s, err = w.MarkLaunching("s1")
	require.NoError(t, err)
	assert.Equal(t, domain.ScanLaunching, s.State)

	s = w.Reset("s1")
	assert.Equal(t, domain.ScanIdle, s.State)
	assert.Nil(t, s.Descriptor)
	assert.Empty(t, s.DeepLink)
}

func TestSubmitRejectedCodeArmsDebounce(t *testing.T) {
	w, clock := newWorkflow()

	_, err := w.Submit("s1", "not a url")
	var perr *upi.ParseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, upi.KindUnparseable, perr.Kind)

	// Even a valid code is suppressed while the scanner re-arms.
	_, err = w.Submit("s1", "upi://pay?pa=ravi@okaxis")
	var derr *DebounceError
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, debounce, derr.RetryAfter)

	clock.Advance(debounce)
	s, err := w.Submit("s1", "upi://pay?pa=ravi@okaxis")
	require.NoError(t, err)
	assert.Equal(t, domain.ScanScanned, s.State)
}

func TestSubmitRecoversMerchantAddress(t *testing.T) {
	w, _ := newWorkflow()

	s, err := w.Submit("s1", "upi://pay?PA=shop@bank&pn=Shop&mid=9")
	require.NoError(t, err)
	require.NotNil(t, s.Descriptor)
	assert.Equal(t, "shop@bank", s.Descriptor.PayeeAddress)
	assert.True(t, s.Descriptor.IsMerchant)
}

func TestSubmitIgnoredOutsideIdle(t *testing.T) {
	w, _ := newWorkflow()

	_, err := w.Submit("s1", "upi://pay?pa=ravi@okaxis")
	require.NoError(t, err)

	_, err = w.Submit("s1", "upi://pay?pa=other@ybl")
	assert.ErrorIs(t, err, ErrNotArmed)

	s, err := w.Get("s1")
	require.NoError(t, err)
	assert.Equal(t, "ravi@okaxis", s.Descriptor.PayeeAddress)
}

func TestConfirmPaymentValidation(t *testing.T) {
	w, _ := newWorkflow()
	_, err := w.Submit("s1", "upi://pay?pa=ravi@okaxis")
	require.NoError(t, err)

	t.Run("non-numeric", func(t *testing.T) {
		_, err := w.ConfirmPayment("s1", "lots", "", false)
		assert.ErrorIs(t, err, upi.ErrBadAmount)
	})

	t.Run("zero", func(t *testing.T) {
		_, err := w.ConfirmPayment("s1", "0", "", false)
		assert.ErrorIs(t, err, ErrAmountNotPositive)
	})

	t.Run("negative", func(t *testing.T) {
		_, err := w.ConfirmPayment("s1", "-5", "", false)
		assert.ErrorIs(t, err, ErrAmountNotPositive)
	})

	t.Run("session still scanned after rejects", func(t *testing.T) {
		s, err := w.Get("s1")
		require.NoError(t, err)
		assert.Equal(t, domain.ScanScanned, s.State)
	})
}

func TestConfirmPaymentStateGuards(t *testing.T) {
	w, _ := newWorkflow()

	_, err := w.ConfirmPayment("ghost", "10", "", false)
	assert.ErrorIs(t, err, ErrSessionNotFound)

	w.Reset("s1")
	_, err = w.ConfirmPayment("s1", "10", "", false)
	assert.ErrorIs(t, err, ErrStateConflict)
}

func TestMarkLaunchingStateGuards(t *testing.T) {
	w, _ := newWorkflow()

	_, err := w.MarkLaunching("ghost")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	_, err = w.Submit("s1", "upi://pay?pa=ravi@okaxis")
	require.NoError(t, err)
	_, err = w.MarkLaunching("s1")
	assert.ErrorIs(t, err, ErrStateConflict)
}

func TestResetClearsDebounce(t *testing.T) {
	w, _ := newWorkflow()

	_, err := w.Submit("s1", "garbage")
	require.Error(t, err)

	w.Reset("s1")
	s, err := w.Submit("s1", "upi://pay?pa=ravi@okaxis")
	require.NoError(t, err)
	assert.Equal(t, domain.ScanScanned, s.State)
}

func TestConfirmPaymentAutoRef(t *testing.T) {
	t.Run("peer-to-peer gets a minted reference", func(t *testing.T) {
		w, _ := newWorkflow()
		_, err := w.Submit("s1", "upi://pay?pa=ravi@okaxis")
		require.NoError(t, err)

		s, err := w.ConfirmPayment("s1", "10", "", true)
		require.NoError(t, err)
		assert.Contains(t, s.DeepLink, "tr=CP")
	})

	t.Run("merchant links are never touched", func(t *testing.T) {
		w, _ := newWorkflow()
		_, err := w.Submit("s1", "upi://pay?pa=m@psp&mid=1")
		require.NoError(t, err)

		s, err := w.ConfirmPayment("s1", "10", "", true)
		require.NoError(t, err)
		assert.NotContains(t, s.DeepLink, "tr=CP")
	})
}

func TestCompose(t *testing.T) {
	w, _ := newWorkflow()

	t.Run("from payload", func(t *testing.T) {
		res, err := w.Compose(ComposeRequest{
			Payload: "upi://pay?pa=ravi@okaxis&pn=Ravi",
			Amount:  "99.999",
		})
		require.NoError(t, err)
		assert.Contains(t, res.DeepLink, "am=100.00")
		assert.Len(t, res.Plan, 4)
	})

	t.Run("manual entry", func(t *testing.T) {
		res, err := w.Compose(ComposeRequest{
			Address: "ravi@okaxis",
			Name:    "Ravi Kumar",
			Amount:  "50",
		})
		require.NoError(t, err)
		assert.Equal(t, "ravi@okaxis", res.Descriptor.PayeeAddress)
		assert.Equal(t, "Ravi Kumar", res.Descriptor.PayeeName)
		assert.Contains(t, res.DeepLink, "pa=ravi@okaxis")
	})

	t.Run("manual entry with a bad address", func(t *testing.T) {
		_, err := w.Compose(ComposeRequest{Address: "not-a-vpa", Amount: "50"})
		var perr *upi.ParseError
		require.ErrorAs(t, err, &perr)
		assert.Equal(t, upi.KindMissingPayeeAddress, perr.Kind)
	})

	t.Run("amount falls back to the payload", func(t *testing.T) {
		res, err := w.Compose(ComposeRequest{Payload: "upi://pay?pa=ravi@okaxis&am=42.5"})
		require.NoError(t, err)
		assert.Contains(t, res.DeepLink, "am=42.50")
	})

	t.Run("missing amount everywhere", func(t *testing.T) {
		_, err := w.Compose(ComposeRequest{Payload: "upi://pay?pa=ravi@okaxis"})
		assert.ErrorIs(t, err, upi.ErrBadAmount)
	})
}

func TestGetUnknownSession(t *testing.T) {
	w, _ := newWorkflow()
	_, err := w.Get("ghost")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestNewReferenceShape(t *testing.T) {
	ref := NewReference()
	assert.True(t, strings.HasPrefix(ref, "CP"))
	assert.Len(t, ref, 14)
	assert.NotEqual(t, ref, NewReference())
}
