package launch

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeOpener accepts URIs by prefix and records every attempt.
type fakeOpener struct {
	openable map[string]bool
	openErr  map[string]error
	attempts []string
}

func (f *fakeOpener) CanOpen(_ context.Context, uri string) bool {
	return f.openable[uri]
}

func (f *fakeOpener) Open(_ context.Context, uri string) error {
	f.attempts = append(f.attempts, uri)
	return f.openErr[uri]
}

func TestLaunchFirstAvailableWins(t *testing.T) {
	link := "upi://pay?pa=x@y&am=1.00&cu=INR"
	phonepe := "phonepe://pay?pa=x@y&am=1.00&cu=INR"
	opener := &fakeOpener{openable: map[string]bool{
		phonepe: true,
		link:    true,
	}}

	res, err := NewLauncher(DefaultRegistry(), opener, nil).Launch(context.Background(), link)
	require.NoError(t, err)
	assert.Equal(t, "phonepe", res.App)
	// gpay was skipped without an open attempt, and nothing ran after the
	// successful handoff.
	assert.Equal(t, []string{phonepe}, opener.attempts)
}

func TestLaunchSkipsFailedOpen(t *testing.T) {
	link := "upi://pay?pa=x@y"
	gpay := "tez://upi/pay?pa=x@y"
	paytm := "paytmmp://pay?pa=x@y"
	opener := &fakeOpener{
		openable: map[string]bool{gpay: true, paytm: true},
		openErr:  map[string]error{gpay: errors.New("activity crashed")},
	}

	res, err := NewLauncher(DefaultRegistry(), opener, nil).Launch(context.Background(), link)
	require.NoError(t, err)
	assert.Equal(t, "paytm", res.App)
	assert.Equal(t, []string{gpay, paytm}, opener.attempts)
}

func TestLaunchFallsBackToCanonical(t *testing.T) {
	link := "upi://pay?pa=x@y"
	opener := &fakeOpener{openable: map[string]bool{link: true}}

	res, err := NewLauncher(DefaultRegistry(), opener, nil).Launch(context.Background(), link)
	require.NoError(t, err)
	assert.Equal(t, "upi", res.App)
	assert.Equal(t, link, res.URI)
}

func TestLaunchNoHandler(t *testing.T) {
	opener := &fakeOpener{}

	_, err := NewLauncher(DefaultRegistry(), opener, nil).Launch(context.Background(), "upi://pay?pa=x@y")
	assert.ErrorIs(t, err, ErrNoHandler)
	assert.Empty(t, opener.attempts)
}

func TestLaunchHonorsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	opener := &fakeOpener{openable: map[string]bool{"upi://pay?pa=x@y": true}}
	_, err := NewLauncher(DefaultRegistry(), opener, nil).Launch(ctx, "upi://pay?pa=x@y")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, opener.attempts)
}
