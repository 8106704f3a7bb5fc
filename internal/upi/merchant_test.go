package upi

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsMerchantPayload(t *testing.T) {
	for _, marker := range []string{"mid", "mc", "sign", "orgid", "tid"} {
		t.Run(marker, func(t *testing.T) {
			params, err := url.ParseQuery("pa=shop@bank&" + marker + "=X")
			require.NoError(t, err)
			assert.True(t, IsMerchantPayload(params))
		})
	}

	t.Run("empty marker value still counts", func(t *testing.T) {
		params, err := url.ParseQuery("pa=shop@bank&sign=")
		require.NoError(t, err)
		assert.True(t, IsMerchantPayload(params))
	})

	t.Run("no markers", func(t *testing.T) {
		params, err := url.ParseQuery("pa=friend@okaxis&pn=Ravi&am=10")
		require.NoError(t, err)
		assert.False(t, IsMerchantPayload(params))
	})
}
