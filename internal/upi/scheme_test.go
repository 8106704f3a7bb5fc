package upi

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeScheme(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"phonepe alias", "phonepe://pay?pa=shop@ybl&am=10", "upi://pay?pa=shop@ybl&am=10"},
		{"paytm alias", "paytm://pay?pa=shop@paytm", "upi://pay?pa=shop@paytm"},
		{"alias is case-insensitive", "PhonePe://PAY?pa=x@y", "upi://pay?pa=x@y"},
		{"canonical untouched", "upi://pay?pa=x@y", "upi://pay?pa=x@y"},
		{"unknown scheme untouched", "tez://upi/pay?pa=x@y", "tez://upi/pay?pa=x@y"},
		{"plain text untouched", "hello world", "hello world"},
		{"empty", "", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, NormalizeScheme(tc.in))
		})
	}
}

func TestNormalizeSchemeIdempotent(t *testing.T) {
	once := NormalizeScheme("paytm://pay?pa=shop@paytm&am=5")
	assert.Equal(t, once, NormalizeScheme(once))
}
