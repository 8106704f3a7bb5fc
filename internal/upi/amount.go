package upi

import (
	"errors"
	"math/big"
	"strconv"
	"strings"
)

// ErrBadAmount reports an amount string that does not parse as a finite
// decimal number. Presence and positivity are the caller's contract and are
// validated before the builder runs.
var ErrBadAmount = errors.New("amount is not a number")

var hundred = big.NewRat(100, 1)

// NormalizeAmount renders a numeric string with exactly two decimal digits,
// rounding half away from zero at the paise boundary: "10" becomes "10.00"
// and "10.005" becomes "10.01". The arithmetic is exact rationals end to
// end; binary floating point misrounds exactly the half-paise inputs this
// function exists to settle.
func NormalizeAmount(value string) (string, error) {
	r := new(big.Rat)
	if _, ok := r.SetString(strings.TrimSpace(value)); !ok {
		return "", ErrBadAmount
	}
	return formatMinor(roundToMinor(r)), nil
}

// roundToMinor converts rupees to integer paise, half away from zero.
func roundToMinor(r *big.Rat) *big.Int {
	m := new(big.Rat).Mul(r, hundred)
	num := new(big.Int).Abs(m.Num())
	den := m.Denom()

	// floor((2*num + den) / (2*den)) rounds num/den half-up; num is |paise|.
	t := new(big.Int).Lsh(num, 1)
	t.Add(t, den)
	t.Div(t, new(big.Int).Lsh(den, 1))

	if m.Sign() < 0 {
		t.Neg(t)
	}
	return t
}

func formatMinor(minor *big.Int) string {
	sign := ""
	if minor.Sign() < 0 {
		sign = "-"
		minor = new(big.Int).Neg(minor)
	}
	q, rem := new(big.Int).QuoRem(minor, big.NewInt(100), new(big.Int))
	return sign + q.String() + "." + twoDigits(int(rem.Int64()))
}

func twoDigits(n int) string {
	if n < 10 {
		return "0" + strconv.Itoa(n)
	}
	return strconv.Itoa(n)
}
