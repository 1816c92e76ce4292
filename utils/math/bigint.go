package math

import (
	"math"
	"math/big"
)

// ToFloat converts x to the nearest float64. nil is zero.
func ToFloat(x *big.Int) float64 {
	if x == nil {
		return 0
	}
	f, _ := new(big.Float).SetInt(x).Float64()
	return f
}

// Round converts f to the nearest integer, halves away from zero
func Round(f float64) *big.Int {
	i, _ := new(big.Float).SetFloat64(math.Round(f)).Int(nil)
	return i
}

// FixedRatio returns num/den with the quotient truncated to scale steps,
// i.e. floor(num*scale/den)/scale. ok is false when den is not positive or
// either operand is nil.
func FixedRatio(num, den, scale *big.Int) (ratio float64, ok bool) {
	if num == nil || den == nil || den.Sign() <= 0 {
		return 0, false
	}
	q := new(big.Int).Mul(num, scale)
	q.Quo(q, den)
	return ToFloat(q) / ToFloat(scale), true
}
