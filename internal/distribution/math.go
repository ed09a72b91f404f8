// Package distribution converts contributed value into vault token amounts
// and multiplier tables. All arithmetic is exact and floor-truncated so the
// sum of claims never exceeds the value contributed.
package distribution

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
)

var (
	// ErrInvalidReferencePrice is returned for a zero or negative price.
	ErrInvalidReferencePrice = errors.New("reference price must be positive")
	// ErrNegativeValue is returned for a negative contribution value.
	ErrNegativeValue = errors.New("contribution value must not be negative")
	// ErrOverflow is returned when an amount does not fit in int64.
	ErrOverflow = errors.New("vault token amount overflows int64")
)

// VTAmount returns floor(valueAda / referencePrice * 10^decimals).
func VTAmount(valueAda, referencePrice decimal.Decimal, decimals int) (int64, error) {
	if !referencePrice.IsPositive() {
		return 0, ErrInvalidReferencePrice
	}
	if valueAda.IsNegative() {
		return 0, ErrNegativeValue
	}
	if decimals < 0 {
		return 0, fmt.Errorf("decimals must not be negative, got %d", decimals)
	}

	scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
	r := new(big.Rat).Mul(valueAda.Rat(), new(big.Rat).SetInt(scale))
	r.Quo(r, referencePrice.Rat())

	// Both operands are non-negative, so truncating division is floor.
	q := new(big.Int).Quo(r.Num(), r.Denom())
	if !q.IsInt64() {
		return 0, ErrOverflow
	}
	return q.Int64(), nil
}
