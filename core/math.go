package core

import (
	"github.com/DomeLiquid/lendingpool"
	"github.com/holiman/uint256"
)

// Fixed-point helpers on 10^12-scaled values. Operands are bounded by
// lendingpool.MAX_AMOUNT and MAX_RATE, so a 256-bit result never overflows;
// MulDivOverflow keeps the 512-bit intermediate product.

func zero() *uint256.Int {
	return new(uint256.Int)
}

func clone(x *uint256.Int) *uint256.Int {
	return lendingpool.CloneAmount(x)
}

// mulDiv returns floor(x*y/d), and 0 when d is 0. A quotient beyond 256 bits
// saturates.
func mulDiv(x, y, d *uint256.Int) *uint256.Int {
	if d.IsZero() {
		return zero()
	}
	z, overflow := new(uint256.Int).MulDivOverflow(x, y, d)
	if overflow {
		return new(uint256.Int).SetAllOne()
	}
	return z
}

// mulDivUp returns ceil(x*y/d), and 0 when d is 0.
func mulDivUp(x, y, d *uint256.Int) *uint256.Int {
	if d.IsZero() {
		return zero()
	}
	z, overflow := new(uint256.Int).MulDivOverflow(x, y, d)
	if overflow {
		return new(uint256.Int).SetAllOne()
	}
	if !new(uint256.Int).MulMod(x, y, d).IsZero() {
		z.AddUint64(z, 1)
	}
	return z
}

// wadMul multiplies two ONE-scaled values.
func wadMul(x, y *uint256.Int) *uint256.Int {
	return mulDiv(x, y, lendingpool.ONE)
}

// wadDiv divides two ONE-scaled values.
func wadDiv(x, y *uint256.Int) *uint256.Int {
	return mulDiv(x, lendingpool.ONE, y)
}

func add(x, y *uint256.Int) *uint256.Int {
	return new(uint256.Int).Add(x, y)
}

// sub saturates at zero.
func sub(x, y *uint256.Int) *uint256.Int {
	if !x.Gt(y) {
		return zero()
	}
	return new(uint256.Int).Sub(x, y)
}

func minOf(x, y *uint256.Int) *uint256.Int {
	if x.Lt(y) {
		return clone(x)
	}
	return clone(y)
}

// usdValue prices amount units of the underlying at price. The result keeps
// the price's ONE scale so sub-unit prices still value small amounts.
func usdValue(amount, price *uint256.Int) *uint256.Int {
	z, overflow := new(uint256.Int).MulOverflow(amount, price)
	if overflow {
		return new(uint256.Int).SetAllOne()
	}
	return z
}

// ValidateAmount rejects zero and amounts beyond MAX_AMOUNT.
func ValidateAmount(amount *uint256.Int) error {
	if amount == nil || amount.IsZero() || amount.Gt(lendingpool.MAX_AMOUNT) {
		return lendingpool.ErrInvalidAmount
	}
	return nil
}
