// Package formula defines the formulas that implement the MakingFormula
// interface.
package formula

import (
	"errors"

	"github.com/holiman/uint256"
	"github.com/shopspring/decimal"
	"github.com/tdex-network/tdex-bondingcurve/pkg/mathutil"
)

const (
	BancorType = 1
	// RatioBase is the base of reserve ratios, in parts per million.
	RatioBase = 1_000_000

	// decimal places kept by intermediate fractional calculations.
	precision = 48
)

var (
	// ErrInvalidReserveRatio ...
	ErrInvalidReserveRatio = errors.New("reserve ratio must be in range (0, 1000000]")
	// ErrSupplyTooLow ...
	ErrSupplyTooLow = errors.New("token supply is too low")
	// ErrBalanceTooLow ...
	ErrBalanceTooLow = errors.New("reserve balance amount is too low")
	// ErrAmountTooBig ...
	ErrAmountTooBig = errors.New("provided amount is too big")

	ratioBase = decimal.NewFromInt(RatioBase)
	one       = decimal.NewFromInt(1)
)

// Bancor prices orders along the continuous token curve
// price = balance / (supply * reserveRatio). Results are always truncated so
// that rounding never favors the trader.
type Bancor struct{}

// PurchaseReturn returns supply * ((1 + depositAmount/balance)^ratio - 1).
func (Bancor) PurchaseReturn(
	supply, balance *uint256.Int, reserveRatio uint32, depositAmount *uint256.Int,
) (*uint256.Int, error) {
	if err := validate(supply, balance, reserveRatio); err != nil {
		return nil, err
	}
	if depositAmount.IsZero() {
		return new(uint256.Int), nil
	}

	if reserveRatio == RatioBase {
		return mathutil.MulDiv(supply, depositAmount, balance)
	}

	newBalance, err := mathutil.Add(balance, depositAmount)
	if err != nil {
		return nil, ErrAmountTooBig
	}

	base := toDecimal(newBalance).DivRound(toDecimal(balance), precision)
	exp := decimal.NewFromInt(int64(reserveRatio)).DivRound(ratioBase, precision)
	pow, err := base.PowWithPrecision(exp, precision)
	if err != nil {
		return nil, err
	}

	amount := toDecimal(supply).Mul(pow.Sub(one))
	return fromDecimal(amount)
}

// SaleReturn returns balance * (1 - (supply/(supply + sellAmount))^(1/ratio)).
// The given supply is net of the sold amount.
func (Bancor) SaleReturn(
	supply, balance *uint256.Int, reserveRatio uint32, sellAmount *uint256.Int,
) (*uint256.Int, error) {
	if reserveRatio == 0 || reserveRatio > RatioBase {
		return nil, ErrInvalidReserveRatio
	}
	if balance.IsZero() {
		return nil, ErrBalanceTooLow
	}
	if sellAmount.IsZero() {
		return new(uint256.Int), nil
	}

	prevSupply, err := mathutil.Add(supply, sellAmount)
	if err != nil {
		return nil, ErrAmountTooBig
	}
	// selling the entire supply drains the reserve.
	if supply.IsZero() {
		return balance.Clone(), nil
	}

	if reserveRatio == RatioBase {
		return mathutil.MulDiv(balance, sellAmount, prevSupply)
	}

	base := toDecimal(supply).DivRound(toDecimal(prevSupply), precision)
	exp := ratioBase.DivRound(decimal.NewFromInt(int64(reserveRatio)), precision)
	pow, err := base.PowWithPrecision(exp, precision)
	if err != nil {
		return nil, err
	}

	amount := toDecimal(balance).Mul(one.Sub(pow))
	ret, err := fromDecimal(amount)
	if err != nil {
		return nil, err
	}
	if ret.Gt(balance) {
		return balance.Clone(), nil
	}
	return ret, nil
}

func validate(supply, balance *uint256.Int, reserveRatio uint32) error {
	if reserveRatio == 0 || reserveRatio > RatioBase {
		return ErrInvalidReserveRatio
	}
	if supply.IsZero() {
		return ErrSupplyTooLow
	}
	if balance.IsZero() {
		return ErrBalanceTooLow
	}
	return nil
}

func toDecimal(n *uint256.Int) decimal.Decimal {
	return decimal.NewFromBigInt(n.ToBig(), 0)
}

// fromDecimal truncates the given non-negative decimal to an integer.
func fromDecimal(d decimal.Decimal) (*uint256.Int, error) {
	if d.IsNegative() {
		return new(uint256.Int), nil
	}
	n, overflow := uint256.FromBig(d.BigInt())
	if overflow {
		return nil, ErrAmountTooBig
	}
	return n, nil
}
