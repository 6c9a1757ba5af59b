// Package cpmm implements the integer math of a two-asset constant-product
// market maker: swap pricing with a retained fee, ratio quotes and share
// minting/burning amounts. All values are unsigned 256-bit integers and every
// division floors, so rounding always favours the pool.
package cpmm

import (
	"math/big"

	"github.com/holiman/uint256"
)

// fee: 1% => multiplier 99/100
const (
	FeeNumerator   = 99
	FeeDenominator = 100
)

var (
	feeNum = uint256.NewInt(FeeNumerator)
	feeDen = uint256.NewInt(FeeDenominator)
)

// GetAmountOut returns the maximum output obtainable for amountIn against the
// given reserves:
//
//	inAfterFee = amountIn * 99 / 100
//	amountOut  = reserveOut * inAfterFee / (reserveIn + inAfterFee)
//
// The fee portion of the input stays in the pool, so reserveIn*reserveOut
// never decreases.
func GetAmountOut(amountIn, reserveIn, reserveOut *uint256.Int) (*uint256.Int, error) {
	if amountIn.IsZero() {
		return nil, ErrInsufficientInputAmount
	}
	if reserveIn.IsZero() || reserveOut.IsZero() {
		return nil, ErrInsufficientLiquidity
	}

	inAfterFee, err := afterFee(amountIn)
	if err != nil {
		return nil, err
	}

	numerator, overflow := new(uint256.Int).MulOverflow(reserveOut, inAfterFee)
	if overflow {
		return nil, ErrOverflow
	}
	denominator, overflow := new(uint256.Int).AddOverflow(reserveIn, inAfterFee)
	if overflow {
		return nil, ErrOverflow
	}

	out := numerator.Div(numerator, denominator)
	if out.IsZero() {
		return nil, ErrInsufficientLiquidity
	}
	return out, nil
}

// Fee returns the part of amountIn retained by the pool on a swap.
func Fee(amountIn *uint256.Int) (*uint256.Int, error) {
	inAfterFee, err := afterFee(amountIn)
	if err != nil {
		return nil, err
	}
	return inAfterFee.Sub(amountIn, inAfterFee), nil
}

func afterFee(amountIn *uint256.Int) (*uint256.Int, error) {
	inAfterFee, overflow := new(uint256.Int).MulOverflow(amountIn, feeNum)
	if overflow {
		return nil, ErrOverflow
	}
	return inAfterFee.Div(inAfterFee, feeDen), nil
}

// Quote returns the amount of the second asset that matches amountA at the
// current reserve ratio.
func Quote(amountA, reserveA, reserveB *uint256.Int) (*uint256.Int, error) {
	if reserveA.IsZero() || reserveB.IsZero() {
		return nil, ErrInsufficientLiquidity
	}
	amountB, overflow := new(uint256.Int).MulOverflow(amountA, reserveB)
	if overflow {
		return nil, ErrOverflow
	}
	return amountB.Div(amountB, reserveA), nil
}

// InitialShares returns the share amount minted by the first deposit into an
// empty pool: floor(sqrt(amountA * amountB)). It is zero whenever either
// amount is zero. Doubling both reserves afterwards doubles the supply
// through ProportionalShares, keeping the two rules consistent.
func InitialShares(amountA, amountB *uint256.Int) (*uint256.Int, error) {
	product, overflow := new(uint256.Int).MulOverflow(amountA, amountB)
	if overflow {
		return nil, ErrOverflow
	}
	return product.Sqrt(product), nil
}

// ProportionalShares returns the shares minted for a deposit of (deltaA,
// deltaB) into a pool that already has supply. The lower of the two relative
// increases is used so over-supplying one asset never mints extra shares.
func ProportionalShares(deltaA, deltaB, reserveA, reserveB, totalShares *uint256.Int) (*uint256.Int, error) {
	if reserveA.IsZero() || reserveB.IsZero() {
		return nil, ErrInsufficientLiquidity
	}
	sharesA, err := mulDiv(deltaA, totalShares, reserveA)
	if err != nil {
		return nil, err
	}
	sharesB, err := mulDiv(deltaB, totalShares, reserveB)
	if err != nil {
		return nil, err
	}
	if sharesA.Lt(sharesB) {
		return sharesA, nil
	}
	return sharesB, nil
}

// WithdrawAmounts returns the payout of each asset for burning shares out of
// totalShares against balances (balanceA, balanceB).
func WithdrawAmounts(shares, balanceA, balanceB, totalShares *uint256.Int) (amountA, amountB *uint256.Int, err error) {
	if totalShares.IsZero() {
		return new(uint256.Int), new(uint256.Int), nil
	}
	if amountA, err = mulDiv(balanceA, shares, totalShares); err != nil {
		return nil, nil, err
	}
	if amountB, err = mulDiv(balanceB, shares, totalShares); err != nil {
		return nil, nil, err
	}
	return amountA, amountB, nil
}

// K returns reserveA * reserveB. The product is computed on big.Int since it
// may exceed 256 bits.
func K(reserveA, reserveB *uint256.Int) *big.Int {
	return new(big.Int).Mul(reserveA.ToBig(), reserveB.ToBig())
}

// mulDiv computes floor(x*y/d).
func mulDiv(x, y, d *uint256.Int) (*uint256.Int, error) {
	if d.IsZero() {
		return nil, ErrInsufficientLiquidity
	}
	z, overflow := new(uint256.Int).MulDivOverflow(x, y, d)
	if overflow {
		return nil, ErrOverflow
	}
	return z, nil
}
