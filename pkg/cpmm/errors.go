package cpmm

import "errors"

var (
	// ErrInsufficientInputAmount is returned when a swap has no input.
	ErrInsufficientInputAmount = errors.New("insufficient input amount")
	// ErrInsufficientLiquidity is returned when a reserve is empty or the
	// computed output rounds down to zero.
	ErrInsufficientLiquidity = errors.New("insufficient liquidity")
	// ErrOverflow is returned when an intermediate product exceeds 256 bits.
	ErrOverflow = errors.New("uint256 overflow")
)
