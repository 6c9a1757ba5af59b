package pool

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/nulln0ne/spacelp/pkg/cpmm"
)

var (
	ErrInsufficientLiquidityMinted = errors.New("insufficient liquidity minted")
	ErrInsufficientLiquidityBurned = errors.New("insufficient liquidity burned")
	ErrInsufficientLiquidity       = cpmm.ErrInsufficientLiquidity
	ErrInsufficientInputAmount     = cpmm.ErrInsufficientInputAmount
	ErrReentrancyLockEngaged       = errors.New("reentrancy lock engaged")
	ErrETHTransferFailed           = errors.New("eth transfer failed")
	// ErrBalanceBelowReserve means the pool holds less of an asset than it
	// has recognized, which only a broken ledger can cause.
	ErrBalanceBelowReserve = errors.New("pool balance below recognized reserve")
)

// TokenTransferFailedError reports a token payout the ledger refused.
type TokenTransferFailedError struct {
	From, To common.Address
	Amount   *uint256.Int
	Err      error
}

func (e *TokenTransferFailedError) Error() string {
	return fmt.Sprintf("token transfer of %s from %s to %s failed: %v", e.Amount.Dec(), e.From.Hex(), e.To.Hex(), e.Err)
}

func (e *TokenTransferFailedError) Unwrap() error {
	return e.Err
}
