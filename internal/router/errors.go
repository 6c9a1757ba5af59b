package router

import (
	"errors"
	"fmt"

	"github.com/holiman/uint256"
)

var (
	ErrSuboptimalETHIn        = errors.New("suboptimal eth in")
	ErrMinimumAmountOutNotMet = errors.New("minimum amount out not met")
)

// SuboptimalETHInError is returned by AddLiquidity when the ETH sent does not
// match the current reserve ratio.
type SuboptimalETHInError struct {
	Optimal *uint256.Int
	Given   *uint256.Int
}

func (e *SuboptimalETHInError) Error() string {
	return fmt.Sprintf("%v: optimal %s, given %s", ErrSuboptimalETHIn, e.Optimal.Dec(), e.Given.Dec())
}

func (e *SuboptimalETHInError) Is(target error) bool {
	return target == ErrSuboptimalETHIn
}

// MinimumAmountOutNotMetError is returned when a swap delivers less than the
// caller's floor.
type MinimumAmountOutNotMetError struct {
	Min    *uint256.Int
	Actual *uint256.Int
}

func (e *MinimumAmountOutNotMetError) Error() string {
	return fmt.Sprintf("%v: min %s, actual %s", ErrMinimumAmountOutNotMet, e.Min.Dec(), e.Actual.Dec())
}

func (e *MinimumAmountOutNotMetError) Is(target error) bool {
	return target == ErrMinimumAmountOutNotMet
}
