package router

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// SwapETHForSPC sells ethIn for SPC. It fails when the caller's SPC balance
// grows by less than minOut, which accounts for the token's transfer tax.
func (r *Router) SwapETHForSPC(caller common.Address, ethIn, minOut *uint256.Int) (*uint256.Int, error) {
	var received *uint256.Int
	err := r.do("swap_eth_for_spc", func() error {
		if err := r.native.Transfer(caller, r.pair.Address(), ethIn); err != nil {
			return err
		}
		before := r.token.BalanceOf(caller)
		if _, _, err := r.pair.Swap(r.addr, caller, true); err != nil {
			return err
		}
		received = delta(r.token.BalanceOf(caller), before)
		return checkMinOut(minOut, received)
	})
	if err != nil {
		return nil, err
	}
	return received, nil
}

// SwapSPCForETH sells spcIn, pulled through the caller's allowance to the
// router, for ETH. It fails when the caller receives less than minOut.
func (r *Router) SwapSPCForETH(caller common.Address, spcIn, minOut *uint256.Int) (*uint256.Int, error) {
	var received *uint256.Int
	err := r.do("swap_spc_for_eth", func() error {
		if err := r.token.TransferFrom(r.addr, caller, r.pair.Address(), spcIn); err != nil {
			return err
		}
		before := r.native.BalanceOf(caller)
		if _, _, err := r.pair.Swap(r.addr, caller, false); err != nil {
			return err
		}
		received = delta(r.native.BalanceOf(caller), before)
		return checkMinOut(minOut, received)
	})
	if err != nil {
		return nil, err
	}
	return received, nil
}

func checkMinOut(minOut, actual *uint256.Int) error {
	if actual.Lt(minOut) {
		return &MinimumAmountOutNotMetError{Min: minOut.Clone(), Actual: actual.Clone()}
	}
	return nil
}

// delta returns after - before, or zero if the balance shrank.
func delta(after, before *uint256.Int) *uint256.Int {
	d, underflow := new(uint256.Int).SubOverflow(after, before)
	if underflow {
		return new(uint256.Int)
	}
	return d
}
