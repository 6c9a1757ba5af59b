package router

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// AddLiquidity moves spcIn (through the caller's allowance to the router) and
// ethIn into the pool and mints the resulting shares to the caller. Once the
// pool holds liquidity, ethIn must equal the ETH matching the SPC the pool
// actually received, which is OptimalDepositETH(spcIn).
func (r *Router) AddLiquidity(caller common.Address, spcIn, ethIn *uint256.Int) (*uint256.Int, error) {
	var minted *uint256.Int
	err := r.do("add_liquidity", func() error {
		poolAddr := r.pair.Address()
		spcBefore := r.token.BalanceOf(poolAddr)
		if err := r.token.TransferFrom(r.addr, caller, poolAddr, spcIn); err != nil {
			return err
		}
		received := delta(r.token.BalanceOf(poolAddr), spcBefore)

		reserveETH, reserveSPC := r.pair.Reserves()
		if !reserveETH.IsZero() && !reserveSPC.IsZero() {
			optimal, err := r.optimalETH(received)
			if err != nil {
				return err
			}
			if !ethIn.Eq(optimal) {
				return &SuboptimalETHInError{Optimal: optimal, Given: ethIn.Clone()}
			}
		}

		if err := r.native.Transfer(caller, poolAddr, ethIn); err != nil {
			return err
		}

		var err error
		if minted, err = r.pair.Deposit(r.addr, caller); err != nil {
			return err
		}
		r.j.OnCommit(func() {
			r.logger.Info("liquidity added", "provider", caller.Hex(), "spc", received.Dec(), "eth", ethIn.Dec(), "shares", minted.Dec())
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return minted, nil
}

// RemoveLiquidity moves shares (through the caller's share allowance to the
// router) into the pool and pays the caller the matching assets.
func (r *Router) RemoveLiquidity(caller common.Address, shares *uint256.Int) (eth, spc *uint256.Int, err error) {
	err = r.do("remove_liquidity", func() error {
		if err := r.pair.TransferFrom(r.addr, caller, r.pair.Address(), shares); err != nil {
			return err
		}
		var err error
		if eth, spc, err = r.pair.Withdraw(r.addr, caller); err != nil {
			return err
		}
		r.j.OnCommit(func() {
			r.logger.Info("liquidity removed", "provider", caller.Hex(), "shares", shares.Dec(), "eth", eth.Dec(), "spc", spc.Dec())
		})
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return eth, spc, nil
}
