package pool

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/nulln0ne/spacelp/pkg/cpmm"
)

// Swap trades the input that arrived since the last operation for the other
// asset and pays it to to. ethIn selects ETH→SPC; otherwise SPC→ETH.
//
// The input is whatever the pool holds above its recognized input reserve.
// The output is priced against the pool's actual output-side holdings, so
// donations on that side improve the trade.
func (p *Pool) Swap(caller, to common.Address, ethIn bool) (amountIn, amountOut *uint256.Int, err error) {
	err = p.guarded("swap", func() error {
		ethBal, spcBal := p.holdings()

		reserveIn, balIn, balOut := p.reserveSPC, spcBal, ethBal
		if ethIn {
			reserveIn, balIn, balOut = p.reserveETH, ethBal, spcBal
		}
		// an output side below its reserve would underprice the trade
		reserveOut := p.reserveETH
		if ethIn {
			reserveOut = p.reserveSPC
		}
		if _, err := unrecognized(balOut, reserveOut); err != nil {
			return err
		}

		amountIn, err = unrecognized(balIn, reserveIn)
		if err != nil {
			return err
		}
		if amountIn.IsZero() {
			return ErrInsufficientInputAmount
		}
		if p.reserveETH.IsZero() || p.reserveSPC.IsZero() {
			return ErrInsufficientLiquidity
		}

		amountOut, err = cpmm.GetAmountOut(amountIn, reserveIn, balOut)
		if err != nil {
			return err
		}
		retained, err := cpmm.Fee(amountIn)
		if err != nil {
			return err
		}
		remaining := new(uint256.Int).Sub(balOut, amountOut)

		asset := "spc"
		if ethIn {
			asset = "eth"
			p.setReserves(balIn, remaining)
			if err := p.payoutSPC(to, amountOut); err != nil {
				return err
			}
		} else {
			p.setReserves(remaining, balIn)
			if err := p.payoutETH(to, amountOut); err != nil {
				return err
			}
		}

		p.emit(Event{
			Kind:      KindSwap,
			Sender:    caller,
			To:        to,
			ETHIn:     ethIn,
			AmountIn:  amountIn,
			AmountOut: amountOut,
		})
		p.j.OnCommit(func() { p.metrics.AddSwap(asset, amountIn, retained) })
		p.commit("swap", "swap executed",
			"sender", caller.Hex(), "to", to.Hex(), "eth_in", ethIn,
			"in", amountIn.Dec(), "out", amountOut.Dec())
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return amountIn, amountOut, nil
}
