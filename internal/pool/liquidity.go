package pool

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/nulln0ne/spacelp/pkg/cpmm"
)

// Deposit recognizes the assets sent to the pool since the last operation and
// mints shares for them to to. The first deposit mints sqrt(eth*spc) shares;
// later deposits mint in proportion to the smaller relative reserve increase,
// so any surplus of one asset is left to existing holders.
func (p *Pool) Deposit(caller, to common.Address) (*uint256.Int, error) {
	var minted *uint256.Int
	err := p.guarded("deposit", func() error {
		ethBal, spcBal := p.holdings()
		ethIn, err := unrecognized(ethBal, p.reserveETH)
		if err != nil {
			return err
		}
		spcIn, err := unrecognized(spcBal, p.reserveSPC)
		if err != nil {
			return err
		}

		total := p.shares.TotalSupply()
		if total.IsZero() {
			minted, err = cpmm.InitialShares(ethIn, spcIn)
		} else {
			minted, err = cpmm.ProportionalShares(ethIn, spcIn, p.reserveETH, p.reserveSPC, total)
		}
		if err != nil {
			return err
		}
		if minted.IsZero() {
			return ErrInsufficientLiquidityMinted
		}

		if err := p.shares.Mint(to, minted); err != nil {
			return err
		}
		p.setReserves(ethBal, spcBal)

		p.emit(Event{
			Kind:      KindLiquidityAdded,
			Sender:    caller,
			To:        to,
			AmountETH: ethIn,
			AmountSPC: spcIn,
			Shares:    minted,
		})
		p.commit("deposit", "liquidity added",
			"sender", caller.Hex(), "to", to.Hex(),
			"eth", ethIn.Dec(), "spc", spcIn.Dec(), "shares", minted.Dec())
		return nil
	})
	if err != nil {
		return nil, err
	}
	return minted, nil
}

// Withdraw burns the shares held by the pool itself and pays out the matching
// slice of both assets to to. Unrecognized balances are folded into the
// reserves first, so withdrawing the whole supply empties the pool.
func (p *Pool) Withdraw(caller, to common.Address) (ethOut, spcOut *uint256.Int, err error) {
	err = p.guarded("withdraw", func() error {
		ethBal, spcBal := p.holdings()
		if _, err := unrecognized(ethBal, p.reserveETH); err != nil {
			return err
		}
		if _, err := unrecognized(spcBal, p.reserveSPC); err != nil {
			return err
		}

		burned := p.shares.BalanceOf(p.addr)
		ethOut, spcOut, err = cpmm.WithdrawAmounts(burned, ethBal, spcBal, p.shares.TotalSupply())
		if err != nil {
			return err
		}
		if ethOut.IsZero() || spcOut.IsZero() {
			return ErrInsufficientLiquidityBurned
		}

		if err := p.shares.Burn(p.addr, burned); err != nil {
			return err
		}
		p.setReserves(
			new(uint256.Int).Sub(ethBal, ethOut),
			new(uint256.Int).Sub(spcBal, spcOut),
		)

		if err := p.payoutSPC(to, spcOut); err != nil {
			return err
		}
		if err := p.payoutETH(to, ethOut); err != nil {
			return err
		}

		p.emit(Event{
			Kind:      KindLiquidityWithdrawn,
			Sender:    caller,
			To:        to,
			AmountETH: ethOut,
			AmountSPC: spcOut,
			Shares:    burned,
		})
		p.commit("withdraw", "liquidity withdrawn",
			"sender", caller.Hex(), "to", to.Hex(),
			"eth", ethOut.Dec(), "spc", spcOut.Dec(), "shares", burned.Dec())
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return ethOut, spcOut, nil
}

func (p *Pool) payoutSPC(to common.Address, amount *uint256.Int) error {
	if err := p.token.Transfer(p.addr, to, amount); err != nil {
		return &TokenTransferFailedError{From: p.addr, To: to, Amount: amount, Err: err}
	}
	return nil
}

func (p *Pool) payoutETH(to common.Address, amount *uint256.Int) error {
	if err := p.native.Transfer(p.addr, to, amount); err != nil {
		return fmt.Errorf("%w: %w", ErrETHTransferFailed, err)
	}
	return nil
}
