package ledger

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/nulln0ne/spacelp/internal/journal"
)

const bpsDenominator = 10_000

// DefaultTaxBps is the transfer tax rate applied when taxing is enabled (2%).
const DefaultTaxBps = 200

// TokenConfig describes a fungible token.
type TokenConfig struct {
	Name     string
	Symbol   string
	Decimals uint8

	// Owner may toggle the transfer tax.
	Owner common.Address
	// Treasury receives the tax withheld from transfers.
	Treasury common.Address
	// TaxBps is the share of every transfer withheld while taxing is enabled,
	// in basis points. Zero disables taxing entirely.
	TaxBps uint64
}

type allowanceKey struct {
	owner, spender common.Address
}

// Token is a fungible token ledger with balances, allowances and an optional
// proportional transfer tax charged on both Transfer and TransferFrom.
type Token struct {
	cfg TokenConfig
	j   *journal.Journal

	balances   *amounts[common.Address]
	allowances *amounts[allowanceKey]

	supply       *uint256.Int
	taxTransfers bool
}

func NewToken(j *journal.Journal, cfg TokenConfig) *Token {
	return &Token{
		cfg:        cfg,
		j:          j,
		balances:   newAmounts[common.Address](j),
		allowances: newAmounts[allowanceKey](j),
		supply:     new(uint256.Int),
	}
}

func (t *Token) Name() string       { return t.cfg.Name }
func (t *Token) Symbol() string     { return t.cfg.Symbol }
func (t *Token) Decimals() uint8    { return t.cfg.Decimals }
func (t *Token) TaxTransfers() bool { return t.taxTransfers }

func (t *Token) TotalSupply() *uint256.Int {
	return t.supply.Clone()
}

func (t *Token) BalanceOf(owner common.Address) *uint256.Int {
	return t.balances.get(owner)
}

func (t *Token) Allowance(owner, spender common.Address) *uint256.Int {
	return t.allowances.get(allowanceKey{owner, spender})
}

// Holders returns a copy of every non-zero balance.
func (t *Token) Holders() map[common.Address]*uint256.Int {
	out := make(map[common.Address]*uint256.Int)
	t.balances.each(func(k common.Address, v *uint256.Int) {
		out[k] = v
	})
	return out
}

func (t *Token) Approve(owner, spender common.Address, amount *uint256.Int) error {
	if spender == (common.Address{}) {
		return ErrZeroAddress
	}
	t.allowances.set(allowanceKey{owner, spender}, amount)
	return nil
}

// Transfer moves amount from one account to another. While taxing is enabled
// the recipient receives amount minus the floor-rounded tax, which is
// credited to the treasury.
func (t *Token) Transfer(from, to common.Address, amount *uint256.Int) error {
	return t.j.Atomic(func() error {
		return t.transfer(from, to, amount)
	})
}

// TransferFrom moves amount out of from on behalf of spender, consuming the
// gross amount from the allowance. A maximal allowance is never decremented.
func (t *Token) TransferFrom(spender, from, to common.Address, amount *uint256.Int) error {
	return t.j.Atomic(func() error {
		key := allowanceKey{from, spender}
		allowance := t.allowances.get(key)
		if allowance.Lt(amount) {
			return fmt.Errorf("%w: %s < %s", ErrInsufficientAllowance, allowance.Dec(), amount.Dec())
		}
		if !isMax(allowance) {
			t.allowances.set(key, allowance.Sub(allowance, amount))
		}
		return t.transfer(from, to, amount)
	})
}

func (t *Token) transfer(from, to common.Address, amount *uint256.Int) error {
	if from == (common.Address{}) || to == (common.Address{}) {
		return ErrZeroAddress
	}
	if err := t.balances.sub(from, amount, ErrInsufficientBalance); err != nil {
		return err
	}

	net := amount.Clone()
	if tax := t.taxOn(amount); !tax.IsZero() {
		net.Sub(net, tax)
		if err := t.balances.add(t.cfg.Treasury, tax); err != nil {
			return err
		}
	}
	return t.balances.add(to, net)
}

// NetOf returns what a recipient is credited for a transfer of amount under
// the current tax setting.
func (t *Token) NetOf(amount *uint256.Int) *uint256.Int {
	return new(uint256.Int).Sub(amount, t.taxOn(amount))
}

// taxOn returns the tax withheld from a transfer of amount.
func (t *Token) taxOn(amount *uint256.Int) *uint256.Int {
	if !t.taxTransfers || t.cfg.TaxBps == 0 {
		return new(uint256.Int)
	}
	tax, _ := new(uint256.Int).MulDivOverflow(amount, uint256.NewInt(t.cfg.TaxBps), uint256.NewInt(bpsDenominator))
	return tax
}

// Mint creates amount new tokens owned by to.
func (t *Token) Mint(to common.Address, amount *uint256.Int) error {
	if to == (common.Address{}) {
		return ErrZeroAddress
	}
	supply, overflow := new(uint256.Int).AddOverflow(t.supply, amount)
	if overflow {
		return ErrOverflow
	}
	if err := t.balances.add(to, amount); err != nil {
		return err
	}
	t.setSupply(supply)
	return nil
}

// Burn destroys amount tokens owned by from.
func (t *Token) Burn(from common.Address, amount *uint256.Int) error {
	if err := t.balances.sub(from, amount, ErrInsufficientBalance); err != nil {
		return err
	}
	t.setSupply(new(uint256.Int).Sub(t.supply, amount))
	return nil
}

// SetTaxTransfers switches the transfer tax on or off. Only the owner may call
// it and the new value must differ from the current one.
func (t *Token) SetTaxTransfers(caller common.Address, enabled bool) error {
	if caller != t.cfg.Owner {
		return ErrUnauthorized
	}
	if t.taxTransfers == enabled {
		return fmt.Errorf("%w: %t", ErrFlagUnchanged, enabled)
	}
	prev := t.taxTransfers
	t.j.Record(func() { t.taxTransfers = prev })
	t.taxTransfers = enabled
	return nil
}

func (t *Token) setSupply(v *uint256.Int) {
	prev := t.supply
	t.j.Record(func() { t.supply = prev })
	t.supply = v
}

func isMax(v *uint256.Int) bool {
	return v.Eq(new(uint256.Int).SetAllOne())
}
