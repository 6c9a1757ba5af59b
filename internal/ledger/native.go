package ledger

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/nulln0ne/spacelp/internal/journal"
)

// Receiver is invoked after native funds are credited to an account that
// registered it. Returning an error rejects the transfer. A receiver may call
// back into other components while it runs.
type Receiver interface {
	Receive(from common.Address, amount *uint256.Int) error
}

// ReceiverFunc adapts a function to the Receiver interface.
type ReceiverFunc func(from common.Address, amount *uint256.Int) error

func (f ReceiverFunc) Receive(from common.Address, amount *uint256.Int) error {
	return f(from, amount)
}

// Native is the ledger of the chain's native asset.
type Native struct {
	j         *journal.Journal
	balances  *amounts[common.Address]
	receivers map[common.Address]Receiver
}

func NewNative(j *journal.Journal) *Native {
	return &Native{
		j:         j,
		balances:  newAmounts[common.Address](j),
		receivers: make(map[common.Address]Receiver),
	}
}

func (n *Native) BalanceOf(addr common.Address) *uint256.Int {
	return n.balances.get(addr)
}

// SetReceiver registers the hook run when addr receives a native transfer.
// A nil receiver removes the hook.
func (n *Native) SetReceiver(addr common.Address, r Receiver) {
	if r == nil {
		delete(n.receivers, addr)
		return
	}
	n.receivers[addr] = r
}

// Mint credits newly issued native funds, as done at genesis.
func (n *Native) Mint(to common.Address, amount *uint256.Int) error {
	return n.balances.add(to, amount)
}

// Transfer moves amount and then runs the receiver hook of to, if any. The
// transfer is undone when the hook fails.
func (n *Native) Transfer(from, to common.Address, amount *uint256.Int) error {
	return n.j.Atomic(func() error {
		if err := n.move(from, to, amount); err != nil {
			return err
		}
		if r, ok := n.receivers[to]; ok {
			if err := r.Receive(from, amount); err != nil {
				return fmt.Errorf("%w: %w", ErrTransferRejected, err)
			}
		}
		return nil
	})
}

// ForceFeed moves funds without running the receiver hook of to. It models
// value that reaches an account without its cooperation.
func (n *Native) ForceFeed(from, to common.Address, amount *uint256.Int) error {
	return n.j.Atomic(func() error {
		return n.move(from, to, amount)
	})
}

func (n *Native) move(from, to common.Address, amount *uint256.Int) error {
	if err := n.balances.sub(from, amount, ErrInsufficientBalance); err != nil {
		return err
	}
	return n.balances.add(to, amount)
}
