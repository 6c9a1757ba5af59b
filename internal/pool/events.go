package pool

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

type EventKind string

const (
	KindLiquidityAdded     EventKind = "LiquidityAdded"
	KindLiquidityWithdrawn EventKind = "LiquidityWithdrawn"
	KindSwap               EventKind = "Swap"
)

// Event is an entry of the pool's event log. Liquidity events fill AmountETH,
// AmountSPC and Shares; swap events fill ETHIn, AmountIn and AmountOut.
type Event struct {
	Kind   EventKind
	Sender common.Address
	To     common.Address

	AmountETH *uint256.Int
	AmountSPC *uint256.Int
	Shares    *uint256.Int

	ETHIn     bool
	AmountIn  *uint256.Int
	AmountOut *uint256.Int
}

func (p *Pool) emit(e Event) {
	n := len(p.events)
	p.j.Record(func() { p.events = p.events[:n] })
	p.events = append(p.events, e)
}

// Events returns a copy of the event log.
func (p *Pool) Events() []Event {
	out := make([]Event, len(p.events))
	copy(out, p.events)
	return out
}
