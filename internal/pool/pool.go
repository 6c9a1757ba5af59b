// Package pool implements a two-asset constant-product liquidity pool that
// pairs the chain's native asset (ETH) with a token (SPC).
//
// The pool is push-based: callers move assets (or shares) to the pool's
// address first and then call Deposit, Swap or Withdraw. The pool measures
// what arrived by comparing its actual holdings against the reserves it last
// recognized, so unsolicited transfers are folded into the next operation
// instead of being lost.
package pool

import (
	"errors"
	"log/slog"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/nulln0ne/spacelp/internal/journal"
	"github.com/nulln0ne/spacelp/internal/ledger"
	"github.com/nulln0ne/spacelp/internal/metrics"
	"github.com/nulln0ne/spacelp/pkg/cpmm"
)

// TokenLedger is the token side of the pair.
type TokenLedger interface {
	BalanceOf(owner common.Address) *uint256.Int
	Allowance(owner, spender common.Address) *uint256.Int
	Transfer(from, to common.Address, amount *uint256.Int) error
	TransferFrom(spender, from, to common.Address, amount *uint256.Int) error
}

// NativeLedger is the native asset side of the pair.
type NativeLedger interface {
	BalanceOf(addr common.Address) *uint256.Int
	Transfer(from, to common.Address, amount *uint256.Int) error
}

type Config struct {
	Address common.Address
	Token   TokenLedger
	Native  NativeLedger
	Journal *journal.Journal
	Logger  *slog.Logger
	Metrics *metrics.Metrics
}

func (c *Config) validate() error {
	if c.Address == (common.Address{}) {
		return errors.New("config: Address cannot be zero")
	}
	if c.Token == nil || c.Native == nil {
		return errors.New("config: Token and Native ledgers are required")
	}
	if c.Journal == nil {
		return errors.New("config: Journal cannot be nil")
	}
	if c.Logger == nil {
		return errors.New("config: Logger cannot be nil")
	}
	return nil
}

type Pool struct {
	addr    common.Address
	token   TokenLedger
	native  NativeLedger
	j       *journal.Journal
	logger  *slog.Logger
	metrics *metrics.Metrics

	// recognized holdings backing the shares
	reserveETH *uint256.Int
	reserveSPC *uint256.Int

	shares *ledger.Token
	locked bool
	events []Event
}

func New(cfg Config) (*Pool, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &Pool{
		addr:       cfg.Address,
		token:      cfg.Token,
		native:     cfg.Native,
		j:          cfg.Journal,
		logger:     cfg.Logger.With("component", "pool"),
		metrics:    cfg.Metrics,
		reserveETH: new(uint256.Int),
		reserveSPC: new(uint256.Int),
		shares: ledger.NewToken(cfg.Journal, ledger.TokenConfig{
			Name:     "SpaceLP",
			Symbol:   "SPLP",
			Decimals: 18,
		}),
	}, nil
}

func (p *Pool) Address() common.Address {
	return p.addr
}

// Reserves returns the recognized (ETH, SPC) reserves.
func (p *Pool) Reserves() (eth, spc *uint256.Int) {
	return p.reserveETH.Clone(), p.reserveSPC.Clone()
}

// K returns the product of the recognized reserves.
func (p *Pool) K() *big.Int {
	return cpmm.K(p.reserveETH, p.reserveSPC)
}

func (p *Pool) TotalShares() *uint256.Int {
	return p.shares.TotalSupply()
}

func (p *Pool) BalanceOf(owner common.Address) *uint256.Int {
	return p.shares.BalanceOf(owner)
}

func (p *Pool) Allowance(owner, spender common.Address) *uint256.Int {
	return p.shares.Allowance(owner, spender)
}

func (p *Pool) Approve(owner, spender common.Address, amount *uint256.Int) error {
	return p.shares.Approve(owner, spender, amount)
}

func (p *Pool) Transfer(from, to common.Address, amount *uint256.Int) error {
	return p.shares.Transfer(from, to, amount)
}

func (p *Pool) TransferFrom(spender, from, to common.Address, amount *uint256.Int) error {
	return p.shares.TransferFrom(spender, from, to, amount)
}

func (p *Pool) lock() error {
	if p.locked {
		return ErrReentrancyLockEngaged
	}
	p.locked = true
	return nil
}

func (p *Pool) unlock() {
	p.locked = false
}

// guarded runs fn under the reentrancy lock inside an atomic section. The
// lock is released on every exit path.
func (p *Pool) guarded(operation string, fn func() error) error {
	if err := p.lock(); err != nil {
		p.rejected(operation, err)
		return err
	}
	defer p.unlock()

	if err := p.j.Atomic(fn); err != nil {
		p.rejected(operation, err)
		return err
	}
	return nil
}

func (p *Pool) rejected(operation string, err error) {
	p.logger.Debug("operation rejected", "op", operation, "err", err)
	p.metrics.ObserveOperation(operation, metrics.StatusRejected)
}

// holdings returns what the pool actually owns of each asset.
func (p *Pool) holdings() (eth, spc *uint256.Int) {
	return p.native.BalanceOf(p.addr), p.token.BalanceOf(p.addr)
}

func (p *Pool) setReserves(eth, spc *uint256.Int) {
	prevETH, prevSPC := p.reserveETH, p.reserveSPC
	p.j.Record(func() {
		p.reserveETH, p.reserveSPC = prevETH, prevSPC
	})
	p.reserveETH, p.reserveSPC = eth.Clone(), spc.Clone()
}

// commit publishes logs and metrics once the surrounding operation is final.
func (p *Pool) commit(operation string, msg string, args ...any) {
	p.j.OnCommit(func() {
		p.logger.Info(msg, args...)
		p.metrics.ObserveOperation(operation, metrics.StatusOK)
		p.metrics.SetReserves(p.reserveETH, p.reserveSPC)
		p.metrics.SetShareSupply(p.shares.TotalSupply())
	})
}

// unrecognized returns balance - reserve.
func unrecognized(balance, reserve *uint256.Int) (*uint256.Int, error) {
	d, underflow := new(uint256.Int).SubOverflow(balance, reserve)
	if underflow {
		return nil, ErrBalanceBelowReserve
	}
	return d, nil
}
