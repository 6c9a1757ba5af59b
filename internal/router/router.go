// Package router is the user-facing entry point to the pool. It moves the
// caller's assets into the pool and triggers the pool operation in one atomic
// step, and it adds the checks the pool leaves to its callers: deposit ratio
// and minimum swap output.
package router

import (
	"errors"
	"log/slog"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/nulln0ne/spacelp/internal/journal"
	"github.com/nulln0ne/spacelp/internal/metrics"
	"github.com/nulln0ne/spacelp/internal/pool"
	"github.com/nulln0ne/spacelp/pkg/cpmm"
)

// emptyPoolRatio is the SPC per ETH assumed before the pool has a price.
const emptyPoolRatio = 5

// Pair is the pool as seen by the router.
type Pair interface {
	Address() common.Address
	Reserves() (eth, spc *uint256.Int)
	TransferFrom(spender, from, to common.Address, amount *uint256.Int) error
	Deposit(caller, to common.Address) (*uint256.Int, error)
	Withdraw(caller, to common.Address) (eth, spc *uint256.Int, err error)
	Swap(caller, to common.Address, ethIn bool) (amountIn, amountOut *uint256.Int, err error)
}

// Token is the token ledger as seen by the router.
type Token interface {
	pool.TokenLedger
	// NetOf returns the amount a recipient is credited for a transfer.
	NetOf(amount *uint256.Int) *uint256.Int
}

type Config struct {
	Address common.Address
	Pair    Pair
	Token   Token
	Native  pool.NativeLedger
	Journal *journal.Journal
	Logger  *slog.Logger
	Metrics *metrics.Metrics
}

func (c *Config) validate() error {
	if c.Address == (common.Address{}) {
		return errors.New("config: Address cannot be zero")
	}
	if c.Pair == nil || c.Token == nil || c.Native == nil {
		return errors.New("config: Pair, Token and Native are required")
	}
	if c.Journal == nil {
		return errors.New("config: Journal cannot be nil")
	}
	if c.Logger == nil {
		return errors.New("config: Logger cannot be nil")
	}
	return nil
}

type Router struct {
	addr    common.Address
	pair    Pair
	token   Token
	native  pool.NativeLedger
	j       *journal.Journal
	logger  *slog.Logger
	metrics *metrics.Metrics
}

func New(cfg Config) (*Router, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &Router{
		addr:    cfg.Address,
		pair:    cfg.Pair,
		token:   cfg.Token,
		native:  cfg.Native,
		j:       cfg.Journal,
		logger:  cfg.Logger.With("component", "router"),
		metrics: cfg.Metrics,
	}, nil
}

func (r *Router) Address() common.Address {
	return r.addr
}

// OptimalDepositETH returns the ETH that matches spcIn at the current reserve
// ratio, or at 1 ETH per 5 SPC while the pool is empty. Any positive spcIn
// needs at least 1 wei. The quote prices the SPC the pool would receive after
// the token's transfer tax.
func (r *Router) OptimalDepositETH(spcIn *uint256.Int) (*uint256.Int, error) {
	return r.optimalETH(r.token.NetOf(spcIn))
}

// optimalETH prices spcReceived, the SPC that reaches the pool.
func (r *Router) optimalETH(spcReceived *uint256.Int) (*uint256.Int, error) {
	if spcReceived.IsZero() {
		return new(uint256.Int), nil
	}
	reserveETH, reserveSPC := r.pair.Reserves()

	var optimal *uint256.Int
	if reserveETH.IsZero() || reserveSPC.IsZero() {
		optimal = new(uint256.Int).Div(spcReceived, uint256.NewInt(emptyPoolRatio))
	} else {
		var err error
		if optimal, err = cpmm.Quote(spcReceived, reserveSPC, reserveETH); err != nil {
			return nil, err
		}
	}
	if optimal.IsZero() {
		optimal.SetOne()
	}
	return optimal, nil
}

// MaxSPCOut quotes the SPC paid for ethIn at the recognized reserves.
func (r *Router) MaxSPCOut(ethIn *uint256.Int) (*uint256.Int, error) {
	reserveETH, reserveSPC := r.pair.Reserves()
	return cpmm.GetAmountOut(ethIn, reserveETH, reserveSPC)
}

// MaxETHOut quotes the ETH paid for spcIn at the recognized reserves. The
// quote ignores the token's transfer tax.
func (r *Router) MaxETHOut(spcIn *uint256.Int) (*uint256.Int, error) {
	reserveETH, reserveSPC := r.pair.Reserves()
	return cpmm.GetAmountOut(spcIn, reserveSPC, reserveETH)
}

// do runs fn atomically and accounts for its outcome.
func (r *Router) do(operation string, fn func() error) error {
	err := r.j.Atomic(fn)
	if err != nil {
		r.logger.Debug("operation rejected", "op", operation, "err", err)
		r.metrics.ObserveOperation(operation, metrics.StatusRejected)
		return err
	}
	r.j.OnCommit(func() { r.metrics.ObserveOperation(operation, metrics.StatusOK) })
	return nil
}
