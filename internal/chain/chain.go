// Package chain assembles the in-process execution environment: the native
// asset ledger, the SPC token, the pool and the router, all sharing one
// journal. Top-level calls are serialized and each runs atomically.
package chain

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"

	"github.com/nulln0ne/spacelp/internal/journal"
	"github.com/nulln0ne/spacelp/internal/ledger"
	"github.com/nulln0ne/spacelp/internal/metrics"
	"github.com/nulln0ne/spacelp/internal/pool"
	"github.com/nulln0ne/spacelp/internal/router"
)

// Deployment nonces of the deployer account.
const (
	tokenNonce uint64 = iota
	poolNonce
	routerNonce
)

var ErrNoDeployer = errors.New("genesis: deployer address is required")

// Genesis is the initial state of the chain.
type Genesis struct {
	// Deployer deploys the contracts and owns the token's tax switch.
	Deployer common.Address
	// Treasury receives the whole token supply and the transfer tax.
	Treasury common.Address
	// TokenSupply is minted to Treasury.
	TokenSupply *uint256.Int
	TaxBps      uint64
	// Balances are native allocations.
	Balances map[common.Address]*uint256.Int
}

// State is the set of contracts a call operates on.
type State struct {
	Native *ledger.Native
	Token  *ledger.Token
	Pool   *pool.Pool
	Router *router.Router
}

type Chain struct {
	mu     sync.Mutex
	j      *journal.Journal
	state  State
	logger *slog.Logger
}

// New builds the chain from genesis. m may be nil.
func New(g Genesis, logger *slog.Logger, m *metrics.Metrics) (*Chain, error) {
	if g.Deployer == (common.Address{}) {
		return nil, ErrNoDeployer
	}
	treasury := g.Treasury
	if treasury == (common.Address{}) {
		treasury = g.Deployer
	}

	j := journal.New()
	native := ledger.NewNative(j)
	for addr, amount := range g.Balances {
		if err := native.Mint(addr, amount); err != nil {
			return nil, fmt.Errorf("genesis balance %s: %w", addr.Hex(), err)
		}
	}

	token := ledger.NewToken(j, ledger.TokenConfig{
		Name:     "SpaceCoin",
		Symbol:   "SPC",
		Decimals: 18,
		Owner:    g.Deployer,
		Treasury: treasury,
		TaxBps:   g.TaxBps,
	})
	if g.TokenSupply != nil && !g.TokenSupply.IsZero() {
		if err := token.Mint(treasury, g.TokenSupply); err != nil {
			return nil, fmt.Errorf("genesis supply: %w", err)
		}
	}

	p, err := pool.New(pool.Config{
		Address: crypto.CreateAddress(g.Deployer, poolNonce),
		Token:   token,
		Native:  native,
		Journal: j,
		Logger:  logger,
		Metrics: m,
	})
	if err != nil {
		return nil, fmt.Errorf("deploy pool: %w", err)
	}

	r, err := router.New(router.Config{
		Address: crypto.CreateAddress(g.Deployer, routerNonce),
		Pair:    p,
		Token:   token,
		Native:  native,
		Journal: j,
		Logger:  logger,
		Metrics: m,
	})
	if err != nil {
		return nil, fmt.Errorf("deploy router: %w", err)
	}

	logger.Info("chain initialized",
		"token", TokenAddress(g.Deployer).Hex(),
		"pool", p.Address().Hex(),
		"router", r.Address().Hex(),
		"supply", token.TotalSupply().Dec())

	return &Chain{
		j:      j,
		state:  State{Native: native, Token: token, Pool: p, Router: r},
		logger: logger,
	}, nil
}

// TokenAddress returns the address the SPC token is deployed at.
func TokenAddress(deployer common.Address) common.Address {
	return crypto.CreateAddress(deployer, tokenNonce)
}

// Call runs fn as one top-level transaction. Calls are serialized and every
// change fn makes is undone if it returns an error.
func (c *Chain) Call(fn func(s *State) error) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.j.Atomic(func() error {
		return fn(&c.state)
	})
}

// View runs fn with read access to the state.
func (c *Chain) View(fn func(s *State)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fn(&c.state)
}
