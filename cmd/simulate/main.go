// Command simulate seeds a pool on an in-process chain, runs a random
// sequence of router operations against it and reports how reserves, shares
// and k evolve.
package main

import (
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"math/rand/v2"
	"os"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"
	"github.com/spf13/pflag"

	"github.com/nulln0ne/spacelp/internal/chain"
	"github.com/nulln0ne/spacelp/internal/ledger"
	"github.com/nulln0ne/spacelp/internal/logging"
)

var ether = uint256.NewInt(1_000_000_000_000_000_000)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type options struct {
	seedETH  uint64
	seedSPC  uint64
	traders  int
	steps    int
	maxTrade uint64
	seed     uint64
	tax      bool
	logLevel string
}

func run() error {
	var opts options

	pflag.Uint64Var(&opts.seedETH, "seed-eth", 20_000, "initial ETH liquidity in whole units")
	pflag.Uint64Var(&opts.seedSPC, "seed-spc", 100_000, "initial SPC liquidity in whole units")
	pflag.IntVarP(&opts.traders, "traders", "t", 5, "number of trading accounts")
	pflag.IntVarP(&opts.steps, "steps", "n", 100, "number of random operations")
	pflag.Uint64Var(&opts.maxTrade, "max-trade", 100, "largest single trade in whole units")
	pflag.Uint64VarP(&opts.seed, "seed", "s", 1, "random seed")
	pflag.BoolVar(&opts.tax, "tax", false, "enable the SPC transfer tax")
	pflag.StringVar(&opts.logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	pflag.Parse()

	if opts.traders < 1 || opts.steps < 0 || opts.maxTrade == 0 {
		return errors.New("traders and max-trade must be positive, steps non-negative")
	}

	logger := logging.NewLogger(opts.logLevel)
	sim, err := newSimulation(opts, logger)
	if err != nil {
		return err
	}
	return sim.run()
}

type simulation struct {
	opts    options
	chain   *chain.Chain
	rng     *rand.Rand
	lp      common.Address
	traders []common.Address
	ok      map[string]int
	failed  map[string]int
}

func units(n uint64) *uint256.Int {
	return new(uint256.Int).Mul(uint256.NewInt(n), ether)
}

func newSimulation(opts options, logger *slog.Logger) (*simulation, error) {
	deployer := accountAt(0)
	traders := make([]common.Address, opts.traders)
	balances := map[common.Address]*uint256.Int{deployer: units(opts.seedETH * 2)}
	for i := range traders {
		traders[i] = accountAt(uint64(i + 1))
		balances[traders[i]] = units(opts.maxTrade * uint64(opts.steps+1))
	}

	supply := units(opts.seedSPC * 10)
	c, err := chain.New(chain.Genesis{
		Deployer:    deployer,
		TokenSupply: supply,
		TaxBps:      ledger.DefaultTaxBps,
		Balances:    balances,
	}, logger, nil)
	if err != nil {
		return nil, err
	}

	s := &simulation{
		opts:    opts,
		chain:   c,
		rng:     rand.New(rand.NewPCG(opts.seed, opts.seed^0x9e3779b97f4a7c15)),
		lp:      deployer,
		traders: traders,
		ok:      make(map[string]int),
		failed:  make(map[string]int),
	}

	err = c.Call(func(st *chain.State) error {
		unlimited := new(uint256.Int).SetAllOne()
		router := st.Router.Address()
		share := new(uint256.Int).Div(supply, uint256.NewInt(uint64(2*len(traders))))
		for _, tr := range traders {
			if err := st.Token.Transfer(deployer, tr, share); err != nil {
				return err
			}
			if err := st.Token.Approve(tr, router, unlimited); err != nil {
				return err
			}
			if err := st.Pool.Approve(tr, router, unlimited); err != nil {
				return err
			}
		}
		if err := st.Token.Approve(deployer, router, unlimited); err != nil {
			return err
		}
		if err := st.Pool.Approve(deployer, router, unlimited); err != nil {
			return err
		}
		if opts.tax {
			if err := st.Token.SetTaxTransfers(deployer, true); err != nil {
				return err
			}
		}
		_, err := st.Router.AddLiquidity(deployer, units(opts.seedSPC), units(opts.seedETH))
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("seed pool: %w", err)
	}
	return s, nil
}

// accountAt derives a deterministic account address.
func accountAt(i uint64) common.Address {
	return crypto.CreateAddress(common.HexToAddress("0x5ace"), i)
}

func (s *simulation) run() error {
	fmt.Printf("%-6s %-18s %28s %28s %28s\n", "step", "operation", "reserve eth", "reserve spc", "k")
	s.report(0, "seed")

	for step := 1; step <= s.opts.steps; step++ {
		op := s.step()
		if step%10 == 0 || step == s.opts.steps {
			s.report(step, op)
		}
	}

	fmt.Println()
	for _, op := range []string{"swap_eth_for_spc", "swap_spc_for_eth", "add_liquidity", "remove_liquidity"} {
		fmt.Printf("%-18s ok=%d failed=%d\n", op, s.ok[op], s.failed[op])
	}
	return nil
}

func (s *simulation) step() string {
	trader := s.traders[s.rng.IntN(len(s.traders))]
	amount := new(uint256.Int).Mul(uint256.NewInt(1+s.rng.Uint64N(s.opts.maxTrade)), ether)

	var op string
	err := s.chain.Call(func(st *chain.State) error {
		switch s.rng.IntN(4) {
		case 0:
			op = "swap_eth_for_spc"
			_, err := st.Router.SwapETHForSPC(trader, amount, new(uint256.Int))
			return err
		case 1:
			op = "swap_spc_for_eth"
			_, err := st.Router.SwapSPCForETH(trader, amount, new(uint256.Int))
			return err
		case 2:
			op = "add_liquidity"
			ethIn, err := st.Router.OptimalDepositETH(amount)
			if err != nil {
				return err
			}
			_, err = st.Router.AddLiquidity(trader, amount, ethIn)
			return err
		default:
			op = "remove_liquidity"
			shares := st.Pool.BalanceOf(trader)
			if shares.IsZero() {
				return errors.New("no shares")
			}
			half := new(uint256.Int).Rsh(shares, 1)
			if half.IsZero() {
				half = shares
			}
			_, _, err := st.Router.RemoveLiquidity(trader, half)
			return err
		}
	})
	if err != nil {
		s.failed[op]++
	} else {
		s.ok[op]++
	}
	return op
}

func (s *simulation) report(step int, op string) {
	var eth, spc *uint256.Int
	var k *big.Int
	s.chain.View(func(st *chain.State) {
		eth, spc = st.Pool.Reserves()
		k = st.Pool.K()
	})
	fmt.Printf("%-6d %-18s %28s %28s %28s\n", step, op, eth.Dec(), spc.Dec(), k.String())
}
