package chain

import (
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nulln0ne/spacelp/internal/ledger"
)

var (
	deployer = common.HexToAddress("0x00000000000000000000000000000000000000d0")
	treasury = common.HexToAddress("0x00000000000000000000000000000000000000e0")
	alice    = common.HexToAddress("0x00000000000000000000000000000000000000aa")
)

func e18(n uint64) *uint256.Int {
	return new(uint256.Int).Mul(uint256.NewInt(n), uint256.NewInt(1_000_000_000_000_000_000))
}

func newChain(t *testing.T) *Chain {
	t.Helper()
	c, err := New(Genesis{
		Deployer:    deployer,
		Treasury:    treasury,
		TokenSupply: e18(500_000),
		TaxBps:      ledger.DefaultTaxBps,
		Balances: map[common.Address]*uint256.Int{
			treasury: e18(100_000),
			alice:    e18(1_000),
		},
	}, slog.New(slog.NewTextHandler(io.Discard, nil)), nil)
	require.NoError(t, err)
	return c
}

func TestNewRequiresDeployer(t *testing.T) {
	_, err := New(Genesis{}, slog.New(slog.NewTextHandler(io.Discard, nil)), nil)
	require.ErrorIs(t, err, ErrNoDeployer)
}

func TestGenesis(t *testing.T) {
	c := newChain(t)

	c.View(func(s *State) {
		assert.Equal(t, crypto.CreateAddress(deployer, 1), s.Pool.Address())
		assert.Equal(t, crypto.CreateAddress(deployer, 2), s.Router.Address())
		assert.True(t, s.Token.BalanceOf(treasury).Eq(e18(500_000)))
		assert.True(t, s.Token.TotalSupply().Eq(e18(500_000)))
		assert.True(t, s.Native.BalanceOf(alice).Eq(e18(1_000)))
		assert.False(t, s.Token.TaxTransfers())
	})
	assert.Equal(t, crypto.CreateAddress(deployer, 0), TokenAddress(deployer))
}

func TestCallRevertsOnError(t *testing.T) {
	c := newChain(t)
	boom := errors.New("boom")

	err := c.Call(func(s *State) error {
		require.NoError(t, s.Token.Transfer(treasury, alice, e18(10)))
		require.NoError(t, s.Native.Transfer(alice, treasury, e18(10)))
		return boom
	})
	require.ErrorIs(t, err, boom)

	c.View(func(s *State) {
		assert.True(t, s.Token.BalanceOf(alice).IsZero())
		assert.True(t, s.Native.BalanceOf(alice).Eq(e18(1_000)))
	})
}

func TestConcurrentCallsAreSerialized(t *testing.T) {
	c := newChain(t)
	require.NoError(t, c.Call(func(s *State) error {
		if err := s.Token.Approve(treasury, s.Router.Address(), new(uint256.Int).SetAllOne()); err != nil {
			return err
		}
		_, err := s.Router.AddLiquidity(treasury, e18(50_000), e18(10_000))
		return err
	}))

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = c.Call(func(s *State) error {
				_, err := s.Router.SwapETHForSPC(alice, e18(1), new(uint256.Int))
				return err
			})
		}()
	}
	wg.Wait()

	c.View(func(s *State) {
		eth, _ := s.Pool.Reserves()
		assert.True(t, eth.Eq(e18(10_032)))
		assert.True(t, s.Native.BalanceOf(alice).Eq(e18(1_000-32)))
		assert.True(t, s.Native.BalanceOf(s.Pool.Address()).Eq(eth))
	})
}
