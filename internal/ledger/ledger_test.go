package ledger

import (
	"errors"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nulln0ne/spacelp/internal/journal"
)

var (
	owner    = common.HexToAddress("0x00000000000000000000000000000000000000d0")
	treasury = common.HexToAddress("0x00000000000000000000000000000000000000e0")
	alice    = common.HexToAddress("0x00000000000000000000000000000000000000aa")
	bob      = common.HexToAddress("0x00000000000000000000000000000000000000bb")
	carol    = common.HexToAddress("0x00000000000000000000000000000000000000cc")
)

func u(n uint64) *uint256.Int { return uint256.NewInt(n) }

func newToken(t *testing.T) (*journal.Journal, *Token) {
	t.Helper()
	j := journal.New()
	tok := NewToken(j, TokenConfig{
		Name:     "SpaceCoin",
		Symbol:   "SPC",
		Decimals: 18,
		Owner:    owner,
		Treasury: treasury,
		TaxBps:   DefaultTaxBps,
	})
	require.NoError(t, tok.Mint(treasury, u(1_000)))
	require.NoError(t, tok.Transfer(treasury, bob, u(100)))
	return j, tok
}

func TestTokenTransfer(t *testing.T) {
	_, tok := newToken(t)

	require.NoError(t, tok.Transfer(bob, alice, u(100)))
	assert.True(t, tok.BalanceOf(bob).IsZero())
	assert.Equal(t, uint64(100), tok.BalanceOf(alice).Uint64())

	err := tok.Transfer(bob, alice, u(1))
	require.ErrorIs(t, err, ErrInsufficientBalance)
	assert.Equal(t, uint64(1_000), tok.TotalSupply().Uint64())
}

func TestTokenTransferFromConsumesAllowance(t *testing.T) {
	_, tok := newToken(t)

	require.NoError(t, tok.Approve(bob, alice, u(60)))
	require.NoError(t, tok.TransferFrom(alice, bob, carol, u(40)))
	assert.Equal(t, uint64(20), tok.Allowance(bob, alice).Uint64())
	assert.Equal(t, uint64(40), tok.BalanceOf(carol).Uint64())

	err := tok.TransferFrom(alice, bob, carol, u(21))
	require.ErrorIs(t, err, ErrInsufficientAllowance)
	assert.Equal(t, uint64(20), tok.Allowance(bob, alice).Uint64())
	assert.Equal(t, uint64(60), tok.BalanceOf(bob).Uint64())
}

func TestTokenMaxAllowanceIsNotDecremented(t *testing.T) {
	_, tok := newToken(t)
	max := new(uint256.Int).SetAllOne()

	require.NoError(t, tok.Approve(bob, alice, max))
	require.NoError(t, tok.TransferFrom(alice, bob, carol, u(10)))
	assert.True(t, tok.Allowance(bob, alice).Eq(max))
}

func TestTokenFailedTransferFromRestoresAllowance(t *testing.T) {
	_, tok := newToken(t)

	require.NoError(t, tok.Approve(bob, alice, u(500)))
	err := tok.TransferFrom(alice, bob, carol, u(200))
	require.ErrorIs(t, err, ErrInsufficientBalance)
	assert.Equal(t, uint64(500), tok.Allowance(bob, alice).Uint64())
}

func TestTokenTax(t *testing.T) {
	testCases := []struct {
		name         string
		amount       uint64
		viaAllowance bool
		received     uint64
		tax          uint64
	}{
		{name: "plain transfer", amount: 100, received: 98, tax: 2},
		{name: "approved transfer", amount: 100, viaAllowance: true, received: 98, tax: 2},
		{name: "tax rounds down", amount: 51, received: 50, tax: 1},
		{name: "tax below one unit", amount: 49, received: 49, tax: 0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, tok := newToken(t)
			require.NoError(t, tok.SetTaxTransfers(owner, true))
			treasuryBefore := tok.BalanceOf(treasury)

			if tc.viaAllowance {
				require.NoError(t, tok.Approve(bob, alice, u(tc.amount)))
				require.NoError(t, tok.TransferFrom(alice, bob, carol, u(tc.amount)))
			} else {
				require.NoError(t, tok.Transfer(bob, carol, u(tc.amount)))
			}

			assert.Equal(t, 100-tc.amount, tok.BalanceOf(bob).Uint64())
			assert.Equal(t, tc.received, tok.BalanceOf(carol).Uint64())
			treasuryDelta := new(uint256.Int).Sub(tok.BalanceOf(treasury), treasuryBefore)
			assert.Equal(t, tc.tax, treasuryDelta.Uint64())
		})
	}
}

func TestTokenNetOf(t *testing.T) {
	_, tok := newToken(t)
	assert.Equal(t, uint64(100), tok.NetOf(u(100)).Uint64())

	require.NoError(t, tok.SetTaxTransfers(owner, true))
	assert.Equal(t, uint64(98), tok.NetOf(u(100)).Uint64())
	assert.Equal(t, uint64(50), tok.NetOf(u(51)).Uint64())
	assert.Equal(t, uint64(1), tok.NetOf(u(1)).Uint64())
}

func TestTokenTaxEnforcesGrossAllowance(t *testing.T) {
	_, tok := newToken(t)
	require.NoError(t, tok.SetTaxTransfers(owner, true))
	require.NoError(t, tok.Approve(bob, alice, u(100)))

	err := tok.TransferFrom(alice, bob, carol, u(101))
	require.ErrorIs(t, err, ErrInsufficientAllowance)
}

func TestSetTaxTransfers(t *testing.T) {
	_, tok := newToken(t)
	assert.False(t, tok.TaxTransfers())

	require.ErrorIs(t, tok.SetTaxTransfers(bob, true), ErrUnauthorized)
	require.ErrorIs(t, tok.SetTaxTransfers(owner, false), ErrFlagUnchanged)

	require.NoError(t, tok.SetTaxTransfers(owner, true))
	assert.True(t, tok.TaxTransfers())
	require.NoError(t, tok.SetTaxTransfers(owner, false))
	assert.False(t, tok.TaxTransfers())
}

func TestTokenMintBurn(t *testing.T) {
	j, tok := newToken(t)

	require.ErrorIs(t, tok.Mint(common.Address{}, u(1)), ErrZeroAddress)

	err := j.Atomic(func() error {
		if err := tok.Mint(alice, u(5)); err != nil {
			return err
		}
		return tok.Burn(alice, u(6))
	})
	require.ErrorIs(t, err, ErrInsufficientBalance)
	assert.Equal(t, uint64(1_000), tok.TotalSupply().Uint64())
	assert.True(t, tok.BalanceOf(alice).IsZero())

	require.NoError(t, tok.Burn(bob, u(100)))
	assert.Equal(t, uint64(900), tok.TotalSupply().Uint64())

	var sum uint256.Int
	for _, v := range tok.Holders() {
		sum.Add(&sum, v)
	}
	assert.True(t, sum.Eq(tok.TotalSupply()))
}

func TestNativeTransferRunsReceiver(t *testing.T) {
	j := journal.New()
	n := NewNative(j)
	require.NoError(t, n.Mint(alice, u(10)))

	var got *uint256.Int
	n.SetReceiver(bob, ReceiverFunc(func(from common.Address, amount *uint256.Int) error {
		assert.Equal(t, alice, from)
		got = amount
		return nil
	}))

	require.NoError(t, n.Transfer(alice, bob, u(4)))
	assert.Equal(t, uint64(4), got.Uint64())
	assert.Equal(t, uint64(6), n.BalanceOf(alice).Uint64())
	assert.Equal(t, uint64(4), n.BalanceOf(bob).Uint64())
}

func TestNativeRejectedTransferIsReverted(t *testing.T) {
	j := journal.New()
	n := NewNative(j)
	require.NoError(t, n.Mint(alice, u(10)))

	errNoThanks := errors.New("no thanks")
	n.SetReceiver(bob, ReceiverFunc(func(common.Address, *uint256.Int) error {
		return errNoThanks
	}))

	err := n.Transfer(alice, bob, u(4))
	require.ErrorIs(t, err, ErrTransferRejected)
	require.ErrorIs(t, err, errNoThanks)
	assert.Equal(t, uint64(10), n.BalanceOf(alice).Uint64())
	assert.True(t, n.BalanceOf(bob).IsZero())

	// force feeding bypasses the hook
	require.NoError(t, n.ForceFeed(alice, bob, u(4)))
	assert.Equal(t, uint64(4), n.BalanceOf(bob).Uint64())
}

func TestNativeInsufficientBalance(t *testing.T) {
	n := NewNative(journal.New())
	require.ErrorIs(t, n.Transfer(alice, bob, u(1)), ErrInsufficientBalance)
}
