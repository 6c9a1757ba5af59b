package eth_test

import (
	"context"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nulln0ne/spacelp/internal/eth"
	"github.com/nulln0ne/spacelp/internal/eth/ethtest"
)

var pool = common.HexToAddress("0x0000000000000000000000000000000000000abc")

func TestPoolReader_Reserves(t *testing.T) {
	fake := ethtest.New(10)
	fake.Pools[pool] = ethtest.PoolState{
		ReserveETH:  big.NewInt(20_000),
		ReserveSPC:  big.NewInt(100_000),
		TotalSupply: big.NewInt(44_721),
	}
	r := eth.NewPoolReader(ethtest.NewClient(t, fake))

	ethRes, spcRes, err := r.Reserves(context.Background(), pool, big.NewInt(10))
	require.NoError(t, err)
	assert.Equal(t, uint64(20_000), ethRes.Uint64())
	assert.Equal(t, uint64(100_000), spcRes.Uint64())

	supply, err := r.TotalSupply(context.Background(), pool, nil)
	require.NoError(t, err)
	assert.Equal(t, uint64(44_721), supply.Uint64())
}

func TestPoolReader_NoContract(t *testing.T) {
	r := eth.NewPoolReader(ethtest.NewClient(t, ethtest.New(1)))

	_, _, err := r.Reserves(context.Background(), common.HexToAddress("0x01"), nil)
	require.Error(t, err)
}
