// Package ethtest provides an in-process fake of the eth JSON-RPC namespace
// serving a pool contract's read methods.
package ethtest

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/ethclient"
	gethrpc "github.com/ethereum/go-ethereum/rpc"

	"github.com/nulln0ne/spacelp/internal/eth"
)

// PoolState is what a fake pool contract reports.
type PoolState struct {
	ReserveETH  *big.Int
	ReserveSPC  *big.Int
	TotalSupply *big.Int
}

// Fake answers eth_blockNumber and eth_call for registered pools.
type Fake struct {
	Block uint64
	Pools map[common.Address]PoolState

	abi abi.ABI
}

func New(block uint64) *Fake {
	parsed, err := abi.JSON(strings.NewReader(eth.PoolABI))
	if err != nil {
		panic(err)
	}
	return &Fake{Block: block, Pools: make(map[common.Address]PoolState), abi: parsed}
}

func (f *Fake) BlockNumber(ctx context.Context) (hexutil.Uint64, error) {
	return hexutil.Uint64(f.Block), nil
}

func (f *Fake) Call(ctx context.Context, args map[string]any, _ gethrpc.BlockNumberOrHash) (hexutil.Bytes, error) {
	to, _ := args["to"].(string)
	state, ok := f.Pools[common.HexToAddress(to)]
	if !ok {
		// calls to accounts without code return nothing
		return hexutil.Bytes{}, nil
	}

	data, _ := args["input"].(string)
	if data == "" {
		data, _ = args["data"].(string)
	}
	input, err := hexutil.Decode(data)
	if err != nil || len(input) < 4 {
		return nil, errors.New("execution reverted")
	}
	method, err := f.abi.MethodById(input[:4])
	if err != nil {
		return nil, fmt.Errorf("execution reverted: %w", err)
	}

	var out []byte
	switch method.Name {
	case "getReserves":
		out, err = method.Outputs.Pack(orZero(state.ReserveETH), orZero(state.ReserveSPC))
	case "totalSupply":
		out, err = method.Outputs.Pack(orZero(state.TotalSupply))
	default:
		err = errors.New("execution reverted")
	}
	if err != nil {
		return nil, err
	}
	return hexutil.Bytes(out), nil
}

// NewClient serves f in-process and returns a client connected to it.
func NewClient(t testing.TB, f *Fake) *ethclient.Client {
	t.Helper()
	srv := gethrpc.NewServer()
	// registered under "eth" so methods map to eth_*
	if err := srv.RegisterName("eth", f); err != nil {
		t.Fatalf("register rpc service: %v", err)
	}
	c := ethclient.NewClient(gethrpc.DialInProc(srv))
	t.Cleanup(func() {
		c.Close()
		srv.Stop()
	})
	return c
}

func orZero(v *big.Int) *big.Int {
	if v == nil {
		return new(big.Int)
	}
	return v
}
