package eth

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"

	ethereum "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// PoolABI covers the read-only methods of a deployed pool contract.
const PoolABI = `[
	{"type":"function","name":"getReserves","stateMutability":"view","inputs":[],
	 "outputs":[{"name":"","type":"uint256"},{"name":"","type":"uint256"}]},
	{"type":"function","name":"totalSupply","stateMutability":"view","inputs":[],
	 "outputs":[{"name":"","type":"uint256"}]}
]`

var ErrUnexpectedOutput = errors.New("unexpected contract output")

var poolABI = mustParseABI(PoolABI)

func mustParseABI(s string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(s))
	if err != nil {
		panic(err)
	}
	return parsed
}

// PoolReader reads pool state through eth_call.
type PoolReader struct {
	caller ethereum.ContractCaller
}

func NewPoolReader(caller ethereum.ContractCaller) *PoolReader {
	return &PoolReader{caller: caller}
}

// Reserves returns the pool's recognized (ETH, SPC) reserves at block, or at
// the latest block when block is nil.
func (r *PoolReader) Reserves(ctx context.Context, pool common.Address, block *big.Int) (eth, spc *uint256.Int, err error) {
	values, err := r.call(ctx, pool, block, "getReserves")
	if err != nil {
		return nil, nil, err
	}
	if len(values) != 2 {
		return nil, nil, fmt.Errorf("%w: getReserves returned %d values", ErrUnexpectedOutput, len(values))
	}
	if eth, err = toUint256(values[0]); err != nil {
		return nil, nil, err
	}
	if spc, err = toUint256(values[1]); err != nil {
		return nil, nil, err
	}
	return eth, spc, nil
}

// TotalSupply returns the pool's outstanding shares.
func (r *PoolReader) TotalSupply(ctx context.Context, pool common.Address, block *big.Int) (*uint256.Int, error) {
	values, err := r.call(ctx, pool, block, "totalSupply")
	if err != nil {
		return nil, err
	}
	if len(values) != 1 {
		return nil, fmt.Errorf("%w: totalSupply returned %d values", ErrUnexpectedOutput, len(values))
	}
	return toUint256(values[0])
}

func (r *PoolReader) call(ctx context.Context, pool common.Address, block *big.Int, method string) ([]any, error) {
	input, err := poolABI.Pack(method)
	if err != nil {
		return nil, fmt.Errorf("abi pack %s: %w", method, err)
	}
	out, err := r.caller.CallContract(ctx, ethereum.CallMsg{To: &pool, Data: input}, block)
	if err != nil {
		return nil, fmt.Errorf("eth_call %s (pool %s): %w", method, pool.Hex(), err)
	}
	values, err := poolABI.Unpack(method, out)
	if err != nil {
		return nil, fmt.Errorf("abi unpack %s: %w", method, err)
	}
	return values, nil
}

func toUint256(v any) (*uint256.Int, error) {
	b, ok := v.(*big.Int)
	if !ok {
		return nil, fmt.Errorf("%w: %T", ErrUnexpectedOutput, v)
	}
	u, overflow := uint256.FromBig(b)
	if overflow {
		return nil, fmt.Errorf("%w: %s exceeds 256 bits", ErrUnexpectedOutput, b)
	}
	return u, nil
}
