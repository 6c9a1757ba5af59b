package tests

import (
	"context"
	"math/big"
	"os"
	"strings"
	"testing"
	"time"

	ethereum "github.com/ethereum/go-ethereum"
	gethabi "github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/nulln0ne/spacelp/internal/eth"
	"github.com/nulln0ne/spacelp/pkg/cpmm"
)

const routerQuoteABI = `[
	{"type":"function","name":"getMaximumSpcAmountOut","stateMutability":"view",
	 "inputs":[{"name":"ethIn","type":"uint256"}],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"getMaximumEthAmountOut","stateMutability":"view",
	 "inputs":[{"name":"spcIn","type":"uint256"}],"outputs":[{"name":"","type":"uint256"}]}
]`

// TestQuotes_Onchain compares local swap math against a deployed router's
// quote methods, reading the pool reserves at the same block. Skips unless
// ETH_RPC_URL, POOL_ADDRESS and ROUTER_ADDRESS are set.
func TestQuotes_Onchain(t *testing.T) {
	rpcURL := os.Getenv("ETH_RPC_URL")
	poolHex := os.Getenv("POOL_ADDRESS")
	routerHex := os.Getenv("ROUTER_ADDRESS")
	if rpcURL == "" || poolHex == "" || routerHex == "" {
		t.Skip("ETH_RPC_URL, POOL_ADDRESS or ROUTER_ADDRESS not set; skipping on-chain comparison test")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	client, err := eth.Dial(ctx, rpcURL)
	if err != nil {
		t.Fatalf("dial eth rpc: %v", err)
	}
	defer client.Close()

	contractABI, err := gethabi.JSON(strings.NewReader(routerQuoteABI))
	if err != nil {
		t.Fatalf("parse abi: %v", err)
	}

	pool := common.HexToAddress(poolHex)
	router := common.HexToAddress(routerHex)

	bn, err := client.BlockNumber(ctx)
	if err != nil {
		t.Fatalf("block number: %v", err)
	}
	block := new(big.Int).SetUint64(bn)

	reserveETH, reserveSPC, err := eth.NewPoolReader(client).Reserves(ctx, pool, block)
	if err != nil {
		t.Fatalf("read reserves: %v", err)
	}
	if reserveETH.IsZero() || reserveSPC.IsZero() {
		t.Skip("pool has no liquidity")
	}

	cases := []struct {
		name   string
		method string
		in     *uint256.Int
	}{
		{"eth_in_small", "getMaximumSpcAmountOut", uint256.NewInt(1_000_000_000_000_000)},
		{"eth_in_one", "getMaximumSpcAmountOut", uint256.NewInt(1_000_000_000_000_000_000)},
		{"spc_in_one", "getMaximumEthAmountOut", uint256.NewInt(1_000_000_000_000_000_000)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			reserveIn, reserveOut := reserveSPC, reserveETH
			if tc.method == "getMaximumSpcAmountOut" {
				reserveIn, reserveOut = reserveETH, reserveSPC
			}
			local, err := cpmm.GetAmountOut(tc.in, reserveIn, reserveOut)
			if err != nil {
				t.Fatalf("local quote: %v", err)
			}

			input, err := contractABI.Pack(tc.method, tc.in.ToBig())
			if err != nil {
				t.Fatalf("abi pack: %v", err)
			}
			out, err := client.CallContract(ctx, ethereum.CallMsg{To: &router, Data: input}, block)
			if err != nil {
				t.Fatalf("eth_call %s: %v", tc.method, err)
			}
			values, err := contractABI.Unpack(tc.method, out)
			if err != nil {
				t.Fatalf("abi unpack: %v", err)
			}
			if len(values) != 1 {
				t.Fatalf("unexpected outputs: %d", len(values))
			}
			onchain, ok := values[0].(*big.Int)
			if !ok {
				t.Fatalf("unexpected output type: %T", values[0])
			}

			if local.ToBig().Cmp(onchain) != 0 {
				t.Fatalf("mismatch: local=%s onchain=%s (in=%s rIn=%s rOut=%s)", local.Dec(), onchain, tc.in.Dec(), reserveIn.Dec(), reserveOut.Dec())
			}
		})
	}
}
