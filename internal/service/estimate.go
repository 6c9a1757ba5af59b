package service

import (
	"context"
	"fmt"
	"log/slog"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/holiman/uint256"

	"github.com/nulln0ne/spacelp/internal/eth"
	"github.com/nulln0ne/spacelp/pkg/cpmm"
)

// EstimateService prices swaps against a pool contract deployed on an
// Ethereum node by reading its reserves through eth_call.
type EstimateService struct {
	BaseService
	ethereumClient *ethclient.Client
	reader         *eth.PoolReader
}

// NewEstimateService constructs an EstimateService using the provided logger
// and Ethereum client. A nil client yields a service that reports
// ErrEstimatorDisabled.
func NewEstimateService(logger *slog.Logger, ec *ethclient.Client) *EstimateService {
	s := &EstimateService{
		BaseService:    BaseService{logger: logger},
		ethereumClient: ec,
	}
	if ec != nil {
		s.reader = eth.NewPoolReader(ec)
	}
	return s
}

// Estimate computes the output of swapping amountIn into the pool at the
// latest block. ethIn selects the ETH→SPC direction.
func (e *EstimateService) Estimate(ctx context.Context, pool common.Address, ethIn bool, amountIn *uint256.Int) (*uint256.Int, error) {
	if e.ethereumClient == nil {
		return nil, ErrEstimatorDisabled
	}
	e.logger.Debug("estimating swap", "pool", pool.Hex(), "eth_in", ethIn, "in", amountIn.Dec())

	bn, err := e.ethereumClient.BlockNumber(ctx)
	if err != nil {
		return nil, fmt.Errorf("block number: %w", err)
	}
	blockNum := new(big.Int).SetUint64(bn)

	reserveETH, reserveSPC, err := e.reader.Reserves(ctx, pool, blockNum)
	if err != nil {
		return nil, err
	}
	if reserveETH.IsZero() || reserveSPC.IsZero() {
		return nil, ErrEmptyReserves
	}

	reserveIn, reserveOut := reserveSPC, reserveETH
	if ethIn {
		reserveIn, reserveOut = reserveETH, reserveSPC
	}
	out, err := cpmm.GetAmountOut(amountIn, reserveIn, reserveOut)
	if err != nil {
		return nil, err
	}
	e.logger.Debug("amount out computed", "block", bn, "out", out.Dec())
	return out, nil
}
