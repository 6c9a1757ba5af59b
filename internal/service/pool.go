package service

import (
	"context"
	"log/slog"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/nulln0ne/spacelp/internal/chain"
	"github.com/nulln0ne/spacelp/internal/pool"
)

// Reserves is a snapshot of the pool's accounting.
type Reserves struct {
	ETH         *uint256.Int
	SPC         *uint256.Int
	TotalShares *uint256.Int
	K           *big.Int
}

// Account is an address's holdings and its allowances to the router.
type Account struct {
	Address        common.Address
	ETH            *uint256.Int
	SPC            *uint256.Int
	Shares         *uint256.Int
	TokenAllowance *uint256.Int
	ShareAllowance *uint256.Int
}

// Addresses are the deployed contract addresses.
type Addresses struct {
	Token  common.Address
	Pool   common.Address
	Router common.Address
}

// PoolService runs pool, router and token operations on the in-process chain.
// Every mutating call is one atomic transaction.
type PoolService struct {
	BaseService
	chain *chain.Chain
	token common.Address
}

func NewPoolService(logger *slog.Logger, c *chain.Chain, tokenAddr common.Address) *PoolService {
	return &PoolService{
		BaseService: BaseService{logger: logger},
		chain:       c,
		token:       tokenAddr,
	}
}

func (s *PoolService) Addresses() Addresses {
	var out Addresses
	s.chain.View(func(st *chain.State) {
		out = Addresses{Token: s.token, Pool: st.Pool.Address(), Router: st.Router.Address()}
	})
	return out
}

func (s *PoolService) Reserves(ctx context.Context) (*Reserves, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var out Reserves
	s.chain.View(func(st *chain.State) {
		out.ETH, out.SPC = st.Pool.Reserves()
		out.TotalShares = st.Pool.TotalShares()
		out.K = st.Pool.K()
	})
	return &out, nil
}

func (s *PoolService) Account(ctx context.Context, addr common.Address) (*Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := Account{Address: addr}
	s.chain.View(func(st *chain.State) {
		router := st.Router.Address()
		out.ETH = st.Native.BalanceOf(addr)
		out.SPC = st.Token.BalanceOf(addr)
		out.Shares = st.Pool.BalanceOf(addr)
		out.TokenAllowance = st.Token.Allowance(addr, router)
		out.ShareAllowance = st.Pool.Allowance(addr, router)
	})
	return &out, nil
}

func (s *PoolService) Events(ctx context.Context) ([]pool.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var out []pool.Event
	s.chain.View(func(st *chain.State) {
		out = st.Pool.Events()
	})
	return out, nil
}

func (s *PoolService) OptimalDepositETH(ctx context.Context, spcIn *uint256.Int) (*uint256.Int, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var (
		out *uint256.Int
		err error
	)
	s.chain.View(func(st *chain.State) {
		out, err = st.Router.OptimalDepositETH(spcIn)
	})
	return out, err
}

// AmountOut quotes a swap at the recognized reserves.
func (s *PoolService) AmountOut(ctx context.Context, ethIn bool, amountIn *uint256.Int) (*uint256.Int, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var (
		out *uint256.Int
		err error
	)
	s.chain.View(func(st *chain.State) {
		if ethIn {
			out, err = st.Router.MaxSPCOut(amountIn)
		} else {
			out, err = st.Router.MaxETHOut(amountIn)
		}
	})
	return out, err
}

func (s *PoolService) ApproveToken(ctx context.Context, owner, spender common.Address, amount *uint256.Int) error {
	return s.call(ctx, func(st *chain.State) error {
		return st.Token.Approve(owner, spender, amount)
	})
}

func (s *PoolService) TransferToken(ctx context.Context, from, to common.Address, amount *uint256.Int) error {
	return s.call(ctx, func(st *chain.State) error {
		return st.Token.Transfer(from, to, amount)
	})
}

func (s *PoolService) TransferETH(ctx context.Context, from, to common.Address, amount *uint256.Int) error {
	return s.call(ctx, func(st *chain.State) error {
		return st.Native.Transfer(from, to, amount)
	})
}

func (s *PoolService) ApproveShares(ctx context.Context, owner, spender common.Address, amount *uint256.Int) error {
	return s.call(ctx, func(st *chain.State) error {
		return st.Pool.Approve(owner, spender, amount)
	})
}

func (s *PoolService) SetTaxTransfers(ctx context.Context, caller common.Address, enabled bool) error {
	return s.call(ctx, func(st *chain.State) error {
		return st.Token.SetTaxTransfers(caller, enabled)
	})
}

func (s *PoolService) AddLiquidity(ctx context.Context, caller common.Address, spcIn, ethIn *uint256.Int) (*uint256.Int, error) {
	var shares *uint256.Int
	err := s.call(ctx, func(st *chain.State) (err error) {
		shares, err = st.Router.AddLiquidity(caller, spcIn, ethIn)
		return err
	})
	return shares, err
}

func (s *PoolService) RemoveLiquidity(ctx context.Context, caller common.Address, shares *uint256.Int) (eth, spc *uint256.Int, err error) {
	err = s.call(ctx, func(st *chain.State) (err error) {
		eth, spc, err = st.Router.RemoveLiquidity(caller, shares)
		return err
	})
	return eth, spc, err
}

func (s *PoolService) SwapETHForSPC(ctx context.Context, caller common.Address, ethIn, minOut *uint256.Int) (*uint256.Int, error) {
	var out *uint256.Int
	err := s.call(ctx, func(st *chain.State) (err error) {
		out, err = st.Router.SwapETHForSPC(caller, ethIn, minOut)
		return err
	})
	return out, err
}

func (s *PoolService) SwapSPCForETH(ctx context.Context, caller common.Address, spcIn, minOut *uint256.Int) (*uint256.Int, error) {
	var out *uint256.Int
	err := s.call(ctx, func(st *chain.State) (err error) {
		out, err = st.Router.SwapSPCForETH(caller, spcIn, minOut)
		return err
	})
	return out, err
}

// Deposit sends ethIn and spcIn straight to the pool and deposits them,
// bypassing the router's ratio check.
func (s *PoolService) Deposit(ctx context.Context, caller common.Address, ethIn, spcIn *uint256.Int) (*uint256.Int, error) {
	var shares *uint256.Int
	err := s.call(ctx, func(st *chain.State) (err error) {
		poolAddr := st.Pool.Address()
		if err = st.Native.Transfer(caller, poolAddr, ethIn); err != nil {
			return err
		}
		if err = st.Token.Transfer(caller, poolAddr, spcIn); err != nil {
			return err
		}
		shares, err = st.Pool.Deposit(caller, caller)
		return err
	})
	return shares, err
}

// Withdraw sends shares straight to the pool and withdraws them.
func (s *PoolService) Withdraw(ctx context.Context, caller common.Address, shares *uint256.Int) (eth, spc *uint256.Int, err error) {
	err = s.call(ctx, func(st *chain.State) (err error) {
		if err = st.Pool.Transfer(caller, st.Pool.Address(), shares); err != nil {
			return err
		}
		eth, spc, err = st.Pool.Withdraw(caller, caller)
		return err
	})
	return eth, spc, err
}

// Swap sends amountIn straight to the pool and swaps it without a minimum.
func (s *PoolService) Swap(ctx context.Context, caller common.Address, ethIn bool, amountIn *uint256.Int) (*uint256.Int, error) {
	var out *uint256.Int
	err := s.call(ctx, func(st *chain.State) (err error) {
		poolAddr := st.Pool.Address()
		if ethIn {
			err = st.Native.Transfer(caller, poolAddr, amountIn)
		} else {
			err = st.Token.Transfer(caller, poolAddr, amountIn)
		}
		if err != nil {
			return err
		}
		_, out, err = st.Pool.Swap(caller, caller, ethIn)
		return err
	})
	return out, err
}

func (s *PoolService) call(ctx context.Context, fn func(st *chain.State) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.chain.Call(fn); err != nil {
		s.logger.Debug("transaction reverted", "err", err)
		return err
	}
	return nil
}
