package handler

import (
	"context"
	"log/slog"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gofiber/fiber/v3"
	"github.com/holiman/uint256"

	"github.com/nulln0ne/spacelp/internal/pool"
	"github.com/nulln0ne/spacelp/internal/service"
)

// PoolHandler serves the pool, router and token operations of the
// in-process chain.
type PoolHandler struct {
	BaseHandler
	service *service.PoolService
}

func NewPoolHandler(logger *slog.Logger, svc *service.PoolService) *PoolHandler {
	return &PoolHandler{
		BaseHandler: BaseHandler{
			logger: logger,
		},
		service: svc,
	}
}

// Register mounts the pool endpoints on r.
func (h *PoolHandler) Register(r fiber.Router) {
	r.Get("/contracts", h.Contracts())
	r.Get("/reserves", h.Reserves())
	r.Get("/quote/optimal-deposit", h.OptimalDeposit())
	r.Get("/quote/amount-out", h.AmountOut())
	r.Get("/accounts/:address", h.Account())
	r.Get("/events", h.Events())

	r.Post("/tokens/approve", h.ApproveToken())
	r.Post("/tokens/transfer", h.TransferToken())
	r.Post("/shares/approve", h.ApproveShares())
	r.Post("/token/tax", h.SetTax())
	r.Post("/liquidity/add", h.AddLiquidity())
	r.Post("/liquidity/remove", h.RemoveLiquidity())
	r.Post("/swap/eth-for-spc", h.SwapETHForSPC())
	r.Post("/swap/spc-for-eth", h.SwapSPCForETH())
}

type ContractsResponse struct {
	Token  common.Address `json:"token"`
	Pool   common.Address `json:"pool"`
	Router common.Address `json:"router"`
}

func (h *PoolHandler) Contracts() fiber.Handler {
	return func(c fiber.Ctx) error {
		a := h.service.Addresses()
		return c.JSON(ContractsResponse{Token: a.Token, Pool: a.Pool, Router: a.Router})
	}
}

type ReservesResponse struct {
	ETH         *uint256.Int `json:"eth"`
	SPC         *uint256.Int `json:"spc"`
	TotalShares *uint256.Int `json:"total_shares"`
	K           string       `json:"k"`
}

func (h *PoolHandler) Reserves() fiber.Handler {
	return func(c fiber.Ctx) error {
		r, err := h.service.Reserves(c.Context())
		if err != nil {
			return h.handleServiceError(err)
		}
		return c.JSON(ReservesResponse{ETH: r.ETH, SPC: r.SPC, TotalShares: r.TotalShares, K: r.K.String()})
	}
}

type OptimalDepositRequest struct {
	SPCIn string `query:"spc_in"`
}

func (h *PoolHandler) OptimalDeposit() fiber.Handler {
	return func(c fiber.Ctx) error {
		var req OptimalDepositRequest
		if err := c.Bind().Query(&req); err != nil {
			return ErrInvalidQueryParameters
		}
		spcIn, err := parseAmount("spc_in", req.SPCIn, true)
		if err != nil {
			return err
		}
		ethIn, err := h.service.OptimalDepositETH(c.Context(), spcIn)
		if err != nil {
			return h.handleServiceError(err)
		}
		return c.JSON(fiber.Map{"eth_in": ethIn})
	}
}

type AmountOutRequest struct {
	Src      string `query:"src"`
	AmountIn string `query:"amount_in"`
}

func (h *PoolHandler) AmountOut() fiber.Handler {
	return func(c fiber.Ctx) error {
		var req AmountOutRequest
		if err := c.Bind().Query(&req); err != nil {
			return ErrInvalidQueryParameters
		}
		ethIn, err := parseDirection(req.Src)
		if err != nil {
			return err
		}
		amountIn, err := parseAmount("amount_in", req.AmountIn, false)
		if err != nil {
			return err
		}
		out, err := h.service.AmountOut(c.Context(), ethIn, amountIn)
		if err != nil {
			return h.handleServiceError(err)
		}
		return c.JSON(fiber.Map{"amount_out": out})
	}
}

type AccountResponse struct {
	Address        common.Address `json:"address"`
	ETH            *uint256.Int   `json:"eth"`
	SPC            *uint256.Int   `json:"spc"`
	Shares         *uint256.Int   `json:"shares"`
	TokenAllowance *uint256.Int   `json:"router_token_allowance"`
	ShareAllowance *uint256.Int   `json:"router_share_allowance"`
}

func (h *PoolHandler) Account() fiber.Handler {
	return func(c fiber.Ctx) error {
		addr, err := parseAddress("account", c.Params("address"))
		if err != nil {
			return err
		}
		a, err := h.service.Account(c.Context(), addr)
		if err != nil {
			return h.handleServiceError(err)
		}
		return c.JSON(AccountResponse{
			Address:        a.Address,
			ETH:            a.ETH,
			SPC:            a.SPC,
			Shares:         a.Shares,
			TokenAllowance: a.TokenAllowance,
			ShareAllowance: a.ShareAllowance,
		})
	}
}

type EventResponse struct {
	Kind      pool.EventKind `json:"kind"`
	Sender    common.Address `json:"sender"`
	To        common.Address `json:"to"`
	AmountETH *uint256.Int   `json:"amount_eth,omitempty"`
	AmountSPC *uint256.Int   `json:"amount_spc,omitempty"`
	Shares    *uint256.Int   `json:"shares,omitempty"`
	ETHIn     *bool          `json:"eth_in,omitempty"`
	AmountIn  *uint256.Int   `json:"amount_in,omitempty"`
	AmountOut *uint256.Int   `json:"amount_out,omitempty"`
}

func (h *PoolHandler) Events() fiber.Handler {
	return func(c fiber.Ctx) error {
		events, err := h.service.Events(c.Context())
		if err != nil {
			return h.handleServiceError(err)
		}
		out := make([]EventResponse, 0, len(events))
		for _, e := range events {
			r := EventResponse{
				Kind:      e.Kind,
				Sender:    e.Sender,
				To:        e.To,
				AmountETH: e.AmountETH,
				AmountSPC: e.AmountSPC,
				Shares:    e.Shares,
				AmountIn:  e.AmountIn,
				AmountOut: e.AmountOut,
			}
			if e.Kind == pool.KindSwap {
				ethIn := e.ETHIn
				r.ETHIn = &ethIn
			}
			out = append(out, r)
		}
		return c.JSON(out)
	}
}

type ApproveRequest struct {
	Owner   string `json:"owner"`
	Spender string `json:"spender"`
	Amount  string `json:"amount"`
}

func (h *PoolHandler) ApproveToken() fiber.Handler {
	return h.approve(h.service.ApproveToken)
}

func (h *PoolHandler) ApproveShares() fiber.Handler {
	return h.approve(h.service.ApproveShares)
}

type approveFunc = func(ctx context.Context, owner, spender common.Address, amount *uint256.Int) error

func (h *PoolHandler) approve(fn approveFunc) fiber.Handler {
	return func(c fiber.Ctx) error {
		var req ApproveRequest
		if err := h.bindBody(c, &req); err != nil {
			return err
		}
		owner, err := parseAddress("owner", req.Owner)
		if err != nil {
			return err
		}
		spender, err := parseAddress("spender", req.Spender)
		if err != nil {
			return err
		}
		amount, err := parseAmount("amount", req.Amount, true)
		if err != nil {
			return err
		}
		if err := fn(c.Context(), owner, spender, amount); err != nil {
			return h.handleServiceError(err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

type TransferRequest struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Amount string `json:"amount"`
}

func (h *PoolHandler) TransferToken() fiber.Handler {
	return func(c fiber.Ctx) error {
		var req TransferRequest
		if err := h.bindBody(c, &req); err != nil {
			return err
		}
		from, err := parseAddress("from", req.From)
		if err != nil {
			return err
		}
		to, err := parseAddress("to", req.To)
		if err != nil {
			return err
		}
		amount, err := parseAmount("amount", req.Amount, true)
		if err != nil {
			return err
		}
		if err := h.service.TransferToken(c.Context(), from, to, amount); err != nil {
			return h.handleServiceError(err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

type SetTaxRequest struct {
	Caller  string `json:"caller"`
	Enabled bool   `json:"enabled"`
}

func (h *PoolHandler) SetTax() fiber.Handler {
	return func(c fiber.Ctx) error {
		var req SetTaxRequest
		if err := h.bindBody(c, &req); err != nil {
			return err
		}
		caller, err := parseAddress("caller", req.Caller)
		if err != nil {
			return err
		}
		if err := h.service.SetTaxTransfers(c.Context(), caller, req.Enabled); err != nil {
			return h.handleServiceError(err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

type AddLiquidityRequest struct {
	Caller string `json:"caller"`
	SPCIn  string `json:"spc_in"`
	ETHIn  string `json:"eth_in"`
}

func (h *PoolHandler) AddLiquidity() fiber.Handler {
	return func(c fiber.Ctx) error {
		var req AddLiquidityRequest
		if err := h.bindBody(c, &req); err != nil {
			return err
		}
		caller, err := parseAddress("caller", req.Caller)
		if err != nil {
			return err
		}
		spcIn, err := parseAmount("spc_in", req.SPCIn, true)
		if err != nil {
			return err
		}
		ethIn, err := parseAmount("eth_in", req.ETHIn, true)
		if err != nil {
			return err
		}
		shares, err := h.service.AddLiquidity(c.Context(), caller, spcIn, ethIn)
		if err != nil {
			return h.handleServiceError(err)
		}
		return c.JSON(fiber.Map{"shares": shares})
	}
}

type RemoveLiquidityRequest struct {
	Caller string `json:"caller"`
	Shares string `json:"shares"`
}

func (h *PoolHandler) RemoveLiquidity() fiber.Handler {
	return func(c fiber.Ctx) error {
		var req RemoveLiquidityRequest
		if err := h.bindBody(c, &req); err != nil {
			return err
		}
		caller, err := parseAddress("caller", req.Caller)
		if err != nil {
			return err
		}
		shares, err := parseAmount("shares", req.Shares, false)
		if err != nil {
			return err
		}
		eth, spc, err := h.service.RemoveLiquidity(c.Context(), caller, shares)
		if err != nil {
			return h.handleServiceError(err)
		}
		return c.JSON(fiber.Map{"eth": eth, "spc": spc})
	}
}

type SwapRequest struct {
	Caller   string `json:"caller"`
	AmountIn string `json:"amount_in"`
	MinOut   string `json:"min_out"`
}

func (h *PoolHandler) SwapETHForSPC() fiber.Handler {
	return h.swap(h.service.SwapETHForSPC)
}

func (h *PoolHandler) SwapSPCForETH() fiber.Handler {
	return h.swap(h.service.SwapSPCForETH)
}

type swapFunc = func(ctx context.Context, caller common.Address, amountIn, minOut *uint256.Int) (*uint256.Int, error)

func (h *PoolHandler) swap(fn swapFunc) fiber.Handler {
	return func(c fiber.Ctx) error {
		var req SwapRequest
		if err := h.bindBody(c, &req); err != nil {
			return err
		}
		caller, err := parseAddress("caller", req.Caller)
		if err != nil {
			return err
		}
		amountIn, err := parseAmount("amount_in", req.AmountIn, true)
		if err != nil {
			return err
		}
		minOut := new(uint256.Int)
		if req.MinOut != "" {
			if minOut, err = parseAmount("min_out", req.MinOut, true); err != nil {
				return err
			}
		}
		out, err := fn(c.Context(), caller, amountIn, minOut)
		if err != nil {
			return h.handleServiceError(err)
		}
		return c.JSON(fiber.Map{"amount_out": out})
	}
}

func (h *PoolHandler) bindBody(c fiber.Ctx, out any) error {
	if err := c.Bind().Body(out); err != nil {
		h.logger.Debug("failed to bind request body", "err", err)
		return ErrInvalidBody
	}
	return nil
}
