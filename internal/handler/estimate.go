package handler

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v3"

	"github.com/nulln0ne/spacelp/internal/service"
)

type EstimateHandler struct {
	BaseHandler
	service *service.EstimateService
}

func NewEstimateHandler(logger *slog.Logger, svc *service.EstimateService) *EstimateHandler {
	return &EstimateHandler{
		BaseHandler: BaseHandler{
			logger: logger,
		},
		service: svc,
	}
}

type EstimateRequest struct {
	Pool     string `query:"pool" json:"pool"`
	Src      string `query:"src" json:"src"`
	AmountIn string `query:"src_amount" json:"amount_in"`
}

func (h *EstimateHandler) Handle() fiber.Handler {
	return func(c fiber.Ctx) error {
		var req EstimateRequest
		if err := c.Bind().Query(&req); err != nil {
			h.logger.Debug("failed to bind query parameters", "err", err)
			return ErrInvalidQueryParameters
		}

		pool, err := parseAddress("pool", req.Pool)
		if err != nil {
			return err
		}
		ethIn, err := parseDirection(req.Src)
		if err != nil {
			return err
		}
		amountIn, err := parseAmount("src_amount", req.AmountIn, false)
		if err != nil {
			return err
		}

		amountOut, err := h.service.Estimate(c.Context(), pool, ethIn, amountIn)
		if err != nil {
			return h.handleEstimateError(err)
		}

		h.logger.Debug("estimate computed", "pool", req.Pool, "src", req.Src, "in", amountIn.Dec(), "out", amountOut.Dec())
		return c.SendString(amountOut.Dec())
	}
}

func (h *EstimateHandler) handleEstimateError(err error) error {
	switch {
	case errors.Is(err, service.ErrEstimatorDisabled):
		return ErrEstimatorUnavailable
	case errors.Is(err, service.ErrEmptyReserves):
		return ErrEmptyReservesBadRequest
	case rejectedStatus(err) != 0:
		return fiber.NewError(rejectedStatus(err), err.Error())
	default:
		h.logger.Error("service estimate failed", "err", err)
		return ErrEstimationFailedInternal
	}
}
