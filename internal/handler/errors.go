package handler

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v3"

	"github.com/nulln0ne/spacelp/internal/ledger"
	"github.com/nulln0ne/spacelp/internal/pool"
	"github.com/nulln0ne/spacelp/internal/router"
	"github.com/nulln0ne/spacelp/internal/service"
	"github.com/nulln0ne/spacelp/pkg/cpmm"
)

// ErrInvalidQueryParameters indicates that the request query string could not
// be parsed into the expected structure.
var ErrInvalidQueryParameters = fiber.NewError(fiber.StatusBadRequest, "invalid query parameters")

// ErrInvalidBody indicates that the request body is not valid JSON for the
// endpoint.
var ErrInvalidBody = fiber.NewError(fiber.StatusBadRequest, "invalid request body")

// ErrInvalidDirection is returned when src is neither "eth" nor "spc".
var ErrInvalidDirection = fiber.NewError(fiber.StatusBadRequest, `src must be "eth" or "spc"`)

// ErrEmptyReservesBadRequest maps empty-reserve pool state to a 400 error.
var ErrEmptyReservesBadRequest = fiber.NewError(fiber.StatusBadRequest, "pool has insufficient reserves")

// ErrEstimatorUnavailable is returned when no Ethereum node is configured.
var ErrEstimatorUnavailable = fiber.NewError(fiber.StatusServiceUnavailable, "on-chain estimator is not configured")

// ErrRequestCanceled is returned when the request context ends first.
var ErrRequestCanceled = fiber.NewError(fiber.StatusServiceUnavailable, "request canceled")

// ErrEstimationFailedInternal signals a generic server-side estimation error.
var ErrEstimationFailedInternal = fiber.NewError(fiber.StatusInternalServerError, "estimation failed")

// ErrOperationFailedInternal signals an unexpected pool operation failure.
var ErrOperationFailedInternal = fiber.NewError(fiber.StatusInternalServerError, "operation failed")

// NewAmountRequired returns a 400 Bad Request for a missing amount field.
func NewAmountRequired(field string) error {
	return fiber.NewError(fiber.StatusBadRequest, field+" is required")
}

// NewInvalidAmount returns a 400 Bad Request for an amount that is not a
// base-10 unsigned 256-bit integer.
func NewInvalidAmount(field string) error {
	return fiber.NewError(fiber.StatusBadRequest, "invalid "+field+" format")
}

// NewAmountNonPositive returns a 400 Bad Request for a zero amount.
func NewAmountNonPositive(field string) error {
	return fiber.NewError(fiber.StatusBadRequest, field+" must be greater than zero")
}

// NewAddressRequired returns a 400 Bad Request for a missing address field.
func NewAddressRequired(field string) error {
	return fiber.NewError(fiber.StatusBadRequest, field+" address is required")
}

// NewInvalidAddress returns a 400 Bad Request for an invalid address format.
func NewInvalidAddress(field string) error {
	return fiber.NewError(fiber.StatusBadRequest, "invalid "+field+" address")
}

// rejectedStatus classifies errors a pool, router or ledger call may refuse
// a request with. Zero means the error is unexpected.
func rejectedStatus(err error) int {
	switch {
	case errors.Is(err, ledger.ErrUnauthorized):
		return fiber.StatusForbidden
	case errors.Is(err, ledger.ErrFlagUnchanged),
		errors.Is(err, pool.ErrReentrancyLockEngaged):
		return fiber.StatusConflict
	case errors.Is(err, ledger.ErrZeroAddress):
		return fiber.StatusBadRequest
	case errors.Is(err, router.ErrSuboptimalETHIn),
		errors.Is(err, router.ErrMinimumAmountOutNotMet),
		errors.Is(err, pool.ErrInsufficientLiquidityMinted),
		errors.Is(err, pool.ErrInsufficientLiquidityBurned),
		errors.Is(err, pool.ErrETHTransferFailed),
		errors.Is(err, cpmm.ErrInsufficientLiquidity),
		errors.Is(err, cpmm.ErrInsufficientInputAmount),
		errors.Is(err, cpmm.ErrOverflow),
		errors.Is(err, ledger.ErrInsufficientBalance),
		errors.Is(err, ledger.ErrInsufficientAllowance),
		errors.Is(err, ledger.ErrOverflow):
		return fiber.StatusUnprocessableEntity
	}
	return 0
}

func (h *BaseHandler) handleServiceError(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return ErrRequestCanceled
	}
	if errors.Is(err, service.ErrEmptyReserves) {
		return ErrEmptyReservesBadRequest
	}
	if status := rejectedStatus(err); status != 0 {
		return fiber.NewError(status, err.Error())
	}
	h.logger.Error("pool operation failed", "err", err)
	return ErrOperationFailedInternal
}
