// Package handler defines HTTP request handlers and related utilities.
package handler

import (
	"log/slog"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// BaseHandler provides common dependencies for HTTP handlers.
type BaseHandler struct {
	logger *slog.Logger
}

func parseAddress(field, s string) (common.Address, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return common.Address{}, NewAddressRequired(field)
	}
	if !common.IsHexAddress(s) {
		return common.Address{}, NewInvalidAddress(field)
	}
	return common.HexToAddress(s), nil
}

// parseAmount parses a base-10 amount. Zero is rejected unless allowZero.
func parseAmount(field, s string, allowZero bool) (*uint256.Int, error) {
	if s == "" {
		return nil, NewAmountRequired(field)
	}
	amount, err := uint256.FromDecimal(s)
	if err != nil {
		return nil, NewInvalidAmount(field)
	}
	if amount.IsZero() && !allowZero {
		return nil, NewAmountNonPositive(field)
	}
	return amount, nil
}

// parseDirection reports whether src names ETH as the input asset.
func parseDirection(src string) (ethIn bool, err error) {
	switch strings.ToLower(src) {
	case "eth":
		return true, nil
	case "spc":
		return false, nil
	}
	return false, ErrInvalidDirection
}
