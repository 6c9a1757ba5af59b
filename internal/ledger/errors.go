package ledger

import "errors"

var (
	ErrInsufficientBalance   = errors.New("transfer amount exceeds balance")
	ErrInsufficientAllowance = errors.New("insufficient allowance")
	ErrZeroAddress           = errors.New("zero address")
	ErrOverflow              = errors.New("amount overflows uint256")
	// ErrTransferRejected is returned when the receiver hook of a native
	// transfer destination refuses the funds.
	ErrTransferRejected = errors.New("transfer rejected by receiver")
	// ErrUnauthorized is returned when a non-owner changes token settings.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrFlagUnchanged is returned when a setting is set to its current value.
	ErrFlagUnchanged = errors.New("flag unchanged")
)
