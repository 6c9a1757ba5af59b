package config

import "errors"

var (
	// ErrMissingDeployer indicates that the required DEPLOYER_ADDRESS
	// variable is not set in the environment.
	ErrMissingDeployer = errors.New("missing DEPLOYER_ADDRESS environment variable")
	ErrInvalidAddress  = errors.New("invalid address")
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrInvalidTaxBps   = errors.New("TAX_BPS must be an integer between 0 and 10000")
	ErrInvalidBalances = errors.New("GENESIS_BALANCES must be a comma-separated list of address=amount")
)
