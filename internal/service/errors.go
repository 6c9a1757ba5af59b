package service

import "errors"

var (
	ErrEmptyReserves     = errors.New("empty reserves")
	ErrEstimatorDisabled = errors.New("on-chain estimator is not configured")
)
