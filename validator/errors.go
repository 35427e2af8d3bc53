// Package validator manages the active validator set, the round-robin
// committer cursor, and the M-of-N threshold signature check the
// rollup chain runs against every block commitment.
package validator

import "errors"

var (
	ErrEmptyValidatorSet      = errors.New("validator: validator list must be non-empty")
	ErrRollupChainUnbound     = errors.New("validator: rollup chain address not bound yet")
	ErrNotRollupChain         = errors.New("validator: caller is not the bound rollup chain")
	ErrSignatureCountMismatch = errors.New("validator: signature count must match validator count")
	ErrInvalidSignature       = errors.New("validator: signature threshold not met")
)
