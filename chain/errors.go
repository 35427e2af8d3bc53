// Package chain implements the rollup block ledger: the optimistic
// commit path and the seven-step fraud-proof adjudicator that can
// unwind a bad commit after the fact.
package chain

import "errors"

var (
	ErrNotCommitter             = errors.New("chain: caller is not the current committer")
	ErrBlockNumberMismatch      = errors.New("chain: blockNumber does not equal the current block count")
	ErrNoFraudDetected          = errors.New("chain: no fraud detected")
	ErrTransitionsNotAdjacent   = errors.New("chain: transitions are not adjacent")
	ErrInclusionFailed          = errors.New("chain: transition inclusion proof failed")
	ErrAccessListMismatch       = errors.New("chain: supplied storage slots do not match the invalid transition's access list")
	ErrBlockPruned              = errors.New("chain: block is pruned")
	ErrPreTransitionUndecodable = errors.New("chain: pre-transition failed to decode")
)
