// Package evaluator is the pure, state-free transition evaluator the
// rollup chain drives during fraud-proof adjudication. It never calls back into the chain package: every
// operation here is a function of its explicit arguments.
package evaluator

import "errors"

// Decode-time errors: the caller should treat these as a fraud signal
// rather than a hard failure, per the variant's place in the
// adjudicator's seven-step sequence.
var (
	ErrUnknownTransitionType = errors.New("evaluator: unknown transition type")
	ErrMalformedTransition   = errors.New("evaluator: malformed transition payload")
)

// Evaluation-time (semantic) errors.
var (
	ErrSlotNotEmpty             = errors.New("evaluator: account slot must be empty for a create variant")
	ErrSlotEmpty                = errors.New("evaluator: account slot must already be populated")
	ErrInsufficientBalance      = errors.New("evaluator: balance underflow")
	ErrNonceMismatch            = errors.New("evaluator: nonce does not match expected value")
	ErrWithdrawSignatureInvalid = errors.New("evaluator: withdraw signature does not match slot account")
	ErrTransferSignatureInvalid = errors.New("evaluator: transfer signature does not match sender account")
	ErrAccessListMismatch       = errors.New("evaluator: slots do not match the transition's access list")
)
