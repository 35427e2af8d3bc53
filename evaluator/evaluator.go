package evaluator

import "github.com/l2rollup/settlement/types"

// Evaluator is a stateless value type exposing DecodeTransition,
// Evaluate and AccountCreations as methods, so the chain package can
// depend on the chain.TransitionEvaluator interface rather than this
// package's concrete functions. It carries no fields and no reference back to
// any caller: every call is a pure function of its arguments.
type Evaluator struct{}

// DecodeTransition delegates to the package-level function of the same
// name.
func (Evaluator) DecodeTransition(raw []byte) (types.Hash, []uint32, error) {
	return DecodeTransition(raw)
}

// Evaluate delegates to the package-level function of the same name.
func (Evaluator) Evaluate(raw []byte, slots []types.StorageSlot) ([]types.Hash, error) {
	return Evaluate(raw, slots)
}

// AccountCreations delegates to the package-level function of the same
// name.
func (Evaluator) AccountCreations(raw []byte) ([]types.AccountCreation, error) {
	return DecodeAccountCreations(raw)
}
