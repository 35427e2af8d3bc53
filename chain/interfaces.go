package chain

import "github.com/l2rollup/settlement/types"

// TransitionEvaluator is the narrow capability the chain needs from the
// evaluator package: decode a raw transition's declared state root and
// access list, evaluate it against witnessed storage slots, and list
// the account slots it creates. Satisfied by the evaluator package's
// Evaluator value type, which delegates to that package's functions.
type TransitionEvaluator interface {
	DecodeTransition(raw []byte) (stateRoot types.Hash, accessList []uint32, err error)
	Evaluate(raw []byte, slots []types.StorageSlot) (outputs []types.Hash, err error)
	AccountCreations(raw []byte) ([]types.AccountCreation, error)
}

// TokenRegistry is the narrow read surface chain needs from the token
// package, mirroring a standalone token contract's view.
type TokenRegistry interface {
	IsRegistered(addr types.Address) bool
	IndexOf(addr types.Address) (uint32, bool)
}

// ValidatorRegistry is the narrow capability chain needs from the
// validator package.
type ValidatorRegistry interface {
	CurrentCommitter() types.Address
	CheckSignatures(blockNumber uint64, transitions [][]byte, signatures []types.Signature) error
	PickNextCommitter()
}

// StateTree is the narrow capability chain needs from the merkle
// package during fraud-proof adjudication.
type StateTree interface {
	Reset(root types.Hash, height int)
	Root() types.Hash
	VerifyAndStore(leafBytes []byte, slotIndex uint64, siblings []types.Hash) error
	UpdateLeaf(newLeafHash types.Hash, slotIndex uint64) error
}

// TransitionsTree is the narrow capability chain needs from the merkle
// package at commit time and during sequentiality checks.
type TransitionsTree interface {
	Root(leaves [][]byte) types.Hash
	Verify(root types.Hash, leaf []byte, index uint64, siblings []types.Hash) bool
}
