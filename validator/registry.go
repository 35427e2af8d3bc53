package validator

import (
	"sync"

	"github.com/l2rollup/settlement/crypto"
	"github.com/l2rollup/settlement/rlp"
	"github.com/l2rollup/settlement/types"
)

// ThresholdMode selects which of the two documented CheckSignatures
// behaviors a Registry runs.
type ThresholdMode int

const (
	// ModeCompat reproduces the original on-chain behavior bit-for-bit:
	// every validator index must carry a valid signature from that
	// exact validator, which makes the n<4-unanimity / >2n/3-supermajority
	// branch below unreachable — a signature set missing even one
	// entry fails regardless of how large the validator set is.
	ModeCompat ThresholdMode = iota

	// ModeFixed implements the threshold rule as actually described:
	// fewer than 4 validators require all of them to sign; 4 or more
	// require a strict supermajority (count*3 > n*2) of valid
	// signatures at their corresponding indices, and a missing or
	// invalid signature at one index no longer fails the whole check.
	ModeFixed
)

// CommitterSink receives committer-rotation updates. The rollup chain
// implements this so the registry can push a new committer the moment
// it changes, mirroring the source's "push update into the
// counterpart contract" pattern without either package owning the
// other.
type CommitterSink interface {
	SetCommitter(committer types.Address)
}

// Registry owns the active validator set and the round-robin
// committer cursor, and checks a block commitment's signatures
// against it.
type Registry struct {
	mu         sync.Mutex
	mode       ThresholdMode
	validators []types.Address
	cursor     int
	chain      CommitterSink
}

// NewRegistry returns an empty registry running in the given
// threshold mode. The mode is fixed for the registry's lifetime: a
// real deployment does not flip between buggy and fixed semantics
// mid-flight.
func NewRegistry(mode ThresholdMode) *Registry {
	return &Registry{mode: mode}
}

// BindRollupChain binds the rollup chain counterpart exactly once.
// Later calls are no-ops: the late one-shot binding breaks what would
// otherwise be a cyclic construction dependency between the registry
// and the chain (each needs a reference to the other before either can
// be fully constructed).
func (r *Registry) BindRollupChain(sink CommitterSink) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.chain == nil {
		r.chain = sink
	}
}

// SetValidators replaces the active validator set, resets the
// committer cursor to zero, and immediately pushes the new committer
// to the bound rollup chain.
func (r *Registry) SetValidators(list []types.Address) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(list) == 0 {
		return ErrEmptyValidatorSet
	}
	if r.chain == nil {
		return ErrRollupChainUnbound
	}

	r.validators = append([]types.Address(nil), list...)
	r.cursor = 0
	r.pushCommitter()
	return nil
}

// PickNextCommitter advances the round-robin cursor and pushes the
// new committer to the bound rollup chain. Called by the rollup chain
// at the end of a successful commitBlock.
func (r *Registry) PickNextCommitter() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.validators) == 0 {
		return
	}
	r.cursor = (r.cursor + 1) % len(r.validators)
	r.pushCommitter()
}

// CurrentCommitter returns the address currently allowed to call
// commitBlock.
func (r *Registry) CurrentCommitter() types.Address {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.validators) == 0 {
		return types.Address{}
	}
	return r.validators[r.cursor]
}

// pushCommitter must be called with r.mu held.
func (r *Registry) pushCommitter() {
	if r.chain == nil || len(r.validators) == 0 {
		return
	}
	r.chain.SetCommitter(r.validators[r.cursor])
}

// blockSignPayload is the canonical tuple hashed and signed by every
// co-validator over a block commitment.
type blockSignPayload struct {
	BlockNumber uint64
	Transitions [][]byte
}

// BlockDigest returns the Ethereum-signed-message digest every
// validator signs over (blockNumber, transitions).
func BlockDigest(blockNumber uint64, transitions [][]byte) types.Hash {
	enc, err := rlp.EncodeToBytes(blockSignPayload{BlockNumber: blockNumber, Transitions: transitions})
	if err != nil {
		panic("validator: block payload encode: " + err.Error())
	}
	return crypto.SignedMessageHash(crypto.Keccak256Hash(enc))
}

// CheckSignatures verifies signatures against the active validator
// set per the registry's ThresholdMode. signatures must have exactly
// one entry per validator (a caller supplying a sparse set under
// ModeFixed still submits a full-length slice; unused slots carry a
// zero signature, which simply never verifies against a real
// validator key).
func (r *Registry) CheckSignatures(blockNumber uint64, transitions [][]byte, signatures []types.Signature) error {
	r.mu.Lock()
	validators := append([]types.Address(nil), r.validators...)
	mode := r.mode
	r.mu.Unlock()

	if len(signatures) != len(validators) {
		return ErrSignatureCountMismatch
	}

	digest := BlockDigest(blockNumber, transitions)
	n := len(validators)

	digests := make([]types.Hash, n)
	for i := range digests {
		digests[i] = digest
	}
	results, err := crypto.BatchRecoverAddresses(digests, signatures)
	if err != nil {
		return ErrInvalidSignature
	}

	switch mode {
	case ModeCompat:
		for i, v := range validators {
			if results[i].Err != nil || results[i].Address != v {
				return ErrInvalidSignature
			}
		}
		return nil
	default: // ModeFixed
		count := 0
		for i, v := range validators {
			if results[i].Err == nil && results[i].Address == v {
				count++
			}
		}
		if n < 4 {
			if count < n {
				return ErrInvalidSignature
			}
			return nil
		}
		if count*3 <= n*2 {
			return ErrInvalidSignature
		}
		return nil
	}
}
