package merkle

import (
	"errors"
	"sync"

	"github.com/l2rollup/settlement/crypto"
	"github.com/l2rollup/settlement/types"
)

// Errors returned by StateTree operations.
var (
	ErrWrongProofLength = errors.New("merkle: sibling count does not match tree height")
	ErrInclusionFailed  = errors.New("merkle: recomputed root does not match claimed root")
	ErrPathNotProved    = errors.New("merkle: updateLeaf called on a slot with no proved ancestor path")
)

// StateTree is a stateful, fixed-height sparse Merkle tree addressed
// by 32-bit slot index. It is reset to a claimed root at the start of
// every fraud-proof session, fed one or more VerifyAndStore witnesses
// establishing the sibling path to specific slots, and then mutated
// via UpdateLeaf as the adjudicator applies a transition's outputs.
//
// Slot positions are tracked as generalized indices (root = 1, left
// child of gi is 2*gi, right child is 2*gi+1), the same addressing
// crypto's multi-proof helpers use, so a slot's ancestors naturally
// coincide with any other slot that shares a path prefix.
type StateTree struct {
	mu     sync.Mutex
	root   types.Hash
	height int
	// nodes caches every node hash (leaf or internal) observed via a
	// proved VerifyAndStore path, keyed by generalized index. It is
	// cleared on every Reset so no witness data survives across
	// independent proof sessions.
	nodes map[uint64]types.Hash
}

// Reset discards all cached sibling paths and sets the engine to a
// claimed root and height. Must be called at the start of every
// fraud-proof before any VerifyAndStore/UpdateLeaf call.
func (t *StateTree) Reset(root types.Hash, height int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.root = root
	t.height = height
	t.nodes = make(map[uint64]types.Hash)
}

// Root returns the engine's current root.
func (t *StateTree) Root() types.Hash {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.root
}

// VerifyAndStore checks that leafBytes, at slotIndex, hashes up
// through siblings to the engine's current root, and caches every
// sibling and intermediate node hash touched along the way so a later
// UpdateLeaf at slotIndex (or at a slot sharing an ancestor with it)
// can recompute without the caller re-supplying the same siblings.
func (t *StateTree) VerifyAndStore(leafBytes []byte, slotIndex uint64, siblings []types.Hash) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if len(siblings) != t.height {
		return ErrWrongProofLength
	}

	gi := crypto.GeneralizedIndex(uint(t.height), slotIndex)
	current := leafHash(leafBytes)
	for depth, sib := range siblings {
		_ = depth
		t.nodes[gi] = current
		t.nodes[crypto.Sibling(gi)] = sib
		if crypto.IsLeft(gi) {
			current = branchHash(current, sib)
		} else {
			current = branchHash(sib, current)
		}
		gi = crypto.Parent(gi)
	}
	if current != t.root {
		return ErrInclusionFailed
	}
	t.nodes[gi] = current
	return nil
}

// UpdateLeaf replaces the leaf hash at slotIndex and recomputes the
// root up the path cached by a prior VerifyAndStore. Returns
// ErrPathNotProved if any ancestor sibling along the way was never
// established.
func (t *StateTree) UpdateLeaf(newLeafHash types.Hash, slotIndex uint64) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	gi := crypto.GeneralizedIndex(uint(t.height), slotIndex)
	current := newLeafHash
	t.nodes[gi] = current
	for depth := 0; depth < t.height; depth++ {
		sib, ok := t.nodes[crypto.Sibling(gi)]
		if !ok {
			return ErrPathNotProved
		}
		if crypto.IsLeft(gi) {
			current = branchHash(current, sib)
		} else {
			current = branchHash(sib, current)
		}
		gi = crypto.Parent(gi)
		t.nodes[gi] = current
	}
	t.root = current
	return nil
}
