// Package merkle implements the two Merkle services the rollup chain
// depends on: a stateless transitions tree used to commit and later
// prove inclusion of a block's transitions, and a stateful, fixed
// height-32 state tree used during fraud-proof adjudication to walk a
// claimed pre-state to a claimed post-state one transition at a time.
package merkle

import "github.com/l2rollup/settlement/crypto"
import "github.com/l2rollup/settlement/types"

const (
	leafPrefix   = 0x00
	branchPrefix = 0x01
)

// EmptyLeafHash is the sentinel used to pad a leaf list to the next
// power of two when building a transitions tree. Every off-chain
// operator computing a transitions root over the same leaf list must
// pad with this exact value, or their root will never match this
// engine's.
var EmptyLeafHash = leafHash(nil)

// LeafHash domain-separates leaf hashes from branch hashes, using a
// one-byte node-type prefix, so a two-child subtree can never be
// mistaken for a leaf (and vice versa) when only the hash is visible.
// Exported so the evaluator package can produce leaf hashes in the
// same domain this engine expects from UpdateLeaf.
func LeafHash(data []byte) types.Hash {
	return crypto.Keccak256Hash([]byte{leafPrefix}, data)
}

func leafHash(data []byte) types.Hash { return LeafHash(data) }

func branchHash(left, right types.Hash) types.Hash {
	return crypto.Keccak256Hash([]byte{branchPrefix}, left[:], right[:])
}

// pathBit returns the bit of index at depth, counting depth 0 as the
// leaf level and increasing toward the root. A 0 bit means the node at
// that depth is a left child; 1 means right.
func pathBit(index uint64, depth int) uint64 {
	return (index >> uint(depth)) & 1
}
