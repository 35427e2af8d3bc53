package merkle

import "github.com/l2rollup/settlement/types"

// TransitionsTree computes and verifies Merkle roots over a block's
// ordered list of encoded transitions. It holds no state between
// calls: every call recomputes from its arguments, so a block's root
// can be recomputed independently of whichever block was committed
// most recently.
type TransitionsTree struct{}

// Root returns the Merkle root over leaves, keccak256-based, padded
// with EmptyLeafHash up to the next power of two. An empty leaf list
// has root EmptyLeafHash (the tree of height zero containing nothing
// but the padding sentinel).
func (TransitionsTree) Root(leaves [][]byte) types.Hash {
	if len(leaves) == 0 {
		return EmptyLeafHash
	}
	hashes := make([]types.Hash, len(leaves))
	for i, l := range leaves {
		hashes[i] = leafHash(l)
	}
	return computeRoot(hashes)
}

// Verify reports whether leaf is the index-th leaf of a tree rooted at
// root, given the sibling path from leaf to root. len(siblings) fixes
// the tree's height for this check.
func (TransitionsTree) Verify(root types.Hash, leaf []byte, index uint64, siblings []types.Hash) bool {
	current := leafHash(leaf)
	for depth, sib := range siblings {
		if pathBit(index, depth) == 0 {
			current = branchHash(current, sib)
		} else {
			current = branchHash(sib, current)
		}
	}
	return current == root
}

// computeRoot pads hashes up to the next power of two with
// EmptyLeafHash and folds pairwise up to a single root.
func computeRoot(hashes []types.Hash) types.Hash {
	size := 1
	for size < len(hashes) {
		size *= 2
	}
	level := make([]types.Hash, size)
	copy(level, hashes)
	for i := len(hashes); i < size; i++ {
		level[i] = EmptyLeafHash
	}
	for len(level) > 1 {
		next := make([]types.Hash, len(level)/2)
		for i := range next {
			next[i] = branchHash(level[2*i], level[2*i+1])
		}
		level = next
	}
	return level[0]
}
