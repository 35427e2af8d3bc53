// Generalized-index arithmetic for binary Merkle trees.
//
// The tree addresses nodes by generalized index: the root is at index
// 1, and for any node at index i, its left child is at 2i and its
// right child is at 2i+1. Leaves of a tree with 2^d leaves sit at
// indices [2^d, 2^(d+1)-1]. merkle.StateTree uses these helpers to
// walk the ancestor path of a slot between a VerifyAndStore call and
// the UpdateLeaf call that follows it, without re-deriving the path
// arithmetic itself.
package crypto

// GeneralizedIndex computes the generalized index for a leaf at the
// given position in a tree of the given depth. Leaf position 0 maps
// to generalized index 2^depth.
func GeneralizedIndex(depth uint, leafPos uint64) uint64 {
	return (1 << depth) + leafPos
}

// Parent returns the generalized index of the parent node.
func Parent(gi uint64) uint64 {
	return gi / 2
}

// Sibling returns the generalized index of the sibling node.
func Sibling(gi uint64) uint64 {
	return gi ^ 1
}

// IsLeft reports whether the generalized index represents a left child.
func IsLeft(gi uint64) bool {
	return gi%2 == 0
}
