package chain

import "github.com/l2rollup/settlement/types"

// PruneBlocksAfter zeroes every block at index n and above, turning
// each into a tombstone (Block.IsPruned) without shrinking the
// ledger. GetCurrentBlockNumber still reports the same length
// afterward, and any inclusion proof against a tombstoned block must
// fail in verifySequentialTransitions.
func (c *Chain) PruneBlocksAfter(n uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pruneBlocksAfterLocked(n)
}

// pruneBlocksAfterLocked tombstones every block at index n and above,
// and reports how many of them were live beforehand so the caller can
// keep the blocks-live gauge accurate.
func (c *Chain) pruneBlocksAfterLocked(n uint64) int {
	newlyPruned := 0
	for i := n; i < uint64(len(c.blocks)); i++ {
		if !c.blocks[i].IsPruned() {
			newlyPruned++
		}
		c.blocks[i] = types.Block{}
	}
	return newlyPruned
}
