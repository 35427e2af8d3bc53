package chain

import (
	"sync"

	"github.com/l2rollup/settlement/merkle"
	"github.com/l2rollup/settlement/types"
)

// Chain is the append-only block ledger plus the fraud-proof
// adjudicator over it. It depends on its external collaborators
// (validators, the evaluator, the Merkle engine) only through the
// narrow interfaces declared in interfaces.go. The token registry is
// a separate external collaborator the chain never consults directly;
// RegisterToken only forwards to whatever TokenAdmin a caller passes
// it and emits the matching event.
type Chain struct {
	mu sync.Mutex

	blocks    []types.Block
	committer types.Address

	validators ValidatorRegistry
	evaluator  TransitionEvaluator
	state      StateTree
	trans      TransitionsTree
	sink       EventSink

	// registeredAccounts tracks every storage slot this chain has
	// itself observed being created while adjudicating a fraud proof,
	// keyed by slot index. CommitBlock never decodes transitions, so
	// this can only ever reflect slots a challenge actually walked
	// through verifyStorageInclusion/evaluateInvalid/applyOutputs —
	// most accounts are created and tracked off-chain, by the account
	// registry collaborator this module does not implement.
	registeredAccounts map[uint32]types.Address
}

// New returns an empty Chain bound to the given collaborators. sink
// may be nil, in which case NullEventSink is used.
func New(validators ValidatorRegistry, evaluator TransitionEvaluator, sink EventSink) *Chain {
	if sink == nil {
		sink = NullEventSink{}
	}
	return &Chain{
		validators:         validators,
		evaluator:          evaluator,
		state:              &merkle.StateTree{},
		trans:              merkle.TransitionsTree{},
		sink:               sink,
		registeredAccounts: make(map[uint32]types.Address),
	}
}

// SetCommitter implements validator.CommitterSink. The validator
// registry calls this every time the round-robin cursor moves.
func (c *Chain) SetCommitter(committer types.Address) {
	c.mu.Lock()
	c.committer = committer
	c.mu.Unlock()
	c.sink.CommitterChanged(committer)
}

// GetCurrentBlockNumber returns the index of the most recently
// appended block, live or tombstoned.
func (c *Chain) GetCurrentBlockNumber() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.currentBlockNumberLocked()
}

func (c *Chain) currentBlockNumberLocked() uint64 {
	if len(c.blocks) == 0 {
		return 0
	}
	return uint64(len(c.blocks)) - 1
}

// blockAt returns the block at index n and whether n is in range.
func (c *Chain) blockAt(n uint64) (types.Block, bool) {
	if n >= uint64(len(c.blocks)) {
		return types.Block{}, false
	}
	return c.blocks[n], true
}

// CommitBlock runs the eight-step optimistic commit path: caller
// authorization, gapless numbering, signature threshold, per-
// transition event emission, transitions-root computation, ledger
// append, block-committed event, and committer rotation. No semantic
// validation of the transitions' content happens here — that is the
// optimistic premise a later ProveTransitionInvalid call can unwind.
func (c *Chain) CommitBlock(caller types.Address, blockNumber uint64, transitions [][]byte, signatures []types.Signature) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if caller != c.committer {
		return ErrNotCommitter
	}
	if blockNumber != uint64(len(c.blocks)) {
		return ErrBlockNumberMismatch
	}
	if err := c.validators.CheckSignatures(blockNumber, transitions, signatures); err != nil {
		return err
	}

	for i, t := range transitions {
		c.sink.Transition(blockNumber, i, t)
	}

	root := c.trans.Root(transitions)
	c.blocks = append(c.blocks, types.Block{RootHash: root, BlockSize: uint64(len(transitions))})
	c.sink.RollupBlockCommitted(blockNumber, len(transitions))
	c.validators.PickNextCommitter()
	return nil
}
