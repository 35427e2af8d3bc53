package chain

import (
	"github.com/l2rollup/settlement/types"
)

const stateTreeHeight = 32

// ProveTransitionInvalid runs the seven-step adjudication sequence
// against two claimed-adjacent transitions. If any step detects
// fraud, the block containing the invalid transition (and every later
// block) is pruned and the call returns (true, nil) — silent success,
// not an error. Reaching the end without detecting fraud means the
// caller was wrong: the call returns (false, ErrNoFraudDetected).
// Any other non-nil error is a caller mistake (malformed witnesses, a
// mismatched access list, a pre-transition that does not itself
// decode) rather than a finding about the invalid transition.
func (c *Chain) ProveTransitionInvalid(pre, invalid types.IncludedTransition, slots []types.IncludedStorageSlot) (pruned bool, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.verifySequentialTransitions(pre, invalid); err != nil {
		return false, err
	}

	preStateRoot, postStateRoot, accessList, invalidDecodeErr, err := c.decodeBoth(pre, invalid)
	if err != nil {
		return false, err
	}
	if transitionType, peekErr := types.PeekTransitionType(invalid.Transition); peekErr == nil {
		c.sink.DecodedTransition(invalid.InclusionProof.BlockNumber, int(invalid.InclusionProof.TransitionIndex), transitionType)
	}
	if invalidDecodeErr {
		n := c.pruneBlocksAfterLocked(invalid.InclusionProof.BlockNumber)
		c.sink.FraudProofRun(n)
		return true, nil
	}

	if err := c.checkAccessList(accessList, slots); err != nil {
		return false, err
	}

	if err := c.verifyStorageInclusion(preStateRoot, slots); err != nil {
		return false, err
	}

	outputs, semanticFraud, err := c.evaluateInvalid(invalid.Transition, slots)
	if err != nil {
		return false, err
	}
	if semanticFraud {
		n := c.pruneBlocksAfterLocked(invalid.InclusionProof.BlockNumber)
		c.sink.FraudProofRun(n)
		return true, nil
	}

	if err := c.applyOutputs(outputs, slots); err != nil {
		return false, err
	}

	if c.compareRoots(postStateRoot) {
		n := c.pruneBlocksAfterLocked(invalid.InclusionProof.BlockNumber)
		c.sink.FraudProofRun(n)
		return true, nil
	}
	// The operator's claimed post-state root checks out: the
	// challenged transition was valid all along, so any slot it
	// created is a genuine new account, not one about to be pruned.
	c.recordAccountCreations(invalid.Transition)
	c.sink.FraudProofRun(0)
	return false, ErrNoFraudDetected
}

// verifySequentialTransitions is step 1: both transitions must be
// included in their claimed blocks' transitions trees, neither block
// may be a tombstone, and the two transitions must be adjacent —
// either consecutive indices in the same block, or pre is the last
// transition of block b and invalid is the first transition of block
// b+1.
func (c *Chain) verifySequentialTransitions(pre, invalid types.IncludedTransition) error {
	preBlock, ok := c.blockAt(pre.InclusionProof.BlockNumber)
	if !ok || preBlock.IsPruned() {
		return ErrBlockPruned
	}
	invalidBlock, ok := c.blockAt(invalid.InclusionProof.BlockNumber)
	if !ok || invalidBlock.IsPruned() {
		return ErrBlockPruned
	}

	if !c.trans.Verify(preBlock.RootHash, pre.Transition, pre.InclusionProof.TransitionIndex, pre.InclusionProof.Siblings) {
		return ErrInclusionFailed
	}
	if !c.trans.Verify(invalidBlock.RootHash, invalid.Transition, invalid.InclusionProof.TransitionIndex, invalid.InclusionProof.Siblings) {
		return ErrInclusionFailed
	}

	sameBlock := pre.InclusionProof.BlockNumber == invalid.InclusionProof.BlockNumber
	if sameBlock {
		if invalid.InclusionProof.TransitionIndex == pre.InclusionProof.TransitionIndex+1 {
			return nil
		}
		return ErrTransitionsNotAdjacent
	}

	crossesBlockBoundary := invalid.InclusionProof.BlockNumber == pre.InclusionProof.BlockNumber+1
	preIsLastOfItsBlock := pre.InclusionProof.TransitionIndex == preBlock.BlockSize-1
	invalidIsFirstOfItsBlock := invalid.InclusionProof.TransitionIndex == 0
	if crossesBlockBoundary && preIsLastOfItsBlock && invalidIsFirstOfItsBlock {
		return nil
	}
	return ErrTransitionsNotAdjacent
}

// decodeBoth is step 2. A pre-transition that fails to decode is a
// caller mistake — fraud cannot be proven against an already-broken
// prior state through this path, the prior transition itself must be
// challenged instead. A decode failure on the invalid transition is
// itself the fraud: invalidDecodeErr reports that case so the caller
// prunes rather than reverts.
func (c *Chain) decodeBoth(pre, invalid types.IncludedTransition) (preStateRoot, postStateRoot types.Hash, accessList []uint32, invalidDecodeErr bool, err error) {
	preStateRoot, _, decodeErr := c.evaluator.DecodeTransition(pre.Transition)
	if decodeErr != nil {
		return types.Hash{}, types.Hash{}, nil, false, ErrPreTransitionUndecodable
	}

	postStateRoot, accessList, decodeErr = c.evaluator.DecodeTransition(invalid.Transition)
	if decodeErr != nil {
		return preStateRoot, types.Hash{}, nil, true, nil
	}
	return preStateRoot, postStateRoot, accessList, false, nil
}

// checkAccessList is step 3: the supplied storage slots must name
// exactly the slot indexes the invalid transition's access list
// names, in the same order.
func (c *Chain) checkAccessList(accessList []uint32, slots []types.IncludedStorageSlot) error {
	if len(accessList) != len(slots) {
		return ErrAccessListMismatch
	}
	for i, want := range accessList {
		if slots[i].StorageSlot.SlotIndex != want {
			return ErrAccessListMismatch
		}
	}
	return nil
}

// verifyStorageInclusion is step 4: reset the state tree to
// preStateRoot and verify each supplied witness against it, caching
// the ancestor path so applyOutputs can later update the same leaves.
func (c *Chain) verifyStorageInclusion(preStateRoot types.Hash, slots []types.IncludedStorageSlot) error {
	c.state.Reset(preStateRoot, stateTreeHeight)
	for _, s := range slots {
		leafBytes := types.EncodeAccountInfo(s.StorageSlot.Value)
		if err := c.state.VerifyAndStore(leafBytes, uint64(s.StorageSlot.SlotIndex), s.Siblings); err != nil {
			return err
		}
	}
	return nil
}

// evaluateInvalid is step 5. A non-nil err from the evaluator is
// itself the fraud finding (the transition is semantically invalid
// given the witnessed pre-state), reported back as semanticFraud
// rather than propagated as an adjudication error.
func (c *Chain) evaluateInvalid(invalidRaw []byte, slots []types.IncludedStorageSlot) (outputs []types.Hash, semanticFraud bool, err error) {
	storageSlots := make([]types.StorageSlot, len(slots))
	for i, s := range slots {
		storageSlots[i] = s.StorageSlot
	}
	outputs, evalErr := c.evaluator.Evaluate(invalidRaw, storageSlots)
	if evalErr != nil {
		return nil, true, nil
	}
	return outputs, false, nil
}

// applyOutputs is step 6: install each output leaf hash at its
// corresponding slot index.
func (c *Chain) applyOutputs(outputs []types.Hash, slots []types.IncludedStorageSlot) error {
	for i, s := range slots {
		if err := c.state.UpdateLeaf(outputs[i], uint64(s.StorageSlot.SlotIndex)); err != nil {
			return err
		}
	}
	return nil
}

// recordAccountCreations fires AccountRegistered for every slot the
// challenged transition created for the first time. Callers only
// reach this after compareRoots has confirmed the operator's claimed
// post-state root was right all along — this is the only point in the
// system where the chain itself observes a new account coming into
// existence, since commit-time processing never decodes transitions.
func (c *Chain) recordAccountCreations(invalidRaw []byte) {
	creations, err := c.evaluator.AccountCreations(invalidRaw)
	if err != nil {
		return
	}
	for _, creation := range creations {
		if _, exists := c.registeredAccounts[creation.SlotIndex]; exists {
			continue
		}
		c.registeredAccounts[creation.SlotIndex] = creation.Account
		c.sink.AccountRegistered(creation.Account, creation.SlotIndex)
	}
}

// compareRoots is step 7: reports whether the recomputed state root
// diverges from the invalid transition's claimed post-state root —
// true means fraud (the operator's claimed root is wrong).
func (c *Chain) compareRoots(postStateRoot types.Hash) bool {
	return c.state.Root() != postStateRoot
}
