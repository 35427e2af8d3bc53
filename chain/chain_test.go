package chain

import (
	"errors"
	"testing"

	"github.com/holiman/uint256"

	"github.com/l2rollup/settlement/crypto"
	"github.com/l2rollup/settlement/evaluator"
	"github.com/l2rollup/settlement/merkle"
	"github.com/l2rollup/settlement/rlp"
	"github.com/l2rollup/settlement/types"
)

type fakeValidators struct {
	committer   types.Address
	checkErr    error
	pickedCount int
}

func (f *fakeValidators) CurrentCommitter() types.Address { return f.committer }
func (f *fakeValidators) CheckSignatures(uint64, [][]byte, []types.Signature) error {
	return f.checkErr
}
func (f *fakeValidators) PickNextCommitter() { f.pickedCount++ }

const branchPrefixForTests = 0x01

func testBranchHash(l, r types.Hash) types.Hash {
	return crypto.Keccak256Hash([]byte{branchPrefixForTests}, l[:], r[:])
}

// sparseSingleLeafProof builds the root and sibling path of a
// fixed-height sparse tree containing exactly one non-empty leaf.
func sparseSingleLeafProof(height int, slotIndex uint64, leaf types.Hash) (types.Hash, []types.Hash) {
	emptyLeaf := merkle.LeafHash(make([]byte, types.HashLength))
	emptyAt := make([]types.Hash, height+1)
	emptyAt[0] = emptyLeaf
	for d := 1; d <= height; d++ {
		emptyAt[d] = testBranchHash(emptyAt[d-1], emptyAt[d-1])
	}

	siblings := make([]types.Hash, height)
	current := leaf
	idx := slotIndex
	for d := 0; d < height; d++ {
		siblings[d] = emptyAt[d]
		if idx&1 == 0 {
			current = testBranchHash(current, emptyAt[d])
		} else {
			current = testBranchHash(emptyAt[d], current)
		}
		idx >>= 1
	}
	return current, siblings
}

func TestCommitBlockHappyPath(t *testing.T) {
	committer := types.HexToAddress("0xaa")
	fv := &fakeValidators{committer: committer}
	c := New(fv, evaluator.Evaluator{}, nil)
	c.SetCommitter(committer)

	transitions := [][]byte{[]byte("t0"), []byte("t1")}
	if err := c.CommitBlock(committer, 0, transitions, nil); err != nil {
		t.Fatalf("CommitBlock: %v", err)
	}
	if c.GetCurrentBlockNumber() != 0 {
		t.Fatalf("block number = %d, want 0", c.GetCurrentBlockNumber())
	}
	if fv.pickedCount != 1 {
		t.Fatalf("PickNextCommitter called %d times, want 1", fv.pickedCount)
	}

	if err := c.CommitBlock(committer, 1, transitions, nil); err != nil {
		t.Fatalf("second CommitBlock: %v", err)
	}
	if c.GetCurrentBlockNumber() != 1 {
		t.Fatalf("block number = %d, want 1", c.GetCurrentBlockNumber())
	}
}

func TestCommitBlockRejectsWrongCommitter(t *testing.T) {
	committer := types.HexToAddress("0xaa")
	fv := &fakeValidators{committer: committer}
	c := New(fv, evaluator.Evaluator{}, nil)
	c.SetCommitter(committer)

	other := types.HexToAddress("0xbb")
	if err := c.CommitBlock(other, 0, nil, nil); err != ErrNotCommitter {
		t.Fatalf("err = %v, want ErrNotCommitter", err)
	}
}

func TestCommitBlockRejectsBlockNumberGap(t *testing.T) {
	committer := types.HexToAddress("0xaa")
	fv := &fakeValidators{committer: committer}
	c := New(fv, evaluator.Evaluator{}, nil)
	c.SetCommitter(committer)

	if err := c.CommitBlock(committer, 5, nil, nil); err != ErrBlockNumberMismatch {
		t.Fatalf("err = %v, want ErrBlockNumberMismatch", err)
	}
}

var errTestSignature = errors.New("chain test: simulated signature check failure")

func TestCommitBlockPropagatesSignatureFailure(t *testing.T) {
	committer := types.HexToAddress("0xaa")
	fv := &fakeValidators{committer: committer, checkErr: errTestSignature}
	c := New(fv, evaluator.Evaluator{}, nil)
	c.SetCommitter(committer)

	if err := c.CommitBlock(committer, 0, nil, nil); err != errTestSignature {
		t.Fatalf("err = %v, want errTestSignature", err)
	}
	if len(c.blocks) != 0 {
		t.Fatal("block appended despite signature check failure")
	}
}

func TestProveTransitionInvalidDetectsInsufficientBalanceFraud(t *testing.T) {
	const slotIndex = 7
	priv, err := crypto.GenerateKey()
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	account := crypto.PubkeyToAddress(priv.PubKey())

	accountInfo := types.AccountInfo{
		Account:        account,
		Balances:       []uint256.Int{*uint256.NewInt(10)},
		TransferNonces: []uint64{0},
		WithdrawNonces: []uint64{0},
	}
	leaf := merkle.LeafHash(types.EncodeAccountInfo(accountInfo))
	preStateRoot, siblings := sparseSingleLeafProof(stateTreeHeight, slotIndex, leaf)

	preTransition := types.DepositTransition{
		AccountSlotIndex: slotIndex,
		TokenIndex:       0,
		Amount:           *uint256.NewInt(0),
		StateRoot:        preStateRoot,
	}
	preRaw, err := types.EncodeTransition(preTransition)
	if err != nil {
		t.Fatalf("encode pre transition: %v", err)
	}

	withdraw := types.WithdrawTransition{
		AccountSlotIndex: slotIndex,
		TokenIndex:       0,
		Amount:           *uint256.NewInt(999),
		Nonce:            0,
	}
	digest := testWithdrawDigest(withdraw.AccountSlotIndex, withdraw.TokenIndex, withdraw.Amount, withdraw.Nonce)
	sig, err := crypto.Sign(digest, priv)
	if err != nil {
		t.Fatalf("sign withdraw: %v", err)
	}
	withdraw.Signature = sig
	invalidRaw, err := types.EncodeTransition(withdraw)
	if err != nil {
		t.Fatalf("encode invalid transition: %v", err)
	}

	preLeafHash := merkle.LeafHash(preRaw)
	invalidLeafHash := merkle.LeafHash(invalidRaw)
	blockRoot := testBranchHash(preLeafHash, invalidLeafHash)

	fv := &fakeValidators{committer: types.HexToAddress("0xaa")}
	c := New(fv, evaluator.Evaluator{}, nil)
	c.blocks = []types.Block{{RootHash: blockRoot, BlockSize: 2}}

	pre := types.IncludedTransition{
		Transition: preRaw,
		InclusionProof: types.TransitionInclusionProof{
			BlockNumber:     0,
			TransitionIndex: 0,
			Siblings:        []types.Hash{invalidLeafHash},
		},
	}
	invalid := types.IncludedTransition{
		Transition: invalidRaw,
		InclusionProof: types.TransitionInclusionProof{
			BlockNumber:     0,
			TransitionIndex: 1,
			Siblings:        []types.Hash{preLeafHash},
		},
	}
	slots := []types.IncludedStorageSlot{{
		StorageSlot: types.StorageSlot{SlotIndex: slotIndex, Value: accountInfo},
		Siblings:    siblings,
	}}

	pruned, err := c.ProveTransitionInvalid(pre, invalid, slots)
	if err != nil {
		t.Fatalf("ProveTransitionInvalid: %v", err)
	}
	if !pruned {
		t.Fatal("expected fraud to be detected and the block pruned")
	}
	if !c.blocks[0].IsPruned() {
		t.Fatal("block was not tombstoned after fraud detection")
	}
}

func TestProveTransitionInvalidNoFraudWhenConsistent(t *testing.T) {
	const slotIndex = 3
	accountInfo := types.AccountInfo{
		Account:        types.HexToAddress("0xcc"),
		Balances:       []uint256.Int{*uint256.NewInt(5)},
		TransferNonces: []uint64{0},
		WithdrawNonces: []uint64{0},
	}
	leaf := merkle.LeafHash(types.EncodeAccountInfo(accountInfo))
	preStateRoot, siblings := sparseSingleLeafProof(stateTreeHeight, slotIndex, leaf)

	preTransition := types.DepositTransition{
		AccountSlotIndex: slotIndex,
		TokenIndex:       0,
		Amount:           *uint256.NewInt(0),
		StateRoot:        preStateRoot,
	}
	preRaw, _ := types.EncodeTransition(preTransition)

	depositTransition := types.DepositTransition{
		AccountSlotIndex: slotIndex,
		TokenIndex:       0,
		Amount:           *uint256.NewInt(2),
	}

	updated := accountInfo
	updated.Balances = []uint256.Int{*uint256.NewInt(7)}
	postLeaf := merkle.LeafHash(types.EncodeAccountInfo(updated))
	postStateRoot, _ := sparseSingleLeafProof(stateTreeHeight, slotIndex, postLeaf)
	depositTransition.StateRoot = postStateRoot
	invalidRaw, _ := types.EncodeTransition(depositTransition)

	preLeafHash := merkle.LeafHash(preRaw)
	invalidLeafHash := merkle.LeafHash(invalidRaw)
	blockRoot := testBranchHash(preLeafHash, invalidLeafHash)

	fv := &fakeValidators{committer: types.HexToAddress("0xaa")}
	c := New(fv, evaluator.Evaluator{}, nil)
	c.blocks = []types.Block{{RootHash: blockRoot, BlockSize: 2}}

	pre := types.IncludedTransition{
		Transition: preRaw,
		InclusionProof: types.TransitionInclusionProof{
			BlockNumber: 0, TransitionIndex: 0,
			Siblings: []types.Hash{invalidLeafHash},
		},
	}
	invalid := types.IncludedTransition{
		Transition: invalidRaw,
		InclusionProof: types.TransitionInclusionProof{
			BlockNumber: 0, TransitionIndex: 1,
			Siblings: []types.Hash{preLeafHash},
		},
	}
	slots := []types.IncludedStorageSlot{{
		StorageSlot: types.StorageSlot{SlotIndex: slotIndex, Value: accountInfo},
		Siblings:    siblings,
	}}

	pruned, err := c.ProveTransitionInvalid(pre, invalid, slots)
	if err != ErrNoFraudDetected {
		t.Fatalf("err = %v, want ErrNoFraudDetected", err)
	}
	if pruned {
		t.Fatal("pruned = true for a correct transition")
	}
}

type recordingSink struct {
	NullEventSink
	registered []types.AccountCreation
}

func (s *recordingSink) AccountRegistered(addr types.Address, slotIndex uint32) {
	s.registered = append(s.registered, types.AccountCreation{SlotIndex: slotIndex, Account: addr})
}

func TestProveTransitionInvalidRegistersNewAccountOnValidCreate(t *testing.T) {
	const slotIndex = 5
	newAccount := types.HexToAddress("0xdd")

	emptyLeaf := merkle.LeafHash(make([]byte, types.HashLength))
	preStateRoot, siblings := sparseSingleLeafProof(stateTreeHeight, slotIndex, emptyLeaf)

	preTransition := types.DepositTransition{
		AccountSlotIndex: 0,
		TokenIndex:       0,
		Amount:           *uint256.NewInt(0),
		StateRoot:        preStateRoot,
	}
	preRaw, _ := types.EncodeTransition(preTransition)

	createTransition := types.CreateAndDepositTransition{
		AccountSlotIndex: slotIndex,
		Account:          newAccount,
		TokenIndex:       0,
		Amount:           *uint256.NewInt(3),
	}
	created := types.AccountInfo{Account: newAccount, Balances: []uint256.Int{*uint256.NewInt(3)}}
	postLeaf := merkle.LeafHash(types.EncodeAccountInfo(created))
	postStateRoot, _ := sparseSingleLeafProof(stateTreeHeight, slotIndex, postLeaf)
	createTransition.StateRoot = postStateRoot
	invalidRaw, _ := types.EncodeTransition(createTransition)

	preLeafHash := merkle.LeafHash(preRaw)
	invalidLeafHash := merkle.LeafHash(invalidRaw)
	blockRoot := testBranchHash(preLeafHash, invalidLeafHash)

	fv := &fakeValidators{committer: types.HexToAddress("0xaa")}
	sink := &recordingSink{}
	c := New(fv, evaluator.Evaluator{}, sink)
	c.blocks = []types.Block{{RootHash: blockRoot, BlockSize: 2}}

	pre := types.IncludedTransition{
		Transition: preRaw,
		InclusionProof: types.TransitionInclusionProof{
			BlockNumber: 0, TransitionIndex: 0,
			Siblings: []types.Hash{invalidLeafHash},
		},
	}
	invalid := types.IncludedTransition{
		Transition: invalidRaw,
		InclusionProof: types.TransitionInclusionProof{
			BlockNumber: 0, TransitionIndex: 1,
			Siblings: []types.Hash{preLeafHash},
		},
	}
	slots := []types.IncludedStorageSlot{{
		StorageSlot: types.StorageSlot{SlotIndex: slotIndex, Value: types.AccountInfo{}},
		Siblings:    siblings,
	}}

	pruned, err := c.ProveTransitionInvalid(pre, invalid, slots)
	if err != ErrNoFraudDetected {
		t.Fatalf("err = %v, want ErrNoFraudDetected", err)
	}
	if pruned {
		t.Fatal("pruned = true for a correct create transition")
	}
	if len(sink.registered) != 1 {
		t.Fatalf("AccountRegistered fired %d times, want 1", len(sink.registered))
	}
	if sink.registered[0].SlotIndex != slotIndex || sink.registered[0].Account != newAccount {
		t.Fatalf("AccountRegistered(%v), want {slot %d, account %v}", sink.registered[0], slotIndex, newAccount)
	}
	if got := c.registeredAccounts[slotIndex]; got != newAccount {
		t.Fatalf("registeredAccounts[%d] = %v, want %v", slotIndex, got, newAccount)
	}

	// Re-adjudicating the same create must not double-fire the event.
	c.recordAccountCreations(invalidRaw)
	if len(sink.registered) != 1 {
		t.Fatalf("AccountRegistered fired again on a slot already recorded, total = %d", len(sink.registered))
	}
}

func TestProveTransitionInvalidChecksInclusionBeforeAdjacency(t *testing.T) {
	fv := &fakeValidators{committer: types.HexToAddress("0xaa")}
	c := New(fv, evaluator.Evaluator{}, nil)
	c.blocks = []types.Block{{RootHash: types.Hash{1}, BlockSize: 5}}

	pre := types.IncludedTransition{InclusionProof: types.TransitionInclusionProof{BlockNumber: 0, TransitionIndex: 0}}
	invalid := types.IncludedTransition{InclusionProof: types.TransitionInclusionProof{BlockNumber: 0, TransitionIndex: 2}}
	if _, err := c.ProveTransitionInvalid(pre, invalid, nil); err != ErrInclusionFailed {
		t.Fatalf("err = %v, want ErrInclusionFailed (bad witnesses before adjacency is even reached)", err)
	}
}

func TestPruneBlocksAfterTombstonesWithoutShrinking(t *testing.T) {
	fv := &fakeValidators{committer: types.HexToAddress("0xaa")}
	c := New(fv, evaluator.Evaluator{}, nil)
	c.blocks = []types.Block{
		{RootHash: types.Hash{1}, BlockSize: 1},
		{RootHash: types.Hash{2}, BlockSize: 1},
		{RootHash: types.Hash{3}, BlockSize: 1},
	}
	c.PruneBlocksAfter(1)
	if len(c.blocks) != 3 {
		t.Fatalf("len(blocks) = %d, want 3 (tombstones, not truncation)", len(c.blocks))
	}
	if c.blocks[0].IsPruned() {
		t.Fatal("block 0 should survive pruning from index 1")
	}
	if !c.blocks[1].IsPruned() || !c.blocks[2].IsPruned() {
		t.Fatal("blocks 1 and 2 should be tombstoned")
	}
	if c.GetCurrentBlockNumber() != 2 {
		t.Fatalf("GetCurrentBlockNumber = %d, want 2 (pruning does not change ledger length)", c.GetCurrentBlockNumber())
	}
}

// testWithdrawDigest independently reconstructs the canonical withdraw
// signing digest, exactly as an off-chain wallet would, rather than
// reaching into the evaluator package's unexported helper.
func testWithdrawDigest(slotIndex, tokenIndex uint32, amount uint256.Int, nonce uint64) types.Hash {
	enc, err := rlp.EncodeToBytes(withdrawMessageForTest{
		AccountSlotIndex: slotIndex,
		TokenIndex:       tokenIndex,
		Amount:           amount,
		Nonce:            nonce,
	})
	if err != nil {
		panic("chain test: withdraw message encode: " + err.Error())
	}
	return crypto.SignedMessageHash(crypto.Keccak256Hash(enc))
}

type withdrawMessageForTest struct {
	AccountSlotIndex uint32
	TokenIndex       uint32
	Amount           uint256.Int
	Nonce            uint64
}
