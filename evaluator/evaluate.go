package evaluator

import (
	"github.com/holiman/uint256"

	"github.com/l2rollup/settlement/crypto"
	"github.com/l2rollup/settlement/merkle"
	"github.com/l2rollup/settlement/types"
)

// Evaluate decodes raw and checks it against slots — the current
// values of the storage slots its access list names, in the same
// order DecodeTransition reported them — performing every semantic
// check the variant requires (signature validity, sufficient balance,
// nonce equality, slot-creation preconditions). On success it returns
// the post-transition leaf hashes to install at those same slots, in
// the same order.
func Evaluate(raw []byte, slots []types.StorageSlot) ([]types.Hash, error) {
	v, err := decodeVariant(raw)
	if err != nil {
		return nil, err
	}

	switch t := v.(type) {
	case types.CreateAndDepositTransition:
		return evalCreateAndDeposit(t, slots)
	case types.DepositTransition:
		return evalDeposit(t, slots)
	case types.WithdrawTransition:
		return evalWithdraw(t, slots)
	case types.CreateAndTransferTransition:
		return evalCreateAndTransfer(t, slots)
	case types.TransferTransition:
		return evalTransfer(t, slots)
	default:
		return nil, ErrUnknownTransitionType
	}
}

func evalCreateAndDeposit(t types.CreateAndDepositTransition, slots []types.StorageSlot) ([]types.Hash, error) {
	if len(slots) != 1 || slots[0].SlotIndex != t.AccountSlotIndex {
		return nil, ErrAccessListMismatch
	}
	if !slots[0].Value.IsEmpty() {
		return nil, ErrSlotNotEmpty
	}
	account := types.AccountInfo{Account: t.Account}
	creditBalance(&account, t.TokenIndex, &t.Amount)
	return []types.Hash{leafHashOf(account)}, nil
}

func evalDeposit(t types.DepositTransition, slots []types.StorageSlot) ([]types.Hash, error) {
	if len(slots) != 1 || slots[0].SlotIndex != t.AccountSlotIndex {
		return nil, ErrAccessListMismatch
	}
	if slots[0].Value.IsEmpty() {
		return nil, ErrSlotEmpty
	}
	account := slots[0].Value
	creditBalance(&account, t.TokenIndex, &t.Amount)
	return []types.Hash{leafHashOf(account)}, nil
}

func evalWithdraw(t types.WithdrawTransition, slots []types.StorageSlot) ([]types.Hash, error) {
	if len(slots) != 1 || slots[0].SlotIndex != t.AccountSlotIndex {
		return nil, ErrAccessListMismatch
	}
	if slots[0].Value.IsEmpty() {
		return nil, ErrSlotEmpty
	}
	account := slots[0].Value

	digest := withdrawDigest(t.AccountSlotIndex, t.TokenIndex, t.Amount, t.Nonce)
	if !crypto.VerifySignature(account.Account, digest, t.Signature) {
		return nil, ErrWithdrawSignatureInvalid
	}
	if err := checkNonce(account.WithdrawNonces, t.TokenIndex, t.Nonce); err != nil {
		return nil, err
	}
	if err := debitBalance(&account, t.TokenIndex, &t.Amount); err != nil {
		return nil, err
	}
	incrementNonce(&account.WithdrawNonces, t.TokenIndex)
	return []types.Hash{leafHashOf(account)}, nil
}

func evalCreateAndTransfer(t types.CreateAndTransferTransition, slots []types.StorageSlot) ([]types.Hash, error) {
	if len(slots) != 2 || slots[0].SlotIndex != t.SenderSlotIndex || slots[1].SlotIndex != t.RecipientSlotIndex {
		return nil, ErrAccessListMismatch
	}
	sender := slots[0].Value
	if sender.IsEmpty() {
		return nil, ErrSlotEmpty
	}
	if !slots[1].Value.IsEmpty() {
		return nil, ErrSlotNotEmpty
	}

	digest := transferDigest(t.SenderSlotIndex, t.RecipientSlotIndex, t.RecipientAccount, t.TokenIndex, t.Amount, t.Nonce)
	if !crypto.VerifySignature(sender.Account, digest, t.Signature) {
		return nil, ErrTransferSignatureInvalid
	}
	if err := checkNonce(sender.TransferNonces, t.TokenIndex, t.Nonce); err != nil {
		return nil, err
	}
	if err := debitBalance(&sender, t.TokenIndex, &t.Amount); err != nil {
		return nil, err
	}
	incrementNonce(&sender.TransferNonces, t.TokenIndex)

	recipient := types.AccountInfo{Account: t.RecipientAccount}
	creditBalance(&recipient, t.TokenIndex, &t.Amount)

	return []types.Hash{leafHashOf(sender), leafHashOf(recipient)}, nil
}

func evalTransfer(t types.TransferTransition, slots []types.StorageSlot) ([]types.Hash, error) {
	if len(slots) != 2 || slots[0].SlotIndex != t.SenderSlotIndex || slots[1].SlotIndex != t.RecipientSlotIndex {
		return nil, ErrAccessListMismatch
	}
	sender := slots[0].Value
	recipient := slots[1].Value
	if sender.IsEmpty() || recipient.IsEmpty() {
		return nil, ErrSlotEmpty
	}

	digest := transferDigest(t.SenderSlotIndex, t.RecipientSlotIndex, recipient.Account, t.TokenIndex, t.Amount, t.Nonce)
	if !crypto.VerifySignature(sender.Account, digest, t.Signature) {
		return nil, ErrTransferSignatureInvalid
	}
	if err := checkNonce(sender.TransferNonces, t.TokenIndex, t.Nonce); err != nil {
		return nil, err
	}
	if err := debitBalance(&sender, t.TokenIndex, &t.Amount); err != nil {
		return nil, err
	}
	incrementNonce(&sender.TransferNonces, t.TokenIndex)
	creditBalance(&recipient, t.TokenIndex, &t.Amount)

	return []types.Hash{leafHashOf(sender), leafHashOf(recipient)}, nil
}

// --- per-token slice helpers ---
//
// Balances, TransferNonces, and WithdrawNonces are parallel sequences
// indexed by token index; grow() lazily extends them the first time an
// account touches a new token.

func grow(n int, tokenIndex uint32) int {
	if int(tokenIndex) >= n {
		return int(tokenIndex) + 1
	}
	return n
}

func creditBalance(a *types.AccountInfo, tokenIndex uint32, amount *uint256.Int) {
	if n := grow(len(a.Balances), tokenIndex); n != len(a.Balances) {
		grown := make([]uint256.Int, n)
		copy(grown, a.Balances)
		a.Balances = grown
	}
	a.Balances[tokenIndex].Add(&a.Balances[tokenIndex], amount)
}

func debitBalance(a *types.AccountInfo, tokenIndex uint32, amount *uint256.Int) error {
	if int(tokenIndex) >= len(a.Balances) || a.Balances[tokenIndex].Lt(amount) {
		return ErrInsufficientBalance
	}
	a.Balances[tokenIndex].Sub(&a.Balances[tokenIndex], amount)
	return nil
}

func checkNonce(nonces []uint64, tokenIndex uint32, expected uint64) error {
	var current uint64
	if int(tokenIndex) < len(nonces) {
		current = nonces[tokenIndex]
	}
	if current != expected {
		return ErrNonceMismatch
	}
	return nil
}

func incrementNonce(nonces *[]uint64, tokenIndex uint32) {
	if n := grow(len(*nonces), tokenIndex); n != len(*nonces) {
		grown := make([]uint64, n)
		copy(grown, *nonces)
		*nonces = grown
	}
	(*nonces)[tokenIndex]++
}

func leafHashOf(a types.AccountInfo) types.Hash {
	return merkle.LeafHash(types.EncodeAccountInfo(a))
}
