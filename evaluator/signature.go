package evaluator

import (
	"github.com/holiman/uint256"

	"github.com/l2rollup/settlement/crypto"
	"github.com/l2rollup/settlement/rlp"
	"github.com/l2rollup/settlement/types"
)

// withdrawMessage is the canonical payload a slot account signs to
// authorize a withdrawal: the slot, token, amount, and expected nonce,
// so a signature can never be replayed against a different withdrawal.
type withdrawMessage struct {
	AccountSlotIndex uint32
	TokenIndex       uint32
	Amount           uint256.Int
	Nonce            uint64
}

// transferMessage is the canonical payload a sender account signs to
// authorize a transfer.
type transferMessage struct {
	SenderSlotIndex    uint32
	RecipientSlotIndex uint32
	RecipientAccount   types.Address
	TokenIndex         uint32
	Amount             uint256.Int
	Nonce              uint64
}

func withdrawDigest(slotIndex, tokenIndex uint32, amount uint256.Int, nonce uint64) types.Hash {
	enc, err := rlp.EncodeToBytes(withdrawMessage{
		AccountSlotIndex: slotIndex,
		TokenIndex:       tokenIndex,
		Amount:           amount,
		Nonce:            nonce,
	})
	if err != nil {
		panic("evaluator: withdraw message encode: " + err.Error())
	}
	return crypto.SignedMessageHash(crypto.Keccak256Hash(enc))
}

func transferDigest(senderSlot, recipientSlot uint32, recipient types.Address, tokenIndex uint32, amount uint256.Int, nonce uint64) types.Hash {
	enc, err := rlp.EncodeToBytes(transferMessage{
		SenderSlotIndex:    senderSlot,
		RecipientSlotIndex: recipientSlot,
		RecipientAccount:   recipient,
		TokenIndex:         tokenIndex,
		Amount:             amount,
		Nonce:              nonce,
	})
	if err != nil {
		panic("evaluator: transfer message encode: " + err.Error())
	}
	return crypto.SignedMessageHash(crypto.Keccak256Hash(enc))
}

// VerifyWithdrawSignature reports whether raw is a withdraw-variant
// transition carrying a valid signature from account over the
// canonical withdraw message. Returns false (never an error) for any
// other variant or a malformed payload, since the caller only uses
// this as a boolean gate.
func VerifyWithdrawSignature(account types.Address, raw []byte) bool {
	v, err := decodeVariant(raw)
	if err != nil {
		return false
	}
	t, ok := v.(types.WithdrawTransition)
	if !ok {
		return false
	}
	digest := withdrawDigest(t.AccountSlotIndex, t.TokenIndex, t.Amount, t.Nonce)
	return crypto.VerifySignature(account, digest, t.Signature)
}
