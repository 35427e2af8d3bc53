package types

import (
	"bytes"
	"errors"

	"github.com/holiman/uint256"

	"github.com/l2rollup/settlement/rlp"
)

// TransitionType discriminates the five transition variants. It is
// always the first encoded field of a transition, so a corrupt or
// unrecognized tag can be detected before the rest of the payload is
// even parsed.
type TransitionType uint8

const (
	// TransitionCreateAndDeposit creates a new account slot and credits
	// its balance. Authorized off-chain by a deposit authorization; no
	// on-chain signature is checked.
	TransitionCreateAndDeposit TransitionType = iota + 1

	// TransitionDeposit credits an existing account slot's balance.
	TransitionDeposit

	// TransitionWithdraw debits a balance and increments a withdraw
	// nonce; requires the slot account's signature.
	TransitionWithdraw

	// TransitionCreateAndTransfer creates the recipient slot, then
	// transfers; requires the sender account's signature.
	TransitionCreateAndTransfer

	// TransitionTransfer debits the sender and credits the recipient;
	// requires the sender account's signature.
	TransitionTransfer
)

func (t TransitionType) String() string {
	switch t {
	case TransitionCreateAndDeposit:
		return "CreateAndDeposit"
	case TransitionDeposit:
		return "Deposit"
	case TransitionWithdraw:
		return "Withdraw"
	case TransitionCreateAndTransfer:
		return "CreateAndTransfer"
	case TransitionTransfer:
		return "Transfer"
	default:
		return "Unknown"
	}
}

// Signature is a 65-byte ECDSA-over-secp256k1 signature, R || S || V.
type Signature struct {
	R [32]byte
	S [32]byte
	V byte
}

// Errors for transition encoding/decoding.
var (
	ErrTransitionEmpty       = errors.New("types: transition data is empty")
	ErrTransitionUnknownType = errors.New("types: unknown transition type")
	ErrTransitionMalformed   = errors.New("types: malformed transition payload")
)

// PeekTransitionType reads only the discriminant field of a raw,
// RLP-encoded transition without decoding the rest of the payload.
func PeekTransitionType(raw []byte) (TransitionType, error) {
	if len(raw) == 0 {
		return 0, ErrTransitionEmpty
	}
	st := rlp.NewStream(bytes.NewReader(raw))
	if _, err := st.List(); err != nil {
		return 0, ErrTransitionMalformed
	}
	tag, err := st.Uint64()
	if err != nil {
		return 0, ErrTransitionMalformed
	}
	return TransitionType(tag), nil
}

// CreateAndDepositTransition creates accountSlotIndex (which must be
// empty) with Account populated and Balances[TokenIndex] credited by
// Amount.
type CreateAndDepositTransition struct {
	Type             TransitionType
	AccountSlotIndex uint32
	Account          Address
	TokenIndex       uint32
	Amount           uint256.Int
	StateRoot        Hash
}

// DepositTransition credits an existing account slot's balance.
type DepositTransition struct {
	Type             TransitionType
	AccountSlotIndex uint32
	TokenIndex       uint32
	Amount           uint256.Int
	StateRoot        Hash
}

// WithdrawTransition debits a balance and increments the withdraw
// nonce for TokenIndex. Signature must be the slot account's signature
// over the digest of (AccountSlotIndex, TokenIndex, Amount, Nonce); the
// signed message contains no contract address and no "withdraw" tag.
type WithdrawTransition struct {
	Type             TransitionType
	AccountSlotIndex uint32
	TokenIndex       uint32
	Amount           uint256.Int
	Nonce            uint64
	Signature        Signature
	StateRoot        Hash
}

// CreateAndTransferTransition creates RecipientSlotIndex with
// RecipientAccount, then transfers from SenderSlotIndex exactly as
// TransferTransition does.
type CreateAndTransferTransition struct {
	Type               TransitionType
	SenderSlotIndex    uint32
	RecipientSlotIndex uint32
	RecipientAccount   Address
	TokenIndex         uint32
	Amount             uint256.Int
	Nonce              uint64
	Signature          Signature
	StateRoot          Hash
}

// TransferTransition debits the sender and credits the recipient,
// incrementing the sender's transfer nonce for TokenIndex. Signature
// must be the sender account's signature over the digest of
// (SenderSlotIndex, RecipientSlotIndex, recipient account address,
// TokenIndex, Amount, Nonce); the signed message contains no contract
// address.
type TransferTransition struct {
	Type               TransitionType
	SenderSlotIndex    uint32
	RecipientSlotIndex uint32
	TokenIndex         uint32
	Amount             uint256.Int
	Nonce              uint64
	Signature          Signature
	StateRoot          Hash
}

// EncodeTransition returns the canonical RLP encoding of any transition
// variant. The argument must be one of the five *Transition struct
// types above (by value). EncodeTransition sets Type to match the
// variant, overwriting whatever value the caller left in it.
func EncodeTransition(v interface{}) ([]byte, error) {
	switch t := v.(type) {
	case CreateAndDepositTransition:
		t.Type = TransitionCreateAndDeposit
		return rlp.EncodeToBytes(t)
	case DepositTransition:
		t.Type = TransitionDeposit
		return rlp.EncodeToBytes(t)
	case WithdrawTransition:
		t.Type = TransitionWithdraw
		return rlp.EncodeToBytes(t)
	case CreateAndTransferTransition:
		t.Type = TransitionCreateAndTransfer
		return rlp.EncodeToBytes(t)
	case TransferTransition:
		t.Type = TransitionTransfer
		return rlp.EncodeToBytes(t)
	default:
		return nil, ErrTransitionUnknownType
	}
}

// TransitionInclusionProof is the Merkle path proving that an encoded
// transition is the TransitionIndex-th leaf of the transitions tree
// rooted at blocks[BlockNumber].RootHash.
type TransitionInclusionProof struct {
	BlockNumber     uint64
	TransitionIndex uint64
	Siblings        []Hash
}

// IncludedTransition pairs a raw transition with the proof that it was
// committed at a specific position.
type IncludedTransition struct {
	Transition     []byte
	InclusionProof TransitionInclusionProof
}

// IncludedStorageSlot pairs a storage slot with the state-tree Merkle
// path proving its value against some asserted root.
type IncludedStorageSlot struct {
	StorageSlot StorageSlot
	Siblings    []Hash
}
