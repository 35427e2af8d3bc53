package types

import (
	"errors"

	"github.com/holiman/uint256"

	"github.com/l2rollup/settlement/rlp"
)

// ErrMalformedAccountInfo is returned when a leaf's bytes are neither the
// canonical empty-slot sentinel nor a well-formed AccountInfo tuple.
var ErrMalformedAccountInfo = errors.New("types: malformed AccountInfo encoding")

// AccountInfo is the value stored at a leaf of the state tree. Balances,
// TransferNonces, and WithdrawNonces are parallel sequences indexed by
// token index.
type AccountInfo struct {
	Account        Address
	Balances       []uint256.Int
	TransferNonces []uint64
	WithdrawNonces []uint64
}

// accountInfoTuple is the wire shape of a non-empty AccountInfo. It exists
// so encoding/decoding goes through one reflective RLP struct rather than
// hand-rolled field-by-field code.
type accountInfoTuple struct {
	Account        Address
	Balances       []uint256.Int
	TransferNonces []uint64
	WithdrawNonces []uint64
}

// IsEmpty reports whether a is the uninhabited-slot value: the zero
// address with no balances, transfer nonces, or withdraw nonces.
func (a AccountInfo) IsEmpty() bool {
	return a.Account.IsZero() && len(a.Balances) == 0 &&
		len(a.TransferNonces) == 0 && len(a.WithdrawNonces) == 0
}

// EncodeAccountInfo produces the canonical leaf encoding of a. An empty
// slot is the 32-byte zero word; everything else is the RLP-encoded
// (account, balances, transferNonces, withdrawNonces) tuple. This exact
// split — single sentinel word vs. tuple encoding — must be reproduced
// bit-for-bit by off-chain operators computing witnesses against this
// tree.
func EncodeAccountInfo(a AccountInfo) []byte {
	if a.IsEmpty() {
		return make([]byte, HashLength)
	}
	enc, err := rlp.EncodeToBytes(accountInfoTuple{
		Account:        a.Account,
		Balances:       a.Balances,
		TransferNonces: a.TransferNonces,
		WithdrawNonces: a.WithdrawNonces,
	})
	if err != nil {
		// Every field type here is RLP-encodable; a failure means a
		// caller built an AccountInfo with a nil slice element, which
		// is a programmer error, not a runtime condition to recover from.
		panic("types: AccountInfo encode: " + err.Error())
	}
	return enc
}

// DecodeAccountInfo parses the canonical leaf encoding produced by
// EncodeAccountInfo. The all-zero word decodes to the empty AccountInfo.
func DecodeAccountInfo(b []byte) (AccountInfo, error) {
	if len(b) == HashLength && isAllZero(b) {
		return AccountInfo{}, nil
	}
	var t accountInfoTuple
	if err := rlp.DecodeBytes(b, &t); err != nil {
		return AccountInfo{}, ErrMalformedAccountInfo
	}
	return AccountInfo{
		Account:        t.Account,
		Balances:       t.Balances,
		TransferNonces: t.TransferNonces,
		WithdrawNonces: t.WithdrawNonces,
	}, nil
}

func isAllZero(b []byte) bool {
	for _, c := range b {
		if c != 0 {
			return false
		}
	}
	return true
}

// StorageSlot is one leaf of the state tree: the account value at a
// given 32-bit slot index.
type StorageSlot struct {
	SlotIndex uint32
	Value     AccountInfo
}

// AccountCreation names a storage slot a transition populates for the
// first time, and the address that now owns it. Only
// CreateAndDepositTransition and CreateAndTransferTransition produce
// these; every other variant touches slots that already exist.
type AccountCreation struct {
	SlotIndex uint32
	Account   Address
}
