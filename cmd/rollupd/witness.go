package main

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/holiman/uint256"

	"github.com/l2rollup/settlement/types"
)

// includedTransitionFile is the JSON wire shape of a
// types.IncludedTransition: a hex-encoded raw transition plus its
// inclusion proof.
type includedTransitionFile struct {
	Transition      string   `json:"transition"`
	BlockNumber     uint64   `json:"blockNumber"`
	TransitionIndex uint64   `json:"transitionIndex"`
	Siblings        []string `json:"siblings"`
}

func (f includedTransitionFile) decode() (types.IncludedTransition, error) {
	raw, err := decodeHexBytes(f.Transition)
	if err != nil {
		return types.IncludedTransition{}, fmt.Errorf("transition: %w", err)
	}
	siblings, err := decodeHexHashes(f.Siblings)
	if err != nil {
		return types.IncludedTransition{}, fmt.Errorf("siblings: %w", err)
	}
	return types.IncludedTransition{
		Transition: raw,
		InclusionProof: types.TransitionInclusionProof{
			BlockNumber:     f.BlockNumber,
			TransitionIndex: f.TransitionIndex,
			Siblings:        siblings,
		},
	}, nil
}

// includedStorageSlotFile is the JSON wire shape of a
// types.IncludedStorageSlot. An empty Account field means the slot is
// unoccupied — every other value field is then ignored.
type includedStorageSlotFile struct {
	SlotIndex      uint32   `json:"slotIndex"`
	Account        string   `json:"account"`
	Balances       []string `json:"balances"`
	TransferNonces []uint64 `json:"transferNonces"`
	WithdrawNonces []uint64 `json:"withdrawNonces"`
	Siblings       []string `json:"siblings"`
}

func (f includedStorageSlotFile) decode() (types.IncludedStorageSlot, error) {
	siblings, err := decodeHexHashes(f.Siblings)
	if err != nil {
		return types.IncludedStorageSlot{}, fmt.Errorf("siblings: %w", err)
	}

	var value types.AccountInfo
	if f.Account != "" {
		balances := make([]uint256.Int, len(f.Balances))
		for i, b := range f.Balances {
			if _, err := balances[i].SetFromDecimal(b); err != nil {
				return types.IncludedStorageSlot{}, fmt.Errorf("balances[%d]: %w", i, err)
			}
		}
		value = types.AccountInfo{
			Account:        types.HexToAddress(f.Account),
			Balances:       balances,
			TransferNonces: append([]uint64(nil), f.TransferNonces...),
			WithdrawNonces: append([]uint64(nil), f.WithdrawNonces...),
		}
	}

	return types.IncludedStorageSlot{
		StorageSlot: types.StorageSlot{SlotIndex: f.SlotIndex, Value: value},
		Siblings:    siblings,
	}, nil
}

// proveFile is the JSON wire shape of a ProveTransitionInvalid call.
type proveFile struct {
	Pre     includedTransitionFile    `json:"pre"`
	Invalid includedTransitionFile    `json:"invalid"`
	Slots   []includedStorageSlotFile `json:"slots"`
}

func (f proveFile) decode() (pre, invalid types.IncludedTransition, slots []types.IncludedStorageSlot, err error) {
	pre, err = f.Pre.decode()
	if err != nil {
		return types.IncludedTransition{}, types.IncludedTransition{}, nil, fmt.Errorf("pre: %w", err)
	}
	invalid, err = f.Invalid.decode()
	if err != nil {
		return types.IncludedTransition{}, types.IncludedTransition{}, nil, fmt.Errorf("invalid: %w", err)
	}
	slots = make([]types.IncludedStorageSlot, len(f.Slots))
	for i, s := range f.Slots {
		slots[i], err = s.decode()
		if err != nil {
			return types.IncludedTransition{}, types.IncludedTransition{}, nil, fmt.Errorf("slots[%d]: %w", i, err)
		}
	}
	return pre, invalid, slots, nil
}

// signatureFile is the JSON wire shape of a types.Signature.
type signatureFile struct {
	R string `json:"r"`
	S string `json:"s"`
	V byte   `json:"v"`
}

func (f signatureFile) decode() types.Signature {
	var sig types.Signature
	sig.R = types.HexToHash(f.R)
	sig.S = types.HexToHash(f.S)
	sig.V = f.V
	return sig
}

func decodeHexBytes(s string) ([]byte, error) {
	return hex.DecodeString(strings.TrimPrefix(s, "0x"))
}

func decodeHexHashes(in []string) ([]types.Hash, error) {
	out := make([]types.Hash, len(in))
	for i, s := range in {
		out[i] = types.HexToHash(s)
	}
	return out, nil
}
