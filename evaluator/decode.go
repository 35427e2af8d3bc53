package evaluator

import (
	"github.com/l2rollup/settlement/rlp"
	"github.com/l2rollup/settlement/types"
)

// DecodeTransition decodes the transition tag from raw and returns the
// post-state root the operator claims, plus the ordered list of
// storage slot indices the transition touches. For Transfer and
// CreateAndTransfer this is sender then recipient; every other
// variant touches exactly one slot.
//
// A malformed or unrecognized payload returns a non-nil error rather
// than panicking: the caller (the rollup chain's fraud-proof
// adjudicator) treats decode failure as proof of fraud, not as a
// reason to abort the whole call.
func DecodeTransition(raw []byte) (stateRoot types.Hash, accessList []uint32, err error) {
	v, err := decodeVariant(raw)
	if err != nil {
		return types.Hash{}, nil, err
	}
	switch t := v.(type) {
	case types.CreateAndDepositTransition:
		return t.StateRoot, []uint32{t.AccountSlotIndex}, nil
	case types.DepositTransition:
		return t.StateRoot, []uint32{t.AccountSlotIndex}, nil
	case types.WithdrawTransition:
		return t.StateRoot, []uint32{t.AccountSlotIndex}, nil
	case types.CreateAndTransferTransition:
		return t.StateRoot, []uint32{t.SenderSlotIndex, t.RecipientSlotIndex}, nil
	case types.TransferTransition:
		return t.StateRoot, []uint32{t.SenderSlotIndex, t.RecipientSlotIndex}, nil
	default:
		return types.Hash{}, nil, ErrUnknownTransitionType
	}
}

// DecodeAccountCreations reports the storage slots raw populates for
// the first time, together with the address that now owns each one.
// CreateAndDepositTransition and CreateAndTransferTransition each
// create exactly one slot (the account slot, and the recipient slot,
// respectively); every other variant returns an empty slice since it
// only ever touches slots its access list requires to already be
// occupied.
func DecodeAccountCreations(raw []byte) ([]types.AccountCreation, error) {
	v, err := decodeVariant(raw)
	if err != nil {
		return nil, err
	}
	switch t := v.(type) {
	case types.CreateAndDepositTransition:
		return []types.AccountCreation{{SlotIndex: t.AccountSlotIndex, Account: t.Account}}, nil
	case types.CreateAndTransferTransition:
		return []types.AccountCreation{{SlotIndex: t.RecipientSlotIndex, Account: t.RecipientAccount}}, nil
	default:
		return nil, nil
	}
}

// decodeVariant peeks the transition tag and fully decodes raw into
// the matching variant struct (by value).
func decodeVariant(raw []byte) (interface{}, error) {
	tag, err := types.PeekTransitionType(raw)
	if err != nil {
		return nil, ErrMalformedTransition
	}
	switch tag {
	case types.TransitionCreateAndDeposit:
		var t types.CreateAndDepositTransition
		if err := rlp.DecodeBytes(raw, &t); err != nil {
			return nil, ErrMalformedTransition
		}
		return t, nil
	case types.TransitionDeposit:
		var t types.DepositTransition
		if err := rlp.DecodeBytes(raw, &t); err != nil {
			return nil, ErrMalformedTransition
		}
		return t, nil
	case types.TransitionWithdraw:
		var t types.WithdrawTransition
		if err := rlp.DecodeBytes(raw, &t); err != nil {
			return nil, ErrMalformedTransition
		}
		return t, nil
	case types.TransitionCreateAndTransfer:
		var t types.CreateAndTransferTransition
		if err := rlp.DecodeBytes(raw, &t); err != nil {
			return nil, ErrMalformedTransition
		}
		return t, nil
	case types.TransitionTransfer:
		var t types.TransferTransition
		if err := rlp.DecodeBytes(raw, &t); err != nil {
			return nil, ErrMalformedTransition
		}
		return t, nil
	default:
		return nil, ErrUnknownTransitionType
	}
}
