// Package token maintains the address-to-index allocation every
// transition's TokenIndex field refers into.
package token

import (
	"errors"
	"sync"

	"github.com/l2rollup/settlement/types"
)

// ErrZeroAddress is returned by RegisterToken for the zero address.
var ErrZeroAddress = errors.New("token: cannot register the zero address")

// ErrAlreadyRegistered is returned by RegisterToken for an address
// that already has an index.
var ErrAlreadyRegistered = errors.New("token: address is already registered")

// Registry assigns each registered token address the next available
// index, starting at zero. Index zero is also the sentinel value
// addressToIndex returns for an address that was never registered, so
// a raw addressToIndex lookup cannot by itself distinguish "the first
// registered token" from "never registered" — callers that need that
// distinction must use IsRegistered, not compare an index to zero.
type Registry struct {
	mu             sync.Mutex
	addressToIndex map[types.Address]uint32
	indexToAddress []types.Address
}

// NewRegistry returns an empty token registry.
func NewRegistry() *Registry {
	return &Registry{addressToIndex: make(map[types.Address]uint32)}
}

// RegisterToken assigns addr the next index. It performs no owner
// check: this package has no notion of an owner, and the chain
// package's admin entry point only forwards the call. Fails if addr is
// the zero address or already registered.
func (r *Registry) RegisterToken(addr types.Address) (uint32, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if addr.IsZero() {
		return 0, ErrZeroAddress
	}
	if _, ok := r.addressToIndex[addr]; ok {
		return 0, ErrAlreadyRegistered
	}

	index := uint32(len(r.indexToAddress))
	r.addressToIndex[addr] = index
	r.indexToAddress = append(r.indexToAddress, addr)
	return index, nil
}

// IndexOf returns addr's token index and whether addr is registered
// at all — the presence predicate that resolves the index-0 ambiguity
// documented on Registry.
func (r *Registry) IndexOf(addr types.Address) (uint32, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	idx, ok := r.addressToIndex[addr]
	return idx, ok
}

// IsRegistered reports whether addr has been assigned a token index.
func (r *Registry) IsRegistered(addr types.Address) bool {
	_, ok := r.IndexOf(addr)
	return ok
}

// AddressOf returns the address registered at index, or false if
// index is out of range.
func (r *Registry) AddressOf(index uint32) (types.Address, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if int(index) >= len(r.indexToAddress) {
		return types.Address{}, false
	}
	return r.indexToAddress[index], true
}

// NumTokens returns the number of registered tokens.
func (r *Registry) NumTokens() uint32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return uint32(len(r.indexToAddress))
}
