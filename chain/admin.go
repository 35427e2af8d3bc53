package chain

import "github.com/l2rollup/settlement/types"

// TokenAdmin is the narrow mutating capability chain needs from the
// token package's admin surface.
type TokenAdmin interface {
	TokenRegistry
	RegisterToken(addr types.Address) (uint32, error)
}

// RegisterToken is the admin-gated entry point mirroring the source
// contract's owner-only registerToken. Callers wire authorization
// (who counts as "owner") outside this package; Chain itself only
// forwards to the admin registry it is given and emits the event.
func (c *Chain) RegisterToken(admin TokenAdmin, addr types.Address) (uint32, error) {
	index, err := admin.RegisterToken(addr)
	if err != nil {
		return 0, err
	}
	c.sink.TokenRegistered(addr, index)
	return index, nil
}
