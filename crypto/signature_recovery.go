// ECDSA signature recovery utilities for validator and user signatures.
//
// Provides signature component validation (R/S range, low-S
// malleability per EIP-2) and concurrent batch recovery, used by the
// validator package to check a block commitment's signature set
// against the active validator set without recovering signatures one
// at a time.
package crypto

import (
	"errors"
	"math/big"
	"sync"

	"github.com/l2rollup/settlement/types"
)

// secp256k1N is the order of the secp256k1 curve.
var secp256k1N, _ = new(big.Int).SetString("fffffffffffffffffffffffffffffffebaaedce6af48a03bbfd25e8cd0364141", 16)

// secp256k1halfN is half the order, used for the low-S malleability check.
var secp256k1halfN = new(big.Int).Div(secp256k1N, big.NewInt(2))

// Errors for signature component validation.
var (
	ErrSigInvalidV      = errors.New("crypto: V must be 0 or 1")
	ErrSigInvalidR      = errors.New("crypto: R must be in [1, n-1]")
	ErrSigInvalidS      = errors.New("crypto: S must be in [1, n-1]")
	ErrSigMalleable     = errors.New("crypto: S is in the upper half of the curve order")
	ErrBatchEmpty       = errors.New("crypto: empty batch")
	ErrBatchLenMismatch = errors.New("crypto: digests and signatures length mismatch")
)

// ValidateSignatureValues checks that sig's R, S, and V components are
// well-formed: R and S in [1, n-1], V in {0, 1}, and S in the lower
// half of the curve order per EIP-2, so a validator cannot submit two
// distinct encodings of the same signature to double-count toward a
// threshold.
func ValidateSignatureValues(sig types.Signature) error {
	if sig.V > 1 {
		return ErrSigInvalidV
	}
	r := new(big.Int).SetBytes(sig.R[:])
	s := new(big.Int).SetBytes(sig.S[:])
	if r.Sign() <= 0 || r.Cmp(secp256k1N) >= 0 {
		return ErrSigInvalidR
	}
	if s.Sign() <= 0 || s.Cmp(secp256k1N) >= 0 {
		return ErrSigInvalidS
	}
	if s.Cmp(secp256k1halfN) > 0 {
		return ErrSigMalleable
	}
	return nil
}

// BatchRecoveryResult holds the result of one recovery in a batch.
type BatchRecoveryResult struct {
	Address types.Address
	Err     error
}

// BatchRecoverAddresses recovers the signer address for each
// (digest, signature) pair. digests[i] and sigs[i] must correspond;
// results are returned in the same order.
//
// Small batches (an M-of-N threshold check against a handful of
// validators) recover sequentially. Larger batches, such as
// checking a block commitment against a validator set of more than
// four, fan out across a bounded worker pool.
func BatchRecoverAddresses(digests []types.Hash, sigs []types.Signature) ([]BatchRecoveryResult, error) {
	n := len(digests)
	if n == 0 {
		return nil, ErrBatchEmpty
	}
	if n != len(sigs) {
		return nil, ErrBatchLenMismatch
	}

	results := make([]BatchRecoveryResult, n)
	recoverOne := func(i int) {
		if err := ValidateSignatureValues(sigs[i]); err != nil {
			results[i] = BatchRecoveryResult{Err: err}
			return
		}
		addr, err := RecoverAddress(digests[i], sigs[i])
		results[i] = BatchRecoveryResult{Address: addr, Err: err}
	}

	const sequentialThreshold = 4
	if n <= sequentialThreshold {
		for i := 0; i < n; i++ {
			recoverOne(i)
		}
		return results, nil
	}

	var wg sync.WaitGroup
	workers := 8
	if n < workers {
		workers = n
	}
	work := make(chan int, n)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range work {
				recoverOne(i)
			}
		}()
	}
	for i := 0; i < n; i++ {
		work <- i
	}
	close(work)
	wg.Wait()

	return results, nil
}
