// Package bignat provides the saturating 256-bit natural-number arithmetic
// the schema enumeration engine needs for cardinalities: saturating
// multiplication and exponentiation, checked subtraction, and div-mod by a
// non-zero divisor. Cardinalities saturate at 2²⁵⁶−1 rather than overflowing;
// a schema whose true cardinality exceeds that bound is silently capped,
// since no password scheme can use more than 256 bits of entropy anyway.
package bignat

import (
	"math/big"

	"github.com/holiman/uint256"
)

// Nat is a 256-bit unsigned natural number.
type Nat = uint256.Int

// Max is the saturation ceiling, 2²⁵⁶−1.
func Max() *Nat {
	z := new(Nat)
	return z.Not(z) // NOT of zero is all ones.
}

// Zero returns the additive identity.
func Zero() *Nat { return new(Nat) }

// One returns the multiplicative identity.
func One() *Nat { return new(Nat).SetUint64(1) }

// FromUint64 converts a machine word to a Nat.
func FromUint64(v uint64) *Nat { return new(Nat).SetUint64(v) }

// FromBytesBE interprets b as a big-endian natural number.
func FromBytesBE(b []byte) *Nat { return new(Nat).SetBytes(b) }

// FromBytesLE interprets b as a little-endian natural number, as required to
// turn a ChaCha20 keystream into a draw.
func FromBytesLE(b []byte) *Nat {
	rev := make([]byte, len(b))
	for i, c := range b {
		rev[len(b)-1-i] = c
	}
	return new(Nat).SetBytes(rev)
}

// BytesBE32 renders n as 32 big-endian bytes, for test-vector interchange.
func BytesBE32(n *Nat) [32]byte {
	var out [32]byte
	b := n.Bytes()
	copy(out[32-len(b):], b)
	return out
}

// Uint64 returns n truncated to a machine word; the caller must know n fits.
func Uint64(n *Nat) uint64 { return n.Uint64() }

// IsOne reports whether n == 1.
func IsOne(n *Nat) bool { return n.Eq(One()) }

// IsZero reports whether n == 0.
func IsZero(n *Nat) bool { return n.IsZero() }

// BitLen returns the number of bits required to represent n (0 for n == 0).
func BitLen(n *Nat) int { return n.BitLen() }

// IsPowerOfTwo reports whether n is an exact power of two.
func IsPowerOfTwo(n *Nat) bool {
	if n.IsZero() {
		return false
	}
	masked := new(Nat).Sub(n, One())
	masked.And(masked, n)
	return masked.IsZero()
}

// Add computes x+y, saturating at Max.
func Add(x, y *Nat) *Nat {
	z := new(Nat).Add(x, y)
	if z.Lt(x) { // wrapped around 2^256
		return Max()
	}
	return z
}

// Sub computes x-y. The caller must ensure x >= y; this is a checked
// subtraction in the sense that the engine's invariants guarantee it never
// underflows, not that it recovers if they are violated.
func Sub(x, y *Nat) *Nat {
	return new(Nat).Sub(x, y)
}

// Mul computes x*y, saturating at Max.
func Mul(x, y *Nat) *Nat {
	if x.IsZero() || y.IsZero() {
		return Zero()
	}
	z := new(Nat).Mul(x, y)
	check := new(Nat).Div(z, y)
	if !check.Eq(x) {
		return Max()
	}
	return z
}

// Pow computes base^exp, saturating at Max.
func Pow(base *Nat, exp uint64) *Nat {
	result := One()
	b := new(Nat).Set(base)
	for exp > 0 {
		if exp&1 == 1 {
			result = Mul(result, b)
		}
		exp >>= 1
		if exp > 0 {
			b = Mul(b, b)
		}
	}
	return result
}

// DivMod returns the floor quotient and remainder of x/y for y != 0.
func DivMod(x, y *Nat) (q, r *Nat) {
	q = new(Nat).Div(x, y)
	prod := new(Nat).Mul(q, y)
	r = new(Nat).Sub(x, prod)
	return q, r
}

// Cmp compares x and y as in math/big: -1, 0, +1.
func Cmp(x, y *Nat) int { return x.Cmp(y) }

// Dec renders n in decimal, for diagnostics and test output.
func Dec(n *Nat) string {
	return new(big.Int).SetBytes(n.Bytes()).String()
}
