// Package field defines the abstract field and hash capability the verifier
// is generic over (component A). The core never hard-codes a prime or a
// permutation; it is handed a Config and treats base-field elements,
// extension-field elements, and digests as opaque values produced and
// consumed only through that Config.
//
// Following the teacher's core.Field / core.FieldElement split, Base wraps
// an arbitrary-precision residue, and Config carries the modulus plus the
// extension degree D. Unlike the teacher, arithmetic here is delegated
// through the Config vtable rather than called as methods directly on the
// element, so the same verifier code can be driven by either a native
// Config (concrete big.Int arithmetic) or a circuit Config (symbolic
// builder variables) per design note 9.
package field

import (
	"fmt"
	"math/big"
)

// DigestElements is the fixed width of a Digest, matching the teacher's
// poseidon state conventions and the original source's DIGEST_SIZE.
const DigestElements = 8

// Base is a single base-field element. It is immutable; all arithmetic goes
// through Config so that circuit-mode bindings can substitute symbolic
// variables without changing this type's shape.
type Base struct {
	value *big.Int
}

// Digest is a cryptographic digest: a fixed-size array of base-field
// elements, as produced by Config.Compress.
type Digest [DigestElements]Base

// Extension is an element of the degree-D extension field E, represented as
// a length-D sequence of base-field elements (the monomial-basis
// coefficients).
type Extension []Base

// Config is the field & hash capability consumed by every other component.
// It is deliberately a plain interface (not a generic parameter) so the
// same verifier logic can be instantiated once natively and once inside a
// recursive circuit builder, per design note 9.
type Config interface {
	// Degree returns D, the extension degree of E over F.
	Degree() int

	Zero() Base
	One() Base
	Add(a, b Base) Base
	Sub(a, b Base) Base
	Mul(a, b Base) Base
	Neg(a Base) Base
	Inverse(a Base) (Base, error)
	IsZero(a Base) bool
	Equal(a, b Base) bool

	// Embed lifts a base-field element into the extension field (the
	// degree-0 monomial coefficient, all others zero).
	Embed(a Base) Extension

	// Monomial returns the i-th basis element of E, 0 <= i < D.
	Monomial(i int) Extension

	ExtZero() Extension
	ExtAdd(a, b Extension) Extension
	ExtSub(a, b Extension) Extension
	ExtMul(a, b Extension) Extension
	ExtInverse(a Extension) (Extension, error)
	ExtIsZero(a Extension) bool
	ExtEqual(a, b Extension) bool
	// ExtScale multiplies an extension element by a base-field scalar.
	ExtScale(a Extension, s Base) Extension

	// Compress is the cryptographic 2-to-1 compression function used both
	// by the Merkle layer (component C) and, in the recursive witness
	// binding (component H), its variable-circuit analogue.
	Compress(in [2]Digest) Digest

	// DefaultDigest returns the digest used to pad a Merkle tree's leaves
	// up to the next power of two (the teacher's HV::Digest::default()).
	DefaultDigest() Digest

	// Generator returns a fixed canonical generator of F*, used by the
	// domain layer to shift cosets into disjointness (plonky3's
	// Val::GENERATOR).
	Generator() Base

	// RootOfUnity returns a generator of F*'s unique subgroup of order
	// 2^logOrder (a "two-adic" root of unity). Returns an error if F*'s
	// order is not divisible by 2^logOrder.
	RootOfUnity(logOrder int) (Base, error)
}

// NewBase wraps a *big.Int as a Base without reducing it; callers obtain
// correctly reduced Bases only through a Config.
func NewBase(v *big.Int) Base {
	return Base{value: new(big.Int).Set(v)}
}

// Big returns the element's value as a big.Int, matching the teacher's
// FieldElement.Big().
func (b Base) Big() *big.Int {
	if b.value == nil {
		return big.NewInt(0)
	}
	return new(big.Int).Set(b.value)
}

func (b Base) String() string {
	return b.Big().String()
}

// Unflatten reassembles w extension elements from a flat length w*D vector
// of base-field coefficients, following §4.D/§4.E's unflattening contract:
// element i is built from coefficients [i*D, (i+1)*D).
func Unflatten(cfg Config, flat []Base) ([]Extension, error) {
	d := cfg.Degree()
	if d <= 0 {
		return nil, fmt.Errorf("field: degree must be positive, got %d", d)
	}
	if len(flat)%d != 0 {
		return nil, fmt.Errorf("field: flat length %d is not a multiple of degree %d", len(flat), d)
	}
	out := make([]Extension, len(flat)/d)
	for i := range out {
		chunk := flat[i*d : (i+1)*d]
		acc := cfg.ExtZero()
		for e, c := range chunk {
			acc = cfg.ExtAdd(acc, cfg.ExtScale(cfg.Monomial(e), c))
		}
		out[i] = acc
	}
	return out, nil
}
