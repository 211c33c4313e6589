// Package domain implements the multiplicative-coset arithmetic domains of
// §3: the trace domain, the disjoint quotient-chunk domains, and the
// Lagrange selectors evaluated at a point ζ.
//
// Adapted from the teacher's protocols.ArithmeticDomain (same
// Offset/Generator/Length shape), generalized so that points (ζ) live in
// the extension field E while Offset/Generator stay in the base field F —
// the teacher's domain type only ever evaluated at base-field points, since
// it never needed an out-of-domain extension-field check.
package domain

import (
	"fmt"

	"github.com/vybium/shard-verifier/internal/shardverifier/field"
)

// Domain is a coset {offset * generator^i : i = 0..2^LogLength-1} of a
// multiplicative subgroup of F*.
type Domain struct {
	cfg       field.Config
	Offset    field.Base
	Generator field.Base
	LogLength int
}

// New constructs the domain of size 2^logLength with the given offset,
// deriving Generator as the canonical 2^logLength-th root of unity
// (pcs.natural_domain_for_degree's job in the real system; exposed here so
// tests and the CLI can construct domains without a live PCS).
func New(cfg field.Config, offset field.Base, logLength int) (*Domain, error) {
	gen, err := cfg.RootOfUnity(logLength)
	if err != nil {
		return nil, fmt.Errorf("domain: %w", err)
	}
	return &Domain{cfg: cfg, Offset: offset, Generator: gen, LogLength: logLength}, nil
}

// Length returns 2^LogLength.
func (d *Domain) Length() int { return 1 << d.LogLength }

// FirstPoint returns the domain's first element, embedded into E.
func (d *Domain) FirstPoint() field.Extension {
	return d.cfg.Embed(d.Offset)
}

// NextPoint advances ζ by the domain's generator (§3: next_point(ζ)).
func (d *Domain) NextPoint(zeta field.Extension) field.Extension {
	return d.cfg.ExtMul(zeta, d.cfg.Embed(d.Generator))
}

// unshift maps ζ into the un-cosetted subgroup by dividing out the offset.
func (d *Domain) unshift(zeta field.Extension) (field.Extension, error) {
	offsetInv, err := d.cfg.Inverse(d.Offset)
	if err != nil {
		return nil, fmt.Errorf("domain: offset is not invertible: %w", err)
	}
	return d.cfg.ExtMul(zeta, d.cfg.Embed(offsetInv)), nil
}

// ZPAtPoint evaluates the domain's vanishing polynomial Z_H(ζ) = (ζ/offset)^n - 1
// (§3: zp_at_point(ζ)).
func (d *Domain) ZPAtPoint(zeta field.Extension) (field.Extension, error) {
	unshifted, err := d.unshift(zeta)
	if err != nil {
		return nil, err
	}
	pow := unshifted
	for i := 0; i < d.LogLength; i++ {
		pow = d.cfg.ExtMul(pow, pow)
	}
	one := d.cfg.Embed(d.cfg.One())
	return d.cfg.ExtSub(pow, one), nil
}

// Selectors are the per-point values a chip's folder needs: whether ζ sits
// at the domain's first/last row, the transition indicator, and the
// inverse of the vanishing polynomial (§4.E/§4.G).
type Selectors struct {
	IsFirstRow   field.Extension
	IsLastRow    field.Extension
	IsTransition field.Extension
	InvZeroifier field.Extension
}

// SelectorsAtPoint computes the four Lagrange selectors at ζ (§3:
// selectors_at_point(ζ)), following the standard two-adic-coset
// construction: both is_first_row and is_last_row are Z_H(ζ) divided by a
// linear factor vanishing at the corresponding row.
func (d *Domain) SelectorsAtPoint(zeta field.Extension) (Selectors, error) {
	unshifted, err := d.unshift(zeta)
	if err != nil {
		return Selectors{}, err
	}
	one := d.cfg.Embed(d.cfg.One())

	pow := unshifted
	for i := 0; i < d.LogLength; i++ {
		pow = d.cfg.ExtMul(pow, pow)
	}
	zH := d.cfg.ExtSub(pow, one)

	genInv, err := d.cfg.Inverse(d.Generator)
	if err != nil {
		return Selectors{}, fmt.Errorf("domain: generator is not invertible: %w", err)
	}
	lastUnshifted := d.cfg.Embed(genInv)

	firstDenom := d.cfg.ExtSub(unshifted, one)
	firstDenomInv, err := d.cfg.ExtInverse(firstDenom)
	if err != nil {
		return Selectors{}, fmt.Errorf("domain: zeta coincides with the first row: %w", err)
	}
	isFirstRow := d.cfg.ExtMul(zH, firstDenomInv)

	isTransition := d.cfg.ExtSub(unshifted, lastUnshifted)
	isTransitionInv, err := d.cfg.ExtInverse(isTransition)
	if err != nil {
		return Selectors{}, fmt.Errorf("domain: zeta coincides with the last row: %w", err)
	}
	isLastRow := d.cfg.ExtMul(zH, isTransitionInv)

	invZeroifier, err := d.cfg.ExtInverse(zH)
	if err != nil {
		return Selectors{}, fmt.Errorf("domain: zeta lies inside the trace domain: %w", err)
	}

	return Selectors{
		IsFirstRow:   isFirstRow,
		IsLastRow:    isLastRow,
		IsTransition: isTransition,
		InvZeroifier: invZeroifier,
	}, nil
}

// CreateDisjointDomain returns a domain of the requested power-of-two size,
// shifted by the field's canonical generator so it is disjoint from d
// (§3: create_disjoint_domain(size)).
func (d *Domain) CreateDisjointDomain(size int) (*Domain, error) {
	logSize := log2Exact(size)
	newOffset := d.cfg.Mul(d.Offset, d.cfg.Generator())
	return New(d.cfg, newOffset, logSize)
}

// SplitDomains partitions d into numChunks equal-size disjoint cosets,
// each shifted by successive powers of a generator of order numChunks
// (§3: split_domains(k)), used to recover the per-chunk quotient domains.
func (d *Domain) SplitDomains(numChunks int) ([]*Domain, error) {
	if numChunks <= 0 || (numChunks&(numChunks-1)) != 0 {
		return nil, fmt.Errorf("domain: numChunks must be a positive power of two, got %d", numChunks)
	}
	logChunks := log2Exact(numChunks)
	if logChunks > d.LogLength {
		return nil, fmt.Errorf("domain: cannot split a domain of size 2^%d into %d chunks", d.LogLength, numChunks)
	}
	chunkLog := d.LogLength - logChunks

	// A generator of order numChunks: the current domain's generator
	// raised to 2^chunkLog (i.e. d.Generator^(size/numChunks)).
	stepGen := d.Generator
	for i := 0; i < chunkLog; i++ {
		stepGen = d.cfg.Mul(stepGen, stepGen)
	}

	out := make([]*Domain, numChunks)
	shift := d.Offset
	for i := 0; i < numChunks; i++ {
		sub, err := New(d.cfg, shift, chunkLog)
		if err != nil {
			return nil, err
		}
		out[i] = sub
		shift = d.cfg.Mul(shift, stepGen)
	}
	return out, nil
}

func log2Exact(n int) int {
	h := 0
	for (1 << h) < n {
		h++
	}
	return h
}
