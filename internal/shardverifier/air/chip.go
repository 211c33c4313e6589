// Package air implements the per-chip verification pieces: the opening
// shape validator (§4.D), the constraint folder (§4.E), and the quotient
// recombiner (§4.F). These are the three checks the shard verifier (in
// package verify) runs per chip after the PCS accepts the openings.
package air

import (
	"github.com/vybium/shard-verifier/internal/shardverifier/domain"
	"github.com/vybium/shard-verifier/internal/shardverifier/field"
)

// Chip is the narrow capability an AIR definition exposes to the verifier
// (§3 Chip (capability)). AIR definitions themselves are out of scope
// (§1); the verifier only ever calls these seven methods.
type Chip interface {
	Name() string
	PreprocessedWidth() int
	Width() int
	PermutationWidth() int
	QuotientWidth() int
	LogQuotientDegree() int
	// Eval drives the chip's constraint evaluation against folder,
	// pushing every constraint term into folder's accumulator.
	Eval(folder *ConstraintFolder)
}

// AirOpenedValues is the {local, next} pair shared by preprocessed, main,
// and (after unflattening) permutation openings.
type AirOpenedValues struct {
	Local []field.Extension
	Next  []field.Extension
}

// ChipOpenedValues is one chip's slice of a ShardProof's opened_values
// (§3 ChipOpenedValues).
type ChipOpenedValues struct {
	Preprocessed  AirOpenedValues
	Main          AirOpenedValues
	Permutation   FlatPermutation
	Quotient      [][]field.Base // length QuotientWidth, each inner slice length D
	CumulativeSum field.Extension
	LogDegree     uint32
}

// FlatPermutation holds the permutation opening before unflattening: a flat
// length permutation_width*D sequence of base-field coefficients, per
// §3's ChipOpenedValues.permutation.
type FlatPermutation struct {
	Local []field.Base
	Next  []field.Base
}

// ShapeError reports which of the five §4.D invariants failed, and is
// folded into a verify.OpeningShapeError by the caller together with the
// chip name.
type ShapeError struct {
	Kind     ShapeErrorKind
	Expected int
	Actual   int
}

type ShapeErrorKind int

const (
	PreprocessedWidthMismatch ShapeErrorKind = iota
	MainWidthMismatch
	PermutationWidthMismatch
	QuotientWidthMismatch
	QuotientChunkSizeMismatch
)

func (k ShapeErrorKind) String() string {
	switch k {
	case PreprocessedWidthMismatch:
		return "PreprocessedWidthMismatch"
	case MainWidthMismatch:
		return "MainWidthMismatch"
	case PermutationWidthMismatch:
		return "PermutationWidthMismatch"
	case QuotientWidthMismatch:
		return "QuotientWidthMismatch"
	case QuotientChunkSizeMismatch:
		return "QuotientChunkSizeMismatch"
	default:
		return "UnknownShapeError"
	}
}

func (e *ShapeError) Error() string {
	return e.Kind.String()
}

// VerifyOpeningShape runs the five mandatory checks of §4.D, returning the
// first one that fails (structural errors stop further work immediately
// per §7).
func VerifyOpeningShape(cfg field.Config, chip Chip, opening ChipOpenedValues) *ShapeError {
	d := cfg.Degree()

	if len(opening.Preprocessed.Local) != chip.PreprocessedWidth() {
		return &ShapeError{PreprocessedWidthMismatch, chip.PreprocessedWidth(), len(opening.Preprocessed.Local)}
	}
	if len(opening.Preprocessed.Next) != chip.PreprocessedWidth() {
		return &ShapeError{PreprocessedWidthMismatch, chip.PreprocessedWidth(), len(opening.Preprocessed.Next)}
	}

	if len(opening.Main.Local) != chip.Width() {
		return &ShapeError{MainWidthMismatch, chip.Width(), len(opening.Main.Local)}
	}
	if len(opening.Main.Next) != chip.Width() {
		return &ShapeError{MainWidthMismatch, chip.Width(), len(opening.Main.Next)}
	}

	if len(opening.Permutation.Local) != chip.PermutationWidth()*d {
		return &ShapeError{PermutationWidthMismatch, chip.PermutationWidth(), len(opening.Permutation.Local)}
	}
	if len(opening.Permutation.Next) != chip.PermutationWidth()*d {
		return &ShapeError{PermutationWidthMismatch, chip.PermutationWidth(), len(opening.Permutation.Next)}
	}

	if len(opening.Quotient) != chip.QuotientWidth() {
		return &ShapeError{QuotientWidthMismatch, chip.QuotientWidth(), len(opening.Quotient)}
	}
	for _, chunk := range opening.Quotient {
		if len(chunk) != d {
			return &ShapeError{QuotientChunkSizeMismatch, d, len(chunk)}
		}
	}

	return nil
}

// RecomputeQuotient reconstructs quotient(ζ) from the k quotient-chunk
// openings using the barycentric-style weights across the disjoint quotient
// chunk domains (§4.F). qcDomains must have the same length as
// opening.Quotient.
func RecomputeQuotient(cfg field.Config, opening ChipOpenedValues, qcDomains []*domain.Domain, zeta field.Extension) (field.Extension, error) {
	k := len(qcDomains)
	zps := make([]field.Extension, k)
	for i := 0; i < k; i++ {
		acc := cfg.Embed(cfg.One())
		for j := 0; j < k; j++ {
			if j == i {
				continue
			}
			numerator, err := qcDomains[j].ZPAtPoint(zeta)
			if err != nil {
				return nil, err
			}
			denominator, err := qcDomains[j].ZPAtPoint(qcDomains[i].FirstPoint())
			if err != nil {
				return nil, err
			}
			denomInv, err := cfg.ExtInverse(denominator)
			if err != nil {
				return nil, err
			}
			acc = cfg.ExtMul(acc, cfg.ExtMul(numerator, denomInv))
		}
		zps[i] = acc
	}

	total := cfg.ExtZero()
	for i, chunk := range opening.Quotient {
		inner := cfg.ExtZero()
		for e, c := range chunk {
			inner = cfg.ExtAdd(inner, cfg.ExtScale(cfg.Monomial(e), c))
		}
		total = cfg.ExtAdd(total, cfg.ExtMul(zps[i], inner))
	}
	return total, nil
}
