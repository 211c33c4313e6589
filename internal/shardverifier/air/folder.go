package air

import (
	"github.com/vybium/shard-verifier/internal/shardverifier/domain"
	"github.com/vybium/shard-verifier/internal/shardverifier/field"
)

// ConstraintFolder is the view a chip's AIR evaluates its constraints
// against (§4.E). A chip's Eval method calls AssertZero once per
// constraint polynomial it checks; the folder accumulates every call into
// a single out-of-domain value via the standard Horner, α-powered folding
// discipline: accumulator = accumulator*α + constraint.
type ConstraintFolder struct {
	cfg field.Config

	Preprocessed AirOpenedValues
	Main         AirOpenedValues
	// Perm holds the unflattened permutation opening: the flat length
	// w*D coefficient vectors reassembled into w extension elements via
	// the monomial basis (§4.E's unflattening contract).
	Perm AirOpenedValues

	PermChallenges []field.Extension
	CumulativeSum  field.Extension

	IsFirstRow   field.Extension
	IsLastRow    field.Extension
	IsTransition field.Extension

	Alpha       field.Extension
	Accumulator field.Extension

	PublicValues []field.Base
}

// NewConstraintFolder assembles a folder for one chip's opening, unflattening
// the permutation columns and zero-initializing the accumulator.
func NewConstraintFolder(
	cfg field.Config,
	opening ChipOpenedValues,
	sels domain.Selectors,
	alpha field.Extension,
	permChallenges []field.Extension,
	publicValues []field.Base,
) (*ConstraintFolder, error) {
	permLocal, err := field.Unflatten(cfg, opening.Permutation.Local)
	if err != nil {
		return nil, err
	}
	permNext, err := field.Unflatten(cfg, opening.Permutation.Next)
	if err != nil {
		return nil, err
	}

	return &ConstraintFolder{
		cfg:            cfg,
		Preprocessed:   opening.Preprocessed,
		Main:           opening.Main,
		Perm:           AirOpenedValues{Local: permLocal, Next: permNext},
		PermChallenges: permChallenges,
		CumulativeSum:  opening.CumulativeSum,
		IsFirstRow:     sels.IsFirstRow,
		IsLastRow:      sels.IsLastRow,
		IsTransition:   sels.IsTransition,
		Alpha:          alpha,
		Accumulator:    cfg.ExtZero(),
		PublicValues:   publicValues,
	}, nil
}

// AssertZero folds one constraint term into the accumulator: acc = acc*α + x.
// A chip's Eval implementation calls this once per constraint polynomial it
// wants to assert vanishes on the trace domain.
func (f *ConstraintFolder) AssertZero(x field.Extension) {
	f.Accumulator = f.cfg.ExtAdd(f.cfg.ExtMul(f.Accumulator, f.Alpha), x)
}

// FoldedConstraints returns the folder's accumulated value, i.e.
// folded_constraints(ζ) (§4.G step 5d).
func (f *ConstraintFolder) FoldedConstraints() field.Extension {
	return f.Accumulator
}

// EvalConstraints drives chip.Eval against a freshly built folder and
// returns the resulting folded_constraints(ζ) (§4.G's eval_constraints).
func EvalConstraints(
	cfg field.Config,
	chip Chip,
	opening ChipOpenedValues,
	sels domain.Selectors,
	alpha field.Extension,
	permChallenges []field.Extension,
	publicValues []field.Base,
) (field.Extension, error) {
	folder, err := NewConstraintFolder(cfg, opening, sels, alpha, permChallenges, publicValues)
	if err != nil {
		return nil, err
	}
	chip.Eval(folder)
	return folder.FoldedConstraints(), nil
}
