package air

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vybium/shard-verifier/internal/shardverifier/domain"
	"github.com/vybium/shard-verifier/internal/shardverifier/field"
)

func testConfig(t *testing.T) *field.NativeConfig {
	t.Helper()
	cfg, err := field.NewNativeConfig(big.NewInt(18446744069414584321), 2, big.NewInt(7), big.NewInt(7))
	require.NoError(t, err)
	return cfg
}

// noopChip has no preprocessed columns, one main column, no permutation
// argument, and a single quotient chunk; Eval never calls AssertZero, so
// its folded_constraints(ζ) is always the zero extension element.
type noopChip struct{}

func (noopChip) Name() string              { return "noop" }
func (noopChip) PreprocessedWidth() int    { return 0 }
func (noopChip) Width() int                { return 1 }
func (noopChip) PermutationWidth() int     { return 0 }
func (noopChip) QuotientWidth() int        { return 1 }
func (noopChip) LogQuotientDegree() int    { return 0 }
func (noopChip) Eval(folder *ConstraintFolder) {}

// publicValueChip asserts its single main column equals its public value,
// a real, nonzero-unless-satisfied constraint — unlike noopChip, whose
// Eval never calls AssertZero and so can never distinguish a tampered
// public value from a valid one.
type publicValueChip struct{ cfg field.Config }

func (publicValueChip) Name() string              { return "public_value" }
func (publicValueChip) PreprocessedWidth() int     { return 0 }
func (publicValueChip) Width() int                 { return 1 }
func (publicValueChip) PermutationWidth() int      { return 0 }
func (publicValueChip) QuotientWidth() int         { return 1 }
func (publicValueChip) LogQuotientDegree() int     { return 0 }
func (c publicValueChip) Eval(folder *ConstraintFolder) {
	want := c.cfg.Embed(folder.PublicValues[0])
	folder.AssertZero(c.cfg.ExtSub(folder.Main.Local[0], want))
}

func extOf(cfg *field.NativeConfig, v int) field.Extension {
	return cfg.Embed(field.NewBase(big.NewInt(int64(v))))
}

func validOpening(cfg *field.NativeConfig) ChipOpenedValues {
	d := cfg.Degree()
	return ChipOpenedValues{
		Preprocessed: AirOpenedValues{Local: nil, Next: nil},
		Main:         AirOpenedValues{Local: []field.Extension{extOf(cfg, 1)}, Next: []field.Extension{extOf(cfg, 1)}},
		Permutation:  FlatPermutation{Local: nil, Next: nil},
		Quotient:     [][]field.Base{make([]field.Base, d)},
		LogDegree:    2,
	}
}

func TestVerifyOpeningShapeAccepts(t *testing.T) {
	cfg := testConfig(t)
	opening := validOpening(cfg)
	require.Nil(t, VerifyOpeningShape(cfg, noopChip{}, opening))
}

func TestVerifyOpeningShapeRejectsWrongMainWidth(t *testing.T) {
	cfg := testConfig(t)
	opening := validOpening(cfg)
	opening.Main.Local = []field.Extension{extOf(cfg, 1), extOf(cfg, 2)}

	err := VerifyOpeningShape(cfg, noopChip{}, opening)
	require.NotNil(t, err)
	require.Equal(t, MainWidthMismatch, err.Kind)
}

func TestVerifyOpeningShapeRejectsWrongQuotientChunkSize(t *testing.T) {
	cfg := testConfig(t)
	opening := validOpening(cfg)
	opening.Quotient = [][]field.Base{{field.NewBase(big.NewInt(0))}} // should be length D=2

	err := VerifyOpeningShape(cfg, noopChip{}, opening)
	require.NotNil(t, err)
	require.Equal(t, QuotientChunkSizeMismatch, err.Kind)
}

func TestRecomputeQuotientOfAllZeroChunksIsZero(t *testing.T) {
	assert := require.New(t)
	cfg := testConfig(t)

	base, err := domain.New(cfg, cfg.One(), 2)
	assert.NoError(err)
	disjoint, err := base.CreateDisjointDomain(4)
	assert.NoError(err)
	qcDomains, err := disjoint.SplitDomains(1)
	assert.NoError(err)

	opening := validOpening(cfg)
	zeta := cfg.Embed(field.NewBase(big.NewInt(123)))

	got, err := RecomputeQuotient(cfg, opening, qcDomains, zeta)
	assert.NoError(err)
	assert.True(cfg.ExtIsZero(got))
}

func TestEvalConstraintsNoopChipYieldsZero(t *testing.T) {
	assert := require.New(t)
	cfg := testConfig(t)

	base, err := domain.New(cfg, cfg.One(), 2)
	assert.NoError(err)
	zeta := cfg.Embed(field.NewBase(big.NewInt(123)))
	sels, err := base.SelectorsAtPoint(zeta)
	assert.NoError(err)

	opening := validOpening(cfg)
	alpha := cfg.Embed(field.NewBase(big.NewInt(5)))

	folded, err := EvalConstraints(cfg, noopChip{}, opening, sels, alpha, nil, nil)
	assert.NoError(err)
	assert.True(cfg.ExtIsZero(folded))
}

// TestEvalConstraintsRealChipYieldsZeroOnlyWhenPublicValueMatches exercises
// a chip whose Eval actually asserts a constraint, showing folded(ζ) tracks
// whether the main opening agrees with the claimed public value rather
// than being vacuously zero regardless of input.
func TestEvalConstraintsRealChipYieldsZeroOnlyWhenPublicValueMatches(t *testing.T) {
	assert := require.New(t)
	cfg := testConfig(t)

	base, err := domain.New(cfg, cfg.One(), 2)
	assert.NoError(err)
	zeta := cfg.Embed(field.NewBase(big.NewInt(123)))
	sels, err := base.SelectorsAtPoint(zeta)
	assert.NoError(err)

	opening := validOpening(cfg) // Main.Local[0] == extOf(cfg, 1)
	alpha := cfg.Embed(field.NewBase(big.NewInt(5)))
	chip := publicValueChip{cfg: cfg}

	matching := []field.Base{cfg.One()}
	folded, err := EvalConstraints(cfg, chip, opening, sels, alpha, nil, matching)
	assert.NoError(err)
	assert.True(cfg.ExtIsZero(folded))

	tampered := []field.Base{cfg.Zero()}
	folded, err = EvalConstraints(cfg, chip, opening, sels, alpha, nil, tampered)
	assert.NoError(err)
	assert.False(cfg.ExtIsZero(folded))
}
