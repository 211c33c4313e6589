package verify

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vybium/shard-verifier/internal/shardverifier/air"
	"github.com/vybium/shard-verifier/internal/shardverifier/challenger"
	"github.com/vybium/shard-verifier/internal/shardverifier/field"
)

func testConfig(t *testing.T) *field.NativeConfig {
	t.Helper()
	cfg, err := field.NewNativeConfig(big.NewInt(18446744069414584321), 2, big.NewInt(7), big.NewInt(7))
	require.NoError(t, err)
	return cfg
}

// noopChip has no preprocessed columns, one main column, no permutation
// argument, and a single quotient chunk; Eval never asserts anything, so
// folded_constraints(ζ) is always zero — this lets a test build a proof
// whose OOD identity holds without fabricating a real trace.
type noopChip struct{ name string }

func (c noopChip) Name() string                  { return c.name }
func (noopChip) PreprocessedWidth() int          { return 0 }
func (noopChip) Width() int                      { return 1 }
func (noopChip) PermutationWidth() int           { return 0 }
func (noopChip) QuotientWidth() int              { return 1 }
func (noopChip) LogQuotientDegree() int          { return 0 }
func (noopChip) Eval(folder *air.ConstraintFolder) {}

func validProof(cfg *field.NativeConfig) (StarkVerifyingKey, []air.Chip, ShardProof) {
	d := cfg.Degree()
	chips := []air.Chip{noopChip{name: "alpha"}}
	opening := air.ChipOpenedValues{
		Main:      air.AirOpenedValues{Local: []field.Extension{cfg.Embed(cfg.One())}, Next: []field.Extension{cfg.Embed(cfg.One())}},
		Quotient:  [][]field.Base{make([]field.Base, d)},
		LogDegree: 2,
	}
	proof := ShardProof{
		ChipOrdering: map[string]int{"alpha": 0},
		OpenedValues: OpeningsOf(opening),
		PublicValues: nil,
	}
	vk := StarkVerifyingKey{}
	return vk, chips, proof
}

// OpeningsOf is a small local helper building an OpenedValues from a single
// chip's opening, keeping validProof's literal compact.
func OpeningsOf(o air.ChipOpenedValues) OpenedValues {
	return OpenedValues{Chips: []air.ChipOpenedValues{o}}
}

// publicValueChip asserts its single main column's local value equals the
// shard's first public value embedded into the extension field — a real,
// nonzero-unless-satisfied constraint, unlike noopChip's always-vacuous
// Eval. It exists to exercise the OOD evaluation mismatch path (§7
// scenario S6: "tamper a single public-value byte pre-verify"), which a
// chip whose Eval never calls AssertZero can never trigger regardless of
// what proof.PublicValues holds.
type publicValueChip struct {
	cfg  field.Config
	name string
}

func (c publicValueChip) Name() string         { return c.name }
func (publicValueChip) PreprocessedWidth() int { return 0 }
func (publicValueChip) Width() int             { return 1 }
func (publicValueChip) PermutationWidth() int  { return 0 }
func (publicValueChip) QuotientWidth() int     { return 1 }
func (publicValueChip) LogQuotientDegree() int { return 0 }

func (c publicValueChip) Eval(folder *air.ConstraintFolder) {
	want := c.cfg.Embed(folder.PublicValues[0])
	folder.AssertZero(c.cfg.ExtSub(folder.Main.Local[0], want))
}

// validPublicValueProof builds a proof for a single publicValueChip whose
// main column is pinned to match its public value exactly, so the OOD
// identity holds until either side is tampered.
func validPublicValueProof(cfg *field.NativeConfig) (StarkVerifyingKey, []air.Chip, ShardProof) {
	d := cfg.Degree()
	publicValue := cfg.One()
	chips := []air.Chip{publicValueChip{cfg: cfg, name: "alpha"}}
	opening := air.ChipOpenedValues{
		Main:      air.AirOpenedValues{Local: []field.Extension{cfg.Embed(publicValue)}, Next: []field.Extension{cfg.Embed(publicValue)}},
		Quotient:  [][]field.Base{make([]field.Base, d)},
		LogDegree: 2,
	}
	proof := ShardProof{
		ChipOrdering: map[string]int{"alpha": 0},
		OpenedValues: OpeningsOf(opening),
		PublicValues: []field.Base{publicValue},
	}
	vk := StarkVerifyingKey{}
	return vk, chips, proof
}

func TestVerifyShardAcceptsTrivialProof(t *testing.T) {
	assert := require.New(t)
	cfg := testConfig(t)

	vk, chips, proof := validProof(cfg)
	pcs := TrivialPCS{Cfg: cfg}
	v := New(cfg, pcs)

	ch := challenger.New(cfg)
	ch.Observe(proof.Commitment.Main)

	err := v.VerifyShard(vk, chips, ch, proof)
	assert.NoError(err)
}

func TestVerifyShardRejectsChipLengthMismatch(t *testing.T) {
	assert := require.New(t)
	cfg := testConfig(t)

	vk, chips, proof := validProof(cfg)
	chips = append(chips, noopChip{name: "beta"}) // one more chip than openings

	pcs := TrivialPCS{Cfg: cfg}
	v := New(cfg, pcs)
	ch := challenger.New(cfg)

	err := v.VerifyShard(vk, chips, ch, proof)
	assert.ErrorIs(err, ErrChipOpeningLengthMismatch)
}

func TestVerifyShardRejectsMissingCPUChip(t *testing.T) {
	assert := require.New(t)
	cfg := testConfig(t)

	vk, chips, proof := validProof(cfg)
	pcs := TrivialPCS{Cfg: cfg}
	v := New(cfg, pcs)
	v.CPUChipName = "CPU"
	ch := challenger.New(cfg)

	err := v.VerifyShard(vk, chips, ch, proof)
	assert.ErrorIs(err, ErrMissingCPUChip)
}

func TestVerifyShardRejectsOpeningShapeMismatch(t *testing.T) {
	assert := require.New(t)
	cfg := testConfig(t)

	vk, chips, proof := validProof(cfg)
	proof.OpenedValues.Chips[0].Main.Local = append(proof.OpenedValues.Chips[0].Main.Local, cfg.Embed(cfg.One()))

	pcs := TrivialPCS{Cfg: cfg}
	v := New(cfg, pcs)
	ch := challenger.New(cfg)
	ch.Observe(proof.Commitment.Main)

	err := v.VerifyShard(vk, chips, ch, proof)
	assert.Error(err)
	assert.True(IsOpeningShapeError(err))
}

// TestVerifyShardAcceptsProofWithRealConstraint is §7 scenario S5 run
// against a chip whose Eval actually asserts something, rather than
// noopChip's vacuous identity.
func TestVerifyShardAcceptsProofWithRealConstraint(t *testing.T) {
	assert := require.New(t)
	cfg := testConfig(t)

	vk, chips, proof := validPublicValueProof(cfg)
	pcs := TrivialPCS{Cfg: cfg}
	v := New(cfg, pcs)

	ch := challenger.New(cfg)
	ch.Observe(proof.Commitment.Main)

	err := v.VerifyShard(vk, chips, ch, proof)
	assert.NoError(err)
}

// TestVerifyShardRejectsTamperedPublicValue is §7 scenario S6: tampering a
// single public value after the proof was built must surface as an
// OodEvaluationMismatch, since publicValueChip's constraint no longer
// vanishes against the (unchanged) main column opening.
func TestVerifyShardRejectsTamperedPublicValue(t *testing.T) {
	assert := require.New(t)
	cfg := testConfig(t)

	vk, chips, proof := validPublicValueProof(cfg)
	proof.PublicValues[0] = cfg.Zero() // tamper: was cfg.One()

	pcs := TrivialPCS{Cfg: cfg}
	v := New(cfg, pcs)
	ch := challenger.New(cfg)
	ch.Observe(proof.Commitment.Main)

	err := v.VerifyShard(vk, chips, ch, proof)
	assert.Error(err)
	assert.True(IsOodEvaluationMismatch(err))
}
