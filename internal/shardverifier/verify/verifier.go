package verify

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/vybium/shard-verifier/internal/shardverifier/air"
	"github.com/vybium/shard-verifier/internal/shardverifier/domain"
	"github.com/vybium/shard-verifier/internal/shardverifier/field"
)

// ShardVerifier orchestrates components B through F (§4.G). It holds no
// state across calls to VerifyShard: every invocation is handed its own
// challenger, per §5's single-owner-per-call scheduling model.
type ShardVerifier struct {
	Cfg    field.Config
	PCS    PCS
	Logger zerolog.Logger

	// CPUChipName, if non-empty, is asserted present in ChipOrdering
	// before any other work runs (VerificationError.MissingCpuChip).
	// Left empty by default: the original source's MissingCpuChip variant
	// guards a machine-level invariant (every shard must bind its public
	// values through a CPU chip) that is a whole-machine policy, not a
	// per-verify_shard algorithmic step — see DESIGN.md's open-question
	// note.
	CPUChipName string
}

// New builds a ShardVerifier with a no-op logger (zerolog.Nop()).
func New(cfg field.Config, pcs PCS) *ShardVerifier {
	return &ShardVerifier{Cfg: cfg, PCS: pcs, Logger: zerolog.Nop()}
}

// VerifyShard runs the master algorithm of §4.G. chips and
// proof.OpenedValues.Chips must be the same length and in the same order
// (invariant 1); challenger is assumed to have already observed the main
// commitment (§2 step 2 / §4.G's design note: "the main commit is assumed
// to already have been observed prior to entry").
func (v *ShardVerifier) VerifyShard(
	vk StarkVerifyingKey,
	chips []air.Chip,
	ch Challenger,
	proof ShardProof,
) error {
	if v.CPUChipName != "" {
		if _, ok := proof.ChipOrdering[v.CPUChipName]; !ok {
			return ErrMissingCPUChip
		}
	}

	if len(chips) != len(proof.OpenedValues.Chips) {
		return ErrChipOpeningLengthMismatch
	}

	// Step 1: collect degrees and derive trace domains.
	logDegrees := make([]int, len(chips))
	logQDegrees := make([]int, len(chips))
	traceDomains := make([]*domain.Domain, len(chips))
	for i, chip := range chips {
		logDegrees[i] = int(proof.OpenedValues.Chips[i].LogDegree)
		logQDegrees[i] = chip.LogQuotientDegree()
		td, err := v.PCS.NaturalDomainForDegree(v.Cfg, 1<<logDegrees[i])
		if err != nil {
			return errInvalidOpeningArgument(fmt.Errorf("natural_domain_for_degree(%d): %w", 1<<logDegrees[i], err))
		}
		traceDomains[i] = td
	}

	// Step 2: derive challenges in the exact transcript-sensitive order.
	permutationChallenges := []field.Extension{ch.SampleExtElement(), ch.SampleExtElement()}
	ch.Observe(proof.Commitment.Permutation)
	alpha := ch.SampleExtElement()
	ch.Observe(proof.Commitment.Quotient)
	zeta := ch.SampleExtElement()

	v.Logger.Debug().Int("num_chips", len(chips)).Msg("derived challenges")

	// Step 3: assemble the four opening batches.
	preprocessed := OpeningBatch{Commit: vk.Commit}
	for _, info := range vk.ChipInformation {
		i, ok := proof.ChipOrdering[info.Name]
		if !ok || i < 0 || i >= len(proof.OpenedValues.Chips) {
			return errInvalidOpeningArgument(fmt.Errorf("chip_ordering: no valid index for chip %q", info.Name))
		}
		values := proof.OpenedValues.Chips[i].Preprocessed
		preprocessed.Opens = append(preprocessed.Opens, DomainOpenings{
			Domain: info.Domain,
			Points: []PointOpening{
				{Point: zeta, Values: values.Local},
				{Point: info.Domain.NextPoint(zeta), Values: values.Next},
			},
		})
	}

	main := OpeningBatch{Commit: proof.Commitment.Main}
	perm := OpeningBatch{Commit: proof.Commitment.Permutation}
	for i, td := range traceDomains {
		values := proof.OpenedValues.Chips[i]
		nextZeta := td.NextPoint(zeta)
		main.Opens = append(main.Opens, DomainOpenings{
			Domain: td,
			Points: []PointOpening{
				{Point: zeta, Values: values.Main.Local},
				{Point: nextZeta, Values: values.Main.Next},
			},
		})
		permLocal, err := field.Unflatten(v.Cfg, values.Permutation.Local)
		if err != nil {
			return errInvalidOpeningArgument(err)
		}
		permNext, err := field.Unflatten(v.Cfg, values.Permutation.Next)
		if err != nil {
			return errInvalidOpeningArgument(err)
		}
		perm.Opens = append(perm.Opens, DomainOpenings{
			Domain: td,
			Points: []PointOpening{
				{Point: zeta, Values: permLocal},
				{Point: nextZeta, Values: permNext},
			},
		})
	}

	quotientChunkDomains := make([][]*domain.Domain, len(chips))
	quotient := OpeningBatch{Commit: proof.Commitment.Quotient}
	for i, chip := range chips {
		quotientDegree := 1 << logQDegrees[i]
		qDomain, err := traceDomains[i].CreateDisjointDomain(1 << (logDegrees[i] + logQDegrees[i]))
		if err != nil {
			return errInvalidOpeningArgument(err)
		}
		qcDomains, err := qDomain.SplitDomains(quotientDegree)
		if err != nil {
			return errInvalidOpeningArgument(err)
		}
		quotientChunkDomains[i] = qcDomains

		values := proof.OpenedValues.Chips[i]
		for c, qcDomain := range qcDomains {
			if c >= len(values.Quotient) {
				break
			}
			chunkExt, err := field.Unflatten(v.Cfg, values.Quotient[c])
			if err != nil {
				return errInvalidOpeningArgument(err)
			}
			quotient.Opens = append(quotient.Opens, DomainOpenings{
				Domain: qcDomain,
				Points: []PointOpening{{Point: zeta, Values: chunkExt}},
			})
		}
		_ = chip
	}

	// Step 4: delegate to the PCS.
	batches := []OpeningBatch{preprocessed, main, perm, quotient}
	if err := v.PCS.Verify(batches, proof.OpeningProof, ch); err != nil {
		return errInvalidOpeningArgument(err)
	}

	// Step 5: per-chip shape + algebraic checks.
	for i, chip := range chips {
		opening := proof.OpenedValues.Chips[i]

		if shapeErr := air.VerifyOpeningShape(v.Cfg, chip, opening); shapeErr != nil {
			return errOpeningShapeError(chip.Name(), shapeErr)
		}

		sels, err := traceDomains[i].SelectorsAtPoint(zeta)
		if err != nil {
			return errInvalidOpeningArgument(fmt.Errorf("selectors_at_point: %w", err))
		}

		quotientAtZeta, err := air.RecomputeQuotient(v.Cfg, opening, quotientChunkDomains[i], zeta)
		if err != nil {
			return errInvalidOpeningArgument(fmt.Errorf("recompute_quotient: %w", err))
		}

		folded, err := air.EvalConstraints(v.Cfg, chip, opening, sels, alpha, permutationChallenges, proof.PublicValues)
		if err != nil {
			return errInvalidOpeningArgument(fmt.Errorf("eval_constraints: %w", err))
		}

		lhs := v.Cfg.ExtMul(folded, sels.InvZeroifier)
		if !v.Cfg.ExtEqual(lhs, quotientAtZeta) {
			v.Logger.Debug().Str("chip", chip.Name()).Msg("OOD evaluation mismatch")
			return errOodEvaluationMismatch(chip.Name())
		}
	}

	return nil
}
