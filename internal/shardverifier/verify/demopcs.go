package verify

import (
	"fmt"

	"github.com/vybium/shard-verifier/internal/shardverifier/domain"
	"github.com/vybium/shard-verifier/internal/shardverifier/field"
)

// TrivialPCS is a placeholder PCS implementation. The real polynomial
// commitment scheme (FRI, its domain-splitting, its batched opening proof)
// is an external collaborator the core treats as a black box (§1's
// Non-goals: "the core does not generate proofs, does not perform FFTs");
// no such scheme is implemented in this module. TrivialPCS exists only so
// the CLI and tests can exercise ShardVerifier's wiring end to end without
// a real PCS: its Verify accepts any opening_proof unconditionally and
// performs no cryptographic check whatsoever. It MUST NOT be used to
// accept untrusted proofs.
type TrivialPCS struct {
	Cfg field.Config
}

// NaturalDomainForDegree builds the multiplicative subgroup of the
// requested size, with offset one (the shape a real PCS's
// natural_domain_for_degree would return for a freshly committed trace).
func (p TrivialPCS) NaturalDomainForDegree(cfg field.Config, degree int) (*domain.Domain, error) {
	logLength := 0
	for (1 << logLength) < degree {
		logLength++
	}
	if 1<<logLength != degree {
		return nil, fmt.Errorf("demopcs: degree %d is not a power of two", degree)
	}
	return domain.New(cfg, cfg.One(), logLength)
}

// Verify always succeeds. See TrivialPCS's doc comment: it performs no
// cryptographic verification.
func (p TrivialPCS) Verify(batches []OpeningBatch, openingProof any, ch Challenger) error {
	return nil
}
