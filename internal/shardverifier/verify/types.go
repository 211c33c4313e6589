// Package verify implements the shard verifier's master algorithm
// (component G): it derives challenges, assembles the four PCS opening
// batches, and runs the per-chip shape + algebraic checks.
package verify

import (
	"github.com/vybium/shard-verifier/internal/shardverifier/air"
	"github.com/vybium/shard-verifier/internal/shardverifier/domain"
	"github.com/vybium/shard-verifier/internal/shardverifier/field"
)

// ShardCommitment bundles the three PCS commitments a shard proof carries
// (§3 ShardProof.commitment).
type ShardCommitment struct {
	Main        field.Digest
	Permutation field.Digest
	Quotient    field.Digest
}

// OpenedValues is the ordered sequence of per-chip openings (§3
// ShardProof.opened_values).
type OpenedValues struct {
	Chips []air.ChipOpenedValues
}

// ShardProof is the immutable proof object the verifier checks (§3
// ShardProof). OpeningProof is opaque PCS data, passed through unexamined
// to PCS.Verify.
type ShardProof struct {
	Commitment    ShardCommitment
	OpenedValues  OpenedValues
	OpeningProof  any
	ChipOrdering  map[string]int
	PublicValues  []field.Base
}

// ChipInfo is one entry of a verifying key's chip_information: the chip's
// name, its fixed trace domain, and an opaque shape descriptor the PCS/chip
// registry uses to reconstruct the chip (§3 StarkVerifyingKey).
type ChipInfo struct {
	Name   string
	Domain *domain.Domain
	Shape  any
}

// StarkVerifyingKey is the public parameters the shard verifier checks a
// proof against (§3 StarkVerifyingKey).
type StarkVerifyingKey struct {
	Commit          field.Digest
	PCStart         field.Base
	ChipInformation []ChipInfo
	ChipOrdering    map[string]int
}

// OpeningBatch is one of the four (commitment, domain/point/values) groups
// the verifier hands to the PCS (§4.G step 3): for each domain, the
// sequence of (point, values) pairs opened against that domain.
type OpeningBatch struct {
	Commit field.Digest
	Opens  []DomainOpenings
}

// DomainOpenings is every (point, values) opening claimed against one
// domain within a single commitment.
type DomainOpenings struct {
	Domain *domain.Domain
	Points []PointOpening
}

// PointOpening is one claimed opening: the evaluation point and the
// per-column values claimed at that point.
type PointOpening struct {
	Point  field.Extension
	Values []field.Extension
}

// PCS is the black-box polynomial commitment scheme the verifier invokes
// (§1, §6: "the core invokes pcs.verify(...) as a black box").
type PCS interface {
	NaturalDomainForDegree(cfg field.Config, degree int) (*domain.Domain, error)
	Verify(batches []OpeningBatch, openingProof any, ch Challenger) error
}

// Challenger is the subset of challenger.DuplexChallenger's surface the PCS
// needs to borrow during verification (§5: "the PCS may internally borrow
// [the challenger] for FRI-style derivations but MUST relinquish it in the
// same state it would reach by linear observation").
type Challenger interface {
	Observe(d field.Digest)
	SampleExtElement() field.Extension
}
