package shardverifier

import (
	"math/big"

	"github.com/vybium/shard-verifier/internal/shardverifier/air"
	"github.com/vybium/shard-verifier/internal/shardverifier/challenger"
	"github.com/vybium/shard-verifier/internal/shardverifier/domain"
	"github.com/vybium/shard-verifier/internal/shardverifier/field"
	"github.com/vybium/shard-verifier/internal/shardverifier/merkle"
	"github.com/vybium/shard-verifier/internal/shardverifier/verify"
)

// Base is a single base-field element.
type Base = field.Base

// Extension is an element of the degree-D extension field.
type Extension = field.Extension

// Digest is a fixed-width cryptographic digest.
type Digest = field.Digest

// FieldConfig is the abstract field & hash capability the verifier is
// generic over.
type FieldConfig = field.Config

// NativeConfig is the concrete big.Int-backed FieldConfig implementation.
type NativeConfig = field.NativeConfig

// Domain is a two-adic multiplicative coset domain.
type Domain = domain.Domain

// Challenger is the Fiat-Shamir transcript sponge.
type Challenger = challenger.DuplexChallenger

// MerkleTree is a bit-reversed Merkle vector commitment.
type MerkleTree = merkle.Tree

// Chip is the capability an AIR definition exposes to the verifier.
type Chip = air.Chip

// ChipOpenedValues is one chip's slice of a ShardProof's opened values.
type ChipOpenedValues = air.ChipOpenedValues

// ShardProof is the proof object the verifier checks.
type ShardProof = verify.ShardProof

// ShardCommitment bundles a shard proof's three PCS commitments.
type ShardCommitment = verify.ShardCommitment

// StarkVerifyingKey is the public parameters a shard proof is checked
// against.
type StarkVerifyingKey = verify.StarkVerifyingKey

// PCS is the black-box polynomial commitment scheme the verifier invokes.
type PCS = verify.PCS

// VerificationError is the closed taxonomy of verification failure modes.
type VerificationError = verify.VerificationError

// ShardVerifier orchestrates the master verify_shard algorithm.
type ShardVerifier = verify.ShardVerifier

// NewShardVerifier constructs a ShardVerifier bound to cfg and pcs.
func NewShardVerifier(cfg FieldConfig, pcs PCS) *ShardVerifier {
	return verify.New(cfg, pcs)
}

// NewNativeConfig builds a NativeConfig for the given modulus, extension
// degree, non-residue, and generator.
func NewNativeConfig(modulus *big.Int, degree int, nonResidue, generator *big.Int) (*NativeConfig, error) {
	return field.NewNativeConfig(modulus, degree, nonResidue, generator)
}
