// Package shardverifier is the public facade over the shard verifier core:
// type aliases for the proof/verifying-key/field types a caller assembles a
// ShardProof from, and the entry point for running verify_shard against it.
//
// The actual algorithm lives in internal/shardverifier/*; this package only
// re-exports the surface a consumer needs, following the teacher's
// pkg/vybium-starks-vm split between an internal implementation and a
// narrow public API.
package shardverifier
