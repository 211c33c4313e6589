package shardverifier

import "github.com/vybium/shard-verifier/internal/shardverifier/verify"

// ErrMissingCPUChip reports that a shard's mandatory CPU chip is absent.
var ErrMissingCPUChip = verify.ErrMissingCPUChip

// ErrChipOpeningLengthMismatch reports a chip-count mismatch between a
// proof and the chip registry it is checked against.
var ErrChipOpeningLengthMismatch = verify.ErrChipOpeningLengthMismatch

// IsOodEvaluationMismatch reports whether err is an algebraic out-of-domain
// evaluation mismatch.
func IsOodEvaluationMismatch(err error) bool { return verify.IsOodEvaluationMismatch(err) }

// IsOpeningShapeError reports whether err is a structural opening-shape
// error.
func IsOpeningShapeError(err error) bool { return verify.IsOpeningShapeError(err) }

// IsInvalidOpeningArgument reports whether err is a PCS rejection.
func IsInvalidOpeningArgument(err error) bool { return verify.IsInvalidOpeningArgument(err) }
