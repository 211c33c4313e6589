package verify

import (
	"fmt"

	"github.com/vybium/shard-verifier/internal/shardverifier/air"
)

// VerificationError is the closed taxonomy of §6/§7: every failure mode
// verify_shard can return, terminal for the enclosing call.
type VerificationError struct {
	kind         verificationErrorKind
	chipName     string
	openingShape *air.ShapeError
	cause        error
}

type verificationErrorKind int

const (
	kindInvalidOpeningArgument verificationErrorKind = iota
	kindOodEvaluationMismatch
	kindOpeningShapeError
	kindMissingCPUChip
	kindChipOpeningLengthMismatch
)

func (e *VerificationError) Error() string {
	switch e.kind {
	case kindInvalidOpeningArgument:
		return fmt.Sprintf("invalid opening argument: %v", e.cause)
	case kindOodEvaluationMismatch:
		return fmt.Sprintf("out-of-domain evaluation mismatch on chip %s", e.chipName)
	case kindOpeningShapeError:
		return fmt.Sprintf("invalid opening shape for chip %s: %s(expected %d, got %d)",
			e.chipName, e.openingShape.Kind, e.openingShape.Expected, e.openingShape.Actual)
	case kindMissingCPUChip:
		return "missing CPU chip in shard"
	case kindChipOpeningLengthMismatch:
		return "chip opening length mismatch"
	default:
		return "unknown verification error"
	}
}

func (e *VerificationError) Unwrap() error { return e.cause }

// ChipName returns the offending chip's name, when the error carries one
// (§7: "user-visible failures carry the offending chip name wherever
// possible").
func (e *VerificationError) ChipName() (string, bool) {
	switch e.kind {
	case kindOodEvaluationMismatch, kindOpeningShapeError:
		return e.chipName, true
	default:
		return "", false
	}
}

func errInvalidOpeningArgument(cause error) *VerificationError {
	return &VerificationError{kind: kindInvalidOpeningArgument, cause: cause}
}

func errOodEvaluationMismatch(chipName string) *VerificationError {
	return &VerificationError{kind: kindOodEvaluationMismatch, chipName: chipName}
}

func errOpeningShapeError(chipName string, shape *air.ShapeError) *VerificationError {
	return &VerificationError{kind: kindOpeningShapeError, chipName: chipName, openingShape: shape}
}

// ErrMissingCPUChip reports that the shard's mandatory CPU chip is absent
// from chip_ordering.
var ErrMissingCPUChip = &VerificationError{kind: kindMissingCPUChip}

// ErrChipOpeningLengthMismatch reports chips.len() != opened_values.chips.len().
var ErrChipOpeningLengthMismatch = &VerificationError{kind: kindChipOpeningLengthMismatch}

// IsOodEvaluationMismatch reports whether err is an algebraic OOD mismatch.
func IsOodEvaluationMismatch(err error) bool {
	ve, ok := err.(*VerificationError)
	return ok && ve.kind == kindOodEvaluationMismatch
}

// IsOpeningShapeError reports whether err is a structural shape error.
func IsOpeningShapeError(err error) bool {
	ve, ok := err.(*VerificationError)
	return ok && ve.kind == kindOpeningShapeError
}

// IsInvalidOpeningArgument reports whether err is a PCS rejection.
func IsInvalidOpeningArgument(err error) bool {
	ve, ok := err.(*VerificationError)
	return ok && ve.kind == kindInvalidOpeningArgument
}
