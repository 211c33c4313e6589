// Package witness implements the dual-mode read/write binding of §4.H: every
// verifier input type has a symmetric (write, read) pair so a native value
// can be serialized into a witness stream and reconstructed — by a circuit
// builder in the real system, or (here, since this module has no recursive
// circuit backend) by a second native pass that exercises the identical
// traversal order the contract requires.
//
// The load-bearing invariant, straight from the spec: write and read MUST
// visit fields in the same order. Every function pair below is written
// side by side for that reason — do not reorder one without the other.
package witness

import (
	"fmt"
	"math/big"

	"github.com/vybium/shard-verifier/internal/shardverifier/challenger"
	"github.com/vybium/shard-verifier/internal/shardverifier/field"
	"github.com/vybium/shard-verifier/internal/shardverifier/verify"
)

// Writer is the narrow capability a write pass needs: append one base-field
// element, or one boolean, to the witness stream.
type Writer interface {
	WriteBase(field.Base)
	WriteBit(bool)
}

// Reader is Writer's dual: consume one base-field element, or one boolean,
// from the witness stream, in the same order they were written.
type Reader interface {
	ReadBase() (field.Base, error)
	ReadBit() (bool, error)
}

// Stream is a concrete Writer/Reader pair backed by an in-memory slice pair.
// It plays the role the real system's circuit builder plays for a circuit
// Config: here, reading a Stream back reconstructs plain native values
// rather than symbolic variables, but the traversal contract is identical.
type Stream struct {
	bases []field.Base
	bits  []bool

	baseCursor int
	bitCursor  int
}

// NewStream returns an empty witness stream ready to be written to.
func NewStream() *Stream {
	return &Stream{}
}

func (s *Stream) WriteBase(b field.Base) { s.bases = append(s.bases, b) }
func (s *Stream) WriteBit(bit bool)      { s.bits = append(s.bits, bit) }

func (s *Stream) ReadBase() (field.Base, error) {
	if s.baseCursor >= len(s.bases) {
		return field.Base{}, fmt.Errorf("witness: base stream exhausted at index %d", s.baseCursor)
	}
	b := s.bases[s.baseCursor]
	s.baseCursor++
	return b, nil
}

func (s *Stream) ReadBit() (bool, error) {
	if s.bitCursor >= len(s.bits) {
		return false, fmt.Errorf("witness: bit stream exhausted at index %d", s.bitCursor)
	}
	b := s.bits[s.bitCursor]
	s.bitCursor++
	return b, nil
}

// WriteExtension writes each of an extension element's D monomial
// coefficients, in order.
func WriteExtension(e field.Extension, w Writer) {
	for _, c := range e {
		w.WriteBase(c)
	}
}

// ReadExtension reads degree coefficients back into an extension element.
func ReadExtension(r Reader, degree int) (field.Extension, error) {
	out := make(field.Extension, degree)
	for i := range out {
		b, err := r.ReadBase()
		if err != nil {
			return nil, fmt.Errorf("witness: extension element %d: %w", i, err)
		}
		out[i] = b
	}
	return out, nil
}

// WriteDigest writes a digest element-wise (§4.H: "Hash<F,W,DIGEST_ELEMENTS>
// as a [W; DIGEST_ELEMENTS]").
func WriteDigest(d field.Digest, w Writer) {
	for _, e := range d {
		w.WriteBase(e)
	}
}

// ReadDigest is WriteDigest's dual.
func ReadDigest(r Reader) (field.Digest, error) {
	var d field.Digest
	for i := range d {
		b, err := r.ReadBase()
		if err != nil {
			return field.Digest{}, fmt.Errorf("witness: digest element %d: %w", i, err)
		}
		d[i] = b
	}
	return d, nil
}

// WordSize is the lane count of a Word (§4.H: "a 4-lane wrapper").
const WordSize = 4

// Word is a fixed 4-lane value, generic over its lane representation —
// field.Base natively, a circuit variable in a recursive Config.
type Word[T any] [WordSize]T

// WriteWord writes a Word lane by lane using writeElem to write a single
// lane, matching the generic element-wise contract of §4.H.
func WriteWord[T any](w Word[T], out Writer, writeElem func(T, Writer)) {
	for _, lane := range w {
		writeElem(lane, out)
	}
}

// ReadWord is WriteWord's dual.
func ReadWord[T any](r Reader, readElem func(Reader) (T, error)) (Word[T], error) {
	var w Word[T]
	for i := range w {
		lane, err := readElem(r)
		if err != nil {
			return Word[T]{}, fmt.Errorf("witness: word lane %d: %w", i, err)
		}
		w[i] = lane
	}
	return w, nil
}

// WriteBaseElem and ReadBaseElem adapt a plain Base field to the
// writeElem/readElem shape WriteWord/ReadWord expect, for the common case of
// a Word[field.Base].
func WriteBaseElem(b field.Base, w Writer)      { w.WriteBase(b) }
func ReadBaseElem(r Reader) (field.Base, error) { return r.ReadBase() }

// WriteChallenger serializes a challenger's full state, sponge first, then
// the two buffers — the same order Read reconstructs them in.
func WriteChallenger(ch *challenger.DuplexChallenger, w Writer) {
	state := ch.State()
	for _, b := range state {
		w.WriteBase(b)
	}
	input := ch.InputBuffer()
	w.WriteBase(field.NewBase(big.NewInt(int64(len(input)))))
	for _, b := range input {
		w.WriteBase(b)
	}
	output := ch.OutputBuffer()
	w.WriteBase(field.NewBase(big.NewInt(int64(len(output)))))
	for _, b := range output {
		w.WriteBase(b)
	}
}

// ReadChallenger reconstructs a DuplexChallenger from a stream written by
// WriteChallenger, restoring it via challenger.Restore.
func ReadChallenger(cfg field.Config, r Reader) (*challenger.DuplexChallenger, error) {
	var state [16]field.Base
	for i := range state {
		b, err := r.ReadBase()
		if err != nil {
			return nil, fmt.Errorf("witness: challenger sponge_state[%d]: %w", i, err)
		}
		state[i] = b
	}
	input, err := readBaseSlice(r, "input_buffer")
	if err != nil {
		return nil, err
	}
	output, err := readBaseSlice(r, "output_buffer")
	if err != nil {
		return nil, err
	}
	return challenger.Restore(cfg, state, input, output), nil
}

func readBaseSlice(r Reader, label string) ([]field.Base, error) {
	lenElem, err := r.ReadBase()
	if err != nil {
		return nil, fmt.Errorf("witness: %s length: %w", label, err)
	}
	n := int(lenElem.Big().Int64())
	out := make([]field.Base, n)
	for i := range out {
		b, err := r.ReadBase()
		if err != nil {
			return nil, fmt.Errorf("witness: %s[%d]: %w", label, i, err)
		}
		out[i] = b
	}
	return out, nil
}

// VerifyingKeyCore is what §4.H says a StarkVerifyingKey witnesses: commit
// and pc_start only. chip_information/chip_ordering are carried as plain
// metadata, constants of the circuit rather than witnessed values.
type VerifyingKeyCore struct {
	Commit  field.Digest
	PCStart field.Base
}

// WriteVerifyingKey writes only the witnessed fields of a StarkVerifyingKey.
func WriteVerifyingKey(vk verify.StarkVerifyingKey, w Writer) {
	WriteDigest(vk.Commit, w)
	w.WriteBase(vk.PCStart)
}

// ReadVerifyingKey is WriteVerifyingKey's dual.
func ReadVerifyingKey(r Reader) (VerifyingKeyCore, error) {
	commit, err := ReadDigest(r)
	if err != nil {
		return VerifyingKeyCore{}, fmt.Errorf("witness: verifying key commit: %w", err)
	}
	pcStart, err := r.ReadBase()
	if err != nil {
		return VerifyingKeyCore{}, fmt.Errorf("witness: verifying key pc_start: %w", err)
	}
	return VerifyingKeyCore{Commit: commit, PCStart: pcStart}, nil
}

// fromBool is the from_bool(b) coercion §4.H requires before reading an
// is_complete boolean: the bit is first lifted to a base-field element (1 or
// 0), then that element is written/read like any other scalar.
func fromBool(cfg field.Config, b bool) field.Base {
	if b {
		return cfg.One()
	}
	return cfg.Zero()
}

// ShardWitness is the composite witness the recursive aggregation layer
// binds per shard: the verifying key core and the two challengers that
// straddle the shard's transcript (the one the leaf signed its transcript
// against, and the one reconstructing it), plus the is_complete flag. Fields
// are written/read in this exact order (§4.H's composite-struct contract).
type ShardWitness struct {
	VerifyingKey          VerifyingKeyCore
	LeafChallenger        *challenger.DuplexChallenger
	ReconstructChallenger *challenger.DuplexChallenger
	IsComplete            bool
}

// WriteShardWitness writes a ShardWitness's constituents in field order.
func WriteShardWitness(cfg field.Config, sw ShardWitness, w Writer) {
	WriteDigest(sw.VerifyingKey.Commit, w)
	w.WriteBase(sw.VerifyingKey.PCStart)
	WriteChallenger(sw.LeafChallenger, w)
	WriteChallenger(sw.ReconstructChallenger, w)
	w.WriteBase(fromBool(cfg, sw.IsComplete))
}

// ReadShardWitness is WriteShardWitness's dual, reconstructing in the same
// field order it was written in.
func ReadShardWitness(cfg field.Config, r Reader) (ShardWitness, error) {
	vk, err := ReadVerifyingKey(r)
	if err != nil {
		return ShardWitness{}, err
	}
	leaf, err := ReadChallenger(cfg, r)
	if err != nil {
		return ShardWitness{}, fmt.Errorf("witness: leaf_challenger: %w", err)
	}
	reconstruct, err := ReadChallenger(cfg, r)
	if err != nil {
		return ShardWitness{}, fmt.Errorf("witness: reconstruct_challenger: %w", err)
	}
	isCompleteElem, err := r.ReadBase()
	if err != nil {
		return ShardWitness{}, fmt.Errorf("witness: is_complete: %w", err)
	}
	return ShardWitness{
		VerifyingKey:          vk,
		LeafChallenger:        leaf,
		ReconstructChallenger: reconstruct,
		IsComplete:            !cfg.IsZero(isCompleteElem),
	}, nil
}
