// Package challenger implements the Fiat–Shamir transcript sponge
// (component B): observe commitments, sample extension-field challenges.
//
// Adapted from the teacher's utils.Channel, which keeps a running SHA-3
// state and a flat proof-transcript log. This version is specialized to the
// shard verifier's two operations (observe a Digest, sample an Extension)
// and additionally exposes the sponge's internal buffers so the witness
// binding layer (component H) can read/write a DuplexChallenger symmetric
// with the recursive circuit's own transcript state.
package challenger

import (
	"math/big"

	"golang.org/x/crypto/sha3"

	"github.com/vybium/shard-verifier/internal/shardverifier/field"
)

// spongeWidth mirrors the teacher's 16-element sponge state used for
// DuplexChallenger in the original source (sponge_state), split into an
// 8-element rate (input/output buffer) and 8-element capacity.
const (
	spongeWidth = 16
	rateWidth   = 8
)

// DuplexChallenger is a Fiat–Shamir transcript sponge over base-field
// elements. It owns no shared mutable state beyond itself: per §5, each
// verify_shard call constructs and drives its own challenger.
type DuplexChallenger struct {
	cfg field.Config

	spongeState  [spongeWidth]field.Base
	inputBuffer  []field.Base
	outputBuffer []field.Base
}

// New creates a fresh challenger with an all-zero sponge state, matching
// the teacher's NewChannel with an empty running state.
func New(cfg field.Config) *DuplexChallenger {
	c := &DuplexChallenger{cfg: cfg}
	for i := range c.spongeState {
		c.spongeState[i] = cfg.Zero()
	}
	return c
}

// Observe absorbs a digest into the transcript.
func (c *DuplexChallenger) Observe(d field.Digest) {
	for _, b := range d {
		c.absorb(b)
	}
}

// ObservePublicValues absorbs a sequence of public-value field elements,
// the step the master algorithm performs before entry (§4.G step 2 assumes
// the main commit has already been observed; public values are absorbed by
// the same mechanism by callers that need to bind them into the transcript).
func (c *DuplexChallenger) ObservePublicValues(values []field.Base) {
	for _, v := range values {
		c.absorb(v)
	}
}

func (c *DuplexChallenger) absorb(b field.Base) {
	c.inputBuffer = append(c.inputBuffer, b)
	c.outputBuffer = nil
	if len(c.inputBuffer) >= rateWidth {
		c.duplex()
	}
}

// SampleBase squeezes a single base-field element from the sponge.
func (c *DuplexChallenger) SampleBase() field.Base {
	if len(c.outputBuffer) == 0 {
		c.duplex()
	}
	out := c.outputBuffer[0]
	c.outputBuffer = c.outputBuffer[1:]
	return out
}

// SampleExtElement squeezes D base-field elements and assembles them (via
// the monomial basis) into one extension-field challenge — this is the
// challenger's sample_ext_element() of §2.B.
func (c *DuplexChallenger) SampleExtElement() field.Extension {
	d := c.cfg.Degree()
	coeffs := make([]field.Base, d)
	for i := 0; i < d; i++ {
		coeffs[i] = c.SampleBase()
	}
	acc := c.cfg.ExtZero()
	for i, coeff := range coeffs {
		acc = c.cfg.ExtAdd(acc, c.cfg.ExtScale(c.cfg.Monomial(i), coeff))
	}
	return acc
}

// duplex permutes the sponge state, absorbing whatever is pending in the
// input buffer and refilling the output buffer, matching a standard duplex
// construction (the teacher's Channel re-hashes its whole running state on
// every interaction; this keeps that "permute on every absorb/squeeze
// boundary" discipline but exposes the buffers for witness binding).
func (c *DuplexChallenger) duplex() {
	for i, b := range c.inputBuffer {
		if i >= rateWidth {
			break
		}
		c.spongeState[i] = c.cfg.Add(c.spongeState[i], b)
	}
	c.inputBuffer = nil

	c.spongeState = permute(c.spongeState)

	c.outputBuffer = append([]field.Base(nil), c.spongeState[:rateWidth]...)
}

// permute is a fixed-key sponge permutation over the 16-element state,
// built from SHA-3 as a pseudorandom mixing primitive the same way the
// teacher's Channel.hash delegates to sha3 rather than implementing its own
// permutation over bytes. All state elements are serialized into one
// Shake256 instance, and each 32-byte chunk of its output becomes one new
// state element via field.NewBase, which does not reduce it modulo the
// field's prime; this keeps DuplexChallenger independent of any
// particular algebraic permutation (Poseidon, Rescue, ...), which is a
// separate external collaborator (§1).
func permute(state [spongeWidth]field.Base) [spongeWidth]field.Base {
	h := sha3.NewShake256()
	for _, b := range state {
		v := b.Big()
		buf := v.Bytes()
		h.Write(buf)
	}
	out := make([]byte, spongeWidth*32)
	h.Read(out)

	var next [spongeWidth]field.Base
	for i := range next {
		chunk := out[i*32 : (i+1)*32]
		v := new(big.Int).SetBytes(chunk)
		next[i] = field.NewBase(v)
	}
	return next
}

// State returns a copy of the sponge state, for witness binding.
func (c *DuplexChallenger) State() [spongeWidth]field.Base { return c.spongeState }

// InputBuffer returns a copy of the pending input buffer, for witness
// binding.
func (c *DuplexChallenger) InputBuffer() []field.Base {
	return append([]field.Base(nil), c.inputBuffer...)
}

// OutputBuffer returns a copy of the pending output buffer, for witness
// binding.
func (c *DuplexChallenger) OutputBuffer() []field.Base {
	return append([]field.Base(nil), c.outputBuffer...)
}

// Restore reconstructs a DuplexChallenger from its three constituent
// buffers, the inverse of State/InputBuffer/OutputBuffer. Used by the
// witness binding layer to read a challenger back out of a witness stream
// in the same field order it was written (§4.H contract).
func Restore(cfg field.Config, sponge [spongeWidth]field.Base, input, output []field.Base) *DuplexChallenger {
	return &DuplexChallenger{
		cfg:          cfg,
		spongeState:  sponge,
		inputBuffer:  append([]field.Base(nil), input...),
		outputBuffer: append([]field.Base(nil), output...),
	}
}
