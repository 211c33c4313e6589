// Package merkle implements the bit-reversed Merkle vector commitment
// scheme (component C) the shard verifier's PCS uses for polynomial
// openings.
//
// Structurally this keeps the teacher's core.MerkleTree shape (root +
// flattened layers, `fmt.Errorf`-wrapped errors) but replaces its
// left-to-right pairing with the bit-reversed layout §4.C requires: leaves
// are permuted by bit-reversal of their index before the first layer is
// appended, which is load-bearing for how openings line up with the PCS's
// own domain indexing. The exact arithmetic (reverse_bits_len,
// reverse_slice_index_bits, the `offset += 1 << (height-i)` upward walk) is
// grounded on original_source/crates/recursion/circuit-v2/src/merkle_tree.rs.
//
// The pairwise compression itself is cfg.Compress, which for the default
// Goldilocks field delegates to vybium-crypto's hash.HashVarlen
// (field.NativeConfig, in package field) — the same hash the teacher's
// MasterTable.BuildMerkleTree uses to build its own row-commitment leaves.
// vybium-crypto's own merkle.New/Root (protocols/master_table.go,
// protocols/prover.go) is not used directly here: it builds a plain
// left-to-right tree with no bit-reversal, which does not satisfy this
// package's indexing invariant.
package merkle

import (
	"fmt"

	"github.com/bits-and-blooms/bitset"

	"github.com/vybium/shard-verifier/internal/shardverifier/field"
)

// VcsError reports a Merkle verification failure (root mismatch). Kept
// opaque per §7: it carries no leaked witness data.
type VcsError struct {
	index int
}

func (e *VcsError) Error() string {
	return fmt.Sprintf("merkle: verification failed at index %d", e.index)
}

// Tree is an immutable Merkle tree over digests, stored bit-reversed and
// layer-major. Height is log2 of the padded leaf count; DigestLayers holds
// every layer except the root, length 2*2^Height - 2 (invariant 6 of §3).
type Tree struct {
	Height       int
	DigestLayers []field.Digest
}

// Commit builds a bit-reversed Merkle tree over leaves (§4.C commit).
// leaves must be non-empty; it is padded with cfg.DefaultDigest() up to the
// next power of two, and to at least two leaves, before the bit-reversal
// permutation is applied.
func Commit(cfg field.Config, leaves []field.Digest) (field.Digest, *Tree, error) {
	if len(leaves) == 0 {
		return field.Digest{}, nil, fmt.Errorf("merkle: cannot commit to an empty leaf set")
	}

	n := nextPowerOfTwo(len(leaves))
	if n < 2 {
		n = 2 // the root is the compression of a two-entry last layer
	}
	h := log2Exact(n)

	last := make([]field.Digest, n)
	copy(last, leaves)
	for i := len(leaves); i < n; i++ {
		last[i] = cfg.DefaultDigest()
	}

	reverseSliceIndexBits(last, h)

	layers := make([]field.Digest, 0, 2*n-2)
	layers = append(layers, last...)

	for level := 0; level < h-1; level++ {
		next := make([]field.Digest, len(last)/2)
		for i := 0; i < len(next); i++ {
			next[i] = cfg.Compress([2]field.Digest{last[2*i], last[2*i+1]})
		}
		layers = append(layers, next...)
		last = next
	}

	if len(layers) != 2*n-2 {
		return field.Digest{}, nil, fmt.Errorf("merkle: internal invariant broken: digest_layers has %d entries, expected %d", len(layers), 2*n-2)
	}

	root := cfg.Compress([2]field.Digest{last[0], last[1]})
	return root, &Tree{Height: h, DigestLayers: layers}, nil
}

// Open returns the leaf value at index and its authentication path, length
// Height (§4.C open). Index is the caller's natural (non-bit-reversed)
// index; Open performs the bit-reversal translation internally.
func (t *Tree) Open(index int) (field.Digest, []field.Digest, error) {
	if index < 0 || index >= (1<<t.Height) {
		return field.Digest{}, nil, fmt.Errorf("merkle: index %d out of range [0, %d)", index, 1<<t.Height)
	}

	i := reverseBits(index, t.Height)
	value := t.DigestLayers[i]

	path := make([]field.Digest, 0, t.Height)
	offset := 0
	for level := 0; level < t.Height; level++ {
		var siblingIdx int
		if i%2 == 0 {
			siblingIdx = offset + i + 1
		} else {
			siblingIdx = offset + i - 1
		}
		path = append(path, t.DigestLayers[siblingIdx])
		i >>= 1
		offset += 1 << (t.Height - level)
	}

	return value, path, nil
}

// Verify recomputes the root from (value, path) and compares it against
// commitment (§4.C verify). index MUST be the same natural, non-bit-reversed
// index passed to Open; Verify performs its own bit-reversal translation so
// it mirrors Open exactly.
func Verify(cfg field.Config, index int, value field.Digest, path []field.Digest, commitment field.Digest) error {
	i := reverseBits(index, len(path))
	cur := value
	for _, sibling := range path {
		var pair [2]field.Digest
		if i%2 == 0 {
			pair = [2]field.Digest{cur, sibling}
		} else {
			pair = [2]field.Digest{sibling, cur}
		}
		cur = cfg.Compress(pair)
		i >>= 1
	}
	if !digestEqual(cfg, cur, commitment) {
		return &VcsError{index: index}
	}
	return nil
}

// digestEqual compares two digests element-wise through cfg.Equal rather
// than Go's struct equality: Base wraps a *big.Int, so two digests holding
// the same numeric value but distinct big.Int allocations would otherwise
// never compare equal.
func digestEqual(cfg field.Config, a, b field.Digest) bool {
	for i := range a {
		if !cfg.Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}

func nextPowerOfTwo(n int) int {
	if n <= 1 {
		return 1
	}
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

func log2Exact(n int) int {
	h := 0
	for (1 << h) < n {
		h++
	}
	return h
}

// reverseBits reverses the low `width` bits of x, the single-index version
// of the original source's reverse_bits_len.
func reverseBits(x, width int) int {
	out := 0
	for i := 0; i < width; i++ {
		out = (out << 1) | (x & 1)
		x >>= 1
	}
	return out
}

// reverseSliceIndexBits permutes s in place so that s[i] moves to
// s[reverseBits(i, width)], the original source's reverse_slice_index_bits.
// Implemented with a bitset scratch buffer to track which positions have
// already been swapped, avoiding double-swaps on palindromic index pairs.
func reverseSliceIndexBits(s []field.Digest, width int) {
	n := len(s)
	done := bitset.New(uint(n))
	for i := 0; i < n; i++ {
		if done.Test(uint(i)) {
			continue
		}
		j := reverseBits(i, width)
		if j != i {
			s[i], s[j] = s[j], s[i]
			done.Set(uint(j))
		}
		done.Set(uint(i))
	}
}
