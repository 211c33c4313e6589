package merkle

// CircuitHasher is the capability a recursive circuit builder supplies so
// the Merkle verification algorithm can run over symbolic variables instead
// of concrete field elements (design note 9's dual-mode requirement,
// applied to component C). Bit and Digest are left as type parameters
// rather than folded into field.Config because a circuit's bit and digest
// *variable* types are typically distinct Go types from their native
// counterparts (e.g. a wire handle), not values satisfying field.Config.
type CircuitHasher[Bit any, Digest any] interface {
	// SelectChainDigest conditionally swaps pair based on bit, producing
	// [value, sibling] if bit selects "even" and [sibling, value]
	// otherwise — the circuit analogue of the native Verify's `i%2`
	// branch.
	SelectChainDigest(bit Bit, pair [2]Digest) [2]Digest
	Compress(pair [2]Digest) Digest
	AssertDigestEqual(a, b Digest)
}

// VerifyCircuit is the circuit-mode twin of Verify. index is supplied as a
// sequence of bits from MSB to LSB; per §4.C it is walked in reverse
// (LSB to MSB) zipped against path in leaf-to-root order, exactly mirroring
// original_source/crates/recursion/circuit-v2/src/merkle_tree.rs's
// `index.iter().rev()` zip.
func VerifyCircuit[Bit any, Digest any](
	h CircuitHasher[Bit, Digest],
	indexBitsMSBFirst []Bit,
	value Digest,
	path []Digest,
	commitment Digest,
) {
	cur := value
	n := len(indexBitsMSBFirst)
	for k, sibling := range path {
		bit := indexBitsMSBFirst[n-1-k]
		pair := h.SelectChainDigest(bit, [2]Digest{cur, sibling})
		cur = h.Compress(pair)
	}
	h.AssertDigestEqual(cur, commitment)
}
